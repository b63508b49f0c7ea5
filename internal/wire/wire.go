package wire

import (
	"LeaveAMark/internal/api"
	"LeaveAMark/internal/api/config"
	"LeaveAMark/internal/api/handler"
	"LeaveAMark/internal/job"
	"LeaveAMark/internal/pkg/cron"
	"LeaveAMark/internal/pkg/selector"
	"LeaveAMark/internal/pkg/util"
	"LeaveAMark/internal/repository"
	"LeaveAMark/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router  *gin.Engine
	DB      *gorm.DB
	CronMgr *cron.Manager
}

func BuildApplication(db *gorm.DB, cfg *config.Config) (*ApplicationContainer, error) {
	loc, err := util.LoadLocation(cfg.Snapshot.Timezone)
	if err != nil {
		return nil, err
	}

	markRepo := repository.NewMarkRepo(db)
	markViewRepo := repository.NewMarkViewRepo(db)
	snapshotRepo := repository.NewSnapshotRepo(db)

	markService := service.NewMarkService(markRepo, markViewRepo, selector.New())
	snapshotService := service.NewSnapshotService(markRepo, snapshotRepo, loc)
	cleanupService := service.NewCleanupService(markRepo, snapshotRepo, markViewRepo)

	cronMgr := cron.NewCronManager(
		map[string]string{
			job.SnapshotJobName: cfg.Cron.Snapshot,
			job.CleanupJobName:  cfg.Cron.Cleanup,
		},
		job.NewSnapshotJob(snapshotService),
		job.NewCleanupJob(cleanupService),
	)

	handlers := &api.HandlersGroup{
		MarkHandler:     handler.NewMarkHandler(markService),
		SnapshotHandler: handler.NewSnapshotHandler(snapshotService),
		JobHandler:      handler.NewJobHandler(cronMgr),
	}

	router := api.SetupRouter(handlers)

	return &ApplicationContainer{
		Router:  router,
		DB:      db,
		CronMgr: cronMgr,
	}, nil
}
