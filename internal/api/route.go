package api

import (
	"LeaveAMark/internal/api/config"
	"LeaveAMark/internal/api/middleware"
	"LeaveAMark/internal/pkg/logger"
	"LeaveAMark/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Session & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.SessionMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			response.Success(c, "pong")
		})

		markGroup := apiGroup.Group("/marks")
		{
			markGroup.GET("", group.MarkHandler.ListInBounds)
			markGroup.GET("/nearby", group.MarkHandler.ListNearby)
			markGroup.POST("", group.MarkHandler.CreateMark)
			markGroup.POST("/discover", group.MarkHandler.Discover)
			markGroup.GET("/:mark_id/thread", group.MarkHandler.GetThread)
			markGroup.PUT("/:mark_id/canvas", group.MarkHandler.UpdateCanvas)
		}

		snapshotGroup := apiGroup.Group("/snapshots")
		{
			snapshotGroup.GET("", group.SnapshotHandler.GetSnapshotAt)
			snapshotGroup.GET("/:cluster_id", group.SnapshotHandler.GetSnapshot)
		}

		jobGroup := apiGroup.Group("/jobs")
		{
			jobGroup.GET("", group.JobHandler.ListJobs)
			allowRemote := config.Cfg != nil && config.Cfg.Server.RemoteJobTrigger
			jobGroup.POST("/:name/run", middleware.LoopbackOnly(allowRemote), group.JobHandler.RunJob)
		}
	}

	return r
}
