package service

import (
	"LeaveAMark/internal/api/dto"
	"LeaveAMark/internal/model"
	"LeaveAMark/internal/pkg/consts"
	"LeaveAMark/internal/pkg/geo"
	"LeaveAMark/internal/pkg/redis"
	"LeaveAMark/internal/repository"
	"context"
	log "log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// GenerateResult 一次快照生成的统计
type GenerateResult struct {
	SnapshotsCreated   int `json:"snapshots_created"`
	LocationsProcessed int `json:"locations_processed"`
	TotalMarks         int `json:"total_marks"`
	Skipped            int `json:"skipped"`
	Failed             int `json:"failed"`
}

type SnapshotService interface {
	// GenerateDailySnapshots 汇总最近 24 小时的有效 Mark，按位置聚类写入当天快照
	GenerateDailySnapshots(ctx context.Context) (*GenerateResult, error)
	// GetSnapshot 获取聚类最新的未过期快照
	GetSnapshot(ctx context.Context, clusterID string) (*dto.SnapshotDTO, error)
	// GetSnapshotAt 获取坐标所在聚类的快照
	GetSnapshotAt(ctx context.Context, lat, lng float64) (*dto.SnapshotDTO, error)
}

type snapshotServiceImpl struct {
	markRepo     repository.MarkRepo
	snapshotRepo repository.SnapshotRepo
	loc          *time.Location
	now          func() time.Time
}

func NewSnapshotService(markRepo repository.MarkRepo, snapshotRepo repository.SnapshotRepo, loc *time.Location) SnapshotService {
	if loc == nil {
		loc = time.Local
	}
	return &snapshotServiceImpl{
		markRepo:     markRepo,
		snapshotRepo: snapshotRepo,
		loc:          loc,
		now:          time.Now,
	}
}

func (s *snapshotServiceImpl) GenerateDailySnapshots(ctx context.Context) (*GenerateResult, error) {
	now := s.now().In(s.loc)
	marks, err := s.markRepo.GetActiveMarksSince(ctx, now.Add(-consts.MarkTTL))
	if err != nil {
		return nil, errors.Wrap(err, "load active marks")
	}

	snapshots, skipped, clusters := buildSnapshots(marks, now)
	for _, sk := range skipped {
		log.WarnContext(ctx, "skip mark when building snapshot", "mark_id", sk.MarkID, "reason", sk.Reason)
	}

	result := &GenerateResult{
		LocationsProcessed: clusters,
		TotalMarks:         len(marks),
		Skipped:            len(skipped),
	}

	keys := make([]string, 0, len(snapshots))
	for _, snapshot := range snapshots {
		if err := s.snapshotRepo.UpsertSnapshot(ctx, snapshot); err != nil {
			result.Failed++
			log.ErrorContext(ctx, "upsert snapshot error", "cluster_id", snapshot.LocationClusterID, "err", err)
			continue
		}
		result.SnapshotsCreated++
		keys = append(keys, consts.SnapshotClusterKey+snapshot.LocationClusterID)
	}

	if err := redis.DeleteKey(ctx, keys...); err != nil {
		log.WarnContext(ctx, "invalidate snapshot cache error", "err", err)
	}
	return result, nil
}

func (s *snapshotServiceImpl) GetSnapshotAt(ctx context.Context, lat, lng float64) (*dto.SnapshotDTO, error) {
	clusterID, err := geo.LocationClusterID(lat, lng)
	if err != nil {
		return nil, ErrInvalidCoordinate
	}
	return s.GetSnapshot(ctx, clusterID)
}

func (s *snapshotServiceImpl) GetSnapshot(ctx context.Context, clusterID string) (*dto.SnapshotDTO, error) {
	if clusterID == "" {
		return nil, ErrParamInvalid
	}

	key := consts.SnapshotClusterKey + clusterID
	if val, err := redis.GetValue(ctx, key); err == nil && val != "" {
		var res dto.SnapshotDTO
		if err = json.Unmarshal([]byte(val), &res); err == nil {
			return &res, nil
		}
	}

	now := s.now()
	snapshot, err := s.snapshotRepo.GetLatestByCluster(ctx, clusterID, now)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, ErrSnapshotNotFound
	}

	out := &dto.SnapshotDTO{
		LocationClusterID: snapshot.LocationClusterID,
		SnapshotDate:      snapshot.SnapshotDate.Format(time.DateOnly),
		CreatedAt:         snapshot.CreatedAt,
		ExpiresAt:         snapshot.ExpiresAt,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.TopTexts, err = s.resolveMarks(gCtx, snapshot.TopTexts)
		return err
	})
	g.Go(func() (err error) {
		out.TopAudios, err = s.resolveMarks(gCtx, snapshot.TopAudios)
		return err
	})
	g.Go(func() (err error) {
		out.Images, err = s.resolveMarks(gCtx, snapshot.Images)
		return err
	})
	if err = g.Wait(); err != nil {
		return nil, err
	}

	if ttl := snapshot.ExpiresAt.Sub(now); ttl > 0 {
		if data, err := json.Marshal(out); err == nil {
			_ = redis.SetWithExpiration(ctx, key, string(data), ttl)
		}
	}
	return out, nil
}

// resolveMarks 按快照中的顺序展开 Mark，已被物理删除的 ID 直接忽略
func (s *snapshotServiceImpl) resolveMarks(ctx context.Context, ids model.StringList) ([]*dto.MarkDTO, error) {
	out := make([]*dto.MarkDTO, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	marks, err := s.markRepo.GetMarksByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Mark, len(marks))
	for _, m := range marks {
		byID[m.ID] = m
	}
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			out = append(out, toMarkDTO(m))
		}
	}
	return out, nil
}
