package repository

import (
	"LeaveAMark/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SnapshotRepo interface {
	UpsertSnapshot(ctx context.Context, snapshot *model.Snapshot) error
	GetLatestByCluster(ctx context.Context, clusterID string, now time.Time) (*model.Snapshot, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type snapshotRepoImpl struct {
	db *gorm.DB
}

func NewSnapshotRepo(db *gorm.DB) SnapshotRepo {
	return &snapshotRepoImpl{db: db}
}

// UpsertSnapshot 采用 Upsert 逻辑。如果 location_cluster_id + snapshot_date 已存在，则覆盖内容与过期时间
func (r *snapshotRepoImpl) UpsertSnapshot(ctx context.Context, snapshot *model.Snapshot) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "location_cluster_id"}, {Name: "snapshot_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"top_texts",
			"top_audios",
			"images",
			"created_at",
			"expires_at",
		}),
	}).Create(snapshot).Error
}

// GetLatestByCluster 获取聚类最新一份未过期快照
func (r *snapshotRepoImpl) GetLatestByCluster(ctx context.Context, clusterID string, now time.Time) (*model.Snapshot, error) {
	var snapshot model.Snapshot
	err := r.db.WithContext(ctx).
		Where("location_cluster_id = ? AND expires_at > ?", clusterID, now).
		Order("snapshot_date DESC").
		First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &snapshot, nil
}

func (r *snapshotRepoImpl) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&model.Snapshot{})
	return result.RowsAffected, result.Error
}
