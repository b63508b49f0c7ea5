package repository

import (
	"LeaveAMark/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

type MarkViewRepo interface {
	// RecordView 写入浏览记录并自增 Mark 浏览量，两者在同一事务内
	RecordView(ctx context.Context, view *model.MarkView) error
	ExistsSince(ctx context.Context, markID, sessionID string, since time.Time) (bool, error)
	DeleteViewedBefore(ctx context.Context, before time.Time) (int64, error)
}

type markViewRepoImpl struct {
	db *gorm.DB
}

func NewMarkViewRepo(db *gorm.DB) MarkViewRepo {
	return &markViewRepoImpl{db: db}
}

func (r *markViewRepoImpl) RecordView(ctx context.Context, view *model.MarkView) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(view).Error; err != nil {
			return err
		}
		return tx.Model(&model.Mark{}).
			Where("id = ?", view.MarkID).
			UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
	})
}

func (r *markViewRepoImpl) ExistsSince(ctx context.Context, markID, sessionID string, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.MarkView{}).
		Where("mark_id = ? AND session_id = ? AND viewed_at >= ?", markID, sessionID, since).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

func (r *markViewRepoImpl) DeleteViewedBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("viewed_at < ?", before).
		Delete(&model.MarkView{})
	return result.RowsAffected, result.Error
}
