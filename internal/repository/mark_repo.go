package repository

import (
	"LeaveAMark/internal/model"
	"LeaveAMark/internal/pkg/geo"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type MarkRepo interface {
	CreateMark(ctx context.Context, mark *model.Mark) error
	GetMarkByID(ctx context.Context, id string) (*model.Mark, error)
	GetMarksByIDs(ctx context.Context, ids []string) ([]*model.Mark, error)
	GetActiveMarksInBounds(ctx context.Context, box geo.Box) ([]*model.Mark, error)
	GetActiveMarksSince(ctx context.Context, since time.Time) ([]*model.Mark, error)
	GetThread(ctx context.Context, id string) ([]*model.Mark, error)
	IncrementAddCount(ctx context.Context, id string) error
	UpdateCanvasContent(ctx context.Context, id string, content string, imageURL *string) error
	DeactivateCreatedBefore(ctx context.Context, before time.Time) (int64, error)
}

type markRepoImpl struct {
	db *gorm.DB
}

func NewMarkRepo(db *gorm.DB) MarkRepo {
	return &markRepoImpl{db: db}
}

func (r *markRepoImpl) CreateMark(ctx context.Context, mark *model.Mark) error {
	return r.db.WithContext(ctx).Create(mark).Error
}

func (r *markRepoImpl) GetMarkByID(ctx context.Context, id string) (*model.Mark, error) {
	var mark model.Mark
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&mark).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &mark, nil
}

// GetMarksByIDs 批量获取，不过滤失效状态（快照引用的 Mark 可能已过期）
func (r *markRepoImpl) GetMarksByIDs(ctx context.Context, ids []string) ([]*model.Mark, error) {
	marks := make([]*model.Mark, 0, len(ids))
	if len(ids) == 0 {
		return marks, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&marks).Error
	return marks, err
}

// GetActiveMarksInBounds 范围查询，跨越 ±180 经线时拆分经度条件
func (r *markRepoImpl) GetActiveMarksInBounds(ctx context.Context, box geo.Box) ([]*model.Mark, error) {
	marks := make([]*model.Mark, 0)
	q := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("latitude BETWEEN ? AND ?", box.South, box.North)

	switch {
	case box.East > 180:
		q = q.Where("(longitude >= ? OR longitude <= ?)", box.West, box.East-360)
	case box.West < -180:
		q = q.Where("(longitude >= ? OR longitude <= ?)", box.West+360, box.East)
	default:
		q = q.Where("longitude BETWEEN ? AND ?", box.West, box.East)
	}

	err := q.Order("created_at DESC").Find(&marks).Error
	return marks, err
}

func (r *markRepoImpl) GetActiveMarksSince(ctx context.Context, since time.Time) ([]*model.Mark, error) {
	marks := make([]*model.Mark, 0)
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND created_at >= ?", true, since).
		Order("created_at DESC").
		Find(&marks).Error
	return marks, err
}

// GetThread 获取 Mark 本身及其有效回复，按时间正序
func (r *markRepoImpl) GetThread(ctx context.Context, id string) ([]*model.Mark, error) {
	marks := make([]*model.Mark, 0)
	err := r.db.WithContext(ctx).
		Where("(id = ? OR parent_id = ?) AND is_active = ?", id, id, true).
		Order("created_at ASC").
		Find(&marks).Error
	return marks, err
}

// IncrementAddCount 原子自增，避免并发回复丢失计数
func (r *markRepoImpl) IncrementAddCount(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&model.Mark{}).
		Where("id = ?", id).
		UpdateColumn("add_count", gorm.Expr("add_count + ?", 1)).Error
}

func (r *markRepoImpl) UpdateCanvasContent(ctx context.Context, id string, content string, imageURL *string) error {
	updates := map[string]interface{}{"content": content}
	if imageURL != nil {
		updates["image_url"] = *imageURL
	}
	return r.db.WithContext(ctx).Model(&model.Mark{}).
		Where("id = ? AND type = ?", id, model.MarkTypeCanvas).
		Updates(updates).Error
}

// DeactivateCreatedBefore 单向失效，已失效的记录不受影响
func (r *markRepoImpl) DeactivateCreatedBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Mark{}).
		Where("is_active = ? AND created_at < ?", true, before).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}
