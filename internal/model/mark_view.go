package model

import (
	"time"
)

// MarkView 浏览记录，用于同一会话 24 小时内去重
type MarkView struct {
	ID        uint64    `gorm:"primaryKey"`
	MarkID    string    `gorm:"type:char(36);not null;index:idx_mark_session_viewed,priority:1" json:"mark_id"`
	SessionID string    `gorm:"type:varchar(128);not null;index:idx_mark_session_viewed,priority:2" json:"session_id"`
	ViewedAt  time.Time `gorm:"not null;index:idx_mark_session_viewed,priority:3;index:idx_viewed_at" json:"viewed_at"`
}

func (MarkView) TableName() string {
	return "mark_views"
}
