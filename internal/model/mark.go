package model

import (
	"time"
)

// MarkType Mark 内容类型
type MarkType string

const (
	MarkTypeText   MarkType = "text"
	MarkTypeImage  MarkType = "image"
	MarkTypeAudio  MarkType = "audio"
	MarkTypeCanvas MarkType = "canvas"
)

func (t MarkType) Valid() bool {
	switch t {
	case MarkTypeText, MarkTypeImage, MarkTypeAudio, MarkTypeCanvas:
		return true
	}
	return false
}

// Mark 锚定在坐标上的用户内容，24 小时后失效
type Mark struct {
	ID        string    `gorm:"primaryKey;type:char(36)" json:"id"`
	Type      MarkType  `gorm:"type:varchar(16);not null" json:"type"`
	Content   string    `gorm:"type:mediumtext;not null" json:"content"` // text 为正文，其余为 URL 或画布序列化数据
	Latitude  float64   `gorm:"not null;index:idx_marks_geo,priority:1" json:"latitude"`
	Longitude float64   `gorm:"not null;index:idx_marks_geo,priority:2" json:"longitude"`
	ViewCount int64     `gorm:"not null;default:0" json:"view_count"`
	AddCount  int64     `gorm:"not null;default:0" json:"add_count"`
	ParentID  *string   `gorm:"type:char(36);index:idx_marks_parent" json:"parent_id"`
	IsActive  bool      `gorm:"not null;default:true;index:idx_marks_active_created,priority:1" json:"is_active"`
	ImageURL  *string   `gorm:"type:varchar(512)" json:"image_url"` // canvas 缩略图
	CreatedAt time.Time `gorm:"not null;index:idx_marks_active_created,priority:2" json:"created_at"`
}

func (Mark) TableName() string {
	return "marks"
}
