package dto

import (
	"LeaveAMark/internal/model"
	"time"
)

// CreateMarkDTO 新建 Mark，parent_id 不为空时为回复
type CreateMarkDTO struct {
	Type      model.MarkType `json:"type" binding:"required" validate:"oneof=text image audio canvas"`
	Content   string         `json:"content" binding:"required" validate:"min=1,max=65535"`
	Latitude  *float64       `json:"latitude" binding:"required" validate:"required,latitude"`
	Longitude *float64       `json:"longitude" binding:"required" validate:"required,longitude"`
	ParentID  *string        `json:"parent_id" validate:"omitempty,uuid"`
	ImageURL  *string        `json:"image_url" validate:"omitempty,url,max=512"`
}

// UpdateCanvasDTO 画布协作更新
type UpdateCanvasDTO struct {
	Content  string  `json:"content" binding:"required" validate:"min=1,max=65535"`
	ImageURL *string `json:"image_url" validate:"omitempty,url,max=512"`
}

// LocationDTO 用户当前位置
type LocationDTO struct {
	Latitude  *float64 `json:"latitude" form:"lat" binding:"required" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" form:"lng" binding:"required" validate:"required,longitude"`
}

// DiscoverDTO 发现请求，exclude_id 用于"换一个"时排除当前展示的 Mark
type DiscoverDTO struct {
	Latitude  *float64 `json:"latitude" binding:"required" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" binding:"required" validate:"required,longitude"`
	Mode      string   `json:"mode" validate:"omitempty,oneof=recency engagement views"`
	ExcludeID *string  `json:"exclude_id" validate:"omitempty,max=36"`
}

// BoundsDTO 地图视口
type BoundsDTO struct {
	North *float64 `form:"north" binding:"required" validate:"required,latitude"`
	South *float64 `form:"south" binding:"required" validate:"required,latitude"`
	East  *float64 `form:"east" binding:"required" validate:"required,longitude"`
	West  *float64 `form:"west" binding:"required" validate:"required,longitude"`
}

type MarkDTO struct {
	ID        string         `json:"id"`
	Type      model.MarkType `json:"type"`
	Content   string         `json:"content"`
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	ViewCount int64          `json:"view_count"`
	AddCount  int64          `json:"add_count"`
	ParentID  *string        `json:"parent_id"`
	ImageURL  *string        `json:"image_url"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// NearbyMarkDTO 附近列表中的 Mark 及距离
type NearbyMarkDTO struct {
	*MarkDTO
	Distance     float64 `json:"distance"`
	DistanceText string  `json:"distance_text"`
}

// DiscoveryDTO 一次发现的结果
type DiscoveryDTO struct {
	Mark         *MarkDTO `json:"mark"`
	Distance     float64  `json:"distance"`
	DistanceText string   `json:"distance_text"`
	NearbyCount  int      `json:"nearby_count"`
	Counted      bool     `json:"counted"`
	// Probability 在基础权重下被选中的概率
	Probability float64 `json:"probability"`
}

// ThreadDTO Mark 及其回复
type ThreadDTO struct {
	Root    *MarkDTO   `json:"root"`
	Replies []*MarkDTO `json:"replies"`
}
