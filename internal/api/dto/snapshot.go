package dto

import "time"

// SnapshotDTO 位置聚类的每日快照，引用的 Mark 已按快照顺序展开
type SnapshotDTO struct {
	LocationClusterID string     `json:"location_cluster_id"`
	SnapshotDate      string     `json:"snapshot_date"`
	CreatedAt         time.Time  `json:"created_at"`
	ExpiresAt         time.Time  `json:"expires_at"`
	TopTexts          []*MarkDTO `json:"top_texts"`
	TopAudios         []*MarkDTO `json:"top_audios"`
	Images            []*MarkDTO `json:"images"`
}
