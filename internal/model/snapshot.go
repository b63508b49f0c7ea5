package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Snapshot 每日按位置聚类生成的内容摘要
type Snapshot struct {
	ID                uint64     `gorm:"primaryKey" json:"id"`
	LocationClusterID string     `gorm:"type:varchar(64);not null;index:idx_cluster_date,unique" json:"location_cluster_id"`
	SnapshotDate      time.Time  `gorm:"type:date;not null;index:idx_cluster_date,unique" json:"snapshot_date"`
	TopTexts          StringList `gorm:"type:json;not null" json:"top_texts"`
	TopAudios         StringList `gorm:"type:json;not null" json:"top_audios"`
	Images            StringList `gorm:"type:json;not null" json:"images"`
	CreatedAt         time.Time  `gorm:"not null" json:"created_at"`
	ExpiresAt         time.Time  `gorm:"not null;index:idx_expires_at" json:"expires_at"`
}

func (Snapshot) TableName() string {
	return "snapshots"
}

// IsEmpty 三类内容均为空
func (s *Snapshot) IsEmpty() bool {
	return len(s.TopTexts) == 0 && len(s.TopAudios) == 0 && len(s.Images) == 0
}

// StringList 以 JSON 数组存储的 ID 列表
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	case nil:
		*l = StringList{}
		return nil
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSON value:", value))
	}
	return json.Unmarshal(bytes, l)
}
