package service

import (
	"LeaveAMark/internal/model"
	"LeaveAMark/internal/pkg/consts"
	"LeaveAMark/internal/pkg/geo"
	"LeaveAMark/internal/pkg/util"
	"fmt"
	"slices"
	"strings"
	"time"
)

// SkippedMark 聚合时被跳过的 Mark 及原因
type SkippedMark struct {
	MarkID string
	Reason error
}

// SnapshotEngagement 快照排序使用的热度：浏览 + 2 * 回复，与选择引擎的权重不同
func SnapshotEngagement(m *model.Mark) int64 {
	return m.ViewCount + 2*m.AddCount
}

// BuildSnapshots 按位置聚类汇总 Mark，生成 now 所在日期的快照，结果按聚类 ID 排序
// 坐标非法或类型未知的 Mark 被跳过并返回，不影响其他聚类
func BuildSnapshots(marks []*model.Mark, now time.Time) ([]*model.Snapshot, []SkippedMark) {
	snapshots, skipped, _ := buildSnapshots(marks, now)
	return snapshots, skipped
}

func buildSnapshots(marks []*model.Mark, now time.Time) ([]*model.Snapshot, []SkippedMark, int) {
	skipped := make([]SkippedMark, 0)
	groups := make(map[string][]*model.Mark)

	for _, m := range marks {
		if !m.Type.Valid() {
			skipped = append(skipped, SkippedMark{MarkID: m.ID, Reason: fmt.Errorf("%w: %q", ErrInvalidMarkType, m.Type)})
			continue
		}
		clusterID, err := geo.LocationClusterID(m.Latitude, m.Longitude)
		if err != nil {
			skipped = append(skipped, SkippedMark{MarkID: m.ID, Reason: err})
			continue
		}
		groups[clusterID] = append(groups[clusterID], m)
	}

	midnight := util.GetMidnight(now)
	// date 列只保存日期部分，按本地日历日期写入 UTC 零点，避免驱动时区转换改变日期
	snapshotDate := time.Date(midnight.Year(), midnight.Month(), midnight.Day(), 0, 0, 0, 0, time.UTC)
	expiresAt := midnight.Add(consts.SnapshotTTL)

	snapshots := make([]*model.Snapshot, 0, len(groups))
	for clusterID, group := range groups {
		texts := make([]*model.Mark, 0)
		audios := make([]*model.Mark, 0)
		images := make(model.StringList, 0)
		for _, m := range group {
			switch m.Type {
			case model.MarkTypeText:
				texts = append(texts, m)
			case model.MarkTypeAudio:
				audios = append(audios, m)
			case model.MarkTypeImage:
				images = append(images, m.ID)
			}
		}

		snapshot := &model.Snapshot{
			LocationClusterID: clusterID,
			SnapshotDate:      snapshotDate,
			TopTexts:          topByEngagement(texts, consts.SnapshotTopK),
			TopAudios:         topByEngagement(audios, consts.SnapshotTopK),
			Images:            images,
			CreatedAt:         now,
			ExpiresAt:         expiresAt,
		}
		if snapshot.IsEmpty() {
			continue
		}
		snapshots = append(snapshots, snapshot)
	}

	slices.SortFunc(snapshots, func(a, b *model.Snapshot) int {
		return strings.Compare(a.LocationClusterID, b.LocationClusterID)
	})
	return snapshots, skipped, len(groups)
}

// topByEngagement 热度降序取前 k 个；热度相同时新的在前，再按 ID
func topByEngagement(marks []*model.Mark, k int) model.StringList {
	sorted := slices.Clone(marks)
	slices.SortFunc(sorted, func(a, b *model.Mark) int {
		ea, eb := SnapshotEngagement(a), SnapshotEngagement(b)
		if ea != eb {
			if ea > eb {
				return -1
			}
			return 1
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	ids := make(model.StringList, 0, min(k, len(sorted)))
	for _, m := range sorted[:min(k, len(sorted))] {
		ids = append(ids, m.ID)
	}
	return ids
}
