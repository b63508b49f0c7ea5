package consts

import "time"

const (
	// MarkTTL Mark 的存活时间
	MarkTTL = 24 * time.Hour
	// ViewDedupeWindow 同一会话重复浏览不计数的窗口
	ViewDedupeWindow = 24 * time.Hour
	// MarkViewRetention 浏览记录保留时长
	MarkViewRetention = 7 * 24 * time.Hour
	// SnapshotTTL 快照自生成日零点起的有效期
	SnapshotTTL = 36 * time.Hour
	// SnapshotTopK 文本与音频各保留的条数
	SnapshotTopK = 5
)

const (
	SessionHeader = "X-Session-ID"
	TraceHeader   = "X-Trace-ID"
)
