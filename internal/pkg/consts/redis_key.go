package consts

const (
	// MarkViewSessionKey mark:view:{mark_id}:{session_id}，24 小时内同一会话只计一次浏览
	MarkViewSessionKey = "mark:view:"
	// SnapshotClusterKey snapshot:cluster:{cluster_id}，缓存最新快照详情
	SnapshotClusterKey = "snapshot:cluster:"
)

const (
	SnapshotJobLock = "lock:job:snapshot"
	CleanupJobLock  = "lock:job:cleanup"
)
