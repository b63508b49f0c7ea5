package api

import "LeaveAMark/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	MarkHandler     *handler.MarkHandler
	SnapshotHandler *handler.SnapshotHandler
	JobHandler      *handler.JobHandler
}
