package handler

import (
	"LeaveAMark/internal/api/dto"
	"LeaveAMark/internal/pkg/response"
	"LeaveAMark/internal/pkg/util"
	"LeaveAMark/internal/service"

	"github.com/gin-gonic/gin"
)

type SnapshotHandler struct {
	snapshotSvc service.SnapshotService
}

func NewSnapshotHandler(snapshotSvc service.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{
		snapshotSvc: snapshotSvc,
	}
}

// GetSnapshotAt 当前坐标所在聚类的快照
func (h *SnapshotHandler) GetSnapshotAt(c *gin.Context) {
	var req dto.LocationDTO
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}

	snapshot, err := h.snapshotSvc.GetSnapshotAt(c.Request.Context(), *req.Latitude, *req.Longitude)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, snapshot)
}

func (h *SnapshotHandler) GetSnapshot(c *gin.Context) {
	snapshot, err := h.snapshotSvc.GetSnapshot(c.Request.Context(), c.Param("cluster_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, snapshot)
}
