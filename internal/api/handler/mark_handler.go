package handler

import (
	"LeaveAMark/internal/api/dto"
	"LeaveAMark/internal/api/middleware"
	"LeaveAMark/internal/pkg/response"
	"LeaveAMark/internal/pkg/util"
	"LeaveAMark/internal/service"

	"github.com/gin-gonic/gin"
)

type MarkHandler struct {
	markSvc service.MarkService
}

func NewMarkHandler(markSvc service.MarkService) *MarkHandler {
	return &MarkHandler{
		markSvc: markSvc,
	}
}

// ListInBounds 地图视口内的 Mark
func (h *MarkHandler) ListInBounds(c *gin.Context) {
	var req dto.BoundsDTO
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}

	marks, err := h.markSvc.ListInBounds(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, marks)
}

// ListNearby 可见半径内的 Mark
func (h *MarkHandler) ListNearby(c *gin.Context) {
	var req dto.LocationDTO
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}

	marks, err := h.markSvc.ListNearby(c.Request.Context(), *req.Latitude, *req.Longitude)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, marks)
}

// Discover 在当前位置发现一个 Mark
func (h *MarkHandler) Discover(c *gin.Context) {
	var req dto.DiscoverDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}

	sessionID := c.GetString(middleware.SessionIDKey)
	res, err := h.markSvc.Discover(c.Request.Context(), &req, sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (h *MarkHandler) CreateMark(c *gin.Context) {
	var req dto.CreateMarkDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	mark, err := h.markSvc.CreateMark(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, mark)
}

func (h *MarkHandler) GetThread(c *gin.Context) {
	thread, err := h.markSvc.GetThread(c.Request.Context(), c.Param("mark_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, thread)
}

// UpdateCanvas 更新画布内容
func (h *MarkHandler) UpdateCanvas(c *gin.Context) {
	var req dto.UpdateCanvasDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	mark, err := h.markSvc.UpdateCanvas(c.Request.Context(), c.Param("mark_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, mark)
}
