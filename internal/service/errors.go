package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Forbidden           = 403
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500
)

var (
	ErrParamInvalid      = errors.New("参数错误")
	ErrInvalidCoordinate = errors.New("坐标不合法")
	ErrInvalidMarkType   = errors.New("不支持的 Mark 类型")
	ErrMarkNotFound      = errors.New("Mark 不存在")
	ErrParentNotFound    = errors.New("回复的 Mark 不存在或已失效")
	ErrNoMarkNearby      = errors.New("附近没有可发现的 Mark")
	ErrNotCanvasMark     = errors.New("只有画布类型的 Mark 可以更新")
	ErrSnapshotNotFound  = errors.New("该位置暂无快照")
	ErrJobNotFound       = errors.New("任务不存在")
	ErrJobRunning        = errors.New("任务正在执行")
	ErrJobTriggerDenied  = errors.New("只允许从本机手动触发任务")
	UnExpectedError      = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:      BadRequest,
	ErrInvalidCoordinate: BadRequest,
	ErrInvalidMarkType:   BadRequest,
	ErrMarkNotFound:      NotFound,
	ErrParentNotFound:    NotFound,
	ErrNoMarkNearby:      NotFound,
	ErrNotCanvasMark:     BadRequest,
	ErrSnapshotNotFound:  NotFound,
	ErrJobNotFound:       NotFound,
	ErrJobRunning:        Conflict,
	ErrJobTriggerDenied:  Forbidden,
	UnExpectedError:      InternalServerError,
}
