package middleware

import (
	"LeaveAMark/internal/pkg/response"
	"LeaveAMark/internal/service"
	"net"

	"github.com/gin-gonic/gin"
)

// LoopbackOnly 只放行来自本机的请求，allowRemote 为 true 时不做限制
func LoopbackOnly(allowRemote bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if allowRemote {
			c.Next()
			return
		}
		ip := net.ParseIP(c.ClientIP())
		if ip == nil || !ip.IsLoopback() {
			response.Error(c, service.ErrJobTriggerDenied)
			c.Abort()
			return
		}
		c.Next()
	}
}
