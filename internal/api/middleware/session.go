package middleware

import (
	"LeaveAMark/internal/pkg/consts"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionIDKey gin.Context 中的匿名会话 ID
const SessionIDKey = "session_id"

// maxSessionIDLen 与 mark_views.session_id 列宽一致
const maxSessionIDLen = 128

// SessionMiddleware 读取客户端的匿名会话 ID，缺失或非法时下发一个新的
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(consts.SessionHeader)
		if sessionID == "" || len(sessionID) > maxSessionIDLen {
			sessionID = uuid.NewString()
		}
		c.Set(SessionIDKey, sessionID)
		c.Header(consts.SessionHeader, sessionID)
		c.Next()
	}
}
