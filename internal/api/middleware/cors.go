package middleware

import (
	"LeaveAMark/internal/pkg/consts"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware 允许任意来源访问，前端需要读取 trace 与 session 头
func CORSMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOriginFunc: func(string) bool { return true },
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "X-Requested-With",
			consts.TraceHeader, consts.SessionHeader,
		},
		ExposeHeaders:    []string{"Content-Length", consts.TraceHeader, consts.SessionHeader},
		AllowCredentials: true,
		MaxAge:           10 * time.Minute,
	})
}
