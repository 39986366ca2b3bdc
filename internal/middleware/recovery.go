package middleware

import (
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/inkwell/pkg/logger"
	"github.com/d60-Lab/inkwell/pkg/response"
)

// Recovery panic 兜底：上报 sentry、记日志、返回 500，进程不退出
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				if err, ok := r.(error); ok {
					sentry.CaptureException(err)
				} else {
					sentry.CaptureMessage("panic in handler")
				}
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
				)
				response.InternalError(c, nil)
				c.Abort()
			}
		}()
		c.Next()
	}
}
