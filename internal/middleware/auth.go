package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/inkwell/pkg/jwtauth"
	"github.com/d60-Lab/inkwell/pkg/response"
)

const (
	ctxUserID   = "userID"
	ctxUsername = "username"
)

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" || !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}

// AuthRequired 鉴权中间件，无有效令牌直接 401
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Unauthorized(c, "missing bearer token")
			return
		}
		claims, err := jwtauth.ParseToken(secret, token)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUsername, claims.Username)
		c.Next()
	}
}

// AuthOptional 提取访问者身份但从不拒绝请求；
// 可见性闸门里 "viewer 非空" 的判定来源
func AuthOptional(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if claims, err := jwtauth.ParseToken(secret, token); err == nil {
				c.Set(ctxUserID, claims.UserID)
				c.Set(ctxUsername, claims.Username)
			}
		}
		c.Next()
	}
}

// CurrentUserID 返回当前登录用户 id，未登录为空串
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}
