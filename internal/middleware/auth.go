// Package middleware 提供了处理 HTTP 请求的中间件。
package middleware

import (
	"net/http"
	"strings"

	"dome-admin-go/internal/response"
	"dome-admin-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// ClaimsKey 是 AuthMiddleware 在 gin.Context 中保存 token 声明的键。
const ClaimsKey = "claims"

// AuthMiddleware 创建一个 Gin 中间件，用于 JWT 认证。
// 校验通过后把 *token.CustomClaims 存入上下文。
func AuthMiddleware(jwtManager *token.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, "请求未包含授权头")
			return
		}

		// Token 以 "Bearer <token>" 的形式提供
		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			response.Error(c, http.StatusUnauthorized, "无效的授权头格式")
			return
		}

		claims, err := jwtManager.VerifyToken(strings.TrimPrefix(authHeader, bearerPrefix))
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "无效或已过期的 token")
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRole 检查调用方角色是否在 roles 中。
// 此中间件必须在 AuthMiddleware 之后使用。
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ClaimsKey)
		if !exists {
			response.Error(c, http.StatusInternalServerError, "无法获取调用方信息")
			return
		}
		claims, ok := value.(*token.CustomClaims)
		if !ok {
			response.Error(c, http.StatusInternalServerError, "调用方信息类型错误")
			return
		}

		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}
		response.Error(c, http.StatusForbidden, "权限不足")
	}
}
