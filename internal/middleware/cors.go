package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS 允许任意来源调用接口，并暴露请求 ID 响应头。
func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "HEAD", "PUT", "PATCH", "POST", "DELETE"},
		AllowHeaders:    []string{"Authorization", "Content-Type", RequestIDHeader},
		ExposeHeaders:   []string{RequestIDHeader},
		MaxAge:          24 * time.Hour,
	})
}
