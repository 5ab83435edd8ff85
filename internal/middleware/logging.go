// Package middleware 存放 Gin 框架的中间件。
package middleware

import (
	"bytes"
	"io"
	"strings"
	"time"

	"dome-admin-go/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// RequestIDHeader 是请求 ID 的请求头和响应头。
	RequestIDHeader = "X-Request-ID"
	// maxLoggedBody 是日志中保留的请求体、响应体的最大字节数。
	maxLoggedBody = 4 << 10
)

// bodyLogWriter 用于捕获响应体，最多保留 maxLoggedBody 字节。
type bodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write 将响应写入 gin.ResponseWriter，并把前 maxLoggedBody 字节留在 buffer 中
func (w bodyLogWriter) Write(b []byte) (int, error) {
	if room := maxLoggedBody - w.body.Len(); room > 0 {
		if len(b) < room {
			room = len(b)
		}
		w.body.Write(b[:room])
	}
	return w.ResponseWriter.Write(b)
}

// RequestLogger 是一个 Gin 中间件，记录请求日志并为每个请求分配请求 ID。
// 只有 JSON 请求体会被记录，multipart 上传流不会被缓冲。
func RequestLogger(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(log.WithRequestID(c.Request.Context(), requestID))

		requestBody := peekJSONBody(c)

		blw := &bodyLogWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		statusCode := c.Writer.Status()
		fields := []interface{}{
			"requestID", requestID,
			"statusCode", statusCode,
			"latency", time.Since(startTime).String(),
			"clientIP", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"requestBody", requestBody,
			"responseBody", blw.body.String(),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch {
		case statusCode >= 500:
			logger.Errorw("HTTP Request Log", fields...)
		case statusCode >= 400:
			logger.Warnw("HTTP Request Log", fields...)
		default:
			logger.Infow("HTTP Request Log", fields...)
		}
	}
}

// peekJSONBody 读出 JSON 请求体的前 maxLoggedBody 字节，并把完整的请求体交还给后续处理函数。
func peekJSONBody(c *gin.Context) string {
	if c.Request.Body == nil || !strings.HasPrefix(c.ContentType(), "application/json") {
		return ""
	}
	head, err := io.ReadAll(io.LimitReader(c.Request.Body, maxLoggedBody))
	c.Request.Body = readCloser{
		Reader: io.MultiReader(bytes.NewReader(head), c.Request.Body),
		Closer: c.Request.Body,
	}
	if err != nil {
		return ""
	}
	return string(head)
}

type readCloser struct {
	io.Reader
	io.Closer
}
