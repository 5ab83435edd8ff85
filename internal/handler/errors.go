// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"dome-admin-go/internal/response"
	"dome-admin-go/internal/service"
	"dome-admin-go/pkg/pagination"
	"dome-admin-go/pkg/upload"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// clientUploadErrors 是由请求内容引起的上传错误，对应 400。
var clientUploadErrors = []error{
	upload.ErrNoFileProvided,
	upload.ErrSizeLimitExceeded,
	upload.ErrTooManyFiles,
	upload.ErrTooManyFields,
	upload.ErrMalformedRequest,
	upload.ErrUploadInterrupted,
}

// writeError 把业务错误映射为 HTTP 状态码。5xx 只向客户端返回通用提示，完整错误写入日志。
func writeError(c *gin.Context, logger *zap.SugaredLogger, err error) {
	status, message := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Errorw("请求处理失败", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
	} else {
		logger.Warnw("请求被拒绝", "path", c.Request.URL.Path, "status", status, "error", err)
	}
	_ = c.Error(err)
	response.Error(c, status, message)
}

func classify(err error) (int, string) {
	var uerr *upload.Error
	hasDetail := errors.As(err, &uerr)

	switch {
	case errors.Is(err, upload.ErrStorageIO):
		return http.StatusInternalServerError, upload.ErrStorageIO.Error()
	case errors.Is(err, service.ErrListItemNotFound):
		return http.StatusNotFound, service.ErrListItemNotFound.Error()
	case errors.Is(err, pagination.ErrInvalidQueryOptions):
		return http.StatusBadRequest, err.Error()
	}
	for _, kind := range clientUploadErrors {
		if errors.Is(err, kind) {
			if hasDetail {
				return http.StatusBadRequest, uerr.Message()
			}
			return http.StatusBadRequest, kind.Error()
		}
	}
	return http.StatusInternalServerError, response.StatusMessage(http.StatusInternalServerError)
}

// badRequest 用于参数绑定、校验失败。
func badRequest(c *gin.Context, logger *zap.SugaredLogger, message string, err error) {
	logger.Warnw(message, "path", c.Request.URL.Path, "error", err)
	response.Error(c, http.StatusBadRequest, message)
}
