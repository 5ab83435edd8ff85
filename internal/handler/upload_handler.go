package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"dome-admin-go/internal/response"
	"dome-admin-go/internal/service"
	"dome-admin-go/pkg/upload"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const uploadSuccessMsg = "上传成功"

// UploadHandler 负责处理所有与文件上传相关的 API 请求。
type UploadHandler struct {
	uploadService service.UploadService
	policy        upload.Policy
	resp          *response.Writer
	logger        *zap.SugaredLogger
}

// NewUploadHandler 创建一个新的 UploadHandler 实例。
func NewUploadHandler(uploadService service.UploadService, policy upload.Policy, resp *response.Writer, logger *zap.SugaredLogger) *UploadHandler {
	return &UploadHandler{uploadService: uploadService, policy: policy, resp: resp, logger: logger}
}

// UploadFile 处理单文件上传，只取请求中的第一个文件分片。
func (h *UploadHandler) UploadFile(c *gin.Context) {
	ctx, cancel := h.readTimeout(c.Request.Context())
	defer cancel()

	src, err := h.partSource(ctx, c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	part, err := src.Next()
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(c, h.logger, err)
		return
	}

	file, err := h.uploadService.UploadOne(ctx, part)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.resp.JSON(c, http.StatusCreated, uploadSuccessMsg, response.Single(file))
}

// UploadFiles 处理多文件上传，按到达顺序存储所有文件分片。
func (h *UploadHandler) UploadFiles(c *gin.Context) {
	ctx, cancel := h.readTimeout(c.Request.Context())
	defer cancel()

	src, err := h.partSource(ctx, c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	files, err := h.uploadService.UploadMany(ctx, src)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.resp.JSON(c, http.StatusCreated, uploadSuccessMsg, response.Single(files))
}

// readTimeout 从读取第一个分片头开始限制整个请求体的读取时间。
func (h *UploadHandler) readTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.policy.ReadTimeout > 0 {
		return context.WithTimeout(ctx, h.policy.ReadTimeout)
	}
	return context.WithCancel(ctx)
}

// partSource 以流的方式读取 multipart 请求，不会把文件内容缓存到内存或临时文件。
// ctx 结束后对请求体的读取（包括分片头）都会失败。
func (h *UploadHandler) partSource(ctx context.Context, c *gin.Context) (upload.PartSource, error) {
	body := c.Request.Body
	c.Request.Body = struct {
		io.Reader
		io.Closer
	}{upload.ContextReader(ctx, body), body}

	mr, err := c.Request.MultipartReader()
	if err != nil {
		return nil, &upload.Error{Kind: upload.ErrMalformedRequest, Err: err}
	}
	return upload.NewMultipartSource(mr, h.policy.MaxFields), nil
}
