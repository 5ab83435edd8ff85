package handler

import (
	"time"

	"dome-admin-go/internal/repository"
	"dome-admin-go/internal/response"
	"dome-admin-go/internal/service"
	"dome-admin-go/pkg/pagination"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FileHandler 提供已上传文件的浏览与统计接口。
type FileHandler struct {
	fileService service.FileService
	resp        *response.Writer
	logger      *zap.SugaredLogger
}

// NewFileHandler 创建一个新的 FileHandler 实例。
func NewFileHandler(fileService service.FileService, resp *response.Writer, logger *zap.SugaredLogger) *FileHandler {
	return &FileHandler{fileService: fileService, resp: resp, logger: logger}
}

// FileQuery 是文件列表的过滤参数。
type FileQuery struct {
	Type    string `form:"type" binding:"omitempty,oneof=image document music video other"`
	Date    string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	Keyword string `form:"keyword"`
}

// ListFiles 分页查询检索索引中的文件。
func (h *FileHandler) ListFiles(c *gin.Context) {
	req, err := pagination.ParseRequest(c.Request.URL.Query())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	var q FileQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, h.logger, "查询参数错误", err)
		return
	}

	result, err := h.fileService.Page(c.Request.Context(), req, repository.FileFilter{
		TypeCategory: q.Type,
		DateBucket:   q.Date,
		Keyword:      q.Keyword,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.resp.OK(c, "", response.Page(result))
}

// Stats 返回某天各类文件的上传数量与字节数。
func (h *FileHandler) Stats(c *gin.Context) {
	date := c.Query("date")
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			badRequest(c, h.logger, "日期格式必须是 YYYY-MM-DD", err)
			return
		}
	}
	stats, err := h.fileService.DailyStats(c.Request.Context(), date)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.resp.OK(c, "", response.Single(stats))
}
