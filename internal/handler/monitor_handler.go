package handler

import (
	"dome-admin-go/internal/response"
	"dome-admin-go/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MonitorHandler 提供服务监控接口。
type MonitorHandler struct {
	monitorService service.MonitorService
	resp           *response.Writer
	logger         *zap.SugaredLogger
}

// NewMonitorHandler 创建一个新的 MonitorHandler 实例。
func NewMonitorHandler(monitorService service.MonitorService, resp *response.Writer, logger *zap.SugaredLogger) *MonitorHandler {
	return &MonitorHandler{monitorService: monitorService, resp: resp, logger: logger}
}

// ServerInfo 返回服务器 CPU、内存、系统与磁盘信息。
func (h *MonitorHandler) ServerInfo(c *gin.Context) {
	info, err := h.monitorService.ServerInfo(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.resp.OK(c, "", response.Single(info))
}
