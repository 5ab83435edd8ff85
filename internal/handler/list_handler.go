package handler

import (
	"net/http"
	"strconv"

	"dome-admin-go/internal/model"
	"dome-admin-go/internal/repository"
	"dome-admin-go/internal/response"
	"dome-admin-go/internal/service"
	"dome-admin-go/pkg/pagination"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListHandler 负责列表资源的增删改查。
type ListHandler struct {
	listService service.ListService
	resp        *response.Writer
	logger      *zap.SugaredLogger
}

// NewListHandler 创建一个新的 ListHandler 实例。
func NewListHandler(listService service.ListService, resp *response.Writer, logger *zap.SugaredLogger) *ListHandler {
	return &ListHandler{listService: listService, resp: resp, logger: logger}
}

// CreateListRequest 定义了创建列表项的请求体结构。
type CreateListRequest struct {
	Email    string           `json:"email" binding:"required"`
	Name     string           `json:"name" binding:"required"`
	Status   model.ListStatus `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE BANNED"`
	Tags     []string         `json:"tags"`
	Metadata map[string]any   `json:"metadata"`
	Score    int              `json:"score"`
	Balance  string           `json:"balance" binding:"omitempty,decimal2"`
	Gender   *model.Gender    `json:"gender" binding:"omitempty,oneof=MALE FEMALE OTHER"`
	Phone    *string          `json:"phone"`
	Deleted  bool             `json:"deleted"`
}

// UpdateListRequest 定义了部分更新的请求体结构，缺省字段保持不变。
type UpdateListRequest struct {
	Email    *string           `json:"email" binding:"omitempty,min=1"`
	Name     *string           `json:"name" binding:"omitempty,min=1"`
	Status   *model.ListStatus `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE BANNED"`
	Tags     *[]string         `json:"tags"`
	Metadata *map[string]any   `json:"metadata"`
	Score    *int              `json:"score"`
	Balance  *string           `json:"balance" binding:"omitempty,decimal2"`
	Gender   *model.Gender     `json:"gender" binding:"omitempty,oneof=MALE FEMALE OTHER"`
	Phone    *string           `json:"phone"`
	Deleted  *bool             `json:"deleted"`
}

// ListQuery 是列表查询的过滤参数，分页参数由 pagination.ParseRequest 解析。
type ListQuery struct {
	Keyword string           `form:"keyword"`
	Status  model.ListStatus `form:"status" binding:"omitempty,oneof=ACTIVE INACTIVE BANNED"`
	Gender  model.Gender     `form:"gender" binding:"omitempty,oneof=MALE FEMALE OTHER"`
}

// Create 创建列表项。
func (h *ListHandler) Create(c *gin.Context) {
	var req CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "请求参数错误：邮箱和昵称不能为空", err)
		return
	}

	item := &model.ListItem{
		Email:    req.Email,
		Name:     req.Name,
		Status:   req.Status,
		Tags:     req.Tags,
		Metadata: req.Metadata,
		Score:    req.Score,
		Balance:  req.Balance,
		Gender:   req.Gender,
		Phone:    req.Phone,
		Deleted:  req.Deleted,
	}
	if err := h.listService.Create(c.Request.Context(), item); err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.resp.JSON(c, http.StatusCreated, "", response.Single(item))
}

// List 分页查询列表项。
func (h *ListHandler) List(c *gin.Context) {
	req, err := pagination.ParseRequest(c.Request.URL.Query())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, h.logger, "查询参数错误", err)
		return
	}

	result, err := h.listService.Page(c.Request.Context(), req, repository.ListFilter{
		Keyword: q.Keyword,
		Status:  q.Status,
		Gender:  q.Gender,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.resp.OK(c, "", response.Page(result))
}

// Get 查询单个列表项。
func (h *ListHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	item, err := h.listService.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.resp.OK(c, "", response.Single(item))
}

// Update 部分更新列表项。
func (h *ListHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req UpdateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "请求参数错误", err)
		return
	}

	item, err := h.listService.Update(c.Request.Context(), id, service.ListPatch{
		Email:    req.Email,
		Name:     req.Name,
		Status:   req.Status,
		Tags:     req.Tags,
		Metadata: req.Metadata,
		Score:    req.Score,
		Balance:  req.Balance,
		Gender:   req.Gender,
		Phone:    req.Phone,
		Deleted:  req.Deleted,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.resp.OK(c, "", response.Single(item))
}

// Delete 删除列表项。
func (h *ListHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.listService.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.resp.OK(c, "删除成功", response.Empty())
}

func (h *ListHandler) pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		badRequest(c, h.logger, "无效的 ID", err)
		return 0, false
	}
	return uint(id), true
}
