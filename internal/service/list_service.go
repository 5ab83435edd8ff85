package service

import (
	"context"
	"errors"

	"dome-admin-go/internal/model"
	"dome-admin-go/internal/repository"
	"dome-admin-go/pkg/pagination"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrListItemNotFound 表示请求的列表项不存在。
var ErrListItemNotFound = errors.New("没有找到该数据")

// ListPatch 描述一次部分更新，nil 字段保持不变。
type ListPatch struct {
	Email    *string
	Name     *string
	Status   *model.ListStatus
	Tags     *[]string
	Metadata *map[string]any
	Score    *int
	Balance  *string
	Gender   *model.Gender
	Phone    *string
	Deleted  *bool
}

// apply 把非 nil 字段写入 item，返回被修改的 Go 字段名。
func (p ListPatch) apply(item *model.ListItem) []string {
	var fields []string
	set := func(name string, ok bool, assign func()) {
		if ok {
			assign()
			fields = append(fields, name)
		}
	}
	set("Email", p.Email != nil, func() { item.Email = *p.Email })
	set("Name", p.Name != nil, func() { item.Name = *p.Name })
	set("Status", p.Status != nil, func() { item.Status = *p.Status })
	set("Tags", p.Tags != nil, func() { item.Tags = *p.Tags })
	set("Metadata", p.Metadata != nil, func() { item.Metadata = *p.Metadata })
	set("Score", p.Score != nil, func() { item.Score = *p.Score })
	set("Balance", p.Balance != nil, func() { item.Balance = *p.Balance })
	set("Gender", p.Gender != nil, func() { item.Gender = p.Gender })
	set("Phone", p.Phone != nil, func() { item.Phone = p.Phone })
	set("Deleted", p.Deleted != nil, func() { item.Deleted = *p.Deleted })
	return fields
}

// ListService 接口定义了列表资源的业务操作。
type ListService interface {
	Create(ctx context.Context, item *model.ListItem) error
	Page(ctx context.Context, req pagination.Request, filter repository.ListFilter) (*pagination.PageResult[model.ListItem], error)
	Get(ctx context.Context, id uint) (*model.ListItem, error)
	Update(ctx context.Context, id uint, patch ListPatch) (*model.ListItem, error)
	Delete(ctx context.Context, id uint) error
}

type listService struct {
	repo   repository.ListRepository
	logger *zap.SugaredLogger
}

// NewListService 创建一个新的 ListService 实例。
func NewListService(repo repository.ListRepository, logger *zap.SugaredLogger) ListService {
	return &listService{repo: repo, logger: logger}
}

func (s *listService) Create(ctx context.Context, item *model.ListItem) error {
	if item.Status == "" {
		item.Status = model.ListStatusActive
	}
	if item.Balance == "" {
		item.Balance = "0"
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return err
	}
	s.logger.Infow("列表项创建成功", "id", item.ID)
	return nil
}

func (s *listService) Page(ctx context.Context, req pagination.Request, filter repository.ListFilter) (*pagination.PageResult[model.ListItem], error) {
	return pagination.Paginate[model.ListItem, repository.ListFilter](ctx, s.repo, pagination.Params[repository.ListFilter]{
		Page:          req.Page,
		PageSize:      req.PageSize,
		Where:         filter,
		SortColumn:    req.SortColumn,
		SortDirection: req.SortDirection,
	})
}

func (s *listService) Get(ctx context.Context, id uint) (*model.ListItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrListItemNotFound
	}
	return item, err
}

func (s *listService) Update(ctx context.Context, id uint, patch ListPatch) (*model.ListItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	fields := patch.apply(item)
	if len(fields) == 0 {
		return item, nil
	}
	if err := s.repo.Update(ctx, item, fields); err != nil {
		return nil, err
	}
	s.logger.Infow("列表项更新成功", "id", id, "fields", fields)
	return item, nil
}

func (s *listService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Infow("列表项删除成功", "id", id)
	return nil
}
