// Package repository 封装对 MySQL/PostgreSQL、Redis 与 Elasticsearch 的数据访问。
package repository

import (
	"context"
	"strings"

	"dome-admin-go/internal/model"
	"dome-admin-go/pkg/pagination"

	"gorm.io/gorm"
)

// ListFilter 是列表查询条件。
type ListFilter struct {
	Keyword        string
	Status         model.ListStatus
	Gender         model.Gender
	IncludeDeleted bool
}

// ListRepository 定义了列表项的持久化操作，同时可以直接交给分页引擎使用。
type ListRepository interface {
	pagination.Repository[model.ListItem, ListFilter]
	Create(ctx context.Context, item *model.ListItem) error
	FindByID(ctx context.Context, id uint) (*model.ListItem, error)
	Update(ctx context.Context, item *model.ListItem, fields []string) error
	Delete(ctx context.Context, id uint) error
}

type listRepository struct {
	*gormPager[model.ListItem, ListFilter]
	db *gorm.DB
}

// NewListRepository 创建一个新的 ListRepository 实例。
func NewListRepository(db *gorm.DB) (ListRepository, error) {
	pager, err := newGormPager[model.ListItem, ListFilter](db, listScope)
	if err != nil {
		return nil, err
	}
	return &listRepository{gormPager: pager, db: db}, nil
}

func listScope(f ListFilter) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if kw := strings.TrimSpace(f.Keyword); kw != "" {
			like := "%" + escapeLike(kw) + "%"
			db = db.Where("name LIKE ? OR email LIKE ?", like, like)
		}
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.Gender != "" {
			db = db.Where("gender = ?", f.Gender)
		}
		if !f.IncludeDeleted {
			db = db.Where("deleted = ?", false)
		}
		return db
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *listRepository) Create(ctx context.Context, item *model.ListItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// FindByID 未找到时返回 gorm.ErrRecordNotFound。
func (r *listRepository) FindByID(ctx context.Context, id uint) (*model.ListItem, error) {
	var item model.ListItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Update 只更新 fields 中列出的字段（Go 字段名）。
func (r *listRepository) Update(ctx context.Context, item *model.ListItem, fields []string) error {
	return r.db.WithContext(ctx).Model(item).Select(fields).Updates(item).Error
}

func (r *listRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.ListItem{}, id).Error
}
