package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"dome-admin-go/pkg/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// Scope 是一个 gorm 查询条件片段。
type Scope = func(*gorm.DB) *gorm.DB

// gormPager 用 gorm 实现 pagination.Repository。W 通过 scope 函数转换为查询条件。
// 排序和投影字段可以写 Go 字段名（createTime）或列名（create_time），未知字段会被拒绝。
type gormPager[T any, W any] struct {
	db      *gorm.DB
	scope   func(W) Scope
	columns map[string]string
}

func newGormPager[T any, W any](db *gorm.DB, scope func(W) Scope) (*gormPager[T, W], error) {
	sch, err := schema.Parse(new(T), &sync.Map{}, db.NamingStrategy)
	if err != nil {
		return nil, fmt.Errorf("解析模型 schema 失败: %w", err)
	}
	columns := make(map[string]string, len(sch.Fields)*2)
	for _, f := range sch.Fields {
		if f.DBName == "" {
			continue
		}
		columns[strings.ToLower(f.Name)] = f.DBName
		columns[strings.ToLower(f.DBName)] = f.DBName
	}
	return &gormPager[T, W]{db: db, scope: scope, columns: columns}, nil
}

func (p *gormPager[T, W]) column(name string) (string, error) {
	if col, ok := p.columns[strings.ToLower(strings.TrimSpace(name))]; ok {
		return col, nil
	}
	return "", fmt.Errorf("%w: unknown column %q", pagination.ErrInvalidQueryOptions, name)
}

func (p *gormPager[T, W]) columnList(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, name := range names {
		col, err := p.column(name)
		if err != nil {
			return nil, err
		}
		out = append(out, col)
	}
	return out, nil
}

// windowQuery 在 tx 上构建窗口查询，不执行。
func (p *gormPager[T, W]) windowQuery(tx *gorm.DB, q pagination.FindQuery[W]) (*gorm.DB, error) {
	tx = tx.Model(new(T)).Scopes(p.scope(q.Where))

	if len(q.Select) > 0 {
		cols, err := p.columnList(q.Select)
		if err != nil {
			return nil, err
		}
		tx = tx.Select(cols)
	} else if len(q.Omit) > 0 {
		cols, err := p.columnList(q.Omit)
		if err != nil {
			return nil, err
		}
		tx = tx.Omit(cols...)
	}

	for _, s := range q.Sort {
		col, err := p.column(s.Column)
		if err != nil {
			return nil, err
		}
		tx = tx.Order(clause.OrderByColumn{
			Column: clause.Column{Name: col},
			Desc:   s.Direction == pagination.Desc,
		})
	}

	return tx.Offset(q.Skip).Limit(q.Take), nil
}

func (p *gormPager[T, W]) FindMany(ctx context.Context, q pagination.FindQuery[W]) ([]T, error) {
	tx, err := p.windowQuery(p.db.WithContext(ctx), q)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := tx.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (p *gormPager[T, W]) Count(ctx context.Context, where W) (int64, error) {
	var total int64
	err := p.db.WithContext(ctx).Model(new(T)).Scopes(p.scope(where)).Count(&total).Error
	return total, err
}
