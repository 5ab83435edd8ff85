package pagination

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Paginate 对 repo 并发执行窗口查询与计数查询，二者都完成后组装分页结果。
// 任一查询失败则整个调用失败，仓储返回的错误原样向上传递，不做重试。
func Paginate[T any, W any](ctx context.Context, repo Repository[T, W], p Params[W]) (*PageResult[T], error) {
	if len(p.Select) > 0 && len(p.Omit) > 0 {
		return nil, fmt.Errorf("%w: select and omit are mutually exclusive", ErrInvalidQueryOptions)
	}

	window := Normalize(p.Page, p.PageSize)

	sort := p.Sort
	if len(sort) == 0 {
		sort = ResolveSort(p.SortColumn, p.SortDirection)
	}
	for _, f := range sort {
		if f.Column == "" || !f.Direction.Valid() {
			return nil, fmt.Errorf("%w: bad sort %q %q", ErrInvalidQueryOptions, f.Column, f.Direction)
		}
	}

	query := FindQuery[W]{
		Where:  p.Where,
		Skip:   window.Skip,
		Take:   window.PageSize,
		Sort:   sort,
		Select: p.Select,
		Omit:   p.Omit,
	}

	var (
		items []T
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = repo.FindMany(gctx, query)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = repo.Count(gctx, p.Where)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(items) > window.PageSize {
		items = items[:window.PageSize]
	}
	if items == nil {
		items = []T{}
	}

	return &PageResult[T]{
		Items: items,
		Meta: Meta{
			Page:      window.Page,
			PageSize:  window.PageSize,
			Total:     total,
			TotalPage: TotalPages(total, window.PageSize),
		},
	}, nil
}

// TotalPages 计算 ceil(total/pageSize)，最小为 1。
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
