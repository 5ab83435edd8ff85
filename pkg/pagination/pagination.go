// Package pagination 把松散的分页/排序参数转换为有界的仓储查询，并组装统一的分页结果。
package pagination

import (
	"context"
	"errors"
)

const (
	DefaultPage       = 1
	DefaultPageSize   = 10
	MaxPageSize       = 100
	DefaultSortColumn = "createTime"
)

// ErrInvalidQueryOptions 表示查询选项本身不合法，例如同时指定了 select 与 omit。
var ErrInvalidQueryOptions = errors.New("invalid query options")

// Direction 是排序方向。
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Valid 判断方向是否为 asc 或 desc。
func (d Direction) Valid() bool {
	return d == Asc || d == Desc
}

// SortField 是单个排序键。
type SortField struct {
	Column    string    `json:"column"`
	Direction Direction `json:"direction"`
}

// Sort 是有序的排序表达式，第一个元素优先级最高。
type Sort []SortField

// Params 是一次分页查询的输入。
// Page 和 PageSize 为 0 时视为未提供。Sort 非空时直接使用，跳过 SortColumn/SortDirection 的归一化。
type Params[W any] struct {
	Page          int
	PageSize      int
	Where         W
	SortColumn    string
	SortDirection string
	Sort          Sort
	Select        []string
	Omit          []string
}

// FindQuery 是发往仓储的窗口查询。
type FindQuery[W any] struct {
	Where  W
	Skip   int
	Take   int
	Sort   Sort
	Select []string
	Omit   []string
}

// Repository 是分页引擎所依赖的数据源能力。
type Repository[T any, W any] interface {
	FindMany(ctx context.Context, q FindQuery[W]) ([]T, error)
	Count(ctx context.Context, where W) (int64, error)
}

// Meta 是分页元信息。
type Meta struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	TotalPage int   `json:"totalPage"`
}

// PageResult 是一页结果。
type PageResult[T any] struct {
	Items []T  `json:"items"`
	Meta  Meta `json:"meta"`
}
