package pagination

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Window 是归一化后的分页窗口。
type Window struct {
	Page     int
	PageSize int
	Skip     int
}

// Normalize 将 page/pageSize 夹紧到合法区间：page >= 1，1 <= pageSize <= 100。
// 0 表示未提供，分别取默认值 1 和 10。
func Normalize(page, pageSize int) Window {
	if page == 0 {
		page = DefaultPage
	}
	if page < 1 {
		page = 1
	}

	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	return Window{Page: page, PageSize: pageSize, Skip: (page - 1) * pageSize}
}

// ResolveSort 生成单键排序表达式。两者都为空时返回 createTime desc；
// 只给出其一时，另一项分别取 createTime 或 desc。方向统一转为小写。
func ResolveSort(column, direction string) Sort {
	column = strings.TrimSpace(column)
	direction = strings.ToLower(strings.TrimSpace(direction))

	if column == "" {
		column = DefaultSortColumn
	}
	if direction == "" {
		direction = string(Desc)
	}
	return Sort{{Column: column, Direction: Direction(direction)}}
}

// Request 是从查询串中解析出的原始分页请求。
type Request struct {
	Page          int
	PageSize      int
	SortColumn    string
	SortDirection string
}

// ParseRequest 读取 page、pageSize、orderByColumn、isAsc 四个查询参数。
// 数字参数接受小数并向下取整；isAsc 只接受 asc/desc（大小写不敏感）。
func ParseRequest(values url.Values) (Request, error) {
	page, err := parseNumber(values.Get("page"))
	if err != nil {
		return Request{}, fmt.Errorf("%w: page %v", ErrInvalidQueryOptions, err)
	}
	pageSize, err := parseNumber(values.Get("pageSize"))
	if err != nil {
		return Request{}, fmt.Errorf("%w: pageSize %v", ErrInvalidQueryOptions, err)
	}

	direction := strings.ToLower(strings.TrimSpace(values.Get("isAsc")))
	if direction != "" && !Direction(direction).Valid() {
		return Request{}, fmt.Errorf("%w: isAsc must be asc or desc", ErrInvalidQueryOptions)
	}

	return Request{
		Page:          page,
		PageSize:      pageSize,
		SortColumn:    strings.TrimSpace(values.Get("orderByColumn")),
		SortDirection: direction,
	}, nil
}

func parseNumber(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("must be a number, got %q", raw)
	}
	// 0 < f < 1 是显式给出的值，不能落回 0 被当成“未提供”。
	if f > 0 && f < 1 {
		return 1, nil
	}
	f = math.Floor(f)
	switch {
	case f > math.MaxInt32:
		return math.MaxInt32, nil
	case f < math.MinInt32:
		return math.MinInt32, nil
	}
	return int(f), nil
}
