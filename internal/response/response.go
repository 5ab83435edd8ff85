// Package response 统一 HTTP 响应体。成功结果由 Single 或 Page 包装，
// 由 Writer 按配置的模式序列化，错误统一为 {code, message}。
package response

import (
	"net/http"
	"time"

	"dome-admin-go/internal/model"
	"dome-admin-go/pkg/pagination"

	"github.com/gin-gonic/gin"
)

// Mode 是响应体的结构。
type Mode string

const (
	ModeSimple  Mode = "simple"
	ModeComplex Mode = "complex"
)

var statusMessages = map[int]string{
	http.StatusOK:                  "操作成功",
	http.StatusCreated:             "创建成功",
	http.StatusNoContent:           "删除成功",
	http.StatusBadRequest:          "请求参数错误",
	http.StatusUnauthorized:        "未授权访问",
	http.StatusForbidden:           "禁止访问",
	http.StatusNotFound:            "资源不存在",
	http.StatusInternalServerError: "服务器内部错误",
}

// StatusMessage 返回状态码对应的默认提示。
func StatusMessage(status int) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return "操作成功"
}

// Result 是处理器返回的成功结果，只能由 Single、Page 或 Empty 构造。
type Result interface {
	payload() (data any, meta *pagination.Meta)
}

type single struct{ value any }

func (s single) payload() (any, *pagination.Meta) { return s.value, nil }

type page struct {
	items any
	meta  pagination.Meta
}

func (p page) payload() (any, *pagination.Meta) { return p.items, &p.meta }

type empty struct{}

func (empty) payload() (any, *pagination.Meta) { return nil, nil }

// Single 包装单个对象或普通数组。
func Single(v any) Result { return single{value: v} }

// Page 包装分页结果，序列化时拆成 data 与 meta。
func Page[T any](p *pagination.PageResult[T]) Result {
	return page{items: p.Items, meta: p.Meta}
}

// Empty 表示没有 data 的结果。
func Empty() Result { return empty{} }

// Body 是响应体。simple 模式下 Success、Timestamp、Path 不输出。
type Body struct {
	Code      int              `json:"code"`
	Success   *bool            `json:"success,omitempty"`
	Msg       string           `json:"msg"`
	Timestamp string           `json:"timestamp,omitempty"`
	Path      string           `json:"path,omitempty"`
	Data      any              `json:"data,omitempty"`
	Meta      *pagination.Meta `json:"meta,omitempty"`
}

// ErrorBody 是失败响应体。
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Writer 按模式写出响应。
type Writer struct {
	mode Mode
	now  func() time.Time
}

// NewWriter 创建 Writer，未知模式按 complex 处理。
func NewWriter(mode string) *Writer {
	m := Mode(mode)
	if m != ModeSimple {
		m = ModeComplex
	}
	return &Writer{mode: m, now: time.Now}
}

// Build 组装响应体，msg 为空时使用状态码的默认提示。
func (w *Writer) Build(status int, path, msg string, r Result) Body {
	if msg == "" {
		msg = StatusMessage(status)
	}
	body := Body{Code: status, Msg: msg}
	if r != nil && status != http.StatusNoContent {
		body.Data, body.Meta = r.payload()
	}
	if w.mode == ModeComplex {
		success := status >= 200 && status < 300
		body.Success = &success
		body.Timestamp = w.now().Format(model.LocalTimeFormat)
		body.Path = path
	}
	return body
}

// JSON 写出成功响应。
func (w *Writer) JSON(c *gin.Context, status int, msg string, r Result) {
	c.JSON(status, w.Build(status, c.Request.URL.RequestURI(), msg, r))
}

// OK 以 200 写出成功响应。
func (w *Writer) OK(c *gin.Context, msg string, r Result) {
	w.JSON(c, http.StatusOK, msg, r)
}

// Error 写出失败响应并中止后续处理。
func Error(c *gin.Context, status int, message string) {
	if message == "" {
		message = StatusMessage(status)
	}
	c.AbortWithStatusJSON(status, ErrorBody{Code: status, Message: message})
}
