package upload

import (
	"errors"
	"fmt"
)

var (
	ErrNoFileProvided    = errors.New("未检测到上传文件")
	ErrSizeLimitExceeded = errors.New("文件大小超过限制")
	ErrStorageIO         = errors.New("文件存储失败")
	ErrUploadInterrupted = errors.New("上传中断")
	ErrTooManyFiles      = errors.New("上传文件数量超过限制")
	ErrTooManyFields     = errors.New("表单字段数量超过限制")
	ErrMalformedRequest  = errors.New("无效的 multipart 请求")
)

// Error 描述某个文件上传失败的原因。Kind 是上面的哨兵错误之一，Err 是底层原因。
type Error struct {
	Kind  error
	File  string
	Limit int64
	Err   error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.File != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.File)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap 让 errors.Is 同时匹配 Kind 和底层原因。
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Message 返回可以直接展示给客户端的信息，不包含内部路径等细节。
func (e *Error) Message() string {
	switch {
	case errors.Is(e.Kind, ErrSizeLimitExceeded) && e.Limit > 0:
		return fmt.Sprintf("文件大小不能超过 %s", FormatSize(e.Limit))
	case errors.Is(e.Kind, ErrStorageIO):
		return ErrStorageIO.Error()
	case e.File != "":
		return fmt.Sprintf("%s: %s", e.Kind.Error(), e.File)
	}
	return e.Kind.Error()
}

func newError(kind error, file string, err error) *Error {
	return &Error{Kind: kind, File: file, Err: err}
}
