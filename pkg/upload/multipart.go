package upload

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
)

// Part 是 multipart 请求中的一个文件分片，只在一次上传调用期间有效。
type Part struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

// PartSource 按到达顺序逐个产出文件分片，结束时返回 io.EOF。
type PartSource interface {
	Next() (*Part, error)
}

// MultipartSource 从 multipart.Reader 中只取文件分片；非文件字段被跳过并计入 maxFields。
type MultipartSource struct {
	mr        *multipart.Reader
	maxFields int
	fields    int
}

// NewMultipartSource 创建 MultipartSource，maxFields <= 0 表示不限制。
func NewMultipartSource(mr *multipart.Reader, maxFields int) *MultipartSource {
	return &MultipartSource{mr: mr, maxFields: maxFields}
}

// Next 实现 PartSource。上一个分片未读完的部分会被 multipart.Reader 自动丢弃。
func (s *MultipartSource) Next() (*Part, error) {
	for {
		p, err := s.mr.NextPart()
		if err == io.EOF {
			return nil, io.EOF
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, newError(ErrUploadInterrupted, "", err)
		}
		if err != nil {
			return nil, newError(ErrMalformedRequest, "", err)
		}

		if p.FileName() == "" {
			s.fields++
			if s.maxFields > 0 && s.fields > s.maxFields {
				return nil, &Error{Kind: ErrTooManyFields, Limit: int64(s.maxFields)}
			}
			continue
		}

		return &Part{
			FileName:    p.FileName(),
			ContentType: p.Header.Get("Content-Type"),
			Body:        p,
		}, nil
	}
}

// Fields 返回目前为止跳过的非文件字段数。
func (s *MultipartSource) Fields() int { return s.fields }
