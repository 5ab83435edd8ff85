package upload

import (
	"context"
	"errors"
	"io"

	"dome-admin-go/pkg/storage"
)

var errTruncated = errors.New("stream truncated by size guard")

// WriteResult 是一次写入的结果。Truncated 为 true 时目标已被清理，调用方负责把它转换为大小超限错误。
type WriteResult struct {
	BytesWritten int64
	Truncated    bool
	Key          string
	Location     string
}

// Writer 把受 SizeGuard 约束的流写入 <dateBucket>/<category>/<storedName>。
// 任何失败路径都会在返回前删除目标，存储中不会留下半截文件。
type Writer struct {
	backend storage.Backend
}

// NewWriter 创建一个 Writer。
func NewWriter(backend storage.Backend) *Writer {
	return &Writer{backend: backend}
}

// Write 流式写入。I/O 失败返回 *Error（ErrStorageIO 或 ErrUploadInterrupted）。
func (w *Writer) Write(ctx context.Context, guard *SizeGuard, a Assignment, contentType string) (WriteResult, error) {
	key := a.Key()
	res := WriteResult{Key: key, Location: w.backend.Location(key)}

	src := &guardedSource{guard: guard}
	n, err := w.backend.Put(ctx, key, src, contentType)

	if err == nil && !guard.Truncated() {
		res.BytesWritten = n
		return res, nil
	}

	if rmErr := w.backend.Remove(context.WithoutCancel(ctx), key); rmErr != nil {
		return res, newError(ErrStorageIO, a.OriginalName, errors.Join(err, rmErr))
	}

	switch {
	case guard.Truncated():
		res.Truncated = true
		return res, nil
	case src.err != nil:
		return res, newError(ErrUploadInterrupted, a.OriginalName, src.err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return res, newError(ErrUploadInterrupted, a.OriginalName, err)
	}
	return res, newError(ErrStorageIO, a.OriginalName, err)
}

// Discard 删除之前写入成功的 key。
func (w *Writer) Discard(ctx context.Context, key string) error {
	return w.backend.Remove(context.WithoutCancel(ctx), key)
}

// guardedSource 区分读端错误与写端错误，并在截断时让 Put 失败而不是提交。
type guardedSource struct {
	guard *SizeGuard
	err   error
}

func (s *guardedSource) Read(p []byte) (int, error) {
	n, err := s.guard.Read(p)
	switch {
	case err == nil:
		return n, nil
	case err == io.EOF:
		if s.guard.Truncated() {
			return n, errTruncated
		}
		return n, io.EOF
	default:
		s.err = err
		return n, err
	}
}
