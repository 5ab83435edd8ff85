// Package storage 提供文件落盘的后端实现（本地磁盘与 MinIO）。
package storage

import (
	"context"
	"io"
	"strings"
)

// Backend 是一个按 key 寻址的持久化存储。
// Put 必须流式写入；失败时不得在 key 处留下部分内容。
type Backend interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (int64, error)
	Remove(ctx context.Context, key string) error
	// Location 返回 key 对外暴露的访问路径。
	Location(key string) string
}

func joinLocation(prefix, key string) string {
	prefix = strings.TrimRight(prefix, "/")
	return prefix + "/" + strings.TrimLeft(key, "/")
}
