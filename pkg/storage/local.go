package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// tempPattern 是写入中的临时文件名，进程崩溃时可能残留。
const tempPattern = ".upload-*"

// LocalStorage 把文件写入本地目录 root 下。
type LocalStorage struct {
	root   string
	prefix string
}

// NewLocalStorage 创建本地存储，root 不存在时自动创建。
func NewLocalStorage(root, publicPrefix string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("创建存储根目录失败: %w", err)
	}
	return &LocalStorage{root: root, prefix: publicPrefix}, nil
}

// Root 返回存储根目录。
func (s *LocalStorage) Root() string { return s.root }

// Path 返回 key 对应的磁盘路径。key 不能逃逸出 root。
func (s *LocalStorage) Path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash("/" + key))
	if clean == string(filepath.Separator) {
		return "", fmt.Errorf("非法的存储 key: %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

// Put 先写入同目录下的临时文件，成功后 rename 到目标路径。
func (s *LocalStorage) Put(ctx context.Context, key string, r io.Reader, _ string) (int64, error) {
	dest, err := s.Path(key)
	if err != nil {
		return 0, err
	}
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("创建目录失败: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return 0, fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	n, err := io.Copy(tmp, r)
	if err != nil {
		return n, err
	}
	if err := ctx.Err(); err != nil {
		return n, err
	}
	if err := tmp.Sync(); err != nil {
		return n, fmt.Errorf("刷新文件失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("关闭文件失败: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return n, fmt.Errorf("提交文件失败: %w", err)
	}
	committed = true
	return n, nil
}

// Remove 删除 key 对应的文件，文件不存在不视为错误。
func (s *LocalStorage) Remove(_ context.Context, key string) error {
	dest, err := s.Path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dest); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Location 实现 Backend。
func (s *LocalStorage) Location(key string) string {
	return joinLocation(s.prefix, strings.TrimPrefix(filepath.ToSlash(key), "/"))
}

// SweepStaleTemp 删除 root 下修改时间早于 maxAge 的残留临时文件，返回删除数量。
func (s *LocalStorage) SweepStaleTemp(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(tempPattern, d.Name()); !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}
