// Package upload 实现流式文件接收：大小守卫、文件命名与分类、存储写入。
package upload

import (
	"context"
	"io"
)

// GuardResult 是流结束时的统计。
type GuardResult struct {
	BytesConsumed int64
	Truncated     bool
}

// SizeGuard 包装一个字节流并累计读取量。
// 超过 limit 时只交付前 limit 个字节并标记 truncated，随后把剩余数据读完丢弃再返回 io.EOF，
// 调用方因此无需中途中断底层连接。limit <= 0 表示不限制。
type SizeGuard struct {
	r         io.Reader
	limit     int64
	consumed  int64
	truncated bool
	done      bool
}

// NewSizeGuard 创建一个 SizeGuard。
func NewSizeGuard(r io.Reader, limit int64) *SizeGuard {
	return &SizeGuard{r: r, limit: limit}
}

func (g *SizeGuard) Read(p []byte) (int, error) {
	if g.done {
		return 0, io.EOF
	}
	if g.truncated {
		return 0, g.drain()
	}

	n, err := g.r.Read(p)
	g.consumed += int64(n)
	if g.limit > 0 && g.consumed > g.limit {
		g.truncated = true
		keep := n - int(g.consumed-g.limit)
		if err != nil && err != io.EOF {
			return keep, err
		}
		if err == io.EOF {
			g.done = true
			return keep, io.EOF
		}
		if keep == 0 {
			return 0, g.drain()
		}
		return keep, nil
	}
	if err == io.EOF {
		g.done = true
	}
	return n, err
}

func (g *SizeGuard) drain() error {
	n, err := io.Copy(io.Discard, g.r)
	g.consumed += n
	if err != nil {
		return err
	}
	g.done = true
	return io.EOF
}

// BytesConsumed 返回从底层流读取的总字节数，包括被丢弃的部分。
func (g *SizeGuard) BytesConsumed() int64 { return g.consumed }

// Truncated 报告流是否超过了限制。
func (g *SizeGuard) Truncated() bool { return g.truncated }

// Result 返回当前统计。
func (g *SizeGuard) Result() GuardResult {
	return GuardResult{BytesConsumed: g.consumed, Truncated: g.truncated}
}

// Limit 返回配置的上限。
func (g *SizeGuard) Limit() int64 { return g.limit }

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

// ContextReader 在每次 Read 前检查 ctx，ctx 结束后返回 ctx.Err()。
func ContextReader(ctx context.Context, r io.Reader) io.Reader {
	return &contextReader{ctx: ctx, r: r}
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
