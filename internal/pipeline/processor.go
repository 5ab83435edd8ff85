// Package pipeline 定义了文件落盘之后的处理流程：写入检索索引并累计统计。
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dome-admin-go/internal/model"
	"dome-admin-go/internal/repository"
	"dome-admin-go/pkg/tasks"

	"go.uber.org/zap"
)

// Processor 处理文件落盘事件。fileIndex 或 stats 为 nil 时跳过对应步骤。
// 每个步骤单独重试，已成功的步骤不会因为另一个步骤失败而重复执行。
type Processor struct {
	fileIndex repository.FileIndexRepository
	stats     repository.UploadStatsRepository
	logger    *zap.SugaredLogger

	attempts int
	backoff  time.Duration
}

// Option 配置 Processor。
type Option func(*Processor)

// WithRetry 让每个步骤最多执行 attempts 次，第 n 次失败后等待 n*backoff。
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(p *Processor) {
		if attempts > 0 {
			p.attempts = attempts
		}
		p.backoff = backoff
	}
}

// NewProcessor 创建一个新的 Processor 实例，默认每个步骤只执行一次。
func NewProcessor(fileIndex repository.FileIndexRepository, stats repository.UploadStatsRepository, logger *zap.SugaredLogger, opts ...Option) *Processor {
	p := &Processor{fileIndex: fileIndex, stats: stats, logger: logger, attempts: 1}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process 是事件处理的主函数，两个步骤互不影响，错误合并后返回。
func (p *Processor) Process(ctx context.Context, task tasks.FileStoredTask) error {
	f := task.File
	var errs []error

	if p.fileIndex != nil {
		if err := p.run(ctx, task, "index", func() error { return p.fileIndex.Index(ctx, &f) }); err != nil {
			errs = append(errs, fmt.Errorf("索引文件 %s: %w", f.StoragePath, err))
		}
	}
	if p.stats != nil {
		if err := p.run(ctx, task, "stats", func() error { return p.stats.Record(ctx, &f) }); err != nil {
			errs = append(errs, fmt.Errorf("统计文件 %s: %w", f.StoragePath, err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	p.logger.Debugw("文件事件处理完成", "eventID", task.EventID, "storagePath", f.StoragePath)
	return nil
}

func (p *Processor) run(ctx context.Context, task tasks.FileStoredTask, step string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == p.attempts {
			break
		}
		p.logger.Warnw("文件事件步骤失败，稍后重试",
			"step", step,
			"eventID", task.EventID,
			"attempt", attempt,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(time.Duration(attempt) * p.backoff):
		}
	}
	return err
}

// Publisher 把事件发送到消息队列。
type Publisher interface {
	Publish(ctx context.Context, events ...tasks.FileStoredTask) error
}

// Dispatcher 在上传成功后分发事件：配置了 Kafka 时异步投递，否则在当前请求内直接处理。
type Dispatcher struct {
	publisher Publisher
	processor *Processor
}

// NewDispatcher 创建 Dispatcher，publisher 可以为 nil。
func NewDispatcher(publisher Publisher, processor *Processor) *Dispatcher {
	return &Dispatcher{publisher: publisher, processor: processor}
}

// FilesStored 实现 service.FileStoredNotifier。
func (d *Dispatcher) FilesStored(ctx context.Context, requestID string, files []*model.StoredFile) error {
	events := make([]tasks.FileStoredTask, 0, len(files))
	for _, f := range files {
		events = append(events, tasks.NewFileStoredTask(*f, requestID))
	}

	if d.publisher != nil {
		return d.publisher.Publish(ctx, events...)
	}

	var errs []error
	for _, ev := range events {
		if err := d.processor.Process(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
