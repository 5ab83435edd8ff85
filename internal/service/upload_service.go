// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"io"

	"dome-admin-go/internal/model"
	"dome-admin-go/pkg/log"
	"dome-admin-go/pkg/upload"

	"go.uber.org/zap"
)

// FileStoredNotifier 在文件成功落盘后接收通知。通知失败不影响上传结果。
type FileStoredNotifier interface {
	FilesStored(ctx context.Context, requestID string, files []*model.StoredFile) error
}

// UploadService 接口定义了文件上传相关的业务操作。
type UploadService interface {
	// UploadOne 存储单个文件分片。
	UploadOne(ctx context.Context, part *upload.Part) (*model.StoredFile, error)
	// UploadMany 按到达顺序存储请求中的所有文件分片，任一失败则整批回滚。
	UploadMany(ctx context.Context, src upload.PartSource) ([]*model.StoredFile, error)
}

type uploadService struct {
	writer   *upload.Writer
	namer    *upload.Namer
	policy   upload.Policy
	notifier FileStoredNotifier
	logger   *zap.SugaredLogger
}

// NewUploadService 创建一个新的 UploadService 实例，notifier 可以为 nil。
func NewUploadService(writer *upload.Writer, namer *upload.Namer, policy upload.Policy, notifier FileStoredNotifier, logger *zap.SugaredLogger) UploadService {
	return &uploadService{
		writer:   writer,
		namer:    namer,
		policy:   policy,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *uploadService) UploadOne(ctx context.Context, part *upload.Part) (*model.StoredFile, error) {
	if part == nil {
		return nil, upload.ErrNoFileProvided
	}
	ctx, cancel := s.withReadTimeout(ctx)
	defer cancel()

	f, err := s.store(ctx, part)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, []*model.StoredFile{f})
	return f, nil
}

func (s *uploadService) UploadMany(ctx context.Context, src upload.PartSource) ([]*model.StoredFile, error) {
	ctx, cancel := s.withReadTimeout(ctx)
	defer cancel()

	var stored []*model.StoredFile
	fail := func(err error) ([]*model.StoredFile, error) {
		s.rollback(ctx, stored)
		return nil, err
	}

	for {
		part, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fail(err)
		}
		if s.policy.MaxFiles > 0 && len(stored) >= s.policy.MaxFiles {
			return fail(&upload.Error{Kind: upload.ErrTooManyFiles, Limit: int64(s.policy.MaxFiles)})
		}

		f, err := s.store(ctx, part)
		if err != nil {
			return fail(err)
		}
		stored = append(stored, f)
	}

	if len(stored) == 0 {
		return nil, upload.ErrNoFileProvided
	}
	s.notify(ctx, stored)
	return stored, nil
}

// store 执行单文件流程：命名、限流、写入、生成描述。
func (s *uploadService) store(ctx context.Context, part *upload.Part) (*model.StoredFile, error) {
	a := s.namer.Assign(part.FileName)
	guard := upload.NewSizeGuard(upload.ContextReader(ctx, part.Body), s.policy.MaxFileBytes)

	res, err := s.writer.Write(ctx, guard, a, part.ContentType)
	if err != nil {
		return nil, err
	}
	if res.Truncated {
		s.logger.Infow("上传文件超过大小限制",
			"file", part.FileName,
			"limit", guard.Limit(),
			"consumed", guard.BytesConsumed(),
		)
		return nil, &upload.Error{Kind: upload.ErrSizeLimitExceeded, File: part.FileName, Limit: guard.Limit()}
	}

	s.logger.Infow("文件存储成功", "file", part.FileName, "key", res.Key, "bytes", res.BytesWritten)
	return &model.StoredFile{
		OriginalName: a.OriginalName,
		StoredName:   a.StoredName,
		StoragePath:  res.Location,
		TypeCategory: string(a.Category),
		Size:         res.BytesWritten,
		SizeLabel:    upload.FormatSize(res.BytesWritten),
		DateBucket:   a.DateBucket,
		MimeType:     part.ContentType,
		UploadedAt:   model.LocalTime(a.At),
	}, nil
}

// rollback 删除同一批次中已经写入成功的文件。
func (s *uploadService) rollback(ctx context.Context, stored []*model.StoredFile) {
	for _, f := range stored {
		if err := s.writer.Discard(ctx, f.Key()); err != nil {
			s.logger.Errorw("回滚已上传文件失败", "key", f.Key(), "error", err)
		}
	}
	if len(stored) > 0 {
		s.logger.Warnw("批量上传失败，已回滚", "count", len(stored))
	}
}

func (s *uploadService) notify(ctx context.Context, files []*model.StoredFile) {
	if s.notifier == nil {
		return
	}
	requestID := log.RequestID(ctx)
	if err := s.notifier.FilesStored(context.WithoutCancel(ctx), requestID, files); err != nil {
		s.logger.Warnw("文件事件分发失败", "requestID", requestID, "count", len(files), "error", err)
	}
}

func (s *uploadService) withReadTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.policy.ReadTimeout > 0 {
		return context.WithTimeout(ctx, s.policy.ReadTimeout)
	}
	return context.WithCancel(ctx)
}
