package service

import (
	"context"
	"time"

	"dome-admin-go/internal/model"
	"dome-admin-go/internal/repository"
	"dome-admin-go/pkg/pagination"
	"dome-admin-go/pkg/upload"
)

// FileService 提供已上传文件的浏览与统计。
type FileService interface {
	Page(ctx context.Context, req pagination.Request, filter repository.FileFilter) (*pagination.PageResult[model.StoredFile], error)
	DailyStats(ctx context.Context, date string) ([]model.UploadDailyStat, error)
}

type fileService struct {
	index repository.FileIndexRepository
	stats repository.UploadStatsRepository
	now   func() time.Time
}

// NewFileService 创建 FileService。
func NewFileService(index repository.FileIndexRepository, stats repository.UploadStatsRepository) FileService {
	return &fileService{index: index, stats: stats, now: time.Now}
}

func (s *fileService) Page(ctx context.Context, req pagination.Request, filter repository.FileFilter) (*pagination.PageResult[model.StoredFile], error) {
	return pagination.Paginate[model.StoredFile, repository.FileFilter](ctx, s.index, pagination.Params[repository.FileFilter]{
		Page:          req.Page,
		PageSize:      req.PageSize,
		Where:         filter,
		SortColumn:    req.SortColumn,
		SortDirection: req.SortDirection,
	})
}

// DailyStats 返回某天的分类统计，date 为空时取今天。
func (s *fileService) DailyStats(ctx context.Context, date string) ([]model.UploadDailyStat, error) {
	if date == "" {
		date = s.now().Format("2006-01-02")
	}
	stats, err := s.stats.Daily(ctx, date)
	if err != nil {
		return nil, err
	}
	for i := range stats {
		stats[i].SizeLabel = upload.FormatSize(stats[i].Bytes)
	}
	return stats, nil
}
