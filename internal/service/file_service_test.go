package service

import (
	"context"
	"testing"
	"time"

	"dome-admin-go/internal/model"
	"dome-admin-go/internal/repository"
	"dome-admin-go/pkg/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFileIndex struct {
	files []model.StoredFile
	query pagination.FindQuery[repository.FileFilter]
}

func (s *stubFileIndex) Index(context.Context, *model.StoredFile) error { return nil }

func (s *stubFileIndex) FindMany(_ context.Context, q pagination.FindQuery[repository.FileFilter]) ([]model.StoredFile, error) {
	s.query = q
	return s.files, nil
}

func (s *stubFileIndex) Count(context.Context, repository.FileFilter) (int64, error) {
	return int64(len(s.files)), nil
}

type stubStats struct {
	date  string
	stats []model.UploadDailyStat
}

func (s *stubStats) Record(context.Context, *model.StoredFile) error { return nil }

func (s *stubStats) Daily(_ context.Context, date string) ([]model.UploadDailyStat, error) {
	s.date = date
	return s.stats, nil
}

func TestFileServicePage(t *testing.T) {
	index := &stubFileIndex{files: []model.StoredFile{{StoredName: "a.png"}, {StoredName: "b.png"}}}
	svc := NewFileService(index, &stubStats{})

	res, err := svc.Page(context.Background(), pagination.Request{Page: 2, PageSize: 1}, repository.FileFilter{TypeCategory: "image"})
	require.NoError(t, err)

	assert.Equal(t, 1, index.query.Skip)
	assert.Equal(t, 1, index.query.Take)
	assert.Equal(t, "image", index.query.Where.TypeCategory)
	assert.Len(t, res.Items, 1, "items are capped at pageSize")
	assert.Equal(t, pagination.Meta{Page: 2, PageSize: 1, Total: 2, TotalPage: 2}, res.Meta)
}

func TestFileServiceDailyStats(t *testing.T) {
	stats := &stubStats{stats: []model.UploadDailyStat{
		{TypeCategory: "image", Count: 2, Bytes: 2411725},
		{TypeCategory: "other", Count: 1, Bytes: 0},
	}}
	svc := NewFileService(&stubFileIndex{}, stats)
	svc.(*fileService).now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local) }

	got, err := svc.DailyStats(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", stats.date)
	assert.Equal(t, "2.30 MB", got[0].SizeLabel)
	assert.Equal(t, "0 Bytes", got[1].SizeLabel)

	_, err = svc.DailyStats(context.Background(), "2024-04-30")
	require.NoError(t, err)
	assert.Equal(t, "2024-04-30", stats.date)
}
