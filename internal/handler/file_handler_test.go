package handler

import (
	"context"
	"net/http"
	"testing"

	"dome-admin-go/internal/model"
	"dome-admin-go/internal/repository"
	"dome-admin-go/internal/response"
	"dome-admin-go/pkg/pagination"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubFileService struct {
	filter repository.FileFilter
	date   string
}

func (s *stubFileService) Page(_ context.Context, _ pagination.Request, filter repository.FileFilter) (*pagination.PageResult[model.StoredFile], error) {
	s.filter = filter
	return &pagination.PageResult[model.StoredFile]{
		Items: []model.StoredFile{},
		Meta:  pagination.Meta{Page: 1, PageSize: 10, Total: 0, TotalPage: 1},
	}, nil
}

func (s *stubFileService) DailyStats(_ context.Context, date string) ([]model.UploadDailyStat, error) {
	s.date = date
	return []model.UploadDailyStat{{TypeCategory: "image", Count: 1, Bytes: 1024, SizeLabel: "1.00 KB"}}, nil
}

func newFileRouter(t *testing.T, svc *stubFileService) *gin.Engine {
	t.Helper()
	h := NewFileHandler(svc, response.NewWriter("simple"), zaptest.NewLogger(t).Sugar())
	r := gin.New()
	r.GET("/api/v1/upload/files", h.ListFiles)
	r.GET("/api/v1/upload/stats", h.Stats)
	return r
}

func TestListFiles(t *testing.T) {
	svc := &stubFileService{}
	rec := serve(newFileRouter(t, svc), http.MethodGet, "/api/v1/upload/files?type=image&date=2024-05-01&keyword=cat", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, repository.FileFilter{TypeCategory: "image", DateBucket: "2024-05-01", Keyword: "cat"}, svc.filter)
	assert.JSONEq(t, `{"code":200,"msg":"操作成功","data":[],"meta":{"page":1,"pageSize":10,"total":0,"totalPage":1}}`, rec.Body.String())
}

func TestListFilesRejectsBadFilters(t *testing.T) {
	for _, q := range []string{"type=pdf", "date=01-05-2024"} {
		t.Run(q, func(t *testing.T) {
			rec := serve(newFileRouter(t, &stubFileService{}), http.MethodGet, "/api/v1/upload/files?"+q, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestStats(t *testing.T) {
	svc := &stubFileService{}
	r := newFileRouter(t, svc)

	rec := serve(r, http.MethodGet, "/api/v1/upload/stats?date=2024-05-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-05-01", svc.date)
	assert.JSONEq(t, `{"code":200,"msg":"操作成功","data":[{"typeCategory":"image","count":1,"bytes":1024,"sizeLabel":"1.00 KB"}]}`, rec.Body.String())

	rec = serve(r, http.MethodGet, "/api/v1/upload/stats?date=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
