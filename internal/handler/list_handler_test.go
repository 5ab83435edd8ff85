package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dome-admin-go/internal/model"
	"dome-admin-go/internal/repository"
	"dome-admin-go/internal/response"
	"dome-admin-go/internal/service"
	"dome-admin-go/pkg/pagination"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubListService struct {
	created *model.ListItem
	req     pagination.Request
	filter  repository.ListFilter
	patch   service.ListPatch
	err     error
}

func (s *stubListService) Create(_ context.Context, item *model.ListItem) error {
	item.ID = 7
	s.created = item
	return s.err
}

func (s *stubListService) Page(_ context.Context, req pagination.Request, filter repository.ListFilter) (*pagination.PageResult[model.ListItem], error) {
	s.req, s.filter = req, filter
	if s.err != nil {
		return nil, s.err
	}
	return &pagination.PageResult[model.ListItem]{
		Items: []model.ListItem{{ID: 1, Name: "a"}},
		Meta:  pagination.Meta{Page: 1, PageSize: 10, Total: 1, TotalPage: 1},
	}, nil
}

func (s *stubListService) Get(_ context.Context, id uint) (*model.ListItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.ListItem{ID: id, Name: "a"}, nil
}

func (s *stubListService) Update(_ context.Context, id uint, patch service.ListPatch) (*model.ListItem, error) {
	s.patch = patch
	if s.err != nil {
		return nil, s.err
	}
	return &model.ListItem{ID: id, Name: *patch.Name}, nil
}

func (s *stubListService) Delete(context.Context, uint) error { return s.err }

func newListRouter(t *testing.T, svc service.ListService) *gin.Engine {
	t.Helper()
	h := NewListHandler(svc, response.NewWriter("simple"), zaptest.NewLogger(t).Sugar())
	r := gin.New()
	list := r.Group("/api/v1/list")
	list.POST("", h.Create)
	list.GET("", h.List)
	list.GET("/:id", h.Get)
	list.PATCH("/:id", h.Update)
	list.DELETE("/:id", h.Delete)
	return r
}

func serve(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestListCreate(t *testing.T) {
	svc := &stubListService{}
	r := newListRouter(t, svc)

	rec := serve(r, http.MethodPost, "/api/v1/list",
		`{"email":"a@example.com","name":"a","status":"BANNED","tags":["x"],"metadata":{"k":1},"balance":"12.50","gender":"FEMALE"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.NotNil(t, svc.created)
	assert.Equal(t, model.ListStatusBanned, svc.created.Status)
	assert.Equal(t, []string{"x"}, svc.created.Tags)
	assert.Equal(t, "12.50", svc.created.Balance)
	assert.Equal(t, model.GenderFemale, *svc.created.Gender)

	var body struct {
		Msg  string         `json:"msg"`
		Data model.ListItem `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "创建成功", body.Msg)
	assert.Equal(t, uint(7), body.Data.ID)
}

func TestListCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing name", body: `{"email":"a@example.com"}`},
		{name: "bad status", body: `{"email":"a@example.com","name":"a","status":"GONE"}`},
		{name: "bad gender", body: `{"email":"a@example.com","name":"a","gender":"X"}`},
		{name: "three decimals", body: `{"email":"a@example.com","name":"a","balance":"1.234"}`},
		{name: "not json", body: `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubListService{}
			rec := serve(newListRouter(t, svc), http.MethodPost, "/api/v1/list", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, svc.created)
		})
	}
}

func TestListPage(t *testing.T) {
	svc := &stubListService{}
	r := newListRouter(t, svc)

	rec := serve(r, http.MethodGet, "/api/v1/list?page=2.7&pageSize=1000&orderByColumn=score&isAsc=ASC&keyword=bo&status=ACTIVE", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, pagination.Request{Page: 2, PageSize: 1000, SortColumn: "score", SortDirection: "asc"}, svc.req)
	assert.Equal(t, repository.ListFilter{Keyword: "bo", Status: model.ListStatusActive}, svc.filter)
	assert.JSONEq(t,
		`{"code":200,"msg":"操作成功","data":[`+mustJSON(t, model.ListItem{ID: 1, Name: "a"})+`],"meta":{"page":1,"pageSize":10,"total":1,"totalPage":1}}`,
		rec.Body.String())
}

func TestListPageRejectsBadQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "non numeric page", query: "page=abc"},
		{name: "bad direction", query: "isAsc=up"},
		{name: "bad status", query: "status=GONE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(newListRouter(t, &stubListService{}), http.MethodGet, "/api/v1/list?"+tt.query, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestListErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		method   string
		target   string
		body     string
		wantCode int
		wantMsg  string
	}{
		{name: "get missing", err: service.ErrListItemNotFound, method: http.MethodGet, target: "/api/v1/list/9", wantCode: 404, wantMsg: "没有找到该数据"},
		{name: "delete missing", err: service.ErrListItemNotFound, method: http.MethodDelete, target: "/api/v1/list/9", wantCode: 404, wantMsg: "没有找到该数据"},
		{name: "patch missing", err: service.ErrListItemNotFound, method: http.MethodPatch, target: "/api/v1/list/9", body: `{"name":"b"}`, wantCode: 404, wantMsg: "没有找到该数据"},
		{name: "repository failure", err: errors.New("dial tcp 10.0.0.3:3306: refused"), method: http.MethodGet, target: "/api/v1/list", wantCode: 500, wantMsg: "服务器内部错误"},
		{name: "bad id", method: http.MethodGet, target: "/api/v1/list/abc", wantCode: 400, wantMsg: "无效的 ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(newListRouter(t, &stubListService{err: tt.err}), tt.method, tt.target, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, `{"code":`+jsonInt(tt.wantCode)+`,"message":"`+tt.wantMsg+`"}`, rec.Body.String())
		})
	}
}

func TestListUpdateAndDelete(t *testing.T) {
	svc := &stubListService{}
	r := newListRouter(t, svc)

	rec := serve(r, http.MethodPatch, "/api/v1/list/3", `{"name":"b","deleted":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, svc.patch.Name)
	assert.Equal(t, "b", *svc.patch.Name)
	assert.True(t, *svc.patch.Deleted)
	assert.Nil(t, svc.patch.Email)

	rec = serve(r, http.MethodDelete, "/api/v1/list/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"code":200,"msg":"删除成功"}`, rec.Body.String())
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
