package middleware

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dome-admin-go/pkg/log"
	"dome-admin-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core).Sugar()))

	var seenID, seenBody string
	r.POST("/echo", func(c *gin.Context) {
		seenID = log.RequestID(c.Request.Context())
		b, _ := io.ReadAll(c.Request.Body)
		seenBody = string(b)
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	t.Run("json body is logged and still readable", func(t *testing.T) {
		logs.TakeAll()
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"name":"a"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, `{"name":"a"}`, seenBody)
		id := rec.Header().Get(RequestIDHeader)
		assert.NotEmpty(t, id)
		assert.Equal(t, id, seenID)

		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Equal(t, `{"name":"a"}`, fields["requestBody"])
		assert.Equal(t, int64(http.StatusCreated), fields["statusCode"])
		assert.Equal(t, id, fields["requestID"])
	})

	t.Run("multipart body is not buffered", func(t *testing.T) {
		logs.TakeAll()
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, _ := mw.CreateFormFile("file", "a.txt")
		_, _ = fw.Write([]byte("secret payload"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/echo", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set(RequestIDHeader, "fixed-id")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Contains(t, seenBody, "secret payload")
		assert.Equal(t, "fixed-id", rec.Header().Get(RequestIDHeader))

		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		assert.Equal(t, "", entries[0].ContextMap()["requestBody"])
	})

	t.Run("large json body is truncated in the log only", func(t *testing.T) {
		logs.TakeAll()
		payload := `{"v":"` + strings.Repeat("x", 2*maxLoggedBody) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, payload, seenBody)
		logged := logs.TakeAll()[0].ContextMap()["requestBody"].(string)
		assert.Len(t, logged, maxLoggedBody)
	})
}

func TestAuthMiddleware(t *testing.T) {
	jwtManager := token.NewJWTManager("secret", 1)
	adminToken, err := jwtManager.GenerateToken("ops", "ADMIN")
	require.NoError(t, err)
	userToken, err := jwtManager.GenerateToken("viewer", "USER")
	require.NoError(t, err)

	r := gin.New()
	r.DELETE("/list/1", AuthMiddleware(jwtManager), RequireRole("ADMIN"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "insufficient role", header: "Bearer " + userToken, want: http.StatusForbidden},
		{name: "admin", header: "Bearer " + adminToken, want: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/list/1", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.GET("/api/v1/list", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/list", nil)
	req.Header.Set("Origin", "http://admin.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "authorization")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Less(t, rec.Code, 300)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
}
