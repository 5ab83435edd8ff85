package upload

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type formItem struct {
	field    string
	fileName string
	body     string
}

func buildMultipart(t *testing.T, items ...formItem) *multipart.Reader {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, it := range items {
		if it.fileName == "" {
			require.NoError(t, mw.WriteField(it.field, it.body))
			continue
		}
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="`+it.field+`"; filename="`+it.fileName+`"`)
		h.Set("Content-Type", "text/plain")
		pw, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write([]byte(it.body))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return multipart.NewReader(&buf, mw.Boundary())
}

func TestMultipartSourceSkipsFields(t *testing.T) {
	mr := buildMultipart(t,
		formItem{field: "note", body: "hi"},
		formItem{field: "file", fileName: "a.txt", body: "AAA"},
		formItem{field: "tag", body: "x"},
		formItem{field: "file", fileName: "b.txt", body: "BB"},
	)
	src := NewMultipartSource(mr, 5)

	p, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, "a.txt", p.FileName)
	assert.Equal(t, "text/plain", p.ContentType)

	// 不读 a.txt 的内容，直接取下一个
	p, err = src.Next()
	require.NoError(t, err)
	assert.Equal(t, "b.txt", p.FileName)
	body, err := io.ReadAll(p.Body)
	require.NoError(t, err)
	assert.Equal(t, "BB", string(body))

	_, err = src.Next()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 2, src.Fields())
}

func TestMultipartSourceFieldLimit(t *testing.T) {
	mr := buildMultipart(t,
		formItem{field: "a", body: "1"},
		formItem{field: "b", body: "2"},
		formItem{field: "file", fileName: "a.txt", body: "x"},
	)

	_, err := NewMultipartSource(mr, 1).Next()
	assert.ErrorIs(t, err, ErrTooManyFields)
}

func TestMultipartSourceMalformed(t *testing.T) {
	mr := multipart.NewReader(bytes.NewBufferString("garbage without boundary"), "xyz")

	_, err := NewMultipartSource(mr, 0).Next()
	assert.ErrorIs(t, err, ErrMalformedRequest)
}

func TestMultipartSourceCanceledBody(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "hi"))
	require.NoError(t, mw.Close())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mr := multipart.NewReader(ContextReader(ctx, &buf), mw.Boundary())

	_, err := NewMultipartSource(mr, 0).Next()
	assert.ErrorIs(t, err, ErrUploadInterrupted)
	assert.ErrorIs(t, err, context.Canceled)
}
