package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"dome-admin-go/internal/model"
	"dome-admin-go/pkg/pagination"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
)

// FileIndexMapping 是上传文件索引的映射。
const FileIndexMapping = `{
  "mappings": {
    "properties": {
      "originalName": { "type": "keyword" },
      "storedName":   { "type": "keyword" },
      "storagePath":  { "type": "keyword" },
      "typeCategory": { "type": "keyword" },
      "size":         { "type": "long" },
      "sizeLabel":    { "type": "keyword", "index": false },
      "dateBucket":   { "type": "keyword" },
      "mimeType":     { "type": "keyword" },
      "uploadedAt":   { "type": "date", "format": "yyyy-MM-dd HH:mm:ss" }
    }
  }
}`

// FileFilter 是上传文件查询条件。
type FileFilter struct {
	TypeCategory string
	DateBucket   string
	Keyword      string
}

// FileIndexRepository 把上传文件描述写入 Elasticsearch，并支持分页浏览。
type FileIndexRepository interface {
	pagination.Repository[model.StoredFile, FileFilter]
	Index(ctx context.Context, f *model.StoredFile) error
}

type fileIndexRepository struct {
	client *elasticsearch.Client
	index  string
}

// NewFileIndexRepository 创建一个新的 FileIndexRepository 实例。
func NewFileIndexRepository(client *elasticsearch.Client, index string) FileIndexRepository {
	return &fileIndexRepository{client: client, index: index}
}

// 排序字段名（小写）到索引字段的映射。createTime 是分页引擎的默认排序列。
var fileSortFields = map[string]string{
	"createtime":   "uploadedAt",
	"uploadedat":   "uploadedAt",
	"size":         "size",
	"originalname": "originalName",
	"storedname":   "storedName",
	"typecategory": "typeCategory",
	"datebucket":   "dateBucket",
}

// maxResultWindow 对应 index.max_result_window 的默认值，from+size 超过它的检索会被 ES 拒绝。
const maxResultWindow = 10000

var fileSourceFields = map[string]string{
	"originalname": "originalName",
	"storedname":   "storedName",
	"storagepath":  "storagePath",
	"typecategory": "typeCategory",
	"size":         "size",
	"sizelabel":    "sizeLabel",
	"datebucket":   "dateBucket",
	"mimetype":     "mimeType",
	"uploadedat":   "uploadedAt",
}

// FileDocumentID 由存储路径派生，重复索引同一文件是幂等的。
func FileDocumentID(f *model.StoredFile) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(f.StoragePath)).String()
}

func (r *fileIndexRepository) Index(ctx context.Context, f *model.StoredFile) error {
	body, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("序列化文件描述失败: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      r.index,
		DocumentID: FileDocumentID(f),
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("写入文件索引失败: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("写入文件索引失败: %s", res.String())
	}
	return nil
}

func buildFileQuery(f FileFilter) map[string]interface{} {
	var filters []map[string]interface{}
	if f.TypeCategory != "" {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"typeCategory": f.TypeCategory}})
	}
	if f.DateBucket != "" {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"dateBucket": f.DateBucket}})
	}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		filters = append(filters, map[string]interface{}{
			"wildcard": map[string]interface{}{
				"originalName": map[string]interface{}{
					"value":            "*" + escapeWildcard(kw) + "*",
					"case_insensitive": true,
				},
			},
		})
	}
	if len(filters) == 0 {
		return map[string]interface{}{"match_all": map[string]interface{}{}}
	}
	return map[string]interface{}{"bool": map[string]interface{}{"filter": filters}}
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func escapeWildcard(s string) string {
	return wildcardEscaper.Replace(s)
}

func lookupFields(table map[string]string, names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, name := range names {
		field, ok := table[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("%w: unknown field %q", pagination.ErrInvalidQueryOptions, name)
		}
		out = append(out, field)
	}
	return out, nil
}

func (r *fileIndexRepository) FindMany(ctx context.Context, q pagination.FindQuery[FileFilter]) ([]model.StoredFile, error) {
	body := map[string]interface{}{
		"query": buildFileQuery(q.Where),
		"from":  q.Skip,
		"size":  min(q.Take, maxResultWindow-q.Skip),
	}

	sorts := make([]map[string]interface{}, 0, len(q.Sort))
	for _, s := range q.Sort {
		field, ok := fileSortFields[strings.ToLower(s.Column)]
		if !ok {
			return nil, fmt.Errorf("%w: unknown sort column %q", pagination.ErrInvalidQueryOptions, s.Column)
		}
		sorts = append(sorts, map[string]interface{}{field: map[string]interface{}{"order": string(s.Direction)}})
	}
	if len(sorts) > 0 {
		body["sort"] = sorts
	}

	if len(q.Select) > 0 {
		fields, err := lookupFields(fileSourceFields, q.Select)
		if err != nil {
			return nil, err
		}
		body["_source"] = map[string]interface{}{"includes": fields}
	} else if len(q.Omit) > 0 {
		fields, err := lookupFields(fileSourceFields, q.Omit)
		if err != nil {
			return nil, err
		}
		body["_source"] = map[string]interface{}{"excludes": fields}
	}

	// 超出检索窗口的页返回空列表，总数仍由 Count 给出
	if q.Skip >= maxResultWindow {
		return []model.StoredFile{}, nil
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("构建查询失败: %w", err)
	}

	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(r.index),
		r.client.Search.WithBody(&buf),
		r.client.Search.WithTrackTotalHits(false),
	)
	if err != nil {
		return nil, fmt.Errorf("查询文件索引失败: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("查询文件索引失败: %s", res.String())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source model.StoredFile `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("解析查询结果失败: %w", err)
	}

	files := make([]model.StoredFile, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		files = append(files, hit.Source)
	}
	return files, nil
}

func (r *fileIndexRepository) Count(ctx context.Context, where FileFilter) (int64, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(map[string]interface{}{"query": buildFileQuery(where)}); err != nil {
		return 0, fmt.Errorf("构建查询失败: %w", err)
	}

	res, err := r.client.Count(
		r.client.Count.WithContext(ctx),
		r.client.Count.WithIndex(r.index),
		r.client.Count.WithBody(&buf),
	)
	if err != nil {
		return 0, fmt.Errorf("统计文件索引失败: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmt.Errorf("统计文件索引失败: %s", res.String())
	}

	var parsed struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("解析统计结果失败: %w", err)
	}
	return parsed.Count, nil
}
