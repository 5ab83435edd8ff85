package storage

import (
	"context"
	"fmt"
	"io"

	"dome-admin-go/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinIOStorage 把文件写入一个 MinIO 存储桶。
type MinIOStorage struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinIOClient 创建 MinIO 客户端，不发起网络请求。
func NewMinIOClient(cfg config.MinIOConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 MinIO 客户端失败: %w", err)
	}
	return client, nil
}

// NewMinIOStorage 包装客户端。publicPrefix 为空时使用 "/<bucket>"。
func NewMinIOStorage(client *minio.Client, bucket, publicPrefix string) *MinIOStorage {
	if publicPrefix == "" {
		publicPrefix = "/" + bucket
	}
	return &MinIOStorage{client: client, bucket: bucket, prefix: publicPrefix}
}

// EnsureBucket 检查存储桶是否存在，不存在则创建。
func (s *MinIOStorage) EnsureBucket(ctx context.Context, logger *zap.SugaredLogger) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("检查 MinIO 存储桶失败: %w", err)
	}
	if exists {
		logger.Infof("存储桶 '%s' 已存在", s.bucket)
		return nil
	}

	logger.Infof("存储桶 '%s' 不存在，正在创建...", s.bucket)
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("创建 MinIO 存储桶失败: %w", err)
	}
	logger.Infof("存储桶 '%s' 创建成功", s.bucket)
	return nil
}

// Put 以未知长度流式上传对象。读取失败时 PutObject 中止，不会生成对象。
func (s *MinIOStorage) Put(ctx context.Context, key string, r io.Reader, contentType string) (int64, error) {
	opts := minio.PutObjectOptions{}
	if contentType != "" {
		opts.ContentType = contentType
	}
	info, err := s.client.PutObject(ctx, s.bucket, key, r, -1, opts)
	if err != nil {
		return 0, err
	}
	return info.Size, nil
}

// Remove 删除对象，对象不存在时 MinIO 同样返回成功。
func (s *MinIOStorage) Remove(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

// Location 实现 Backend。
func (s *MinIOStorage) Location(key string) string {
	return joinLocation(s.prefix, key)
}
