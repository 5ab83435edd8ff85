// Package es 提供了与 Elasticsearch 交互的客户端功能。
package es

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"dome-admin-go/internal/config"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"
)

// NewClient 根据配置创建 Elasticsearch 客户端。
func NewClient(cfg config.ElasticsearchConfig) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.AddressList(),
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 Elasticsearch 客户端失败: %w", err)
	}
	return client, nil
}

// EnsureIndex 检查索引是否存在，如果不存在则按 mapping 创建它。
func EnsureIndex(ctx context.Context, client *elasticsearch.Client, index, mapping string, logger *zap.SugaredLogger) error {
	res, err := client.Indices.Exists([]string{index}, client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("检查索引是否存在时出错: %w", err)
	}
	res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		logger.Infof("索引 '%s' 已存在", index)
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("检查索引 '%s' 是否存在时收到意外的状态码: %d", index, res.StatusCode)
	}

	res, err = client.Indices.Create(
		index,
		client.Indices.Create.WithContext(ctx),
		client.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return fmt.Errorf("创建索引 '%s' 失败: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		logger.Errorf("创建索引 '%s' 时 Elasticsearch 返回错误: %s", index, res.String())
		return errors.New("创建索引时 Elasticsearch 返回错误")
	}

	logger.Infof("索引 '%s' 创建成功", index)
	return nil
}
