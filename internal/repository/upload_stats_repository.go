package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"dome-admin-go/internal/model"

	"github.com/go-redis/redis/v8"
)

const uploadStatsTTL = 90 * 24 * time.Hour

// UploadStatsRepository 在 Redis 中按天累计上传数量与字节数。
type UploadStatsRepository interface {
	Record(ctx context.Context, f *model.StoredFile) error
	Daily(ctx context.Context, date string) ([]model.UploadDailyStat, error)
}

type uploadStatsRepository struct {
	redisClient *redis.Client
}

// NewUploadStatsRepository 创建一个新的 UploadStatsRepository 实例。
func NewUploadStatsRepository(redisClient *redis.Client) UploadStatsRepository {
	return &uploadStatsRepository{redisClient: redisClient}
}

func uploadStatsKey(date string) string {
	return "upload:stats:" + date
}

func (r *uploadStatsRepository) Record(ctx context.Context, f *model.StoredFile) error {
	key := uploadStatsKey(f.DateBucket)
	_, err := r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, f.TypeCategory+":count", 1)
		pipe.HIncrBy(ctx, key, f.TypeCategory+":bytes", f.Size)
		pipe.Expire(ctx, key, uploadStatsTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("记录上传统计失败: %w", err)
	}
	return nil
}

func (r *uploadStatsRepository) Daily(ctx context.Context, date string) ([]model.UploadDailyStat, error) {
	raw, err := r.redisClient.HGetAll(ctx, uploadStatsKey(date)).Result()
	if err != nil {
		return nil, fmt.Errorf("读取上传统计失败: %w", err)
	}
	return parseDailyStats(raw), nil
}

// parseDailyStats 把 "<category>:count" / "<category>:bytes" 形式的哈希字段还原为按分类排序的统计。
func parseDailyStats(raw map[string]string) []model.UploadDailyStat {
	byCategory := map[string]*model.UploadDailyStat{}
	for field, value := range raw {
		category, metric, ok := strings.Cut(field, ":")
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		stat, exists := byCategory[category]
		if !exists {
			stat = &model.UploadDailyStat{TypeCategory: category}
			byCategory[category] = stat
		}
		switch metric {
		case "count":
			stat.Count = n
		case "bytes":
			stat.Bytes = n
		}
	}

	stats := make([]model.UploadDailyStat, 0, len(byCategory))
	for _, stat := range byCategory {
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].TypeCategory < stats[j].TypeCategory })
	return stats
}
