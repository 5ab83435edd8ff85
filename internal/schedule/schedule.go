// Package schedule 运行后台定时任务。
package schedule

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// TempSweepSpec 每 5 分钟清理一次残留的上传临时文件（带秒字段）。
const TempSweepSpec = "0 */5 * * * *"

// Sweeper 删除早于 maxAge 的残留临时文件。
type Sweeper interface {
	SweepStaleTemp(maxAge time.Duration) (int, error)
}

// StartTempSweeper 注册并启动清理任务。调用方负责 Stop。
func StartTempSweeper(sweeper Sweeper, maxAge time.Duration, logger *zap.SugaredLogger) (*cron.Cron, error) {
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(TempSweepSpec, func() { sweep(sweeper, maxAge, logger) }); err != nil {
		return nil, fmt.Errorf("注册临时文件清理任务失败: %w", err)
	}
	c.Start()
	logger.Infof("临时文件清理任务已启动，保留时间 %s", maxAge)
	return c, nil
}

func sweep(sweeper Sweeper, maxAge time.Duration, logger *zap.SugaredLogger) {
	removed, err := sweeper.SweepStaleTemp(maxAge)
	if err != nil {
		logger.Errorw("清理临时文件失败", "error", err)
		return
	}
	if removed > 0 {
		logger.Infow("已清理残留临时文件", "count", removed)
	}
}
