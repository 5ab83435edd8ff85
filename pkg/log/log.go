// Package log 负责构建应用使用的 zap logger。
package log

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New 根据级别、编码格式和输出目录构建一个 SugaredLogger。
// format 为 "console" 时使用开发配置，其余情况使用生产环境的 JSON 配置。
func New(level, format, outputPath string) (*zap.SugaredLogger, error) {
	var zapConfig zap.Config

	logLevel := zap.NewAtomicLevel()
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel.SetLevel(zap.InfoLevel)
	}

	if format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapConfig.Encoding = "console"
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.Encoding = "json"
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapConfig.Level = logLevel
	zapConfig.OutputPaths = []string{"stdout"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}
	if outputPath != "" {
		if err := os.MkdirAll(outputPath, os.ModePerm); err != nil {
			return nil, fmt.Errorf("创建日志目录失败: %w", err)
		}
		zapConfig.OutputPaths = append(zapConfig.OutputPaths, filepath.Join(outputPath, "app.log"))
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("构建 logger 失败: %w", err)
	}
	return logger.Sugar(), nil
}

// Nop 返回一个丢弃所有输出的 logger，供未配置日志的组件兜底使用。
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// OrNop 在 l 为 nil 时返回 Nop()。
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return Nop()
	}
	return l
}

type requestIDKey struct{}

// WithRequestID 把请求 ID 放进 ctx，供下游日志与事件使用。
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID 取出 ctx 中的请求 ID，不存在时返回空串。
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
