// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dome-admin-go/internal/config"
	"dome-admin-go/pkg/tasks"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// TaskProcessor 处理一条文件落盘事件。重试由实现自己负责，消费循环对每条消息只调用一次。
type TaskProcessor interface {
	Process(ctx context.Context, task tasks.FileStoredTask) error
}

// messageWriter 是 *kafka.Writer 中 Producer 用到的部分。
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer 把文件落盘事件发送到 Kafka。
type Producer struct {
	writer messageWriter
}

// NewProducer 创建 Kafka 生产者。
func NewProducer(cfg config.KafkaConfig) *Producer {
	return &Producer{writer: &kafka.Writer{
		Addr:         kafka.TCP(cfg.BrokerList()...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}}
}

// Publish 发送一批事件，消息 key 为文件存储路径，同一文件的事件落在同一分区。
func (p *Producer) Publish(ctx context.Context, events ...tasks.FileStoredTask) error {
	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		value, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("序列化事件失败: %w", err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(ev.File.StoragePath), Value: value})
	}
	if len(msgs) == 0 {
		return nil
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

// Close 关闭底层 writer。
func (p *Producer) Close() error {
	return p.writer.Close()
}

// messageReader 是 *kafka.Reader 中消费循环用到的部分。
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// StartConsumer 启动消费循环，直到 ctx 结束。
func StartConsumer(ctx context.Context, cfg config.KafkaConfig, processor TaskProcessor, logger *zap.SugaredLogger) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.BrokerList(),
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	logger.Infof("Kafka 消费者已启动，正在监听主题 '%s'", cfg.Topic)
	consume(ctx, r, processor, logger)
}

func consume(ctx context.Context, r messageReader, processor TaskProcessor, logger *zap.SugaredLogger) {
	defer func() {
		if err := r.Close(); err != nil {
			logger.Errorw("关闭 Kafka 消费者失败", "error", err)
		}
	}()

	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				logger.Info("Kafka 消费者已停止")
			} else {
				logger.Errorw("从 Kafka 读取消息失败", "error", err)
			}
			return
		}

		var task tasks.FileStoredTask
		if err := json.Unmarshal(m.Value, &task); err != nil {
			logger.Errorf("无法解析 Kafka 消息: %v, value: %s", err, string(m.Value))
			// 消息格式错误，直接提交，避免阻塞队列
			commit(ctx, r, m, logger)
			continue
		}

		if err := processor.Process(ctx, task); err != nil {
			if ctx.Err() != nil {
				logger.Info("Kafka 消费者已停止")
				return
			}
			logger.Errorw("处理文件事件失败，提交 offset 放弃该消息",
				"eventID", task.EventID,
				"storagePath", task.File.StoragePath,
				"error", err,
			)
		}
		commit(ctx, r, m, logger)
	}
}

func commit(ctx context.Context, r messageReader, m kafka.Message, logger *zap.SugaredLogger) {
	if err := r.CommitMessages(ctx, m); err != nil {
		logger.Errorw("提交 Kafka 消息 offset 失败", "offset", m.Offset, "error", err)
	}
}
