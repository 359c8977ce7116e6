// Package mq 提供 Kafka 生产者/消费者封装、无 Kafka 时的空实现以及死信队列
package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/wyfcoding/stockinsight/pkg/config"
	"github.com/wyfcoding/stockinsight/pkg/logger"
)

// Publisher 事件发布接口
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value any) error
	Close() error
}

// NoopPublisher 未配置 Kafka 时使用，丢弃所有事件
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, topic, key string, _ any) error {
	logger.Debug(ctx, "Kafka disabled, event dropped", "topic", topic, "key", key)
	return nil
}

func (NoopPublisher) Close() error { return nil }

// KafkaProducer Kafka 生产者
type KafkaProducer struct {
	writer *kafka.Writer
}

// NewProducer 创建 Kafka 生产者
func NewProducer(cfg config.KafkaConfig) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		AllowAutoTopicCreation: true,
		Compression:            kafka.Gzip,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            max(cfg.MaxRetries, 1),
		WriteBackoffMin:        time.Duration(cfg.RetryBackoff) * time.Millisecond,
		WriteBackoffMax:        time.Duration(cfg.RetryBackoff*10) * time.Millisecond,
	}

	logger.Info(context.Background(), "Kafka producer created successfully", "brokers", cfg.Brokers)
	return &KafkaProducer{writer: writer}
}

// NewPublisher 按配置选择 Kafka 生产者或空实现
func NewPublisher(cfg config.KafkaConfig) Publisher {
	if len(cfg.Brokers) == 0 {
		return NoopPublisher{}
	}
	return NewProducer(cfg)
}

// Publish 以 JSON 发送单条消息
func (kp *KafkaProducer) Publish(ctx context.Context, topic, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := kp.writer.WriteMessages(ctx, kafka.Message{Topic: topic, Key: []byte(key), Value: data}); err != nil {
		logger.Error(ctx, "Failed to send Kafka message", "topic", topic, "key", key, "error", err)
		return err
	}

	logger.Debug(ctx, "Kafka message sent", "topic", topic, "key", key)
	return nil
}

func (kp *KafkaProducer) Close() error {
	return kp.writer.Close()
}

// Message Kafka 消息
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       string
	Value     []byte
	Time      time.Time
}

// UnmarshalPayload 将消息值按 JSON 解析
func (m *Message) UnmarshalPayload(dest any) error {
	return json.Unmarshal(m.Value, dest)
}

// Reader 消费端抽象，便于替换为测试实现
type Reader interface {
	ReadMessage(ctx context.Context) (*Message, error)
	Close() error
}

// KafkaConsumer Kafka 消费者
type KafkaConsumer struct {
	reader *kafka.Reader
}

// NewConsumer 创建 Kafka 消费者
func NewConsumer(cfg config.KafkaConfig, topic string) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          topic,
		GroupID:        cfg.GroupID,
		SessionTimeout: time.Duration(cfg.SessionTimeout) * time.Second,
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
		MaxBytes:       10e6,
	})

	logger.Info(context.Background(), "Kafka consumer created successfully",
		"brokers", cfg.Brokers,
		"topic", topic,
		"group_id", cfg.GroupID,
	)
	return &KafkaConsumer{reader: reader}
}

// ReadMessage 读取单条消息，阻塞直到有消息或 ctx 结束
func (kc *KafkaConsumer) ReadMessage(ctx context.Context) (*Message, error) {
	msg, err := kc.reader.ReadMessage(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Error(ctx, "Failed to read Kafka message", "error", err)
		}
		return nil, err
	}

	return &Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Key:       string(msg.Key),
		Value:     msg.Value,
		Time:      msg.Time,
	}, nil
}

func (kc *KafkaConsumer) Close() error {
	return kc.reader.Close()
}

// DeadLetterQueue 处理失败的消息转投到死信 topic
type DeadLetterQueue struct {
	publisher Publisher
	topic     string
}

// NewDeadLetterQueue 创建死信队列
func NewDeadLetterQueue(publisher Publisher, topic string) *DeadLetterQueue {
	return &DeadLetterQueue{publisher: publisher, topic: topic}
}

// Topic 死信 topic 名称
func (dlq *DeadLetterQueue) Topic() string {
	return dlq.topic
}

// Send 发送消息到死信队列
func (dlq *DeadLetterQueue) Send(ctx context.Context, original *Message, reason string, err error) error {
	return dlq.publisher.Publish(ctx, dlq.topic, original.Key, map[string]any{
		"original_topic":    original.Topic,
		"original_key":      original.Key,
		"original_value":    string(original.Value),
		"original_offset":   original.Offset,
		"original_time":     original.Time,
		"failure_reason":    reason,
		"failure_error":     err.Error(),
		"failure_timestamp": time.Now().UTC(),
	})
}
