package mq

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"equb_server/internal/config"
)

// KafkaBroker 基于 Kafka 的事件代理
// 发布端写入 eventTopic，消费端以 groupId 组成消费者组，处理完成后再提交 offset
type KafkaBroker struct {
	handlerRegistry
	writer *kafka.Writer
	reader *kafka.Reader
}

// NewKafkaBroker 根据配置创建 Writer 和 Reader
func NewKafkaBroker(conf *config.KafkaConfig) *KafkaBroker {
	timeout := time.Duration(conf.Timeout) * time.Second
	return &KafkaBroker{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(conf.HostPort),
			Topic:                  conf.EventTopic,
			Balancer:               &kafka.Hash{},
			WriteTimeout:           timeout,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: false,
		},
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        []string{conf.HostPort},
			Topic:          conf.EventTopic,
			GroupID:        conf.GroupID,
			CommitInterval: 0,
			StartOffset:    kafka.LastOffset,
			MaxWait:        timeout,
		}),
	}
}

// CreateTopic 创建事件主题，已存在时 Kafka 返回错误，记录后忽略
func CreateTopic(conf *config.KafkaConfig) error {
	conn, err := kafka.Dial("tcp", conf.HostPort)
	if err != nil {
		return err
	}
	defer conn.Close()

	partitions := conf.Partition
	if partitions <= 0 {
		partitions = 1
	}
	if err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             conf.EventTopic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
	}); err != nil {
		zap.L().Warn("create kafka topic", zap.String("topic", conf.EventTopic), zap.Error(err))
	}
	return nil
}

// Publish 以 GroupId 为 key 写入 Kafka
func (b *KafkaBroker) Publish(ctx context.Context, event Event) error {
	value, err := event.encode()
	if err != nil {
		return err
	}
	return b.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.GroupId),
		Value: value,
	})
}

// Start 消费循环：FetchMessage -> dispatch -> CommitMessages
func (b *KafkaBroker) Start(ctx context.Context) {
	for {
		msg, err := b.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return
			}
			zap.L().Error("kafka fetch message", zap.Error(err))
			continue
		}

		event, err := decodeEvent(msg.Value)
		if err != nil {
			zap.L().Error("kafka decode event",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
		} else {
			b.dispatch(ctx, event)
		}

		if err := b.reader.CommitMessages(ctx, msg); err != nil {
			zap.L().Error("kafka commit message", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

// Close 关闭 Writer 和 Reader
func (b *KafkaBroker) Close() error {
	return errors.Join(b.writer.Close(), b.reader.Close())
}

var _ EventBroker = (*KafkaBroker)(nil)
