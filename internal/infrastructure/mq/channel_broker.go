package mq

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// ChannelBroker 单机模式的事件代理
// 不依赖外部消息队列，事件经缓冲通道交给后台协程分发
type ChannelBroker struct {
	handlerRegistry
	events chan Event
	once   sync.Once
	done   chan struct{}
}

// NewChannelBroker 创建 ChannelBroker
func NewChannelBroker(bufferSize int) *ChannelBroker {
	return &ChannelBroker{
		events: make(chan Event, bufferSize),
		done:   make(chan struct{}),
	}
}

// Publish 将事件放入通道；通道满时阻塞直到 ctx 取消
func (b *ChannelBroker) Publish(ctx context.Context, event Event) error {
	select {
	case <-b.done:
		return context.Canceled
	default:
	}
	select {
	case b.events <- event:
		return nil
	case <-b.done:
		return context.Canceled
	case <-ctx.Done():
		zap.L().Warn("event dropped", zap.String("type", event.Type), zap.String("group_id", event.GroupId))
		return ctx.Err()
	}
}

// Start 消费循环
func (b *ChannelBroker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.done:
			return
		case event := <-b.events:
			b.dispatch(ctx, event)
		}
	}
}

// Close 停止消费循环，未分发的事件丢弃
func (b *ChannelBroker) Close() error {
	b.once.Do(func() { close(b.done) })
	return nil
}

var _ EventBroker = (*ChannelBroker)(nil)
