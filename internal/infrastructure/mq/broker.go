package mq

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// EventPublisher 事件发布接口
// Service 层只依赖此接口
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// EventHandler 事件处理函数
type EventHandler func(ctx context.Context, event Event) error

// EventBroker 事件代理
// 在 main.go 中根据 messageMode 初始化为 KafkaBroker 或 ChannelBroker
type EventBroker interface {
	EventPublisher
	// Subscribe 注册事件处理函数，需在 Start 之前调用
	Subscribe(eventType string, handler EventHandler)
	// Start 启动消费循环，阻塞直到 ctx 取消或代理关闭
	Start(ctx context.Context)
	// Close 关闭代理资源
	Close() error
}

// handlerRegistry 两种实现共用的订阅表
type handlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
}

func (r *handlerRegistry) Subscribe(eventType string, handler EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handlers == nil {
		r.handlers = make(map[string][]EventHandler)
	}
	r.handlers[eventType] = append(r.handlers[eventType], handler)
}

// dispatch 调用所有订阅者；单个处理函数失败或 panic 只记录日志
func (r *handlerRegistry) dispatch(ctx context.Context, event Event) {
	r.mu.RLock()
	handlers := r.handlers[event.Type]
	r.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					zap.L().Error("event handler panic", zap.String("type", event.Type), zap.Any("recover", rec))
				}
			}()
			if err := h(ctx, event); err != nil {
				zap.L().Error("event handler failed",
					zap.String("type", event.Type),
					zap.String("group_id", event.GroupId),
					zap.Int("round", event.Round),
					zap.Error(err))
			}
		}()
	}
}
