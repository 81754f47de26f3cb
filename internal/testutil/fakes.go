package testutil

import (
	"context"
	"errors"
	"path"
	"sync"
	"time"

	"equb_server/internal/infrastructure/gateway"
	"equb_server/internal/infrastructure/mq"
)

// MemoryCache 内存缓存，SubmitTask 同步执行，便于断言
type MemoryCache struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]string)}
}

func (c *MemoryCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *MemoryCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *MemoryCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *MemoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if ok, _ := path.Match(pattern, k); ok {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *MemoryCache) SubmitTask(action func()) {
	action()
}

// Has 是否存在指定 key
func (c *MemoryCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

// RecordingPublisher 记录所有已发布事件
type RecordingPublisher struct {
	mu     sync.Mutex
	events []mq.Event
}

func (p *RecordingPublisher) Publish(ctx context.Context, event mq.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// OfType 返回指定类型的事件
func (p *RecordingPublisher) OfType(eventType string) []mq.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []mq.Event
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// ErrGatewayDown FakeGateway 默认返回的错误
var ErrGatewayDown = errors.New("gateway unavailable")

// FakeGateway 可配置成功/失败的支付网关替身
type FakeGateway struct {
	mu          sync.Mutex
	InitErr     error
	TransferErr error
	Initialized []gateway.InitializeRequest
	Transfers   []gateway.TransferRequest
}

func (g *FakeGateway) Initialize(ctx context.Context, req gateway.InitializeRequest) (*gateway.InitializeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Initialized = append(g.Initialized, req)
	if g.InitErr != nil {
		return nil, g.InitErr
	}
	return &gateway.InitializeResult{CheckoutURL: "https://checkout.test/" + req.TxRef}, nil
}

func (g *FakeGateway) Transfer(ctx context.Context, req gateway.TransferRequest) (*gateway.TransferResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Transfers = append(g.Transfers, req)
	if g.TransferErr != nil {
		return nil, g.TransferErr
	}
	return &gateway.TransferResult{Reference: req.Reference, Message: "queued"}, nil
}

// TransferCount 已发起的转账次数
func (g *FakeGateway) TransferCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Transfers)
}
