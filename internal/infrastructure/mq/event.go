// Package mq 领域事件的发布与订阅
// 支持两种实现：KafkaBroker（分布式）和 ChannelBroker（单机进程内）
package mq

import (
	"encoding/json"
	"time"
)

// 事件类型
const (
	EventContributionCompleted = "contribution.completed"
	EventRoundReady            = "round.ready"
	EventRoundDrawn            = "round.drawn"
	EventPayoutSettled         = "payout.settled"
	EventPayoutFailed          = "payout.failed"
)

// Event 领域事件
// 同一群组的事件使用 GroupId 作为 Kafka 消息 key，保证分区内有序
type Event struct {
	Type       string    `json:"type"`
	GroupId    string    `json:"groupId"`
	Round      int       `json:"round,omitempty"`
	UserId     string    `json:"userId,omitempty"`
	Ref        string    `json:"ref,omitempty"` // tx_ref 或 transfer_ref
	Amount     string    `json:"amount,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewEvent 创建事件并打上时间戳
func NewEvent(eventType, groupId string, round int) Event {
	return Event{
		Type:       eventType,
		GroupId:    groupId,
		Round:      round,
		OccurredAt: time.Now(),
	}
}

func (e Event) encode() ([]byte, error) {
	return json.Marshal(e)
}

func decodeEvent(data []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(data, &e)
	return e, err
}
