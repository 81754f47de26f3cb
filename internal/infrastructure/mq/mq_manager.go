package mq

import (
	"equb_server/internal/config"

	"go.uber.org/zap"
)

// channelBufferSize 单机模式事件缓冲区大小
const channelBufferSize = 1024

// NewBroker 根据 messageMode 选择事件代理实现
func NewBroker(conf *config.KafkaConfig) EventBroker {
	if conf.MessageMode == "kafka" {
		if err := CreateTopic(conf); err != nil {
			zap.L().Error("kafka dial", zap.String("hostPort", conf.HostPort), zap.Error(err))
		}
		zap.L().Info("event broker: kafka", zap.String("topic", conf.EventTopic))
		return NewKafkaBroker(conf)
	}
	zap.L().Info("event broker: channel")
	return NewChannelBroker(channelBufferSize)
}
