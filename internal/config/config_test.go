package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAppliesDefaults(t *testing.T) {
	c, err := Decode(`
[mainConfig]
port = 9000

[gatewayConfig]
webhookSecret = "s"
`)
	require.NoError(t, err)

	assert.Equal(t, 9000, c.MainConfig.Port)
	assert.Equal(t, "dev", c.MainConfig.Mode)
	assert.Equal(t, "inline", c.KafkaConfig.MessageMode)
	assert.Equal(t, "equb_events", c.KafkaConfig.EventTopic)
	assert.Equal(t, "ETB", c.GatewayConfig.Currency)
	assert.Equal(t, 15, c.GatewayConfig.TimeoutSeconds)
	assert.Equal(t, "2", c.EqubConfig.PlatformFeePercent)
	assert.Equal(t, "s", c.GatewayConfig.WebhookSecret)
	assert.False(t, c.EqubConfig.AutoDraw)
}

func TestDecodeKeepsExplicitValues(t *testing.T) {
	c, err := Decode(`
[kafkaConfig]
messageMode = "kafka"
eventTopic = "custom"

[equbConfig]
platformFeePercent = "3.5"
autoDraw = true
autoPayout = true
`)
	require.NoError(t, err)

	assert.Equal(t, "kafka", c.KafkaConfig.MessageMode)
	assert.Equal(t, "custom", c.KafkaConfig.EventTopic)
	assert.Equal(t, "3.5", c.EqubConfig.PlatformFeePercent)
	assert.True(t, c.EqubConfig.AutoDraw)
	assert.True(t, c.EqubConfig.AutoPayout)
}

func TestDecodeRejectsInvalidToml(t *testing.T) {
	_, err := Decode("[mainConfig\nport = ")
	assert.Error(t, err)
}
