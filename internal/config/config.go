// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName string `toml:"appName"` // 应用名称，用于日志标识等
	Host    string `toml:"host"`    // 服务器监听地址，如 "0.0.0.0"
	Port    int    `toml:"port"`    // 服务器监听端口，如 8000
	Mode    string `toml:"mode"`    // 运行模式：dev / release
}

// MysqlConfig MySQL 数据库连接配置
type MysqlConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
	MaxOpenConns int    `toml:"maxOpenConns"`
	MaxIdleConns int    `toml:"maxIdleConns"`
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Password string `toml:"password"`
	Db       int    `toml:"db"`
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// KafkaConfig 领域事件投递配置
type KafkaConfig struct {
	MessageMode string `toml:"messageMode"` // "inline" 进程内同步分发，"kafka" 走消息队列
	HostPort    string `toml:"hostPort"`    // Kafka 服务器地址，如 "localhost:9092"
	EventTopic  string `toml:"eventTopic"`  // 领域事件主题
	GroupID     string `toml:"groupId"`     // 消费者组
	Partition   int    `toml:"partition"`   // 创建主题时的分区数
	Timeout     int    `toml:"timeout"`     // 写入/提交超时（秒）
}

// JWTConfig JWT 认证配置
type JWTConfig struct {
	Secret             string `toml:"secret"`             // JWT 签名密钥，建议 32 字符以上
	AccessTokenExpiry  int    `toml:"accessTokenExpiry"`  // Access Token 有效期（分钟）
	RefreshTokenExpiry int    `toml:"refreshTokenExpiry"` // Refresh Token 有效期（小时）
}

// SnowflakeConfig 雪花算法配置
type SnowflakeConfig struct {
	MachineID int64 `toml:"machineId"` // 范围 0-1023，多副本部署时每个实例唯一
}

// GatewayConfig 支付网关（Chapa 兼容）配置
type GatewayConfig struct {
	BaseURL        string `toml:"baseURL"`        // 如 https://api.chapa.co/v1
	SecretKey      string `toml:"secretKey"`      // 调用网关的 Bearer 密钥
	WebhookSecret  string `toml:"webhookSecret"`  // 回调签名共享密钥
	CallbackURL    string `toml:"callbackURL"`    // 网关回调地址
	ReturnURL      string `toml:"returnURL"`      // 支付完成后的跳转地址
	Currency       string `toml:"currency"`       // 币种，默认 ETB
	TimeoutSeconds int    `toml:"timeoutSeconds"` // 单次调用超时
}

// EqubConfig 轮转与结算参数
type EqubConfig struct {
	PlatformFeePercent string `toml:"platformFeePercent"` // 平台服务费百分比，如 "2"
	AutoDraw           bool   `toml:"autoDraw"`           // 本轮缴清后自动开奖
	AutoPayout         bool   `toml:"autoPayout"`         // 开奖后自动放款
}

// TLSConfig HTTPS 重定向配置
type TLSConfig struct {
	Enable bool `toml:"enable"`
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig      `toml:"mainConfig"`
	MysqlConfig     `toml:"mysqlConfig"`
	RedisConfig     `toml:"redisConfig"`
	LogConfig       `toml:"logConfig"`
	KafkaConfig     `toml:"kafkaConfig"`
	JWTConfig       `toml:"jwtConfig"`
	SnowflakeConfig `toml:"snowflakeConfig"`
	GatewayConfig   `toml:"gatewayConfig"`
	EqubConfig      `toml:"equbConfig"`
	TLSConfig       `toml:"tlsConfig"`
}

// config 全局配置单例，延迟加载
var config *Config

// LoadConfig 从多个候选路径加载配置文件
// 按顺序尝试加载，找到第一个可用的配置文件即停止
func LoadConfig() error {
	paths := []string{
		"configs/config_local.toml",       // 本地开发配置（优先）
		"configs/config.toml",             // 默认配置
		"../../configs/config_local.toml", // 从子目录运行时的路径
		"../../configs/config.toml",
	}

	for _, path := range paths {
		if _, err := toml.DecodeFile(path, config); err == nil {
			config.applyDefaults()
			return nil
		}
	}
	config.applyDefaults()
	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// Decode 从 TOML 文本解析配置，主要用于测试
func Decode(data string) (*Config, error) {
	c := new(Config)
	if _, err := toml.Decode(data, c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.MainConfig.Mode == "" {
		c.MainConfig.Mode = "dev"
	}
	if c.KafkaConfig.MessageMode == "" {
		c.KafkaConfig.MessageMode = "inline"
	}
	if c.KafkaConfig.EventTopic == "" {
		c.KafkaConfig.EventTopic = "equb_events"
	}
	if c.KafkaConfig.GroupID == "" {
		c.KafkaConfig.GroupID = "equb_rotation"
	}
	if c.KafkaConfig.Timeout == 0 {
		c.KafkaConfig.Timeout = 5
	}
	if c.GatewayConfig.Currency == "" {
		c.GatewayConfig.Currency = "ETB"
	}
	if c.GatewayConfig.TimeoutSeconds == 0 {
		c.GatewayConfig.TimeoutSeconds = 15
	}
	if c.EqubConfig.PlatformFeePercent == "" {
		c.EqubConfig.PlatformFeePercent = "2"
	}
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件
func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig() // 忽略加载错误，使用默认值
	}
	return config
}
