package configs

import (
	"time"

	"github.com/spf13/viper"
)

// MQType 消息队列类型.
type MQType string

const (
	MQTypeGoChannel MQType = "gochannel"
	MQTypeNATS      MQType = "nats"

	DefaultMQURL           = "nats://localhost:4222"
	DefaultMaxReconnects   = 5                 // 默认最大重连次数.
	DefaultReconnectWait   = 2 * time.Second   // 默认重连等待时间.
	DefaultMQClientID      = "filedock"        // 默认客户端ID
	DefaultGoChannelBuffer = 256               // 进程内通道缓冲
	DefaultQueueGroup      = "filedock-worker" // 默认队列组
)

// MQConfig 消息队列配置.
type MQConfig struct {
	Type      MQType            `mapstructure:"type"      rule:"oneof=gochannel nats"`
	ClientID  string            `mapstructure:"client_id" rule:"required"`
	GoChannel GoChannelMQConfig `mapstructure:"gochannel"`
	NATS      NATSMQConfig      `mapstructure:"nats"`
}

// GoChannelMQConfig 进程内 MQ 配置.
type GoChannelMQConfig struct {
	OutputBuffer int64 `mapstructure:"output_buffer" rule:"min=0"`
	Persistent   bool  `mapstructure:"persistent"`
}

// NATSMQConfig NATS MQ 配置.
type NATSMQConfig struct {
	URL              string        `mapstructure:"url"               rule:"required"`
	User             string        `mapstructure:"user"`
	Password         string        `mapstructure:"password"`
	MaxReconnects    int           `mapstructure:"max_reconnects"    rule:"min=-1,max=100"`
	ReconnectWait    time.Duration `mapstructure:"reconnect_wait"`
	QueueGroup       string        `mapstructure:"queue_group"`
	SubscribersCount int           `mapstructure:"subscribers_count" rule:"min=1"`
	JetStreamEnabled bool          `mapstructure:"jetstream_enabled"`
	AutoProvision    bool          `mapstructure:"auto_provision"`
	DurablePrefix    string        `mapstructure:"durable_prefix"`
}

// GetMQType 返回当前配置的消息队列类型.
func (c *MQConfig) GetMQType() MQType {
	return c.Type
}

// setDefaults 设置MQ配置的默认值.
func (c *MQConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("mq.type", MQTypeGoChannel)
	v.SetDefault("mq.client_id", DefaultMQClientID)

	v.SetDefault("mq.gochannel.output_buffer", DefaultGoChannelBuffer)
	v.SetDefault("mq.gochannel.persistent", false)

	// NATS 默认值
	v.SetDefault("mq.nats.url", DefaultMQURL)
	v.SetDefault("mq.nats.user", "")
	v.SetDefault("mq.nats.password", "")
	v.SetDefault("mq.nats.max_reconnects", DefaultMaxReconnects)
	v.SetDefault("mq.nats.reconnect_wait", DefaultReconnectWait)
	v.SetDefault("mq.nats.queue_group", DefaultQueueGroup)
	v.SetDefault("mq.nats.subscribers_count", 1)
	v.SetDefault("mq.nats.jetstream_enabled", false)
	v.SetDefault("mq.nats.auto_provision", true)
	v.SetDefault("mq.nats.durable_prefix", "filedock")
}
