// Package mq 提供基于 Watermill 的统一消息队列客户端.
// 通过工厂模式支持进程内 gochannel 与 NATS（可选 JetStream）.
//
// 使用示例:
//
//	client, err := mq.New(ctx, &cfg.MQ, mq.Options{Metrics: true})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	_ = client.Publish(ctx, queue.TopicFileStored, msg)
//
//	client.AddConsumer("mirror.stored", queue.TopicFileStored, func(msg *message.Message) error {
//		return nil
//	})
//	go client.Run(ctx)
package mq

import (
	"context"
	"errors"
	"fmt"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yeisme/filedock/pkg/configs"
	nlog "github.com/yeisme/filedock/pkg/log"
)

// Factory 定义创建 Publisher + Subscriber 的工厂函数.
type Factory func(ctx context.Context, cfg *configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error)

var factories = map[configs.MQType]Factory{}

// RegisterFactory 注册指定 MQType 的工厂.
func RegisterFactory(t configs.MQType, f Factory) {
	factories[t] = f
}

// GetRegisteredMQTypes 返回已注册的 MQ 类型.
func GetRegisteredMQTypes() []configs.MQType {
	types := make([]configs.MQType, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}

	return types
}

// Options 创建客户端的可选行为.
type Options struct {
	// Metrics 为 publisher/subscriber/router 注册 Prometheus 指标.
	Metrics bool
	// Registerer 指标注册表，nil 时使用默认注册表.
	Registerer prometheus.Registerer
}

// Client 封装 watermill Publisher、Subscriber 与消费者 Router.
type Client struct {
	Type       configs.MQType
	publisher  message.Publisher
	subscriber message.Subscriber
	router     *message.Router
}

// New 按配置创建客户端.
func New(ctx context.Context, cfg *configs.MQConfig, opts Options) (*Client, error) {
	factory, ok := factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported mq type: %s", cfg.Type)
	}

	logger := NewLogger(nlog.Logger())

	pub, sub, err := factory(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init mq (%s): %w", cfg.Type, err)
	}

	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return nil, fmt.Errorf("create router: %w", err)
	}

	router.AddMiddleware(middleware.Recoverer)

	if opts.Metrics {
		reg := opts.Registerer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}

		builder := metrics.NewPrometheusMetricsBuilder(reg, "filedock", "mq")
		builder.AddPrometheusRouterMetrics(router)

		if pub, err = builder.DecoratePublisher(pub); err != nil {
			return nil, fmt.Errorf("decorate publisher with metrics: %w", err)
		}

		if sub, err = builder.DecorateSubscriber(sub); err != nil {
			return nil, fmt.Errorf("decorate subscriber with metrics: %w", err)
		}
	}

	nlog.Logger().Info().Str("type", string(cfg.Type)).Msg("MQ 客户端已初始化")

	return &Client{Type: cfg.Type, publisher: pub, subscriber: sub, router: router}, nil
}

// Publisher 返回底层 Publisher.
func (c *Client) Publisher() message.Publisher {
	return c.publisher
}

// Publish 便捷发布.
func (c *Client) Publish(_ context.Context, topic string, msgs ...*message.Message) error {
	if c == nil || c.publisher == nil {
		return errors.New("mq publisher not initialized")
	}

	return c.publisher.Publish(topic, msgs...)
}

// Subscribe 便捷订阅.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if c == nil || c.subscriber == nil {
		return nil, errors.New("mq subscriber not initialized")
	}

	return c.subscriber.Subscribe(ctx, topic)
}

// AddConsumer 注册消费者，需在 Run 之前调用. handler 返回错误时消息被 Nack.
func (c *Client) AddConsumer(name, topic string, handler message.NoPublishHandlerFunc) {
	c.router.AddNoPublisherHandler(name, topic, c.subscriber, handler)
}

// Run 运行消费者直到 ctx 取消. 没有注册消费者时也会阻塞到 ctx 取消.
func (c *Client) Run(ctx context.Context) error {
	return c.router.Run(ctx)
}

// Running 在 Router 启动后关闭.
func (c *Client) Running() chan struct{} {
	return c.router.Running()
}

// Ping 检查客户端是否可用.
func (c *Client) Ping(_ context.Context) error {
	if c == nil || c.publisher == nil || c.subscriber == nil {
		return errors.New("mq client not initialized")
	}

	if c.router.IsClosed() {
		return errors.New("mq router closed")
	}

	return nil
}

// Close 关闭资源.
func (c *Client) Close() error {
	var errs []error

	if c.router != nil {
		errs = append(errs, c.router.Close())
	}

	if c.publisher != nil {
		errs = append(errs, c.publisher.Close())
	}

	if c.subscriber != nil && any(c.subscriber) != any(c.publisher) {
		errs = append(errs, c.subscriber.Close())
	}

	return errors.Join(errs...)
}
