//go:build !no_nats

package mq

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"

	"github.com/yeisme/filedock/pkg/configs"
)

const (
	DefaultDrainTimeout   = 30 * time.Second
	DefaultFlusherTimeout = 10 * time.Second
	DefaultCloseTimeout   = 30 * time.Second
	DefaultAckWaitTimeout = 30 * time.Second
)

func init() {
	RegisterFactory(configs.MQTypeNATS, natsFactory)
}

// buildNatsOptions 构建 NATS 连接选项.
func buildNatsOptions(cfg *configs.MQConfig) []nc.Option {
	opts := []nc.Option{
		nc.Name(cfg.ClientID),
		nc.MaxReconnects(cfg.NATS.MaxReconnects),
		nc.ReconnectWait(cfg.NATS.ReconnectWait),
		nc.DrainTimeout(DefaultDrainTimeout),
		nc.FlusherTimeout(DefaultFlusherTimeout),
		nc.RetryOnFailedConnect(true),
	}

	if cfg.NATS.User != "" {
		opts = append(opts, nc.UserInfo(cfg.NATS.User, cfg.NATS.Password))
	}

	return opts
}

// buildJetStreamConfig 构建 JetStream 配置.
func buildJetStreamConfig(cfg *configs.MQConfig) nats.JetStreamConfig {
	return nats.JetStreamConfig{
		Disabled:      !cfg.NATS.JetStreamEnabled,
		AutoProvision: cfg.NATS.AutoProvision,
		TrackMsgId:    cfg.NATS.JetStreamEnabled,
		DurablePrefix: cfg.NATS.DurablePrefix,
	}
}

// natsFactory 创建 NATS Publisher & Subscriber.
func natsFactory(
	_ context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	opts := buildNatsOptions(cfg)
	jsCfg := buildJetStreamConfig(cfg)
	marshaler := &nats.JSONMarshaler{}

	pub, err := nats.NewPublisher(nats.PublisherConfig{
		URL:         cfg.NATS.URL,
		NatsOptions: opts,
		Marshaler:   marshaler,
		JetStream:   jsCfg,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	sub, err := nats.NewSubscriber(nats.SubscriberConfig{
		URL:              cfg.NATS.URL,
		QueueGroupPrefix: cfg.NATS.QueueGroup,
		SubscribersCount: cfg.NATS.SubscribersCount,
		CloseTimeout:     DefaultCloseTimeout,
		AckWaitTimeout:   DefaultAckWaitTimeout,
		NatsOptions:      opts,
		Unmarshaler:      marshaler,
		JetStream:        jsCfg,
	}, logger)
	if err != nil {
		_ = pub.Close()
		return nil, nil, err
	}

	logger.Info("NATS MQ 已连接", watermill.LogFields{
		"url":         cfg.NATS.URL,
		"jetstream":   cfg.NATS.JetStreamEnabled,
		"queue_group": cfg.NATS.QueueGroup,
	})

	return pub, sub, nil
}
