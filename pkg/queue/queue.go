// Package queue 定义文件事件的主题、负载与 JSON 信封.
//
// 信封结构:
//
//	{
//	  "header": {
//	    "topic": "fd.file.stored",
//	    "trace_id": "4bf92f3577b34da6a3ce929d0e0e4736",
//	    "producer": "filedock",
//	    "occurred_at": "2025-01-02T03:04:05.123456Z",
//	    "version": "v1"
//	  },
//	  "payload": { ... }
//	}
//
// 发布与订阅:
//
//	_ = queue.PublishFileStored(pub, payload, queue.WithProducer("filedock"))
//	env, err := queue.ParseFileStored(msg)
//
// 消费者应忽略未知字段. 版本号不是 v1 或主题与信封不符的消息解析失败.
package queue

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
)

const (
	PayloadVersionV1 = "v1"

	// 消息元数据键，便于不解析负载时路由或排查.
	MetadataTopic      = "topic"
	MetadataTraceID    = "trace_id"
	MetadataProducer   = "producer"
	MetadataOccurredAt = "occurred_at"
	MetadataVersion    = "version"
)

// Option 修改事件头.
type Option func(*EventHeader)

// WithTraceID 设置 trace_id，空值忽略.
func WithTraceID(id string) Option { return func(h *EventHeader) { h.TraceID = id } }

// WithProducer 设置生产者名.
func WithProducer(p string) Option { return func(h *EventHeader) { h.Producer = p } }

// NewEventHeader 以当前 UTC 时间和 v1 版本构造事件头.
func NewEventHeader(topic string, opts ...Option) EventHeader {
	h := EventHeader{Topic: topic, OccurredAt: time.Now().UTC(), Version: PayloadVersionV1}
	for _, opt := range opts {
		opt(&h)
	}

	return h
}

// Encode 序列化信封.
func Encode[T any](env Message[T]) ([]byte, error) { return sonic.Marshal(env) }

// Decode 反序列化信封，不做主题与版本检查.
func Decode[T any](b []byte) (Message[T], error) {
	var env Message[T]
	err := sonic.Unmarshal(b, &env)

	return env, err
}

// NewWatermillMessage 构造带 ULID 消息 ID 与元数据的 watermill 消息.
func NewWatermillMessage[T any](topic string, payload T, opts ...Option) (*message.Message, error) {
	h := NewEventHeader(topic, opts...)

	data, err := Encode(Message[T]{Header: h, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewULID(), data)
	msg.Metadata.Set(MetadataTopic, topic)
	msg.Metadata.Set(MetadataOccurredAt, h.OccurredAt.Format(time.RFC3339Nano))
	msg.Metadata.Set(MetadataVersion, h.Version)

	if h.TraceID != "" {
		msg.Metadata.Set(MetadataTraceID, h.TraceID)
	}

	if h.Producer != "" {
		msg.Metadata.Set(MetadataProducer, h.Producer)
	}

	return msg, nil
}

// ParseWatermillMessage 解出信封并校验主题与版本.
func ParseWatermillMessage[T any](topic string, msg *message.Message) (Message[T], error) {
	env, err := Decode[T](msg.Payload)
	if err != nil {
		return env, fmt.Errorf("decode %s: %w", topic, err)
	}

	if env.Header.Topic != topic {
		return env, fmt.Errorf("topic mismatch: want %s, got %q", topic, env.Header.Topic)
	}

	if env.Header.Version != PayloadVersionV1 {
		return env, fmt.Errorf("unsupported %s version %q", topic, env.Header.Version)
	}

	return env, nil
}

func publish[T any](pub message.Publisher, topic string, payload T, opts ...Option) error {
	msg, err := NewWatermillMessage(topic, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(topic, msg)
}
