package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
)

// Publisher emits order lifecycle events (order.created.<id>, order.paid.<id>,
// order.delivered.<id>, order.cancelled.<id>) for downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, key string, payload interface{}) error
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

var _ Publisher = (*KafkaPublisher)(nil)

func (p *KafkaPublisher) Publish(ctx context.Context, key string, payload interface{}) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
	}

	return p.writer.WriteMessages(ctx, msg)
}

// NopPublisher discards events; used in tests and when kafka is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, key string, payload interface{}) error {
	return nil
}
