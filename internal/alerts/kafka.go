package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink writes alerts as JSON messages keyed by tank name, so a tank's
// alerts land on one partition in raise order.
type KafkaSink struct {
	w     messageWriter
	topic string
}

// NewKafkaSink builds a sink writing to topic on brokers.
func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka alerts: at least one broker is required")
	}
	if topic == "" {
		topic = defaultTopic
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaSink{w: w, topic: topic}, nil
}

func newKafkaSinkWithWriter(w messageWriter, topic string) *KafkaSink {
	return &KafkaSink{w: w, topic: topic}
}

// Topic returns the destination topic.
func (k *KafkaSink) Topic() string { return k.topic }

// Publish encodes and writes alerts in a single batch.
func (k *KafkaSink) Publish(ctx context.Context, alerts []Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(alerts))
	for _, a := range alerts {
		body, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("encode alert: %w", err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(a.Tank), Value: body, Time: a.RaisedAt})
	}
	if err := k.w.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d alerts to %s: %w", len(msgs), k.topic, err)
	}
	return nil
}

// Close flushes pending writes.
func (k *KafkaSink) Close() error { return k.w.Close() }
