package kafka

import (
	"context"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer publishes audit records. The console implementation stands
// in when no broker is configured.
type Producer interface {
	SendMessage(ctx context.Context, topic string, key, value []byte) error
	Close() error
}

// Writer is the kafka-go backed producer.
type Writer struct {
	writer *kafkago.Writer
	log    *zap.Logger
}

func NewWriter(brokers []string, log *zap.Logger) *Writer {
	return &Writer{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(brokers...),
			Balancer:     &kafkago.LeastBytes{},
			BatchTimeout: 100 * time.Millisecond,
			RequiredAcks: kafkago.RequireOne,
		},
		log: log,
	}
}

func (w *Writer) SendMessage(ctx context.Context, topic string, key, value []byte) error {
	err := w.writer.WriteMessages(ctx, kafkago.Message{
		Topic: topic,
		Key:   key,
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("write message to %s: %w", topic, err)
	}
	return nil
}

func (w *Writer) Close() error {
	w.log.Info("closing kafka writer")
	return w.writer.Close()
}

// Console prints messages instead of publishing them. Used for local
// runs without a broker.
type Console struct {
	log *zap.Logger
}

func NewConsole(log *zap.Logger) *Console {
	return &Console{log: log}
}

func (c *Console) SendMessage(ctx context.Context, topic string, key, value []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	c.log.Info("audit message",
		zap.String("topic", topic),
		zap.ByteString("key", key),
		zap.ByteString("value", value))
	return nil
}

func (c *Console) Close() error {
	return nil
}
