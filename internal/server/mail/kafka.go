package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/basekit-io/basekit/internal/logging"
)

const publishTimeout = 5 * time.Second

// KafkaMailer enqueues messages on a Kafka topic instead of delivering
// them. A separate worker process consumes the topic and sends over SMTP,
// so slow relays never stall request handling.
type KafkaMailer struct {
	writer *kafka.Writer
}

// NewKafkaMailer constructs a producer for the given broker and topic.
func NewKafkaMailer(broker, topic string) *KafkaMailer {
	return &KafkaMailer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(broker),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			WriteTimeout: 10 * time.Second,
		},
	}
}

func (m *KafkaMailer) Send(ctx context.Context, msg Message) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding mail message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = m.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.To),
		Value: value,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("publishing mail message: %w", err)
	}
	return nil
}

// Close releases the underlying writer.
func (m *KafkaMailer) Close() error {
	return m.writer.Close()
}

// Consumer drains a mail topic and delivers each message through the
// wrapped Mailer. It is the core of the mailworker binary.
type Consumer struct {
	reader *kafka.Reader
	mailer Mailer
	logger logging.Logger
}

// NewConsumer constructs a consumer in the given consumer group.
func NewConsumer(broker, topic, groupID string, mailer Mailer, logger logging.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{broker},
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: reader, mailer: mailer, logger: logger}
}

// Listen reads messages until the context ends. Malformed records and
// delivery failures are logged and skipped; the loop itself only stops
// on context cancellation.
func (c *Consumer) Listen(ctx context.Context) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return c.reader.Close()
			}
			c.logger.Error(ctx, "mail queue read failed", "error", err)
			continue
		}

		if err := c.handle(ctx, msg.Value); err != nil {
			c.logger.Error(ctx, "mail delivery failed", "error", err)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, value []byte) error {
	var msg Message
	if err := json.Unmarshal(value, &msg); err != nil {
		return fmt.Errorf("decoding mail message: %w", err)
	}
	return c.mailer.Send(ctx, msg)
}
