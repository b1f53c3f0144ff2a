package kafka

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// NotificationConsumer reads NotificationEvents off the notifications topic
// for the delivery worker.
type NotificationConsumer struct {
	reader *kafka.Reader
}

func NewNotificationConsumer(brokers []string, groupID, topic string) *NotificationConsumer {
	return &NotificationConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (c *NotificationConsumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume decodes each message into a NotificationEvent and hands it to the
// handler. Malformed payloads are logged and skipped; a handler error stops
// the loop so the message is redelivered to the group.
func (c *NotificationConsumer) Consume(ctx context.Context, handler func(context.Context, NotificationEvent) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		event, err := decodeNotification(msg)
		if err != nil {
			log.Printf("skipping malformed notification at offset %d: %v", msg.Offset, err)
			continue
		}
		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}

func decodeNotification(msg kafka.Message) (NotificationEvent, error) {
	var event NotificationEvent
	err := json.Unmarshal(msg.Value, &event)
	return event, err
}
