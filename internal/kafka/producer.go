package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type BookingEvent struct {
	Type        string    `json:"type"`
	BookingID   int64     `json:"booking_id,omitempty"`
	FlightID    int64     `json:"flight_id"`
	Email       string    `json:"email"`
	SeatsBooked int       `json:"seats_booked,omitempty"`
	TravelClass string    `json:"travel_class,omitempty"`
	PaymentRef  string    `json:"payment_ref,omitempty"`
	Status      string    `json:"status,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NotificationEvent carries user-facing mail the worker delivers.
type NotificationEvent struct {
	Type    string `json:"type"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type Producer struct {
	brokers []string
	writer  *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &Producer{
		brokers: brokers,
		writer:  writer,
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
