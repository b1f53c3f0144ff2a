package email

import (
	"context"
	"log"

	"skybook/internal/kafka"
)

// Sender delivers notification events. The console transport stands in for a
// real mail provider.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.NotificationEvent) error {
	log.Printf("send email to %s: %s: %s", event.Email, event.Subject, event.Body)
	return nil
}
