package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"skybook/internal/domain"
)

var ErrInvalidAmount = errors.New("charge amount must be positive")

// SimulatedClient stands in for a real payment provider: it waits a fixed
// delay and fabricates a confirmation token. Production deployments must
// swap in an actual tokenizing provider client behind the same interface;
// nothing downstream assumes more than a non-empty opaque token.
type SimulatedClient struct {
	delay time.Duration
}

func NewSimulatedClient(delay time.Duration) *SimulatedClient {
	return &SimulatedClient{delay: delay}
}

func (c *SimulatedClient) Charge(ctx context.Context, amountCents int64, currency string) (*domain.PaymentConfirmation, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	if c.delay > 0 {
		timer := time.NewTimer(c.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return &domain.PaymentConfirmation{
		Token:       "pi_test_" + uuid.NewString(),
		AmountCents: amountCents,
		Currency:    currency,
		CreatedAt:   time.Now(),
	}, nil
}
