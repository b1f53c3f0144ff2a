package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"skybook/internal/domain"
)

type PaymentRepository interface {
	RecordCaptured(ctx context.Context, payment *domain.Payment) error
	MarkApplied(ctx context.Context, token string) error
	ListCapturedBefore(ctx context.Context, cutoff time.Time) ([]domain.Payment, error)
}

type PGPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

func (r *PGPaymentRepository) RecordCaptured(ctx context.Context, payment *domain.Payment) error {
	payment.Status = domain.PaymentStatusCaptured
	return r.db.QueryRow(ctx, `INSERT INTO payments (token, flight_id, amount_cents, currency, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		payment.Token, payment.FlightID, payment.AmountCents, payment.Currency, payment.Status).
		Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
}

func (r *PGPaymentRepository) MarkApplied(ctx context.Context, token string) error {
	_, err := r.db.Exec(ctx, `UPDATE payments SET status=$1, updated_at=now() WHERE token=$2`,
		domain.PaymentStatusApplied, token)
	return err
}

// ListCapturedBefore returns charges that were captured before the cutoff and
// never consumed by a reservation. These need manual reconciliation.
func (r *PGPaymentRepository) ListCapturedBefore(ctx context.Context, cutoff time.Time) ([]domain.Payment, error) {
	rows, err := r.db.Query(ctx, `SELECT id, token, flight_id, amount_cents, currency, status, created_at, updated_at
		FROM payments WHERE status=$1 AND created_at <= $2 ORDER BY created_at`,
		domain.PaymentStatusCaptured, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0)
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.Token, &p.FlightID, &p.AmountCents, &p.Currency, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
