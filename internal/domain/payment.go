package domain

import "time"

// PaymentConfirmation is the opaque proof that the payment boundary accepted
// a charge. The wizard assumes nothing about the token beyond "non-empty
// opaque string"; it is consumed exactly once by booking submission.
type PaymentConfirmation struct {
	Token       string    `json:"token"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
}

type PaymentStatus string

const (
	// PaymentStatusCaptured means the charge succeeded but no reservation
	// has consumed it yet.
	PaymentStatusCaptured PaymentStatus = "CAPTURED"
	// PaymentStatusApplied means a reservation was created against it.
	PaymentStatusApplied PaymentStatus = "APPLIED"
)

// Payment is the local record of a charge, kept so that a submission failure
// after a successful charge is visible to reconciliation instead of lost.
type Payment struct {
	ID          int64         `json:"id"`
	Token       string        `json:"token"`
	FlightID    int64         `json:"flight_id"`
	AmountCents int64         `json:"amount_cents"`
	Currency    string        `json:"currency"`
	Status      PaymentStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
