// Package reservations is the HTTP client for an upstream reservation API,
// used when booking submission is not served by the local store.
package reservations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"skybook/internal/domain"
	"skybook/internal/service/wizard"
)

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a submitter for the given upstream base URL. The request
// waits as long as the caller's context allows; no extra timeout is layered
// on top.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
}

type createRequest struct {
	FlightID    int64  `json:"flight_id"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"date_of_birth"`
	Nationality string `json:"nationality"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	SeatsBooked int    `json:"seats_booked"`
	TravelClass string `json:"travel_class"`
	PaymentRef  string `json:"payment_ref"`
}

// Submit posts one reservation-create request. Error responses come back in
// inconsistent shapes, so the body goes through ExtractMessage rather than a
// typed decode.
func (c *Client) Submit(ctx context.Context, flightID int64, draft domain.BookingDraft, confirmation domain.PaymentConfirmation) (*domain.Booking, error) {
	payload, err := json.Marshal(createRequest{
		FlightID:    flightID,
		Gender:      string(draft.Gender),
		DateOfBirth: draft.DateOfBirth,
		Nationality: draft.Nationality,
		Email:       draft.Email,
		PhoneNumber: draft.PhoneNumber,
		SeatsBooked: draft.SeatsBooked,
		TravelClass: string(draft.TravelClass),
		PaymentRef:  confirmation.Token,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/booking/create/", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build reservation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reservation request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read reservation response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &SubmissionError{Message: ExtractMessage(body)}
	}

	var booking domain.Booking
	if err := json.Unmarshal(body, &booking); err != nil {
		return nil, fmt.Errorf("decode reservation response: %w", err)
	}
	return &booking, nil
}

var _ wizard.Submitter = (*Client)(nil)
