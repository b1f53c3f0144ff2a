package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"

	"skybook/internal/domain"
	"skybook/internal/kafka"
	"skybook/internal/repository"
	"skybook/internal/service/wizard"
)

var (
	ErrPaymentRequired = errors.New("payment confirmation is required")
	ErrDraftInvalid    = errors.New("booking draft is invalid")
	ErrBookingNotFound = errors.New("booking not found")
)

type BookingUseCase interface {
	Submit(ctx context.Context, flightID int64, draft domain.BookingDraft, confirmation domain.PaymentConfirmation) (*domain.Booking, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Booking, error)
	Cancel(ctx context.Context, id int64) (*domain.Booking, error)
	ReportUnreconciled(ctx context.Context, olderThan time.Duration) ([]domain.Payment, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	payments           repository.PaymentRepository
	producer           Producer
	bookingTopic       string
	notificationsTopic string
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	payments repository.PaymentRepository,
	producer Producer,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		payments:     payments,
		producer:     producer,
		bookingTopic: bookingTopic,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Submit creates the reservation a paid wizard produced. The confirmation is
// a required argument, not an ambient assumption: callers cannot reach this
// without having gone through the payment phase.
func (s *BookingService) Submit(ctx context.Context, flightID int64, draft domain.BookingDraft, confirmation domain.PaymentConfirmation) (*domain.Booking, error) {
	if confirmation.Token == "" {
		return nil, ErrPaymentRequired
	}
	if errs := wizard.Validate(draft); !errs.Valid() {
		return nil, ErrDraftInvalid
	}

	booking := &domain.Booking{
		FlightID:    flightID,
		Gender:      draft.Gender,
		DateOfBirth: draft.DateOfBirth,
		Nationality: draft.Nationality,
		Email:       draft.Email,
		PhoneNumber: draft.PhoneNumber,
		SeatsBooked: draft.SeatsBooked,
		TravelClass: draft.TravelClass,
		PaymentRef:  confirmation.Token,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrNoAvailableSeats) {
			return nil, err
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	if err := s.publish(ctx, "booking_created", booking); err != nil {
		log.Printf("WARNING: failed to publish booking_created for booking %d: %v", booking.ID, err)
	}
	s.notify(ctx, booking.Email, "Booking confirmed",
		fmt.Sprintf("Your booking for flight %d (%d x %s) is confirmed.", booking.FlightID, booking.SeatsBooked, booking.TravelClass))

	return booking, nil
}

func (s *BookingService) ListByEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	return s.bookings.ListByEmail(ctx, email)
}

func (s *BookingService) Cancel(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, err := s.bookings.Cancel(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	if err := s.publish(ctx, "booking_cancelled", booking); err != nil {
		log.Printf("WARNING: failed to publish booking_cancelled for booking %d: %v", booking.ID, err)
	}
	s.notify(ctx, booking.Email, "Booking cancelled",
		fmt.Sprintf("Your booking %d for flight %d was cancelled.", booking.ID, booking.FlightID))

	return booking, nil
}

// ReportUnreconciled lists charges that were captured but never consumed by a
// reservation. These are not refunded or retried automatically; the report is
// for manual reconciliation.
func (s *BookingService) ReportUnreconciled(ctx context.Context, olderThan time.Duration) ([]domain.Payment, error) {
	return s.payments.ListCapturedBefore(ctx, time.Now().Add(-olderThan))
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := kafka.BookingEvent{
		Type:        eventType,
		BookingID:   booking.ID,
		FlightID:    booking.FlightID,
		Email:       booking.Email,
		SeatsBooked: booking.SeatsBooked,
		TravelClass: string(booking.TravelClass),
		PaymentRef:  booking.PaymentRef,
		Status:      string(booking.Status),
		OccurredAt:  time.Now(),
	}
	return s.producer.Publish(ctx, s.bookingTopic, fmt.Sprintf("booking-%d", booking.ID), event)
}

func (s *BookingService) notify(ctx context.Context, email, subject, body string) {
	if s.producer == nil || s.notificationsTopic == "" {
		return
	}
	event := kafka.NotificationEvent{
		Type:    "booking",
		Email:   email,
		Subject: subject,
		Body:    body,
	}
	if err := s.producer.Publish(ctx, s.notificationsTopic, email, event); err != nil {
		log.Printf("WARNING: failed to publish notification for %s: %v", email, err)
	}
}

var _ BookingUseCase = (*BookingService)(nil)
var _ wizard.Submitter = (*BookingService)(nil)
