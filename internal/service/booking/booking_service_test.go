package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"skybook/internal/domain"
	"skybook/internal/repository"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	if args.Error(0) == nil {
		booking.ID = 42
		booking.BookingDate = time.Now()
	}
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	args := m.Called(ctx, email)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) Cancel(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) RecordCaptured(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) MarkApplied(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockPaymentRepository) ListCapturedBefore(ctx context.Context, cutoff time.Time) ([]domain.Payment, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]domain.Payment), args.Error(1)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func validDraft() domain.BookingDraft {
	return domain.BookingDraft{
		Gender:      domain.GenderFemale,
		DateOfBirth: "2000-01-01",
		Nationality: "US",
		Email:       "a@b.com",
		PhoneNumber: "123",
		SeatsBooked: 2,
		TravelClass: domain.TravelClassBusiness,
	}
}

func TestBookingService_Submit_Success(t *testing.T) {
	bookings := &MockBookingRepository{}
	payments := &MockPaymentRepository{}
	producer := &MockProducer{}
	service := NewBookingService(bookings, payments, producer, "booking-events",
		WithNotificationsTopic("notifications"))

	ctx := context.Background()
	bookings.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil).Once()
	producer.On("Publish", ctx, "booking-events", mock.Anything, mock.Anything).Return(nil).Once()
	producer.On("Publish", ctx, "notifications", "a@b.com", mock.Anything).Return(nil).Once()

	booking, err := service.Submit(ctx, 7, validDraft(), domain.PaymentConfirmation{Token: "pi_test_abc"})

	assert.NoError(t, err)
	assert.NotNil(t, booking)
	assert.Equal(t, int64(7), booking.FlightID)
	assert.Equal(t, "pi_test_abc", booking.PaymentRef)
	assert.Equal(t, domain.BookingStatusConfirmed, booking.Status)

	bookings.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestBookingService_Submit_RequiresConfirmation(t *testing.T) {
	service := NewBookingService(&MockBookingRepository{}, &MockPaymentRepository{}, nil, "")

	_, err := service.Submit(context.Background(), 7, validDraft(), domain.PaymentConfirmation{})

	assert.ErrorIs(t, err, ErrPaymentRequired)
}

func TestBookingService_Submit_RejectsInvalidDraft(t *testing.T) {
	service := NewBookingService(&MockBookingRepository{}, &MockPaymentRepository{}, nil, "")

	draft := validDraft()
	draft.Email = "not-an-email"

	_, err := service.Submit(context.Background(), 7, draft, domain.PaymentConfirmation{Token: "pi_test_abc"})

	assert.ErrorIs(t, err, ErrDraftInvalid)
}

func TestBookingService_Submit_NoSeats(t *testing.T) {
	bookings := &MockBookingRepository{}
	service := NewBookingService(bookings, &MockPaymentRepository{}, nil, "")

	ctx := context.Background()
	bookings.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).Return(repository.ErrNoAvailableSeats).Once()

	_, err := service.Submit(ctx, 7, validDraft(), domain.PaymentConfirmation{Token: "pi_test_abc"})

	assert.ErrorIs(t, err, repository.ErrNoAvailableSeats)
}

func TestBookingService_Cancel(t *testing.T) {
	bookings := &MockBookingRepository{}
	producer := &MockProducer{}
	service := NewBookingService(bookings, &MockPaymentRepository{}, producer, "booking-events")

	ctx := context.Background()
	cancelled := &domain.Booking{ID: 42, FlightID: 7, Email: "a@b.com", Status: domain.BookingStatusCancelled}
	bookings.On("Cancel", ctx, int64(42)).Return(cancelled, nil).Once()
	producer.On("Publish", ctx, "booking-events", "booking-42", mock.Anything).Return(nil).Once()

	booking, err := service.Cancel(ctx, 42)

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, booking.Status)
	bookings.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestBookingService_ReportUnreconciled(t *testing.T) {
	payments := &MockPaymentRepository{}
	service := NewBookingService(&MockBookingRepository{}, payments, nil, "")

	ctx := context.Background()
	stuck := []domain.Payment{{ID: 1, Token: "pi_test_lost", Status: domain.PaymentStatusCaptured}}
	payments.On("ListCapturedBefore", ctx, mock.AnythingOfType("time.Time")).Return(stuck, nil).Once()

	result, err := service.ReportUnreconciled(ctx, 30*time.Minute)

	assert.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, "pi_test_lost", result[0].Token)
}
