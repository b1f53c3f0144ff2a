package wizard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"skybook/internal/domain"
)

// fakeStore is an in-memory stand-in for the Redis session store. It records
// the last TTL each session was saved with.
type fakeStore struct {
	sessions map[string][]byte
	ttls     map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeStore) SaveWizardSession(ctx context.Context, id string, payload []byte, ttl time.Duration) error {
	f.sessions[id] = payload
	f.ttls[id] = ttl
	return nil
}

func (f *fakeStore) GetWizardSession(ctx context.Context, id string) ([]byte, error) {
	data, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	return data, nil
}

func (f *fakeStore) DeleteWizardSession(ctx context.Context, id string) error {
	delete(f.sessions, id)
	delete(f.ttls, id)
	return nil
}

type MockFlightSource struct {
	mock.Mock
}

func (m *MockFlightSource) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

type MockPaymentClient struct {
	mock.Mock
}

func (m *MockPaymentClient) Charge(ctx context.Context, amountCents int64, currency string) (*domain.PaymentConfirmation, error) {
	args := m.Called(ctx, amountCents, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentConfirmation), args.Error(1)
}

type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) Submit(ctx context.Context, flightID int64, draft domain.BookingDraft, confirmation domain.PaymentConfirmation) (*domain.Booking, error) {
	args := m.Called(ctx, flightID, draft, confirmation)
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

func testFlight() *domain.Flight {
	return &domain.Flight{
		ID:                       7,
		AvailableEconomySeats:    12,
		AvailableBusinessSeats:   4,
		AvailableFirstClassSeats: 2,
		Fares:                    domain.FareTable{Economy: 50, Business: 150, FirstClass: 300},
	}
}

func newTestService(store *fakeStore, flights *MockFlightSource, payments *MockPaymentClient, submitter *MockSubmitter, ledger *MockPaymentRepository) *Service {
	return NewService(store, flights, payments, submitter, ledger, 30*time.Minute, 2*time.Second, "usd")
}

func startSession(t *testing.T, svc *Service, flights *MockFlightSource) *Session {
	t.Helper()
	// Forward re-reads the flight for the availability check, so the
	// expectation is not limited to a single call.
	flights.On("GetByID", mock.Anything, int64(7)).Return(testFlight(), nil)
	session, err := svc.Start(context.Background(), 7)
	assert.NoError(t, err)
	return session
}

func TestService_Start(t *testing.T) {
	store := newFakeStore()
	flights := &MockFlightSource{}
	svc := newTestService(store, flights, &MockPaymentClient{}, &MockSubmitter{}, &MockPaymentRepository{})

	session := startSession(t, svc, flights)

	assert.Equal(t, StateEntry, session.State)
	assert.Equal(t, int64(7), session.FlightID)
	assert.Equal(t, domain.GenderMale, session.Draft.Gender)
	assert.Equal(t, 1, session.Draft.SeatsBooked)
	assert.Equal(t, domain.TravelClassEconomy, session.Draft.TravelClass)
	assert.Equal(t, int64(150), session.Fares.Business)
	assert.Equal(t, 30*time.Minute, store.ttls[session.ID])
	flights.AssertExpectations(t)
}

func TestService_Start_DefaultFares(t *testing.T) {
	store := newFakeStore()
	flights := &MockFlightSource{}
	svc := newTestService(store, flights, &MockPaymentClient{}, &MockSubmitter{}, &MockPaymentRepository{})

	flights.On("GetByID", mock.Anything, int64(7)).Return(&domain.Flight{ID: 7}, nil).Once()
	session, err := svc.Start(context.Background(), 7)

	assert.NoError(t, err)
	assert.Equal(t, domain.DefaultFareTable(), session.Fares)
}

func TestService_Forward_InvalidDraftStaysInEntry(t *testing.T) {
	store := newFakeStore()
	flights := &MockFlightSource{}
	svc := newTestService(store, flights, &MockPaymentClient{}, &MockSubmitter{}, &MockPaymentRepository{})
	session := startSession(t, svc, flights)

	// fresh draft has no email/phone/nationality/dob
	updated, err := svc.Forward(context.Background(), session.ID)

	assert.NoError(t, err)
	assert.Equal(t, StateEntry, updated.State)
	assert.False(t, updated.Errors.Valid())
	assert.Contains(t, updated.Errors, "email")
	assert.Contains(t, updated.Errors, "phone_number")
}

func fillDraft(t *testing.T, svc *Service, id string) *Session {
	t.Helper()
	session, err := svc.UpdateDraft(context.Background(), id, domain.BookingDraft{
		Gender:      domain.GenderFemale,
		DateOfBirth: "2000-01-01",
		Nationality: "US",
		Email:       "a@b.com",
		PhoneNumber: "123",
		SeatsBooked: 2,
		TravelClass: domain.TravelClassBusiness,
	})
	assert.NoError(t, err)
	return session
}

func TestService_Forward_ValidDraftReachesPayment(t *testing.T) {
	store := newFakeStore()
	flights := &MockFlightSource{}
	svc := newTestService(store, flights, &MockPaymentClient{}, &MockSubmitter{}, &MockPaymentRepository{})
	session := startSession(t, svc, flights)

	fillDraft(t, svc, session.ID)
	updated, err := svc.Forward(context.Background(), session.ID)

	assert.NoError(t, err)
	assert.Equal(t, StatePayment, updated.State)
	assert.True(t, updated.Errors.Valid())
}

func TestService_Forward_BlocksWhenSeatsUnavailable(t *testing.T) {
	store := newFakeStore()
	flights := &MockFlightSource{}
	svc := newTestService(store, flights, &MockPaymentClient{}, &MockSubmitter{}, &MockPaymentRepository{})
	session := startSession(t, svc, flights)

	// only 4 business seats remain on the test flight
	_, err := svc.UpdateDraft(context.Background(), session.ID, domain.BookingDraft{
		Gender:      domain.GenderFemale,
		DateOfBirth: "2000-01-01",
		Nationality: "US",
		Email:       "a@b.com",
		PhoneNumber: "123",
		SeatsBooked: 5,
		TravelClass: domain.TravelClassBusiness,
	})
	assert.NoError(t, err)

	updated, err := svc.Forward(context.Background(), session.ID)

	assert.NoError(t, err)
	assert.Equal(t, StateEntry, updated.State)
	assert.Contains(t, updated.Errors, "seats_booked")
}

func TestService_Back_PreservesDraft(t *testing.T) {
	store := newFakeStore()
	flights := &MockFlightSource{}
	svc := newTestService(store, flights, &MockPaymentClient{}, &MockSubmitter{}, &MockPaymentRepository{})
	session := startSession(t, svc, flights)

	fillDraft(t, svc, session.ID)
	_, err := svc.Forward(context.Background(), session.ID)
	assert.NoError(t, err)

	updated, err := svc.Back(context.Background(), session.ID)

	assert.NoError(t, err)
	assert.Equal(t, StateEntry, updated.State)
	assert.Equal(t, "a@b.com", updated.Draft.Email)
	assert.Equal(t, 2, updated.Draft.SeatsBooked)
}

func TestService_Back_NotFromEntry(t *testing.T) {
	store := newFakeStore()
	flights := &MockFlightSource{}
	svc := newTestService(store, flights, &MockPaymentClient{}, &MockSubmitter{}, &MockPaymentRepository{})
	session := startSession(t, svc, flights)

	_, err := svc.Back(context.Background(), session.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestService_Quote(t *testing.T) {
	store := newFakeStore()
	flights := &MockFlightSource{}
	svc := newTestService(store, flights, &MockPaymentClient{}, &MockSubmitter{}, &MockPaymentRepository{})
	session := startSession(t, svc, flights)

	// 2 business seats at 150 each
	fillDraft(t, svc, session.ID)
	total, err := svc.Quote(context.Background(), session.ID)

	assert.NoError(t, err)
	assert.Equal(t, int64(300), total)
}

func TestService_Pay_HappyPath(t *testing.T) {
	store := newFakeStore()
	flights := &MockFlightSource{}
	payments := &MockPaymentClient{}
	submitter := &MockSubmitter{}
	ledger := &MockPaymentRepository{}
	svc := newTestService(store, flights, payments, submitter, ledger)
	session := startSession(t, svc, flights)

	fillDraft(t, svc, session.ID)
	_, err := svc.Forward(context.Background(), session.ID)
	assert.NoError(t, err)

	confirmation := &domain.PaymentConfirmation{Token: "pi_test_abc", AmountCents: 30000, Currency: "usd"}
	payments.On("Charge", mock.Anything, int64(30000), "usd").Return(confirmation, nil).Once()
	ledger.On("RecordCaptured", mock.Anything, mock.AnythingOfType("*domain.Payment")).Return(nil).Once()
	submitter.On("Submit", mock.Anything, int64(7), mock.AnythingOfType("domain.BookingDraft"), *confirmation).
		Return(&domain.Booking{ID: 42, FlightID: 7, Status: domain.BookingStatusConfirmed}, nil).Once()
	ledger.On("MarkApplied", mock.Anything, "pi_test_abc").Return(nil).Once()

	updated, err := svc.Pay(context.Background(), session.ID)

	assert.NoError(t, err)
	assert.Equal(t, StateSuccess, updated.State)
	assert.NotNil(t, updated.Booking)
	assert.Equal(t, int64(42), updated.Booking.ID)
	assert.Nil(t, updated.Confirmation)
	// success is transient: stored only for the reset window
	assert.Equal(t, 2*time.Second, store.ttls[session.ID])

	payments.AssertExpectations(t)
	submitter.AssertExpectations(t)
	ledger.AssertExpectations(t)
}

func TestService_Pay_ChargeFailureStaysInPayment(t *testing.T) {
	store := newFakeStore()
	flights := &MockFlightSource{}
	payments := &MockPaymentClient{}
	svc := newTestService(store, flights, payments, &MockSubmitter{}, &MockPaymentRepository{})
	session := startSession(t, svc, flights)

	fillDraft(t, svc, session.ID)
	_, err := svc.Forward(context.Background(), session.ID)
	assert.NoError(t, err)

	payments.On("Charge", mock.Anything, int64(30000), "usd").Return(nil, errors.New("card declined")).Once()

	updated, err := svc.Pay(context.Background(), session.ID)

	assert.NoError(t, err)
	assert.Equal(t, StatePayment, updated.State)
	assert.Equal(t, "card declined", updated.FailureReason)
}

func TestService_Pay_SubmitFailurePreservesConfirmation(t *testing.T) {
	store := newFakeStore()
	flights := &MockFlightSource{}
	payments := &MockPaymentClient{}
	submitter := &MockSubmitter{}
	ledger := &MockPaymentRepository{}
	svc := newTestService(store, flights, payments, submitter, ledger)
	session := startSession(t, svc, flights)

	fillDraft(t, svc, session.ID)
	_, err := svc.Forward(context.Background(), session.ID)
	assert.NoError(t, err)

	confirmation := &domain.PaymentConfirmation{Token: "pi_test_abc", AmountCents: 30000, Currency: "usd"}
	payments.On("Charge", mock.Anything, int64(30000), "usd").Return(confirmation, nil).Once()
	ledger.On("RecordCaptured", mock.Anything, mock.AnythingOfType("*domain.Payment")).Return(nil).Once()
	submitter.On("Submit", mock.Anything, int64(7), mock.AnythingOfType("domain.BookingDraft"), *confirmation).
		Return(nil, errors.New("Seats unavailable")).Once()

	updated, err := svc.Pay(context.Background(), session.ID)

	assert.NoError(t, err)
	assert.Equal(t, StateFailure, updated.State)
	assert.Equal(t, "Seats unavailable", updated.FailureReason)
	assert.NotNil(t, updated.Confirmation)
	assert.Equal(t, "pi_test_abc", updated.Confirmation.Token)
}

func TestService_Retry_ReusesConfirmation(t *testing.T) {
	store := newFakeStore()
	flights := &MockFlightSource{}
	payments := &MockPaymentClient{}
	submitter := &MockSubmitter{}
	ledger := &MockPaymentRepository{}
	svc := newTestService(store, flights, payments, submitter, ledger)
	session := startSession(t, svc, flights)

	fillDraft(t, svc, session.ID)
	_, err := svc.Forward(context.Background(), session.ID)
	assert.NoError(t, err)

	confirmation := &domain.PaymentConfirmation{Token: "pi_test_abc", AmountCents: 30000, Currency: "usd"}
	payments.On("Charge", mock.Anything, int64(30000), "usd").Return(confirmation, nil).Once()
	ledger.On("RecordCaptured", mock.Anything, mock.AnythingOfType("*domain.Payment")).Return(nil).Once()
	submitter.On("Submit", mock.Anything, int64(7), mock.AnythingOfType("domain.BookingDraft"), *confirmation).
		Return(nil, errors.New("upstream timeout")).Once()

	failed, err := svc.Pay(context.Background(), session.ID)
	assert.NoError(t, err)
	assert.Equal(t, StateFailure, failed.State)

	// retry submits again without a second charge
	submitter.On("Submit", mock.Anything, int64(7), mock.AnythingOfType("domain.BookingDraft"), *confirmation).
		Return(&domain.Booking{ID: 42}, nil).Once()
	ledger.On("MarkApplied", mock.Anything, "pi_test_abc").Return(nil).Once()

	recovered, err := svc.Retry(context.Background(), session.ID)

	assert.NoError(t, err)
	assert.Equal(t, StateSuccess, recovered.State)
	payments.AssertNumberOfCalls(t, "Charge", 1)
	submitter.AssertExpectations(t)
}

func failSubmission(t *testing.T, svc *Service, session *Session, payments *MockPaymentClient, submitter *MockSubmitter, ledger *MockPaymentRepository) *Session {
	t.Helper()
	fillDraft(t, svc, session.ID)
	_, err := svc.Forward(context.Background(), session.ID)
	assert.NoError(t, err)

	confirmation := &domain.PaymentConfirmation{Token: "pi_test_abc", AmountCents: 30000, Currency: "usd"}
	payments.On("Charge", mock.Anything, int64(30000), "usd").Return(confirmation, nil).Once()
	ledger.On("RecordCaptured", mock.Anything, mock.AnythingOfType("*domain.Payment")).Return(nil).Once()
	submitter.On("Submit", mock.Anything, int64(7), mock.AnythingOfType("domain.BookingDraft"), *confirmation).
		Return(nil, errors.New("upstream timeout")).Once()

	failed, err := svc.Pay(context.Background(), session.ID)
	assert.NoError(t, err)
	assert.Equal(t, StateFailure, failed.State)
	return failed
}

func TestService_Back_FromFailureKeepsConfirmation(t *testing.T) {
	store := newFakeStore()
	flights := &MockFlightSource{}
	payments := &MockPaymentClient{}
	submitter := &MockSubmitter{}
	ledger := &MockPaymentRepository{}
	svc := newTestService(store, flights, payments, submitter, ledger)
	session := startSession(t, svc, flights)

	failSubmission(t, svc, session, payments, submitter, ledger)

	recovered, err := svc.Back(context.Background(), session.ID)

	assert.NoError(t, err)
	assert.Equal(t, StateEntry, recovered.State)
	assert.Empty(t, recovered.FailureReason)
	assert.Equal(t, "a@b.com", recovered.Draft.Email)
	assert.NotNil(t, recovered.Confirmation)
	assert.Equal(t, "pi_test_abc", recovered.Confirmation.Token)
}

func TestService_Pay_AfterFailureBackDoesNotChargeAgain(t *testing.T) {
	store := newFakeStore()
	flights := &MockFlightSource{}
	payments := &MockPaymentClient{}
	submitter := &MockSubmitter{}
	ledger := &MockPaymentRepository{}
	svc := newTestService(store, flights, payments, submitter, ledger)
	session := startSession(t, svc, flights)

	failSubmission(t, svc, session, payments, submitter, ledger)

	// recover through entry and pay again with the same total
	_, err := svc.Back(context.Background(), session.ID)
	assert.NoError(t, err)
	_, err = svc.Forward(context.Background(), session.ID)
	assert.NoError(t, err)

	confirmation := domain.PaymentConfirmation{Token: "pi_test_abc", AmountCents: 30000, Currency: "usd"}
	submitter.On("Submit", mock.Anything, int64(7), mock.AnythingOfType("domain.BookingDraft"), confirmation).
		Return(&domain.Booking{ID: 42}, nil).Once()
	ledger.On("MarkApplied", mock.Anything, "pi_test_abc").Return(nil).Once()

	recovered, err := svc.Pay(context.Background(), session.ID)

	assert.NoError(t, err)
	assert.Equal(t, StateSuccess, recovered.State)
	payments.AssertNumberOfCalls(t, "Charge", 1)
	ledger.AssertNumberOfCalls(t, "RecordCaptured", 1)
}

func TestService_Retry_RequiresFailureState(t *testing.T) {
	store := newFakeStore()
	flights := &MockFlightSource{}
	svc := newTestService(store, flights, &MockPaymentClient{}, &MockSubmitter{}, &MockPaymentRepository{})
	session := startSession(t, svc, flights)

	_, err := svc.Retry(context.Background(), session.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestService_Pay_DropsStaleChargeResult(t *testing.T) {
	store := newFakeStore()
	flights := &MockFlightSource{}
	payments := &MockPaymentClient{}
	submitter := &MockSubmitter{}
	svc := newTestService(store, flights, payments, submitter, &MockPaymentRepository{})
	session := startSession(t, svc, flights)

	fillDraft(t, svc, session.ID)
	_, err := svc.Forward(context.Background(), session.ID)
	assert.NoError(t, err)

	// The wizard is closed while the charge is in flight.
	confirmation := &domain.PaymentConfirmation{Token: "pi_test_late", AmountCents: 30000, Currency: "usd"}
	payments.On("Charge", mock.Anything, int64(30000), "usd").
		Run(func(args mock.Arguments) {
			_ = svc.Close(context.Background(), session.ID)
		}).
		Return(confirmation, nil).Once()

	_, err = svc.Pay(context.Background(), session.ID)

	assert.ErrorIs(t, err, ErrSessionNotFound)
	submitter.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_UpdateDraft_OnlyInEntry(t *testing.T) {
	store := newFakeStore()
	flights := &MockFlightSource{}
	svc := newTestService(store, flights, &MockPaymentClient{}, &MockSubmitter{}, &MockPaymentRepository{})
	session := startSession(t, svc, flights)

	fillDraft(t, svc, session.ID)
	_, err := svc.Forward(context.Background(), session.ID)
	assert.NoError(t, err)

	_, err = svc.UpdateDraft(context.Background(), session.ID, domain.NewBookingDraft())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestService_Get_NotFound(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &MockFlightSource{}, &MockPaymentClient{}, &MockSubmitter{}, &MockPaymentRepository{})

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
