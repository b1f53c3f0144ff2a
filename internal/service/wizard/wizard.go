package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"skybook/internal/domain"
	"skybook/internal/repository"
)

type State string

const (
	StateEntry      State = "entry"
	StatePayment    State = "payment"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailure    State = "failure"
)

var (
	ErrSessionNotFound   = errors.New("wizard session not found")
	ErrInvalidTransition = errors.New("action not allowed in current state")
	ErrSessionStale      = errors.New("wizard session changed while awaiting payment")
)

// Session is one booking wizard instance for one flight view. It lives in the
// session store under a TTL; once the TTL lapses the wizard is closed.
type Session struct {
	ID            string                      `json:"id"`
	FlightID      int64                       `json:"flight_id"`
	Draft         domain.BookingDraft         `json:"draft"`
	Fares         domain.FareTable            `json:"fares"`
	State         State                       `json:"state"`
	Errors        domain.ValidationResult     `json:"errors,omitempty"`
	Confirmation  *domain.PaymentConfirmation `json:"confirmation,omitempty"`
	Booking       *domain.Booking             `json:"booking,omitempty"`
	FailureReason string                      `json:"failure_reason,omitempty"`
	Version       int                         `json:"version"`
	CreatedAt     time.Time                   `json:"created_at"`
}

type SessionStore interface {
	SaveWizardSession(ctx context.Context, id string, payload []byte, ttl time.Duration) error
	GetWizardSession(ctx context.Context, id string) ([]byte, error)
	DeleteWizardSession(ctx context.Context, id string) error
}

type PaymentClient interface {
	Charge(ctx context.Context, amountCents int64, currency string) (*domain.PaymentConfirmation, error)
}

// Submitter performs exactly one reservation-create per call. A confirmation
// is a required argument: payment strictly precedes submission.
type Submitter interface {
	Submit(ctx context.Context, flightID int64, draft domain.BookingDraft, confirmation domain.PaymentConfirmation) (*domain.Booking, error)
}

type FlightSource interface {
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
}

type Service struct {
	store        SessionStore
	flights      FlightSource
	payments     PaymentClient
	submitter    Submitter
	ledger       repository.PaymentRepository
	sessionTTL   time.Duration
	successReset time.Duration
	currency     string
}

func NewService(
	store SessionStore,
	flights FlightSource,
	payments PaymentClient,
	submitter Submitter,
	ledger repository.PaymentRepository,
	sessionTTL, successReset time.Duration,
	currency string,
) *Service {
	return &Service{
		store:        store,
		flights:      flights,
		payments:     payments,
		submitter:    submitter,
		ledger:       ledger,
		sessionTTL:   sessionTTL,
		successReset: successReset,
		currency:     currency,
	}
}

// Start opens a wizard for a flight. The fare table is taken from the flight
// once and is immutable for the session's lifetime.
func (s *Service) Start(ctx context.Context, flightID int64) (*Session, error) {
	flight, err := s.flights.GetByID(ctx, flightID)
	if err != nil {
		return nil, fmt.Errorf("load flight %d: %w", flightID, err)
	}

	fares := flight.Fares
	if fares.Zero() {
		fares = domain.DefaultFareTable()
	}

	session := &Session{
		ID:        uuid.NewString(),
		FlightID:  flight.ID,
		Draft:     domain.NewBookingDraft(),
		Fares:     fares,
		State:     StateEntry,
		CreatedAt: time.Now(),
	}
	if err := s.save(ctx, session, s.sessionTTL); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.load(ctx, id)
}

// UpdateDraft replaces the traveler input. Only the data-entry step accepts
// edits; pending validation errors are cleared until the next forward attempt.
func (s *Service) UpdateDraft(ctx context.Context, id string, draft domain.BookingDraft) (*Session, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.State != StateEntry {
		return nil, ErrInvalidTransition
	}

	session.Draft = draft
	session.Errors = nil
	session.Version++
	if err := s.save(ctx, session, s.sessionTTL); err != nil {
		return nil, err
	}
	return session, nil
}

// Forward attempts entry -> payment. A non-empty validation result blocks
// the transition and is kept on the session for display. Valid drafts are
// additionally checked against the flight's remaining seats before the
// traveler is shown the payment step.
func (s *Service) Forward(ctx context.Context, id string) (*Session, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.State != StateEntry {
		return nil, ErrInvalidTransition
	}

	if errs := Validate(session.Draft); !errs.Valid() {
		session.Errors = errs
	} else {
		flight, err := s.flights.GetByID(ctx, session.FlightID)
		if err != nil {
			return nil, fmt.Errorf("load flight %d: %w", session.FlightID, err)
		}
		if session.Draft.SeatsBooked > flight.AvailableSeats(session.Draft.TravelClass) {
			session.Errors = domain.ValidationResult{"seats_booked": "Not enough seats available"}
		} else {
			session.Errors = nil
			session.State = StatePayment
		}
	}
	session.Version++
	if err := s.save(ctx, session, s.sessionTTL); err != nil {
		return nil, err
	}
	return session, nil
}

// Back returns to data entry, from the payment step or from a failed
// submission. The draft survives either way; after a failure the captured
// confirmation survives too, so recovering through entry does not charge
// again.
func (s *Service) Back(ctx context.Context, id string) (*Session, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.State != StatePayment && session.State != StateFailure {
		return nil, ErrInvalidTransition
	}

	session.State = StateEntry
	session.FailureReason = ""
	session.Version++
	if err := s.save(ctx, session, s.sessionTTL); err != nil {
		return nil, err
	}
	return session, nil
}

// Quote returns the total the payment step displays.
func (s *Service) Quote(ctx context.Context, id string) (int64, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return 0, err
	}
	return Total(session.Draft.TravelClass, session.Draft.SeatsBooked, &session.Fares)
}

// Pay charges the quoted total and, once the charge resolves, submits the
// reservation. A confirmation captured on an earlier attempt is reused as
// long as the total is unchanged, so going back through entry after a failed
// submission does not charge again. The charge itself carries no timeout
// beyond the caller's context. Before a fresh charge result is applied the
// session is re-read: if it was closed or moved on in the meantime the
// result is dropped, so a late success cannot mutate a dead wizard.
func (s *Service) Pay(ctx context.Context, id string) (*Session, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.State != StatePayment {
		return nil, ErrInvalidTransition
	}

	total, err := Total(session.Draft.TravelClass, session.Draft.SeatsBooked, &session.Fares)
	if err != nil {
		return nil, err
	}

	if session.Confirmation == nil || session.Confirmation.AmountCents != toCents(total) {
		version := session.Version

		confirmation, err := s.payments.Charge(ctx, toCents(total), s.currency)
		if err != nil {
			session.FailureReason = err.Error()
			if saveErr := s.save(ctx, session, s.sessionTTL); saveErr != nil {
				return nil, saveErr
			}
			return session, nil
		}

		// Stale-instance guard.
		session, err = s.load(ctx, id)
		if err != nil {
			log.Printf("dropping charge %s: %v", confirmation.Token, err)
			return nil, err
		}
		if session.State != StatePayment || session.Version != version {
			log.Printf("dropping charge %s: %v", confirmation.Token, ErrSessionStale)
			return nil, ErrSessionStale
		}

		if s.ledger != nil {
			record := &domain.Payment{
				Token:       confirmation.Token,
				FlightID:    session.FlightID,
				AmountCents: confirmation.AmountCents,
				Currency:    confirmation.Currency,
			}
			if err := s.ledger.RecordCaptured(ctx, record); err != nil {
				log.Printf("record captured payment %s: %v", confirmation.Token, err)
			}
		}

		session.Confirmation = confirmation
	}

	session.FailureReason = ""
	session.State = StateSubmitting
	session.Version++
	if err := s.save(ctx, session, s.sessionTTL); err != nil {
		return nil, err
	}

	return s.submit(ctx, session)
}

// Retry re-submits after a failure without charging again. The draft and the
// confirmation survived the failed attempt, so the traveler does not redo
// payment.
func (s *Service) Retry(ctx context.Context, id string) (*Session, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.State != StateFailure || session.Confirmation == nil {
		return nil, ErrInvalidTransition
	}

	session.State = StateSubmitting
	session.FailureReason = ""
	session.Version++
	if err := s.save(ctx, session, s.sessionTTL); err != nil {
		return nil, err
	}

	return s.submit(ctx, session)
}

func (s *Service) Close(ctx context.Context, id string) error {
	return s.store.DeleteWizardSession(ctx, id)
}

func (s *Service) submit(ctx context.Context, session *Session) (*Session, error) {
	booking, err := s.submitter.Submit(ctx, session.FlightID, session.Draft, *session.Confirmation)
	if err != nil {
		// No automatic retry. The confirmation stays on the session;
		// the ledger keeps the charge visible to reconciliation.
		session.State = StateFailure
		session.FailureReason = err.Error()
		session.Version++
		if saveErr := s.save(ctx, session, s.sessionTTL); saveErr != nil {
			return nil, saveErr
		}
		return session, nil
	}

	if s.ledger != nil {
		if err := s.ledger.MarkApplied(ctx, session.Confirmation.Token); err != nil {
			log.Printf("mark payment %s applied: %v", session.Confirmation.Token, err)
		}
	}

	session.State = StateSuccess
	session.Booking = booking
	session.Confirmation = nil
	session.Version++
	// Success is transient: the session is kept only for the reset window,
	// after which the wizard is gone, matching the auto-close behavior.
	if err := s.save(ctx, session, s.successReset); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) load(ctx context.Context, id string) (*Session, error) {
	data, err := s.store.GetWizardSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrSessionNotFound
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode wizard session: %w", err)
	}
	return &session, nil
}

func (s *Service) save(ctx context.Context, session *Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.store.SaveWizardSession(ctx, session.ID, payload, ttl)
}

// Fares are whole currency units; the payment boundary deals in cents.
func toCents(amount int64) int64 {
	return amount * 100
}
