package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"skybook/internal/domain"
)

var ErrNoAvailableSeats = errors.New("not enough available seats")

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Booking, error)
	Cancel(ctx context.Context, id int64) (*domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func seatsColumn(class domain.TravelClass) (string, error) {
	switch class {
	case domain.TravelClassEconomy:
		return "available_economy_seats", nil
	case domain.TravelClassBusiness:
		return "available_business_seats", nil
	case domain.TravelClassFirstClass:
		return "available_first_class_seats", nil
	}
	return "", domain.ErrUnknownTravelClass
}

// Create inserts a confirmed booking and takes its seats from the flight in
// one transaction. Fails with ErrNoAvailableSeats when the class is sold out.
func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	column, err := seatsColumn(booking.TravelClass)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf(`UPDATE flights SET %s = %s - $1, updated_at = now() WHERE id=$2 AND %s >= $1`, column, column, column)
	cmd, err := tx.Exec(ctx, query, booking.SeatsBooked, booking.FlightID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNoAvailableSeats
	}

	booking.Status = domain.BookingStatusConfirmed
	if err := tx.QueryRow(ctx, `INSERT INTO bookings (flight_id, gender, date_of_birth, nationality, email, phone_number, seats_booked, travel_class, payment_ref, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, booking_date`,
		booking.FlightID, booking.Gender, booking.DateOfBirth, booking.Nationality,
		booking.Email, booking.PhoneNumber, booking.SeatsBooked, booking.TravelClass,
		booking.PaymentRef, booking.Status).
		Scan(&booking.ID, &booking.BookingDate); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

const bookingColumns = `id, flight_id, gender, date_of_birth, nationality, email, phone_number, seats_booked, travel_class, payment_ref, status, booking_date`

func scanBooking(row interface{ Scan(...any) error }) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.FlightID, &b.Gender, &b.DateOfBirth, &b.Nationality,
		&b.Email, &b.PhoneNumber, &b.SeatsBooked, &b.TravelClass, &b.PaymentRef,
		&b.Status, &b.BookingDate); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	return scanBooking(row)
}

func (r *PGBookingRepository) ListByEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE email=$1 ORDER BY booking_date DESC`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// Cancel marks the booking cancelled and returns its seats to the flight.
func (r *PGBookingRepository) Cancel(ctx context.Context, id int64) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `UPDATE bookings SET status=$1 WHERE id=$2 AND status=$3 RETURNING `+bookingColumns,
		domain.BookingStatusCancelled, id, domain.BookingStatusConfirmed)
	booking, err := scanBooking(row)
	if err != nil {
		return nil, err
	}

	column, err := seatsColumn(booking.TravelClass)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`UPDATE flights SET %s = %s + $1, updated_at = now() WHERE id=$2`, column, column)
	if _, err := tx.Exec(ctx, query, booking.SeatsBooked, booking.FlightID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return booking, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
