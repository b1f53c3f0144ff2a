package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"skybook/internal/domain"
)

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Search(ctx context.Context, filter domain.FlightSearch) ([]domain.Flight, error)
	Locations(ctx context.Context, direction string) ([]string, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, airline, flight_number, from_location, to_location, departure_airport, arrival_airport,
	departure_time, expected_time, has_transit, transit_airport, transit_country,
	available_economy_seats, available_business_seats, available_first_class_seats,
	price_economy, price_business, price_first_class, created_at, updated_at`

func scanFlight(row interface{ Scan(...any) error }) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.Airline, &f.FlightNumber, &f.FromLocation, &f.ToLocation,
		&f.DepartureAirport, &f.ArrivalAirport, &f.DepartureTime, &f.ExpectedTime,
		&f.HasTransit, &f.TransitAirport, &f.TransitCountry,
		&f.AvailableEconomySeats, &f.AvailableBusinessSeats, &f.AvailableFirstClassSeats,
		&f.Fares.Economy, &f.Fares.Business, &f.Fares.FirstClass,
		&f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departure_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
	return scanFlight(row)
}

func (r *PGFlightRepository) Search(ctx context.Context, filter domain.FlightSearch) ([]domain.Flight, error) {
	conds := make([]string, 0, 3)
	args := make([]any, 0, 3)

	if filter.FlightNumber != "" {
		args = append(args, filter.FlightNumber)
		conds = append(conds, fmt.Sprintf("flight_number=$%d", len(args)))
	} else {
		if filter.FromLocation != "" {
			args = append(args, filter.FromLocation)
			conds = append(conds, fmt.Sprintf("from_location=$%d", len(args)))
		}
		if filter.ToLocation != "" {
			args = append(args, filter.ToLocation)
			conds = append(conds, fmt.Sprintf("to_location=$%d", len(args)))
		}
		if filter.DepartureDate != "" {
			args = append(args, filter.DepartureDate)
			conds = append(conds, fmt.Sprintf("departure_time::date=$%d", len(args)))
		}
	}

	query := `SELECT ` + flightColumns + ` FROM flights`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY departure_time`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) Locations(ctx context.Context, direction string) ([]string, error) {
	column := "from_location"
	if direction == "to" {
		column = "to_location"
	}

	rows, err := r.db.Query(ctx, `SELECT DISTINCT `+column+` FROM flights ORDER BY `+column)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := make([]string, 0)
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

var _ FlightRepository = (*PGFlightRepository)(nil)
