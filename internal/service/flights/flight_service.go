package flights

import (
	"context"
	"fmt"
	"strings"

	"skybook/internal/domain"
	"skybook/internal/repository"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Search(ctx context.Context, filter domain.FlightSearch) ([]domain.Flight, error)
	Locations(ctx context.Context, direction string) ([]string, error)
}

type Cache interface {
	GetFlights(ctx context.Context, key string) ([]domain.Flight, error)
	SetFlights(ctx context.Context, key string, flights []domain.Flight) error
}

type FlightService struct {
	repo  repository.FlightRepository
	cache Cache
}

func NewFlightService(repo repository.FlightRepository, cache Cache) *FlightService {
	return &FlightService{repo: repo, cache: cache}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx, "all"); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, "all", flights)
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) Search(ctx context.Context, filter domain.FlightSearch) ([]domain.Flight, error) {
	key := searchKey(filter)
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx, key); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, key, flights)
	}
	return flights, nil
}

func (s *FlightService) Locations(ctx context.Context, direction string) ([]string, error) {
	if direction != "from" && direction != "to" {
		return nil, fmt.Errorf("unknown location direction %q", direction)
	}
	return s.repo.Locations(ctx, direction)
}

func searchKey(filter domain.FlightSearch) string {
	if filter.FlightNumber != "" {
		return "number:" + filter.FlightNumber
	}
	return "search:" + strings.Join([]string{filter.FromLocation, filter.ToLocation, filter.DepartureDate}, "|")
}

var _ FlightUseCase = (*FlightService)(nil)
