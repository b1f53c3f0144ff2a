package domain

import "time"

type Flight struct {
	ID                       int64     `json:"id"`
	Airline                  string    `json:"airline"`
	FlightNumber             string    `json:"flight_number"`
	FromLocation             string    `json:"from_location"`
	ToLocation               string    `json:"to_location"`
	DepartureAirport         string    `json:"departure_airport"`
	ArrivalAirport           string    `json:"arrival_airport"`
	DepartureTime            time.Time `json:"departure_time"`
	ExpectedTime             string    `json:"expected_time"`
	HasTransit               bool      `json:"has_transit"`
	TransitAirport           string    `json:"transit_airport,omitempty"`
	TransitCountry           string    `json:"transit_country,omitempty"`
	AvailableEconomySeats    int       `json:"available_economy_seats"`
	AvailableBusinessSeats   int       `json:"available_business_seats"`
	AvailableFirstClassSeats int       `json:"available_first_class_seats"`
	Fares                    FareTable `json:"fares"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

// AvailableSeats reports the remaining seats for one travel class.
func (f *Flight) AvailableSeats(class TravelClass) int {
	switch class {
	case TravelClassEconomy:
		return f.AvailableEconomySeats
	case TravelClassBusiness:
		return f.AvailableBusinessSeats
	case TravelClassFirstClass:
		return f.AvailableFirstClassSeats
	}
	return 0
}

// FlightSearch is the set of filters accepted by the flight search endpoint.
// A non-empty FlightNumber wins over the route filters.
type FlightSearch struct {
	FlightNumber  string
	FromLocation  string
	ToLocation    string
	DepartureDate string
}
