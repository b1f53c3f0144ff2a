package domain

import (
	"errors"
	"time"
)

type TravelClass string

const (
	TravelClassEconomy    TravelClass = "economy"
	TravelClassBusiness   TravelClass = "business"
	TravelClassFirstClass TravelClass = "first_class"
)

var ErrUnknownTravelClass = errors.New("unknown travel class")

func ParseTravelClass(s string) (TravelClass, error) {
	switch TravelClass(s) {
	case TravelClassEconomy, TravelClassBusiness, TravelClassFirstClass:
		return TravelClass(s), nil
	}
	return "", ErrUnknownTravelClass
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

var ErrUnknownGender = errors.New("unknown gender")

func ParseGender(s string) (Gender, error) {
	switch Gender(s) {
	case GenderMale, GenderFemale:
		return Gender(s), nil
	}
	return "", ErrUnknownGender
}

// BookingDraft is the traveler input collected by the booking wizard before
// payment. It is mutated field by field and discarded on close or on a
// successful submission.
type BookingDraft struct {
	Gender      Gender      `json:"gender"`
	DateOfBirth string      `json:"date_of_birth"`
	Nationality string      `json:"nationality"`
	Email       string      `json:"email"`
	PhoneNumber string      `json:"phone_number"`
	SeatsBooked int         `json:"seats_booked"`
	TravelClass TravelClass `json:"travel_class"`
}

// NewBookingDraft returns the draft a freshly opened wizard starts with.
func NewBookingDraft() BookingDraft {
	return BookingDraft{
		Gender:      GenderMale,
		SeatsBooked: 1,
		TravelClass: TravelClassEconomy,
	}
}

// ValidationResult maps a field name to its error message. Absence of a key
// means the field is valid.
type ValidationResult map[string]string

func (v ValidationResult) Valid() bool { return len(v) == 0 }

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type Booking struct {
	ID          int64         `json:"id"`
	FlightID    int64         `json:"flight"`
	Gender      Gender        `json:"gender"`
	DateOfBirth string        `json:"date_of_birth"`
	Nationality string        `json:"nationality"`
	Email       string        `json:"email"`
	PhoneNumber string        `json:"phone_number"`
	SeatsBooked int           `json:"seats_booked"`
	TravelClass TravelClass   `json:"travel_class"`
	PaymentRef  string        `json:"payment_ref"`
	Status      BookingStatus `json:"status"`
	BookingDate time.Time     `json:"booking_date"`
}
