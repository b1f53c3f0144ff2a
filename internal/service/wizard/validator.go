package wizard

import (
	"regexp"
	"strings"

	"skybook/internal/domain"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Validate checks a draft's required fields. It is pure: no network, no
// cross-field rules. An empty result means the draft may proceed to payment.
func Validate(draft domain.BookingDraft) domain.ValidationResult {
	errs := domain.ValidationResult{}

	email := strings.TrimSpace(draft.Email)
	if email == "" {
		errs["email"] = "Email is required"
	} else if !emailPattern.MatchString(email) {
		errs["email"] = "Enter a valid email address"
	}

	if strings.TrimSpace(draft.PhoneNumber) == "" {
		errs["phone_number"] = "Phone number is required"
	}

	if strings.TrimSpace(draft.Nationality) == "" {
		errs["nationality"] = "Nationality is required"
	}

	if strings.TrimSpace(draft.DateOfBirth) == "" {
		errs["date_of_birth"] = "Date of birth is required"
	}

	if draft.SeatsBooked < 1 {
		errs["seats_booked"] = "At least one seat must be booked"
	}

	return errs
}
