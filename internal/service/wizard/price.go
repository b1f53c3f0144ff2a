package wizard

import "skybook/internal/domain"

// Total is the displayed booking price: per-seat fare times seat count.
// A nil or empty fare table falls back to the default table. Seat counts are
// trusted as validated upstream; this is a pure projection. An unknown travel
// class is a hard error since the enum is closed.
func Total(class domain.TravelClass, seats int, fares *domain.FareTable) (int64, error) {
	table := domain.DefaultFareTable()
	if fares != nil && !fares.Zero() {
		table = *fares
	}

	perSeat, err := table.PerSeat(class)
	if err != nil {
		return 0, err
	}
	return perSeat * int64(seats), nil
}
