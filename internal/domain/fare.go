package domain

// FareTable holds the per-seat price for each travel class of one flight.
// Prices are whole currency units. A flight with no fares of its own falls
// back to DefaultFareTable.
type FareTable struct {
	Economy    int64 `json:"price_economy"`
	Business   int64 `json:"price_business"`
	FirstClass int64 `json:"price_first_class"`
}

func DefaultFareTable() FareTable {
	return FareTable{Economy: 100, Business: 200, FirstClass: 300}
}

// Zero reports whether no fare was supplied for any class.
func (t FareTable) Zero() bool {
	return t.Economy == 0 && t.Business == 0 && t.FirstClass == 0
}

// PerSeat returns the unit fare for a travel class.
func (t FareTable) PerSeat(class TravelClass) (int64, error) {
	switch class {
	case TravelClassEconomy:
		return t.Economy, nil
	case TravelClassBusiness:
		return t.Business, nil
	case TravelClassFirstClass:
		return t.FirstClass, nil
	}
	return 0, ErrUnknownTravelClass
}
