// Package shoppers provides the synthetic buyer population and the
// willingness-to-pay curve that shapes daily demand.
package shoppers

// ShopperType distinguishes the two demand populations.
type ShopperType uint8

const (
	LongTerm  ShopperType = 0 // Wide window, patient price curve
	ShortTerm ShopperType = 1 // Narrow window, steep urgency
)

// String returns the type tag used in shopper IDs and logs.
func (t ShopperType) String() string {
	if t == ShortTerm {
		return "short_term"
	}
	return "long_term"
}

// Shopper is a synthetic buyer with bounded demand and an inclusive
// active shopping window [WindowStart, WindowEnd].
type Shopper struct {
	ID   string      `json:"shopper_id"`
	Type ShopperType `json:"shopper_type"`

	TotalDemand     int `json:"total_demand"`
	DemandRemaining int `json:"demand_remaining"`

	WindowStart int `json:"shopping_window_start"`
	WindowEnd   int `json:"shopping_window_end"`

	// Price curve parameters.
	BasePrice float64 `json:"base_willing_to_pay"`
	MaxPrice  float64 `json:"max_willing_to_pay"`
	Urgency   float64 `json:"urgency_factor"`
}

// Active reports whether the shopper participates on the given day.
func (s *Shopper) Active(day int) bool {
	return s.DemandRemaining > 0 && s.WindowStart <= day && day <= s.WindowEnd
}

// DemandUnit is one unit of a shopper's unmet demand for a single day,
// priced at that shopper's current willingness to pay. Pool entries are
// rebuilt from scratch every day and never persisted.
type DemandUnit struct {
	ShopperID    string `json:"shopper_id"`
	WillingToPay int    `json:"willing_to_pay"`
}
