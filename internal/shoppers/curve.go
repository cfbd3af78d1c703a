package shoppers

import "math"

// WillingToPay computes a shopper's integer willingness to pay on the
// given day from its urgency curve.
//
//	progress = clamp((day - windowStart) / (windowEnd - windowStart), 0, 1)
//	price    = round(base + (max - base) * progress^urgency)
//
// A zero-length window means maximum urgency (progress = 1). Rounding is
// round-half-away-from-zero (math.Round); callers and tests rely on that
// exact behavior.
func WillingToPay(base, max, urgency float64, windowStart, windowEnd, day int) int {
	windowLen := windowEnd - windowStart

	progress := 1.0
	if windowLen > 0 {
		progress = float64(day-windowStart) / float64(windowLen)
		if progress < 0 {
			progress = 0
		} else if progress > 1 {
			progress = 1
		}
	}

	price := base + (max-base)*math.Pow(progress, urgency)
	return int(math.Round(price))
}

// CurrentPrice is WillingToPay applied to a shopper's own parameters.
func (s *Shopper) CurrentPrice(day int) int {
	return WillingToPay(s.BasePrice, s.MaxPrice, s.Urgency, s.WindowStart, s.WindowEnd, day)
}
