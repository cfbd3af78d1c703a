package market

// Window sizes for broker market analytics. Trades are one unit each,
// so the trade window is entries, not days.
const (
	statsTradeWindow = 2000
	// Unmet entries are one unit each, so the window must comfortably
	// exceed the tightness threshold for the signal to fire.
	statsUnmetWindow = 500

	// Unmet units in the recent window above this count read as a
	// tight market.
	tightThreshold = 100
)

// Stats is the demand-side market intelligence visible only to the
// broker: recent trade prices and volume from the public market log,
// plus unmet-demand pressure. Suppliers never receive this block; their
// view is limited to their own ledger.
type Stats struct {
	TradeCount int     `json:"num_trades"`
	AvgPrice   float64 `json:"avg_price"`
	MinPrice   int     `json:"min_price"`
	MaxPrice   int     `json:"max_price"`
	Trend      string  `json:"price_trend"` // rising, falling, stable, unknown

	UnmetUnits int    `json:"recent_unmet_demand"`
	Tightness  string `json:"market_tightness"` // tight or balanced
}

// ComputeStats derives broker market analytics from the run's full
// market and unmet-demand logs, looking at the most recent window of
// each.
func ComputeStats(trades []Trade, unmet []UnmetDemand) Stats {
	if len(trades) > statsTradeWindow {
		trades = trades[len(trades)-statsTradeWindow:]
	}
	if len(unmet) > statsUnmetWindow {
		unmet = unmet[len(unmet)-statsUnmetWindow:]
	}

	s := Stats{
		TradeCount: len(trades),
		UnmetUnits: len(unmet),
		Trend:      "unknown",
		Tightness:  "balanced",
	}
	if s.UnmetUnits > tightThreshold {
		s.Tightness = "tight"
	}
	if len(trades) == 0 {
		return s
	}

	total := 0
	s.MinPrice = trades[0].Price
	s.MaxPrice = trades[0].Price
	for _, t := range trades {
		total += t.Price
		if t.Price < s.MinPrice {
			s.MinPrice = t.Price
		}
		if t.Price > s.MaxPrice {
			s.MaxPrice = t.Price
		}
	}
	s.AvgPrice = float64(total) / float64(len(trades))
	s.Trend = priceTrend(trades)
	return s
}

// priceTrend compares the average price of the older half of the window
// against the newer half; a move beyond 5% either way reads as a trend.
func priceTrend(trades []Trade) string {
	if len(trades) < 2 {
		return "unknown"
	}
	half := len(trades) / 2
	first, second := 0, 0
	for _, t := range trades[:half] {
		first += t.Price
	}
	for _, t := range trades[half:] {
		second += t.Price
	}
	avgFirst := float64(first) / float64(half)
	avgSecond := float64(second) / float64(len(trades)-half)

	switch {
	case avgSecond > avgFirst*1.05:
		return "rising"
	case avgSecond < avgFirst*0.95:
		return "falling"
	default:
		return "stable"
	}
}
