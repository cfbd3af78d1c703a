package market

import "testing"

func tradesAt(prices ...int) []Trade {
	out := make([]Trade, len(prices))
	for i, p := range prices {
		out[i] = Trade{Day: 1, ShopperID: "S", Seller: "A", Price: p}
	}
	return out
}

func TestComputeStatsEmpty(t *testing.T) {
	s := ComputeStats(nil, nil)
	if s.TradeCount != 0 || s.UnmetUnits != 0 {
		t.Errorf("empty logs produced counts %d/%d", s.TradeCount, s.UnmetUnits)
	}
	if s.Trend != "unknown" {
		t.Errorf("trend %q, want unknown", s.Trend)
	}
	if s.Tightness != "balanced" {
		t.Errorf("tightness %q, want balanced", s.Tightness)
	}
}

func TestComputeStatsPrices(t *testing.T) {
	s := ComputeStats(tradesAt(80, 90, 100, 110), nil)
	if s.TradeCount != 4 {
		t.Errorf("trade count %d, want 4", s.TradeCount)
	}
	if s.AvgPrice != 95 {
		t.Errorf("avg price %g, want 95", s.AvgPrice)
	}
	if s.MinPrice != 80 || s.MaxPrice != 110 {
		t.Errorf("price range %d-%d, want 80-110", s.MinPrice, s.MaxPrice)
	}
}

func TestComputeStatsTrend(t *testing.T) {
	tests := []struct {
		name   string
		prices []int
		want   string
	}{
		{"rising", []int{80, 80, 100, 100}, "rising"},
		{"falling", []int{100, 100, 80, 80}, "falling"},
		{"stable", []int{100, 100, 101, 101}, "stable"},
		{"single trade", []int{100}, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ComputeStats(tradesAt(tt.prices...), nil)
			if s.Trend != tt.want {
				t.Errorf("trend %q, want %q", s.Trend, tt.want)
			}
		})
	}
}

func TestComputeStatsTightness(t *testing.T) {
	unmet := make([]UnmetDemand, 600)
	for i := range unmet {
		unmet[i] = UnmetDemand{Day: 1, ShopperID: "S", WillingToPay: 70, AskPrice: 90}
	}

	s := ComputeStats(nil, unmet[:50])
	if s.UnmetUnits != 50 || s.Tightness != "balanced" {
		t.Errorf("got %d/%q, want 50/balanced", s.UnmetUnits, s.Tightness)
	}

	// Exactly at the threshold is still balanced.
	s = ComputeStats(nil, unmet[:100])
	if s.Tightness != "balanced" {
		t.Errorf("tightness %q, want balanced at threshold", s.Tightness)
	}

	s = ComputeStats(nil, unmet[:101])
	if s.Tightness != "tight" {
		t.Errorf("tightness %q, want tight above threshold", s.Tightness)
	}

	// The unmet window caps what a long backlog can report.
	s = ComputeStats(nil, unmet)
	if s.UnmetUnits != 500 {
		t.Errorf("unmet units %d, want 500 (window cap)", s.UnmetUnits)
	}
	if s.Tightness != "tight" {
		t.Errorf("tightness %q, want tight", s.Tightness)
	}
}

func TestComputeStatsTradeWindow(t *testing.T) {
	trades := make([]Trade, statsTradeWindow+500)
	for i := range trades {
		price := 50
		if i >= 500 {
			price = 100
		}
		trades[i] = Trade{Day: 1, ShopperID: "S", Seller: "A", Price: price}
	}
	// Only the newest window counts, and it is uniformly priced.
	s := ComputeStats(trades, nil)
	if s.TradeCount != statsTradeWindow {
		t.Errorf("trade count %d, want %d", s.TradeCount, statsTradeWindow)
	}
	if s.AvgPrice != 100 || s.MinPrice != 100 {
		t.Errorf("old trades leaked into window: avg %g min %d", s.AvgPrice, s.MinPrice)
	}
}
