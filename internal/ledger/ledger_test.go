package ledger

import (
	"reflect"
	"testing"
)

func newTestStore() *Store {
	s := NewStore()
	s.Register("Wholesaler", 0, 0, 50000)
	s.Register("Seller_1", 100, 60, 0)
	return s
}

func TestExecuteTrade(t *testing.T) {
	s := newTestStore()
	if err := s.ExecuteTrade(1, "Wholesaler", "Seller_1", 70, 40); err != nil {
		t.Fatalf("ExecuteTrade: %v", err)
	}

	seller, _ := s.Get("Seller_1")
	if seller.Inventory != 60 {
		t.Errorf("seller inventory %d, want 60", seller.Inventory)
	}
	if seller.Cash != 2800 {
		t.Errorf("seller cash %g, want 2800", seller.Cash)
	}
	if seller.TotalRevenue != 2800 {
		t.Errorf("seller revenue %g, want 2800", seller.TotalRevenue)
	}
	if len(seller.PrivateSalesLog) != 1 {
		t.Fatalf("seller sales log has %d entries, want 1", len(seller.PrivateSalesLog))
	}
	want := SaleRecord{Day: 1, Buyer: "Wholesaler", Price: 70, Quantity: 40}
	if seller.PrivateSalesLog[0] != want {
		t.Errorf("sales log entry %+v, want %+v", seller.PrivateSalesLog[0], want)
	}

	buyer, _ := s.Get("Wholesaler")
	if buyer.Inventory != 40 {
		t.Errorf("buyer inventory %d, want 40", buyer.Inventory)
	}
	if buyer.Cash != 47200 {
		t.Errorf("buyer cash %g, want 47200", buyer.Cash)
	}
	if buyer.TotalCostIncurred != 2800 {
		t.Errorf("buyer cost incurred %g, want 2800", buyer.TotalCostIncurred)
	}
}

func TestExecuteTradeAtomicOnShortInventory(t *testing.T) {
	s := newTestStore()
	before := s.Snapshot()

	if err := s.ExecuteTrade(1, "Wholesaler", "Seller_1", 70, 101); err == nil {
		t.Fatalf("expected error selling 101 of 100 units")
	}
	if !reflect.DeepEqual(before, s.Snapshot()) {
		t.Errorf("failed trade mutated ledger state")
	}
}

func TestExecuteTradeRejectsBadTerms(t *testing.T) {
	s := newTestStore()
	cases := []struct {
		name            string
		buyer, seller   string
		price, quantity int
	}{
		{"negative price", "Wholesaler", "Seller_1", -1, 10},
		{"zero quantity", "Wholesaler", "Seller_1", 70, 0},
		{"unknown buyer", "Nobody", "Seller_1", 70, 10},
		{"unknown seller", "Wholesaler", "Nobody", 70, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := s.ExecuteTrade(1, tc.buyer, tc.seller, tc.price, tc.quantity); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestRecordSale(t *testing.T) {
	s := newTestStore()
	if err := s.RecordSale(3, "Seller_1", 95, 5); err != nil {
		t.Fatalf("RecordSale: %v", err)
	}
	seller, _ := s.Get("Seller_1")
	if seller.Inventory != 95 || seller.Cash != 475 || seller.TotalRevenue != 475 {
		t.Errorf("seller after sale: inv=%d cash=%g rev=%g", seller.Inventory, seller.Cash, seller.TotalRevenue)
	}
	if err := s.RecordSale(3, "Seller_1", 95, 96); err == nil {
		t.Fatalf("expected oversell error")
	}
}

func TestApplyTransportCost(t *testing.T) {
	s := newTestStore()
	if err := s.ApplyTransportCost("Seller_1", 25); err != nil {
		t.Fatalf("ApplyTransportCost: %v", err)
	}
	seller, _ := s.Get("Seller_1")
	if seller.Cash != -25 {
		t.Errorf("cash %g, want -25", seller.Cash)
	}
	// 100 units * 60 cost + 25 transport.
	if seller.TotalCostIncurred != 6025 {
		t.Errorf("cost incurred %g, want 6025", seller.TotalCostIncurred)
	}
	if seller.TotalTransportCosts != 25 || seller.DailyTransportCost != 25 {
		t.Errorf("transport totals %g/%g, want 25/25", seller.TotalTransportCosts, seller.DailyTransportCost)
	}
}

func TestDepreciateLinearWithFloor(t *testing.T) {
	s := newTestStore()
	for i := 0; i < 10; i++ {
		s.Depreciate(10)
	}
	seller, _ := s.Get("Seller_1")
	if seller.BookValueRemaining != 0 {
		t.Errorf("book value %g, want 0 after full schedule", seller.BookValueRemaining)
	}
	// Extra days do not drive book value negative.
	s.Depreciate(10)
	seller, _ = s.Get("Seller_1")
	if seller.BookValueRemaining != 0 {
		t.Errorf("book value %g, want floor at 0", seller.BookValueRemaining)
	}

	// The broker has no initial inventory investment, nothing to depreciate.
	broker, _ := s.Get("Wholesaler")
	if broker.AccumulatedDepreciation != 0 {
		t.Errorf("broker depreciation %g, want 0", broker.AccumulatedDepreciation)
	}
}

func TestComputeMetrics(t *testing.T) {
	s := newTestStore()
	if err := s.RecordSale(1, "Seller_1", 90, 20); err != nil {
		t.Fatalf("RecordSale: %v", err)
	}
	led, _ := s.Get("Seller_1")
	m := ComputeMetrics(led, 100, 10)

	if m.UnitsSold != 20 {
		t.Errorf("units sold %d, want 20", m.UnitsSold)
	}
	if m.Revenue != 1800 {
		t.Errorf("revenue %g, want 1800", m.Revenue)
	}
	// COGS = 20 * 60.
	if m.GrossProfit != 600 {
		t.Errorf("gross profit %g, want 600", m.GrossProfit)
	}
	// Net = 1800 - 6000.
	if m.NetPosition != -4200 {
		t.Errorf("net position %g, want -4200", m.NetPosition)
	}
	if m.CostRecoveryRate != 0.3 {
		t.Errorf("cost recovery %g, want 0.3", m.CostRecoveryRate)
	}
	if m.InventoryTurnover != 0.2 {
		t.Errorf("turnover %g, want 0.2", m.InventoryTurnover)
	}
	if m.DailyDepreciation != 60 {
		t.Errorf("daily depreciation %g, want 60", m.DailyDepreciation)
	}
	// Revenue rate 180/day, 4200 still to recover.
	if m.DaysToBreakeven < 23.3 || m.DaysToBreakeven > 23.4 {
		t.Errorf("days to breakeven %g, want ~23.33", m.DaysToBreakeven)
	}
}

func TestComputeMetricsNoRevenue(t *testing.T) {
	s := newTestStore()
	led, _ := s.Get("Seller_1")
	m := ComputeMetrics(led, 100, 10)
	if m.DaysToBreakeven != 999 {
		t.Errorf("days to breakeven %g, want 999 with zero revenue", m.DaysToBreakeven)
	}
}
