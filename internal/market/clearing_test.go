package market

import (
	"reflect"
	"testing"

	"github.com/talgya/bazaar/internal/shoppers"
)

func TestClearPriorityTrace(t *testing.T) {
	pool := []shoppers.DemandUnit{
		{ShopperID: "S1", WillingToPay: 120},
		{ShopperID: "S2", WillingToPay: 100},
		{ShopperID: "S3", WillingToPay: 90},
	}
	offers := []Offer{
		{AgentName: "cheap", Price: 80, Quantity: 1},
		{AgentName: "dear", Price: 95, Quantity: 5},
	}
	inv := map[string]int{"cheap": 10, "dear": 10}

	res := Clear(7, pool, offers, inv)

	wantTrades := []Trade{
		{Day: 7, ShopperID: "S1", Seller: "cheap", Price: 80},
		{Day: 7, ShopperID: "S2", Seller: "dear", Price: 95},
	}
	if !reflect.DeepEqual(res.Trades, wantTrades) {
		t.Errorf("trades = %+v, want %+v", res.Trades, wantTrades)
	}

	wantUnmet := []UnmetDemand{
		{Day: 7, ShopperID: "S3", WillingToPay: 90, AskPrice: 95},
	}
	if !reflect.DeepEqual(res.Unmet, wantUnmet) {
		t.Errorf("unmet = %+v, want %+v", res.Unmet, wantUnmet)
	}
}

func TestClearSellersSortedAscendingStable(t *testing.T) {
	// Equal-price offers keep their publication order.
	pool := []shoppers.DemandUnit{
		{ShopperID: "S1", WillingToPay: 100},
		{ShopperID: "S2", WillingToPay: 100},
		{ShopperID: "S3", WillingToPay: 100},
	}
	offers := []Offer{
		{AgentName: "first", Price: 90, Quantity: 1},
		{AgentName: "second", Price: 90, Quantity: 1},
		{AgentName: "cheapest", Price: 85, Quantity: 1},
	}
	inv := map[string]int{"first": 5, "second": 5, "cheapest": 5}

	res := Clear(1, pool, offers, inv)
	sellers := []string{res.Trades[0].Seller, res.Trades[1].Seller, res.Trades[2].Seller}
	want := []string{"cheapest", "first", "second"}
	if !reflect.DeepEqual(sellers, want) {
		t.Errorf("match order %v, want %v", sellers, want)
	}
}

func TestClearCapsAtInventory(t *testing.T) {
	// Offered quantity above ledger inventory can only sell the stock
	// that exists.
	pool := make([]shoppers.DemandUnit, 6)
	for i := range pool {
		pool[i] = shoppers.DemandUnit{ShopperID: "S", WillingToPay: 100}
	}
	offers := []Offer{{AgentName: "A", Price: 90, Quantity: 10}}
	inv := map[string]int{"A": 3}

	res := Clear(1, pool, offers, inv)
	if res.SoldByAgent["A"] != 3 {
		t.Errorf("sold %d, want 3 (inventory bound)", res.SoldByAgent["A"])
	}
	if len(res.Unmet) != 3 {
		t.Fatalf("unmet %d, want 3", len(res.Unmet))
	}
	// Stranded units have no asking price to report.
	for _, u := range res.Unmet {
		if u.AskPrice != 0 {
			t.Errorf("stranded unmet ask price %d, want 0", u.AskPrice)
		}
	}
}

func TestClearSkipsEmptySellers(t *testing.T) {
	pool := []shoppers.DemandUnit{{ShopperID: "S", WillingToPay: 100}}
	offers := []Offer{
		{AgentName: "zero_qty", Price: 50, Quantity: 0},
		{AgentName: "zero_inv", Price: 60, Quantity: 5},
		{AgentName: "viable", Price: 70, Quantity: 5},
	}
	inv := map[string]int{"zero_qty": 5, "zero_inv": 0, "viable": 5}

	res := Clear(1, pool, offers, inv)
	if len(res.Trades) != 1 || res.Trades[0].Seller != "viable" {
		t.Fatalf("trades = %+v, want single trade from viable", res.Trades)
	}
}

func TestClearSinglePassNoSecondLook(t *testing.T) {
	// The priced-out shopper is not retried against the cheaper seller
	// that comes up later in the pass. This bias is intentional.
	pool := []shoppers.DemandUnit{
		{ShopperID: "rich", WillingToPay: 200},
		{ShopperID: "poor", WillingToPay: 60},
		{ShopperID: "mid", WillingToPay: 90},
	}
	offers := []Offer{
		{AgentName: "A", Price: 50, Quantity: 1},
		{AgentName: "B", Price: 80, Quantity: 1},
	}
	inv := map[string]int{"A": 1, "B": 1}

	res := Clear(1, pool, offers, inv)
	// rich takes A@50; poor is rejected against B@80 and never
	// reconsidered; mid takes B@80.
	wantTrades := []Trade{
		{Day: 1, ShopperID: "rich", Seller: "A", Price: 50},
		{Day: 1, ShopperID: "mid", Seller: "B", Price: 80},
	}
	if !reflect.DeepEqual(res.Trades, wantTrades) {
		t.Errorf("trades = %+v, want %+v", res.Trades, wantTrades)
	}
	wantUnmet := []UnmetDemand{
		{Day: 1, ShopperID: "poor", WillingToPay: 60, AskPrice: 80},
	}
	if !reflect.DeepEqual(res.Unmet, wantUnmet) {
		t.Errorf("unmet = %+v, want %+v", res.Unmet, wantUnmet)
	}
}

func TestClearReplayIsDeterministic(t *testing.T) {
	pool := []shoppers.DemandUnit{
		{ShopperID: "S1", WillingToPay: 120},
		{ShopperID: "S2", WillingToPay: 110},
		{ShopperID: "S3", WillingToPay: 95},
		{ShopperID: "S4", WillingToPay: 70},
	}
	offers := []Offer{
		{AgentName: "A", Price: 90, Quantity: 2},
		{AgentName: "B", Price: 100, Quantity: 3},
	}
	inv := map[string]int{"A": 2, "B": 1}

	first := Clear(5, pool, offers, inv)
	second := Clear(5, pool, offers, inv)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("replay diverged:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestClearConservation(t *testing.T) {
	pool := make([]shoppers.DemandUnit, 50)
	for i := range pool {
		pool[i] = shoppers.DemandUnit{ShopperID: "S", WillingToPay: 150}
	}
	offers := []Offer{
		{AgentName: "A", Price: 90, Quantity: 12},
		{AgentName: "B", Price: 95, Quantity: 30},
	}
	inv := map[string]int{"A": 8, "B": 40}

	res := Clear(1, pool, offers, inv)

	// Units sold never exceed min(offered, inventory) per seller.
	if res.SoldByAgent["A"] != 8 {
		t.Errorf("A sold %d, want 8", res.SoldByAgent["A"])
	}
	if res.SoldByAgent["B"] != 30 {
		t.Errorf("B sold %d, want 30", res.SoldByAgent["B"])
	}
	if len(res.Trades)+len(res.Unmet) != len(pool) {
		t.Errorf("trades %d + unmet %d != pool %d", len(res.Trades), len(res.Unmet), len(pool))
	}
}
