package market

import (
	"sort"

	"github.com/talgya/bazaar/internal/shoppers"
)

// Result is the outcome of one clearing pass. Clear is a pure function
// of its inputs, so replaying the same pool and offers reproduces the
// same Result; the caller applies it to ledgers and the population.
type Result struct {
	Trades []Trade
	Unmet  []UnmetDemand

	// Units sold per agent and per shopper, for ledger credits and
	// demand depletion.
	SoldByAgent     map[string]int
	BoughtByShopper map[string]int
}

// sellerState tracks one offer's remaining capacity during the pass.
type sellerState struct {
	name      string
	price     int
	remaining int // Offered quantity not yet sold
	inventory int // Ledger inventory not yet sold
}

// Clear runs the one-pass two-pointer priority match. The shopper pool
// must already be sorted descending by price (ties randomized by the
// pool builder). Sellers are taken from offers with positive quantity
// and positive starting inventory, sorted ascending by price with ties
// kept in offer order, so demand always meets the cheapest viable
// seller first.
//
// Each match is a one-unit trade at the seller's price. A shopper whose
// price falls below the current seller's ask is logged as unmet and
// never reconsidered against later sellers: the pass is deliberately
// first-compatible-seller, not best-price, and that bias must not be
// "improved" away.
func Clear(day int, pool []shoppers.DemandUnit, offers []Offer, startingInventory map[string]int) Result {
	res := Result{
		SoldByAgent:     make(map[string]int),
		BoughtByShopper: make(map[string]int),
	}

	sellers := make([]*sellerState, 0, len(offers))
	for _, o := range offers {
		inv := startingInventory[o.AgentName]
		if o.Quantity <= 0 || inv <= 0 {
			continue
		}
		sellers = append(sellers, &sellerState{
			name:      o.AgentName,
			price:     o.Price,
			remaining: o.Quantity,
			inventory: inv,
		})
	}
	sort.SliceStable(sellers, func(i, j int) bool {
		return sellers[i].price < sellers[j].price
	})

	i, j := 0, 0
	for i < len(pool) && j < len(sellers) {
		seller := sellers[j]
		if seller.remaining <= 0 || seller.inventory <= 0 {
			j++
			continue
		}

		unit := pool[i]
		if unit.WillingToPay >= seller.price {
			seller.remaining--
			seller.inventory--
			res.SoldByAgent[seller.name]++
			res.BoughtByShopper[unit.ShopperID]++
			res.Trades = append(res.Trades, Trade{
				Day:       day,
				ShopperID: unit.ShopperID,
				Seller:    seller.name,
				Price:     seller.price,
			})
		} else {
			res.Unmet = append(res.Unmet, UnmetDemand{
				Day:          day,
				ShopperID:    unit.ShopperID,
				WillingToPay: unit.WillingToPay,
				AskPrice:     seller.price,
			})
		}
		i++
	}

	// No viable seller remains; everything left is unmet.
	for ; i < len(pool); i++ {
		res.Unmet = append(res.Unmet, UnmetDemand{
			Day:          day,
			ShopperID:    pool[i].ShopperID,
			WillingToPay: pool[i].WillingToPay,
		})
	}
	return res
}
