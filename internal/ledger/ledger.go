// Package ledger owns every agent's financial and inventory state.
// Other packages read snapshots and mutate balances only through the
// trade operations here, never by field assignment.
package ledger

import "fmt"

// SaleRecord is one entry in an agent's private sales log.
type SaleRecord struct {
	Day      int    `json:"day"`
	Buyer    string `json:"buyer,omitempty"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
}

// AgentLedger tracks one agent's inventory and cash position.
type AgentLedger struct {
	Inventory int     `json:"inventory"`
	Cash      float64 `json:"cash"`

	CostPerUnit       int     `json:"cost_per_unit"`
	TotalCostIncurred float64 `json:"total_cost_incurred"`
	TotalRevenue      float64 `json:"total_revenue"`

	// Depreciation of the initial inventory investment.
	InitialInventory        int     `json:"initial_inventory"`
	InitialInventoryValue   float64 `json:"initial_inventory_value"`
	AccumulatedDepreciation float64 `json:"accumulated_depreciation"`
	BookValueRemaining      float64 `json:"book_value_remaining"`

	// Transport cost tracking.
	TotalTransportCosts float64 `json:"total_transport_costs"`
	DailyTransportCost  float64 `json:"daily_transport_cost"`

	PrivateSalesLog []SaleRecord `json:"private_sales_log"`
}

// Store holds all agent ledgers for one run.
type Store struct {
	agents map[string]*AgentLedger
	names  []string // Registration order, for stable iteration
}

// NewStore creates an empty ledger store.
func NewStore() *Store {
	return &Store{agents: make(map[string]*AgentLedger)}
}

// Register creates an agent ledger with its starting position. A seller
// starting with inventory carries that stock as cost already incurred
// and as the book value to depreciate.
func (s *Store) Register(name string, inventory, costPerUnit int, startingCash float64) {
	initialValue := float64(inventory * costPerUnit)
	s.agents[name] = &AgentLedger{
		Inventory:             inventory,
		Cash:                  startingCash,
		CostPerUnit:           costPerUnit,
		TotalCostIncurred:     initialValue,
		InitialInventory:      inventory,
		InitialInventoryValue: initialValue,
		BookValueRemaining:    initialValue,
	}
	s.names = append(s.names, name)
}

// Get returns a copy of the named agent's ledger.
func (s *Store) Get(name string) (AgentLedger, bool) {
	l, ok := s.agents[name]
	if !ok {
		return AgentLedger{}, false
	}
	cp := *l
	cp.PrivateSalesLog = append([]SaleRecord(nil), l.PrivateSalesLog...)
	return cp, true
}

// Inventory returns the named agent's current inventory, or 0 for an
// unknown agent.
func (s *Store) Inventory(name string) int {
	if l, ok := s.agents[name]; ok {
		return l.Inventory
	}
	return 0
}

// Names returns agent names in registration order.
func (s *Store) Names() []string {
	return append([]string(nil), s.names...)
}

// Snapshot returns copies of all ledgers keyed by agent name.
func (s *Store) Snapshot() map[string]AgentLedger {
	out := make(map[string]AgentLedger, len(s.agents))
	for name := range s.agents {
		cp, _ := s.Get(name)
		out[name] = cp
	}
	return out
}

// ExecuteTrade moves quantity units from seller to buyer at unitPrice
// per unit, atomically: seller loses inventory and gains cash/revenue,
// buyer gains inventory and loses cash (booked as cost incurred), and
// the seller's private sales log grows by one entry. If the seller's
// inventory is short the trade fails and no field changes.
func (s *Store) ExecuteTrade(day int, buyer, seller string, unitPrice, quantity int) error {
	if unitPrice < 0 || quantity <= 0 {
		return fmt.Errorf("ledger: invalid trade terms price=%d quantity=%d", unitPrice, quantity)
	}
	b, ok := s.agents[buyer]
	if !ok {
		return fmt.Errorf("ledger: unknown buyer %q", buyer)
	}
	sl, ok := s.agents[seller]
	if !ok {
		return fmt.Errorf("ledger: unknown seller %q", seller)
	}
	if sl.Inventory < quantity {
		return fmt.Errorf("ledger: %s has %d units, cannot sell %d", seller, sl.Inventory, quantity)
	}

	value := float64(unitPrice * quantity)
	sl.Inventory -= quantity
	sl.Cash += value
	sl.TotalRevenue += value
	sl.PrivateSalesLog = append(sl.PrivateSalesLog, SaleRecord{
		Day: day, Buyer: buyer, Price: unitPrice, Quantity: quantity,
	})

	b.Inventory += quantity
	b.Cash -= value
	b.TotalCostIncurred += value
	return nil
}

// RecordSale books a retail sale to the daily shopper market: the
// seller loses inventory and gains cash/revenue. Retail buyers are
// shoppers, not ledger agents, so there is no buyer side here; demand
// depletion is handled by the shopper population.
func (s *Store) RecordSale(day int, seller string, unitPrice, quantity int) error {
	if unitPrice < 0 || quantity <= 0 {
		return fmt.Errorf("ledger: invalid sale terms price=%d quantity=%d", unitPrice, quantity)
	}
	sl, ok := s.agents[seller]
	if !ok {
		return fmt.Errorf("ledger: unknown seller %q", seller)
	}
	if sl.Inventory < quantity {
		return fmt.Errorf("ledger: %s has %d units, cannot sell %d", seller, sl.Inventory, quantity)
	}

	value := float64(unitPrice * quantity)
	sl.Inventory -= quantity
	sl.Cash += value
	sl.TotalRevenue += value
	sl.PrivateSalesLog = append(sl.PrivateSalesLog, SaleRecord{
		Day: day, Price: unitPrice, Quantity: quantity,
	})
	return nil
}

// ApplyTransportCost debits the daily cost of bringing units to market.
func (s *Store) ApplyTransportCost(name string, cost float64) error {
	l, ok := s.agents[name]
	if !ok {
		return fmt.Errorf("ledger: unknown agent %q", name)
	}
	if cost < 0 {
		return fmt.Errorf("ledger: negative transport cost %g", cost)
	}
	l.Cash -= cost
	l.TotalCostIncurred += cost
	l.TotalTransportCosts += cost
	l.DailyTransportCost = cost
	return nil
}

// Depreciate applies one day of linear depreciation to every agent
// holding an initial inventory investment: value/numDays per day, book
// value floored at zero.
func (s *Store) Depreciate(numDays int) {
	if numDays <= 0 {
		return
	}
	for _, l := range s.agents {
		if l.InitialInventoryValue <= 0 {
			continue
		}
		daily := l.InitialInventoryValue / float64(numDays)
		l.AccumulatedDepreciation += daily
		l.BookValueRemaining = l.InitialInventoryValue - l.AccumulatedDepreciation
		if l.BookValueRemaining < 0 {
			l.BookValueRemaining = 0
		}
	}
}
