package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/bazaar/internal/ledger"
	"github.com/talgya/bazaar/internal/market"
	"github.com/talgya/bazaar/internal/negotiation"
	"github.com/talgya/bazaar/internal/oracle"
	"github.com/talgya/bazaar/internal/shoppers"
)

// phase enumerates the day lifecycle states. Transitions are strictly
// forward; the only conditional edge is the negotiation-day guard.
type phase uint8

const (
	phasePoolSetup phase = iota
	phaseNegotiation
	phasePricing
	phaseTransport
	phaseClearing
	phaseDepreciation
	phaseDayEnd
)

// IsNegotiationDay reports whether negotiation runs on the given day:
// (day-1) mod cadence == 0, so a cadence of 20 fires on days 1, 21, 41,
// 61, 81 of a 100-day run.
func IsNegotiationDay(day, cadence int) bool {
	if cadence <= 0 {
		return false
	}
	return (day-1)%cadence == 0
}

// Params configure one orchestrator run.
type Params struct {
	NumDays            int
	NegotiationCadence int
	MaxRounds          int
	OracleTimeout      time.Duration

	Broker    string
	Suppliers []string

	TransportCostPerUnit int
	TransportEnabled     bool
}

// Orchestrator owns the run state and drives days strictly
// sequentially. Cancellation is honored at day boundaries only; a day
// in flight always completes.
type Orchestrator struct {
	params  Params
	rng     *rand.Rand
	decider oracle.Decider

	population  *shoppers.Population
	ledgers     *ledger.Store
	scratchpads *Scratchpads

	day         int
	marketLog   []market.Trade
	unmetLog    []market.UnmetDemand
	wholesale   []market.WholesaleTrade
	dailyPool   []shoppers.DemandUnit
	dailyOffers []market.Offer
	negotiation NegotiationState
	lastPrices  map[string]int

	// OnDayEnd, when set, checkpoints the day snapshot. A checkpoint
	// failure aborts the run; the day itself is already consistent.
	OnDayEnd func(snap DaySnapshot) error
}

// New creates an orchestrator over an initialized population and
// ledger store.
func New(p Params, pop *shoppers.Population, ledgers *ledger.Store, decider oracle.Decider, rng *rand.Rand) *Orchestrator {
	agents := append([]string{p.Broker}, p.Suppliers...)
	return &Orchestrator{
		params:      p,
		rng:         rng,
		decider:     decider,
		population:  pop,
		ledgers:     ledgers,
		scratchpads: NewScratchpads(agents),
		negotiation: NegotiationState{Status: "pending"},
		lastPrices:  make(map[string]int),
	}
}

// Ledgers exposes the ledger store for reporting.
func (o *Orchestrator) Ledgers() *ledger.Store { return o.ledgers }

// Population exposes the shopper population for reporting.
func (o *Orchestrator) Population() *shoppers.Population { return o.population }

// Scratchpads exposes the agent journals for reporting.
func (o *Orchestrator) Scratchpads() *Scratchpads { return o.scratchpads }

// Run executes every day of the simulation in order. On cancellation
// it stops at the next day boundary and returns ctx.Err().
func (o *Orchestrator) Run(ctx context.Context) error {
	for day := 1; day <= o.params.NumDays; day++ {
		if err := ctx.Err(); err != nil {
			slog.Info("run cancelled at day boundary", "day", day)
			return err
		}
		if err := o.runDay(ctx, day); err != nil {
			return fmt.Errorf("day %d: %w", day, err)
		}
	}
	return nil
}

// runDay advances the phase machine through one full day.
func (o *Orchestrator) runDay(ctx context.Context, day int) error {
	o.day = day
	ph := phasePoolSetup

	for ph != phaseDayEnd {
		switch ph {
		case phasePoolSetup:
			o.setupPool(day)
		case phaseNegotiation:
			o.runNegotiation(ctx, day)
		case phasePricing:
			o.collectOffers(ctx, day)
		case phaseTransport:
			o.applyTransportCosts(day)
		case phaseClearing:
			o.clearMarket(day)
		case phaseDepreciation:
			o.ledgers.Depreciate(o.params.NumDays)
		}
		ph = o.next(ph, day)
	}

	o.logDailyReport(day)

	if o.OnDayEnd != nil {
		if err := o.OnDayEnd(o.Snapshot()); err != nil {
			return fmt.Errorf("checkpoint: %w", err)
		}
	}
	return nil
}

// next is the phase transition table.
func (o *Orchestrator) next(ph phase, day int) phase {
	switch ph {
	case phasePoolSetup:
		if IsNegotiationDay(day, o.params.NegotiationCadence) {
			return phaseNegotiation
		}
		return phasePricing
	case phaseNegotiation:
		return phasePricing
	case phasePricing:
		if o.params.TransportEnabled {
			return phaseTransport
		}
		return phaseClearing
	case phaseTransport:
		return phaseClearing
	case phaseClearing:
		return phaseDepreciation
	default:
		return phaseDayEnd
	}
}

func (o *Orchestrator) setupPool(day int) {
	o.dailyPool = o.population.DailyPool(day, o.rng)
	slog.Debug("daily shopper pool built", "day", day, "demand_units", len(o.dailyPool))
}

func (o *Orchestrator) runNegotiation(ctx context.Context, day int) {
	stats := o.brokerStats()
	machine := &negotiation.Machine{
		Broker:      o.params.Broker,
		Suppliers:   o.params.Suppliers,
		MaxRounds:   o.params.MaxRounds,
		Timeout:     o.params.OracleTimeout,
		Decider:     o.decider,
		Ledgers:     o.ledgers,
		Journals:    o.scratchpads,
		NumDays:     o.params.NumDays,
		BrokerStats: &stats,
	}

	o.negotiation = NegotiationState{
		Status:  "negotiating",
		History: make(map[string][]oracle.NegotiationOffer, len(o.params.Suppliers)),
	}

	results := machine.RunCycle(ctx, day)
	for _, res := range results {
		o.negotiation.History[res.Supplier] = res.History
		if res.Trade != nil {
			o.wholesale = append(o.wholesale, *res.Trade)
		}
	}
	o.negotiation.Status = "complete"
	o.negotiation.Target = ""
}

// collectOffers asks every agent for its daily price and quantity. A
// failed or invalid decision falls back to the agent's previous price
// with zero quantity; offered quantity is always capped by inventory.
func (o *Orchestrator) collectOffers(ctx context.Context, day int) {
	agents := append([]string{o.params.Broker}, o.params.Suppliers...)
	o.dailyOffers = o.dailyOffers[:0]
	stats := o.brokerStats()

	for _, name := range agents {
		led, _ := o.ledgers.Get(name)
		pc := oracle.PricingContext{
			Day:        day,
			NumDays:    o.params.NumDays,
			Agent:      name,
			Ledger:     led,
			Metrics:    ledger.ComputeMetrics(led, o.params.NumDays, day),
			Scratchpad: o.scratchpads.Read(name),
		}
		if name == o.params.Broker {
			pc.Market = &stats
		}

		callCtx, cancel := context.WithTimeout(ctx, o.params.OracleTimeout)
		dec, err := o.decider.DecidePricing(callCtx, pc)
		cancel()

		if err == nil {
			err = oracle.ValidatePricing(dec)
		}
		if err != nil {
			slog.Warn("pricing decision failed, holding previous price with zero quantity",
				"day", day, "agent", name, "error", err)
			dec = oracle.PricingDecision{Price: o.lastPrices[name], Quantity: 0}
		} else {
			o.scratchpads.Append(name, fmt.Sprintf("\n[Day %d pricing]: %s", day, dec.ScratchpadUpdate))
		}

		qty := dec.Quantity
		if qty > led.Inventory {
			qty = led.Inventory
		}
		o.lastPrices[name] = dec.Price
		o.dailyOffers = append(o.dailyOffers, market.Offer{
			AgentName: name,
			Price:     dec.Price,
			Quantity:  qty,
		})
		slog.Debug("market offer set", "day", day, "agent", name, "price", dec.Price, "quantity", qty)
	}
}

// brokerStats derives the broker's private market intelligence from the
// orchestrator-owned logs. Suppliers never see this; their contexts are
// limited to their own ledger and sales history.
func (o *Orchestrator) brokerStats() market.Stats {
	return market.ComputeStats(o.marketLog, o.unmetLog)
}

func (o *Orchestrator) applyTransportCosts(day int) {
	for _, offer := range o.dailyOffers {
		cost := float64(offer.Quantity * o.params.TransportCostPerUnit)
		if err := o.ledgers.ApplyTransportCost(offer.AgentName, cost); err != nil {
			panic(fmt.Sprintf("engine: transport cost for %s: %v", offer.AgentName, err))
		}
	}
}

func (o *Orchestrator) clearMarket(day int) {
	inventories := make(map[string]int, len(o.dailyOffers))
	for _, offer := range o.dailyOffers {
		inventories[offer.AgentName] = o.ledgers.Inventory(offer.AgentName)
	}

	res := market.Clear(day, o.dailyPool, o.dailyOffers, inventories)

	// Credit sellers in offer order so ledger application is
	// deterministic.
	for _, offer := range o.dailyOffers {
		qty := res.SoldByAgent[offer.AgentName]
		if qty == 0 {
			continue
		}
		if err := o.ledgers.RecordSale(day, offer.AgentName, offer.Price, qty); err != nil {
			panic(fmt.Sprintf("engine: clearing oversold %s: %v", offer.AgentName, err))
		}
	}
	for shopperID, qty := range res.BoughtByShopper {
		o.population.Deplete(shopperID, qty)
	}

	o.marketLog = append(o.marketLog, res.Trades...)
	o.unmetLog = append(o.unmetLog, res.Unmet...)
}

func (o *Orchestrator) logDailyReport(day int) {
	trades, unmet := 0, 0
	revenue := 0
	for _, t := range o.marketLog {
		if t.Day == day {
			trades++
			revenue += t.Price
		}
	}
	for _, u := range o.unmetLog {
		if u.Day == day {
			unmet++
		}
	}

	slog.Info("daily report",
		"day", day,
		"demand_units", len(o.dailyPool),
		"trades", trades,
		"unmet", unmet,
		"revenue", humanize.Comma(int64(revenue)),
		"demand_remaining", o.population.TotalRemaining(),
	)
}

// Snapshot copies the current run state into a per-day record.
func (o *Orchestrator) Snapshot() DaySnapshot {
	return DaySnapshot{
		Day:               o.day,
		MarketLog:         append([]market.Trade(nil), o.marketLog...),
		UnmetDemandLog:    append([]market.UnmetDemand(nil), o.unmetLog...),
		WholesaleLog:      append([]market.WholesaleTrade(nil), o.wholesale...),
		DailyShopperPool:  append([]shoppers.DemandUnit(nil), o.dailyPool...),
		DailyMarketOffers: append([]market.Offer(nil), o.dailyOffers...),
		AgentLedgers:      o.ledgers.Snapshot(),
		Negotiation:       o.negotiation,
		AgentScratchpads:  o.scratchpads.All(),
	}
}
