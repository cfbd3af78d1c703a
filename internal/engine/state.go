// Package engine sequences the per-day market lifecycle: demand pool
// generation, the negotiation cycle, pricing, clearing, and accounting.
package engine

import (
	"github.com/talgya/bazaar/internal/ledger"
	"github.com/talgya/bazaar/internal/market"
	"github.com/talgya/bazaar/internal/negotiation"
	"github.com/talgya/bazaar/internal/oracle"
	"github.com/talgya/bazaar/internal/shoppers"
)

// Scratchpads holds each agent's append-only free-text journal. The
// engine appends supplied text and never interprets it.
type Scratchpads struct {
	pads map[string]string
}

// NewScratchpads creates empty journals for the given agents.
func NewScratchpads(agents []string) *Scratchpads {
	pads := make(map[string]string, len(agents))
	for _, a := range agents {
		pads[a] = ""
	}
	return &Scratchpads{pads: pads}
}

// Read returns the full journal text for an agent.
func (s *Scratchpads) Read(agent string) string {
	return s.pads[agent]
}

// Append adds text verbatim to an agent's journal.
func (s *Scratchpads) Append(agent, text string) {
	s.pads[agent] += text
}

// All returns a copy of every journal keyed by agent name.
func (s *Scratchpads) All() map[string]string {
	out := make(map[string]string, len(s.pads))
	for k, v := range s.pads {
		out[k] = v
	}
	return out
}

var _ negotiation.Journal = (*Scratchpads)(nil)

// NegotiationState is the negotiation slice of the day snapshot. It is
// reset at the start of each negotiation cycle.
type NegotiationState struct {
	Status  string                               `json:"negotiation_status"`
	Target  string                               `json:"current_negotiation_target,omitempty"`
	History map[string][]oracle.NegotiationOffer `json:"negotiation_history,omitempty"`
}

// DaySnapshot is the per-day record handed to the checkpoint hook. The
// market and unmet-demand logs grow strictly across the run; the pool
// and offers are replaced each day.
type DaySnapshot struct {
	Day int `json:"day"`

	MarketLog      []market.Trade          `json:"market_log"`
	UnmetDemandLog []market.UnmetDemand    `json:"unmet_demand_log"`
	WholesaleLog   []market.WholesaleTrade `json:"wholesale_trades_log"`

	DailyShopperPool  []shoppers.DemandUnit `json:"daily_shopper_pool"`
	DailyMarketOffers []market.Offer        `json:"daily_market_offers"`

	AgentLedgers     map[string]ledger.AgentLedger `json:"agent_ledgers"`
	Negotiation      NegotiationState              `json:"negotiation"`
	AgentScratchpads map[string]string             `json:"agent_scratchpads"`
}
