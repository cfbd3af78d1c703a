// Package oracle defines the decision boundary between the simulation
// core and the external agents that choose prices and negotiation
// moves. The core treats a decider as an opaque call: it validates the
// numeric and enum fields of whatever comes back and converts anything
// invalid into a deterministic fail-safe default.
package oracle

import (
	"context"
	"fmt"

	"github.com/talgya/bazaar/internal/ledger"
	"github.com/talgya/bazaar/internal/market"
)

// Action tags a negotiation turn.
type Action string

const (
	ActionOffer        Action = "offer"
	ActionCounteroffer Action = "counteroffer"
	ActionAccept       Action = "accept"
	ActionReject       Action = "reject"
)

func (a Action) valid() bool {
	switch a {
	case ActionOffer, ActionCounteroffer, ActionAccept, ActionReject:
		return true
	}
	return false
}

// NegotiationOffer is one recorded turn in a bargaining exchange.
type NegotiationOffer struct {
	Agent         string `json:"agent"`
	Price         int    `json:"price"`
	Quantity      int    `json:"quantity"`
	Justification string `json:"justification"`
	Action        Action `json:"action"`
}

// NegotiationDecision is the structured result of one negotiation turn.
type NegotiationDecision struct {
	ScratchpadUpdate string `json:"scratchpad_update"`
	Price            int    `json:"price"`
	Quantity         int    `json:"quantity"`
	Justification    string `json:"justification"`
	Action           Action `json:"action"`
}

// PricingDecision is the structured result of one daily pricing call.
type PricingDecision struct {
	ScratchpadUpdate string `json:"scratchpad_update"`
	Price            int    `json:"price"`
	Quantity         int    `json:"quantity"`
	Reasoning        string `json:"reasoning"`
}

// NegotiationContext is the private context handed to a decider for one
// negotiation turn.
type NegotiationContext struct {
	Day      int
	NumDays  int
	Agent    string // Acting party
	Opponent string // The party across the table
	Round    int    // 1-based round pair

	Ledger     ledger.AgentLedger
	Metrics    ledger.Metrics
	Scratchpad string
	History    []NegotiationOffer

	// Market analytics are asymmetric information: the broker sees the
	// public market and unmet-demand logs, suppliers do not. Nil for
	// suppliers.
	Market *market.Stats
}

// PricingContext is the private context for one daily pricing call.
type PricingContext struct {
	Day     int
	NumDays int
	Agent   string

	Ledger     ledger.AgentLedger
	Metrics    ledger.Metrics
	Scratchpad string

	// Broker only; nil for suppliers.
	Market *market.Stats
}

// Decider converts context into structured decisions. Calls may block
// on external services; implementations must honor ctx cancellation.
type Decider interface {
	DecideNegotiation(ctx context.Context, nc NegotiationContext) (NegotiationDecision, error)
	DecidePricing(ctx context.Context, pc PricingContext) (PricingDecision, error)
}

// ValidateNegotiation checks the numeric and enum fields of a raw
// negotiation decision. A validation failure means the turn becomes an
// implicit reject; it is never propagated as an error upward.
func ValidateNegotiation(d NegotiationDecision) error {
	if !d.Action.valid() {
		return fmt.Errorf("oracle: invalid negotiation action %q", d.Action)
	}
	if d.Price < 0 {
		return fmt.Errorf("oracle: negative price %d", d.Price)
	}
	if d.Quantity < 0 {
		return fmt.Errorf("oracle: negative quantity %d", d.Quantity)
	}
	return nil
}

// ValidatePricing checks the numeric fields of a raw pricing decision.
func ValidatePricing(d PricingDecision) error {
	if d.Price < 0 {
		return fmt.Errorf("oracle: negative price %d", d.Price)
	}
	if d.Quantity < 0 {
		return fmt.Errorf("oracle: negative quantity %d", d.Quantity)
	}
	return nil
}
