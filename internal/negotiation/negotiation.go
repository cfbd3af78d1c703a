// Package negotiation drives the bounded bilateral bargaining cycle
// between the broker and each supplier in turn. The machine owns turn
// order and termination; every actual decision comes from the external
// decider and is validated at the boundary.
package negotiation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/bazaar/internal/ledger"
	"github.com/talgya/bazaar/internal/market"
	"github.com/talgya/bazaar/internal/oracle"
)

// Outcome is the terminal state of one bargaining session.
type Outcome string

const (
	OutcomeAccepted   Outcome = "accepted"
	OutcomeRejected   Outcome = "rejected"
	OutcomeRoundLimit Outcome = "round_limit"
)

// Journal is the append-only scratchpad surface the machine writes
// decision notes to. Text is stored verbatim with a day/context prefix
// and never parsed.
type Journal interface {
	Read(agent string) string
	Append(agent, text string)
}

// SessionResult captures one completed broker/supplier session.
type SessionResult struct {
	Supplier string
	Outcome  Outcome
	Rounds   int
	Trade    *market.WholesaleTrade // Set only on OutcomeAccepted
	History  []oracle.NegotiationOffer
}

// Machine runs one negotiation cycle: suppliers visited in fixed order,
// broker always opening, strict turn alternation, at most MaxRounds
// round-pairs per session.
type Machine struct {
	Broker    string
	Suppliers []string
	MaxRounds int
	Timeout   time.Duration

	Decider  oracle.Decider
	Ledgers  *ledger.Store
	Journals Journal
	NumDays  int

	// BrokerStats is the broker's private market intelligence for this
	// cycle. Only the broker's turns see it; supplier contexts carry nil.
	BrokerStats *market.Stats
}

// RunCycle visits every supplier once and returns the session results
// in visit order. Histories are fresh per session; nothing from a prior
// cycle carries over.
func (m *Machine) RunCycle(ctx context.Context, day int) []SessionResult {
	results := make([]SessionResult, 0, len(m.Suppliers))
	for _, supplier := range m.Suppliers {
		slog.Info("negotiation session starting", "day", day, "broker", m.Broker, "supplier", supplier)
		res := m.runSession(ctx, day, supplier)
		slog.Info("negotiation session finished",
			"day", day,
			"supplier", supplier,
			"outcome", res.Outcome,
			"rounds", res.Rounds,
		)
		results = append(results, res)
	}
	return results
}

func (m *Machine) runSession(ctx context.Context, day int, supplier string) SessionResult {
	res := SessionResult{Supplier: supplier, Outcome: OutcomeRoundLimit}

	for round := 1; round <= m.MaxRounds; round++ {
		res.Rounds = round

		// Broker turn.
		if done := m.turn(ctx, day, m.Broker, supplier, supplier, round, &res); done {
			return res
		}
		// Supplier turn.
		if done := m.turn(ctx, day, supplier, m.Broker, supplier, round, &res); done {
			return res
		}
	}

	if len(res.History) > 2*m.MaxRounds {
		panic(fmt.Sprintf("negotiation: history %d exceeds %d round pairs", len(res.History), m.MaxRounds))
	}
	slog.Info("negotiation round limit reached", "day", day, "supplier", supplier, "rounds", m.MaxRounds)
	return res
}

// turn executes one party's move. Returns true when the session ended.
func (m *Machine) turn(ctx context.Context, day int, actor, opponent, supplier string, round int, res *SessionResult) bool {
	dec, ok := m.decide(ctx, day, actor, opponent, round, res.History)
	if !ok {
		// Fail-safe: the invalid or failed decision becomes an
		// explicit reject on the record.
		res.History = append(res.History, oracle.NegotiationOffer{
			Agent:         actor,
			Action:        oracle.ActionReject,
			Justification: "no valid decision",
		})
		res.Outcome = OutcomeRejected
		return true
	}

	m.Journals.Append(actor, fmt.Sprintf("\n[Day %d, %s negotiation]: %s", day, opponent, dec.ScratchpadUpdate))

	offer := oracle.NegotiationOffer{
		Agent:         actor,
		Price:         dec.Price,
		Quantity:      dec.Quantity,
		Justification: dec.Justification,
		Action:        dec.Action,
	}

	switch dec.Action {
	case oracle.ActionAccept:
		// Terms come from the offer being accepted.
		if len(res.History) == 0 {
			slog.Warn("accept with no standing offer, treating as reject", "day", day, "agent", actor)
			offer.Action = oracle.ActionReject
			res.History = append(res.History, offer)
			res.Outcome = OutcomeRejected
			return true
		}
		terms := res.History[len(res.History)-1]
		res.History = append(res.History, offer)

		if err := m.Ledgers.ExecuteTrade(day, m.Broker, supplier, terms.Price, terms.Quantity); err != nil {
			slog.Warn("accepted trade failed, no deal", "day", day, "supplier", supplier, "error", err)
			res.Outcome = OutcomeRejected
			return true
		}
		slog.Info("wholesale trade executed",
			"day", day,
			"buyer", m.Broker,
			"seller", supplier,
			"price", terms.Price,
			"quantity", terms.Quantity,
		)
		res.Outcome = OutcomeAccepted
		res.Trade = &market.WholesaleTrade{
			Day:      day,
			Buyer:    m.Broker,
			Seller:   supplier,
			Price:    terms.Price,
			Quantity: terms.Quantity,
		}
		return true

	case oracle.ActionReject:
		res.History = append(res.History, offer)
		res.Outcome = OutcomeRejected
		return true

	default:
		res.History = append(res.History, offer)
		return false
	}
}

// decide calls the external decider with a bounded timeout and
// validates the result. A timeout, transport error, or invalid payload
// all collapse to "no decision"; there is no retry.
func (m *Machine) decide(ctx context.Context, day int, actor, opponent string, round int, history []oracle.NegotiationOffer) (oracle.NegotiationDecision, bool) {
	led, _ := m.Ledgers.Get(actor)
	nc := oracle.NegotiationContext{
		Day:        day,
		NumDays:    m.NumDays,
		Agent:      actor,
		Opponent:   opponent,
		Round:      round,
		Ledger:     led,
		Metrics:    ledger.ComputeMetrics(led, m.NumDays, day),
		Scratchpad: m.Journals.Read(actor),
		History:    append([]oracle.NegotiationOffer(nil), history...),
	}
	if actor == m.Broker {
		nc.Market = m.BrokerStats
	}

	callCtx, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()

	dec, err := m.Decider.DecideNegotiation(callCtx, nc)
	if err != nil {
		slog.Warn("negotiation decision failed", "day", day, "agent", actor, "round", round, "error", err)
		return oracle.NegotiationDecision{}, false
	}
	if err := oracle.ValidateNegotiation(dec); err != nil {
		slog.Warn("negotiation decision invalid", "day", day, "agent", actor, "round", round, "error", err)
		return oracle.NegotiationDecision{}, false
	}
	return dec, true
}
