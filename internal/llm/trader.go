package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/talgya/bazaar/internal/ledger"
	"github.com/talgya/bazaar/internal/market"
	"github.com/talgya/bazaar/internal/oracle"
)

// Trader adapts the Haiku client to the engine's decision interfaces.
type Trader struct {
	client *Client
}

// NewTrader wraps a client. A nil client yields a Trader whose calls
// always fail, which the engine converts to its fail-safe defaults.
func NewTrader(client *Client) *Trader {
	return &Trader{client: client}
}

var _ oracle.Decider = (*Trader)(nil)

// DecideNegotiation produces one negotiation turn for the acting party.
func (t *Trader) DecideNegotiation(ctx context.Context, nc oracle.NegotiationContext) (oracle.NegotiationDecision, error) {
	if !t.client.Enabled() {
		return oracle.NegotiationDecision{}, fmt.Errorf("LLM client not configured")
	}

	system := buildNegotiationSystemPrompt(nc)
	user := buildNegotiationUserPrompt(nc)

	resp, err := t.client.Complete(ctx, system, user, 600)
	if err != nil {
		return oracle.NegotiationDecision{}, fmt.Errorf("negotiation decision: %w", err)
	}

	var dec oracle.NegotiationDecision
	if err := parseJSONObject(resp, &dec); err != nil {
		return oracle.NegotiationDecision{}, fmt.Errorf("negotiation decision: %w", err)
	}
	return dec, nil
}

// DecidePricing produces one daily market offer for the agent.
func (t *Trader) DecidePricing(ctx context.Context, pc oracle.PricingContext) (oracle.PricingDecision, error) {
	if !t.client.Enabled() {
		return oracle.PricingDecision{}, fmt.Errorf("LLM client not configured")
	}

	system := buildPricingSystemPrompt(pc)
	user := buildPricingUserPrompt(pc)

	resp, err := t.client.Complete(ctx, system, user, 500)
	if err != nil {
		return oracle.PricingDecision{}, fmt.Errorf("pricing decision: %w", err)
	}

	var dec oracle.PricingDecision
	if err := parseJSONObject(resp, &dec); err != nil {
		return oracle.PricingDecision{}, fmt.Errorf("pricing decision: %w", err)
	}
	return dec, nil
}

func buildNegotiationSystemPrompt(nc oracle.NegotiationContext) string {
	role := "You are negotiating to BUY wholesale inventory from " + nc.Opponent + "."
	if nc.Agent != "Wholesaler" {
		role = nc.Opponent + " wants to BUY inventory from you. They have market data you do not."
	}
	return fmt.Sprintf(
		`You are %s, a trading agent in a multi-day commodity market. %s

Respond ONLY with a single JSON object:
- "scratchpad_update": concise private notes to add — only new, actionable insights
- "price": integer price per unit
- "quantity": integer number of units
- "justification": what you tell the other party about why these terms are fair
- "action": one of "offer", "counteroffer", "accept", "reject"

"accept" takes the other party's last terms as-is. "reject" ends the negotiation with no deal.`,
		nc.Agent, role,
	)
}

func buildNegotiationUserPrompt(nc oracle.NegotiationContext) string {
	var b strings.Builder

	b.WriteString(businessDashboard(nc.Day, nc.NumDays, nc.Metrics))
	b.WriteString(marketIntelligence(nc.Market))
	b.WriteString(recentSales(nc.Ledger.PrivateSalesLog))
	fmt.Fprintf(&b, "NEGOTIATION CONTEXT:\n- Opponent: %s\n- Round: %d of 10 (after 10 rounds the negotiation automatically fails)\n\n",
		nc.Opponent, nc.Round)

	if len(nc.History) > 0 {
		historyJSON, _ := json.MarshalIndent(nc.History, "", "  ")
		fmt.Fprintf(&b, "Negotiation history so far:\n%s\n\n", historyJSON)
	} else {
		b.WriteString("You open the negotiation.\n\n")
	}

	if nc.Scratchpad != "" {
		fmt.Fprintf(&b, "Your private scratchpad:\n%s\n\n", nc.Scratchpad)
	}

	b.WriteString("Decide your move for this round. Respond with a single JSON object.")
	return b.String()
}

func buildPricingSystemPrompt(pc oracle.PricingContext) string {
	return fmt.Sprintf(
		`You are %s, a trading agent setting your daily retail price and quantity in a multi-day commodity market. Shoppers buy from the cheapest acceptable seller; unsold inventory is worthless when the run ends.

Respond ONLY with a single JSON object:
- "scratchpad_update": concise private notes to add — only new, actionable insights
- "price": integer price per unit for today
- "quantity": integer maximum units to offer today (you may hold stock back)
- "reasoning": brief explanation of your strategy`,
		pc.Agent,
	)
}

func buildPricingUserPrompt(pc oracle.PricingContext) string {
	var b strings.Builder

	b.WriteString(businessDashboard(pc.Day, pc.NumDays, pc.Metrics))
	b.WriteString(marketIntelligence(pc.Market))
	b.WriteString(recentSales(pc.Ledger.PrivateSalesLog))

	daysLeft := pc.NumDays - pc.Day
	if daysLeft < 1 {
		daysLeft = 1
	}
	fmt.Fprintf(&b, "PRICING CONSIDERATIONS:\n- Required daily sales rate to clear stock: %.1f units/day\n- Shoppers' willingness to pay is roughly $80-$150 and rises with their urgency\n\n",
		float64(pc.Metrics.InventoryRemaining)/float64(daysLeft))

	if pc.Scratchpad != "" {
		fmt.Fprintf(&b, "Your private scratchpad:\n%s\n\n", pc.Scratchpad)
	}

	b.WriteString("Set today's price and quantity. Respond with a single JSON object.")
	return b.String()
}

// marketIntelligence renders the broker-only demand-side block. Empty
// for suppliers, whose information stops at their own ledger.
func marketIntelligence(s *market.Stats) string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("=== MARKET INTELLIGENCE (private to you) ===\n")
	if s.TradeCount == 0 {
		b.WriteString("- No trades observed yet\n")
	} else {
		fmt.Fprintf(&b, "- Recent trades: %d | Avg price: $%.1f (range $%d-$%d) | Trend: %s\n",
			s.TradeCount, s.AvgPrice, s.MinPrice, s.MaxPrice, s.Trend)
	}
	fmt.Fprintf(&b, "- Recent unmet demand: %d units | Market: %s\n\n", s.UnmetUnits, s.Tightness)
	return b.String()
}

// recentSales summarizes the agent's own last 20 sales, the only
// transaction history every agent is entitled to.
func recentSales(log []ledger.SaleRecord) string {
	if len(log) > 20 {
		log = log[len(log)-20:]
	}
	if len(log) == 0 {
		return "YOUR RECENT SALES: none yet\n\n"
	}
	units, total := 0, 0
	for _, rec := range log {
		units += rec.Quantity
		total += rec.Price * rec.Quantity
	}
	return fmt.Sprintf("YOUR RECENT SALES: %d sales, %d units, avg price $%.1f\n\n",
		len(log), units, float64(total)/float64(units))
}

// businessDashboard renders the private analytics block shared by both
// prompt kinds.
func businessDashboard(day, numDays int, m ledger.Metrics) string {
	var b strings.Builder
	b.WriteString("=== BUSINESS DASHBOARD ===\n")
	fmt.Fprintf(&b, "- Initial Investment: $%s\n", humanize.Commaf(m.InitialInvestment))
	fmt.Fprintf(&b, "- Revenue: $%s | Net Position: $%s | Gross Profit: $%s\n",
		humanize.Commaf(m.Revenue), humanize.Commaf(m.NetPosition), humanize.Commaf(m.GrossProfit))
	fmt.Fprintf(&b, "- ROI: %.1f%% | Cost Recovery: %.1f%% | Inventory Turnover: %.1f%%\n",
		m.ROI*100, m.CostRecoveryRate*100, m.InventoryTurnover*100)
	fmt.Fprintf(&b, "- Inventory: %d units (%d sold so far)\n", m.InventoryRemaining, m.UnitsSold)
	fmt.Fprintf(&b, "- Book Value: $%s | Daily Depreciation: $%s | Est. Days to Breakeven: %.0f\n",
		humanize.Commaf(m.BookValue), humanize.Commaf(m.DailyDepreciation), m.DaysToBreakeven)
	fmt.Fprintf(&b, "\nTIME:\n- Day %d of %d (%d days remaining; all unsold inventory expires at day %d)\n\n",
		day, numDays, numDays-day, numDays)
	return b.String()
}
