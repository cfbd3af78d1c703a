package ledger

// Metrics is the derived business dashboard for one agent: the private
// analytics block handed to the decision oracle alongside the raw
// ledger.
type Metrics struct {
	InitialInvestment float64 `json:"initial_investment"`
	Revenue           float64 `json:"revenue"`
	GrossProfit       float64 `json:"gross_profit"`
	NetPosition       float64 `json:"net_position"`
	CostRecoveryRate  float64 `json:"cost_recovery_rate"`
	ROI               float64 `json:"roi"`
	InventoryTurnover float64 `json:"inventory_turnover"`

	UnitsSold          int     `json:"units_sold"`
	InventoryRemaining int     `json:"inventory_remaining"`
	BookValue          float64 `json:"book_value"`
	AccumulatedDep     float64 `json:"accumulated_depreciation"`
	DailyDepreciation  float64 `json:"daily_depreciation"`

	DaysToBreakeven float64 `json:"days_to_breakeven"`
}

// noBreakeven is reported when the current revenue rate can never
// recover the initial investment.
const noBreakeven = 999

// ComputeMetrics derives dashboard metrics from a ledger snapshot.
func ComputeMetrics(l AgentLedger, numDays, currentDay int) Metrics {
	unitsSold := 0
	for _, rec := range l.PrivateSalesLog {
		unitsSold += rec.Quantity
	}

	m := Metrics{
		InitialInvestment:  l.InitialInventoryValue,
		Revenue:            l.TotalRevenue,
		NetPosition:        l.TotalRevenue - l.TotalCostIncurred,
		UnitsSold:          unitsSold,
		InventoryRemaining: l.Inventory,
		BookValue:          l.BookValueRemaining,
		AccumulatedDep:     l.AccumulatedDepreciation,
		DaysToBreakeven:    noBreakeven,
	}

	if m.UnitsSold > 0 {
		cogs := float64(m.UnitsSold * l.CostPerUnit)
		m.GrossProfit = l.TotalRevenue - cogs
	}
	if l.InitialInventoryValue > 0 {
		m.CostRecoveryRate = l.TotalRevenue / l.InitialInventoryValue
		m.ROI = m.NetPosition / l.InitialInventoryValue
	}
	if l.InitialInventory > 0 {
		m.InventoryTurnover = float64(m.UnitsSold) / float64(l.InitialInventory)
	}
	if numDays > 0 {
		m.DailyDepreciation = l.InitialInventoryValue / float64(numDays)
	}
	if currentDay > 0 {
		dailyRate := l.TotalRevenue / float64(currentDay)
		if dailyRate > 0 {
			m.DaysToBreakeven = (l.InitialInventoryValue - l.TotalRevenue) / dailyRate
		}
	}
	return m
}
