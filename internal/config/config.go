// Package config provides the run configuration surface: supplier
// cost/inventory ranges, shopper population composition, run length,
// and negotiation cadence. Values are read once at startup and
// validated before anything runs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/talgya/bazaar/internal/shoppers"
)

// SupplierParams are the starting ranges for one supplier agent.
type SupplierParams struct {
	Name         string
	CostMin      int
	CostMax      int
	InventoryMin int
	InventoryMax int
	StartingCash float64
}

// Config holds every knob for a simulation run.
type Config struct {
	NumDays            int
	NegotiationCadence int // Negotiation fires on days where (day-1) mod cadence == 0
	MaxRounds          int
	OracleTimeout      time.Duration

	BrokerName         string
	BrokerStartingCash float64
	Suppliers          []SupplierParams

	TotalShoppers int
	LongTermRatio float64

	// Long-term cohort.
	LTDemandMin, LTDemandMax       int
	LTWindowMin, LTWindowMax       int
	LTBasePriceMin, LTBasePriceMax float64
	LTMaxPriceMin, LTMaxPriceMax   float64
	LTUrgencyMin, LTUrgencyMax     float64

	// Short-term cohort.
	STDemandMin, STDemandMax       int
	STWindowMin, STWindowMax       int
	STBasePriceMin, STBasePriceMax float64
	STMaxPriceMin, STMaxPriceMax   float64
	STUrgencyMin, STUrgencyMax     float64

	TransportCostPerUnit int
	TransportEnabled     bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func floatenv(key string, def float64) float64 {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// Default returns the baseline 100-day configuration: a low-cost
// high-volume supplier, a high-cost boutique supplier, and 400 shoppers
// split 70/30 between patient and urgent cohorts.
func Default() Config {
	return Config{
		NumDays:            100,
		NegotiationCadence: 20,
		MaxRounds:          10,
		OracleTimeout:      60 * time.Second,

		BrokerName:         "Wholesaler",
		BrokerStartingCash: 50000,
		Suppliers: []SupplierParams{
			{Name: "Seller_1", CostMin: 58, CostMax: 62, InventoryMin: 7800, InventoryMax: 8200},
			{Name: "Seller_2", CostMin: 68, CostMax: 72, InventoryMin: 1900, InventoryMax: 2100},
		},

		TotalShoppers: 400,
		LongTermRatio: 0.7,

		LTDemandMin: 20, LTDemandMax: 50,
		LTWindowMin: 50, LTWindowMax: 90,
		LTBasePriceMin: 80, LTBasePriceMax: 100,
		LTMaxPriceMin: 110, LTMaxPriceMax: 130,
		LTUrgencyMin: 0.7, LTUrgencyMax: 1.2,

		STDemandMin: 30, STDemandMax: 50,
		STWindowMin: 10, STWindowMax: 20,
		STBasePriceMin: 100, STBasePriceMax: 120,
		STMaxPriceMin: 120, STMaxPriceMax: 150,
		STUrgencyMin: 1.5, STUrgencyMax: 2.5,

		TransportCostPerUnit: 1,
		TransportEnabled:     true,
	}
}

// Load collects configuration from environment variables over the
// defaults.
func Load() Config {
	c := Default()
	c.NumDays = atoienv("BAZAAR_NUM_DAYS", c.NumDays)
	c.NegotiationCadence = atoienv("BAZAAR_NEGOTIATION_CADENCE", c.NegotiationCadence)
	c.MaxRounds = atoienv("BAZAAR_MAX_ROUNDS", c.MaxRounds)
	c.OracleTimeout = time.Duration(atoienv("BAZAAR_ORACLE_TIMEOUT_SEC", int(c.OracleTimeout/time.Second))) * time.Second
	c.TotalShoppers = atoienv("BAZAAR_TOTAL_SHOPPERS", c.TotalShoppers)
	c.LongTermRatio = floatenv("BAZAAR_LONG_TERM_RATIO", c.LongTermRatio)
	c.BrokerStartingCash = floatenv("BAZAAR_BROKER_CASH", c.BrokerStartingCash)
	c.TransportCostPerUnit = atoienv("BAZAAR_TRANSPORT_COST", c.TransportCostPerUnit)
	c.TransportEnabled = getenv("BAZAAR_TRANSPORT_ENABLED", "1") != "0"
	return c
}

// PopulationParams maps the shopper section of the config onto the
// population generator's parameter struct.
func (c Config) PopulationParams() shoppers.PopulationParams {
	return shoppers.PopulationParams{
		TotalShoppers: c.TotalShoppers,
		LongTermRatio: c.LongTermRatio,
		NumDays:       c.NumDays,
		LongTerm: shoppers.CohortParams{
			DemandMin: c.LTDemandMin, DemandMax: c.LTDemandMax,
			WindowMin: c.LTWindowMin, WindowMax: c.LTWindowMax,
			BasePriceMin: c.LTBasePriceMin, BasePriceMax: c.LTBasePriceMax,
			MaxPriceMin: c.LTMaxPriceMin, MaxPriceMax: c.LTMaxPriceMax,
			UrgencyMin: c.LTUrgencyMin, UrgencyMax: c.LTUrgencyMax,
		},
		ShortTerm: shoppers.CohortParams{
			DemandMin: c.STDemandMin, DemandMax: c.STDemandMax,
			WindowMin: c.STWindowMin, WindowMax: c.STWindowMax,
			BasePriceMin: c.STBasePriceMin, BasePriceMax: c.STBasePriceMax,
			MaxPriceMin: c.STMaxPriceMin, MaxPriceMax: c.STMaxPriceMax,
			UrgencyMin: c.STUrgencyMin, UrgencyMax: c.STUrgencyMax,
		},
	}
}

// Validate reports configuration errors before the run starts. Runs
// never begin with a config that could only fail mid-simulation.
func (c Config) Validate() error {
	if c.NumDays < 1 {
		return fmt.Errorf("config: num days must be at least 1, got %d", c.NumDays)
	}
	if c.NegotiationCadence < 1 {
		return fmt.Errorf("config: negotiation cadence must be positive, got %d", c.NegotiationCadence)
	}
	if c.MaxRounds < 1 {
		return fmt.Errorf("config: max rounds must be positive, got %d", c.MaxRounds)
	}
	if c.OracleTimeout <= 0 {
		return fmt.Errorf("config: oracle timeout must be positive, got %s", c.OracleTimeout)
	}
	if c.BrokerName == "" {
		return fmt.Errorf("config: broker name is empty")
	}
	if len(c.Suppliers) == 0 {
		return fmt.Errorf("config: at least one supplier required")
	}
	seen := map[string]bool{c.BrokerName: true}
	for _, s := range c.Suppliers {
		if s.Name == "" {
			return fmt.Errorf("config: supplier with empty name")
		}
		if seen[s.Name] {
			return fmt.Errorf("config: duplicate agent name %q", s.Name)
		}
		seen[s.Name] = true
		if s.CostMin > s.CostMax || s.CostMin < 0 {
			return fmt.Errorf("config: %s cost range invalid: [%d, %d]", s.Name, s.CostMin, s.CostMax)
		}
		if s.InventoryMin > s.InventoryMax || s.InventoryMin < 0 {
			return fmt.Errorf("config: %s inventory range invalid: [%d, %d]", s.Name, s.InventoryMin, s.InventoryMax)
		}
	}
	if c.TransportCostPerUnit < 0 {
		return fmt.Errorf("config: transport cost must be non-negative, got %d", c.TransportCostPerUnit)
	}
	return nil
}
