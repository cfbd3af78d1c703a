// Command bazaar runs the multi-day commodity market simulation.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/talgya/bazaar/internal/config"
	"github.com/talgya/bazaar/internal/engine"
	"github.com/talgya/bazaar/internal/entropy"
	"github.com/talgya/bazaar/internal/ledger"
	"github.com/talgya/bazaar/internal/llm"
	"github.com/talgya/bazaar/internal/persistence"
	"github.com/talgya/bazaar/internal/shoppers"
)

func main() {
	app := &cli.App{
		Name:  "bazaar",
		Usage: "run a multi-day commodity market simulation",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "run seed (0 draws a fresh seed)",
			},
			&cli.IntFlag{
				Name:  "days",
				Usage: "run length in days (overrides config)",
			},
			&cli.IntFlag{
				Name:  "cadence",
				Usage: "negotiation cadence in days (overrides config)",
			},
			&cli.StringFlag{
				Name:  "db",
				Value: "data/bazaar.db",
				Usage: "checkpoint database path",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	level := slog.LevelInfo
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if days := c.Int("days"); days > 0 {
		cfg.NumDays = days
	}
	if cadence := c.Int("cadence"); cadence > 0 {
		cfg.NegotiationCadence = cadence
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	seed := c.Int64("seed")
	if seed == 0 {
		seed = entropy.NewClient(os.Getenv("RANDOM_ORG_KEY")).Seed()
	}
	rng := rand.New(rand.NewSource(seed))
	slog.Info("bazaar simulation", "seed", seed, "days", cfg.NumDays, "cadence", cfg.NegotiationCadence)

	// ── Population and ledgers ───────────────────────────────────────
	pop, err := shoppers.Generate(cfg.PopulationParams(), rng)
	if err != nil {
		return fmt.Errorf("generate population: %w", err)
	}

	ledgers := ledger.NewStore()
	ledgers.Register(cfg.BrokerName, 0, 0, cfg.BrokerStartingCash)
	supplierNames := make([]string, 0, len(cfg.Suppliers))
	for _, s := range cfg.Suppliers {
		cost := s.CostMin + rng.Intn(s.CostMax-s.CostMin+1)
		inv := s.InventoryMin + rng.Intn(s.InventoryMax-s.InventoryMin+1)
		ledgers.Register(s.Name, inv, cost, s.StartingCash)
		supplierNames = append(supplierNames, s.Name)
		slog.Info("supplier initialized", "name", s.Name, "cost_per_unit", cost, "inventory", inv)
	}
	slog.Info("population ready",
		"shoppers", len(pop.Shoppers()),
		"total_demand", pop.TotalRemaining(),
	)

	// ── Checkpoint store ─────────────────────────────────────────────
	if dir := filepath.Dir(c.String("db")); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create db directory: %w", err)
		}
	}
	db, err := persistence.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	runID, err := db.CreateRun(seed, cfg.NumDays, cfg)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	slog.Info("run registered", "run_id", runID, "db", c.String("db"))

	// ── Decision oracle ──────────────────────────────────────────────
	llmClient := llm.NewClient(os.Getenv("ANTHROPIC_API_KEY"))
	if llmClient.Enabled() {
		slog.Info("LLM decisions enabled (Haiku)")
	} else {
		slog.Warn("ANTHROPIC_API_KEY not set — agents fall back to hold-price/zero-quantity defaults")
	}
	trader := llm.NewTrader(llmClient)

	// ── Orchestrator ─────────────────────────────────────────────────
	orch := engine.New(engine.Params{
		NumDays:              cfg.NumDays,
		NegotiationCadence:   cfg.NegotiationCadence,
		MaxRounds:            cfg.MaxRounds,
		OracleTimeout:        cfg.OracleTimeout,
		Broker:               cfg.BrokerName,
		Suppliers:            supplierNames,
		TransportCostPerUnit: cfg.TransportCostPerUnit,
		TransportEnabled:     cfg.TransportEnabled,
	}, pop, ledgers, trader, rng)

	orch.OnDayEnd = func(snap engine.DaySnapshot) error {
		return db.SaveDay(runID, snap)
	}

	// Cancellation lands at the next day boundary.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := orch.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	if err := db.FinishRun(runID); err != nil {
		slog.Error("finish run failed", "error", err)
	}

	// ── Summary ──────────────────────────────────────────────────────
	for _, name := range ledgers.Names() {
		led, _ := ledgers.Get(name)
		m := ledger.ComputeMetrics(led, cfg.NumDays, cfg.NumDays)
		slog.Info("final position",
			"agent", name,
			"inventory", led.Inventory,
			"cash", humanize.CommafWithDigits(led.Cash, 2),
			"revenue", humanize.CommafWithDigits(led.TotalRevenue, 2),
			"roi", fmt.Sprintf("%.1f%%", m.ROI*100),
		)
	}
	slog.Info("demand remaining", "units", pop.TotalRemaining())

	if runErr != nil {
		slog.Info("run cancelled, state checkpointed at last completed day")
	}
	return nil
}
