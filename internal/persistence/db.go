// Package persistence provides SQLite-based checkpoint storage for
// simulation runs. Snapshots are written at day boundaries only; a day
// in flight is never persisted.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/bazaar/internal/engine"
)

// DB wraps a SQLite connection for run checkpoint storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		num_days INTEGER NOT NULL,
		config_json TEXT NOT NULL,
		started_at TEXT NOT NULL DEFAULT (datetime('now')),
		finished_at TEXT
	);

	CREATE TABLE IF NOT EXISTS day_snapshots (
		run_id TEXT NOT NULL,
		day INTEGER NOT NULL,
		offers_json TEXT NOT NULL,
		ledgers_json TEXT NOT NULL,
		negotiation_json TEXT NOT NULL,
		scratchpads_json TEXT NOT NULL,
		PRIMARY KEY (run_id, day)
	);

	CREATE TABLE IF NOT EXISTS market_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		day INTEGER NOT NULL,
		shopper_id TEXT NOT NULL,
		seller TEXT NOT NULL,
		price INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS unmet_demand_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		day INTEGER NOT NULL,
		shopper_id TEXT NOT NULL,
		willing_to_pay INTEGER NOT NULL,
		ask_price INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS wholesale_trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		day INTEGER NOT NULL,
		buyer TEXT NOT NULL,
		seller TEXT NOT NULL,
		price INTEGER NOT NULL,
		quantity INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_market_log_run_day ON market_log(run_id, day);
	CREATE INDEX IF NOT EXISTS idx_unmet_log_run_day ON unmet_demand_log(run_id, day);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// CreateRun registers a new run and returns its ID.
func (db *DB) CreateRun(seed int64, numDays int, cfg any) (string, error) {
	id := uuid.NewString()
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	_, err = db.conn.Exec(
		"INSERT INTO runs (id, seed, num_days, config_json) VALUES (?, ?, ?, ?)",
		id, seed, numDays, string(cfgJSON),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// FinishRun marks a run complete.
func (db *DB) FinishRun(runID string) error {
	_, err := db.conn.Exec(
		"UPDATE runs SET finished_at = datetime('now') WHERE id = ?", runID,
	)
	return err
}

// SaveDay checkpoints one day snapshot: the snapshot row plus the day's
// new log entries. Log tables are append-only; earlier days are never
// rewritten.
func (db *DB) SaveDay(runID string, snap engine.DaySnapshot) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	offersJSON, _ := json.Marshal(snap.DailyMarketOffers)
	ledgersJSON, _ := json.Marshal(snap.AgentLedgers)
	negotiationJSON, _ := json.Marshal(snap.Negotiation)
	scratchpadsJSON, _ := json.Marshal(snap.AgentScratchpads)

	_, err = tx.Exec(`INSERT OR REPLACE INTO day_snapshots
		(run_id, day, offers_json, ledgers_json, negotiation_json, scratchpads_json)
		VALUES (?, ?, ?, ?, ?, ?)`,
		runID, snap.Day, string(offersJSON), string(ledgersJSON),
		string(negotiationJSON), string(scratchpadsJSON),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot day %d: %w", snap.Day, err)
	}

	for _, t := range snap.MarketLog {
		if t.Day != snap.Day {
			continue
		}
		_, err := tx.Exec(
			"INSERT INTO market_log (run_id, day, shopper_id, seller, price) VALUES (?, ?, ?, ?, ?)",
			runID, t.Day, t.ShopperID, t.Seller, t.Price,
		)
		if err != nil {
			return fmt.Errorf("insert trade: %w", err)
		}
	}

	for _, u := range snap.UnmetDemandLog {
		if u.Day != snap.Day {
			continue
		}
		_, err := tx.Exec(
			"INSERT INTO unmet_demand_log (run_id, day, shopper_id, willing_to_pay, ask_price) VALUES (?, ?, ?, ?, ?)",
			runID, u.Day, u.ShopperID, u.WillingToPay, u.AskPrice,
		)
		if err != nil {
			return fmt.Errorf("insert unmet demand: %w", err)
		}
	}

	for _, w := range snap.WholesaleLog {
		if w.Day != snap.Day {
			continue
		}
		_, err := tx.Exec(
			"INSERT INTO wholesale_trades (run_id, day, buyer, seller, price, quantity) VALUES (?, ?, ?, ?, ?, ?)",
			runID, w.Day, w.Buyer, w.Seller, w.Price, w.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert wholesale trade: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Debug("day checkpoint saved", "run", runID, "day", snap.Day)
	return nil
}

// TradeCount returns the total number of retail trades stored for a run.
func (db *DB) TradeCount(runID string) (int, error) {
	var n int
	err := db.conn.Get(&n, "SELECT COUNT(*) FROM market_log WHERE run_id = ?", runID)
	return n, err
}
