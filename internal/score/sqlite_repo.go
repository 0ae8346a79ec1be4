package score

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"pdoom/internal/game"
)

const DBFileName = "runs.db"

// InitSQLite opens the run-history database at dbPath and creates its schema.
func InitSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if err := createSchemas(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}
	return db, nil
}

func createSchemas(db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			player TEXT NOT NULL,
			seed TEXT NOT NULL,
			turns_survived INTEGER NOT NULL,
			final_doom INTEGER NOT NULL,
			money INTEGER NOT NULL,
			reputation INTEGER NOT NULL,
			staff INTEGER NOT NULL,
			papers INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			won INTEGER NOT NULL DEFAULT 0,
			played_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_seed ON runs(seed);`,
	}
	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

// SQLiteRepo is the append-only history of every finished run.
type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(dbPath string) (*SQLiteRepo, error) {
	db, err := InitSQLite(dbPath)
	if err != nil {
		return nil, err
	}
	return &SQLiteRepo{db: db}, nil
}

func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepo) Add(ctx context.Context, e Entry) error {
	query := `
		INSERT INTO runs (id, player, seed, turns_survived, final_doom, money, reputation, staff, papers, outcome, won, played_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	won := 0
	if e.Won {
		won = 1
	}
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.Player,
		e.Seed,
		e.TurnsSurvived,
		e.FinalDoom,
		e.Money,
		e.Reputation,
		e.Staff,
		e.Papers,
		string(e.Outcome),
		won,
		e.PlayedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

const selectRuns = `
	SELECT id, player, seed, turns_survived, final_doom, money, reputation, staff, papers, outcome, won, played_at
	FROM runs
`

const rankOrder = ` ORDER BY turns_survived DESC, won DESC, final_doom ASC, played_at ASC`

func (r *SQLiteRepo) Top(ctx context.Context, seed string, n int) ([]Entry, error) {
	if n <= 0 {
		n = DefaultLimit
	}
	if seed == "" {
		return r.queryRuns(ctx, selectRuns+rankOrder+` LIMIT ?`, n)
	}
	return r.queryRuns(ctx, selectRuns+` WHERE seed = ?`+rankOrder+` LIMIT ?`, seed, n)
}

func (r *SQLiteRepo) All(ctx context.Context) ([]Entry, error) {
	return r.queryRuns(ctx, selectRuns+rankOrder)
}

func (r *SQLiteRepo) queryRuns(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e        Entry
			outcome  string
			won      int
			playedAt string
		)
		if err := rows.Scan(&e.ID, &e.Player, &e.Seed, &e.TurnsSurvived, &e.FinalDoom, &e.Money,
			&e.Reputation, &e.Staff, &e.Papers, &outcome, &won, &playedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		e.Outcome = game.Outcome(outcome)
		e.Won = won != 0
		if t, err := time.Parse(time.RFC3339Nano, playedAt); err == nil {
			e.PlayedAt = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Summary aggregates the run history.
type Summary struct {
	Runs      int            `json:"runs"`
	Wins      int            `json:"wins"`
	BestTurns int            `json:"best_turns"`
	AvgTurns  float64        `json:"avg_turns"`
	AvgDoom   float64        `json:"avg_doom"`
	Seeds     int            `json:"seeds"`
	Outcomes  map[string]int `json:"outcomes"`
}

func (r *SQLiteRepo) Summary(ctx context.Context) (Summary, error) {
	s := Summary{Outcomes: map[string]int{}}
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(won), 0), COALESCE(MAX(turns_survived), 0),
			COALESCE(AVG(turns_survived), 0), COALESCE(AVG(final_doom), 0), COUNT(DISTINCT seed)
		FROM runs
	`)
	if err := row.Scan(&s.Runs, &s.Wins, &s.BestTurns, &s.AvgTurns, &s.AvgDoom, &s.Seeds); err != nil {
		return Summary{}, fmt.Errorf("failed to summarise runs: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT outcome, COUNT(*) FROM runs GROUP BY outcome`)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to count outcomes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			outcome string
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return Summary{}, err
		}
		s.Outcomes[outcome] = n
	}
	return s, rows.Err()
}
