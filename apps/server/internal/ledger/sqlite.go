package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const defaultLocalDBName = "blackjack_local.db"

type SQLiteService struct {
	db *sql.DB
}

func NewSQLiteServiceFromEnv() (*SQLiteService, error) {
	dbPath, err := ledgerLocalDatabasePathFromEnv()
	if err != nil {
		return nil, err
	}
	return NewSQLiteService(dbPath)
}

func NewSQLiteService(dbPath string) (*SQLiteService, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSQLiteLedgerSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteService{db: db}, nil
}

func (s *SQLiteService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteService) EnsureAccount(ctx context.Context, userID uint64, username string) error {
	if userID == 0 {
		return ErrNotFound
	}
	nowMs := time.Now().UTC().UnixMilli()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO user_stats (user_id, username, points, wins, losses, updated_at_ms)
VALUES (?, ?, 0, 0, 0, ?)
ON CONFLICT (user_id) DO UPDATE
SET username = CASE WHEN excluded.username != '' THEN excluded.username ELSE user_stats.username END
`, userID, username, nowMs)
	return err
}

func (s *SQLiteService) GetAccount(ctx context.Context, userID uint64) (Account, error) {
	var acc Account
	err := s.db.QueryRowContext(ctx, `
SELECT user_id, username, points, wins, losses
FROM user_stats
WHERE user_id = ?
`, userID).Scan(&acc.ID, &acc.Username, &acc.Points, &acc.Wins, &acc.Losses)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	return acc, nil
}

func (s *SQLiteService) RecordResult(ctx context.Context, userID uint64, outcome Outcome, pointsDelta int) (Account, error) {
	if _, err := ParseOutcome(string(outcome)); err != nil {
		return Account{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Account{}, err
	}
	defer tx.Rollback()

	var acc Account
	err = tx.QueryRowContext(ctx, `
SELECT user_id, username, points, wins, losses
FROM user_stats
WHERE user_id = ?
`, userID).Scan(&acc.ID, &acc.Username, &acc.Points, &acc.Wins, &acc.Losses)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}

	switch outcome {
	case OutcomeWin:
		acc.Wins++
	case OutcomeLoss:
		acc.Losses++
	}
	acc.Points = clampPoints(acc.Points + pointsDelta)

	nowMs := time.Now().UTC().UnixMilli()
	if _, err := tx.ExecContext(ctx, `
UPDATE user_stats
SET points = ?,
    wins = ?,
    losses = ?,
    updated_at_ms = ?
WHERE user_id = ?
`, acc.Points, acc.Wins, acc.Losses, nowMs, userID); err != nil {
		return Account{}, err
	}
	if err := tx.Commit(); err != nil {
		return Account{}, err
	}
	return acc, nil
}

func (s *SQLiteService) Leaderboard(ctx context.Context, limit int) ([]Account, error) {
	limit = clampLeaderboardLimit(limit)

	rows, err := s.db.QueryContext(ctx, `
SELECT user_id, username, points, wins, losses
FROM user_stats
ORDER BY points DESC, user_id ASC
LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Account, 0, limit)
	for rows.Next() {
		var acc Account
		if err := rows.Scan(&acc.ID, &acc.Username, &acc.Points, &acc.Wins, &acc.Losses); err != nil {
			return nil, err
		}
		out = append(out, acc)
	}
	return out, rows.Err()
}

func ensureSQLiteLedgerSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS user_stats (
    user_id INTEGER PRIMARY KEY,
    username TEXT NOT NULL DEFAULT '',
    points INTEGER NOT NULL DEFAULT 0,
    wins INTEGER NOT NULL DEFAULT 0,
    losses INTEGER NOT NULL DEFAULT 0,
    updated_at_ms INTEGER NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_user_stats_points ON user_stats(points DESC, user_id ASC)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func ledgerLocalDatabasePathFromEnv() (string, error) {
	candidates := []string{
		strings.TrimSpace(os.Getenv("LEDGER_LOCAL_DATABASE_PATH")),
		strings.TrimSpace(os.Getenv("AUTH_LOCAL_DATABASE_PATH")),
		strings.TrimSpace(os.Getenv("LOCAL_DATABASE_PATH")),
	}
	for _, candidate := range candidates {
		if candidate != "" {
			return filepath.Clean(candidate), nil
		}
	}

	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userConfigDir, "BlackjackCS", defaultLocalDBName), nil
}
