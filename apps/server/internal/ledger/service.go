package ledger

import (
	"context"
	"errors"
	"strings"
)

const (
	defaultLeaderboardLimit = 20
	maxLeaderboardLimit     = 100
)

// Outcome classifies one finished round from a single player's perspective.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomeDraw Outcome = "draw"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidOutcome = errors.New("invalid outcome")
)

func ParseOutcome(raw string) (Outcome, error) {
	switch Outcome(strings.ToLower(strings.TrimSpace(raw))) {
	case OutcomeWin:
		return OutcomeWin, nil
	case OutcomeLoss:
		return OutcomeLoss, nil
	case OutcomeDraw:
		return OutcomeDraw, nil
	default:
		return "", ErrInvalidOutcome
	}
}

// Account is a user's lifetime blackjack record.
type Account struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Points   int    `json:"points"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
}

// Service is the persistence boundary for points and win/loss records.
type Service interface {
	Close() error

	// EnsureAccount creates the stats row for a user if it does not
	// exist yet. Existing rows keep their totals.
	EnsureAccount(ctx context.Context, userID uint64, username string) error

	// GetAccount returns the stats row for a user, or ErrNotFound.
	GetAccount(ctx context.Context, userID uint64) (Account, error)

	// RecordResult applies one round result: win/loss increments the
	// matching counter (draw increments neither) and pointsDelta is
	// added to the running points total, clamped at zero. Returns the
	// updated totals, or ErrNotFound when the user has no stats row.
	RecordResult(ctx context.Context, userID uint64, outcome Outcome, pointsDelta int) (Account, error)

	// Leaderboard returns up to limit accounts sorted by points
	// descending. Limit defaults to 20 and caps at 100.
	Leaderboard(ctx context.Context, limit int) ([]Account, error)
}

func clampLeaderboardLimit(limit int) int {
	if limit <= 0 {
		return defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		return maxLeaderboardLimit
	}
	return limit
}

func clampPoints(points int) int {
	if points < 0 {
		return 0
	}
	return points
}
