package blackjack

import "fmt"

const (
	maxSeats            = 8
	defaultTargetPoints = 10
)

// Seat describes one participant at game creation.
type Seat struct {
	ID   uint64
	Name string
	Bot  bool
}

type Config struct {
	Seats []Seat

	// TargetPoints ends the game once any player's cumulative points
	// reach it. 0 means the default of 10.
	TargetPoints int

	// RNG seed (0 => time-based)
	Seed int64
}

func (c Config) validate() error {
	if len(c.Seats) == 0 {
		return fmt.Errorf("at least one seat required")
	}
	if len(c.Seats) > maxSeats {
		return fmt.Errorf("too many seats: %d > %d", len(c.Seats), maxSeats)
	}
	seen := make(map[uint64]bool, len(c.Seats))
	for _, s := range c.Seats {
		if seen[s.ID] {
			return fmt.Errorf("duplicate seat id %d", s.ID)
		}
		seen[s.ID] = true
	}
	if c.TargetPoints < 0 {
		return fmt.Errorf("TargetPoints must be >= 0")
	}
	return nil
}
