package blackjack

import "github.com/Grosth/BlackjackCS/card"

type PlayerSnapshot struct {
	ID          uint64
	Name        string
	Bot         bool
	Hand        []card.Card
	Score       int
	TotalPoints int
	Status      Status
	Active      bool
}

// Snapshot is a copy of the game state safe to hand to transports and
// tests while the game keeps mutating.
type Snapshot struct {
	Phase        Phase
	Round        int
	TotalRounds  int
	MaxRounds    int
	TargetPoints int

	CurrentIndex int
	DeckLen      int

	Players []PlayerSnapshot
	Winners []uint64
}

func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := Snapshot{
		Phase:        g.phase,
		Round:        g.round,
		TotalRounds:  ceilDiv(g.cfg.TargetPoints, PointsWin),
		MaxRounds:    ceilDiv(g.cfg.TargetPoints, PointsLoss),
		TargetPoints: g.cfg.TargetPoints,
		CurrentIndex: g.currentIndex,
		Winners:      append([]uint64{}, g.winners...),
	}
	if g.deck != nil {
		s.DeckLen = g.deck.Len()
	}
	for _, p := range g.players {
		s.Players = append(s.Players, PlayerSnapshot{
			ID:          p.ID,
			Name:        p.Name,
			Bot:         p.Bot,
			Hand:        p.Hand(),
			Score:       p.score,
			TotalPoints: p.totalPoints,
			Status:      p.status,
			Active:      p.active,
		})
	}
	return s
}
