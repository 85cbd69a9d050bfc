package bot

import (
	"github.com/Grosth/BlackjackCS/blackjack"
)

// Action is a blackjack turn decision.
type Action byte

const (
	ActionStand Action = iota
	ActionHit
)

func (a Action) String() string {
	if a == ActionHit {
		return "hit"
	}
	return "stand"
}

// OpponentView is what a bot may know about another seat. Scores of
// players still in status playing are hidden by construction: the
// policy only reads scores of resolved (standing/blackjack) hands.
type OpponentView struct {
	Score  int
	Status blackjack.Status
}

// TableView is the read-only projection of the game state visible to
// the bot on its turn.
type TableView struct {
	Score     int
	HandSize  int
	Opponents []OpponentView
}

// Decider is the core interface all bot brains implement. Decide must
// be side-effect-free with respect to game state and deterministic for
// a fixed seed.
type Decider interface {
	Decide(view TableView) Action
	Name() string
}
