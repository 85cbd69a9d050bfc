package blackjack

// Phase of the game lifecycle.
type Phase byte

const (
	PhaseSetup         Phase = 0
	PhasePlaying       Phase = 1
	PhaseRoundFinished Phase = 2
	PhaseGameFinished  Phase = 3
)

var PhaseDictionary = map[Phase]string{
	PhaseSetup:         "setup",
	PhasePlaying:       "playing",
	PhaseRoundFinished: "roundFinished",
	PhaseGameFinished:  "gameFinished",
}

func (p Phase) String() string {
	if s, ok := PhaseDictionary[p]; ok {
		return s
	}
	return "unknown"
}

// Status of a player within a round. Transitions are one-directional:
// playing -> standing | busted | blackjack. Status resets to playing
// only at the start of a new round.
type Status byte

const (
	StatusPlaying   Status = 0
	StatusStanding  Status = 1
	StatusBusted    Status = 2
	StatusBlackjack Status = 3
)

var StatusDictionary = map[Status]string{
	StatusPlaying:   "playing",
	StatusStanding:  "standing",
	StatusBusted:    "busted",
	StatusBlackjack: "blackjack",
}

func (s Status) String() string {
	if v, ok := StatusDictionary[s]; ok {
		return v
	}
	return "unknown"
}

// Resolved reports whether the player's final round score is visible to
// opponents (bot policy sees only standing and blackjack hands).
func (s Status) Resolved() bool {
	return s == StatusStanding || s == StatusBlackjack
}

const (
	// BustLimit is the score above which a hand busts.
	BustLimit = 21

	// PointsWin is awarded to every round winner.
	PointsWin = 10
	// PointsLoss is deducted from every non-winner, clamped so total
	// points never drop below zero.
	PointsLoss = 5
)
