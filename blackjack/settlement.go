package blackjack

// PlayerResult is one player's line in a round settlement.
type PlayerResult struct {
	ID          uint64
	Name        string
	Score       int
	Status      Status
	Winner      bool
	PointsDelta int // +PointsWin or -PointsLoss before clamping
	TotalPoints int // cumulative points after settlement
}

// RoundResult is the settlement snapshot produced exactly once per
// round, at the round-end transition.
type RoundResult struct {
	Round   int
	Winners []uint64 // may be empty when every player busted
	Players []PlayerResult

	// GameOver is set when the settlement ended the whole game; the
	// Champions are then the players with the highest cumulative points.
	GameOver  bool
	Champions []uint64
}

// determineWinners applies the round ranking: busted players are out of
// contention; any natural blackjack beats every plain score, including
// a plain 21; otherwise the highest score wins, ties allowed.
func determineWinners(players []*Player) []*Player {
	valid := make([]*Player, 0, len(players))
	for _, p := range players {
		if p.status != StatusBusted {
			valid = append(valid, p)
		}
	}
	if len(valid) == 0 {
		return nil
	}

	naturals := make([]*Player, 0, len(valid))
	for _, p := range valid {
		if p.status == StatusBlackjack {
			naturals = append(naturals, p)
		}
	}
	if len(naturals) > 0 {
		return naturals
	}

	maxScore := 0
	for _, p := range valid {
		if p.score > maxScore {
			maxScore = p.score
		}
	}
	winners := make([]*Player, 0, len(valid))
	for _, p := range valid {
		if p.score == maxScore {
			winners = append(winners, p)
		}
	}
	return winners
}
