package blackjack

import "github.com/Grosth/BlackjackCS/card"

// Score returns the best blackjack total for hand. Every ace counts 11
// first; while the total exceeds 21 and an undowngraded ace remains,
// one ace is counted as 1 instead (soft -> hard adjustment). A hand
// with no usable downgrade left may score above 21 (bust).
func Score(hand []card.Card) int {
	score := 0
	aces := 0
	for _, c := range hand {
		if c.IsAce() {
			aces++
		}
		score += c.BlackjackValue()
	}

	for score > BustLimit && aces > 0 {
		score -= 10
		aces--
	}

	return score
}

// IsBlackjack reports whether hand is a natural: exactly two cards
// totaling 21. A 21 made with three or more cards is a plain 21 and
// ranks below a natural at round end.
func IsBlackjack(hand []card.Card) bool {
	return len(hand) == 2 && Score(hand) == BustLimit
}
