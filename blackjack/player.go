package blackjack

import "github.com/Grosth/BlackjackCS/card"

type Player struct {
	ID   uint64
	Name string
	Bot  bool

	hand        []card.Card
	score       int
	totalPoints int
	status      Status
	active      bool
}

func (p *Player) IsBot() bool { return p.Bot }

// Hand returns a copy of the player's cards in deal order.
func (p *Player) Hand() []card.Card {
	out := make([]card.Card, len(p.hand))
	copy(out, p.hand)
	return out
}

func (p *Player) HandSize() int    { return len(p.hand) }
func (p *Player) Score() int       { return p.score }
func (p *Player) TotalPoints() int { return p.totalPoints }
func (p *Player) Status() Status   { return p.status }
func (p *Player) Active() bool     { return p.active }

// addCard appends a card and rescores the hand. Score is never mutated
// independently of the hand.
func (p *Player) addCard(c card.Card) {
	p.hand = append(p.hand, c)
	p.score = Score(p.hand)
}

func (p *Player) setStatus(s Status) { p.status = s }
func (p *Player) setActive(v bool)   { p.active = v }

func (p *Player) resetForNewRound() {
	p.hand = p.hand[:0]
	p.score = 0
	p.status = StatusPlaying
	p.active = false
}

// applyPointsDelta adjusts cumulative points, clamped at zero.
func (p *Player) applyPointsDelta(delta int) {
	p.totalPoints += delta
	if p.totalPoints < 0 {
		p.totalPoints = 0
	}
}
