package blackjack

import (
	"math/rand"
	"sync"
	"time"

	"github.com/Grosth/BlackjackCS/card"
)

// Game is the authoritative round-resolution state machine. All
// mutations go through StartGame / Hit / Stand / NextRound / Reset;
// Hit and Stand are no-ops outside their preconditions rather than
// errors, so callers can forward user input without pre-validation.
type Game struct {
	cfg Config
	rng *rand.Rand

	mu sync.Mutex

	players      []*Player
	deck         *card.Deck
	currentIndex int
	phase        Phase
	round        int
	winners      []uint64
	lastResult   *RoundResult
}

func NewGame(cfg Config) (*Game, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.TargetPoints == 0 {
		cfg.TargetPoints = defaultTargetPoints
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &Game{
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(seed)),
		phase: PhaseSetup,
	}
	g.buildPlayersLocked()
	return g, nil
}

func (g *Game) buildPlayersLocked() {
	g.players = make([]*Player, 0, len(g.cfg.Seats))
	for _, s := range g.cfg.Seats {
		g.players = append(g.players, &Player{
			ID:     s.ID,
			Name:   s.Name,
			Bot:    s.Bot,
			status: StatusPlaying,
		})
	}
}

// StartGame deals the first round: fresh shuffled deck, two cards per
// seat in order, naturals marked, first actionable seat active.
func (g *Game) StartGame() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseSetup {
		return ErrGameInProgress
	}
	g.round = 1
	g.dealLocked()
	return nil
}

// Hit draws one card into the active player's hand. Valid only while
// the phase is playing and the active player's status is playing;
// otherwise, or when the deck is empty, it is a silent no-op. Returns
// the settlement when the resulting bust ended the round, else nil.
func (g *Game) Hit() *RoundResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhasePlaying {
		return nil
	}
	p := g.players[g.currentIndex]
	if p.status != StatusPlaying {
		return nil
	}
	c, ok := g.deck.Draw()
	if !ok {
		return nil
	}
	p.addCard(c)
	if p.score > BustLimit {
		// A busted player does not get to stand afterwards.
		p.setStatus(StatusBusted)
		return g.advanceTurnLocked()
	}
	return nil
}

// Stand finishes the active player's turn. Same preconditions and
// no-op behavior as Hit. Returns the settlement when this ended the
// round, else nil.
func (g *Game) Stand() *RoundResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhasePlaying {
		return nil
	}
	p := g.players[g.currentIndex]
	if p.status != StatusPlaying {
		return nil
	}
	p.setStatus(StatusStanding)
	return g.advanceTurnLocked()
}

// NextRound re-deals after a finished round. Only valid from the
// roundFinished phase.
func (g *Game) NextRound() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.phase {
	case PhaseRoundFinished:
	case PhaseGameFinished:
		return ErrGameFinished
	default:
		return ErrRoundNotFinished
	}
	g.round++
	g.dealLocked()
	return nil
}

// Reset discards all state and returns to setup with zeroed points.
func (g *Game) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.buildPlayersLocked()
	g.deck = nil
	g.currentIndex = 0
	g.round = 0
	g.winners = nil
	g.lastResult = nil
	g.phase = PhaseSetup
}

func (g *Game) dealLocked() {
	g.deck = card.NewDeck(g.rng)
	g.winners = nil
	g.lastResult = nil

	for _, p := range g.players {
		p.resetForNewRound()
	}
	for _, p := range g.players {
		for i := 0; i < 2; i++ {
			c, ok := g.deck.Draw()
			if !ok {
				break
			}
			p.addCard(c)
		}
		if IsBlackjack(p.hand) {
			p.setStatus(StatusBlackjack)
		}
	}

	g.phase = PhasePlaying
	g.currentIndex = 0
	for i, p := range g.players {
		if p.status == StatusPlaying {
			g.currentIndex = i
			p.setActive(true)
			return
		}
	}
	// Every seat was dealt a natural: nothing to play, settle at once.
	g.endRoundLocked()
}

// advanceTurnLocked scans forward from the current seat for the next
// player still in status playing. When none remains the round ends.
func (g *Game) advanceTurnLocked() *RoundResult {
	for i := g.currentIndex + 1; i < len(g.players); i++ {
		if g.players[i].status == StatusPlaying {
			g.currentIndex = i
			for j, p := range g.players {
				p.setActive(j == i)
			}
			return nil
		}
	}
	return g.endRoundLocked()
}

// endRoundLocked determines winners, settles points exactly once and
// decides whether the game continues.
func (g *Game) endRoundLocked() *RoundResult {
	for _, p := range g.players {
		p.setActive(false)
	}

	winners := determineWinners(g.players)
	isWinner := make(map[uint64]bool, len(winners))
	res := &RoundResult{Round: g.round}
	for _, w := range winners {
		isWinner[w.ID] = true
		res.Winners = append(res.Winners, w.ID)
	}
	g.winners = append([]uint64{}, res.Winners...)

	for _, p := range g.players {
		delta := -PointsLoss
		if isWinner[p.ID] {
			delta = PointsWin
		}
		p.applyPointsDelta(delta)
		res.Players = append(res.Players, PlayerResult{
			ID:          p.ID,
			Name:        p.Name,
			Score:       p.score,
			Status:      p.status,
			Winner:      isWinner[p.ID],
			PointsDelta: delta,
			TotalPoints: p.totalPoints,
		})
	}

	reachedTarget := false
	for _, p := range g.players {
		if p.totalPoints >= g.cfg.TargetPoints {
			reachedTarget = true
			break
		}
	}
	if reachedTarget || g.round >= g.MaxRounds() {
		g.phase = PhaseGameFinished
		res.GameOver = true
		res.Champions = g.championsLocked()
	} else {
		g.phase = PhaseRoundFinished
	}

	g.lastResult = res
	return res
}

// championsLocked returns the players holding the highest cumulative
// points, ties allowed.
func (g *Game) championsLocked() []uint64 {
	maxPoints := 0
	for _, p := range g.players {
		if p.totalPoints > maxPoints {
			maxPoints = p.totalPoints
		}
	}
	var out []uint64
	for _, p := range g.players {
		if p.totalPoints == maxPoints {
			out = append(out, p.ID)
		}
	}
	return out
}

func (g *Game) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

func (g *Game) Round() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.round
}

func (g *Game) TargetPoints() int { return g.cfg.TargetPoints }

// TotalRounds is the advertised round count shown to players,
// ceil(targetPoints/10). It is informational only; MaxRounds is the
// enforced cap.
func (g *Game) TotalRounds() int {
	return ceilDiv(g.cfg.TargetPoints, PointsWin)
}

// MaxRounds is the authoritative hard cap on rounds,
// ceil(targetPoints/5). Once reached the game finishes regardless of
// points.
func (g *Game) MaxRounds() int {
	return ceilDiv(g.cfg.TargetPoints, PointsLoss)
}

// CurrentPlayer returns the active player, or nil outside the playing
// phase.
func (g *Game) CurrentPlayer() *Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhasePlaying {
		return nil
	}
	return g.players[g.currentIndex]
}

func (g *Game) PlayerByID(id uint64) *Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range g.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// LastResult returns the most recent round settlement, nil while a
// round is open.
func (g *Game) LastResult() *RoundResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastResult
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
