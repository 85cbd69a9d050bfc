package blackjack

import (
	"testing"

	"github.com/Grosth/BlackjackCS/card"
)

func newTestGame(t *testing.T, seats int, targetPoints int) *Game {
	t.Helper()
	cfg := Config{TargetPoints: targetPoints, Seed: 1}
	for i := 0; i < seats; i++ {
		cfg.Seats = append(cfg.Seats, Seat{ID: uint64(i + 1), Name: "Player"})
	}
	g, err := NewGame(cfg)
	if err != nil {
		t.Fatalf("NewGame err: %v", err)
	}
	return g
}

// setHand rewrites a player's cards directly, keeping the score in
// sync the same way dealing does.
func setHand(t *testing.T, p *Player, strs ...string) {
	t.Helper()
	p.hand = hand(t, strs...)
	p.score = Score(p.hand)
}

func TestStartGameDealsTwoCardsPerSeat(t *testing.T) {
	g := newTestGame(t, 3, 10)
	if err := g.StartGame(); err != nil {
		t.Fatalf("StartGame err: %v", err)
	}

	snap := g.Snapshot()
	if snap.Phase != PhasePlaying && snap.Phase != PhaseRoundFinished && snap.Phase != PhaseGameFinished {
		t.Fatalf("unexpected phase after start: %v", snap.Phase)
	}
	if snap.Round != 1 {
		t.Fatalf("round = %d, want 1", snap.Round)
	}
	for _, p := range snap.Players {
		if len(p.Hand) != 2 {
			t.Fatalf("player %d dealt %d cards, want 2", p.ID, len(p.Hand))
		}
		if p.Score != Score(p.Hand) {
			t.Fatalf("player %d score %d out of sync with hand %v", p.ID, p.Score, p.Hand)
		}
	}
	if snap.DeckLen != 52-2*len(snap.Players) {
		t.Fatalf("deck has %d cards, want %d", snap.DeckLen, 52-2*len(snap.Players))
	}

	if err := g.StartGame(); err != ErrGameInProgress {
		t.Fatalf("second StartGame err = %v, want ErrGameInProgress", err)
	}
}

func TestExactlyOneActivePlayerWhilePlaying(t *testing.T) {
	g := newTestGame(t, 4, 10)
	if err := g.StartGame(); err != nil {
		t.Fatal(err)
	}
	snap := g.Snapshot()
	if snap.Phase != PhasePlaying {
		t.Skipf("deal resolved the round immediately (all naturals), phase=%v", snap.Phase)
	}
	active := 0
	for i, p := range snap.Players {
		if p.Active {
			active++
			if i != snap.CurrentIndex {
				t.Fatalf("active seat %d != CurrentIndex %d", i, snap.CurrentIndex)
			}
			if p.Status != StatusPlaying {
				t.Fatalf("active player has status %v", p.Status)
			}
		}
	}
	if active != 1 {
		t.Fatalf("%d active players, want 1", active)
	}
}

func TestTurnAdvanceSkipsResolvedSeats(t *testing.T) {
	g := newTestGame(t, 3, 10)
	if err := g.StartGame(); err != nil {
		t.Fatal(err)
	}

	// Force the exact arrangement: seat 0 acting, seat 1 busted,
	// seat 2 still in the round.
	g.phase = PhasePlaying
	g.currentIndex = 0
	g.players[0].setStatus(StatusPlaying)
	g.players[1].setStatus(StatusBusted)
	g.players[2].setStatus(StatusPlaying)
	setHand(t, g.players[0], "Kh", "9d")
	setHand(t, g.players[1], "Kd", "Qd", "5h")
	setHand(t, g.players[2], "8c", "7s")
	for i, p := range g.players {
		p.setActive(i == 0)
	}

	if res := g.Stand(); res != nil {
		t.Fatalf("round should not end while seat 2 is playing, got %+v", res)
	}
	snap := g.Snapshot()
	if snap.CurrentIndex != 2 {
		t.Fatalf("CurrentIndex = %d, want 2 (busted seat 1 skipped)", snap.CurrentIndex)
	}
	if !snap.Players[2].Active {
		t.Fatal("seat 2 should be active")
	}
	if snap.Players[0].Status != StatusStanding {
		t.Fatalf("seat 0 status = %v, want standing", snap.Players[0].Status)
	}
}

func TestHitBustAdvancesTurnImmediately(t *testing.T) {
	g := newTestGame(t, 2, 10)
	if err := g.StartGame(); err != nil {
		t.Fatal(err)
	}

	g.phase = PhasePlaying
	g.currentIndex = 0
	g.players[0].setStatus(StatusPlaying)
	g.players[1].setStatus(StatusPlaying)
	// Any draw on a hard 20 busts (minimum draw value is 2).
	setHand(t, g.players[0], "Kh", "Qd")
	setHand(t, g.players[1], "8c", "7s")
	for i, p := range g.players {
		p.setActive(i == 0)
	}

	if res := g.Hit(); res != nil {
		t.Fatalf("round should continue for seat 1, got %+v", res)
	}
	if got := g.players[0].Status(); got != StatusBusted {
		t.Fatalf("seat 0 status = %v, want busted", got)
	}
	if g.players[0].HandSize() != 3 {
		t.Fatalf("seat 0 has %d cards, want 3", g.players[0].HandSize())
	}
	if snap := g.Snapshot(); snap.CurrentIndex != 1 {
		t.Fatalf("turn did not advance after bust, CurrentIndex=%d", snap.CurrentIndex)
	}
}

func TestHitAndStandAreNoOpsOutsidePlayingPhase(t *testing.T) {
	g := newTestGame(t, 2, 10)
	if res := g.Hit(); res != nil {
		t.Fatal("Hit during setup should be a no-op")
	}
	if res := g.Stand(); res != nil {
		t.Fatal("Stand during setup should be a no-op")
	}

	if err := g.StartGame(); err != nil {
		t.Fatal(err)
	}
	g.phase = PhaseRoundFinished
	before := g.players[0].HandSize()
	if res := g.Hit(); res != nil {
		t.Fatal("Hit after round end should be a no-op")
	}
	if g.players[0].HandSize() != before {
		t.Fatal("no-op Hit still drew a card")
	}
}

func TestHitOnEmptyDeckIsNoOp(t *testing.T) {
	g := newTestGame(t, 2, 10)
	if err := g.StartGame(); err != nil {
		t.Fatal(err)
	}
	g.phase = PhasePlaying
	g.currentIndex = 0
	g.players[0].setStatus(StatusPlaying)
	setHand(t, g.players[0], "2h", "3d")
	for g.deck.Len() > 0 {
		g.deck.Draw()
	}

	if res := g.Hit(); res != nil {
		t.Fatalf("Hit on empty deck should be a no-op, got %+v", res)
	}
	if g.players[0].HandSize() != 2 {
		t.Fatal("empty-deck Hit changed the hand")
	}
	if g.players[0].Status() != StatusPlaying {
		t.Fatal("empty-deck Hit changed the status")
	}
}

func TestDeckAndHandsPartitionFullDeck(t *testing.T) {
	g := newTestGame(t, 4, 10)
	if err := g.StartGame(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		g.Hit()
	}

	seen := make(map[card.Card]int, 52)
	snap := g.Snapshot()
	total := snap.DeckLen
	for _, c := range g.deck.Cards() {
		seen[c]++
	}
	for _, p := range snap.Players {
		total += len(p.Hand)
		for _, c := range p.Hand {
			seen[c]++
		}
	}
	if total != 52 {
		t.Fatalf("deck + hands = %d cards, want 52", total)
	}
	for c, n := range seen {
		if n != 1 {
			t.Fatalf("card %s appears %d times", c, n)
		}
	}
}
