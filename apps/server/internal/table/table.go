package table

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/Grosth/BlackjackCS/apps/server/internal/codec"
	"github.com/Grosth/BlackjackCS/apps/server/internal/ledger"
	"github.com/Grosth/BlackjackCS/blackjack"
	"github.com/Grosth/BlackjackCS/blackjack/bot"
)

// Bot seat IDs live far above the auth account ID range so they can
// never collide with a real user and never reach the ledger.
const botUserIDBase uint64 = 1_000_000_000

var ErrTableClosed = errors.New("table closed")

// Table owns one blackjack game behind an actor loop. All game access
// is serialized through the event channel.
type Table struct {
	ID     string
	Config TableConfig

	mu         sync.RWMutex
	game       *blackjack.Game
	players    map[uint64]*PlayerConn // userID -> connection, join order in joinOrder
	joinOrder  []uint64
	brains     map[uint64]bot.Decider // bot seat ID -> policy
	closed     bool
	stopOnce   sync.Once
	emptySince time.Time

	events chan Event
	done   chan struct{}

	serverSeq uint64

	broadcast func(userID uint64, data []byte)
	ledger    ledger.Service
}

// TableConfig contains table settings.
type TableConfig struct {
	MaxPlayers    int
	TargetPoints  int           // default when a start request leaves it zero
	BotThinkDelay time.Duration // zero means bots act immediately
	Seed          int64         // zero means time-based shuffles
}

// PlayerConn represents a connected human player at the table.
type PlayerConn struct {
	UserID   uint64
	Nickname string
	Online   bool
	LastSeen time.Time
}

// StartParams configures a new game on this table.
type StartParams struct {
	NumPlayers   int
	TargetPoints int
	IncludeBot   bool
}

// Event types for the actor message queue.
type EventType int

const (
	EventJoin EventType = iota
	EventStart
	EventHit
	EventStand
	EventNextRound
	EventReset
	EventBotTurn
	EventConnLost
	EventClose
)

// Event represents a message to the table actor.
type Event struct {
	Type      EventType
	UserID    uint64
	Nickname  string
	Start     StartParams
	Timestamp time.Time
	Response  chan error
}

// New creates a table and starts its actor goroutine.
func New(
	id string,
	cfg TableConfig,
	broadcastFn func(userID uint64, data []byte),
	ledgerService ledger.Service,
) *Table {
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = 4
	}
	t := &Table{
		ID:         id,
		Config:     cfg,
		players:    make(map[uint64]*PlayerConn),
		brains:     make(map[uint64]bot.Decider),
		events:     make(chan Event, 256),
		done:       make(chan struct{}),
		broadcast:  broadcastFn,
		ledger:     ledgerService,
		emptySince: time.Now(),
	}

	go t.run()

	log.Printf("[Table %s] Created (max=%d, target=%d)", id, cfg.MaxPlayers, cfg.TargetPoints)
	return t
}

// run is the main actor loop.
func (t *Table) run() {
	for {
		select {
		case event := <-t.events:
			err := t.handleEvent(event)
			if event.Response != nil {
				event.Response <- err
			}
		case <-t.done:
			log.Printf("[Table %s] Actor stopped", t.ID)
			return
		}
	}
}

func (t *Table) handleEvent(e Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed && e.Type != EventClose {
		return ErrTableClosed
	}

	switch e.Type {
	case EventJoin:
		return t.handleJoin(e.UserID, e.Nickname)
	case EventStart:
		return t.handleStart(e.UserID, e.Start)
	case EventHit:
		return t.handleHumanAction(e.UserID, true)
	case EventStand:
		return t.handleHumanAction(e.UserID, false)
	case EventNextRound:
		return t.handleNextRound()
	case EventReset:
		return t.handleReset()
	case EventBotTurn:
		return t.handleBotTurn()
	case EventConnLost:
		return t.handleConnLost(e.UserID, e.Timestamp)
	case EventClose:
		t.stopLocked()
		return nil
	default:
		return fmt.Errorf("unknown event type: %d", e.Type)
	}
}

func (t *Table) handleJoin(userID uint64, nickname string) error {
	now := time.Now()
	resolved := normalizeNickname(nickname, userID)
	if player, exists := t.players[userID]; exists {
		player.Online = true
		player.LastSeen = now
		player.Nickname = resolved
		t.sendSnapshotLocked(userID)
		return nil
	}
	if len(t.players) >= t.Config.MaxPlayers {
		return fmt.Errorf("table full")
	}
	t.players[userID] = &PlayerConn{
		UserID:   userID,
		Nickname: resolved,
		Online:   true,
		LastSeen: now,
	}
	t.joinOrder = append(t.joinOrder, userID)
	t.emptySince = time.Time{}
	log.Printf("[Table %s] Player %d (%s) joined", t.ID, userID, resolved)

	t.sendSnapshotLocked(userID)
	return nil
}

func (t *Table) handleStart(userID uint64, p StartParams) error {
	if _, exists := t.players[userID]; !exists {
		return fmt.Errorf("player not in table")
	}
	if t.game != nil && t.game.Phase() == blackjack.PhasePlaying {
		return blackjack.ErrGameInProgress
	}

	if p.TargetPoints <= 0 {
		p.TargetPoints = t.Config.TargetPoints
	}
	if p.NumPlayers <= 0 {
		p.NumPlayers = 2
	}
	if p.NumPlayers > t.Config.MaxPlayers {
		p.NumPlayers = t.Config.MaxPlayers
	}

	seats, brains, err := t.buildSeatsLocked(userID, p)
	if err != nil {
		return err
	}

	game, err := blackjack.NewGame(blackjack.Config{
		Seats:        seats,
		TargetPoints: p.TargetPoints,
		Seed:         t.Config.Seed,
	})
	if err != nil {
		return err
	}
	if err := game.StartGame(); err != nil {
		return err
	}

	t.game = game
	t.brains = brains
	log.Printf("[Table %s] Game started: seats=%d target=%d bots=%d",
		t.ID, len(seats), p.TargetPoints, len(brains))

	t.broadcastSnapshotLocked()
	t.maybeScheduleBotTurnLocked()
	return nil
}

// buildSeatsLocked seats the requesting user first, then the other
// joined humans, then bots up to the requested player count.
func (t *Table) buildSeatsLocked(starterID uint64, p StartParams) ([]blackjack.Seat, map[uint64]bot.Decider, error) {
	seats := make([]blackjack.Seat, 0, p.NumPlayers)
	seats = append(seats, blackjack.Seat{
		ID:   starterID,
		Name: t.playerNickname(starterID),
	})
	for _, id := range t.joinOrder {
		if len(seats) >= p.NumPlayers {
			break
		}
		if id == starterID {
			continue
		}
		if conn := t.players[id]; conn != nil && conn.Online {
			seats = append(seats, blackjack.Seat{ID: id, Name: conn.Nickname})
		}
	}

	brains := make(map[uint64]bot.Decider)
	if p.IncludeBot {
		persona := bot.DefaultPersona()
		for i := len(seats); i < p.NumPlayers; i++ {
			botID := botUserIDBase + uint64(i)
			name := fmt.Sprintf("%s %d", persona.Name, i+1)
			seats = append(seats, blackjack.Seat{ID: botID, Name: name, Bot: true})
			brains[botID] = bot.NewRuleBrain(persona, t.Config.Seed+int64(i))
		}
	}
	if len(seats) == 0 {
		return nil, nil, fmt.Errorf("no seats to start")
	}
	return seats, brains, nil
}

func (t *Table) handleHumanAction(userID uint64, hit bool) error {
	if t.game == nil {
		return blackjack.ErrInvalidState("no game started")
	}
	current := t.game.CurrentPlayer()
	if current == nil || current.ID != userID {
		return fmt.Errorf("not your turn")
	}

	var res *blackjack.RoundResult
	if hit {
		res = t.game.Hit()
	} else {
		res = t.game.Stand()
	}
	t.broadcastSnapshotLocked()

	if res != nil {
		t.finishRoundLocked(res)
		return nil
	}
	t.maybeScheduleBotTurnLocked()
	return nil
}

func (t *Table) handleNextRound() error {
	if t.game == nil {
		return blackjack.ErrInvalidState("no game started")
	}
	if err := t.game.NextRound(); err != nil {
		return err
	}
	log.Printf("[Table %s] Round %d started", t.ID, t.game.Round())
	t.broadcastSnapshotLocked()
	t.maybeScheduleBotTurnLocked()
	return nil
}

func (t *Table) handleReset() error {
	if t.game == nil {
		return nil
	}
	t.game.Reset()
	log.Printf("[Table %s] Game reset", t.ID)
	t.broadcastSnapshotLocked()
	return nil
}

// handleBotTurn lets the current bot act once. If the bot stays under
// 21 and keeps the turn, the next decision is scheduled again so each
// action is visible to clients as its own snapshot.
func (t *Table) handleBotTurn() error {
	if t.game == nil || t.game.Phase() != blackjack.PhasePlaying {
		return nil
	}
	current := t.game.CurrentPlayer()
	if current == nil || !current.IsBot() {
		return nil
	}
	brain := t.brains[current.ID]
	if brain == nil {
		// No policy for this seat; stand so the turn cannot stall.
		log.Printf("[Table %s] No brain for bot %d, standing", t.ID, current.ID)
		res := t.game.Stand()
		t.broadcastSnapshotLocked()
		if res != nil {
			t.finishRoundLocked(res)
		} else {
			t.maybeScheduleBotTurnLocked()
		}
		return nil
	}

	view, deckLen := t.buildBotViewLocked(current)
	decision := resolveBotAction(brain.Decide(view), deckLen)
	log.Printf("[Table %s] Bot %s (score=%d) decides: %v", t.ID, current.Name, current.Score(), decision)

	var res *blackjack.RoundResult
	if decision == bot.ActionHit {
		res = t.game.Hit()
	} else {
		res = t.game.Stand()
	}
	t.broadcastSnapshotLocked()

	if res != nil {
		t.finishRoundLocked(res)
		return nil
	}
	t.maybeScheduleBotTurnLocked()
	return nil
}

func (t *Table) buildBotViewLocked(current *blackjack.Player) (bot.TableView, int) {
	snap := t.game.Snapshot()
	view := bot.TableView{
		Score:    current.Score(),
		HandSize: current.HandSize(),
	}
	for _, p := range snap.Players {
		if p.ID == current.ID {
			continue
		}
		view.Opponents = append(view.Opponents, bot.OpponentView{
			Score:  p.Score,
			Status: p.Status,
		})
	}
	return view, snap.DeckLen
}

// resolveBotAction downgrades a hit to a stand when the deck cannot
// serve it. Hit on an empty deck is a no-op in the engine, and a bot
// that keeps choosing it would never release the turn.
func resolveBotAction(decision bot.Action, deckLen int) bot.Action {
	if decision == bot.ActionHit && deckLen == 0 {
		return bot.ActionStand
	}
	return decision
}

func (t *Table) maybeScheduleBotTurnLocked() {
	if t.game == nil || t.game.Phase() != blackjack.PhasePlaying {
		return
	}
	current := t.game.CurrentPlayer()
	if current == nil || !current.IsBot() {
		return
	}

	delay := t.Config.BotThinkDelay
	go func() {
		if delay > 0 {
			time.Sleep(delay)
		}
		_ = t.SubmitEvent(Event{Type: EventBotTurn})
	}()
}

func (t *Table) finishRoundLocked(res *blackjack.RoundResult) {
	log.Printf("[Table %s] Round %d finished. Winners: %v gameOver=%v", t.ID, res.Round, res.Winners, res.GameOver)
	t.broadcastRoundResultLocked(res)
	t.reportRoundToLedgerLocked(res)
}

// reportRoundToLedgerLocked records each human seat's outcome
// fire-and-forget. Bot seats never reach the ledger.
func (t *Table) reportRoundToLedgerLocked(res *blackjack.RoundResult) {
	if t.ledger == nil {
		return
	}
	for _, pr := range res.Players {
		conn := t.players[pr.ID]
		if conn == nil {
			continue
		}
		outcome := ledger.OutcomeLoss
		if pr.Winner {
			outcome = ledger.OutcomeWin
		}
		userID := pr.ID
		username := conn.Nickname
		delta := pr.PointsDelta
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := t.ledger.EnsureAccount(ctx, userID, username); err != nil {
				log.Printf("[Table %s] ensure account failed: user=%d err=%v", t.ID, userID, err)
				return
			}
			if _, err := t.ledger.RecordResult(ctx, userID, outcome, delta); err != nil {
				log.Printf("[Table %s] record result failed: user=%d err=%v", t.ID, userID, err)
			}
		}()
	}
}

func (t *Table) handleConnLost(userID uint64, ts time.Time) error {
	player := t.players[userID]
	if player == nil {
		return nil
	}
	if ts.IsZero() {
		ts = time.Now()
	}
	player.Online = false
	player.LastSeen = ts
	t.updateEmptySinceLocked(ts)
	log.Printf("[Table %s] Player %d connection lost", t.ID, userID)
	return nil
}

func (t *Table) updateEmptySinceLocked(now time.Time) {
	for _, p := range t.players {
		if p.Online {
			t.emptySince = time.Time{}
			return
		}
	}
	if t.emptySince.IsZero() {
		t.emptySince = now
	}
}

// SubmitEvent sends an event to the actor and waits for the result.
func (t *Table) SubmitEvent(e Event) error {
	e.Timestamp = time.Now()
	if e.Response == nil {
		e.Response = make(chan error, 1)
	}

	t.mu.RLock()
	closed := t.closed
	t.mu.RUnlock()
	if closed {
		return ErrTableClosed
	}

	select {
	case t.events <- e:
	case <-t.done:
		return ErrTableClosed
	}

	select {
	case err := <-e.Response:
		return err
	case <-t.done:
		return ErrTableClosed
	}
}

// Stop shuts down the table actor.
func (t *Table) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Table) stopLocked() {
	t.closed = true
	t.stopOnce.Do(func() {
		close(t.done)
	})
}

func (t *Table) IsIdleFor(ttl time.Duration) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.closed {
		return true
	}
	if t.emptySince.IsZero() {
		return false
	}
	return time.Since(t.emptySince) >= ttl
}

func (t *Table) IsClosed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.closed
}

// Snapshot returns the current game state, or a setup-phase zero value
// before the first start.
func (t *Table) Snapshot() blackjack.Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.game == nil {
		return blackjack.Snapshot{Phase: blackjack.PhaseSetup}
	}
	return t.game.Snapshot()
}

func (t *Table) HasPlayer(userID uint64) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, exists := t.players[userID]
	return exists
}

func (t *Table) playerNickname(userID uint64) string {
	player := t.players[userID]
	if player != nil {
		nickname := strings.TrimSpace(player.Nickname)
		if nickname != "" {
			return nickname
		}
	}
	return fmt.Sprintf("user_%d", userID)
}

func normalizeNickname(raw string, userID uint64) string {
	nickname := strings.TrimSpace(raw)
	if nickname == "" {
		return fmt.Sprintf("user_%d", userID)
	}
	return nickname
}

// --- Broadcast helpers ---

func (t *Table) nextSeq() uint64 {
	t.serverSeq++
	return t.serverSeq
}

func (t *Table) sendEnvelope(userID uint64, env *codec.ServerEnvelope) {
	data, err := codec.EncodeServer(env)
	if err != nil {
		log.Printf("[Table %s] Failed to marshal message: %v", t.ID, err)
		return
	}
	t.broadcast(userID, data)
}

func (t *Table) sendSnapshotLocked(userID uint64) {
	var snap blackjack.Snapshot
	if t.game != nil {
		snap = t.game.Snapshot()
	} else {
		snap = blackjack.Snapshot{Phase: blackjack.PhaseSetup}
	}
	t.sendEnvelope(userID, codec.NewSnapshotEnvelope(t.ID, t.nextSeq(), snap))
}

func (t *Table) broadcastSnapshotLocked() {
	var snap blackjack.Snapshot
	if t.game != nil {
		snap = t.game.Snapshot()
	} else {
		snap = blackjack.Snapshot{Phase: blackjack.PhaseSetup}
	}
	env := codec.NewSnapshotEnvelope(t.ID, t.nextSeq(), snap)
	data, err := codec.EncodeServer(env)
	if err != nil {
		log.Printf("[Table %s] Failed to marshal snapshot: %v", t.ID, err)
		return
	}
	for userID := range t.players {
		t.broadcast(userID, data)
	}
}

func (t *Table) broadcastRoundResultLocked(res *blackjack.RoundResult) {
	env := codec.NewRoundResultEnvelope(t.ID, t.nextSeq(), res)
	data, err := codec.EncodeServer(env)
	if err != nil {
		log.Printf("[Table %s] Failed to marshal round result: %v", t.ID, err)
		return
	}
	for userID := range t.players {
		t.broadcast(userID, data)
	}
}
