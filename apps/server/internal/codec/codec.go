package codec

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Grosth/BlackjackCS/blackjack"
	"github.com/Grosth/BlackjackCS/card"
)

// Client message types.
const (
	ClientJoin      = "join"
	ClientStart     = "start"
	ClientHit       = "hit"
	ClientStand     = "stand"
	ClientNextRound = "nextRound"
	ClientReset     = "reset"
)

// Server message types.
const (
	ServerSnapshot    = "snapshot"
	ServerRoundResult = "roundResult"
	ServerError       = "error"
)

// ClientEnvelope is one JSON frame from the browser.
type ClientEnvelope struct {
	Type    string        `json:"type"`
	TableID string        `json:"tableId,omitempty"`
	Start   *StartRequest `json:"start,omitempty"`
}

// StartRequest configures a new game on the table.
type StartRequest struct {
	NumPlayers   int  `json:"numPlayers"`
	TargetPoints int  `json:"targetPoints"`
	IncludeBot   bool `json:"includeBot"`
}

// ServerEnvelope is one JSON frame to the browser. Exactly one payload
// field is set, selected by Type.
type ServerEnvelope struct {
	Type    string           `json:"type"`
	TableID string           `json:"tableId,omitempty"`
	Seq     uint64           `json:"seq"`
	TsMs    int64            `json:"tsMs"`
	Table   *TableView       `json:"table,omitempty"`
	Result  *RoundResultView `json:"result,omitempty"`
	Error   *ErrorView       `json:"error,omitempty"`
}

type ErrorView struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// TableView mirrors blackjack.Snapshot with cards rendered as strings.
type TableView struct {
	Phase        string       `json:"phase"`
	Round        int          `json:"round"`
	TotalRounds  int          `json:"totalRounds"`
	MaxRounds    int          `json:"maxRounds"`
	TargetPoints int          `json:"targetPoints"`
	DeckLen      int          `json:"deckLen"`
	Players      []PlayerView `json:"players"`
	Winners      []uint64     `json:"winners,omitempty"`
}

type PlayerView struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	Bot         bool     `json:"bot"`
	Hand        []string `json:"hand"`
	Score       int      `json:"score"`
	TotalPoints int      `json:"totalPoints"`
	Status      string   `json:"status"`
	Active      bool     `json:"active"`
}

type RoundResultView struct {
	Round     int                `json:"round"`
	Winners   []uint64           `json:"winners"`
	Players   []PlayerResultView `json:"players"`
	GameOver  bool               `json:"gameOver"`
	Champions []uint64           `json:"champions,omitempty"`
}

type PlayerResultView struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Score       int    `json:"score"`
	Status      string `json:"status"`
	Winner      bool   `json:"winner"`
	PointsDelta int    `json:"pointsDelta"`
	TotalPoints int    `json:"totalPoints"`
}

// DecodeClient parses and validates one client frame.
func DecodeClient(data []byte) (ClientEnvelope, error) {
	var env ClientEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return ClientEnvelope{}, fmt.Errorf("parse client envelope: %w", err)
	}
	switch env.Type {
	case ClientJoin, ClientHit, ClientStand, ClientNextRound, ClientReset:
		return env, nil
	case ClientStart:
		if env.Start == nil {
			return ClientEnvelope{}, fmt.Errorf("start frame missing start payload")
		}
		return env, nil
	default:
		return ClientEnvelope{}, fmt.Errorf("unknown client message type %q", env.Type)
	}
}

// EncodeServer marshals one server frame.
func EncodeServer(env *ServerEnvelope) ([]byte, error) {
	return json.Marshal(env)
}

func NewSnapshotEnvelope(tableID string, seq uint64, snap blackjack.Snapshot) *ServerEnvelope {
	return &ServerEnvelope{
		Type:    ServerSnapshot,
		TableID: tableID,
		Seq:     seq,
		TsMs:    time.Now().UnixMilli(),
		Table:   SnapshotToView(snap),
	}
}

func NewRoundResultEnvelope(tableID string, seq uint64, res *blackjack.RoundResult) *ServerEnvelope {
	return &ServerEnvelope{
		Type:    ServerRoundResult,
		TableID: tableID,
		Seq:     seq,
		TsMs:    time.Now().UnixMilli(),
		Result:  RoundResultToView(res),
	}
}

func NewErrorEnvelope(tableID string, seq uint64, code int, msg string) *ServerEnvelope {
	return &ServerEnvelope{
		Type:    ServerError,
		TableID: tableID,
		Seq:     seq,
		TsMs:    time.Now().UnixMilli(),
		Error:   &ErrorView{Code: code, Message: msg},
	}
}

func SnapshotToView(snap blackjack.Snapshot) *TableView {
	view := &TableView{
		Phase:        snap.Phase.String(),
		Round:        snap.Round,
		TotalRounds:  snap.TotalRounds,
		MaxRounds:    snap.MaxRounds,
		TargetPoints: snap.TargetPoints,
		DeckLen:      snap.DeckLen,
		Winners:      snap.Winners,
	}
	for _, p := range snap.Players {
		view.Players = append(view.Players, PlayerView{
			ID:          p.ID,
			Name:        p.Name,
			Bot:         p.Bot,
			Hand:        cardsToStrings(p.Hand),
			Score:       p.Score,
			TotalPoints: p.TotalPoints,
			Status:      p.Status.String(),
			Active:      p.Active,
		})
	}
	return view
}

func RoundResultToView(res *blackjack.RoundResult) *RoundResultView {
	if res == nil {
		return nil
	}
	view := &RoundResultView{
		Round:     res.Round,
		Winners:   res.Winners,
		GameOver:  res.GameOver,
		Champions: res.Champions,
	}
	for _, p := range res.Players {
		view.Players = append(view.Players, PlayerResultView{
			ID:          p.ID,
			Name:        p.Name,
			Score:       p.Score,
			Status:      p.Status.String(),
			Winner:      p.Winner,
			PointsDelta: p.PointsDelta,
			TotalPoints: p.TotalPoints,
		})
	}
	return view
}

func cardsToStrings(cards []card.Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.String())
	}
	return out
}
