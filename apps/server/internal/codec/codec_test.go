package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Grosth/BlackjackCS/blackjack"
)

func TestDecodeClientValidatesType(t *testing.T) {
	env, err := DecodeClient([]byte(`{"type":"hit","tableId":"table_1"}`))
	require.NoError(t, err)
	require.Equal(t, ClientHit, env.Type)
	require.Equal(t, "table_1", env.TableID)

	_, err = DecodeClient([]byte(`{"type":"fold"}`))
	require.Error(t, err)

	_, err = DecodeClient([]byte(`not json`))
	require.Error(t, err)
}

func TestDecodeClientStartRequiresPayload(t *testing.T) {
	_, err := DecodeClient([]byte(`{"type":"start"}`))
	require.Error(t, err)

	env, err := DecodeClient([]byte(`{"type":"start","start":{"numPlayers":3,"targetPoints":20,"includeBot":true}}`))
	require.NoError(t, err)
	require.Equal(t, 3, env.Start.NumPlayers)
	require.Equal(t, 20, env.Start.TargetPoints)
	require.True(t, env.Start.IncludeBot)
}

func TestSnapshotEnvelopeRendersCards(t *testing.T) {
	game, err := blackjack.NewGame(blackjack.Config{
		Seats:        []blackjack.Seat{{ID: 1, Name: "alice"}, {ID: 2, Name: "dealer", Bot: true}},
		TargetPoints: 10,
		Seed:         7,
	})
	require.NoError(t, err)
	require.NoError(t, game.StartGame())

	env := NewSnapshotEnvelope("table_1", 5, game.Snapshot())
	data, err := EncodeServer(env)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, ServerSnapshot, decoded["type"])
	require.Equal(t, float64(5), decoded["seq"])

	table := decoded["table"].(map[string]any)
	players := table["players"].([]any)
	require.Len(t, players, 2)
	first := players[0].(map[string]any)
	require.Equal(t, "alice", first["name"])
	require.Len(t, first["hand"].([]any), 2)
}

func TestErrorEnvelope(t *testing.T) {
	env := NewErrorEnvelope("table_1", 1, 4, "not your turn")
	require.Equal(t, ServerError, env.Type)
	require.Equal(t, 4, env.Error.Code)
	require.Equal(t, "not your turn", env.Error.Message)
	require.Nil(t, env.Table)
	require.Nil(t, env.Result)
}
