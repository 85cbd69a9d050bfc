package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Grosth/BlackjackCS/apps/server/internal/auth"
)

func newTestServer(t *testing.T) (*httptest.Server, auth.Service, Service) {
	t.Helper()
	authService := auth.NewManager()
	ledgerService := NewMemoryService()

	mux := http.NewServeMux()
	NewHTTPHandler(authService, ledgerService).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, authService, ledgerService
}

func registerUser(t *testing.T, authService auth.Service, username string) (uint64, string) {
	t.Helper()
	id, token, err := authService.Register(username, "secret12")
	require.NoError(t, err)
	return id, token
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeAccount(t *testing.T, resp *http.Response) Account {
	t.Helper()
	defer resp.Body.Close()
	var acc Account
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&acc))
	return acc
}

func TestMeRequiresSession(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/me")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMeCreatesStatsRowLazily(t *testing.T) {
	srv, authService, _ := newTestServer(t)
	userID, token := registerUser(t, authService, "alice_01")

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	acc := decodeAccount(t, resp)
	require.Equal(t, userID, acc.ID)
	require.Equal(t, "alice_01", acc.Username)
	require.Equal(t, 0, acc.Points)
}

func TestGameResultFlow(t *testing.T) {
	srv, authService, _ := newTestServer(t)
	_, token := registerUser(t, authService, "bob_02")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/game/result", token, map[string]any{"outcome": "win"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	acc := decodeAccount(t, resp)
	require.Equal(t, 10, acc.Points)
	require.Equal(t, 1, acc.Wins)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/game/result", token, map[string]any{"outcome": "loss"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	acc = decodeAccount(t, resp)
	require.Equal(t, 5, acc.Points)
	require.Equal(t, 1, acc.Losses)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/game/result", token, map[string]any{"outcome": "fold"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/game/result", "", map[string]any{"outcome": "win"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLeaderboardIsPublicAndSorted(t *testing.T) {
	srv, authService, ledgerService := newTestServer(t)
	idA, _ := registerUser(t, authService, "ann")
	idB, _ := registerUser(t, authService, "ben")

	ctx := context.Background()
	require.NoError(t, ledgerService.EnsureAccount(ctx, idA, "ann"))
	require.NoError(t, ledgerService.EnsureAccount(ctx, idB, "ben"))
	_, err := ledgerService.RecordResult(ctx, idB, OutcomeWin, 30)
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/api/leaderboard")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Items []Account `json:"items"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload.Items, 2)
	require.Equal(t, "ben", payload.Items[0].Username)
	require.Equal(t, "ann", payload.Items[1].Username)
}
