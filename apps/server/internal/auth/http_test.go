package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	NewHTTPHandler(NewManager()).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload
}

func TestRegisterEndpointEchoesAccount(t *testing.T) {
	srv := newTestAuthServer(t)

	resp := postJSON(t, srv.URL+"/api/auth/register", `{"username":"Carla.B-99","password":"blackjack21"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	payload := decodeBody(t, resp)
	require.Equal(t, "Carla.B-99", payload["username"])
	require.NotZero(t, payload["id"])
	require.NotEmpty(t, payload["session_token"])
}

func TestRegisterEndpointErrorCodes(t *testing.T) {
	srv := newTestAuthServer(t)

	resp := postJSON(t, srv.URL+"/api/auth/register", `{"username":"carla","password":"blackjack21"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	cases := []struct {
		body   string
		status int
		code   string
	}{
		{`{"username":"carla","password":"blackjack21"}`, http.StatusConflict, "user_exists"},
		{`{"username":"ab","password":"blackjack21"}`, http.StatusBadRequest, "invalid_username"},
		{`{"username":"newuser","password":"nope"}`, http.StatusBadRequest, "invalid_password"},
		{`not json`, http.StatusBadRequest, "invalid_request"},
	}
	for _, tc := range cases {
		resp := postJSON(t, srv.URL+"/api/auth/register", tc.body)
		require.Equal(t, tc.status, resp.StatusCode, tc.body)
		require.Equal(t, tc.code, decodeBody(t, resp)["error"], tc.body)
	}
}

func TestLoginEndpoint(t *testing.T) {
	srv := newTestAuthServer(t)

	resp := postJSON(t, srv.URL+"/api/auth/register", `{"username":"carla","password":"blackjack21"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/auth/login", `{"username":"CARLA","password":"blackjack21"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	payload := decodeBody(t, resp)
	require.Equal(t, "carla", payload["username"])
	require.NotEmpty(t, payload["session_token"])

	resp = postJSON(t, srv.URL+"/api/auth/login", `{"username":"carla","password":"twentyone"}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "invalid_credentials", decodeBody(t, resp)["error"])
}

func TestMeAndLogoutEndpoints(t *testing.T) {
	srv := newTestAuthServer(t)

	resp := postJSON(t, srv.URL+"/api/auth/register", `{"username":"carla","password":"blackjack21"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token := decodeBody(t, resp)["session_token"].(string)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/auth/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "carla", decodeBody(t, resp)["username"])

	resp, err = http.Get(srv.URL + "/api/auth/me")
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "not_authenticated", decodeBody(t, resp)["error"])

	req, err = http.NewRequest(http.MethodPost, srv.URL+"/api/auth/logout", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, decodeBody(t, resp)["ok"])

	// The revoked token no longer resolves.
	req, err = http.NewRequest(http.MethodGet, srv.URL+"/api/auth/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "not_authenticated", decodeBody(t, resp)["error"])
}
