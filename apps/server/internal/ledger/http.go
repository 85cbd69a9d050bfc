package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Grosth/BlackjackCS/apps/server/internal/auth"
)

type HTTPHandler struct {
	auth   auth.Service
	ledger Service
}

type errorResponse struct {
	Error string `json:"error"`
}

type gameResultRequest struct {
	Outcome     string `json:"outcome"`
	PointsDelta *int   `json:"points_delta,omitempty"`
}

func NewHTTPHandler(authService auth.Service, ledgerService Service) *HTTPHandler {
	return &HTTPHandler{
		auth:   authService,
		ledger: ledgerService,
	}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/me", h.handleMe)
	mux.HandleFunc("/api/game/result", h.handleGameResult)
	mux.HandleFunc("/api/leaderboard", h.handleLeaderboard)
}

func (h *HTTPHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID, username, ok := h.resolveUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid session token")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	acc, err := h.ledger.GetAccount(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		// First visit after registration: the stats row appears lazily.
		if err := h.ledger.EnsureAccount(ctx, userID, username); err != nil {
			writeError(w, http.StatusInternalServerError, "load profile failed")
			return
		}
		acc, err = h.ledger.GetAccount(ctx, userID)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load profile failed")
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

func (h *HTTPHandler) handleGameResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID, username, ok := h.resolveUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid session token")
		return
	}

	var req gameResultRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	outcome, err := ParseOutcome(req.Outcome)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outcome")
		return
	}
	pointsDelta := defaultPointsDelta(outcome)
	if req.PointsDelta != nil {
		pointsDelta = *req.PointsDelta
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := h.ledger.EnsureAccount(ctx, userID, username); err != nil {
		writeError(w, http.StatusInternalServerError, "record result failed")
		return
	}
	acc, err := h.ledger.RecordResult(ctx, userID, outcome, pointsDelta)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "record result failed")
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

func (h *HTTPHandler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := parseLimit(r.URL.Query().Get("limit"))
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	items, err := h.ledger.Leaderboard(ctx, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query leaderboard failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
	})
}

func defaultPointsDelta(outcome Outcome) int {
	switch outcome {
	case OutcomeWin:
		return 10
	case OutcomeLoss:
		return -5
	default:
		return 0
	}
}

func (h *HTTPHandler) resolveUser(r *http.Request) (uint64, string, bool) {
	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return 0, "", false
	}
	userID, username, ok := h.auth.ResolveSession(token)
	if !ok {
		return 0, "", false
	}
	return userID, username, true
}

func parseLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultLeaderboardLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultLeaderboardLimit
	}
	if n > maxLeaderboardLimit {
		return maxLeaderboardLimit
	}
	return n
}

func bearerToken(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
