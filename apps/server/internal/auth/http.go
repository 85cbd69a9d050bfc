package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

type HTTPHandler struct {
	manager Service
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// authResponse echoes the account plus the bearer token the client
// presents on later requests.
type authResponse struct {
	ID           uint64 `json:"id"`
	Username     string `json:"username"`
	SessionToken string `json:"session_token"`
}

type logoutResponse struct {
	OK bool `json:"ok"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Machine-readable error codes in every non-2xx body.
const (
	codeInvalidRequest     = "invalid_request"
	codeInvalidUsername    = "invalid_username"
	codeInvalidPassword    = "invalid_password"
	codeUserExists         = "user_exists"
	codeInvalidCredentials = "invalid_credentials"
	codeNotAuthenticated   = "not_authenticated"
	codeMethodNotAllowed   = "method_not_allowed"
	codeInternal           = "internal_error"
)

func NewHTTPHandler(manager Service) *HTTPHandler {
	return &HTTPHandler{manager: manager}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/auth/register", h.handleRegister)
	mux.HandleFunc("/api/auth/login", h.handleLogin)
	mux.HandleFunc("/api/auth/logout", h.handleLogout)
	mux.HandleFunc("/api/auth/me", h.handleMe)
}

func (h *HTTPHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed)
		return
	}

	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest)
		return
	}

	userID, sessionToken, err := h.manager.Register(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidUsername):
			writeError(w, http.StatusBadRequest, codeInvalidUsername)
		case errors.Is(err, ErrInvalidPassword):
			writeError(w, http.StatusBadRequest, codeInvalidPassword)
		case errors.Is(err, ErrUsernameTaken):
			writeError(w, http.StatusConflict, codeUserExists)
		default:
			writeError(w, http.StatusInternalServerError, codeInternal)
		}
		return
	}

	writeJSON(w, http.StatusCreated, h.sessionResponse(userID, sessionToken))
}

func (h *HTTPHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed)
		return
	}

	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest)
		return
	}

	userID, sessionToken, err := h.manager.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, codeInvalidCredentials)
			return
		}
		writeError(w, http.StatusInternalServerError, codeInternal)
		return
	}

	writeJSON(w, http.StatusOK, h.sessionResponse(userID, sessionToken))
}

func (h *HTTPHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed)
		return
	}

	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeError(w, http.StatusUnauthorized, codeNotAuthenticated)
		return
	}

	h.manager.Logout(token)
	writeJSON(w, http.StatusOK, logoutResponse{OK: true})
}

func (h *HTTPHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed)
		return
	}

	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeError(w, http.StatusUnauthorized, codeNotAuthenticated)
		return
	}

	userID, username, ok := h.manager.ResolveSession(token)
	if !ok {
		writeError(w, http.StatusUnauthorized, codeNotAuthenticated)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		ID       uint64 `json:"id"`
		Username string `json:"username"`
	}{ID: userID, Username: username})
}

// sessionResponse resolves the freshly issued token so the echoed
// username is the stored display form, not the raw request input.
func (h *HTTPHandler) sessionResponse(userID uint64, sessionToken string) authResponse {
	_, username, _ := h.manager.ResolveSession(sessionToken)
	return authResponse{
		ID:           userID,
		Username:     username,
		SessionToken: sessionToken,
	}
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func bearerToken(raw string) string {
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, errorResponse{Error: code})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
