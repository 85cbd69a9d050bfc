package auth

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestSQLiteManager(t *testing.T) *SQLiteManager {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "auth_test.db")
	m, err := NewSQLiteManager(dbPath, time.Hour)
	if err != nil {
		t.Fatalf("NewSQLiteManager err: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestSQLiteRegisterLoginLogout(t *testing.T) {
	m := newTestSQLiteManager(t)

	accountID, token, err := m.Register("Bob_99", "secret12")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if accountID == 0 || token == "" {
		t.Fatalf("expected account id and token, got %d %q", accountID, token)
	}

	resolvedID, username, ok := m.ResolveSession(token)
	if !ok {
		t.Fatalf("expected valid session")
	}
	if resolvedID != accountID {
		t.Fatalf("expected account %d, got %d", accountID, resolvedID)
	}
	if username != "Bob_99" {
		t.Fatalf("expected display username Bob_99, got %s", username)
	}

	// Login is case-insensitive on the username key.
	loginID, loginToken, err := m.Login("bob_99", "secret12")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if loginID != accountID {
		t.Fatalf("expected same account id after login")
	}

	m.Logout(loginToken)
	if _, _, ok := m.ResolveSession(loginToken); ok {
		t.Fatalf("expected revoked token to be invalid")
	}
	if _, _, ok := m.ResolveSession(token); !ok {
		t.Fatalf("expected untouched session to remain valid")
	}
}

func TestSQLiteRejectsDuplicateUsername(t *testing.T) {
	m := newTestSQLiteManager(t)

	if _, _, err := m.Register("carol", "secret12"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, _, err := m.Register("Carol", "secret12"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestSQLiteLoginUnknownUser(t *testing.T) {
	m := newTestSQLiteManager(t)
	if _, _, err := m.Login("nobody", "secret12"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
