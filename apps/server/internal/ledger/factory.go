package ledger

import (
	"fmt"
	"strings"
)

// NewServiceFromEnv picks the stats backend matching the auth mode so a
// user's account row and stats row always live in the same store.
func NewServiceFromEnv(authMode string) (Service, string, error) {
	mode := strings.ToLower(strings.TrimSpace(authMode))
	switch mode {
	case "memory", "mem":
		return NewMemoryService(), "memory", nil
	case "", "sqlite", "local":
		service, err := NewSQLiteServiceFromEnv()
		if err != nil {
			return nil, "", err
		}
		return service, "sqlite", nil
	case "db", "postgres", "postgresql":
		service, err := NewPostgresServiceFromEnv()
		if err != nil {
			return nil, "", err
		}
		return service, "postgres", nil
	default:
		return nil, "", fmt.Errorf("invalid ledger mode %q", mode)
	}
}
