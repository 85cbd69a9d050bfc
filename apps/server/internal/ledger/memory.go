package ledger

import (
	"context"
	"sort"
	"sync"
)

// MemoryService keeps stats in-process. Pairs with the memory auth mode
// for tests and throwaway single-binary runs.
type MemoryService struct {
	mu       sync.Mutex
	accounts map[uint64]*Account
}

func NewMemoryService() *MemoryService {
	return &MemoryService{accounts: make(map[uint64]*Account)}
}

func (s *MemoryService) Close() error { return nil }

func (s *MemoryService) EnsureAccount(_ context.Context, userID uint64, username string) error {
	if userID == 0 {
		return ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc, exists := s.accounts[userID]; exists {
		if username != "" {
			acc.Username = username
		}
		return nil
	}
	s.accounts[userID] = &Account{ID: userID, Username: username}
	return nil
}

func (s *MemoryService) GetAccount(_ context.Context, userID uint64) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, exists := s.accounts[userID]
	if !exists {
		return Account{}, ErrNotFound
	}
	return *acc, nil
}

func (s *MemoryService) RecordResult(_ context.Context, userID uint64, outcome Outcome, pointsDelta int) (Account, error) {
	if _, err := ParseOutcome(string(outcome)); err != nil {
		return Account{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, exists := s.accounts[userID]
	if !exists {
		return Account{}, ErrNotFound
	}

	switch outcome {
	case OutcomeWin:
		acc.Wins++
	case OutcomeLoss:
		acc.Losses++
	}
	acc.Points = clampPoints(acc.Points + pointsDelta)
	return *acc, nil
}

func (s *MemoryService) Leaderboard(_ context.Context, limit int) ([]Account, error) {
	limit = clampLeaderboardLimit(limit)

	s.mu.Lock()
	out := make([]Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		out = append(out, *acc)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
