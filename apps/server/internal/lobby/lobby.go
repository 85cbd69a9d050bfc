package lobby

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/Grosth/BlackjackCS/apps/server/internal/ledger"
	"github.com/Grosth/BlackjackCS/apps/server/internal/table"
)

const (
	defaultBotThinkDelay = 700 * time.Millisecond
	idleTableTTL         = 10 * time.Minute
	reapInterval         = time.Minute
)

// Lobby manages all tables and player assignments
type Lobby struct {
	mu     sync.RWMutex
	tables map[string]*table.Table
	nextID uint64

	ledger ledger.Service

	// Default table config
	defaultConfig table.TableConfig

	reapOnce sync.Once
	reapStop chan struct{}
}

// New creates a new lobby. Bot think delay comes from BOT_THINK_DELAY_MS
// when set.
func New(ledgerService ledger.Service) *Lobby {
	cfg := table.TableConfig{
		MaxPlayers:    4,
		TargetPoints:  10,
		BotThinkDelay: defaultBotThinkDelay,
	}
	if raw := os.Getenv("BOT_THINK_DELAY_MS"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms < 0 {
			log.Printf("[Lobby] Ignoring invalid BOT_THINK_DELAY_MS=%q", raw)
		} else {
			cfg.BotThinkDelay = time.Duration(ms) * time.Millisecond
		}
	}
	return &Lobby{
		tables:        make(map[string]*table.Table),
		ledger:        ledgerService,
		defaultConfig: cfg,
		reapStop:      make(chan struct{}),
	}
}

// QuickStart finds the table the player already sits at, or an open one,
// or creates a fresh table.
func (l *Lobby) QuickStart(userID uint64, broadcastFn func(userID uint64, data []byte)) (*table.Table, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, t := range l.tables {
		if t.IsClosed() {
			continue
		}
		if t.HasPlayer(userID) {
			log.Printf("[Lobby] QuickStart: user %d returning to table %s", userID, t.ID)
			return t, nil
		}
	}

	// Find a table with available seats
	for _, t := range l.tables {
		if t.IsClosed() {
			continue
		}
		snap := t.Snapshot()
		if len(snap.Players) < l.defaultConfig.MaxPlayers {
			log.Printf("[Lobby] QuickStart: user %d joining existing table %s", userID, t.ID)
			return t, nil
		}
	}

	// Create new table
	l.nextID++
	tableID := fmt.Sprintf("table_%d", l.nextID)
	t := table.New(tableID, l.defaultConfig, broadcastFn, l.ledger)
	if t == nil {
		return nil, fmt.Errorf("failed to create table")
	}
	l.tables[tableID] = t

	log.Printf("[Lobby] QuickStart: user %d created new table %s", userID, tableID)
	return t, nil
}

// GetTable returns a table by ID
func (l *Lobby) GetTable(tableID string) *table.Table {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tables[tableID]
}

// ListTables returns all table IDs
func (l *Lobby) ListTables() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.tables))
	for id := range l.tables {
		ids = append(ids, id)
	}
	return ids
}

// StartReaper launches a background loop that stops and removes tables
// left without online players. Call once at server startup.
func (l *Lobby) StartReaper() {
	l.reapOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(reapInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					l.reapIdle(idleTableTTL)
				case <-l.reapStop:
					return
				}
			}
		}()
	})
}

func (l *Lobby) reapIdle(ttl time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, t := range l.tables {
		if t.IsClosed() || t.IsIdleFor(ttl) {
			t.Stop()
			delete(l.tables, id)
			log.Printf("[Lobby] Reaped idle table %s", id)
		}
	}
}

// Stop shuts down every table and the reaper loop.
func (l *Lobby) Stop() {
	close(l.reapStop)

	l.mu.Lock()
	defer l.mu.Unlock()
	for id, t := range l.tables {
		t.Stop()
		delete(l.tables, id)
	}
}
