package gateway

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Grosth/BlackjackCS/apps/server/internal/auth"
	"github.com/Grosth/BlackjackCS/apps/server/internal/codec"
	"github.com/Grosth/BlackjackCS/apps/server/internal/lobby"
	"github.com/Grosth/BlackjackCS/apps/server/internal/table"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: Restrict in production
	},
}

// Connection represents a WebSocket client connection
type Connection struct {
	ID       string
	UserID   uint64
	Username string
	Conn     *websocket.Conn
	Send     chan []byte
	Gateway  *Gateway
	LastPing time.Time

	// Current table association
	TableID string
	Table   *table.Table
}

// Gateway manages WebSocket connections
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	userConns   map[uint64]*Connection // userID -> connection
	nextConnID  uint64
	errSeq      uint64
	lobby       *lobby.Lobby
	auth        auth.Service
}

// New creates a new Gateway instance
func New(lby *lobby.Lobby, authService auth.Service) *Gateway {
	return &Gateway{
		connections: make(map[string]*Connection),
		userConns:   make(map[uint64]*Connection),
		lobby:       lby,
		auth:        authService,
	}
}

// HandleWebSocket authenticates the session token then upgrades the
// connection. The token comes from the "token" query parameter or an
// Authorization bearer header.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := wsToken(r)
	userID, username, ok := g.auth.ResolveSession(token)
	if !ok {
		http.Error(w, "invalid or expired session", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Gateway] Upgrade error: %v", err)
		return
	}

	g.mu.Lock()
	// A reconnect replaces the previous socket for the same user.
	if prev := g.userConns[userID]; prev != nil {
		delete(g.connections, prev.ID)
		prev.Conn.Close()
	}
	g.nextConnID++
	connID := fmt.Sprintf("conn_%d", g.nextConnID)

	c := &Connection{
		ID:       connID,
		UserID:   userID,
		Username: username,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Gateway:  g,
		LastPing: time.Now(),
	}
	g.connections[connID] = c
	g.userConns[userID] = c
	g.mu.Unlock()

	log.Printf("[Gateway] Client connected: %s (user=%d %s), total: %d", connID, userID, username, len(g.connections))

	go c.readPump()
	go c.writePump()
}

func wsToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

func (c *Connection) readPump() {
	defer func() {
		c.Gateway.removeConnection(c)
		if c.Table != nil {
			c.Table.SubmitEvent(table.Event{
				Type:   table.EventConnLost,
				UserID: c.UserID,
			})
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(65536)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		c.LastPing = time.Now()
		return nil
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Gateway] Read error: %v", err)
			}
			break
		}

		if messageType == websocket.TextMessage {
			c.handleMessage(message)
		}
	}
}

func (c *Connection) handleMessage(data []byte) {
	env, err := codec.DecodeClient(data)
	if err != nil {
		log.Printf("[Gateway] Bad frame from user %d: %v", c.UserID, err)
		c.sendError(1, "invalid message format")
		return
	}

	log.Printf("[Gateway] Received from user %d: type=%s table=%s", c.UserID, env.Type, env.TableID)

	switch env.Type {
	case codec.ClientJoin:
		c.handleJoin(&env)
	case codec.ClientStart:
		c.handleStart(&env)
	case codec.ClientHit:
		c.submitAction(table.EventHit)
	case codec.ClientStand:
		c.submitAction(table.EventStand)
	case codec.ClientNextRound:
		c.submitAction(table.EventNextRound)
	case codec.ClientReset:
		c.submitAction(table.EventReset)
	default:
		log.Printf("[Gateway] Unknown message type: %s", env.Type)
	}
}

func (c *Connection) handleJoin(env *codec.ClientEnvelope) {
	var t *table.Table
	if env.TableID != "" {
		t = c.Gateway.lobby.GetTable(env.TableID)
		if t == nil {
			c.sendError(2, "table not found")
			return
		}
	} else {
		found, err := c.Gateway.lobby.QuickStart(c.UserID, c.Gateway.broadcastToUser)
		if err != nil {
			c.sendError(2, err.Error())
			return
		}
		t = found
	}

	c.TableID = t.ID
	c.Table = t

	if err := t.SubmitEvent(table.Event{
		Type:     table.EventJoin,
		UserID:   c.UserID,
		Nickname: c.Username,
	}); err != nil {
		c.sendError(2, err.Error())
		return
	}

	log.Printf("[Gateway] User %d joined table %s", c.UserID, t.ID)
}

func (c *Connection) handleStart(env *codec.ClientEnvelope) {
	if c.Table == nil {
		c.sendError(3, "not in a table")
		return
	}

	err := c.Table.SubmitEvent(table.Event{
		Type:   table.EventStart,
		UserID: c.UserID,
		Start: table.StartParams{
			NumPlayers:   env.Start.NumPlayers,
			TargetPoints: env.Start.TargetPoints,
			IncludeBot:   env.Start.IncludeBot,
		},
	})
	if err != nil {
		c.sendError(4, err.Error())
	}
}

func (c *Connection) submitAction(eventType table.EventType) {
	if c.Table == nil {
		c.sendError(3, "not in a table")
		return
	}

	err := c.Table.SubmitEvent(table.Event{
		Type:   eventType,
		UserID: c.UserID,
	})
	if err != nil {
		c.sendError(5, err.Error())
	}
}

func (c *Connection) sendError(code int, msg string) {
	seq := atomic.AddUint64(&c.Gateway.errSeq, 1)
	data, err := codec.EncodeServer(codec.NewErrorEnvelope(c.TableID, seq, code, msg))
	if err != nil {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.connections, c.ID)
	if g.userConns[c.UserID] == c {
		delete(g.userConns, c.UserID)
	}
	log.Printf("[Gateway] Client disconnected: %s, total: %d", c.ID, len(g.connections))
}

// broadcastToUser sends a message to a specific user
func (g *Gateway) broadcastToUser(userID uint64, data []byte) {
	g.mu.RLock()
	c := g.userConns[userID]
	g.mu.RUnlock()

	if c != nil {
		select {
		case c.Send <- data:
		default:
			// Drop if buffer full
		}
	}
}

// Broadcast sends a message to all connections
func (g *Gateway) Broadcast(message []byte) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, c := range g.connections {
		select {
		case c.Send <- message:
		default:
			// Drop message if buffer full
		}
	}
}
