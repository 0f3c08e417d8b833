package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/archadvisor/archadvisor/eventbus"
	"github.com/archadvisor/archadvisor/session"
)

var (
	errWSClientClosed = errors.New("httpapi: websocket client closed")
	errWSClientSlow   = errors.New("httpapi: websocket client exceeded send timeout")
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second

	// wsSendTimeout bounds how long a publication blocks on a slow
	// WebSocket listener. Publication is otherwise synchronous with
	// listener delivery, so a slow client legitimately slows its own
	// session; this bound only protects against a listener that has gone
	// silent (a dead connection whose write pump stopped draining).
	wsSendTimeout = 5 * time.Second
)

// wsClient is one connected observer of a single session's event channel.
type wsClient struct {
	conn      *websocket.Conn
	send      chan eventbus.Event
	sessionID string
	mu        sync.Mutex
	closed    bool
}

func (c *wsClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// wsCommand is a client->server control message. Fields other than Type
// are ignored; unknown Type values are rejected with an error frame.
type wsCommand struct {
	Type string `json:"type"`
}

// handleWebSocket upgrades the connection, replays the session's event
// history, then streams live events while accepting client commands. The
// path is /ws/{session_id}, distinct from the REST prefix.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimPrefix(r.URL.Path, "/ws/")
	if sessionID == "" {
		writeError(w, http.StatusNotFound, "session id required")
		return
	}

	ctx, cancel := requestContext(r)
	state, err := s.Store.Get(ctx, sessionID)
	cancel()
	if err != nil {
		s.Logger.Error("failed to load session for websocket", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if state == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if !s.CORS.Enabled {
				return true
			}
			origin := r.Header.Get("Origin")
			if len(s.CORS.AllowedOrigins) == 0 {
				return true
			}
			for _, allowed := range s.CORS.AllowedOrigins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger.Warn("websocket upgrade failed", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		return
	}

	client := &wsClient{
		conn:      conn,
		send:      make(chan eventbus.Event, 256),
		sessionID: sessionID,
	}

	sub := s.Bus.Subscribe(sessionID, func(event eventbus.Event) error {
		client.mu.Lock()
		closed := client.closed
		client.mu.Unlock()
		if closed {
			return errWSClientClosed
		}
		select {
		case client.send <- event:
			return nil
		case <-time.After(wsSendTimeout):
			return errWSClientSlow
		}
	})
	defer s.Bus.Unsubscribe(sub)

	history := s.Bus.GetHistory(sessionID)
	client.send <- eventbus.Event{
		Type:      "event_history",
		Timestamp: time.Now(),
		Data:      map[string]interface{}{"events": history},
	}

	go s.wsWritePump(client)
	s.wsReadPump(client, sessionID)
}

func (s *Server) wsWritePump(c *wsClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) wsReadPump(c *wsClient, sessionID string) {
	defer c.close()

	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var cmd wsCommand
		if err := json.Unmarshal(raw, &cmd); err != nil {
			c.sendSafe(eventbus.Event{Type: "error", Timestamp: time.Now(), Data: map[string]interface{}{"message": "Invalid JSON"}})
			continue
		}

		switch cmd.Type {
		case "ping":
			c.sendSafe(eventbus.Event{Type: "pong", Timestamp: time.Now()})
		case "cancel":
			s.handleWSCancel(sessionID)
		case "force_proceed":
			s.Engine.ForceProceed(sessionID)
			s.Bus.Publish(sessionID, eventbus.Event{Type: "force_proceed_requested", Data: map[string]interface{}{"session_id": sessionID}})
		default:
			c.sendSafe(eventbus.Event{Type: "error", Timestamp: time.Now(), Data: map[string]interface{}{"message": "Invalid JSON"}})
		}
	}
}

func (c *wsClient) sendSafe(event eventbus.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- event:
	default:
	}
}

func (s *Server) handleWSCancel(sessionID string) {
	ctx, cancel := requestContextBackground()
	defer cancel()

	state, err := s.Store.Get(ctx, sessionID)
	if err != nil || state == nil || state.Status.IsTerminal() {
		return
	}
	if err := s.Store.UpdateStatus(ctx, sessionID, session.StatusCancelled); err != nil {
		s.Logger.Error("failed to cancel session via websocket command", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		return
	}
	s.cancelRunning(sessionID)
	s.Bus.Publish(sessionID, eventbus.Event{Type: "session_cancelled", Data: map[string]interface{}{"session_id": sessionID}})
}
