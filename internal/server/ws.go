package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/opencode-ai/opencode/internal/agent"
	"github.com/opencode-ai/opencode/internal/event"
	"github.com/opencode-ai/opencode/internal/logging"
	"github.com/opencode-ai/opencode/internal/session"
)

const (
	wsHeartbeatInterval = 30 * time.Second
	wsPongWait          = 60 * time.Second
	wsWriteWait         = 10 * time.Second

	// wsSendBuffer is the hard cap on in-flight events queued for one
	// connection before a status event gets dropped rather than blocking.
	wsSendBuffer = 256
)

// wsClientMessage is the shape of every client->server WS frame.
type wsClientMessage struct {
	Type string `json:"type"` // "message" | "auto_analyze" | "stop"
	Text string `json:"text,omitempty"`
}

// wsConn is one live WebSocket connection serving a single session. At most
// one wsConn is ever the registered sink for a session; a reconnect
// supersedes and closes the previous one rather than both receiving events.
type wsConn struct {
	conn      *websocket.Conn
	sessionID string
	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newWSConn(conn *websocket.Conn, sessionID string) *wsConn {
	return &wsConn{
		conn:      conn,
		sessionID: sessionID,
		out:       make(chan []byte, wsSendBuffer),
		done:      make(chan struct{}),
	}
}

// supersede forces this connection closed because a newer one has taken
// over its session; its read/write pumps unwind on their own.
func (c *wsConn) supersede() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// deliver is the Server's bus.SubscribeAll callback: it filters to this
// connection's session and enforces the drop-only-status backpressure rule.
// Status is advisory, so a full buffer drops it; every other event kind
// blocks the publishing goroutine until there's room or the connection ends.
func (c *wsConn) deliver(e event.Event) {
	if e.SessionID != c.sessionID {
		return
	}
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	if e.Type == event.Status {
		select {
		case c.out <- data:
		default:
		}
		return
	}
	select {
	case c.out <- data:
	case <-c.done:
	}
}

// sendLocal writes an event straight to this connection without going
// through the bus, for errors that concern this connection rather than a
// published turn event (malformed or unknown frame, message without text,
// a turn that is already active or failed to run).
func (c *wsConn) sendLocal(evt event.Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.out <- data:
	case <-c.done:
	}
}

// serveSessionWS handles GET /sessions/{id}/ws. The handshake always
// upgrades so an invalid credential or unowned session can be reported as a
// close frame per the transport contract, rather than a plain HTTP error.
func (s *Server) serveSessionWS(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	identity, ok := identityFromContext(r.Context())
	if !ok {
		closePolicyViolation(conn, "missing or invalid bearer credential")
		return
	}
	sess, err := s.sessionService.Get(r.Context(), sessionID)
	if err != nil || sess.OwnerUserID != identity.UserID {
		closePolicyViolation(conn, "session not found")
		return
	}

	wc := newWSConn(conn, sessionID)
	s.registerSink(sessionID, wc)
	unsubscribe := s.bus.SubscribeAll(wc.deliver)

	defer func() {
		unsubscribe()
		s.releaseSink(sessionID, wc)
		wc.closeOnce.Do(func() {
			close(wc.done)
			_ = conn.Close()
		})
	}()

	go s.wsWritePump(wc)
	s.wsReadPump(r, wc)
}

func (s *Server) wsWritePump(wc *wsConn) {
	ticker := time.NewTicker(wsHeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-wc.done:
			return
		case data, ok := <-wc.out:
			if !ok {
				return
			}
			_ = wc.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := wc.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = wc.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := wc.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) wsReadPump(r *http.Request, wc *wsConn) {
	wc.conn.SetReadLimit(1 << 20)
	_ = wc.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	wc.conn.SetPongHandler(func(string) error {
		return wc.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, data, err := wc.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg wsClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			wc.sendLocal(event.Event{Type: event.Error, SessionID: wc.sessionID, Data: event.ErrorData{Message: "malformed message"}})
			continue
		}

		switch msg.Type {
		case "message":
			if msg.Text == "" {
				wc.sendLocal(event.Event{Type: event.Error, SessionID: wc.sessionID, Data: event.ErrorData{Message: "message requires text"}})
				continue
			}
			s.startTurn(r, wc, msg.Text, agent.FollowUp)
		case "auto_analyze":
			s.startTurn(r, wc, "", agent.AutoAnalyze)
		case "stop":
			s.sessionService.Abort(wc.sessionID)
		default:
			wc.sendLocal(event.Event{Type: event.Error, SessionID: wc.sessionID, Data: event.ErrorData{Message: "unknown message type"}})
		}
	}
}

// startTurn runs one turn in its own goroutine: Process blocks for the
// whole turn, and the read pump must keep servicing "stop" frames while it
// runs.
func (s *Server) startTurn(r *http.Request, wc *wsConn, triggerText, agentName string) {
	go func() {
		err := s.sessionService.ProcessMessage(r.Context(), wc.sessionID, triggerText, agentName)
		if err == nil {
			return
		}
		if errors.Is(err, session.ErrTurnActive) {
			wc.sendLocal(event.Event{Type: event.Error, SessionID: wc.sessionID, Data: event.ErrorData{Message: "a turn is already in progress"}})
			return
		}
		logging.Error().Err(err).Str("sessionID", wc.sessionID).Msg("turn failed")
		wc.sendLocal(event.Event{Type: event.Error, SessionID: wc.sessionID, Data: event.ErrorData{Message: err.Error()}})
	}()
}

func closePolicyViolation(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteWait))
	_ = conn.Close()
}
