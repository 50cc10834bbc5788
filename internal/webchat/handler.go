package webchat

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/frontdesk-ai/platform/internal/conversation"
	"github.com/frontdesk-ai/platform/pkg/logging"
)

// Handler serves the website chat widget over WebSocket. Each connection is
// one conversation: the opaque state blob lives on the connection, exactly
// like a phone call carries it between turns.
type Handler struct {
	processor conversation.TurnProcessor
	logger    *logging.Logger

	mu       sync.RWMutex
	sessions map[string]*wsConn // sessionID -> active connection
}

type wsConn struct {
	conn *websocket.Conn
	done chan struct{}
}

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type       string `json:"type"` // "message", "ping"
	BusinessID string `json:"business_id"`
	Text       string `json:"text"`
}

// OutboundMessage is what goes back to the widget.
type OutboundMessage struct {
	Type           string `json:"type"` // "message", "session", "pong", "error"
	Text           string `json:"text,omitempty"`
	SessionID      string `json:"session_id,omitempty"`
	HasAppointment bool   `json:"has_appointment,omitempty"`
	Timestamp      string `json:"timestamp,omitempty"`
}

// NewHandler creates a web chat handler.
func NewHandler(processor conversation.TurnProcessor, logger *logging.Logger) *Handler {
	if processor == nil {
		panic("webchat: turn processor cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		processor: processor,
		logger:    logger,
		sessions:  make(map[string]*wsConn),
	}
}

// generateSessionID creates a random session identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// HandleWebSocket upgrades to WebSocket and runs the chat loop.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	businessID := r.URL.Query().Get("business")
	if businessID == "" {
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "missing business parameter"})
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = generateSessionID()
	}

	_ = websocket.JSON.Send(conn, OutboundMessage{
		Type:      "session",
		SessionID: sessionID,
	})

	wsc := &wsConn{conn: conn, done: make(chan struct{})}
	h.mu.Lock()
	h.sessions[sessionID] = wsc
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		if h.sessions[sessionID] == wsc {
			delete(h.sessions, sessionID)
		}
		h.mu.Unlock()
		close(wsc.done)
	}()

	h.logger.Info("webchat: connection opened", "business_id", businessID, "session_id", sessionID)

	var clientState string
	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "business_id", businessID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}

		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		resp, err := h.processor.ProcessTurn(r.Context(), conversation.TurnRequest{
			BusinessID:  businessID,
			Utterance:   msg.Text,
			ClientState: clientState,
		})
		if err != nil {
			h.logger.Error("webchat: turn failed", "error", err, "business_id", businessID)
			_ = websocket.JSON.Send(conn, OutboundMessage{
				Type: "error",
				Text: "Sorry, something went wrong. Please try again.",
			})
			continue
		}
		clientState = resp.ClientState

		_ = websocket.JSON.Send(conn, OutboundMessage{
			Type:           "message",
			Text:           resp.Reply,
			SessionID:      sessionID,
			HasAppointment: resp.HasAppointment,
			Timestamp:      time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// ActiveSessions reports the number of open widget connections.
func (h *Handler) ActiveSessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
