package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	mdwerror "github.com/anemortalkid/kaleido/foundation/core/error"
	"github.com/anemortalkid/kaleido/foundation/kaleido"
	"github.com/anemortalkid/kaleido/foundation/kaleido/parser"
	"github.com/anemortalkid/kaleido/internal/emit"
	"github.com/anemortalkid/kaleido/pkg/core/logging"
)

// WebSocket upgrader with permissive settings for local development
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WebSocketHandler handles WebSocket parse sessions
type WebSocketHandler struct {
	engine      *kaleido.Engine
	logger      *logging.Logger
	readTimeout time.Duration
}

// NewWebSocketHandler creates a new WebSocket handler. A zero readTimeout
// disables the idle deadline.
func NewWebSocketHandler(engine *kaleido.Engine, logger *logging.Logger, readTimeout time.Duration) *WebSocketHandler {
	return &WebSocketHandler{
		engine:      engine,
		logger:      logger,
		readTimeout: readTimeout,
	}
}

// WSMessage represents a client message
type WSMessage struct {
	Type    string          `json:"type"`    // "parse", "ping"
	Payload json.RawMessage `json:"payload"` // Message-specific payload
}

// WSParsePayload carries the source to parse
type WSParsePayload struct {
	Source string `json:"source"`
}

// WSResponse represents a server message
type WSResponse struct {
	Type    string      `json:"type"`              // "unit", "diagnostic", "done", "error", "pong"
	Payload interface{} `json:"payload,omitempty"` // Response-specific payload
}

// WSDonePayload closes the answer to one parse message
type WSDonePayload struct {
	Units       int `json:"units"`
	Diagnostics int `json:"diagnostics"`
}

// WSErrorPayload represents an error payload
type WSErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServeHTTP handles WebSocket upgrade and connections
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}
	h.handleConnection(r.Context(), &wsConn{conn: conn})
}

// wsConn serializes writes; gorilla connections allow one concurrent writer
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) send(resp WSResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(resp)
}

func (h *WebSocketHandler) extendDeadline(c *wsConn) {
	if h.readTimeout > 0 {
		c.conn.SetReadDeadline(time.Now().Add(h.readTimeout))
	}
}

// handleConnection handles a single WebSocket connection
func (h *WebSocketHandler) handleConnection(ctx context.Context, c *wsConn) {
	defer c.conn.Close()

	h.logger.Info("WebSocket connection established", "remote", c.conn.RemoteAddr().String())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	h.extendDeadline(c)
	c.conn.SetPongHandler(func(string) error {
		h.extendDeadline(c)
		return nil
	})

	// Read messages in a loop; parses run in order on this goroutine
	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket read error", "error", err)
			} else {
				h.logger.Info("WebSocket connection closed")
			}
			return
		}
		h.extendDeadline(c)

		switch msg.Type {
		case "ping":
			h.sendResponse(c, WSResponse{Type: "pong"})

		case "parse":
			var payload WSParsePayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				h.sendError(c, "invalid_payload", "Invalid parse payload")
				continue
			}
			h.handleParse(ctx, c, payload)

		default:
			h.sendError(c, "unknown_type", "Unknown message type: "+msg.Type)
		}
	}
}

// handleParse streams units and diagnostics as they are parsed
func (h *WebSocketHandler) handleParse(ctx context.Context, c *wsConn, payload WSParsePayload) {
	sink := parser.SinkFuncs{
		OnUnit: func(unit parser.Unit) error {
			return c.send(WSResponse{Type: "unit", Payload: emit.UnitMap(unit)})
		},
		OnDiagnostic: func(perr *parser.ParseError) {
			h.sendResponse(c, WSResponse{Type: "diagnostic", Payload: diagnosticMap(perr)})
		},
	}

	stats, err := h.engine.Run(ctx, strings.NewReader(payload.Source), sink)
	if err != nil {
		code := mdwerror.GetCode(err)
		h.logger.Warn("WebSocket parse failed", "code", code.String(), "error", err)
		h.sendError(c, strings.ToLower(code.String()), err.Error())
		return
	}

	h.sendResponse(c, WSResponse{
		Type:    "done",
		Payload: WSDonePayload{Units: stats.Units, Diagnostics: stats.Diagnostics},
	})
}

// sendResponse sends a response message via WebSocket
func (h *WebSocketHandler) sendResponse(c *wsConn, resp WSResponse) {
	if err := c.send(resp); err != nil {
		h.logger.Error("WebSocket send error", "error", err)
	}
}

// sendError sends an error response via WebSocket
func (h *WebSocketHandler) sendError(c *wsConn, code, message string) {
	h.sendResponse(c, WSResponse{
		Type: "error",
		Payload: WSErrorPayload{
			Code:    code,
			Message: message,
		},
	})
}
