package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB

	msgAnalyze = "analyze"
	msgSession = "session"
	msgView    = "view"
	msgError   = "error"

	errUnknownMessage = "unknown message type; expected 'analyze'"
)

// Envelope used for WebSocket messages in both directions.
type wsEnvelope struct {
	Type   string      `json:"type"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
	Status int         `json:"status,omitempty"`
}

// wsInbound is a client message; Data is decoded once the type is known.
type wsInbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// wsRequest is one pending unit of work for the writer loop.
type wsRequest struct {
	analyze AnalyzeRequest
	invalid string
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConnect serves live analysis for one session. Each "analyze" message runs an
// analysis; while one is running only the newest pending request is kept.
func (h *Handler) wsConnect(c *gin.Context) {
	id := sessionID(c)
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err, "session_id", id)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	ctx := c.Request.Context()
	pending := make(chan wsRequest, 1)
	done := make(chan struct{})
	go h.startReader(conn, pending, done)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	info, err := h.services.Sessions.Info(ctx, id)
	if err != nil {
		if h.log != nil {
			h.log.Infow("ws_session_lookup_failed", "err", err, "session_id", id)
		}
		return
	}
	if err := writeEnvelope(conn, wsEnvelope{Type: msgSession, Data: info}); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err, "session_id", id)
		}
		return
	}

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err, "session_id", id)
				}
				return
			}
		case req := <-pending:
			if err := writeEnvelope(conn, h.handleRequest(ctx, id, req)); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err, "session_id", id)
				}
				return
			}
		}
	}
}

// handleRequest runs one request and builds the reply.
func (h *Handler) handleRequest(ctx context.Context, id string, req wsRequest) wsEnvelope {
	if req.invalid != "" {
		return wsEnvelope{Type: msgError, Error: req.invalid, Status: http.StatusBadRequest}
	}
	view, msg, err := h.runAnalysis(ctx, id, req.analyze)
	if msg != "" {
		return wsEnvelope{Type: msgError, Error: msg, Status: http.StatusBadRequest}
	}
	if err != nil {
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			if h.log != nil {
				h.log.Errorw("ws_analyze_failed", "err", err, "session_id", id)
			}
			return wsEnvelope{Type: msgError, Error: errInternal, Status: code}
		}
		return wsEnvelope{Type: msgError, Error: err.Error(), Status: code}
	}
	return wsEnvelope{Type: msgView, Data: view}
}

// startReader decodes client messages into pending and closes done when the peer goes away.
func (h *Handler) startReader(conn *websocket.Conn, pending chan wsRequest, done chan<- struct{}) {
	defer close(done)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
		offerLatest(pending, decodeRequest(raw))
	}
}

func decodeRequest(raw []byte) wsRequest {
	var in wsInbound
	if err := json.Unmarshal(raw, &in); err != nil {
		return wsRequest{invalid: errInvalidBodyPref + err.Error()}
	}
	if in.Type != msgAnalyze {
		return wsRequest{invalid: errUnknownMessage}
	}
	var req AnalyzeRequest
	if len(in.Data) > 0 {
		if err := json.Unmarshal(in.Data, &req); err != nil {
			return wsRequest{invalid: errInvalidBodyPref + err.Error()}
		}
	}
	return wsRequest{analyze: req}
}

// offerLatest queues req, replacing a request that has not been picked up yet.
// Only the reader goroutine sends on ch.
func offerLatest(ch chan wsRequest, req wsRequest) {
	select {
	case <-ch:
	default:
	}
	ch <- req
}

func writeEnvelope(conn *websocket.Conn, env wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}
