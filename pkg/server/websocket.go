package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"phonecleaner/pkg/channel"
	"phonecleaner/pkg/log"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	wsPingInterval = 20 * time.Second
	wsReadTimeout  = 60 * time.Second
	wsWriteTimeout = 3 * time.Second
	wsReadLimit    = 1 << 20
)

// SocketRequest is one method call frame on the WebSocket transport.
type SocketRequest struct {
	ID        uint64          `json:"id"`
	Channel   string          `json:"channel"`
	Method    string          `json:"method"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// SocketResponse answers the SocketRequest with the same ID.
type SocketResponse struct {
	ID uint64 `json:"id"`
	Envelope
}

// socketHub tracks live connections so shutdown can close them.
type socketHub struct {
	mu       sync.Mutex
	conns    map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
}

func newSocketHub() *socketHub {
	return &socketHub{
		conns: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
	}
}

func (h *socketHub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

func (h *socketHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
}

func (h *socketHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *socketHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		_ = conn.Close()
		delete(h.conns, conn)
	}
}

// serveWebSocket handles GET /channels/ws. Frames on one connection are
// answered in arrival order.
func (cs *ChannelServer) serveWebSocket(ctx echo.Context) error {
	conn, err := cs.sockets.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		// The upgrader has already written the failure response.
		return nil
	}

	cs.sockets.add(conn)
	defer func() {
		cs.sockets.remove(conn)
		_ = conn.Close()
	}()

	var writeMu sync.Mutex
	write := func(messageType int, data []byte) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteMessage(messageType, data)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		ping := time.NewTicker(wsPingInterval)
		defer ping.Stop()
		for {
			select {
			case <-done:
				return
			case <-ping.C:
				if err := write(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	reqCtx := ctx.Request().Context()
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Msg("WebSocket closed")
			}
			return nil
		}
		if messageType != websocket.TextMessage {
			continue
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		resp := cs.answerFrame(reqCtx, data)
		payload, err := json.Marshal(resp)
		if err != nil {
			log.Error().Err(err).Uint64("id", resp.ID).Msg("Failed to encode WebSocket response")
			continue
		}
		if err := write(websocket.TextMessage, payload); err != nil {
			return nil
		}
	}
}

func (cs *ChannelServer) answerFrame(ctx context.Context, data []byte) SocketResponse {
	var req SocketRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return SocketResponse{Envelope: Envelope{Error: "malformed method call", Code: CodeBadRequest}}
	}
	if req.Channel == "" {
		return SocketResponse{ID: req.ID, Envelope: Envelope{Error: "channel name is required", Code: CodeBadRequest}}
	}

	_, envelope := cs.dispatch(ctx, req.Channel, channel.MethodCall{
		Method:    req.Method,
		Arguments: req.Arguments,
	})
	return SocketResponse{ID: req.ID, Envelope: envelope}
}
