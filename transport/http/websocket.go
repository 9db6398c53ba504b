package http

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/slighter12/xano-mcp-go/logger"
	"github.com/slighter12/xano-mcp-go/mcp/jsonrpc"
	"github.com/slighter12/xano-mcp-go/transport/shared"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsReadLimit  = maxJSONRPCBodyBytes
)

// wsConn serializes writes on one WebSocket connection.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (w *wsConn) writeJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return w.conn.WriteJSON(v)
}

func (w *wsConn) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
}

// handleWebSocket upgrades the request and serves JSON-RPC messages until
// the peer disconnects. Every message is handled on its own goroutine so a
// slow tool call does not block the connection.
func (s *Server) handleWebSocket(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", "error", err, "remote_addr", c.RealIP())
		return nil
	}
	defer conn.Close()

	logger.Info("WebSocket client connected", "remote_addr", c.RealIP())
	ws := &wsConn{conn: conn}

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go keepAlive(ctx, ws)

	var inflight sync.WaitGroup
	defer inflight.Wait()

	for {
		messageType, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("WebSocket read failed", "error", err)
			}
			logger.Info("WebSocket client disconnected", "remote_addr", c.RealIP())
			return nil
		}
		if messageType != websocket.TextMessage {
			continue
		}

		inflight.Add(1)
		go func() {
			defer inflight.Done()
			if response := handleFrame(ctx, s.handler, frame); response != nil {
				if err := ws.writeJSON(response); err != nil {
					logger.Warn("WebSocket write failed", "error", err)
				}
			}
		}()
	}
}

func handleFrame(ctx context.Context, handler *shared.Handler, frame []byte) *jsonrpc.Response {
	msg, response, err := shared.ParseJSONRPCFrame(frame)
	if err != nil {
		return jsonrpc.ParseError()
	}
	if msg == nil {
		return response
	}
	logger.Debug("WebSocket message received", "method", msg.Method, "id", msg.ID)
	response = handler.Handle(ctx, *msg)
	if msg.IsNotification() {
		return nil
	}
	return response
}

func keepAlive(ctx context.Context, ws *wsConn) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ws.ping(); err != nil {
				return
			}
		}
	}
}

