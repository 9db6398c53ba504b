package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/slighter12/xano-mcp-go/config"
	"github.com/slighter12/xano-mcp-go/logger"
	"github.com/slighter12/xano-mcp-go/mcp"
	"github.com/slighter12/xano-mcp-go/mcp/jsonrpc"
	"github.com/slighter12/xano-mcp-go/transport/shared"
)

const maxJSONRPCBodyBytes = 1 << 20

const (
	headerSessionID       = "MCP-Session-Id"
	headerProtocolVersion = "MCP-Protocol-Version"
)

func RegisterRoutes(e *echo.Echo, s *Server) {
	e.GET("/", s.handleHTTPInfo)
	e.GET("/healthz", s.handleHealth)
	e.POST("/mcp", s.handleStreamableHTTPPost)
	e.GET("/mcp", s.handleStreamableHTTPGet)
	e.DELETE("/mcp", s.handleStreamableHTTPDelete)
	e.OPTIONS("/mcp", s.handleOptions)
	if s.config.Transport == config.TransportWebSocket {
		e.GET("/ws", s.handleWebSocket)
	}
}

func (s *Server) handleHTTPInfo(c echo.Context) error {
	info := map[string]any{
		"name":    mcp.ServerName,
		"version": mcp.ServerVersion,
		"type":    "xano-mcp",
		"capabilities": map[string]any{
			"streamable_http": true,
			"websocket":       s.config.Transport == config.TransportWebSocket,
		},
		"streamable_http_endpoint": "/mcp",
		"tools":                    s.handler.ToolManager().Len(),
	}
	if s.config.Transport == config.TransportWebSocket {
		info["websocket_endpoint"] = "/ws"
	}
	return c.JSON(http.StatusOK, info)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleOptions(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func invalidRequest(c echo.Context, status int, message string) error {
	return c.JSON(status, jsonrpc.NewErrorResponse(nil, jsonrpc.ErrInvalidRequest, message, nil))
}

func (s *Server) handleStreamableHTTPPost(c echo.Context) error {
	limitedBody := http.MaxBytesReader(c.Response(), c.Request().Body, maxJSONRPCBodyBytes)
	defer limitedBody.Close()

	body, err := io.ReadAll(limitedBody)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn("Request body too large", "limit_bytes", maxJSONRPCBodyBytes, "remote_addr", c.RealIP())
			return invalidRequest(c, http.StatusRequestEntityTooLarge, "Request body too large")
		}
		logger.Error("Failed to read request body", "error", err)
		return c.JSON(http.StatusBadRequest, jsonrpc.ParseError())
	}

	msg, prebuilt, err := shared.ParseJSONRPCFrame(body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, jsonrpc.ParseError())
	}
	if msg == nil {
		if prebuilt != nil {
			return c.JSON(http.StatusBadRequest, prebuilt)
		}
		return c.NoContent(http.StatusAccepted)
	}

	requestedVersion := strings.TrimSpace(c.Request().Header.Get(headerProtocolVersion))
	if requestedVersion != "" && !mcp.IsSupportedProtocolVersion(requestedVersion) {
		return invalidRequest(c, http.StatusBadRequest, "Unsupported MCP-Protocol-Version header")
	}

	if msg.Method == mcp.MethodInitialize {
		response, version := s.handler.Initialize(*msg)
		session := s.sessionManager.CreateSession(version)
		logger.Debug("MCP session created", "session_id", session.ID, "protocol_version", version)
		c.Response().Header().Set(headerSessionID, session.ID)
		return c.JSON(http.StatusOK, response)
	}

	sessionID := strings.TrimSpace(c.Request().Header.Get(headerSessionID))
	if sessionID == "" {
		return invalidRequest(c, http.StatusBadRequest, "Missing MCP-Session-Id header")
	}
	session, ok := s.sessionManager.TouchSession(sessionID)
	if !ok {
		return invalidRequest(c, http.StatusNotFound, "Unknown MCP session")
	}
	if requestedVersion != "" && requestedVersion != session.ProtocolVersion {
		return invalidRequest(c, http.StatusBadRequest, "Invalid MCP-Protocol-Version header")
	}
	c.Response().Header().Set(headerSessionID, sessionID)

	logger.Debug("Streamable HTTP request received", "method", msg.Method, "id", msg.ID, "session_id", sessionID)
	response := s.handler.Handle(c.Request().Context(), *msg)
	if msg.IsNotification() || response == nil {
		return c.NoContent(http.StatusAccepted)
	}

	if acceptsOnlyEventStream(c.Request().Header.Get(echo.HeaderAccept)) {
		return s.writeEventStream(c, response)
	}
	return c.JSON(http.StatusOK, response)
}

// writeEventStream answers one request as a single SSE message.
func (s *Server) writeEventStream(c echo.Context, response *jsonrpc.Response) error {
	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return c.JSON(http.StatusOK, response)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().WriteHeader(http.StatusOK)

	transport := NewStreamableHTTPTransport(c.Response().Writer, flusher)
	defer transport.Close()
	if err := transport.SendSSE("message", response); err != nil {
		logger.Warn("Failed to write SSE response", "error", err)
	}
	return nil
}

// handleStreamableHTTPGet refuses the optional server-initiated stream; the
// server never sends unsolicited messages.
func (s *Server) handleStreamableHTTPGet(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderAllow, strings.Join([]string{http.MethodPost, http.MethodDelete}, ", "))
	return c.NoContent(http.StatusMethodNotAllowed)
}

func (s *Server) handleStreamableHTTPDelete(c echo.Context) error {
	sessionID := strings.TrimSpace(c.Request().Header.Get(headerSessionID))
	if sessionID == "" {
		return invalidRequest(c, http.StatusBadRequest, "Missing MCP-Session-Id header")
	}
	session, ok := s.sessionManager.RemoveSession(sessionID)
	if !ok {
		return invalidRequest(c, http.StatusNotFound, "Unknown MCP session")
	}
	logger.Debug("MCP session closed", "session_id", sessionID, "age", time.Since(session.Created).Round(time.Second))
	return c.NoContent(http.StatusNoContent)
}
