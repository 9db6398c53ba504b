// Package http serves MCP over Streamable HTTP and WebSocket using echo.
package http

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/slighter12/xano-mcp-go/config"
	"github.com/slighter12/xano-mcp-go/logger"
	"github.com/slighter12/xano-mcp-go/transport/shared"
)

const (
	sessionTimeout  = 30 * time.Minute
	cleanupInterval = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

type Server struct {
	handler        *shared.Handler
	sessionManager *SessionManager
	config         *config.Config
	echo           *echo.Echo
	upgrader       websocket.Upgrader
}

// NewServer creates an HTTP server answering requests with handler. The
// WebSocket endpoint is only routed when cfg selects that transport.
func NewServer(cfg *config.Config, handler *shared.Handler) *Server {
	s := &Server{
		handler:        handler,
		sessionManager: NewSessionManager(),
		config:         cfg,
		echo:           echo.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	s.upgrader.CheckOrigin = s.originAllowed
	s.setupEcho()
	return s
}

func (s *Server) setupEcho() {
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())
	s.echo.Use(s.requestLogger)
	s.echo.Use(s.originGuard)
	// echo treats an empty AllowOrigins as "*", so CORS is only enabled for
	// an explicit allowlist.
	if len(s.config.Server.AllowedOrigins) > 0 {
		s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:  s.config.Server.AllowedOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, headerSessionID, headerProtocolVersion},
			ExposeHeaders: []string{headerSessionID},
		}))
	}
	RegisterRoutes(s.echo, s)
}

// originAllowed accepts requests without an Origin header (non-browser
// clients) and browser requests from a configured origin.
func (s *Server) originAllowed(r *http.Request) bool {
	origin := r.Header.Get(echo.HeaderOrigin)
	if origin == "" {
		return true
	}
	origin = strings.TrimRight(strings.ToLower(origin), "/")
	return slices.Contains(s.config.Server.AllowedOrigins, origin)
}

func (s *Server) originGuard(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.originAllowed(c.Request()) {
			logger.Warn("Request from disallowed origin rejected",
				"origin", c.Request().Header.Get(echo.HeaderOrigin),
				"path", c.Request().URL.Path,
				"remote_addr", c.RealIP(),
			)
			return invalidRequest(c, http.StatusForbidden, "Origin not allowed")
		}
		return next(c)
	}
}

// requestLogger writes one debug line per request through the shared logger
// so stdout stays free of access logs.
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		logger.Debug("HTTP request",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", c.Response().Status,
			"remote_addr", c.RealIP(),
			"duration", time.Since(start),
		)
		return err
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) GetSessionManager() *SessionManager {
	return s.sessionManager
}

// Start listens on the configured address until ctx is done, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	go s.startCleanupGoroutine(ctx)

	addr := s.config.Address()
	logger.Info("HTTP server starting to listen", "address", addr, "transport", s.config.Transport)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("HTTP server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.sessionManager.CloseAll()
	return nil
}

func (s *Server) startCleanupGoroutine(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.sessionManager.CleanupSessions(sessionTimeout); removed > 0 {
				logger.Debug("Expired MCP sessions removed", "count", removed)
			}
		}
	}
}
