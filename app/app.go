// Package app wires the configured transport to the tool catalog and runs
// it until shutdown.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/slighter12/xano-mcp-go/config"
	"github.com/slighter12/xano-mcp-go/logger"
	"github.com/slighter12/xano-mcp-go/tools"
	"github.com/slighter12/xano-mcp-go/transport/http"
	"github.com/slighter12/xano-mcp-go/transport/shared"
	"github.com/slighter12/xano-mcp-go/transport/stdio"
	"github.com/slighter12/xano-mcp-go/xano"
)

// Options carries process-level inputs that are not part of Config.
type Options struct {
	// ConfigPath is watched for logging changes when set.
	ConfigPath string
	// Overrides are re-applied whenever the config file is reloaded.
	Overrides []func(*config.Config)

	Stdin  io.Reader
	Stdout io.Writer
}

// NewToolManager builds the registry of every Xano tool for cfg.
func NewToolManager(cfg *config.Config) (*tools.Manager, error) {
	manager := tools.NewManager()
	if err := manager.RegisterDefaultTools(xano.New(cfg)); err != nil {
		return nil, fmt.Errorf("register tools: %w", err)
	}
	return manager, nil
}

// Run serves MCP on the configured transport until ctx is done or, for
// stdio, the input is exhausted.
func Run(ctx context.Context, cfg *config.Config, opts Options) error {
	manager, err := NewToolManager(cfg)
	if err != nil {
		return err
	}
	handler := shared.NewHandler(manager, cfg)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return serve(ctx, cfg, handler, opts)
	})

	if opts.ConfigPath != "" {
		g.Go(func() error {
			err := config.Watch(ctx, opts.ConfigPath, reloadLogging(cfg.Logging), opts.Overrides...)
			if err != nil {
				// The server keeps running without hot reload.
				logger.Warn("Config watcher stopped", "error", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// reloadLogging applies the logging section of a reloaded config. Other
// sections need a restart.
func reloadLogging(current config.Logging) func(*config.Config) {
	return func(next *config.Config) {
		log := logger.Default()
		level := logger.GetLevelFromString(next.Logging.Level)
		log.SetLevel(level)

		if next.Logging.Format != current.Format {
			log.SetFormat(logger.Format(next.Logging.Format))
		}
		path := current.Path
		if next.Logging.Path != "" && next.Logging.Path != current.Path {
			if err := log.Rotate(next.Logging.Path); err != nil {
				logger.Warn("Failed to switch log file", "path", next.Logging.Path, "error", err)
			} else {
				path = next.Logging.Path
			}
		}
		current = next.Logging
		current.Path = path
		logger.Info("Logging config reloaded", "level", level.String(), "format", current.Format, "path", current.Path)
	}
}

func serve(ctx context.Context, cfg *config.Config, handler *shared.Handler, opts Options) error {
	logger.InfoContext(ctx, "Starting MCP server", "config", cfg)

	switch cfg.Transport {
	case config.TransportStdio:
		in, out := opts.Stdin, opts.Stdout
		if in == nil {
			in = os.Stdin
		}
		if out == nil {
			out = os.Stdout
		}
		return stdio.NewStdioServer(handler, in, out).Start(ctx)
	case config.TransportHTTP, config.TransportWebSocket:
		return http.NewServer(cfg, handler).Start(ctx)
	default:
		return &config.Error{Field: "transport", Message: fmt.Sprintf("unsupported transport %q", cfg.Transport)}
	}
}
