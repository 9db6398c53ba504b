package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/slighter12/xano-mcp-go/app"
	"github.com/slighter12/xano-mcp-go/config"
	"github.com/slighter12/xano-mcp-go/logger"
	"github.com/slighter12/xano-mcp-go/mcp"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet(mcp.ServerName, flag.ContinueOnError)
	token := fs.String("token", "", "Xano Metadata API token (default $XANO_API_TOKEN)")
	transport := fs.String("transport", "", "transport: stdio, http or websocket")
	host := fs.String("host", "", "listen host for http and websocket")
	port := fs.Int("port", 0, "listen port for http and websocket")
	debug := fs.Bool("debug", false, "log every outbound Xano request")
	configPath := fs.String("config", "", "config file (.json, .yaml or .toml)")
	listTools := fs.Bool("list-tools", false, "print the tool catalog and exit")
	initConfig := fs.Bool("init-config", false, "write a default config file and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	// Flags win over env and file values, so only explicitly set ones apply.
	var overrides []func(*config.Config)
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "token":
			overrides = append(overrides, func(c *config.Config) { c.Xano.APIToken = *token })
		case "transport":
			overrides = append(overrides, func(c *config.Config) { c.Transport = *transport })
		case "host":
			overrides = append(overrides, func(c *config.Config) { c.Server.Host = *host })
		case "port":
			overrides = append(overrides, func(c *config.Config) { c.Server.Port = *port })
		case "debug":
			overrides = append(overrides, func(c *config.Config) { c.Server.Debug = *debug })
		}
	})

	path := *configPath
	if path == "" {
		resolved, err := config.ResolveConfigPath()
		if err != nil {
			log.Printf("Failed to resolve config path: %v", err)
			return 1
		}
		path = resolved
	}

	if *initConfig {
		return writeDefaultConfig(path)
	}
	if *listTools {
		return printTools(os.Stdout)
	}

	cfg, err := config.LoadConfig(path, overrides...)
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}

	if err := logger.Init(logger.GetLevelFromString(cfg.Logging.Level), logger.Format(cfg.Logging.Format), cfg.Logging.Path); err != nil {
		log.Printf("Failed to initialize logger: %v", err)
		return 1
	}
	defer logger.Default().Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx, cfg, app.Options{ConfigPath: path, Overrides: overrides}); err != nil {
		logger.Error("Server error", "error", err)
		return 1
	}
	logger.Info("Server stopped")
	return 0
}

func writeDefaultConfig(path string) int {
	if path == "" {
		defaultPath, err := config.DefaultConfigPath()
		if err != nil {
			color.Red("Error: %v\n", err)
			return 1
		}
		path = defaultPath
	}
	if err := config.EnsureDefaultConfig(path); err != nil {
		color.Red("Error: %v\n", err)
		return 1
	}
	color.Green("Config written to %s\n", path)
	return 0
}

// printTools lists the catalog without contacting Xano, so no token is needed.
func printTools(w io.Writer) int {
	cfg := config.NewConfig()
	cfg.Xano.APIToken = "list-tools"
	manager, err := app.NewToolManager(cfg)
	if err != nil {
		color.Red("Error: %v\n", err)
		return 1
	}

	cyan := color.New(color.FgCyan, color.Bold)
	yellow := color.New(color.FgYellow)
	for _, tool := range manager.GetTools() {
		cyan.Fprintln(w, tool.Name)
		fmt.Fprintf(w, "  %s\n", tool.Description)
		if len(tool.InputSchema.Required) > 0 {
			yellow.Fprintf(w, "  required: %s\n", strings.Join(tool.InputSchema.Required, ", "))
		}
	}
	fmt.Fprintf(w, "\n%d tools\n", manager.Len())
	return 0
}
