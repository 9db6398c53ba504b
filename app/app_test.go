package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slighter12/xano-mcp-go/config"
	"github.com/slighter12/xano-mcp-go/logger"
	"github.com/slighter12/xano-mcp-go/xano/xanotest"
)

func TestRunStdioUntilEOF(t *testing.T) {
	fake := xanotest.New(t)
	cfg := fake.Config()
	cfg.Transport = config.TransportStdio

	var out bytes.Buffer
	err := Run(context.Background(), cfg, Options{
		Stdin:  strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}` + "\n"),
		Stdout: &out,
	})
	require.NoError(t, err)

	var response struct {
		Result struct {
			Tools []map[string]any `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &response))
	assert.Len(t, response.Result.Tools, 42)
}

func TestRunRejectsUnknownTransport(t *testing.T) {
	fake := xanotest.New(t)
	cfg := fake.Config()
	cfg.Transport = "carrier-pigeon"

	err := Run(context.Background(), cfg, Options{Stdin: strings.NewReader(""), Stdout: &bytes.Buffer{}})
	var cfgErr *config.Error
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.Equal(t, "transport", cfgErr.Field)
}

func TestRunReloadsLogLevel(t *testing.T) {
	require.NoError(t, logger.Init(logger.GetLevelFromString("info"), logger.FormatText))
	t.Setenv("XANO_API_TOKEN", xanotest.Token)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: info\n  format: text\n"), 0o600))

	fake := xanotest.New(t)
	cfg := fake.Config()
	cfg.Transport = config.TransportHTTP
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, Options{ConfigPath: path}) }()

	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n  format: text\n"), 0o600))
	assert.Eventually(t, func() bool {
		return logger.Default().Level().String() == "DEBUG"
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestReloadLoggingSwitchesFormatAndFile(t *testing.T) {
	previous := logger.Default()
	require.NoError(t, logger.Init(logger.GetLevelFromString("info"), logger.FormatText))
	t.Cleanup(func() {
		logger.Default().Close()
		require.NoError(t, logger.Init(previous.Level(), logger.FormatText))
	})

	logPath := filepath.Join(t.TempDir(), "logs", "xano-mcp.log")
	next := config.NewConfig()
	next.Logging = config.Logging{Level: "warn", Format: "json", Path: logPath}

	reload := reloadLogging(config.Logging{Level: "info", Format: "text"})
	reload(next)
	assert.Equal(t, "WARN", logger.Default().Level().String())

	logger.Warn("after reload", "tool", "xano_list_tables")

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	var entry map[string]any
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	assert.Equal(t, "after reload", entry["msg"])
	assert.Equal(t, "xano_list_tables", entry["tool"])
}
