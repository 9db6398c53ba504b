package stdio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slighter12/xano-mcp-go/logger"
	"github.com/slighter12/xano-mcp-go/tools"
	"github.com/slighter12/xano-mcp-go/transport/shared"
	"github.com/slighter12/xano-mcp-go/xano/xanotest"
)

func TestMain(m *testing.M) {
	// Set up logging
	if err := logger.Init(logger.GetLevelFromString("debug"), logger.FormatJSON); err != nil {
		panic(err)
	}

	// Run tests
	os.Exit(m.Run())
}

func newHandler(t *testing.T) (*shared.Handler, *xanotest.Server) {
	t.Helper()
	fake := xanotest.New(t)
	manager := tools.NewManager()
	require.NoError(t, manager.RegisterDefaultTools(fake.Client()))
	return shared.NewHandler(manager, fake.Config()), fake
}

func serve(t *testing.T, input string) []map[string]any {
	t.Helper()
	handler, _ := newHandler(t)
	var out bytes.Buffer
	server := NewStdioServer(handler, strings.NewReader(input), &out)
	require.NoError(t, server.Start(context.Background()))

	var responses []map[string]any
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var response map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &response))
		responses = append(responses, response)
	}
	return responses
}

func TestStdioServer(t *testing.T) {
	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-06-18"}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"xano_get_instance_details","arguments":{"instance_name":"x1-test"}}}`,
	}, "\n") + "\n"

	responses := serve(t, input)
	require.Len(t, responses, 4)

	for i, want := range []float64{1, 2, 3, 4} {
		assert.Equal(t, want, responses[i]["id"], "responses are written in request order")
	}
	assert.Equal(t, "2025-06-18", responses[0]["result"].(map[string]any)["protocolVersion"])
	assert.Equal(t, false, responses[3]["result"].(map[string]any)["isError"])
}

func TestStdioServerReportsBadFrames(t *testing.T) {
	responses := serve(t, "not json\n"+`{"jsonrpc":"2.0","id":9,"method":"nope"}`+"\n")
	require.Len(t, responses, 2)

	assert.Equal(t, float64(-32700), responses[0]["error"].(map[string]any)["code"])
	assert.Equal(t, float64(-32601), responses[1]["error"].(map[string]any)["code"])
}

func TestStdioServerHandlesMissingTrailingNewline(t *testing.T) {
	responses := serve(t, `{"jsonrpc":"2.0","id":"a","method":"ping"}`)
	require.Len(t, responses, 1)
	assert.Equal(t, "a", responses[0]["id"])
}

func TestStdioServerStopsOnCancel(t *testing.T) {
	handler, _ := newHandler(t)
	reader, writer := io.Pipe()
	defer writer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewStdioServer(handler, reader, io.Discard).Start(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("stdio server did not stop after cancellation")
	}
}
