// Package stdio serves MCP over newline-delimited JSON on a reader/writer
// pair, normally the process stdin and stdout.
package stdio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/slighter12/xano-mcp-go/logger"
	"github.com/slighter12/xano-mcp-go/mcp/jsonrpc"
	"github.com/slighter12/xano-mcp-go/transport/shared"
)

// StdioServer handles MCP communication over stdio. Requests are processed
// one at a time in arrival order.
type StdioServer struct {
	handler *shared.Handler
	in      io.Reader
	out     io.Writer
	mu      sync.Mutex
}

// NewStdioServer creates a stdio server reading requests from in and writing
// responses to out.
func NewStdioServer(handler *shared.Handler, in io.Reader, out io.Writer) *StdioServer {
	return &StdioServer{
		handler: handler,
		in:      in,
		out:     out,
	}
}

// Start serves until the input reaches EOF or ctx is done. EOF is a clean
// shutdown and returns nil.
func (s *StdioServer) Start(ctx context.Context) error {
	reader := bufio.NewReader(s.in)
	lines := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		for {
			line, err := reader.ReadBytes('\n')
			if len(bytes.TrimSpace(line)) > 0 {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	logger.Debug("Stdio server started and waiting for messages")

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Stdio server stopping", "reason", ctx.Err())
			return nil
		case line, ok := <-lines:
			if !ok {
				err := <-readErr
				if errors.Is(err, io.EOF) {
					logger.Debug("Stdio EOF received, terminating server")
					return nil
				}
				return fmt.Errorf("read stdin: %w", err)
			}
			if err := s.handleFrame(ctx, line); err != nil {
				return err
			}
		}
	}
}

func (s *StdioServer) handleFrame(ctx context.Context, frame []byte) error {
	msg, response, err := shared.ParseJSONRPCFrame(frame)
	if err != nil {
		logger.Warn("Ignoring malformed stdio frame", "error", err)
		return nil
	}
	if msg != nil {
		logger.Debug("Stdio message received", "method", msg.Method, "id", msg.ID)
		response = s.handler.Handle(ctx, *msg)
		if msg.IsNotification() {
			response = nil
		}
	}
	if response == nil {
		return nil
	}
	return s.write(response)
}

func (s *StdioServer) write(response *jsonrpc.Response) error {
	payload, err := json.Marshal(response)
	if err != nil {
		logger.Error("Error encoding response", "error", err)
		payload, _ = json.Marshal(jsonrpc.NewErrorResponse(response.ID, jsonrpc.ErrInternalError, "Internal error", nil))
	}
	payload = append(payload, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.out.Write(payload); err != nil {
		return fmt.Errorf("write stdout: %w", err)
	}
	logger.Debug("Stdio response sent", "id", response.ID, "error", response.Error != nil)
	return nil
}
