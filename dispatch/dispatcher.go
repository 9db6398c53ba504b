// Package dispatch turns tool invocations into results, converting every
// failure into a classified error instead of letting it escape.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"time"

	"github.com/slighter12/xano-mcp-go/config"
	"github.com/slighter12/xano-mcp-go/logger"
	"github.com/slighter12/xano-mcp-go/tools/types"
	"github.com/slighter12/xano-mcp-go/xano"
)

// Error is the failure variant of a Result.
type Error struct {
	Kind    types.Kind
	Message string
	Data    map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Fields flattens the error into {kind, message, ...data}.
func (e *Error) Fields() map[string]any {
	out := make(map[string]any, len(e.Data)+2)
	for k, v := range e.Data {
		out[k] = v
	}
	out["kind"] = string(e.Kind)
	out["message"] = e.Message
	return out
}

// Result is either a payload or an error.
type Result struct {
	Payload any
	Error   *Error
}

// OK reports whether the invocation succeeded.
func (r Result) OK() bool { return r.Error == nil }

// Dispatcher looks tools up, validates their arguments and runs them.
type Dispatcher struct {
	registry      types.ToolRegistry
	rejectUnknown bool
}

// New creates a dispatcher over registry using the argument policy of cfg.
func New(registry types.ToolRegistry, cfg *config.Config) *Dispatcher {
	return &Dispatcher{
		registry:      registry,
		rejectUnknown: cfg.RejectUnknownArguments(),
	}
}

// Dispatch runs the named tool. It never panics; handler panics become
// InternalError results. Cancellation of ctx is not passed to the handler,
// which finishes or times out on its own.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args map[string]any) (result Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "Tool panicked", "tool", name, "panic", r, "stack", string(debug.Stack()))
			result = Result{Error: &Error{
				Kind:    types.KindInternal,
				Message: fmt.Sprintf("tool %s failed unexpectedly", name),
				Data:    map[string]any{"tool": name},
			}}
		}
	}()

	tool, ok := d.registry.GetTool(name)
	if !ok {
		logger.Warn("Unknown tool requested", "tool", name)
		return Result{Error: &Error{
			Kind:    types.KindUnknownTool,
			Message: fmt.Sprintf("unknown tool: %s", name),
			Data:    map[string]any{"tool": name},
		}}
	}

	if args == nil {
		args = map[string]any{}
	}
	if err := types.Validate(tool.InputSchema(), args, d.rejectUnknown); err != nil {
		classified := Classify(err)
		logger.Debug("Tool arguments rejected", "tool", name, "kind", classified.Kind, "error", classified.Message)
		return Result{Error: classified}
	}

	logger.Debug("Executing tool", "tool", name, "arguments", argumentNames(args))
	payload, err := tool.Execute(context.WithoutCancel(ctx), args)
	if err != nil {
		classified := Classify(err)
		logger.Warn("Tool failed", "tool", name, "kind", classified.Kind, "error", classified.Message,
			"duration", time.Since(start))
		return Result{Error: classified}
	}

	logger.Debug("Tool completed", "tool", name, "duration", time.Since(start))
	return Result{Payload: payload}
}

// Classify maps an error to its kind, keeping the remote status and message.
func Classify(err error) *Error {
	var dispatchErr *Error
	if errors.As(err, &dispatchErr) {
		return dispatchErr
	}

	if toolErr, ok := types.AsToolError(err); ok {
		data := make(map[string]any, len(toolErr.Data))
		for k, v := range toolErr.Data {
			data[k] = v
		}
		return &Error{Kind: toolErr.Kind, Message: toolErr.Error(), Data: data}
	}

	var inputErr *xano.InputError
	if errors.As(err, &inputErr) {
		return Classify(types.NewInvalidParameter(inputErr.Parameter, "", inputErr.Reason))
	}

	var remoteErr *xano.RemoteError
	if errors.As(err, &remoteErr) {
		data := map[string]any{
			"status":    remoteErr.Status,
			"retryable": xano.IsRetryable(err),
		}
		if remoteErr.Code != "" {
			data["code"] = remoteErr.Code
		}
		switch {
		case remoteErr.Payload != nil:
			data["remote"] = remoteErr.Payload
		case remoteErr.Body != "":
			data["remote"] = remoteErr.Body
		}
		return &Error{Kind: types.KindRemote, Message: remoteErr.Message, Data: data}
	}

	var transportErr *xano.TransportError
	if errors.As(err, &transportErr) {
		return &Error{
			Kind:    types.KindTransport,
			Message: transportErr.Err.Error(),
			Data: map[string]any{
				"operation": transportErr.Op,
				"retryable": xano.IsRetryable(err),
			},
		}
	}

	var cfgErr *config.Error
	if errors.As(err, &cfgErr) {
		return &Error{Kind: types.KindConfiguration, Message: cfgErr.Error(), Data: map[string]any{"field": cfgErr.Field}}
	}

	return &Error{Kind: types.KindInternal, Message: err.Error(), Data: map[string]any{}}
}

func argumentNames(args map[string]any) []string {
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
