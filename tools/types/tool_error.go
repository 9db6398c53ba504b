package types

import (
	"errors"
	"fmt"
)

// Kind classifies a failed tool invocation.
type Kind string

const (
	KindConfiguration    Kind = "ConfigurationError"
	KindUnknownTool      Kind = "UnknownTool"
	KindMissingParameter Kind = "MissingParameter"
	KindInvalidParameter Kind = "InvalidParameter"
	KindTransport        Kind = "TransportError"
	KindRemote           Kind = "RemoteApplicationError"
	KindInternal         Kind = "InternalError"
)

// ToolError marks tool failures that should be surfaced as structured isError payloads.
type ToolError struct {
	Kind    Kind
	Message string
	Data    map[string]any
}

func (e *ToolError) Error() string {
	if e == nil {
		return "tool error"
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Kind != "" {
		return fmt.Sprintf("tool error: %s", e.Kind)
	}
	return "tool error"
}

func NewToolError(kind Kind, message string, data map[string]any) *ToolError {
	return &ToolError{Kind: kind, Message: message, Data: data}
}

// NewMissingParameter reports a required argument that was not supplied.
func NewMissingParameter(parameter string) *ToolError {
	return NewToolError(KindMissingParameter, fmt.Sprintf("missing required parameter %q", parameter), map[string]any{
		"parameter": parameter,
	})
}

// NewInvalidParameter reports an argument of the wrong type or value.
func NewInvalidParameter(parameter, expected, reason string) *ToolError {
	data := map[string]any{"parameter": parameter}
	message := fmt.Sprintf("invalid parameter %q", parameter)
	if expected != "" {
		data["expected"] = expected
		message += ": expected " + expected
	}
	if reason != "" {
		data["reason"] = reason
		message += ": " + reason
	}
	return NewToolError(KindInvalidParameter, message, data)
}

func AsToolError(err error) (*ToolError, bool) {
	if err == nil {
		return nil, false
	}
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return toolErr, true
	}
	return nil, false
}
