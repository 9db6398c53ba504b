package types

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/slighter12/xano-mcp-go/mcp"
)

// Handler runs a tool with its decoded input.
type Handler[In any] func(ctx context.Context, in In) (any, error)

type boundTool[In any] struct {
	name        Name
	description string
	schema      mcp.InputSchema
	handler     Handler[In]
}

// New binds a typed handler to a tool name and schema. Arguments are decoded
// into In through their JSON form before the handler runs.
func New[In any](name Name, description string, schema mcp.InputSchema, handler func(context.Context, In) (any, error)) Tool {
	return &boundTool[In]{name: name, description: description, schema: schema, handler: handler}
}

func (t *boundTool[In]) Name() string                 { return t.name.String() }
func (t *boundTool[In]) Description() string          { return t.description }
func (t *boundTool[In]) InputSchema() mcp.InputSchema { return t.schema }

func (t *boundTool[In]) Execute(ctx context.Context, args map[string]any) (any, error) {
	var in In
	if err := Decode(args, &in); err != nil {
		return nil, err
	}
	return t.handler(ctx, in)
}

// Decode copies args into out. Type mismatches become InvalidParameter.
func Decode(args map[string]any, out any) error {
	if args == nil {
		args = map[string]any{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode arguments: %w", err)
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return NewInvalidParameter(typeErr.Field, typeErr.Type.String(), "got "+typeErr.Value)
		}
		return NewInvalidParameter("arguments", "", err.Error())
	}
	return nil
}
