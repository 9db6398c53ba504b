package xano

import (
	"context"
	"net/http"
)

// GetSchema returns the field list of a table.
func (c *Client) GetSchema(ctx context.Context, instance string, workspace, table ID) (any, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Instance: instance, Path: tablePath(workspace, table, "schema")})
}

// ReplaceSchema overwrites the full field list of a table.
func (c *Client) ReplaceSchema(ctx context.Context, instance string, workspace, table ID, schema []any) (any, error) {
	return c.Do(ctx, Request{
		Method:   http.MethodPut,
		Instance: instance,
		Path:     tablePath(workspace, table, "schema"),
		Body:     map[string]any{"schema": schema},
	})
}

// GetField returns one field of a table schema.
func (c *Client) GetField(ctx context.Context, instance string, workspace, table ID, field string) (any, error) {
	return c.Do(ctx, Request{
		Method:   http.MethodGet,
		Instance: instance,
		Path:     tablePath(workspace, table, "schema", field),
	})
}

// Field describes a column added to a table schema.
type Field struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Nullable    *bool    `json:"nullable,omitempty"`
	Required    *bool    `json:"required,omitempty"`
	Default     any      `json:"default,omitempty"`
	Access      string   `json:"access,omitempty"`
	Sensitive   *bool    `json:"sensitive,omitempty"`
	Style       string   `json:"style,omitempty"`
	Values      []string `json:"values,omitempty"`
	Table       *int64   `json:"tableref_id,omitempty"`
}

// AddField appends a field of the given type to a table schema.
func (c *Client) AddField(ctx context.Context, instance string, workspace, table ID, fieldType string, field Field) (any, error) {
	return c.Do(ctx, Request{
		Method:   http.MethodPost,
		Instance: instance,
		Path:     tablePath(workspace, table, "schema", "type", fieldType),
		Body:     field,
	})
}

// RenameField renames a field in place.
func (c *Client) RenameField(ctx context.Context, instance string, workspace, table ID, oldName, newName string) (any, error) {
	return c.Do(ctx, Request{
		Method:   http.MethodPost,
		Instance: instance,
		Path:     tablePath(workspace, table, "schema", "rename"),
		Body:     map[string]string{"old_name": oldName, "new_name": newName},
	})
}

// DeleteField removes a field from a table schema.
func (c *Client) DeleteField(ctx context.Context, instance string, workspace, table ID, field string) (any, error) {
	return c.Do(ctx, Request{
		Method:   http.MethodDelete,
		Instance: instance,
		Path:     tablePath(workspace, table, "schema", field),
	})
}
