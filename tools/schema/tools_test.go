package schema

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slighter12/xano-mcp-go/tools/types"
	"github.com/slighter12/xano-mcp-go/xano/xanotest"
)

func findTool(t *testing.T, all []types.Tool, name types.Name) types.Tool {
	t.Helper()
	for _, tool := range all {
		if tool.Name() == name.String() {
			return tool
		}
	}
	t.Fatalf("tool %s not found", name)
	return nil
}

func tableArgs(extra map[string]any) map[string]any {
	args := map[string]any{"instance_name": xanotest.Instance, "workspace_id": "1", "table_id": "2"}
	for k, v := range extra {
		args[k] = v
	}
	return args
}

func TestSchemaToolsRequests(t *testing.T) {
	prefix := "/i/" + xanotest.Instance + "/meta/workspace/1/table/2/schema"
	tests := []struct {
		name   types.Name
		args   map[string]any
		method string
		path   string
		body   string
	}{
		{GetTableSchema, tableArgs(nil), http.MethodGet, prefix, ""},
		{UpdateTableSchema, tableArgs(map[string]any{"schema": []any{map[string]any{"name": "id", "type": "int"}}}),
			http.MethodPut, prefix, `{"schema":[{"name":"id","type":"int"}]}`},
		{AddFieldToSchema, tableArgs(map[string]any{"field_name": "email", "field_type": "email", "required": true}),
			http.MethodPost, prefix + "/type/email", `{"name":"email","required":true}`},
		{RenameSchemaField, tableArgs(map[string]any{"old_name": "mail", "new_name": "email"}),
			http.MethodPost, prefix + "/rename", `{"old_name":"mail","new_name":"email"}`},
		{DeleteField, tableArgs(map[string]any{"field_name": "email"}), http.MethodDelete, prefix + "/email", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name.String(), func(t *testing.T) {
			fake := xanotest.New(t)
			tool := findTool(t, GetAllTools(fake.Client()), tt.name)

			_, err := tool.Execute(context.Background(), tt.args)
			require.NoError(t, err)

			req, ok := fake.LastRequest()
			require.True(t, ok)
			assert.Equal(t, tt.method, req.Method)
			assert.Equal(t, tt.path, req.Path)
			if tt.body != "" {
				assert.JSONEq(t, tt.body, string(req.Body))
			}
		})
	}
}

func TestAddThenGetField(t *testing.T) {
	fake := xanotest.New(t)
	all := GetAllTools(fake.Client())
	ctx := context.Background()

	_, err := findTool(t, all, AddFieldToSchema).Execute(ctx, tableArgs(map[string]any{
		"field_name": "status", "field_type": "enum", "values": []any{"open", "closed"},
	}))
	require.NoError(t, err)

	got, err := findTool(t, all, GetSchemaField).Execute(ctx, tableArgs(map[string]any{"field_name": "status"}))
	require.NoError(t, err)
	field := got.(map[string]any)
	assert.Equal(t, "enum", field["type"])
	assert.Equal(t, []any{"open", "closed"}, field["values"])
}

func TestFieldNameIsPathEscaped(t *testing.T) {
	fake := xanotest.New(t)
	tool := findTool(t, GetAllTools(fake.Client()), GetSchemaField)

	_, err := tool.Execute(context.Background(), tableArgs(map[string]any{"field_name": "a/b"}))
	require.Error(t, err)

	req, _ := fake.LastRequest()
	assert.Equal(t, "/i/"+xanotest.Instance+"/meta/workspace/1/table/2/schema/a%2Fb", req.RawPath)
}
