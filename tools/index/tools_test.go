package index

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

func TestCreateIndexPaths(t *testing.T) {
	fields := []any{map[string]any{"name": "email", "op": "asc"}}
	tests := []struct {
		name types.Name
		kind string
		body string
	}{
		{CreateBTreeIndex, "btree", `{"fields":[{"name":"email","op":"asc"}]}`},
		{CreateUniqueIndex, "unique", `{"fields":[{"name":"email","op":"asc"}]}`},
		{CreateSpatialIndex, "spatial", `{"fields":[{"name":"email","op":"asc"}]}`},
		{CreateVectorIndex, "vector", `{"fields":[{"name":"email","op":"asc"}]}`},
		{CreateSearchIndex, "search", `{"lang":"english","fields":[{"name":"email","op":"asc"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name.String(), func(t *testing.T) {
			fake := xanotest.New(t)
			tool := findTool(t, GetAllTools(fake.Client()), tt.name)

			got, err := tool.Execute(context.Background(), map[string]any{
				"instance_name": xanotest.Instance,
				"workspace_id":  float64(1),
				"table_id":      float64(2),
				"fields":        fields,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.kind, got.(map[string]any)["type"])

			req, _ := fake.LastRequest()
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, "/i/"+xanotest.Instance+"/meta/workspace/1/table/2/index/"+tt.kind, req.Path)
			assert.JSONEq(t, tt.body, string(req.Body))
		})
	}
}

func TestSearchIndexKeepsNameAndLanguage(t *testing.T) {
	fake := xanotest.New(t)
	tool := findTool(t, GetAllTools(fake.Client()), CreateSearchIndex)

	_, err := tool.Execute(context.Background(), map[string]any{
		"instance_name": xanotest.Instance,
		"workspace_id":  "1",
		"table_id":      "2",
		"name":          "title_search",
		"lang":          "french",
		"fields":        []any{map[string]any{"name": "title", "priority": float64(1)}},
	})
	require.NoError(t, err)

	req, _ := fake.LastRequest()
	assert.JSONEq(t, `{"name":"title_search","lang":"french","fields":[{"name":"title","priority":1}]}`, string(req.Body))
}

func TestListAndDeleteIndex(t *testing.T) {
	fake := xanotest.New(t)
	all := GetAllTools(fake.Client())
	ctx := context.Background()
	args := map[string]any{"instance_name": xanotest.Instance, "workspace_id": "1", "table_id": "2"}

	listed, err := findTool(t, all, ListIndexes).Execute(ctx, args)
	require.NoError(t, err)
	assert.Equal(t, []any{}, listed)

	args["index_id"] = float64(7)
	_, err = findTool(t, all, DeleteIndex).Execute(ctx, args)
	require.NoError(t, err)
	req, _ := fake.LastRequest()
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/i/"+xanotest.Instance+"/meta/workspace/1/table/2/index/7", req.Path)
}
