package file

import (
	"context"
	"net/http"
	"strings"
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

func workspaceArgs(extra map[string]any) map[string]any {
	args := map[string]any{"instance_name": xanotest.Instance, "workspace_id": "3"}
	for k, v := range extra {
		args[k] = v
	}
	return args
}

func TestUploadThenList(t *testing.T) {
	fake := xanotest.New(t)
	all := GetAllTools(fake.Client())
	ctx := context.Background()

	uploaded, err := findTool(t, all, UploadFile).Execute(ctx, workspaceArgs(map[string]any{
		"filename":       "hello.txt",
		"content_base64": "aGVsbG8gd29ybGQ=",
		"type":           "attachment",
		"access":         "private",
	}))
	require.NoError(t, err)
	file := uploaded.(map[string]any)
	assert.Equal(t, "hello.txt", file["name"])
	assert.Equal(t, float64(len("hello world")), file["size"])
	assert.Equal(t, "private", file["access"])

	req, _ := fake.LastRequest()
	assert.True(t, strings.HasPrefix(req.ContentType, "multipart/form-data"))

	listed, err := findTool(t, all, ListFiles).Execute(ctx, workspaceArgs(nil))
	require.NoError(t, err)
	assert.Len(t, listed.(map[string]any)["items"], 1)
}

func TestUploadRejectsInvalidBase64(t *testing.T) {
	fake := xanotest.New(t)
	_, err := findTool(t, GetAllTools(fake.Client()), UploadFile).Execute(context.Background(), workspaceArgs(map[string]any{
		"filename":       "x.bin",
		"content_base64": "not base64!",
	}))

	toolErr, ok := types.AsToolError(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, types.KindInvalidParameter, toolErr.Kind)
	assert.Equal(t, "content_base64", toolErr.Data["parameter"])
	assert.Zero(t, fake.RequestCount())
}

func TestDeleteFiles(t *testing.T) {
	fake := xanotest.New(t)
	all := GetAllTools(fake.Client())
	ctx := context.Background()
	prefix := "/i/" + xanotest.Instance + "/meta/workspace/3/file"

	_, err := findTool(t, all, DeleteFile).Execute(ctx, workspaceArgs(map[string]any{"file_id": float64(5)}))
	require.NoError(t, err)
	req, _ := fake.LastRequest()
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, prefix+"/5", req.Path)

	_, err = findTool(t, all, BulkDeleteFiles).Execute(ctx, workspaceArgs(map[string]any{"file_ids": []any{float64(5), "6"}}))
	require.NoError(t, err)
	req, _ = fake.LastRequest()
	assert.Equal(t, prefix+"/bulk_delete", req.Path)
	assert.JSONEq(t, `{"file_ids":[5,6]}`, string(req.Body))
}

func TestDecodeContentAcceptsURLAlphabet(t *testing.T) {
	data, err := DecodeContent("content_base64", "_-8")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xef}, data)
}
