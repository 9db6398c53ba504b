package xano

import (
	"context"
	"net/http"
)

// FileQuery filters the file listing.
type FileQuery struct {
	Paging
	Search string
	Access string
	Sort   string
	Order  string
}

// ListFiles lists the files stored in a workspace.
func (c *Client) ListFiles(ctx context.Context, instance string, workspace ID, q FileQuery) (any, error) {
	query := q.values()
	for key, value := range map[string]string{"search": q.Search, "access": q.Access, "sort": q.Sort, "order": q.Order} {
		if value != "" {
			query.Set(key, value)
		}
	}
	return c.Do(ctx, Request{
		Method:   http.MethodGet,
		Instance: instance,
		Path:     workspacePath(workspace, "file"),
		Query:    query,
	})
}

// Upload is a file sent to workspace storage.
type Upload struct {
	Filename string
	Content  []byte
	// Type is one of image, video, audio or attachment; empty lets the API
	// infer it.
	Type   string
	Access string
}

// UploadFile stores a file in a workspace.
func (c *Client) UploadFile(ctx context.Context, instance string, workspace ID, upload Upload) (any, error) {
	fields := map[string]string{}
	if upload.Type != "" {
		fields["type"] = upload.Type
	}
	if upload.Access != "" {
		fields["access"] = upload.Access
	}
	return c.Do(ctx, Request{
		Method:   http.MethodPost,
		Instance: instance,
		Path:     workspacePath(workspace, "file"),
		Form: &Form{
			Fields:    fields,
			FileField: "content",
			Filename:  upload.Filename,
			Content:   upload.Content,
		},
	})
}

// DeleteFile removes a stored file.
func (c *Client) DeleteFile(ctx context.Context, instance string, workspace, file ID) (any, error) {
	return c.Do(ctx, Request{
		Method:   http.MethodDelete,
		Instance: instance,
		Path:     workspacePath(workspace, "file", file.String()),
	})
}

// BulkDeleteFiles removes several stored files.
func (c *Client) BulkDeleteFiles(ctx context.Context, instance string, workspace ID, files []ID) (any, error) {
	return c.Do(ctx, Request{
		Method:   http.MethodDelete,
		Instance: instance,
		Path:     workspacePath(workspace, "file", "bulk_delete"),
		Body:     map[string]any{"file_ids": IDs(files)},
	})
}
