package xano

import (
	"context"
	"net/http"
)

// IndexKind is the type segment of an index creation path.
type IndexKind string

const (
	IndexBTree   IndexKind = "btree"
	IndexUnique  IndexKind = "unique"
	IndexSearch  IndexKind = "search"
	IndexSpatial IndexKind = "spatial"
	IndexVector  IndexKind = "vector"
)

// IndexField is one indexed column.
type IndexField struct {
	Name     string `json:"name"`
	Op       string `json:"op,omitempty"`
	Priority int    `json:"priority,omitempty"`
}

// IndexSpec is the body of an index creation call. Name and Lang apply to
// search indexes only.
type IndexSpec struct {
	Name   string       `json:"name,omitempty"`
	Lang   string       `json:"lang,omitempty"`
	Fields []IndexField `json:"fields"`
}

// ListIndexes returns the indexes of a table.
func (c *Client) ListIndexes(ctx context.Context, instance string, workspace, table ID) (any, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Instance: instance, Path: tablePath(workspace, table, "index")})
}

// CreateIndex adds an index of the given kind.
func (c *Client) CreateIndex(ctx context.Context, instance string, workspace, table ID, kind IndexKind, spec IndexSpec) (any, error) {
	return c.Do(ctx, Request{
		Method:   http.MethodPost,
		Instance: instance,
		Path:     tablePath(workspace, table, "index", string(kind)),
		Body:     spec,
	})
}

// DeleteIndex drops an index.
func (c *Client) DeleteIndex(ctx context.Context, instance string, workspace, table, index ID) (any, error) {
	return c.Do(ctx, Request{
		Method:   http.MethodDelete,
		Instance: instance,
		Path:     tablePath(workspace, table, "index", index.String()),
	})
}
