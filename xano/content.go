package xano

import (
	"context"
	"net/http"
)

// Search is the body of a content or request-history search.
type Search struct {
	Page       int               `json:"page"`
	PerPage    int               `json:"per_page"`
	Conditions []any             `json:"search,omitempty"`
	Sort       map[string]string `json:"sort,omitempty"`
}

func (s Search) normalized() Search {
	p := Paging{Page: s.Page, PerPage: s.PerPage}.normalized()
	s.Page, s.PerPage = p.Page, p.PerPage
	return s
}

// BrowseContent pages through the records of a table.
func (c *Client) BrowseContent(ctx context.Context, instance string, workspace, table ID, paging Paging) (any, error) {
	return c.Do(ctx, Request{
		Method:   http.MethodGet,
		Instance: instance,
		Path:     tablePath(workspace, table, "content"),
		Query:    paging.values(),
	})
}

// SearchContent filters and sorts the records of a table.
func (c *Client) SearchContent(ctx context.Context, instance string, workspace, table ID, search Search) (any, error) {
	return c.Do(ctx, Request{
		Method:   http.MethodPost,
		Instance: instance,
		Path:     tablePath(workspace, table, "content", "search"),
		Body:     search.normalized(),
	})
}

// GetRecord returns one record.
func (c *Client) GetRecord(ctx context.Context, instance string, workspace, table, record ID) (any, error) {
	return c.Do(ctx, Request{
		Method:   http.MethodGet,
		Instance: instance,
		Path:     tablePath(workspace, table, "content", record.String()),
	})
}

// CreateRecord inserts one record.
func (c *Client) CreateRecord(ctx context.Context, instance string, workspace, table ID, record map[string]any) (any, error) {
	return c.Do(ctx, Request{
		Method:   http.MethodPost,
		Instance: instance,
		Path:     tablePath(workspace, table, "content"),
		Body:     record,
	})
}

// UpdateRecord replaces the given fields of one record.
func (c *Client) UpdateRecord(ctx context.Context, instance string, workspace, table, record ID, fields map[string]any) (any, error) {
	return c.Do(ctx, Request{
		Method:   http.MethodPut,
		Instance: instance,
		Path:     tablePath(workspace, table, "content", record.String()),
		Body:     fields,
	})
}

// DeleteRecord removes one record.
func (c *Client) DeleteRecord(ctx context.Context, instance string, workspace, table, record ID) (any, error) {
	return c.Do(ctx, Request{
		Method:   http.MethodDelete,
		Instance: instance,
		Path:     tablePath(workspace, table, "content", record.String()),
	})
}

// BulkCreate inserts records in one request. The per-item result is
// returned as the API reports it.
func (c *Client) BulkCreate(ctx context.Context, instance string, workspace, table ID, items []map[string]any, allowIDField bool) (any, error) {
	return c.Do(ctx, Request{
		Method:   http.MethodPost,
		Instance: instance,
		Path:     tablePath(workspace, table, "content", "bulk"),
		Body:     map[string]any{"items": items, "allow_id_field": allowIDField},
	})
}

// RecordPatch updates the fields of the record with the given id.
type RecordPatch struct {
	RowID   any            `json:"row_id"`
	Updates map[string]any `json:"updates"`
}

// BulkUpdate patches several records in one request.
func (c *Client) BulkUpdate(ctx context.Context, instance string, workspace, table ID, items []RecordPatch) (any, error) {
	return c.Do(ctx, Request{
		Method:   http.MethodPost,
		Instance: instance,
		Path:     tablePath(workspace, table, "content", "bulk", "patch"),
		Body:     map[string]any{"items": items},
	})
}

// BulkDelete removes several records in one request.
func (c *Client) BulkDelete(ctx context.Context, instance string, workspace, table ID, records []ID) (any, error) {
	return c.Do(ctx, Request{
		Method:   http.MethodPost,
		Instance: instance,
		Path:     tablePath(workspace, table, "content", "bulk", "delete"),
		Body:     map[string]any{"row_ids": IDs(records)},
	})
}
