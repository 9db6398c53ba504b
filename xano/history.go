package xano

import (
	"context"
	"net/http"
	"strconv"
)

// HistoryQuery filters the request history listing.
type HistoryQuery struct {
	Paging
	Branch        string
	APIID         ID
	QueryID       ID
	IncludeOutput bool
}

// BrowseRequestHistory pages through the API request log of a workspace.
func (c *Client) BrowseRequestHistory(ctx context.Context, instance string, workspace ID, q HistoryQuery) (any, error) {
	query := q.values()
	if q.Branch != "" {
		query.Set("branch", q.Branch)
	}
	if !q.APIID.Empty() {
		query.Set("api_id", q.APIID.String())
	}
	if !q.QueryID.Empty() {
		query.Set("query_id", q.QueryID.String())
	}
	if q.IncludeOutput {
		query.Set("include_output", strconv.FormatBool(true))
	}
	return c.Do(ctx, Request{
		Method:   http.MethodGet,
		Instance: instance,
		Path:     workspacePath(workspace, "request_history"),
		Query:    query,
	})
}

// SearchRequestHistory filters the API request log of a workspace.
func (c *Client) SearchRequestHistory(ctx context.Context, instance string, workspace ID, search Search) (any, error) {
	return c.Do(ctx, Request{
		Method:   http.MethodPost,
		Instance: instance,
		Path:     workspacePath(workspace, "request_history", "search"),
		Body:     search.normalized(),
	})
}
