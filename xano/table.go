package xano

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Paging selects a result page. Zero values fall back to page 1 with 50
// items per page.
type Paging struct {
	Page    int
	PerPage int
}

const (
	DefaultPage    = 1
	DefaultPerPage = 50
)

func (p Paging) normalized() Paging {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	return p
}

func (p Paging) values() url.Values {
	p = p.normalized()
	v := url.Values{}
	v.Set("page", strconv.Itoa(p.Page))
	v.Set("per_page", strconv.Itoa(p.PerPage))
	return v
}

// TableQuery filters the table listing.
type TableQuery struct {
	Paging
	Search string
	Sort   string
	Order  string
}

func workspacePath(workspace ID, rest ...string) string {
	return Path(append([]string{"workspace", workspace.String()}, rest...)...)
}

func tablePath(workspace, table ID, rest ...string) string {
	return workspacePath(workspace, append([]string{"table", table.String()}, rest...)...)
}

// ListTables lists the tables of a workspace.
func (c *Client) ListTables(ctx context.Context, instance string, workspace ID, q TableQuery) (any, error) {
	query := q.values()
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.Sort != "" {
		query.Set("sort", q.Sort)
	}
	if q.Order != "" {
		query.Set("order", q.Order)
	}
	return c.Do(ctx, Request{
		Method:   http.MethodGet,
		Instance: instance,
		Path:     workspacePath(workspace, "table"),
		Query:    query,
	})
}

// GetTable returns the metadata of one table.
func (c *Client) GetTable(ctx context.Context, instance string, workspace, table ID) (any, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Instance: instance, Path: tablePath(workspace, table)})
}

// TableSpec is the body of table create and update calls.
type TableSpec struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Docs        string   `json:"docs,omitempty"`
	Auth        *bool    `json:"auth,omitempty"`
	Tags        []string `json:"tag,omitempty"`
}

// CreateTable creates a table in a workspace.
func (c *Client) CreateTable(ctx context.Context, instance string, workspace ID, spec TableSpec) (any, error) {
	return c.Do(ctx, Request{
		Method:   http.MethodPost,
		Instance: instance,
		Path:     workspacePath(workspace, "table"),
		Body:     spec,
	})
}

// UpdateTable changes the metadata of a table.
func (c *Client) UpdateTable(ctx context.Context, instance string, workspace, table ID, spec TableSpec) (any, error) {
	return c.Do(ctx, Request{
		Method:   http.MethodPut,
		Instance: instance,
		Path:     tablePath(workspace, table, "meta"),
		Body:     spec,
	})
}

// DeleteTable deletes a table and its content.
func (c *Client) DeleteTable(ctx context.Context, instance string, workspace, table ID) (any, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Instance: instance, Path: tablePath(workspace, table)})
}

// TruncateTable removes every record of a table. reset restarts the
// primary key sequence.
func (c *Client) TruncateTable(ctx context.Context, instance string, workspace, table ID, reset bool) (any, error) {
	var query url.Values
	if reset {
		query = url.Values{"reset": []string{"true"}}
	}
	return c.Do(ctx, Request{
		Method:   http.MethodDelete,
		Instance: instance,
		Path:     tablePath(workspace, table, "truncate"),
		Query:    query,
	})
}
