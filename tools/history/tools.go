package history

import (
	"context"

	"github.com/slighter12/xano-mcp-go/tools/types"
	"github.com/slighter12/xano-mcp-go/xano"
)

const (
	BrowseRequestHistory types.Name = "xano_browse_request_history"
	SearchRequestHistory types.Name = "xano_search_request_history"
)

type browseInput struct {
	types.WorkspaceRef
	types.Paging
	Branch        string  `json:"branch"`
	APIID         xano.ID `json:"api_id"`
	QueryID       xano.ID `json:"query_id"`
	IncludeOutput bool    `json:"include_output"`
}

type searchInput struct {
	types.WorkspaceRef
	types.Paging
	Conditions []any             `json:"search_conditions"`
	Sort       map[string]string `json:"sort"`
}

func GetAllTools(client *xano.Client) []types.Tool {
	return []types.Tool{
		types.New(BrowseRequestHistory,
			"Browse the API request history of a workspace.",
			types.Schema("Browse Request History", types.WorkspaceProps().Merge(types.PagingProps()).Merge(types.Props{
				"branch":         types.String("Only requests of this branch"),
				"api_id":         types.ID("Only requests of this API group"),
				"query_id":       types.ID("Only requests of this endpoint"),
				"include_output": types.Boolean("Include response bodies"),
			}), types.WorkspaceRequired()...),
			func(ctx context.Context, in browseInput) (any, error) {
				return client.BrowseRequestHistory(ctx, in.InstanceName, in.WorkspaceID, xano.HistoryQuery{
					Paging:        in.Paging.Xano(),
					Branch:        in.Branch,
					APIID:         in.APIID,
					QueryID:       in.QueryID,
					IncludeOutput: in.IncludeOutput,
				})
			}),
		types.New(SearchRequestHistory,
			"Search the API request history of a workspace using filter conditions.",
			types.Schema("Search Request History", types.WorkspaceProps().Merge(types.PagingProps()).Merge(types.Props{
				"search_conditions": types.Array("Filter conditions", types.Object("Condition")),
				"sort":              types.Object(`Sort order by field, e.g. {"created_at":"desc"}`),
			}), types.WorkspaceRequired()...),
			func(ctx context.Context, in searchInput) (any, error) {
				return client.SearchRequestHistory(ctx, in.InstanceName, in.WorkspaceID, xano.Search{
					Page:       in.Page,
					PerPage:    in.PerPage,
					Conditions: in.Conditions,
					Sort:       in.Sort,
				})
			}),
	}
}
