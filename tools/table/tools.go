package table

import (
	"context"

	"github.com/slighter12/xano-mcp-go/tools/types"
	"github.com/slighter12/xano-mcp-go/xano"
)

const (
	ListTables      types.Name = "xano_list_tables"
	GetTableDetails types.Name = "xano_get_table_details"
	CreateTable     types.Name = "xano_create_table"
	UpdateTable     types.Name = "xano_update_table"
	DeleteTable     types.Name = "xano_delete_table"
	TruncateTable   types.Name = "xano_truncate_table"
)

type listInput struct {
	types.WorkspaceRef
	types.Paging
	Search string `json:"search"`
	Sort   string `json:"sort"`
	Order  string `json:"order"`
}

type tableInput struct {
	types.WorkspaceRef
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Docs        string   `json:"docs"`
	Auth        *bool    `json:"auth"`
	Tags        []string `json:"tag"`
}

func (in tableInput) spec() xano.TableSpec {
	return xano.TableSpec{
		Name:        in.Name,
		Description: in.Description,
		Docs:        in.Docs,
		Auth:        in.Auth,
		Tags:        in.Tags,
	}
}

type updateInput struct {
	tableInput
	TableID xano.ID `json:"table_id"`
}

type truncateInput struct {
	types.TableRef
	Reset bool `json:"reset"`
}

func tableProps() types.Props {
	return types.Props{
		"name":        types.String("Name of the table"),
		"description": types.String("Description of the table"),
		"docs":        types.String("Documentation text for the table"),
		"auth":        types.Boolean("Whether the table is used for authentication"),
		"tag":         types.Array("Tags for the table", types.String("Tag")),
	}
}

func GetAllTools(client *xano.Client) []types.Tool {
	return []types.Tool{
		types.New(ListTables,
			"List all tables in a specific Xano workspace.",
			types.Schema("List Tables", types.WorkspaceProps().Merge(types.PagingProps()).Merge(types.Props{
				"search": types.String("Filter tables by name"),
				"sort":   types.String("Field to sort by"),
				"order":  types.Enum("Sort direction", "asc", "desc"),
			}), types.WorkspaceRequired()...),
			func(ctx context.Context, in listInput) (any, error) {
				return client.ListTables(ctx, in.InstanceName, in.WorkspaceID, xano.TableQuery{
					Paging: in.Paging.Xano(),
					Search: in.Search,
					Sort:   in.Sort,
					Order:  in.Order,
				})
			}),
		types.New(GetTableDetails,
			"Get details for a specific Xano table.",
			types.Schema("Get Table Details", types.TableProps(), types.TableRequired()...),
			func(ctx context.Context, in types.TableRef) (any, error) {
				return client.GetTable(ctx, in.InstanceName, in.WorkspaceID, in.TableID)
			}),
		types.New(CreateTable,
			"Create a new table in a workspace.",
			types.Schema("Create Table", types.WorkspaceProps().Merge(tableProps()), types.WorkspaceRequired("name")...),
			func(ctx context.Context, in tableInput) (any, error) {
				return client.CreateTable(ctx, in.InstanceName, in.WorkspaceID, in.spec())
			}),
		types.New(UpdateTable,
			"Update the name, description, docs, auth flag or tags of a table.",
			types.Schema("Update Table", types.TableProps().Merge(tableProps()), types.TableRequired()...),
			func(ctx context.Context, in updateInput) (any, error) {
				return client.UpdateTable(ctx, in.InstanceName, in.WorkspaceID, in.TableID, in.spec())
			}),
		types.New(DeleteTable,
			"Delete a table and all of its records.",
			types.Schema("Delete Table", types.TableProps(), types.TableRequired()...),
			func(ctx context.Context, in types.TableRef) (any, error) {
				return client.DeleteTable(ctx, in.InstanceName, in.WorkspaceID, in.TableID)
			}),
		types.New(TruncateTable,
			"Delete every record of a table while keeping its schema.",
			types.Schema("Truncate Table", types.TableProps().With("reset",
				types.Boolean("Reset the primary key sequence")), types.TableRequired()...),
			func(ctx context.Context, in truncateInput) (any, error) {
				return client.TruncateTable(ctx, in.InstanceName, in.WorkspaceID, in.TableID, in.Reset)
			}),
	}
}
