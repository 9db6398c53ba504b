package record

import (
	"context"

	"github.com/slighter12/xano-mcp-go/mcp"
	"github.com/slighter12/xano-mcp-go/tools/types"
	"github.com/slighter12/xano-mcp-go/xano"
)

const (
	BrowseTableContent types.Name = "xano_browse_table_content"
	SearchTableContent types.Name = "xano_search_table_content"
	GetTableRecord     types.Name = "xano_get_table_record"
	CreateTableRecord  types.Name = "xano_create_table_record"
	UpdateTableRecord  types.Name = "xano_update_table_record"
	DeleteTableRecord  types.Name = "xano_delete_table_record"
	BulkCreateRecords  types.Name = "xano_bulk_create_records"
	BulkUpdateRecords  types.Name = "xano_bulk_update_records"
	BulkDeleteRecords  types.Name = "xano_bulk_delete_records"
)

const argRecordData = "record_data"

type browseInput struct {
	types.TableRef
	types.Paging
}

type searchInput struct {
	types.TableRef
	types.Paging
	Conditions []any             `json:"search_conditions"`
	Sort       map[string]string `json:"sort"`
}

type recordInput struct {
	types.TableRef
	RecordID xano.ID `json:"record_id"`
}

type writeInput struct {
	recordInput
	Data map[string]any `json:"record_data"`
}

type bulkCreateInput struct {
	types.TableRef
	Records      []map[string]any `json:"records"`
	AllowIDField bool             `json:"allow_id_field"`
}

type bulkUpdateInput struct {
	types.TableRef
	Updates []struct {
		RowID   xano.ID        `json:"row_id"`
		Updates map[string]any `json:"updates"`
	} `json:"updates"`
}

type bulkDeleteInput struct {
	types.TableRef
	RecordIDs []xano.ID `json:"record_ids"`
}

func recordProps() types.Props {
	return types.TableProps().With("record_id", types.ID("The ID of the record"))
}

// DefaultRecordSchema accepts any record object.
func DefaultRecordSchema() mcp.Property {
	return types.Object("The record fields and values")
}

// CreateRecordTool builds the record creation tool. recordSchema describes
// the record_data object; fields it marks required are checked before any
// request is sent.
func CreateRecordTool(client *xano.Client, recordSchema mcp.Property) types.Tool {
	return types.New(CreateTableRecord,
		"Create a new record in a table.",
		types.Schema("Create Table Record", types.TableProps().With(argRecordData, recordSchema),
			types.TableRequired(argRecordData)...),
		func(ctx context.Context, in writeInput) (any, error) {
			return client.CreateRecord(ctx, in.InstanceName, in.WorkspaceID, in.TableID, in.Data)
		})
}

func GetAllTools(client *xano.Client) []types.Tool {
	return []types.Tool{
		types.New(BrowseTableContent,
			"Browse the records of a table page by page.",
			types.Schema("Browse Table Content", types.TableProps().Merge(types.PagingProps()), types.TableRequired()...),
			func(ctx context.Context, in browseInput) (any, error) {
				return client.BrowseContent(ctx, in.InstanceName, in.WorkspaceID, in.TableID, in.Paging.Xano())
			}),
		types.New(SearchTableContent,
			"Search the records of a table using filter conditions and sorting.",
			types.Schema("Search Table Content", types.TableProps().Merge(types.PagingProps()).Merge(types.Props{
				"search_conditions": types.Array("Filter conditions", types.Object("Condition")),
				"sort":              types.Object(`Sort order by field, e.g. {"created_at":"desc"}`),
			}), types.TableRequired()...),
			func(ctx context.Context, in searchInput) (any, error) {
				return client.SearchContent(ctx, in.InstanceName, in.WorkspaceID, in.TableID, xano.Search{
					Page:       in.Page,
					PerPage:    in.PerPage,
					Conditions: in.Conditions,
					Sort:       in.Sort,
				})
			}),
		types.New(GetTableRecord,
			"Get one record of a table.",
			types.Schema("Get Table Record", recordProps(), types.TableRequired("record_id")...),
			func(ctx context.Context, in recordInput) (any, error) {
				return client.GetRecord(ctx, in.InstanceName, in.WorkspaceID, in.TableID, in.RecordID)
			}),
		CreateRecordTool(client, DefaultRecordSchema()),
		types.New(UpdateTableRecord,
			"Update the given fields of an existing record.",
			types.Schema("Update Table Record", recordProps().With(argRecordData,
				types.Object("The fields to update")), types.TableRequired("record_id", argRecordData)...),
			func(ctx context.Context, in writeInput) (any, error) {
				return client.UpdateRecord(ctx, in.InstanceName, in.WorkspaceID, in.TableID, in.RecordID, in.Data)
			}),
		types.New(DeleteTableRecord,
			"Delete one record of a table.",
			types.Schema("Delete Table Record", recordProps(), types.TableRequired("record_id")...),
			func(ctx context.Context, in recordInput) (any, error) {
				return client.DeleteRecord(ctx, in.InstanceName, in.WorkspaceID, in.TableID, in.RecordID)
			}),
		types.New(BulkCreateRecords,
			"Create several records in one request.",
			types.Schema("Bulk Create Records", types.TableProps().Merge(types.Props{
				"records":        types.Array("Records to create", types.Object("Record")),
				"allow_id_field": types.Boolean("Keep id values supplied in the records"),
			}), types.TableRequired("records")...),
			func(ctx context.Context, in bulkCreateInput) (any, error) {
				return client.BulkCreate(ctx, in.InstanceName, in.WorkspaceID, in.TableID, in.Records, in.AllowIDField)
			}),
		types.New(BulkUpdateRecords,
			"Update several records in one request.",
			types.Schema("Bulk Update Records", types.TableProps().With("updates",
				types.Array(`Updates to apply, e.g. [{"row_id":1,"updates":{"name":"new"}}]`,
					types.ObjectOf("Update", types.Props{
						"row_id":  types.ID("The ID of the record"),
						"updates": types.Object("Fields to change"),
					}, "row_id", "updates"))),
				types.TableRequired("updates")...),
			func(ctx context.Context, in bulkUpdateInput) (any, error) {
				patches := make([]xano.RecordPatch, 0, len(in.Updates))
				for _, u := range in.Updates {
					patches = append(patches, xano.RecordPatch{RowID: u.RowID.Value(), Updates: u.Updates})
				}
				return client.BulkUpdate(ctx, in.InstanceName, in.WorkspaceID, in.TableID, patches)
			}),
		types.New(BulkDeleteRecords,
			"Delete several records in one request.",
			types.Schema("Bulk Delete Records", types.TableProps().With("record_ids",
				types.Array("IDs of the records to delete", types.ID("Record ID"))),
				types.TableRequired("record_ids")...),
			func(ctx context.Context, in bulkDeleteInput) (any, error) {
				return client.BulkDelete(ctx, in.InstanceName, in.WorkspaceID, in.TableID, in.RecordIDs)
			}),
	}
}
