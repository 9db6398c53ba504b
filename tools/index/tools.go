package index

import (
	"context"

	"github.com/slighter12/xano-mcp-go/tools/types"
	"github.com/slighter12/xano-mcp-go/xano"
)

const (
	ListIndexes        types.Name = "xano_list_indexes"
	CreateBTreeIndex   types.Name = "xano_create_btree_index"
	CreateUniqueIndex  types.Name = "xano_create_unique_index"
	CreateSearchIndex  types.Name = "xano_create_search_index"
	CreateSpatialIndex types.Name = "xano_create_spatial_index"
	CreateVectorIndex  types.Name = "xano_create_vector_index"
	DeleteIndex        types.Name = "xano_delete_index"
)

type createInput struct {
	types.TableRef
	Name   string            `json:"name"`
	Lang   string            `json:"lang"`
	Fields []xano.IndexField `json:"fields"`
}

type deleteInput struct {
	types.TableRef
	IndexID xano.ID `json:"index_id"`
}

func fieldsProp(description string) types.Props {
	return types.Props{"fields": types.Array(description, types.Object("Indexed field"))}
}

func create(client *xano.Client, name types.Name, kind xano.IndexKind, title, description, fieldsDescription string) types.Tool {
	props := types.TableProps().Merge(fieldsProp(fieldsDescription))
	if kind == xano.IndexSearch {
		props = props.Merge(types.Props{
			"name": types.String("Name of the search index"),
			"lang": types.Default(types.String("Text search language"), "english"),
		})
	}
	return types.New(name, description,
		types.Schema(title, props, types.TableRequired("fields")...),
		func(ctx context.Context, in createInput) (any, error) {
			spec := xano.IndexSpec{Fields: in.Fields}
			if kind == xano.IndexSearch {
				spec.Name = in.Name
				spec.Lang = in.Lang
				if spec.Lang == "" {
					spec.Lang = "english"
				}
			}
			return client.CreateIndex(ctx, in.InstanceName, in.WorkspaceID, in.TableID, kind, spec)
		})
}

func GetAllTools(client *xano.Client) []types.Tool {
	return []types.Tool{
		types.New(ListIndexes,
			"List all indexes of a table.",
			types.Schema("List Indexes", types.TableProps(), types.TableRequired()...),
			func(ctx context.Context, in types.TableRef) (any, error) {
				return client.ListIndexes(ctx, in.InstanceName, in.WorkspaceID, in.TableID)
			}),
		create(client, CreateBTreeIndex, xano.IndexBTree, "Create BTree Index",
			"Create a btree index to speed up lookups and sorting.",
			`Fields to index, e.g. [{"name":"email","op":"asc"}]`),
		create(client, CreateUniqueIndex, xano.IndexUnique, "Create Unique Index",
			"Create a unique index that rejects duplicate values.",
			`Fields that must be unique together, e.g. [{"name":"email","op":"asc"}]`),
		create(client, CreateSearchIndex, xano.IndexSearch, "Create Search Index",
			"Create a full-text search index.",
			`Fields to search with their priority, e.g. [{"name":"title","priority":1}]`),
		create(client, CreateSpatialIndex, xano.IndexSpatial, "Create Spatial Index",
			"Create a spatial index on a geo field.",
			`Geo field to index, e.g. [{"name":"location","op":"gist_geometry_ops_2d"}]`),
		create(client, CreateVectorIndex, xano.IndexVector, "Create Vector Index",
			"Create a vector index for similarity search.",
			`Vector field and distance operator, e.g. [{"name":"embedding","op":"vector_cosine_ops"}]`),
		types.New(DeleteIndex,
			"Delete an index from a table.",
			types.Schema("Delete Index", types.TableProps().With("index_id", types.ID("The ID of the index")),
				types.TableRequired("index_id")...),
			func(ctx context.Context, in deleteInput) (any, error) {
				return client.DeleteIndex(ctx, in.InstanceName, in.WorkspaceID, in.TableID, in.IndexID)
			}),
	}
}
