package schema

import (
	"context"

	"github.com/slighter12/xano-mcp-go/tools/types"
	"github.com/slighter12/xano-mcp-go/xano"
)

const (
	GetTableSchema    types.Name = "xano_get_table_schema"
	UpdateTableSchema types.Name = "xano_update_table_schema"
	GetSchemaField    types.Name = "xano_get_schema_field"
	AddFieldToSchema  types.Name = "xano_add_field_to_schema"
	RenameSchemaField types.Name = "xano_rename_schema_field"
	DeleteField       types.Name = "xano_delete_field"
)

// FieldTypes are the column types a field can be created with.
var FieldTypes = []string{
	"attachment", "audio", "bool", "date", "decimal", "email", "enum",
	"geo_linestring", "geo_multilinestring", "geo_multipoint", "geo_multipolygon",
	"geo_point", "geo_polygon", "image", "int", "json", "object", "password",
	"tableref", "tableref_uuid", "text", "timestamp", "uuid", "vector", "video",
}

type replaceInput struct {
	types.TableRef
	Schema []any `json:"schema"`
}

type fieldInput struct {
	types.TableRef
	FieldName string `json:"field_name"`
}

type addInput struct {
	fieldInput
	FieldType   string   `json:"field_type"`
	Description string   `json:"description"`
	Nullable    *bool    `json:"nullable"`
	Required    *bool    `json:"required"`
	Default     any      `json:"default"`
	Access      string   `json:"access"`
	Sensitive   *bool    `json:"sensitive"`
	Style       string   `json:"style"`
	Values      []string `json:"values"`
	TableRefID  *int64   `json:"tableref_id"`
}

type renameInput struct {
	types.TableRef
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

func fieldProps() types.Props {
	return types.TableProps().With("field_name", types.String("Name of the field"))
}

func GetAllTools(client *xano.Client) []types.Tool {
	return []types.Tool{
		types.New(GetTableSchema,
			"Get the schema (field list) of a table.",
			types.Schema("Get Table Schema", types.TableProps(), types.TableRequired()...),
			func(ctx context.Context, in types.TableRef) (any, error) {
				return client.GetSchema(ctx, in.InstanceName, in.WorkspaceID, in.TableID)
			}),
		types.New(UpdateTableSchema,
			"Replace the entire schema of a table. Fields missing from the new schema are dropped.",
			types.Schema("Update Table Schema", types.TableProps().With("schema",
				types.Array("Complete list of field definitions", types.Object("Field definition"))),
				types.TableRequired("schema")...),
			func(ctx context.Context, in replaceInput) (any, error) {
				return client.ReplaceSchema(ctx, in.InstanceName, in.WorkspaceID, in.TableID, in.Schema)
			}),
		types.New(GetSchemaField,
			"Get the definition of one field of a table schema.",
			types.Schema("Get Schema Field", fieldProps(), types.TableRequired("field_name")...),
			func(ctx context.Context, in fieldInput) (any, error) {
				return client.GetField(ctx, in.InstanceName, in.WorkspaceID, in.TableID, in.FieldName)
			}),
		types.New(AddFieldToSchema,
			"Add a new field to a table schema.",
			types.Schema("Add Field To Schema", fieldProps().Merge(types.Props{
				"field_type":  types.Enum("Type of the new field", FieldTypes...),
				"description": types.String("Description of the field"),
				"nullable":    types.Boolean("Whether the field accepts null"),
				"required":    types.Boolean("Whether the field is required"),
				"default":     types.String("Default value"),
				"access":      types.Enum("Field visibility", "public", "private", "internal"),
				"sensitive":   types.Boolean("Mask the value in logs"),
				"style":       types.Enum("Single value or list", "single", "list"),
				"values":      types.Array("Allowed values of an enum field", types.String("Value")),
				"tableref_id": types.Integer("Referenced table of a tableref field"),
			}), types.TableRequired("field_name", "field_type")...),
			func(ctx context.Context, in addInput) (any, error) {
				return client.AddField(ctx, in.InstanceName, in.WorkspaceID, in.TableID, in.FieldType, xano.Field{
					Name:        in.FieldName,
					Description: in.Description,
					Nullable:    in.Nullable,
					Required:    in.Required,
					Default:     in.Default,
					Access:      in.Access,
					Sensitive:   in.Sensitive,
					Style:       in.Style,
					Values:      in.Values,
					Table:       in.TableRefID,
				})
			}),
		types.New(RenameSchemaField,
			"Rename a field of a table schema.",
			types.Schema("Rename Schema Field", types.TableProps().Merge(types.Props{
				"old_name": types.String("Current name of the field"),
				"new_name": types.String("New name of the field"),
			}), types.TableRequired("old_name", "new_name")...),
			func(ctx context.Context, in renameInput) (any, error) {
				return client.RenameField(ctx, in.InstanceName, in.WorkspaceID, in.TableID, in.OldName, in.NewName)
			}),
		types.New(DeleteField,
			"Delete a field from a table schema.",
			types.Schema("Delete Field", fieldProps(), types.TableRequired("field_name")...),
			func(ctx context.Context, in fieldInput) (any, error) {
				return client.DeleteField(ctx, in.InstanceName, in.WorkspaceID, in.TableID, in.FieldName)
			}),
	}
}
