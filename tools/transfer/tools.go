package transfer

import (
	"context"

	"github.com/slighter12/xano-mcp-go/tools/file"
	"github.com/slighter12/xano-mcp-go/tools/types"
	"github.com/slighter12/xano-mcp-go/xano"
)

const (
	ExportWorkspace       types.Name = "xano_export_workspace"
	ExportWorkspaceSchema types.Name = "xano_export_workspace_schema"
	ImportWorkspace       types.Name = "xano_import_workspace"
	ImportSchema          types.Name = "xano_import_schema"
)

type exportInput struct {
	types.WorkspaceRef
	Branch   string `json:"branch"`
	Password string `json:"password"`
}

type importInput struct {
	types.WorkspaceRef
	Filename  string `json:"filename"`
	Content   string `json:"file_base64"`
	Password  string `json:"password"`
	NewBranch string `json:"newbranch"`
	SetLive   bool   `json:"setlive"`
}

func (in importInput) archive() (xano.Archive, error) {
	content, err := file.DecodeContent("file_base64", in.Content)
	if err != nil {
		return xano.Archive{}, err
	}
	return xano.Archive{Filename: in.Filename, Content: content, Password: in.Password}, nil
}

func exportProps() types.Props {
	return types.WorkspaceProps().Merge(types.Props{
		"branch":   types.String("Branch to export, defaults to the live branch"),
		"password": types.String("Password to encrypt the export with"),
	})
}

func importProps() types.Props {
	return types.WorkspaceProps().Merge(types.Props{
		"file_base64": types.String("Export archive, base64 encoded"),
		"filename":    types.String("Name of the archive file"),
		"password":    types.String("Password the archive was encrypted with"),
	})
}

func GetAllTools(client *xano.Client) []types.Tool {
	return []types.Tool{
		types.New(ExportWorkspace,
			"Export a workspace with its data. The archive is returned base64 encoded.",
			types.Schema("Export Workspace", exportProps(), types.WorkspaceRequired()...),
			func(ctx context.Context, in exportInput) (any, error) {
				return client.ExportWorkspace(ctx, in.InstanceName, in.WorkspaceID, xano.Export{Branch: in.Branch, Password: in.Password})
			}),
		types.New(ExportWorkspaceSchema,
			"Export the schema and business logic of a workspace without its data.",
			types.Schema("Export Workspace Schema", exportProps(), types.WorkspaceRequired()...),
			func(ctx context.Context, in exportInput) (any, error) {
				return client.ExportSchema(ctx, in.InstanceName, in.WorkspaceID, xano.Export{Branch: in.Branch, Password: in.Password})
			}),
		types.New(ImportWorkspace,
			"Import an export archive into a workspace, replacing its content.",
			types.Schema("Import Workspace", importProps(), types.WorkspaceRequired("file_base64")...),
			func(ctx context.Context, in importInput) (any, error) {
				archive, err := in.archive()
				if err != nil {
					return nil, err
				}
				return client.ImportWorkspace(ctx, in.InstanceName, in.WorkspaceID, archive)
			}),
		types.New(ImportSchema,
			"Import a schema archive into a new branch of a workspace.",
			types.Schema("Import Schema", importProps().Merge(types.Props{
				"newbranch": types.String("Name of the branch to create"),
				"setlive":   types.Boolean("Make the new branch live"),
			}), types.WorkspaceRequired("file_base64", "newbranch")...),
			func(ctx context.Context, in importInput) (any, error) {
				archive, err := in.archive()
				if err != nil {
					return nil, err
				}
				return client.ImportSchema(ctx, in.InstanceName, in.WorkspaceID, xano.SchemaImport{
					Archive:   archive,
					NewBranch: in.NewBranch,
					SetLive:   in.SetLive,
				})
			}),
	}
}
