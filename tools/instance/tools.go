// Package instance exposes instance and workspace discovery tools.
package instance

import (
	"context"

	"github.com/slighter12/xano-mcp-go/tools/types"
	"github.com/slighter12/xano-mcp-go/xano"
)

const (
	ListInstances       types.Name = "xano_list_instances"
	GetInstanceDetails  types.Name = "xano_get_instance_details"
	ListDatabases       types.Name = "xano_list_databases"
	GetWorkspaceDetails types.Name = "xano_get_workspace_details"
)

func GetAllTools(client *xano.Client) []types.Tool {
	return []types.Tool{
		types.New(ListInstances,
			"List all Xano instances associated with the account.",
			types.Schema("List Instances", nil),
			func(ctx context.Context, _ struct{}) (any, error) {
				return client.ListInstances(ctx)
			}),
		types.New(GetInstanceDetails,
			"Get details for a specific Xano instance, including its Metadata API and Swagger URLs.",
			types.Schema("Get Instance Details", types.InstanceProps(), types.ArgInstance),
			func(_ context.Context, in types.InstanceRef) (any, error) {
				return client.InstanceDetails(in.InstanceName)
			}),
		types.New(ListDatabases,
			"List all databases (workspaces) in a specific Xano instance.",
			types.Schema("List Databases", types.InstanceProps(), types.ArgInstance),
			func(ctx context.Context, in types.InstanceRef) (any, error) {
				return client.ListWorkspaces(ctx, in.InstanceName)
			}),
		types.New(GetWorkspaceDetails,
			"Get details for a specific Xano workspace.",
			types.Schema("Get Workspace Details", types.WorkspaceProps(), types.WorkspaceRequired()...),
			func(ctx context.Context, in types.WorkspaceRef) (any, error) {
				return client.GetWorkspace(ctx, in.InstanceName, in.WorkspaceID)
			}),
	}
}
