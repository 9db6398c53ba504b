package types

import (
	"context"

	"github.com/slighter12/xano-mcp-go/mcp"
	"github.com/slighter12/xano-mcp-go/xano"
)

// Name identifies a registered tool.
type Name string

func (n Name) String() string { return string(n) }

// Tool interface defines the contract for all tools
type Tool interface {
	Name() string
	Description() string
	InputSchema() mcp.InputSchema
	// Execute runs the tool with arguments that already satisfy InputSchema.
	Execute(ctx context.Context, args map[string]any) (any, error)
}

// ToolRegistry interface defines the contract for tool registries
type ToolRegistry interface {
	RegisterTool(tool Tool) error
	GetTool(name string) (Tool, bool)
	ListTools() []Tool
}

// InstanceRef addresses a Xano instance.
type InstanceRef struct {
	InstanceName string `json:"instance_name"`
}

// WorkspaceRef addresses a workspace of an instance.
type WorkspaceRef struct {
	InstanceRef
	WorkspaceID xano.ID `json:"workspace_id"`
}

// TableRef addresses a table of a workspace.
type TableRef struct {
	WorkspaceRef
	TableID xano.ID `json:"table_id"`
}

// Argument names shared by most tools.
const (
	ArgInstance  = "instance_name"
	ArgWorkspace = "workspace_id"
	ArgTable     = "table_id"
)

// InstanceProps returns the properties addressing an instance.
func InstanceProps() Props {
	return Props{ArgInstance: String("The name of the Xano instance")}
}

// WorkspaceProps returns the properties addressing a workspace.
func WorkspaceProps() Props {
	return InstanceProps().With(ArgWorkspace, ID("The ID of the workspace"))
}

// TableProps returns the properties addressing a table.
func TableProps() Props {
	return WorkspaceProps().With(ArgTable, ID("The ID of the table"))
}

// WorkspaceRequired lists the arguments required to address a workspace,
// followed by extra.
func WorkspaceRequired(extra ...string) []string {
	return append([]string{ArgInstance, ArgWorkspace}, extra...)
}

// TableRequired lists the arguments required to address a table, followed
// by extra.
func TableRequired(extra ...string) []string {
	return append([]string{ArgInstance, ArgWorkspace, ArgTable}, extra...)
}
