package tools

import (
	"github.com/slighter12/xano-mcp-go/tools/file"
	"github.com/slighter12/xano-mcp-go/tools/history"
	"github.com/slighter12/xano-mcp-go/tools/index"
	"github.com/slighter12/xano-mcp-go/tools/instance"
	"github.com/slighter12/xano-mcp-go/tools/record"
	"github.com/slighter12/xano-mcp-go/tools/schema"
	"github.com/slighter12/xano-mcp-go/tools/table"
	"github.com/slighter12/xano-mcp-go/tools/transfer"
	"github.com/slighter12/xano-mcp-go/tools/types"
	"github.com/slighter12/xano-mcp-go/xano"
)

// GetAllTools returns all available tools from all categories
func GetAllTools(client *xano.Client) []types.Tool {
	var all []types.Tool
	all = append(all, instance.GetAllTools(client)...)
	all = append(all, table.GetAllTools(client)...)
	all = append(all, schema.GetAllTools(client)...)
	all = append(all, index.GetAllTools(client)...)
	all = append(all, record.GetAllTools(client)...)
	all = append(all, file.GetAllTools(client)...)
	all = append(all, history.GetAllTools(client)...)
	all = append(all, transfer.GetAllTools(client)...)
	return all
}
