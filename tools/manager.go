package tools

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/slighter12/xano-mcp-go/logger"
	"github.com/slighter12/xano-mcp-go/mcp"
	"github.com/slighter12/xano-mcp-go/tools/types"
	"github.com/slighter12/xano-mcp-go/xano"
)

// ErrDuplicateTool is returned when a tool name is registered twice.
var ErrDuplicateTool = errors.New("tool already registered")

// Manager is the name-keyed tool catalog served over MCP.
type Manager struct {
	tools map[string]types.Tool
	mu    sync.RWMutex
}

var _ types.ToolRegistry = (*Manager)(nil)

// NewManager returns an empty catalog.
func NewManager() *Manager {
	return &Manager{
		tools: make(map[string]types.Tool),
	}
}

// RegisterTool registers a new tool. Names must be unique.
func (m *Manager) RegisterTool(tool types.Tool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tool == nil {
		return errors.New("tool cannot be nil")
	}

	name := tool.Name()
	if name == "" {
		return errors.New("tool name cannot be empty")
	}
	if _, exists := m.tools[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
	}

	m.tools[name] = tool
	logger.Debug("Tool registered", "name", name)
	return nil
}

// GetTool retrieves a tool by name
func (m *Manager) GetTool(name string) (types.Tool, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tool, ok := m.tools[name]
	return tool, ok
}

// ListTools returns all registered tools sorted by name.
func (m *Manager) ListTools() []types.Tool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tools := make([]types.Tool, 0, len(m.tools))
	for _, tool := range m.tools {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name() < tools[j].Name() })
	return tools
}

// Len returns the number of registered tools.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tools)
}

// RegisterDefaultTools registers the full Xano catalog backed by client.
func (m *Manager) RegisterDefaultTools(client *xano.Client) error {
	catalog := GetAllTools(client)
	for _, tool := range catalog {
		if err := m.RegisterTool(tool); err != nil {
			return fmt.Errorf("register %s: %w", tool.Name(), err)
		}
	}
	logger.Info("Xano tool catalog registered", "count", len(catalog))
	return nil
}

// GetTools returns the registered tool definitions sorted by name.
func (m *Manager) GetTools() []mcp.Tool {
	registered := m.ListTools()
	defs := make([]mcp.Tool, len(registered))
	for i, tool := range registered {
		defs[i] = mcp.Tool{Name: tool.Name(), Description: tool.Description(), InputSchema: tool.InputSchema()}
	}
	return defs
}
