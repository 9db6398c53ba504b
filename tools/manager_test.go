package tools

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/slighter12/xano-mcp-go/config"
	"github.com/slighter12/xano-mcp-go/logger"
	"github.com/slighter12/xano-mcp-go/mcp"
	"github.com/slighter12/xano-mcp-go/tools/types"
	"github.com/slighter12/xano-mcp-go/xano"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	if err := logger.Init(logger.GetLevelFromString("debug"), logger.FormatJSON); err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

// TestTool implements Tool interface for testing
type TestTool struct {
	name     string
	executor func(args map[string]any) (any, error)
}

func (t *TestTool) Name() string {
	return t.name
}

func (t *TestTool) Description() string {
	return "Test tool"
}

func (t *TestTool) InputSchema() mcp.InputSchema {
	return types.Schema("Test", nil)
}

func (t *TestTool) Execute(_ context.Context, args map[string]any) (any, error) {
	return t.executor(args)
}

func testClient() *xano.Client {
	cfg := config.NewConfig()
	cfg.Xano.APIToken = "test-token-value"
	return xano.New(cfg)
}

func TestToolManager(t *testing.T) {
	manager := NewManager()

	testTool := &TestTool{
		name: "testTool",
		executor: func(args map[string]any) (any, error) {
			return "test result", nil
		},
	}
	if err := manager.RegisterTool(testTool); err != nil {
		t.Fatalf("RegisterTool failed: %v", err)
	}

	tool, ok := manager.GetTool("testTool")
	if !ok {
		t.Fatal("expected testTool to be registered")
	}
	result, err := tool.Execute(context.Background(), map[string]any{})
	if err != nil {
		t.Errorf("Execute failed: %v", err)
	}
	if result != "test result" {
		t.Errorf("Expected 'test result', got %v", result)
	}

	if _, ok := manager.GetTool("nonExistentTool"); ok {
		t.Error("Expected non-existent tool to be missing")
	}
}

func TestRegisterToolRejectsDuplicates(t *testing.T) {
	manager := NewManager()
	first := &TestTool{name: "dup", executor: func(map[string]any) (any, error) { return 1, nil }}
	second := &TestTool{name: "dup", executor: func(map[string]any) (any, error) { return 2, nil }}

	if err := manager.RegisterTool(first); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	err := manager.RegisterTool(second)
	if !errors.Is(err, ErrDuplicateTool) {
		t.Fatalf("expected ErrDuplicateTool, got %v", err)
	}

	tool, _ := manager.GetTool("dup")
	if result, _ := tool.Execute(context.Background(), nil); result != 1 {
		t.Errorf("duplicate registration replaced the original tool")
	}
}

func TestRegisterToolRejectsInvalid(t *testing.T) {
	manager := NewManager()
	if err := manager.RegisterTool(nil); err == nil {
		t.Error("expected error for nil tool")
	}
	if err := manager.RegisterTool(&TestTool{name: ""}); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestRegisterDefaultToolsTwiceFails(t *testing.T) {
	manager := NewManager()
	client := testClient()
	if err := manager.RegisterDefaultTools(client); err != nil {
		t.Fatalf("RegisterDefaultTools failed: %v", err)
	}
	if err := manager.RegisterDefaultTools(client); !errors.Is(err, ErrDuplicateTool) {
		t.Fatalf("expected ErrDuplicateTool, got %v", err)
	}
}

func TestDefaultCatalog(t *testing.T) {
	manager := NewManager()
	if err := manager.RegisterDefaultTools(testClient()); err != nil {
		t.Fatalf("RegisterDefaultTools failed: %v", err)
	}

	defs := manager.GetTools()
	if len(defs) != 42 {
		t.Fatalf("expected 42 tools, got %d", len(defs))
	}

	for i, def := range defs {
		if i > 0 && defs[i-1].Name >= def.Name {
			t.Errorf("tools not sorted: %s before %s", defs[i-1].Name, def.Name)
		}
		if !strings.HasPrefix(def.Name, "xano_") {
			t.Errorf("tool %s lacks the xano_ prefix", def.Name)
		}
		if def.Description == "" {
			t.Errorf("tool %s has no description", def.Name)
		}
		if def.InputSchema.Type != "object" {
			t.Errorf("tool %s schema type is %q", def.Name, def.InputSchema.Type)
		}
		for _, required := range def.InputSchema.Required {
			if _, ok := def.InputSchema.Properties[required]; !ok {
				t.Errorf("tool %s requires undeclared parameter %s", def.Name, required)
			}
		}
	}

	for _, name := range []string{
		"xano_list_instances", "xano_list_tables", "xano_browse_table_content",
		"xano_bulk_create_records", "xano_create_vector_index", "xano_export_workspace",
	} {
		if _, ok := manager.GetTool(name); !ok {
			t.Errorf("expected %s to be registered", name)
		}
	}
}

func TestConcurrentRegistryAccess(t *testing.T) {
	manager := NewManager()
	if err := manager.RegisterDefaultTools(testClient()); err != nil {
		t.Fatalf("RegisterDefaultTools failed: %v", err)
	}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := manager.GetTool("xano_list_tables"); !ok {
				t.Error("concurrent GetTool failed")
			}
			if got := len(manager.ListTools()); got != manager.Len() {
				t.Errorf("ListTools returned %d tools, want %d", got, manager.Len())
			}
		}()
	}
	wg.Wait()
}
