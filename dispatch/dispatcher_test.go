package dispatch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slighter12/xano-mcp-go/config"
	"github.com/slighter12/xano-mcp-go/dispatch"
	"github.com/slighter12/xano-mcp-go/mcp"
	"github.com/slighter12/xano-mcp-go/tools"
	"github.com/slighter12/xano-mcp-go/tools/record"
	"github.com/slighter12/xano-mcp-go/tools/table"
	"github.com/slighter12/xano-mcp-go/tools/types"
	"github.com/slighter12/xano-mcp-go/xano"
	"github.com/slighter12/xano-mcp-go/xano/xanotest"
)

func newDispatcher(t *testing.T, fake *xanotest.Server) (*dispatch.Dispatcher, *tools.Manager) {
	t.Helper()
	manager := tools.NewManager()
	require.NoError(t, manager.RegisterDefaultTools(fake.Client()))
	return dispatch.New(manager, fake.Config()), manager
}

// sampleValue builds a value that satisfies prop.
func sampleValue(name string, prop mcp.Property) any {
	switch {
	case len(prop.Enum) > 0:
		return prop.Enum[0]
	case prop.Type.Has(types.TypeInteger):
		return float64(1)
	case prop.Type.Has(types.TypeNumber):
		return 1.5
	case prop.Type.Has(types.TypeBoolean):
		return false
	case prop.Type.Has(types.TypeArray):
		if prop.Items == nil {
			return []any{}
		}
		return []any{sampleValue(name, *prop.Items)}
	case prop.Type.Has(types.TypeObject):
		obj := map[string]any{"name": "sample"}
		for _, field := range prop.Required {
			obj[field] = sampleValue(field, prop.Properties[field])
		}
		return obj
	case name == types.ArgInstance:
		return xanotest.Instance
	default:
		// Valid base64 so upload and import tools accept it.
		return "aGVsbG8="
	}
}

func requiredArgs(schema mcp.InputSchema) map[string]any {
	args := map[string]any{}
	for _, name := range schema.Required {
		args[name] = sampleValue(name, schema.Properties[name])
	}
	return args
}

// wrongValue returns a value none of prop's types accept.
func wrongValue(prop mcp.Property) any {
	if prop.Type.Has(types.TypeObject) {
		return true
	}
	return map[string]any{"unexpected": true}
}

func TestEveryToolWithValidArgumentsReturnsClassifiedResult(t *testing.T) {
	fake := xanotest.New(t)
	d, manager := newDispatcher(t, fake)

	for _, tool := range manager.ListTools() {
		t.Run(tool.Name(), func(t *testing.T) {
			result := d.Dispatch(context.Background(), tool.Name(), requiredArgs(tool.InputSchema()))
			if result.OK() {
				return
			}
			assert.Contains(t, []types.Kind{types.KindRemote, types.KindTransport}, result.Error.Kind,
				"unexpected error %v", result.Error)
		})
	}
}

func TestEveryToolSurvivesRemoteFailure(t *testing.T) {
	fake := xanotest.New(t)
	fake.Fail(http.StatusInternalServerError, `{"code":"ERROR_FATAL","message":"boom"}`)
	d, manager := newDispatcher(t, fake)

	for _, tool := range manager.ListTools() {
		if tool.Name() == "xano_get_instance_details" {
			continue
		}
		result := d.Dispatch(context.Background(), tool.Name(), requiredArgs(tool.InputSchema()))
		require.NotNil(t, result.Error, tool.Name())
		assert.Equal(t, types.KindRemote, result.Error.Kind, tool.Name())
		assert.Equal(t, "boom", result.Error.Message, tool.Name())
	}
}

func TestUnknownToolEchoesName(t *testing.T) {
	fake := xanotest.New(t)
	d, _ := newDispatcher(t, fake)

	for _, name := range []string{"xano_nope", "", "XANO_LIST_TABLES"} {
		result := d.Dispatch(context.Background(), name, nil)
		require.NotNil(t, result.Error)
		assert.Equal(t, types.KindUnknownTool, result.Error.Kind)
		assert.Equal(t, name, result.Error.Data["tool"])
	}
	assert.Zero(t, fake.RequestCount())
}

func TestMissingParameterForEveryRequiredArgument(t *testing.T) {
	fake := xanotest.New(t)
	d, manager := newDispatcher(t, fake)

	for _, tool := range manager.ListTools() {
		schema := tool.InputSchema()
		for _, required := range schema.Required {
			args := requiredArgs(schema)
			delete(args, required)

			result := d.Dispatch(context.Background(), tool.Name(), args)
			require.NotNil(t, result.Error, "%s without %s", tool.Name(), required)
			assert.Equal(t, types.KindMissingParameter, result.Error.Kind, "%s without %s", tool.Name(), required)
			assert.Equal(t, required, result.Error.Data["parameter"], tool.Name())
		}
	}
	assert.Zero(t, fake.RequestCount())
}

func TestInvalidParameterBeforeAnyRequest(t *testing.T) {
	fake := xanotest.New(t)
	d, manager := newDispatcher(t, fake)

	for _, tool := range manager.ListTools() {
		schema := tool.InputSchema()
		for name, prop := range schema.Properties {
			args := requiredArgs(schema)
			args[name] = wrongValue(prop)

			result := d.Dispatch(context.Background(), tool.Name(), args)
			require.NotNil(t, result.Error, "%s.%s", tool.Name(), name)
			assert.Equal(t, types.KindInvalidParameter, result.Error.Kind, "%s.%s", tool.Name(), name)
			assert.Equal(t, name, result.Error.Data["parameter"], "%s.%s", tool.Name(), name)
		}
	}
	assert.Zero(t, fake.RequestCount())
}

func TestListTablesScenario(t *testing.T) {
	fake := xanotest.New(t)
	fake.SetTables("3", map[string]any{"name": "users"}, map[string]any{"name": "orders"})
	d, _ := newDispatcher(t, fake)

	result := d.Dispatch(context.Background(), string(table.ListTables), map[string]any{
		"instance_name": xanotest.Instance,
		"workspace_id":  float64(3),
	})
	require.True(t, result.OK(), "%v", result.Error)
	assert.Equal(t, []any{
		map[string]any{"name": "users"},
		map[string]any{"name": "orders"},
	}, result.Payload)
}

func TestCreateRecordRequiresSchemaField(t *testing.T) {
	fake := xanotest.New(t)
	manager := tools.NewManager()
	recordSchema := types.ObjectOf("User record", types.Props{
		"email": types.String("Email address"),
		"name":  types.String("Display name"),
	}, "email")
	require.NoError(t, manager.RegisterTool(record.CreateRecordTool(fake.Client(), recordSchema)))
	d := dispatch.New(manager, fake.Config())

	result := d.Dispatch(context.Background(), string(record.CreateTableRecord), map[string]any{
		"instance_name": xanotest.Instance,
		"workspace_id":  "1",
		"table_id":      "2",
		"record_data":   map[string]any{"name": "Ada"},
	})
	require.NotNil(t, result.Error)
	assert.Equal(t, types.KindMissingParameter, result.Error.Kind)
	assert.Equal(t, "email", result.Error.Data["parameter"])
	assert.Equal(t, "record_data.email", result.Error.Data["path"])
	assert.Zero(t, fake.RequestCount())
}

func TestBulkCreateThenBrowseAndSearch(t *testing.T) {
	fake := xanotest.New(t)
	d, _ := newDispatcher(t, fake)
	ctx := context.Background()
	table := map[string]any{"instance_name": xanotest.Instance, "workspace_id": float64(1), "table_id": float64(5)}
	with := func(extra map[string]any) map[string]any {
		args := map[string]any{}
		for k, v := range table {
			args[k] = v
		}
		for k, v := range extra {
			args[k] = v
		}
		return args
	}

	records := []any{
		map[string]any{"email": "a@example.com", "role": "admin"},
		map[string]any{"email": "b@example.com", "role": "user"},
		map[string]any{"email": "c@example.com", "role": "user"},
	}
	created := d.Dispatch(ctx, string(record.BulkCreateRecords), with(map[string]any{"records": records}))
	require.True(t, created.OK(), "%v", created.Error)
	assert.Len(t, created.Payload, 3)

	browsed := d.Dispatch(ctx, string(record.BrowseTableContent), with(nil))
	require.True(t, browsed.OK(), "%v", browsed.Error)
	items := browsed.Payload.(map[string]any)["items"].([]any)
	require.Len(t, items, 3)
	emails := make([]any, 0, len(items))
	for _, item := range items {
		emails = append(emails, item.(map[string]any)["email"])
	}
	assert.ElementsMatch(t, []any{"a@example.com", "b@example.com", "c@example.com"}, emails)

	searched := d.Dispatch(ctx, string(record.SearchTableContent), with(map[string]any{
		"search_conditions": []any{map[string]any{"role": "user"}},
		"sort":              map[string]any{"email": "desc"},
	}))
	require.True(t, searched.OK(), "%v", searched.Error)
	found := searched.Payload.(map[string]any)["items"].([]any)
	require.Len(t, found, 2)
	assert.Equal(t, "c@example.com", found[0].(map[string]any)["email"])
}

func TestRateLimitedIsRemoteApplicationError(t *testing.T) {
	fake := xanotest.New(t)
	fake.Fail(http.StatusTooManyRequests, `{"code":"ERROR_CODE_TOO_MANY_REQUESTS","message":"Rate limit exceeded."}`)
	d, _ := newDispatcher(t, fake)

	result := d.Dispatch(context.Background(), string(table.ListTables), map[string]any{
		"instance_name": xanotest.Instance,
		"workspace_id":  float64(1),
	})
	require.NotNil(t, result.Error)
	assert.Equal(t, types.KindRemote, result.Error.Kind)
	assert.Equal(t, http.StatusTooManyRequests, result.Error.Data["status"])
	assert.Equal(t, true, result.Error.Data["retryable"])
	assert.Equal(t, "Rate limit exceeded.", result.Error.Message)
	assert.Equal(t, 1, fake.RequestCount())
}

func TestRemoteErrorBodyReachesCaller(t *testing.T) {
	fake := xanotest.New(t)
	fake.Fail(http.StatusBadRequest, `{"code":"ERROR_CODE_INPUT_ERROR","message":"Invalid input","payload":{"param":"email"}}`)
	d, _ := newDispatcher(t, fake)

	result := d.Dispatch(context.Background(), string(table.GetTableDetails), map[string]any{
		"instance_name": xanotest.Instance,
		"workspace_id":  float64(1),
		"table_id":      float64(2),
	})
	require.NotNil(t, result.Error)
	assert.Equal(t, types.KindRemote, result.Error.Kind)
	assert.Equal(t, "ERROR_CODE_INPUT_ERROR", result.Error.Data["code"])
	assert.Equal(t, false, result.Error.Data["retryable"])
	assert.Equal(t, map[string]any{
		"code":    "ERROR_CODE_INPUT_ERROR",
		"message": "Invalid input",
		"payload": map[string]any{"param": "email"},
	}, result.Error.Data["remote"])
}

func TestRemotePlainBodyReachesCaller(t *testing.T) {
	fake := xanotest.New(t)
	fake.Fail(http.StatusInternalServerError, "upstream exploded")
	d, _ := newDispatcher(t, fake)

	result := d.Dispatch(context.Background(), string(table.ListTables), map[string]any{
		"instance_name": xanotest.Instance,
		"workspace_id":  float64(1),
	})
	require.NotNil(t, result.Error)
	assert.Equal(t, "upstream exploded", result.Error.Data["remote"])
	assert.Equal(t, true, result.Error.Data["retryable"])
}

func TestForeignInstanceNameIsRejected(t *testing.T) {
	fake := xanotest.New(t)
	d, _ := newDispatcher(t, fake)

	result := d.Dispatch(context.Background(), string(table.ListTables), map[string]any{
		"instance_name": "attacker.example/steal?x=",
		"workspace_id":  float64(1),
	})
	require.NotNil(t, result.Error)
	assert.Equal(t, types.KindInvalidParameter, result.Error.Kind)
	assert.Equal(t, types.ArgInstance, result.Error.Data["parameter"])
	assert.Zero(t, fake.RequestCount())
}

func TestTransportFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	cfg := config.NewConfig()
	cfg.Xano.APIToken = xanotest.Token
	cfg.Xano.InstanceURLTemplate = srv.URL + "/{instance}"
	manager := tools.NewManager()
	require.NoError(t, manager.RegisterDefaultTools(xano.New(cfg)))

	result := dispatch.New(manager, cfg).Dispatch(context.Background(), string(table.ListTables), map[string]any{
		"instance_name": "x",
		"workspace_id":  "1",
	})
	require.NotNil(t, result.Error)
	assert.Equal(t, types.KindTransport, result.Error.Kind)
	assert.Equal(t, true, result.Error.Data["retryable"])
}

func TestStrictPolicyRejectsUnknownArguments(t *testing.T) {
	fake := xanotest.New(t)
	manager := tools.NewManager()
	require.NoError(t, manager.RegisterDefaultTools(fake.Client()))
	args := map[string]any{"instance_name": xanotest.Instance, "workspace_id": float64(1), "colour": "blue"}

	lenient := dispatch.New(manager, fake.Config()).Dispatch(context.Background(), string(table.ListTables), args)
	assert.True(t, lenient.OK(), "%v", lenient.Error)

	cfg := fake.Config()
	cfg.Dispatch.UnknownArguments = config.PolicyStrict
	strict := dispatch.New(manager, cfg).Dispatch(context.Background(), string(table.ListTables), args)
	require.NotNil(t, strict.Error)
	assert.Equal(t, types.KindInvalidParameter, strict.Error.Kind)
	assert.Equal(t, "colour", strict.Error.Data["parameter"])
	assert.Equal(t, "unknown parameter", strict.Error.Data["reason"])
}

func TestPanickingToolBecomesInternalError(t *testing.T) {
	manager := tools.NewManager()
	require.NoError(t, manager.RegisterTool(types.New("xano_explode", "panics", types.Schema("Explode", nil),
		func(context.Context, struct{}) (any, error) {
			panic("kaboom")
		})))

	cfg := config.NewConfig()
	result := dispatch.New(manager, cfg).Dispatch(context.Background(), "xano_explode", nil)
	require.NotNil(t, result.Error)
	assert.Equal(t, types.KindInternal, result.Error.Kind)
	assert.Equal(t, "xano_explode", result.Error.Data["tool"])
}

func TestCancelledContextDoesNotAbortCall(t *testing.T) {
	fake := xanotest.New(t)
	fake.SetTables("1", map[string]any{"name": "users"})
	d, _ := newDispatcher(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := d.Dispatch(ctx, string(table.ListTables), map[string]any{
		"instance_name": xanotest.Instance,
		"workspace_id":  "1",
	})
	require.True(t, result.OK(), "%v", result.Error)
	assert.Equal(t, []any{map[string]any{"name": "users"}}, result.Payload)
}

func TestErrorFields(t *testing.T) {
	err := &dispatch.Error{Kind: types.KindRemote, Message: "nope", Data: map[string]any{"status": 404}}
	assert.Equal(t, map[string]any{"kind": "RemoteApplicationError", "message": "nope", "status": 404}, err.Fields())
}
