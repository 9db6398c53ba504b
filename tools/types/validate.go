package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/slighter12/xano-mcp-go/mcp"
)

// Validate checks args against schema. Required arguments are checked in
// declaration order, then supplied arguments in name order. A null value
// counts as absent, and so does a blank string for a required argument.
// When rejectUnknown is set, arguments the schema does not declare fail
// with InvalidParameter.
//
// Type and enum constraints are enforced by jsonschema-go one node at a time
// so a failure can name the exact argument path, e.g. "ids[1]".
func Validate(schema mcp.InputSchema, args map[string]any, rejectUnknown bool) error {
	for _, name := range schema.Required {
		if absent(args[name]) {
			return NewMissingParameter(name)
		}
	}

	names := sortedKeys(args)
	for _, name := range names {
		value := args[name]
		prop, declared := schema.Properties[name]
		if !declared {
			if rejectUnknown {
				return NewInvalidParameter(name, "", "unknown parameter")
			}
			continue
		}
		if value == nil {
			continue
		}
		if err := checkValue(name, prop, value); err != nil {
			return err
		}
	}
	return nil
}

func absent(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func checkValue(path string, prop mcp.Property, value any) error {
	ok, err := conforms(typeSchema(prop), value)
	if err != nil {
		return err
	}
	if !ok {
		return NewInvalidParameter(path, prop.Type.String(), "got "+describe(value))
	}

	if ok, err = conforms(enumSchema(prop), value); err != nil {
		return err
	}
	if !ok {
		return NewInvalidParameter(path, "one of "+strings.Join(prop.Enum, ", "), fmt.Sprintf("got %q", fmt.Sprint(value)))
	}

	if obj, isObj := value.(map[string]any); isObj && (len(prop.Properties) > 0 || len(prop.Required) > 0) {
		if err := checkObject(path, prop, obj); err != nil {
			return err
		}
	}
	if prop.Items != nil {
		if items, isList := value.([]any); isList {
			for i, item := range items {
				if err := checkValue(fmt.Sprintf("%s[%d]", path, i), *prop.Items, item); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// checkObject validates the declared fields of a nested object. Missing
// fields are named by their own key; data.path carries the full location.
func checkObject(path string, prop mcp.Property, obj map[string]any) error {
	for _, name := range prop.Required {
		if absent(obj[name]) {
			err := NewMissingParameter(name)
			err.Data["path"] = path + "." + name
			return err
		}
	}
	for _, name := range sortedKeys(obj) {
		field, declared := prop.Properties[name]
		if !declared || obj[name] == nil {
			continue
		}
		if err := checkValue(path+"."+name, field, obj[name]); err != nil {
			return err
		}
	}
	return nil
}

func typeSchema(prop mcp.Property) *jsonschema.Schema {
	switch len(prop.Type) {
	case 0:
		return nil
	case 1:
		return &jsonschema.Schema{Type: prop.Type[0]}
	default:
		return &jsonschema.Schema{Types: append([]string(nil), prop.Type...)}
	}
}

func enumSchema(prop mcp.Property) *jsonschema.Schema {
	if len(prop.Enum) == 0 {
		return nil
	}
	values := make([]any, len(prop.Enum))
	for i, v := range prop.Enum {
		values[i] = v
	}
	return &jsonschema.Schema{Enum: values}
}

// resolvedSchemas caches compiled node schemas by their JSON form. Tool
// catalogs reuse a small set of type and enum shapes.
var resolvedSchemas sync.Map

func conforms(schema *jsonschema.Schema, value any) (bool, error) {
	if schema == nil {
		return true, nil
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return false, fmt.Errorf("encode schema: %w", err)
	}
	key := string(raw)

	cached, ok := resolvedSchemas.Load(key)
	if !ok {
		rs, err := schema.Resolve(nil)
		if err != nil {
			return false, fmt.Errorf("resolve schema %s: %w", key, err)
		}
		cached, _ = resolvedSchemas.LoadOrStore(key, rs)
	}
	return cached.(*jsonschema.Resolved).Validate(instance(value)) == nil, nil
}

// instance converts decoder output to the plain JSON types the validator
// understands. json.Number is only compared by kind and magnitude here, so
// float64 is precise enough.
func instance(value any) any {
	if n, ok := value.(json.Number); ok {
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	}
	return value
}

func describe(value any) string {
	switch v := instance(value).(type) {
	case string:
		return TypeString
	case bool:
		return TypeBoolean
	case map[string]any:
		return TypeObject
	case []any:
		return TypeArray
	case float64, float32, int, int32, int64:
		return TypeNumber
	default:
		return fmt.Sprintf("%T", v)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
