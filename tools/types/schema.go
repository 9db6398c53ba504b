package types

import (
	"sort"

	"github.com/slighter12/xano-mcp-go/mcp"
	"github.com/slighter12/xano-mcp-go/xano"
)

// JSON Schema type names accepted in tool input schemas.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
)

// Props maps argument names to their schema.
type Props map[string]mcp.Property

// With returns a copy of p with name set to prop.
func (p Props) With(name string, prop mcp.Property) Props {
	out := make(Props, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	out[name] = prop
	return out
}

// Merge returns a copy of p extended with other.
func (p Props) Merge(other Props) Props {
	out := make(Props, len(p)+len(other))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Names returns the property names in sorted order.
func (p Props) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Schema builds an object input schema.
func Schema(title string, props Props, required ...string) mcp.InputSchema {
	if props == nil {
		props = Props{}
	}
	if required == nil {
		required = []string{}
	}
	return mcp.InputSchema{
		Type:       TypeObject,
		Properties: props,
		Required:   required,
		Title:      title,
	}
}

func String(description string) mcp.Property {
	return mcp.Property{Type: mcp.Types(TypeString), Description: description}
}

func Integer(description string) mcp.Property {
	return mcp.Property{Type: mcp.Types(TypeInteger), Description: description}
}

func Number(description string) mcp.Property {
	return mcp.Property{Type: mcp.Types(TypeNumber), Description: description}
}

func Boolean(description string) mcp.Property {
	return mcp.Property{Type: mcp.Types(TypeBoolean), Description: description}
}

func Object(description string) mcp.Property {
	return mcp.Property{Type: mcp.Types(TypeObject), Description: description}
}

// ObjectOf describes an object with known fields.
func ObjectOf(description string, props Props, required ...string) mcp.Property {
	return mcp.Property{
		Type:        mcp.Types(TypeObject),
		Description: description,
		Properties:  props,
		Required:    required,
	}
}

// Array describes a list whose elements match items.
func Array(description string, items mcp.Property) mcp.Property {
	return mcp.Property{Type: mcp.Types(TypeArray), Description: description, Items: &items}
}

// ID describes an identifier given as an integer or a numeric string.
func ID(description string) mcp.Property {
	return mcp.Property{Type: mcp.Types(TypeInteger, TypeString), Description: description}
}

// Enum describes a string restricted to values.
func Enum(description string, values ...string) mcp.Property {
	return mcp.Property{Type: mcp.Types(TypeString), Description: description, Enum: values}
}

// Default returns prop with a default value.
func Default(prop mcp.Property, value any) mcp.Property {
	prop.Default = value
	return prop
}

// PagingProps returns the page and per_page properties.
func PagingProps() Props {
	return Props{
		"page":     Default(Integer("Page number"), xano.DefaultPage),
		"per_page": Default(Integer("Number of items per page"), xano.DefaultPerPage),
	}
}

// Paging is the decoded form of PagingProps.
type Paging struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// Xano converts p to client paging.
func (p Paging) Xano() xano.Paging {
	return xano.Paging{Page: p.Page, PerPage: p.PerPage}
}
