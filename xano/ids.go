package xano

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID identifies a workspace, table, record, index or file. It decodes from
// a JSON number or string; surrounding quotes and whitespace in string form
// are dropped.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ParseID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s", trimmed)
	}
	if i, err := n.Int64(); err == nil {
		*id = ID(strconv.FormatInt(i, 10))
		return nil
	}
	f, err := n.Float64()
	if err != nil || f != float64(int64(f)) {
		return fmt.Errorf("invalid id %s", trimmed)
	}
	*id = ID(strconv.FormatInt(int64(f), 10))
	return nil
}

// ParseID normalizes a textual identifier.
func ParseID(s string) ID {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return ID(strings.TrimSpace(s))
}

func (id ID) String() string { return string(id) }

// Empty reports whether no identifier was given.
func (id ID) Empty() bool { return id == "" }

// IDs converts ids to the JSON representation the API expects: integers
// where the identifier is numeric, strings otherwise.
func IDs(ids []ID) []any {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Value())
	}
	return out
}

// Value returns id as an int64 when numeric, else as a string.
func (id ID) Value() any {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return n
	}
	return string(id)
}
