package spec

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ValueKind is the shape of a literal as written in the spec file.
type ValueKind uint8

const (
	ValueNull ValueKind = iota
	ValueBool
	ValueInt
	ValueFloat
	ValueString
	ValueList
	ValueMap
)

func (k ValueKind) String() string {
	switch k {
	case ValueNull:
		return "null"
	case ValueBool:
		return "bool"
	case ValueInt:
		return "int"
	case ValueFloat:
		return "float"
	case ValueString:
		return "string"
	case ValueList:
		return "list"
	case ValueMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is a literal taken from the raw tree. Dates, timespans and enum
// selections are strings until they are compiled against a resolved type.
type Value struct {
	Kind   ValueKind
	Bool   bool
	Int    int64
	Float  float64
	String string
	List   []*Value
	// Map keeps entries in key order; map literals are rejected when
	// compiled but are still represented so the error can point at them.
	Map []MapEntry
}

// MapEntry is one key of a map literal.
type MapEntry struct {
	Key   string
	Value *Value
}

// NewValue converts a raw scalar, slice or map into a Value.
func NewValue(raw any) (*Value, error) {
	switch v := raw.(type) {
	case nil:
		return &Value{Kind: ValueNull}, nil
	case bool:
		return &Value{Kind: ValueBool, Bool: v}, nil
	case int:
		return &Value{Kind: ValueInt, Int: int64(v)}, nil
	case int64:
		return &Value{Kind: ValueInt, Int: v}, nil
	case uint64:
		return &Value{Kind: ValueInt, Int: int64(v)}, nil
	case float64:
		return &Value{Kind: ValueFloat, Float: v}, nil
	case string:
		return &Value{Kind: ValueString, String: v}, nil
	case []any:
		out := &Value{Kind: ValueList, List: make([]*Value, 0, len(v))}
		for i, item := range v {
			elem, err := NewValue(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out.List = append(out.List, elem)
		}
		return out, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := &Value{Kind: ValueMap}
		for _, k := range keys {
			elem, err := NewValue(v[k])
			if err != nil {
				return nil, fmt.Errorf("[%s]: %w", k, err)
			}
			out.Map = append(out.Map, MapEntry{Key: k, Value: elem})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, raw)
	}
}

func (v *Value) Format() string {
	switch v.Kind {
	case ValueNull:
		return "null"
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	case ValueInt:
		return strconv.FormatInt(v.Int, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case ValueString:
		return strconv.Quote(v.String)
	case ValueList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = e.Format()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case ValueMap:
		parts := make([]string, len(v.Map))
		for i, e := range v.Map {
			parts[i] = e.Key + ": " + e.Value.Format()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return "?"
}
