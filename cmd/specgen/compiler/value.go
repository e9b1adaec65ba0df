package compiler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"specgen/cmd/specgen/spec"
)

// ValueKind tells the emitter how a compiled value must be written.
type ValueKind uint8

const (
	// ValueNone means no initializer at all.
	ValueNone ValueKind = iota
	ValueLiteral
	ValueEmptyInstance
	ValueEmptyContainer
	ValueEmptyString
)

func (k ValueKind) String() string {
	switch k {
	case ValueNone:
		return "none"
	case ValueLiteral:
		return "literal"
	case ValueEmptyInstance:
		return "empty-instance"
	case ValueEmptyContainer:
		return "empty-container"
	case ValueEmptyString:
		return "empty-string"
	default:
		return "unknown"
	}
}

// CompiledValue is a property or constant value rendered for one backend.
// Text is empty for ValueNone.
type CompiledValue struct {
	Kind ValueKind
	Text string
}

// IsNone reports whether no initializer should be emitted.
func (v CompiledValue) IsNone() bool { return v.Kind == ValueNone }

// ValueRenderer spells values in a backend's syntax. Every method receives
// values already checked against the resolved type.
type ValueRenderer interface {
	RenderBool(v bool) string
	RenderInt(v int64) string
	RenderFloat(v float64) string
	RenderString(v string) string
	RenderDate(v time.Time) string
	RenderTimespan(v time.Duration) string
	RenderList(t *spec.Type, elems []string) string
	RenderEnum(e *spec.Enum, labels []string) string
	RenderNull(t *spec.Type) string

	EmptyInstance(t *spec.Type) string
	EmptyContainer(t *spec.Type) string
	EmptyString() string
}

// DefaultValue returns the value used when no literal is given.
func DefaultValue(r ValueRenderer, t *spec.Type) CompiledValue {
	if t.Optional {
		return CompiledValue{Kind: ValueNone}
	}
	switch t.Kind() {
	case spec.TypeAny, spec.TypeObject:
		return CompiledValue{Kind: ValueEmptyInstance, Text: r.EmptyInstance(t)}
	case spec.TypeList, spec.TypeSet, spec.TypeMap:
		return CompiledValue{Kind: ValueEmptyContainer, Text: r.EmptyContainer(t)}
	case spec.TypeString:
		return CompiledValue{Kind: ValueEmptyString, Text: r.EmptyString()}
	default:
		return CompiledValue{Kind: ValueNone}
	}
}

// CompileValue renders v against t, or the default of t when v is nil. path
// is the breadcrumb used in errors.
func CompileValue(r ValueRenderer, path string, t *spec.Type, v *spec.Value) (CompiledValue, error) {
	if v == nil {
		return DefaultValue(r, t), nil
	}
	text, err := renderLiteral(r, path, t, v)
	if err != nil {
		return CompiledValue{}, err
	}
	return CompiledValue{Kind: ValueLiteral, Text: text}, nil
}

func renderLiteral(r ValueRenderer, path string, t *spec.Type, v *spec.Value) (string, error) {
	if v.Kind == spec.ValueMap {
		return "", &spec.UnsupportedValueError{Path: path, Kind: v.Kind}
	}
	if v.Kind == spec.ValueNull {
		if !t.Optional {
			return "", mismatch(path, t, v)
		}
		return r.RenderNull(t), nil
	}

	switch t.Kind() {
	case spec.TypeBool:
		if v.Kind == spec.ValueBool {
			return r.RenderBool(v.Bool), nil
		}
	case spec.TypeInt:
		if v.Kind == spec.ValueInt {
			return r.RenderInt(v.Int), nil
		}
	case spec.TypeFloat:
		switch v.Kind {
		case spec.ValueFloat:
			return r.RenderFloat(v.Float), nil
		case spec.ValueInt:
			return r.RenderFloat(float64(v.Int)), nil
		}
	case spec.TypeString:
		if v.Kind == spec.ValueString {
			return r.RenderString(v.String), nil
		}
	case spec.TypeDate:
		if v.Kind == spec.ValueString {
			d, err := ParseDate(v.String)
			if err != nil {
				return "", mismatch(path, t, v)
			}
			return r.RenderDate(d), nil
		}
	case spec.TypeTimespan:
		if v.Kind == spec.ValueString {
			d, err := ParseTimespan(v.String)
			if err != nil {
				return "", mismatch(path, t, v)
			}
			return r.RenderTimespan(d), nil
		}
	case spec.TypeEnum:
		if v.Kind == spec.ValueString {
			labels, err := enumLabels(t.Decl.Enum, v.String)
			if err != nil {
				return "", mismatch(path, t, v)
			}
			return r.RenderEnum(t.Decl.Enum, labels), nil
		}
	case spec.TypeList, spec.TypeSet:
		if v.Kind == spec.ValueList {
			return renderElems(r, path, t, t.Args[0], v.List)
		}
	case spec.TypeAny:
		return renderAny(r, path, t, v)
	case spec.TypeMap, spec.TypeObject:
		if v.Kind == spec.ValueList {
			return "", mismatch(path, t, v)
		}
		return "", &spec.UnsupportedValueError{Path: path, Kind: v.Kind}
	}
	return "", mismatch(path, t, v)
}

func renderElems(r ValueRenderer, path string, t, elem *spec.Type, items []*spec.Value) (string, error) {
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, err := renderLiteral(r, fmt.Sprintf("%s[%d]", path, i), elem, item)
		if err != nil {
			return "", err
		}
		out = append(out, s)
	}
	return r.RenderList(t, out), nil
}

// renderAny renders a literal assigned to an "any" property by its own kind.
func renderAny(r ValueRenderer, path string, t *spec.Type, v *spec.Value) (string, error) {
	switch v.Kind {
	case spec.ValueBool:
		return r.RenderBool(v.Bool), nil
	case spec.ValueInt:
		return r.RenderInt(v.Int), nil
	case spec.ValueFloat:
		return r.RenderFloat(v.Float), nil
	case spec.ValueString:
		return r.RenderString(v.String), nil
	case spec.ValueList:
		return renderElems(r, path, t, t, v.List)
	}
	return "", &spec.UnsupportedValueError{Path: path, Kind: v.Kind}
}

func mismatch(path string, t *spec.Type, v *spec.Value) error {
	return &spec.PropertyTypeMismatchError{Path: path, Type: t.Name(), Value: v.Kind.String()}
}

// enumLabels splits a selection such as "Read|Write" and checks every label
// against e. Several labels are only allowed for flags enums.
func enumLabels(e *spec.Enum, sel string) ([]string, error) {
	parts := strings.Split(sel, "|")
	if len(parts) > 1 && !e.Flags {
		return nil, fmt.Errorf("enum %s is not a flags enum", e.Name)
	}
	labels := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if _, ok := e.Lookup(p); !ok {
			return nil, fmt.Errorf("enum %s has no label %q", e.Name, p)
		}
		labels = append(labels, p)
	}
	return labels, nil
}

// ParseDate accepts RFC 3339 timestamps and plain 2006-01-02 dates.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

// ParseTimespan accepts Go durations ("1h30m") and clock spans ("01:30:00").
func ParseTimespan(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid timespan %q", s)
	}
	var total time.Duration
	units := []time.Duration{time.Hour, time.Minute, time.Second}
	for i, p := range parts {
		n, err := strconv.ParseFloat(p, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid timespan %q", s)
		}
		total += time.Duration(n * float64(units[i]))
	}
	return total, nil
}
