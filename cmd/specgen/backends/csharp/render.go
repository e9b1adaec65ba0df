package csharp

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"specgen/cmd/specgen/naming"
	"specgen/cmd/specgen/spec"
)

// renderer spells values in C#. Collection literals depend on the options
// of the property being compiled.
type renderer struct {
	opts Options
}

func (renderer) RenderBool(v bool) string { return strconv.FormatBool(v) }
func (renderer) RenderInt(v int64) string { return strconv.FormatInt(v, 10) }

func (renderer) RenderFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "double.NaN"
	case math.IsInf(v, 1):
		return "double.PositiveInfinity"
	case math.IsInf(v, -1):
		return "double.NegativeInfinity"
	}
	return strconv.FormatFloat(v, 'g', -1, 64) + "d"
}

func (renderer) RenderString(v string) string { return quote(v) }

func (renderer) RenderDate(v time.Time) string {
	v = v.UTC()
	if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 {
		return fmt.Sprintf("new DateTime(%d, %d, %d)", v.Year(), v.Month(), v.Day())
	}
	return fmt.Sprintf("new DateTime(%d, %d, %d, %d, %d, %d, DateTimeKind.Utc)",
		v.Year(), v.Month(), v.Day(), v.Hour(), v.Minute(), v.Second())
}

func (renderer) RenderTimespan(v time.Duration) string {
	if v%time.Second == 0 {
		return fmt.Sprintf("TimeSpan.FromSeconds(%d)", int64(v/time.Second))
	}
	return fmt.Sprintf("TimeSpan.FromTicks(%d)", int64(v/100))
}

func (r renderer) RenderList(t *spec.Type, elems []string) string {
	elem := "object"
	if t.Kind() == spec.TypeList || t.Kind() == spec.TypeSet {
		elem = typeName(t.Args[0], r.opts)
	}
	if r.opts.ImmutableCollections && t.Kind() != spec.TypeAny {
		return fmt.Sprintf("%s.Create<%s>(%s)", immutableFactory(t), elem, strings.Join(elems, ", "))
	}
	if len(elems) == 0 {
		return "new " + containerName(t, r.opts) + "()"
	}
	return "new " + containerName(t, r.opts) + " { " + strings.Join(elems, ", ") + " }"
}

func immutableFactory(t *spec.Type) string {
	if t.Kind() == spec.TypeSet {
		return "ImmutableHashSet"
	}
	return "ImmutableList"
}

// containerName names the collection a list literal builds; literals given
// to "any" become object lists.
func containerName(t *spec.Type, o Options) string {
	if t.Kind() == spec.TypeAny {
		return "List<object>"
	}
	return bareTypeName(t, o)
}

func (renderer) RenderEnum(e *spec.Enum, labels []string) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = enumName(e) + "." + naming.Pascal(l)
	}
	return strings.Join(parts, " | ")
}

func (renderer) RenderNull(*spec.Type) string { return "null" }

func (renderer) EmptyInstance(t *spec.Type) string {
	if t.Kind() == spec.TypeAny {
		return "new object()"
	}
	return "new()"
}

func (r renderer) EmptyContainer(t *spec.Type) string {
	if r.opts.ImmutableCollections {
		return bareTypeName(t, r.opts) + ".Empty"
	}
	return "new()"
}

func (renderer) EmptyString() string { return "string.Empty" }

// quote writes a regular C# string literal. Control characters use \u
// escapes since C# \x escapes have a variable length.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
