package unreal

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"specgen/cmd/specgen/naming"
	"specgen/cmd/specgen/spec"
)

// renderer spells values as C++ initializers.
type renderer struct{}

func (renderer) RenderBool(v bool) string { return strconv.FormatBool(v) }
func (renderer) RenderInt(v int64) string { return strconv.FormatInt(v, 10) }

func (renderer) RenderFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NAN"
	case math.IsInf(v, 1):
		return "INFINITY"
	case math.IsInf(v, -1):
		return "-INFINITY"
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func (renderer) RenderString(v string) string { return "TEXT(" + quote(v) + ")" }

func (renderer) RenderDate(v time.Time) string {
	v = v.UTC()
	if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 {
		return fmt.Sprintf("FDateTime(%d, %d, %d)", v.Year(), v.Month(), v.Day())
	}
	return fmt.Sprintf("FDateTime(%d, %d, %d, %d, %d, %d)", v.Year(), v.Month(), v.Day(), v.Hour(), v.Minute(), v.Second())
}

func (renderer) RenderTimespan(v time.Duration) string {
	if v%time.Second == 0 {
		return fmt.Sprintf("FTimespan::FromSeconds(%d)", int64(v/time.Second))
	}
	return fmt.Sprintf("FTimespan(%d)", int64(v/100))
}

func (renderer) RenderList(t *spec.Type, elems []string) string {
	return typeName(t) + "{" + strings.Join(elems, ", ") + "}"
}

func (renderer) RenderEnum(e *spec.Enum, labels []string) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = enumName(e) + "::" + naming.Pascal(l)
	}
	return strings.Join(parts, " | ")
}

func (renderer) RenderNull(t *spec.Type) string   { return typeName(t) + "()" }
func (renderer) EmptyInstance(*spec.Type) string  { return "" }
func (renderer) EmptyContainer(*spec.Type) string { return "" }
func (renderer) EmptyString() string              { return "" }

// quote writes a C++ string literal.
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
				fmt.Fprintf(&b, `\x%02x""`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
