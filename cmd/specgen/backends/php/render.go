package php

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"specgen/cmd/specgen/naming"
	"specgen/cmd/specgen/spec"
)

// renderer spells values as PHP constant expressions, which is what
// parameter defaults accept.
type renderer struct{}

func (renderer) RenderBool(v bool) string { return strconv.FormatBool(v) }
func (renderer) RenderInt(v int64) string { return strconv.FormatInt(v, 10) }

func (renderer) RenderFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NAN"
	case math.IsInf(v, 1):
		return "INF"
	case math.IsInf(v, -1):
		return "-INF"
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func (renderer) RenderString(v string) string { return quote(v) }

func (renderer) RenderDate(v time.Time) string {
	return `new \DateTimeImmutable(` + quote(v.Format(time.RFC3339)) + `)`
}

func (renderer) RenderTimespan(v time.Duration) string {
	return `new \DateInterval(` + quote(isoDuration(v)) + `)`
}

func (renderer) RenderList(_ *spec.Type, elems []string) string {
	return "[" + strings.Join(elems, ", ") + "]"
}

func (renderer) RenderEnum(e *spec.Enum, labels []string) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = enumName(e) + "::" + caseName(e, l)
	}
	return strings.Join(parts, " | ")
}

func (renderer) RenderNull(*spec.Type) string { return "null" }

func (renderer) EmptyInstance(t *spec.Type) string {
	if t.Kind() == spec.TypeAny {
		return `new \stdClass()`
	}
	return "new " + className(t.Decl.Definition) + "()"
}

func (renderer) EmptyContainer(*spec.Type) string { return "[]" }
func (renderer) EmptyString() string              { return "''" }

// caseName is the member name of label: a case of a backed enum or a
// constant of a flags class.
func caseName(e *spec.Enum, label string) string {
	if e.Flags {
		return naming.Upper(label)
	}
	return naming.Pascal(label)
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// quote writes a single quoted PHP string.
func quote(s string) string {
	return "'" + quoteEscaper.Replace(s) + "'"
}

// isoDuration spells d as an ISO 8601 duration for DateInterval, which has
// no sub-second precision.
func isoDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	if d == 0 {
		return "PT0S"
	}
	h := int64(d / time.Hour)
	d -= time.Duration(h) * time.Hour
	m := int64(d / time.Minute)
	d -= time.Duration(m) * time.Minute
	s := int64(d / time.Second)

	var b strings.Builder
	b.WriteString("PT")
	if h > 0 {
		fmt.Fprintf(&b, "%dH", h)
	}
	if m > 0 {
		fmt.Fprintf(&b, "%dM", m)
	}
	if s > 0 {
		fmt.Fprintf(&b, "%dS", s)
	}
	return b.String()
}
