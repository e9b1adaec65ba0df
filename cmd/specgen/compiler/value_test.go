package compiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"specgen/cmd/specgen/spec"
)

// typeOf resolves ref inside a scratch file that declares the enums
// Color{Red,Blue} and Perm{Read=1,Write=2} (flags) and definition Box.
func typeOf(t *testing.T, ref string) *spec.Type {
	t.Helper()
	f := spec.NewFile("values.spec", "")
	color, err := f.AddEnum("Color", "", false)
	require.NoError(t, err)
	require.NoError(t, color.AddValue("Red", 0))
	require.NoError(t, color.AddValue("Blue", 1))
	perm, err := f.AddEnum("Perm", "", true)
	require.NoError(t, err)
	require.NoError(t, perm.AddValue("Read", 1))
	require.NoError(t, perm.AddValue("Write", 2))
	box, err := f.AddDefinition("Box", "")
	require.NoError(t, err)
	p, err := box.AddProperty("probe", "", ref, nil)
	require.NoError(t, err)
	resolveAll(t, f)
	return p.Type
}

func lit(raw any) *spec.Value {
	v, err := spec.NewValue(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func TestDefaultValue_Policy(t *testing.T) {
	tests := []struct {
		ref  string
		kind ValueKind
		text string
	}{
		{ref: "int?", kind: ValueNone},
		{ref: "list<string>", kind: ValueEmptyContainer, text: "[]"},
		{ref: "set<int>", kind: ValueEmptyContainer, text: "[]"},
		{ref: "map<string,int>", kind: ValueEmptyContainer, text: "[]"},
		{ref: "list<string>?", kind: ValueNone},
		{ref: "string", kind: ValueEmptyString, text: `""`},
		{ref: "any", kind: ValueEmptyInstance, text: "new any()"},
		{ref: "Box", kind: ValueEmptyInstance, text: "new Box()"},
		{ref: "int", kind: ValueNone},
		{ref: "bool", kind: ValueNone},
		{ref: "date", kind: ValueNone},
		{ref: "Color", kind: ValueNone},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := CompileValue(fakeRenderer{}, "p", typeOf(t, tt.ref), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.text, got.Text)
		})
	}
}

func TestCompileValue_Literals(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		val  any
		want string
	}{
		{name: "string", ref: "string", val: "hi", want: `"hi"`},
		{name: "bool", ref: "bool", val: true, want: "true"},
		{name: "int", ref: "int", val: 42, want: "42"},
		{name: "int as float", ref: "float", val: 3, want: "3"},
		{name: "float", ref: "float", val: 2.5, want: "2.5"},
		{name: "date", ref: "date", val: "2024-02-29", want: "date(2024-02-29)"},
		{name: "rfc3339", ref: "date", val: "2024-02-29T10:00:00Z", want: "date(2024-02-29)"},
		{name: "duration", ref: "timespan", val: "1h30m", want: "span(1h30m0s)"},
		{name: "clock", ref: "timespan", val: "00:01:30", want: "span(1m30s)"},
		{name: "enum", ref: "Color", val: "Blue", want: "Color.Blue"},
		{name: "flags", ref: "Perm", val: "Read|Write", want: "Perm.Read | Perm.Write"},
		{name: "list", ref: "list<int>", val: []any{1, 2}, want: "[1, 2]"},
		{name: "nested", ref: "list<list<string>>", val: []any{[]any{"a"}, []any{}}, want: `[["a"], []]`},
		{name: "enum list", ref: "set<Color>", val: []any{"Red"}, want: "[Color.Red]"},
		{name: "null", ref: "int?", val: nil, want: "null"},
		{name: "any scalar", ref: "any", val: "x", want: `"x"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CompileValue(fakeRenderer{}, "p", typeOf(t, tt.ref), lit(tt.val))
			require.NoError(t, err)
			assert.Equal(t, ValueLiteral, got.Kind)
			assert.Equal(t, tt.want, got.Text)
		})
	}
}

func TestCompileValue_Mismatch(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		val  any
	}{
		{name: "string for int", ref: "int", val: "1"},
		{name: "float for int", ref: "int", val: 1.5},
		{name: "null for required", ref: "string", val: nil},
		{name: "bad date", ref: "date", val: "yesterday"},
		{name: "bad timespan", ref: "timespan", val: "1:2"},
		{name: "unknown label", ref: "Color", val: "Green"},
		{name: "flags on plain enum", ref: "Color", val: "Red|Blue"},
		{name: "bad element", ref: "list<int>", val: []any{1, "two"}},
		{name: "list for map", ref: "map<string,int>", val: []any{}},
		{name: "scalar for list", ref: "list<int>", val: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileValue(fakeRenderer{}, "f:D:p", typeOf(t, tt.ref), lit(tt.val))
			var mm *spec.PropertyTypeMismatchError
			require.ErrorAs(t, err, &mm)
			assert.ErrorIs(t, err, spec.ErrTypeMismatch)
		})
	}
}

func TestCompileValue_Unsupported(t *testing.T) {
	for _, ref := range []string{"map<string,int>", "Box", "any", "list<int>"} {
		t.Run(ref, func(t *testing.T) {
			_, err := CompileValue(fakeRenderer{}, "f:D:p", typeOf(t, ref), lit(map[string]any{"a": 1}))
			var uv *spec.UnsupportedValueError
			require.ErrorAs(t, err, &uv)
			assert.Equal(t, spec.ValueMap, uv.Kind)
		})
	}

	_, err := CompileValue(fakeRenderer{}, "f:D:p", typeOf(t, "Box"), lit("text"))
	require.ErrorIs(t, err, spec.ErrUnsupportedValue)
}

func TestCompileValue_ElementPath(t *testing.T) {
	_, err := CompileValue(fakeRenderer{}, "f:D:p", typeOf(t, "list<int>"), lit([]any{1, "x"}))
	require.Error(t, err)
	mustContain(t, err.Error(), "path=f:D:p[1]")
}

func TestParseTimespan(t *testing.T) {
	d, err := ParseTimespan("01:02:03.5")
	require.NoError(t, err)
	assert.Equal(t, time.Hour+2*time.Minute+3500*time.Millisecond, d)

	_, err = ParseTimespan("-1:00:00")
	require.Error(t, err)
}
