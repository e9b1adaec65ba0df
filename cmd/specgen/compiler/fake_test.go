package compiler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"specgen/cmd/specgen/spec"
)

// fakeBackend puts everything of one input file into "<file>.out" and
// imports other buckets by name.
type fakeBackend struct{}

func (fakeBackend) Name() string { return "fake" }

func (fakeBackend) GetCompiledIncludeForType(_ *BuildContext, _ *BuiltFile, t *spec.Type) (string, bool) {
	f := t.Decl.File()
	if f == nil {
		return "", false
	}
	return bucketOf(f), true
}

func bucketOf(f *spec.File) string { return f.Name + ".out" }

type fakeRenderer struct{}

func (fakeRenderer) RenderBool(v bool) string              { return strconv.FormatBool(v) }
func (fakeRenderer) RenderInt(v int64) string              { return strconv.FormatInt(v, 10) }
func (fakeRenderer) RenderFloat(v float64) string          { return strconv.FormatFloat(v, 'f', -1, 64) }
func (fakeRenderer) RenderString(v string) string          { return strconv.Quote(v) }
func (fakeRenderer) RenderDate(v time.Time) string         { return "date(" + v.Format(time.DateOnly) + ")" }
func (fakeRenderer) RenderTimespan(v time.Duration) string { return "span(" + v.String() + ")" }
func (fakeRenderer) RenderNull(*spec.Type) string          { return "null" }
func (fakeRenderer) EmptyInstance(t *spec.Type) string     { return "new " + t.Decl.Name + "()" }
func (fakeRenderer) EmptyContainer(*spec.Type) string      { return "[]" }
func (fakeRenderer) EmptyString() string                   { return `""` }

func (fakeRenderer) RenderList(_ *spec.Type, elems []string) string {
	return "[" + strings.Join(elems, ", ") + "]"
}

func (fakeRenderer) RenderEnum(e *spec.Enum, labels []string) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = e.Name + "." + l
	}
	return strings.Join(parts, " | ")
}

type fakeEnumBuilder struct{ names string }

func (b fakeEnumBuilder) Backend() fakeBackend { return fakeBackend{} }
func (b fakeEnumBuilder) Names() string        { return b.names }

func (b fakeEnumBuilder) GetBuiltFileName(ctx *BuildContext, _ *spec.Enum) string {
	return bucketOf(ctx.Source)
}

func (b fakeEnumBuilder) Build(ctx *BuildContext, e *spec.Enum) error {
	bucket := ctx.GetOrAddFile(b.GetBuiltFileName(ctx, e), Primary)
	be := &BuiltEnum{Name: e.Name, Source: e, Flags: e.Flags}
	for _, v := range e.Values {
		be.Values = append(be.Values, BuiltEnumValue{Name: v.Label, Value: v.Value})
	}
	bucket.Enums = append(bucket.Enums, be)
	return nil
}

type fakeDefinitionBuilder struct{ names string }

func (b fakeDefinitionBuilder) Backend() fakeBackend { return fakeBackend{} }
func (b fakeDefinitionBuilder) Names() string        { return b.names }

func (b fakeDefinitionBuilder) GetBuiltFileName(ctx *BuildContext, _ *spec.Definition) string {
	return bucketOf(ctx.Source)
}

func (b fakeDefinitionBuilder) GetCompiledClassName(d *spec.Definition) string { return d.Name }

func (b fakeDefinitionBuilder) GetCompiledDefaultValueForPropertyType(t *spec.Type) CompiledValue {
	return DefaultValue(fakeRenderer{}, t)
}

func (b fakeDefinitionBuilder) GetCompiledDesiredPropertyValue(p *spec.Property) (CompiledValue, error) {
	return CompileValue(fakeRenderer{}, p.FullName(), p.Type, p.Value)
}

func (b fakeDefinitionBuilder) SerializeFunction(*spec.Definition) *BuiltFunction {
	return &BuiltFunction{Name: "serialize", Kind: FuncSerialize}
}

func (b fakeDefinitionBuilder) DeserializeFunction(*spec.Definition) *BuiltFunction {
	return &BuiltFunction{Name: "deserialize", Kind: FuncDeserialize}
}

func (b fakeDefinitionBuilder) Build(ctx *BuildContext, d *spec.Definition) error {
	bucket := ctx.GetOrAddFile(b.GetBuiltFileName(ctx, d), Primary)
	bd := &BuiltDefinition{Name: b.GetCompiledClassName(d), Source: d}
	for _, p := range d.Properties {
		v, err := b.GetCompiledDesiredPropertyValue(p)
		if err != nil {
			return err
		}
		bd.Properties = append(bd.Properties, &BuiltProperty{Name: p.Name, Source: p, Type: p.Type, TypeName: p.Type.Name(), Value: v})
	}
	bd.Functions = append(bd.Functions, b.SerializeFunction(d), b.DeserializeFunction(d))
	bucket.Definitions = append(bucket.Definitions, bd)
	return nil
}

func (b fakeDefinitionBuilder) BuildConstants(ctx *BuildContext, constants []*spec.Constant) error {
	bucket := ctx.GetOrAddFile(bucketOf(ctx.Source), Primary)
	for _, c := range constants {
		v, err := CompileValue(fakeRenderer{}, c.FullName(), c.Type, c.Value)
		if err != nil {
			return err
		}
		bucket.Constants = append(bucket.Constants, &BuiltConstant{Name: c.Name, Source: c, Type: c.Type, TypeName: c.Type.Name(), Value: v})
	}
	return nil
}

type fakeServiceBuilder struct {
	names string
	role  ServiceRole
}

func (b fakeServiceBuilder) Backend() fakeBackend { return fakeBackend{} }
func (b fakeServiceBuilder) Names() string        { return b.names }

func (b fakeServiceBuilder) GetBuiltFileName(_ *BuildContext, s *spec.Service) string {
	return s.Name + "." + b.role.String() + ".out"
}

func (b fakeServiceBuilder) Build(ctx *BuildContext, s *spec.Service) error {
	bucket := ctx.GetOrAddFile(b.GetBuiltFileName(ctx, s), Secondary)
	bs := &BuiltService{Name: s.Name, Source: s, Role: b.role}
	for _, ep := range s.Endpoints {
		bs.Endpoints = append(bs.Endpoints, &BuiltEndpoint{Name: ep.Name, Source: ep, Method: ep.Method, Path: ep.Path, Request: ep.RequestType, Response: ep.ResponseType})
	}
	bucket.Services = append(bucket.Services, bs)
	return nil
}

type fakeValidatorBuilder struct{}

func (fakeValidatorBuilder) Backend() fakeBackend { return fakeBackend{} }
func (fakeValidatorBuilder) Names() string        { return "default;validator" }

func (fakeValidatorBuilder) GetBuiltFileName(ctx *BuildContext, _ *spec.Definition) string {
	return bucketOf(ctx.Source)
}

func (b fakeValidatorBuilder) Build(ctx *BuildContext, d *spec.Definition) error {
	bucket, ok := ctx.File(b.GetBuiltFileName(ctx, d))
	if !ok {
		return fmt.Errorf("definition bucket missing for %s", d.Name)
	}
	for _, bd := range bucket.Definitions {
		if bd.Source == d {
			bd.Functions = append(bd.Functions, &BuiltFunction{Name: "validate", Kind: FuncValidate})
		}
	}
	return nil
}

func fakeRegistry() *Registry[fakeBackend] {
	reg := NewRegistry[fakeBackend]("fake")
	registerFake(reg, fakeBackend{})
	return reg
}

func registerFake(reg *Registry[fakeBackend], _ fakeBackend) {
	reg.RegisterEnum(fakeEnumBuilder{names: "default"})
	reg.RegisterDefinition(fakeDefinitionBuilder{names: "default;class"}, fakeDefinitionBuilder{names: "record"})
	reg.RegisterClient(fakeServiceBuilder{names: "default;http", role: ClientRole})
	reg.RegisterServer(fakeServiceBuilder{names: "default;controller", role: ServerRole})
	reg.RegisterValidator(fakeValidatorBuilder{})
}

func newFakeCompiler(t *testing.T, sel Selection) *Compiler[fakeBackend] {
	t.Helper()
	c, err := New(fakeBackend{}, fakeRegistry(), sel, testLog())
	require.NoError(t, err)
	return c
}

func testLog() zerolog.Logger { return zerolog.Nop() }

func mustContain(t *testing.T, got string, subs ...string) {
	t.Helper()
	for _, sub := range subs {
		if !strings.Contains(got, sub) {
			t.Fatalf("expected %q to contain %q", got, sub)
		}
	}
}

// e2eFiles returns common.spec (namespace Shared, enum Color) and main.spec
// (no namespace, includes common.spec, definition Pixel{color: Color}).
func e2eFiles(t *testing.T) (*spec.File, *spec.File) {
	t.Helper()
	common := spec.NewFile("common.spec", "Shared")
	color, err := common.AddEnum("Color", "", false)
	require.NoError(t, err)
	require.NoError(t, color.AddValue("Red", 0))
	require.NoError(t, color.AddValue("Blue", 1))

	main := spec.NewFile("main.spec", "")
	main.Includes = []string{"common.spec"}
	pixel, err := main.AddDefinition("Pixel", "")
	require.NoError(t, err)
	_, err = pixel.AddProperty("color", "", "Color", nil)
	require.NoError(t, err)
	return common, main
}

func resolveAll(t *testing.T, files ...*spec.File) {
	t.Helper()
	reg := spec.NewRegistry(zerolog.Nop())
	for _, f := range files {
		require.NoError(t, reg.RegisterFile(f))
	}
	require.NoError(t, reg.Resolve())
}

// fakeLoader hands out prebuilt files by path.
type fakeLoader struct {
	files map[string]func() *spec.File
}

func (l fakeLoader) Load(_ context.Context, paths []string) ([]*spec.File, error) {
	var out []*spec.File
	for _, p := range paths {
		mk, ok := l.files[p]
		if !ok {
			return nil, fmt.Errorf("phase=parse path=%s: no such file", p)
		}
		out = append(out, mk())
	}
	return out, nil
}
