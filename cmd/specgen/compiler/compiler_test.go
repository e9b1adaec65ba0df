package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"specgen/cmd/specgen/spec"
)

func TestBuildContext_GetOrAddFileIsIdempotent(t *testing.T) {
	ctx := NewBuildContext(spec.NewFile("a.spec", ""), testLog())

	first := ctx.GetOrAddFile("Foo.out", Primary)
	second := ctx.GetOrAddFile("Foo.out", Secondary)
	require.Same(t, first, second)
	assert.Equal(t, Primary, second.Kind, "kind of an existing bucket is kept")

	first.Definitions = append(first.Definitions, &BuiltDefinition{Name: "A"})
	ctx.GetOrAddFile("Foo.out", Primary).Definitions = append(second.Definitions, &BuiltDefinition{Name: "B"})
	ctx.GetOrAddFile("Bar.out", Secondary)

	require.Len(t, ctx.Files, 2)
	assert.Equal(t, "Foo.out", ctx.Files[0].Name)
	assert.Equal(t, "Bar.out", ctx.Files[1].Name)
	assert.Len(t, ctx.Files[0].Definitions, 2)

	got, ok := ctx.File("Bar.out")
	require.True(t, ok)
	assert.Equal(t, Secondary, got.Kind)
}

func TestRegistry_Selection(t *testing.T) {
	c := newFakeCompiler(t, Selection{Definition: "RECORD", ClientService: "http"})
	assert.Equal(t, "record", c.definition.Names())
	assert.Equal(t, "default", c.enum.Names(), "empty mandatory role selects default")
	assert.NotNil(t, c.client)
	assert.Nil(t, c.server, "empty optional role stays absent")
	assert.Nil(t, c.validator)
}

func TestRegistry_BuilderNotFound(t *testing.T) {
	_, err := New(fakeBackend{}, fakeRegistry(), Selection{ServerService: "grpc"}, testLog())

	var nf *BuilderNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "fake", nf.Backend)
	assert.Equal(t, RoleServer, nf.Role)
	assert.Equal(t, "grpc", nf.Name)
	assert.Equal(t, []string{"default", "controller"}, nf.Available)
	assert.True(t, errors.Is(err, ErrBuilderNotFound))
	mustContain(t, err.Error(), "phase=select", "fake:server", `"grpc"`)
}

func TestRegistry_MandatoryRoleWithoutCandidates(t *testing.T) {
	reg := NewRegistry[fakeBackend]("fake")
	reg.RegisterDefinition(fakeDefinitionBuilder{names: "default"})

	_, err := New(fakeBackend{}, reg, Selection{}, testLog())
	var nf *BuilderNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, RoleEnum, nf.Role)
	mustContain(t, err.Error(), "available: none")
}

func TestRegistry_Aliases(t *testing.T) {
	got := fakeRegistry().Aliases()
	assert.Equal(t, []string{"default;class", "record"}, got[RoleDefinition])
	assert.Equal(t, []string{"default;validator"}, got[RoleValidator])
}

func TestCompile_EndToEnd(t *testing.T) {
	common, main := e2eFiles(t)
	resolveAll(t, common, main)

	pixel, _ := main.Definition("Pixel")
	color, _ := pixel.Property("color")
	require.Equal(t, "Shared.Color", color.Type.Name())

	c := newFakeCompiler(t, Selection{Validator: "validator"})
	built, err := c.Compile([]*spec.File{common, main})
	require.NoError(t, err)
	require.Len(t, built, 2)

	var enums, defs int
	for _, bc := range built {
		for _, f := range bc.Files {
			enums += len(f.Enums)
			defs += len(f.Definitions)
		}
	}
	assert.Equal(t, 1, enums)
	assert.Equal(t, 1, defs)

	bucket, ok := built[1].File("main.spec.out")
	require.True(t, ok)
	assert.Equal(t, []string{"common.spec.out"}, bucket.Imports)
	assert.Empty(t, built[0].Files[0].Imports)

	bd := bucket.Definitions[0]
	_, ok = bd.Function(FuncValidate)
	assert.True(t, ok, "validator ran after the definition builder")
	_, ok = bd.Function(FuncSerialize)
	assert.True(t, ok)
	assert.Equal(t, ValueNone, bd.Properties[0].Value.Kind, "enums have no default")
}

func TestCompile_SameBucketNeedsNoImport(t *testing.T) {
	f := spec.NewFile("shapes.spec", "Geo")
	_, err := f.AddEnum("Kind", "", false)
	require.NoError(t, err)
	shape, err := f.AddDefinition("Shape", "")
	require.NoError(t, err)
	_, err = shape.AddProperty("kind", "", "Kind", nil)
	require.NoError(t, err)
	_, err = shape.AddProperty("children", "", "list<Shape>", nil)
	require.NoError(t, err)
	resolveAll(t, f)

	built, err := newFakeCompiler(t, Selection{}).Compile([]*spec.File{f})
	require.NoError(t, err)
	assert.Empty(t, built[0].Files[0].Imports)
}

func TestCompile_ServicesAndConstants(t *testing.T) {
	common, _ := e2eFiles(t)
	api := spec.NewFile("api.spec", "Api")
	api.Includes = []string{"common.spec"}
	user, err := api.AddDefinition("User", "")
	require.NoError(t, err)
	_, err = user.AddProperty("name", "", "string", nil)
	require.NoError(t, err)
	svc, err := api.AddService("Users", "")
	require.NoError(t, err)
	_, err = svc.AddEndpoint("paint", "POST", "/paint", "Color", "User", "")
	require.NoError(t, err)
	_, err = api.AddConstant("Default", "", "Color", &spec.Value{Kind: spec.ValueString, String: "Blue"})
	require.NoError(t, err)
	resolveAll(t, common, api)

	c := newFakeCompiler(t, Selection{ClientService: "default", ServerService: "controller"})
	bc, err := c.CompileFile(api)
	require.NoError(t, err)

	names := make([]string, len(bc.Files))
	for i, f := range bc.Files {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"api.spec.out", "Users.client.out", "Users.server.out"}, names)

	main := bc.Files[0]
	require.Len(t, main.Constants, 1)
	assert.Equal(t, "Color.Blue", main.Constants[0].Value.Text)
	assert.Equal(t, []string{"common.spec.out"}, main.Imports)

	client := bc.Files[1]
	assert.Equal(t, Secondary, client.Kind)
	assert.Equal(t, []string{"api.spec.out", "common.spec.out"}, client.Imports)
}

func TestCompile_ValueErrorAborts(t *testing.T) {
	f := spec.NewFile("bad.spec", "")
	d, err := f.AddDefinition("Bad", "")
	require.NoError(t, err)
	_, err = d.AddProperty("n", "", "int", &spec.Value{Kind: spec.ValueString, String: "x"})
	require.NoError(t, err)
	resolveAll(t, f)

	_, err = newFakeCompiler(t, Selection{}).Compile([]*spec.File{f})
	var mm *spec.PropertyTypeMismatchError
	require.ErrorAs(t, err, &mm)
	assert.Equal(t, "bad.spec:Bad:n", mm.Path)
}

func TestPathParams(t *testing.T) {
	assert.Equal(t, []string{"shop", "id"}, PathParams("/shops/{shop}/orders/{id}"))
	assert.Nil(t, PathParams("/orders"))
	assert.Nil(t, PathParams("/orders/{1bad}"))
}
