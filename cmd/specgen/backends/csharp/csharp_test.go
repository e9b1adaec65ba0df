package csharp

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"specgen/cmd/specgen/compiler"
	"specgen/cmd/specgen/options"
	"specgen/cmd/specgen/spec"
	"specgen/cmd/specgen/specyaml"
)

func mustContain(t *testing.T, got string, subs ...string) {
	t.Helper()
	for _, sub := range subs {
		if !strings.Contains(got, sub) {
			t.Fatalf("expected output to contain %q, got:\n%s", sub, got)
		}
	}
}

const commonSpec = `
namespace: Shared
enums:
  Color: { Red: 0, Blue: 1 }
  Perm:
    flags: true
    values: [read, write]
`

const mainSpec = `
namespace: Shop
include: common.spec
options:
  csharp: { emitGuid: true }
definitions:
  Pixel:
    description: A pixel
    properties:
      color: { type: Color, default: Blue }
      perms: { type: Perm, default: "read|write" }
      tags: list<string>
      name: { type: string, options: { csharp: { required: true } } }
      note: string?
      ratio: { type: float, default: 0.5 }
      created: { type: date, default: 2024-01-31 }
      ttl: { type: timespan, default: "01:30:00" }
constants:
  MaxPixels: { type: int, value: 64 }
services:
  Pixels:
    endpoints:
      get: { path: "/pixels/{id}", responseType: Pixel }
      put: { method: PUT, path: /pixels, requestType: Pixel }
`

func build(t *testing.T, req compiler.Request, files map[string]string) (map[string]string, error) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for name, body := range files {
		require.NoError(t, afero.WriteFile(fsys, name, []byte(body), 0o644))
	}
	eng := compiler.NewEngine(fsys, specyaml.NewLoader(fsys, zerolog.Nop()), Target(), zerolog.Nop(), nil)
	req.DryRun = true
	res, err := eng.Run(context.Background(), req)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(res.Outputs))
	for _, o := range res.Outputs {
		out[o.Path] = string(o.Data)
	}
	return out, nil
}

func requireBuildOK(t *testing.T, req compiler.Request, files map[string]string) map[string]string {
	t.Helper()
	out, err := build(t, req, files)
	require.NoError(t, err)
	return out
}

func TestEmit_FullFile(t *testing.T) {
	out := requireBuildOK(t, compiler.Request{
		Inputs:  []string{"main.spec"},
		Options: map[string]any{"namespace": "Acme"},
		Selection: compiler.Selection{
			ClientService: "http",
			ServerService: "default",
			Validator:     "default",
		},
	}, map[string]string{"main.spec": mainSpec, "common.spec": commonSpec})
	require.Len(t, out, 2)

	common := out["Common.g.cs"]
	mustContain(t, common,
		"namespace Acme.Shared;",
		"using System;",
		"[Flags]\npublic enum Perm\n{\n    Read = 1,\n    Write = 2,\n}",
		"public enum Color\n{\n    Red = 0,\n    Blue = 1,\n}",
	)

	main := out["Main.g.cs"]
	guid := uuid.NewSHA1(uuid.NameSpaceOID, []byte("Shop.Pixel")).String()
	mustContain(t, main,
		"// Generated by specgen from main.spec. Do not edit.",
		"namespace Acme.Shop;",
		"using Acme.Shared;",
		"using System.Collections.Generic;",
		"using System.Text.Json;",
		"/// <summary>A pixel</summary>\n[Guid(\""+guid+"\")]\npublic partial class Pixel\n{",
		"    [JsonPropertyName(\"color\")]\n    public Color Color { get; set; } = Color.Blue;",
		"public Perm Perms { get; set; } = Perm.Read | Perm.Write;",
		"public List<string> Tags { get; set; } = new();",
		"public required string Name { get; set; } = string.Empty;",
		"public string? Note { get; set; }\n",
		"public double Ratio { get; set; } = 0.5d;",
		"public DateTime Created { get; set; } = new DateTime(2024, 1, 31);",
		"public TimeSpan Ttl { get; set; } = TimeSpan.FromSeconds(5400);",
		"public string ToJson() => JsonSerializer.Serialize(this);",
		"public static Pixel? FromJson(string json) => JsonSerializer.Deserialize<Pixel>(json);",
		"if (string.IsNullOrEmpty(Name)) errors.Add(\"name is required\");",
		"public static class MainConstants\n{\n    public const long MaxPixels = 64;\n}",
	)
	assert.NotContains(t, main, "Note is null", "optional properties without required are not validated")

	mustContain(t, main,
		"public partial class PixelsClient",
		"public async Task<Pixel> GetAsync(string id, CancellationToken ct = default)",
		`new HttpRequestMessage(new HttpMethod("GET"), $"/pixels/{Uri.EscapeDataString(id)}")`,
		"public async Task PutAsync(Pixel body, CancellationToken ct = default)",
		"request.Content = JsonContent.Create(body);",
		"[ApiController]\npublic abstract partial class PixelsControllerBase : ControllerBase",
		"    [HttpGet(\"/pixels/{id}\")]\n    public abstract Task<ActionResult<Pixel>> Get(string id, CancellationToken ct);",
		"public abstract Task<IActionResult> Put([FromBody] Pixel body, CancellationToken ct);",
	)
}

func TestEmit_Record(t *testing.T) {
	out := requireBuildOK(t, compiler.Request{
		Inputs:    []string{"main.spec"},
		Selection: compiler.Selection{Definition: "record"},
	}, map[string]string{"main.spec": mainSpec, "common.spec": commonSpec})

	main := out["Main.g.cs"]
	mustContain(t, main, "namespace Shop;", "using Shared;", "public partial record Pixel", "public Color Color { get; init; } = Color.Blue;")
	assert.NotContains(t, main, "PixelsClient", "client builder is optional")
	assert.NotContains(t, main, "Validate()")
}

func TestEmit_ImmutableCollections(t *testing.T) {
	doc := `
definitions:
  Bag:
    options:
      csharp: { immutableCollections: true }
    properties:
      tags: { type: list<string>, default: [a, b] }
      ids: set<int>
      index: map<string,int>
`
	out := requireBuildOK(t, compiler.Request{Inputs: []string{"bag.spec"}}, map[string]string{"bag.spec": doc})
	mustContain(t, out["Bag.g.cs"],
		"using System.Collections.Immutable;",
		`public ImmutableList<string> Tags { get; set; } = ImmutableList.Create<string>("a", "b");`,
		"public ImmutableHashSet<long> Ids { get; set; } = ImmutableHashSet<long>.Empty;",
		"public ImmutableDictionary<string, long> Index { get; set; } = ImmutableDictionary<string, long>.Empty;",
	)
}

func TestDefinitionBuilder_DefaultValues(t *testing.T) {
	f := spec.NewFile("bag.spec", "")
	d, err := f.AddDefinition("Bag", "")
	require.NoError(t, err)
	for _, p := range [][2]string{{"tags", "list<string>"}, {"title", "string"}, {"count", "int"}, {"note", "string?"}} {
		_, err := d.AddProperty(p[0], "", p[1], nil)
		require.NoError(t, err)
	}
	reg := spec.NewRegistry(zerolog.Nop())
	require.NoError(t, reg.RegisterFile(f))
	require.NoError(t, reg.Resolve())
	require.NoError(t, options.Attach[Options](backendName, Reader{}, map[string]any{"immutableCollections": true}, f))

	b := definitionBuilder{}
	tests := []struct {
		prop     string
		kind     compiler.ValueKind
		typeText string
		propText string
	}{
		{"tags", compiler.ValueEmptyContainer, "new()", "ImmutableList<string>.Empty"},
		{"title", compiler.ValueEmptyString, "string.Empty", "string.Empty"},
		{"count", compiler.ValueNone, "", ""},
		{"note", compiler.ValueNone, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.prop, func(t *testing.T) {
			p, ok := d.Property(tt.prop)
			require.True(t, ok)

			byType := b.GetCompiledDefaultValueForPropertyType(p.Type)
			assert.Equal(t, tt.kind, byType.Kind)
			assert.Equal(t, tt.typeText, byType.Text)

			desired, err := b.GetCompiledDesiredPropertyValue(p)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, desired.Kind)
			assert.Equal(t, tt.propText, desired.Text, "property defaults follow the cascade")
		})
	}
}

func TestEmit_FileNameConflict(t *testing.T) {
	files := map[string]string{
		"a.spec": "options: { csharp: { fileName: Models.cs } }\ndefinitions: { A: {} }\n",
		"b.spec": "options: { csharp: { fileName: Models.cs } }\ndefinitions: { B: {} }\n",
	}
	_, err := build(t, compiler.Request{Inputs: []string{"a.spec", "b.spec"}}, files)
	require.ErrorIs(t, err, compiler.ErrOutputConflict)
	mustContain(t, err.Error(), "Models.cs")
}

func TestOptions_InvalidKind(t *testing.T) {
	_, err := build(t, compiler.Request{
		Inputs:  []string{"main.spec"},
		Options: map[string]any{"kind": "interface"},
	}, map[string]string{"main.spec": mainSpec, "common.spec": commonSpec})
	require.ErrorIs(t, err, options.ErrInvalidOptions)
	mustContain(t, err.Error(), "phase=options", `"interface"`)
}

func TestBuild_BadDefault(t *testing.T) {
	doc := "namespace: Shared\nenums:\n  Color: [Red]\ndefinitions:\n  Pixel:\n    properties:\n      color: { type: Color, default: Green }\n"
	_, err := build(t, compiler.Request{Inputs: []string{"p.spec"}}, map[string]string{"p.spec": doc})
	var mismatch *spec.PropertyTypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "Shared.Color", mismatch.Type)
}

func TestReader_Cascade(t *testing.T) {
	f := spec.NewFile("x.spec", "Shop")
	global, err := Reader{}.ReadGlobalOptions(map[string]any{"namespace": "Acme", "nullable": false})
	require.NoError(t, err)
	assert.Equal(t, "class", global.Kind)

	fileOpts, err := Reader{}.ReadFileOptions(f, global, nil)
	require.NoError(t, err)
	assert.Equal(t, "Acme.Shop", fileOpts.Namespace)
	assert.False(t, fileOpts.Nullable)

	fileOpts, err = Reader{}.ReadFileOptions(f, global, map[string]any{"namespace": "Other"})
	require.NoError(t, err)
	assert.Equal(t, "Other", fileOpts.Namespace, "explicit file namespace wins")
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"a\"b\\\n\u0001é"`, quote("a\"b\\\n\x01é"))
}

func TestRenderFloat(t *testing.T) {
	r := renderer{}
	assert.Equal(t, "3d", r.RenderFloat(3))
	assert.Equal(t, "1e+300d", r.RenderFloat(1e300))
}
