package unreal

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"specgen/cmd/specgen/compiler"
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
definitions:
  Pixel:
    description: A pixel
    properties:
      id: int
      color: { type: Color, default: Blue }
      perms: { type: Perm, default: "read|write" }
      tags: { type: list<string>, description: Free tags }
      display_name: string
      note: string?
      created: { type: date, default: "2024-01-31T10:00:00Z" }
      ttl: { type: timespan, default: 90m }
constants:
  max_pixels: { type: int, value: 64, description: Cap }
  timeout: { type: timespan, value: 30s }
services:
  Pixels:
    endpoints:
      get: { path: "/shops/{shop}/pixels/{id}", responseType: Pixel }
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

func buildMain(t *testing.T, opts map[string]any) map[string]string {
	return requireBuildOK(t, compiler.Request{Inputs: []string{"main.spec"}, Options: opts},
		map[string]string{"main.spec": mainSpec, "common.spec": commonSpec})
}

func TestEmit_Files(t *testing.T) {
	out := buildMain(t, nil)
	paths := make([]string, 0, len(out))
	for p := range out {
		paths = append(paths, p)
	}
	assert.ElementsMatch(t, []string{"Main.h", "Main.cpp", "Common.h"}, paths, "enum-only files get no source")
}

func TestEmit_Header(t *testing.T) {
	h := buildMain(t, map[string]any{"moduleApi": "ACME_API", "category": "Shop"})["Main.h"]

	mustContain(t, h,
		"// Generated by specgen from main.spec. Do not edit.\n\n#pragma once\n\n#include \"CoreMinimal.h\"\n#include \"Common.h\"\n#include \"Main.generated.h\"\n",
		"/** A pixel */\nUSTRUCT(BlueprintType)\nstruct ACME_API FPixel\n{\n\tGENERATED_BODY()\n\n\tUPROPERTY(EditAnywhere, BlueprintReadWrite, Category = \"Shop\")\n\tint64 Id = 0;\n",
		"\tEColor Color = EColor::Blue;\n",
		"\tEPerm Perms = EPerm::Read | EPerm::Write;\n",
		"\t/** Free tags */\n\tUPROPERTY(EditAnywhere, BlueprintReadWrite, Category = \"Shop\")\n\tTArray<FString> Tags;\n",
		"\tFString DisplayName;\n",
		"\tFString Note;\n",
		"\tFDateTime Created = FDateTime(2024, 1, 31, 10, 0, 0);\n",
		"\tFTimespan Ttl = FTimespan::FromSeconds(5400);\n",
		"\n\tbool ToJson(FString& OutJson) const;\n\tstatic bool FromJson(const FString& Json, FPixel& OutValue);\n};",
		"namespace MainConstants\n{\n\t/** Cap */\n\tinline constexpr int64 MaxPixels = 64;\n\tinline const FTimespan Timeout = FTimespan::FromSeconds(30);\n}",
		"class ACME_API FPixelsClient\n{\npublic:\n\texplicit FPixelsClient(FString InBaseUrl);\n",
		"\tvoid Get(const FString& Shop, const FString& Id, TFunction<void(bool, const FPixel&)> OnComplete) const;\n",
		"\tvoid Put(const FPixel& Body, TFunction<void(bool)> OnComplete) const;\n\nprivate:\n\tFString BaseUrl;\n};",
	)
	assert.NotContains(t, h, "JsonObjectConverter.h")
}

func TestEmit_Source(t *testing.T) {
	src := buildMain(t, nil)["Main.cpp"]

	mustContain(t, src,
		"#include \"Main.h\"\n#include \"GenericPlatform/GenericPlatformHttp.h\"\n#include \"HttpModule.h\"\n#include \"Interfaces/IHttpRequest.h\"\n#include \"Interfaces/IHttpResponse.h\"\n#include \"JsonObjectConverter.h\"\n",
		"bool FPixel::ToJson(FString& OutJson) const\n{\n\treturn FJsonObjectConverter::UStructToJsonObjectString(*this, OutJson);\n}",
		"bool FPixel::FromJson(const FString& Json, FPixel& OutValue)\n{\n\treturn FJsonObjectConverter::JsonObjectStringToUStruct(Json, &OutValue);\n}",
		"FPixelsClient::FPixelsClient(FString InBaseUrl)\n\t: BaseUrl(MoveTemp(InBaseUrl))\n{\n}",
		`Request->SetVerb(TEXT("GET"));`,
		`Request->SetURL(BaseUrl + FString::Printf(TEXT("/shops/%s/pixels/%s"), *FGenericPlatformHttp::UrlEncode(Shop), *FGenericPlatformHttp::UrlEncode(Id)));`,
		"\t\tFPixel Result;\n",
		"\t\tOnComplete(bOk, Result);\n",
		`Request->SetVerb(TEXT("PUT"));`,
		`Request->SetURL(BaseUrl + TEXT("/pixels"));`,
		"\tFJsonObjectConverter::UStructToJsonObjectString(Body, Payload);\n",
		"\t\tOnComplete(bConnected && Response.IsValid() && EHttpResponseCodes::IsOk(Response->GetResponseCode()));\n",
	)
	assert.NotContains(t, src, "Common.h", "sources rely on their header")
	assert.NotContains(t, src, "generated.h")
}

func TestEmit_Enums(t *testing.T) {
	h := buildMain(t, nil)["Common.h"]
	mustContain(t, h,
		"#include \"Common.generated.h\"",
		"UENUM(BlueprintType)\nenum class EColor : uint8\n{\n\tRed = 0,\n\tBlue = 1,\n};",
		"UENUM(BlueprintType, meta = (Bitflags, UseEnumValuesAsMaskValuesInEditor = \"true\"))\nenum class EPerm : uint8\n{\n\tRead = 1,\n\tWrite = 2,\n};\nENUM_CLASS_FLAGS(EPerm);",
	)
}

func TestEmit_WideEnum(t *testing.T) {
	doc := "enums:\n  Code: { Ok: 0, Teapot: 418 }\n"
	h := requireBuildOK(t, compiler.Request{Inputs: []string{"codes.spec"}}, map[string]string{"codes.spec": doc})["Codes.h"]
	mustContain(t, h, "UENUM()\nenum class ECode : int32\n{\n\tOk = 0,\n\tTeapot = 418,\n};")
}

func TestEmit_Prefix(t *testing.T) {
	out := buildMain(t, map[string]any{"prefix": "Acme", "blueprintType": false})
	mustContain(t, out["Main.h"],
		"USTRUCT()\nstruct FAcmePixel\n",
		"\tUPROPERTY(EditAnywhere)\n\tEAcmeColor Color = EAcmeColor::Blue;\n",
		"class FAcmePixelsClient\n",
	)
	mustContain(t, out["Common.h"], "enum class EAcmeColor : uint8")
}

func TestEmit_AnyInclude(t *testing.T) {
	doc := "definitions:\n  Event:\n    properties:\n      payload: any\n"
	h := requireBuildOK(t, compiler.Request{Inputs: []string{"event.spec"}}, map[string]string{"event.spec": doc})["Event.h"]
	mustContain(t, h, "#include \"JsonObjectWrapper.h\"\n", "\tFJsonObjectWrapper Payload;\n")
}

func TestBuild_AnyLiteral(t *testing.T) {
	doc := "definitions:\n  Event:\n    properties:\n      payload: { type: any, default: { a: 1 } }\n"
	_, err := build(t, compiler.Request{Inputs: []string{"event.spec"}}, map[string]string{"event.spec": doc})
	var unsupported *spec.UnsupportedValueError
	require.ErrorAs(t, err, &unsupported)
	require.ErrorIs(t, err, spec.ErrUnsupportedValue)
}

func TestRender(t *testing.T) {
	r := renderer{}
	assert.Equal(t, "1.0", r.RenderFloat(1))
	assert.Equal(t, "0.25", r.RenderFloat(0.25))
	assert.Equal(t, "FDateTime(2024, 1, 31)", r.RenderDate(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "FTimespan(15000000)", r.RenderTimespan(1500*time.Millisecond))
	assert.Equal(t, `"a\"b\\c\n"`, quote("a\"b\\c\n"))
	assert.Equal(t, `"\x01"""`, quote("\x01"))
}
