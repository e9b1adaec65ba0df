package unreal

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"specgen/cmd/specgen/compiler"
	"specgen/cmd/specgen/naming"
	"specgen/cmd/specgen/spec"
)

const headerTemplate = `// Generated by specgen from {{ .Source }}. Do not edit.

#pragma once

#include "CoreMinimal.h"
{{- range .File.Imports }}
#include "{{ . }}"
{{- end }}
{{- if or .File.Enums .File.Definitions }}
#include "{{ .Stem }}.generated.h"
{{- end }}
{{- range .File.Enums }}

{{ uenum . }}
{{- end }}
{{- range .File.Definitions }}

{{ ustruct $.API . }}
{{- end }}
{{- if .File.Constants }}

{{ constants .Stem .File.Constants }}
{{- end }}
{{- range .File.Services }}

{{ clientDecl $.API . }}
{{- end }}
`

const sourceTemplate = `// Generated by specgen from {{ .Source }}. Do not edit.

#include "{{ .Stem }}.h"
{{- range .File.Imports }}
#include "{{ . }}"
{{- end }}
{{- range .File.Definitions }}

{{ structImpl . }}
{{- end }}
{{- range .File.Services }}

{{ clientImpl . }}
{{- end }}
`

var funcs = template.FuncMap{
	"uenum":      uenum,
	"ustruct":    ustruct,
	"constants":  constants,
	"clientDecl": clientDecl,
	"structImpl": structImpl,
	"clientImpl": clientImpl,
}

var (
	headerTmpl = template.Must(template.New("header").Funcs(funcs).Parse(headerTemplate))
	sourceTmpl = template.Must(template.New("source").Funcs(funcs).Parse(sourceTemplate))
)

type fileData struct {
	Source string
	Stem   string
	API    string
	File   *compiler.BuiltFile
}

// Emit renders a header for primary buckets and a source file for
// secondary ones.
func Emit(ctx *compiler.BuildContext, f *compiler.BuiltFile) ([]byte, error) {
	data := fileData{
		Source: ctx.Source.Name,
		Stem:   stem(ctx.Source),
		File:   f,
	}
	if api := fileOptions(ctx.Source).ModuleAPI; api != "" {
		data.API = api + " "
	}
	tmpl := headerTmpl
	if f.Kind == compiler.Secondary {
		tmpl = sourceTmpl
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func doc(indent, text string) string {
	if text == "" {
		return ""
	}
	return indent + "/** " + strings.ReplaceAll(strings.ReplaceAll(text, "*/", "* /"), "\n", " ") + " */\n"
}

func uenum(e *compiler.BuiltEnum) string {
	var b strings.Builder
	b.WriteString(doc("", e.Description))
	underlying := "uint8"
	for _, v := range e.Values {
		if v.Value < 0 || v.Value > 255 {
			underlying = "int32"
		}
	}
	fmt.Fprintf(&b, "UENUM(%s)\nenum class %s : %s\n{\n", strings.Join(e.Attributes, ", "), e.Name, underlying)
	for _, v := range e.Values {
		fmt.Fprintf(&b, "\t%s = %d,\n", v.Name, v.Value)
	}
	b.WriteString("};")
	if e.Flags {
		fmt.Fprintf(&b, "\nENUM_CLASS_FLAGS(%s);", e.Name)
	}
	return b.String()
}

func ustruct(api string, d *compiler.BuiltDefinition) string {
	var b strings.Builder
	b.WriteString(doc("", d.Description))
	fmt.Fprintf(&b, "USTRUCT(%s)\n%s %s%s\n{\n\tGENERATED_BODY()\n", strings.Join(d.Attributes, ", "), d.Kind, api, d.Name)
	for _, p := range d.Properties {
		b.WriteString("\n")
		b.WriteString(doc("\t", p.Description))
		fmt.Fprintf(&b, "\tUPROPERTY(%s)\n\t%s %s%s;\n", strings.Join(p.Attributes, ", "), p.TypeName, p.Name, initializer(p.Type, p.TypeName, p.Value))
	}
	if len(d.Functions) > 0 {
		b.WriteString("\n")
	}
	for _, fn := range d.Functions {
		switch fn.Kind {
		case compiler.FuncSerialize:
			fmt.Fprintf(&b, "\t%s %s(%s) const;\n", fn.Returns, fn.Name, params(fn.Params))
		case compiler.FuncDeserialize:
			fmt.Fprintf(&b, "\tstatic %s %s(%s);\n", fn.Returns, fn.Name, params(fn.Params))
		}
	}
	b.WriteString("};")
	return b.String()
}

// initializer is the default member initializer. Numbers, booleans and
// enums are zeroed when no value is given.
func initializer(t *spec.Type, typeName string, v compiler.CompiledValue) string {
	if v.Text != "" {
		return " = " + v.Text
	}
	switch t.Kind() {
	case spec.TypeInt:
		return " = 0"
	case spec.TypeFloat:
		return " = 0.0"
	case spec.TypeBool:
		return " = false"
	case spec.TypeEnum:
		return " = static_cast<" + typeName + ">(0)"
	}
	return ""
}

func params(ps []compiler.BuiltParam) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.TypeName + " " + p.Name
	}
	return strings.Join(parts, ", ")
}

func constants(stem string, consts []*compiler.BuiltConstant) string {
	var b strings.Builder
	fmt.Fprintf(&b, "namespace %sConstants\n{\n", stem)
	for _, c := range consts {
		b.WriteString(doc("\t", c.Description))
		keyword := "inline const"
		switch c.Type.Kind() {
		case spec.TypeBool, spec.TypeInt, spec.TypeFloat, spec.TypeEnum:
			keyword = "inline constexpr"
		}
		fmt.Fprintf(&b, "\t%s %s %s%s;\n", keyword, c.TypeName, c.Name, initializer(c.Type, c.TypeName, c.Value))
	}
	b.WriteString("}")
	return b.String()
}

func structImpl(d *compiler.BuiltDefinition) string {
	var parts []string
	for _, fn := range d.Functions {
		switch fn.Kind {
		case compiler.FuncSerialize:
			parts = append(parts, fmt.Sprintf("%s %s::%s(%s) const\n{\n\treturn FJsonObjectConverter::UStructToJsonObjectString(*this, %s);\n}",
				fn.Returns, d.Name, fn.Name, params(fn.Params), fn.Params[0].Name))
		case compiler.FuncDeserialize:
			parts = append(parts, fmt.Sprintf("%s %s::%s(%s)\n{\n\treturn FJsonObjectConverter::JsonObjectStringToUStruct(%s, &%s);\n}",
				fn.Returns, d.Name, fn.Name, params(fn.Params), fn.Params[0].Name, fn.Params[1].Name))
		}
	}
	return strings.Join(parts, "\n\n")
}

func clientDecl(api string, s *compiler.BuiltService) string {
	var b strings.Builder
	b.WriteString(doc("", s.Description))
	fmt.Fprintf(&b, "class %s%s\n{\npublic:\n\texplicit %s(FString InBaseUrl);\n", api, s.Name, s.Name)
	for _, ep := range s.Endpoints {
		b.WriteString("\n")
		b.WriteString(doc("\t", ep.Description))
		fmt.Fprintf(&b, "\tvoid %s(%s) const;\n", ep.Name, endpointParams(ep))
	}
	b.WriteString("\nprivate:\n\tFString BaseUrl;\n};")
	return b.String()
}

func endpointParams(ep *compiler.BuiltEndpoint) string {
	var out []string
	for _, p := range ep.PathParams {
		out = append(out, "const FString& "+naming.Pascal(p))
	}
	if ep.Request != nil {
		out = append(out, "const "+ep.RequestName+"& Body")
	}
	callback := "TFunction<void(bool)>"
	if ep.Response != nil {
		callback = "TFunction<void(bool, const " + ep.ResponseName + "&)>"
	}
	return strings.Join(append(out, callback+" OnComplete"), ", ")
}

func clientImpl(s *compiler.BuiltService) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s::%s(FString InBaseUrl)\n\t: BaseUrl(MoveTemp(InBaseUrl))\n{\n}", s.Name, s.Name)
	for _, ep := range s.Endpoints {
		b.WriteString("\n\n")
		clientEndpoint(&b, s, ep)
	}
	return b.String()
}

const responseOK = "bConnected && Response.IsValid() && EHttpResponseCodes::IsOk(Response->GetResponseCode())"

func clientEndpoint(b *strings.Builder, s *compiler.BuiltService, ep *compiler.BuiltEndpoint) {
	fmt.Fprintf(b, "void %s::%s(%s) const\n{\n", s.Name, ep.Name, endpointParams(ep))
	b.WriteString("\tconst TSharedRef<IHttpRequest, ESPMode::ThreadSafe> Request = FHttpModule::Get().CreateRequest();\n")
	fmt.Fprintf(b, "\tRequest->SetVerb(TEXT(%s));\n", quote(ep.Method))
	fmt.Fprintf(b, "\tRequest->SetURL(BaseUrl + %s);\n", url(ep))
	if ep.Request != nil {
		b.WriteString("\tRequest->SetHeader(TEXT(\"Content-Type\"), TEXT(\"application/json\"));\n")
		if ep.Request.Kind() == spec.TypeObject {
			b.WriteString("\tFString Payload;\n\tFJsonObjectConverter::UStructToJsonObjectString(Body, Payload);\n")
			b.WriteString("\tRequest->SetContentAsString(Payload);\n")
		} else {
			b.WriteString("\tRequest->SetContentAsString(Body);\n")
		}
	}
	b.WriteString("\tRequest->OnProcessRequestComplete().BindLambda([OnComplete](FHttpRequestPtr, FHttpResponsePtr Response, bool bConnected)\n\t{\n")
	switch {
	case ep.Response == nil:
		fmt.Fprintf(b, "\t\tOnComplete(%s);\n", responseOK)
	case ep.Response.Kind() == spec.TypeObject:
		fmt.Fprintf(b, "\t\t%s Result;\n", ep.ResponseName)
		fmt.Fprintf(b, "\t\tconst bool bOk = %s\n\t\t\t&& FJsonObjectConverter::JsonObjectStringToUStruct(Response->GetContentAsString(), &Result);\n", responseOK)
		b.WriteString("\t\tOnComplete(bOk, Result);\n")
	default:
		fmt.Fprintf(b, "\t\tconst bool bOk = %s;\n", responseOK)
		b.WriteString("\t\tOnComplete(bOk, bOk ? Response->GetContentAsString() : FString());\n")
	}
	b.WriteString("\t});\n\tRequest->ProcessRequest();\n}")
}

// url spells the request path. Path parameters are URL encoded through
// FString::Printf.
func url(ep *compiler.BuiltEndpoint) string {
	if len(ep.PathParams) == 0 {
		return "TEXT(" + quote(ep.Path) + ")"
	}
	format := strings.ReplaceAll(ep.Path, "%", "%%")
	args := make([]string, 0, len(ep.PathParams))
	for _, p := range ep.PathParams {
		format = strings.Replace(format, "{"+p+"}", "%s", 1)
		args = append(args, "*FGenericPlatformHttp::UrlEncode("+naming.Pascal(p)+")")
	}
	return "FString::Printf(TEXT(" + quote(format) + "), " + strings.Join(args, ", ") + ")"
}
