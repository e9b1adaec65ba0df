package csharp

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"text/template"

	"specgen/cmd/specgen/compiler"
	"specgen/cmd/specgen/naming"
	"specgen/cmd/specgen/spec"
)

const fileTemplate = `// <auto-generated>
// Generated by specgen from {{ .Source }}. Do not edit.
// </auto-generated>
#nullable enable
{{- if .File.Imports }}
{{ range .File.Imports }}
using {{ . }};
{{- end }}
{{- end }}
{{- with .File.Namespace }}

namespace {{ . }};
{{- end }}
{{- range .File.Enums }}

{{ summary "" .Description }}{{ attributes "" .Attributes }}public enum {{ .Name }}
{
{{- range .Values }}
    {{ .Name }} = {{ .Value }},
{{- end }}
}
{{- end }}
{{- range $def := .File.Definitions }}

{{ summary "" .Description }}{{ attributes "" .Attributes }}public partial {{ .Kind }} {{ .Name }}
{
{{- range .Properties }}
{{ property $def . }}
{{- end }}
{{- range .Functions }}

{{ function . }}
{{- end }}
}
{{- end }}
{{- if .File.Constants }}

public static class {{ .ConstClass }}
{
{{- range .File.Constants }}
{{ constant . }}
{{- end }}
}
{{- end }}
{{- range .File.Services }}

{{ service . }}
{{- end }}
`

var tmpl = template.Must(template.New("csharp").Funcs(template.FuncMap{
	"summary":    summary,
	"attributes": attributes,
	"property":   property,
	"function":   function,
	"constant":   constant,
	"service":    service,
}).Parse(fileTemplate))

type fileData struct {
	Source     string
	File       *compiler.BuiltFile
	ConstClass string
}

// Emit renders one bucket.
func Emit(ctx *compiler.BuildContext, f *compiler.BuiltFile) ([]byte, error) {
	base := path.Base(ctx.Source.Name)
	data := fileData{
		Source:     ctx.Source.Name,
		File:       f,
		ConstClass: naming.Pascal(strings.TrimSuffix(base, path.Ext(base))) + "Constants",
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\r", "", "\n", " ")

func summary(indent, text string) string {
	if text == "" {
		return ""
	}
	return indent + "/// <summary>" + xmlEscaper.Replace(text) + "</summary>\n"
}

func attributes(indent string, attrs []string) string {
	var b strings.Builder
	for _, a := range attrs {
		b.WriteString(indent + "[" + a + "]\n")
	}
	return b.String()
}

func property(def *compiler.BuiltDefinition, p *compiler.BuiltProperty) string {
	var b strings.Builder
	b.WriteString(summary("    ", p.Description))
	b.WriteString(attributes("    ", p.Attributes))
	b.WriteString("    public ")
	if p.Required {
		b.WriteString("required ")
	}
	setter := "set"
	if def.Kind == "record" {
		setter = "init"
	}
	fmt.Fprintf(&b, "%s %s { get; %s; }", p.TypeName, p.Name, setter)
	if !p.Value.IsNone() {
		fmt.Fprintf(&b, " = %s;", p.Value.Text)
	}
	return b.String()
}

func function(fn *compiler.BuiltFunction) string {
	switch fn.Kind {
	case compiler.FuncSerialize:
		return fmt.Sprintf("    public %s %s() => JsonSerializer.Serialize(this);", fn.Returns, fn.Name)
	case compiler.FuncDeserialize:
		return fmt.Sprintf("    public static %s %s(%s) => JsonSerializer.Deserialize<%s>(%s);",
			fn.Returns, fn.Name, params(fn.Params), strings.TrimSuffix(fn.Returns, "?"), fn.Params[0].Name)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "    public %s %s()\n    {\n", fn.Returns, fn.Name)
	b.WriteString("        var errors = new List<string>();\n")
	for _, p := range fn.Fields {
		cond := p.Name + " is null"
		if p.Type.Kind() == spec.TypeString {
			cond = "string.IsNullOrEmpty(" + p.Name + ")"
		}
		fmt.Fprintf(&b, "        if (%s) errors.Add(%s);\n", cond, quote(p.Source.Name+" is required"))
	}
	b.WriteString("        return errors;\n    }")
	return b.String()
}

func params(ps []compiler.BuiltParam) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.TypeName + " " + p.Name
	}
	return strings.Join(parts, ", ")
}

func constant(c *compiler.BuiltConstant) string {
	var b strings.Builder
	b.WriteString(summary("    ", c.Description))
	keyword := "static readonly"
	switch c.Type.Kind() {
	case spec.TypeBool, spec.TypeInt, spec.TypeFloat, spec.TypeString, spec.TypeEnum:
		if !c.Type.Optional && c.Value.Kind == compiler.ValueLiteral {
			keyword = "const"
		}
	}
	fmt.Fprintf(&b, "    public %s %s %s", keyword, c.TypeName, c.Name)
	if !c.Value.IsNone() {
		b.WriteString(" = " + c.Value.Text)
	}
	b.WriteString(";")
	return b.String()
}

func service(s *compiler.BuiltService) string {
	var b strings.Builder
	b.WriteString(summary("", s.Description))
	b.WriteString(attributes("", s.Attributes))
	if s.Role == compiler.ServerRole {
		fmt.Fprintf(&b, "public abstract partial class %s : ControllerBase\n{", s.Name)
		for _, ep := range s.Endpoints {
			b.WriteString("\n\n")
			serverEndpoint(&b, ep)
		}
		b.WriteString("\n}")
		return b.String()
	}
	fmt.Fprintf(&b, "public partial class %s\n{\n", s.Name)
	b.WriteString("    private readonly HttpClient _http;\n\n")
	fmt.Fprintf(&b, "    public %s(HttpClient http) => _http = http;", s.Name)
	for _, ep := range s.Endpoints {
		b.WriteString("\n\n")
		clientEndpoint(&b, ep)
	}
	b.WriteString("\n}")
	return b.String()
}

func endpointParams(ep *compiler.BuiltEndpoint, body string) []string {
	var out []string
	for _, p := range ep.PathParams {
		out = append(out, "string "+naming.Camel(p))
	}
	if ep.Request != nil {
		out = append(out, body+ep.RequestName+" body")
	}
	return out
}

func clientEndpoint(b *strings.Builder, ep *compiler.BuiltEndpoint) {
	b.WriteString(summary("    ", ep.Description))
	returns := "Task"
	if ep.Response != nil {
		returns = "Task<" + ep.ResponseName + ">"
	}
	args := append(endpointParams(ep, ""), "CancellationToken ct = default")
	fmt.Fprintf(b, "    public async %s %s(%s)\n    {\n", returns, ep.Name, strings.Join(args, ", "))
	fmt.Fprintf(b, "        using var request = new HttpRequestMessage(new HttpMethod(%s), %s);\n", quote(ep.Method), route(ep))
	if ep.Request != nil {
		b.WriteString("        request.Content = JsonContent.Create(body);\n")
	}
	b.WriteString("        using var response = await _http.SendAsync(request, ct);\n")
	b.WriteString("        response.EnsureSuccessStatusCode();\n")
	if ep.Response != nil {
		fmt.Fprintf(b, "        return (await response.Content.ReadFromJsonAsync<%s>(cancellationToken: ct))!;\n", strings.TrimSuffix(ep.ResponseName, "?"))
	}
	b.WriteString("    }")
}

// route spells the endpoint path, interpolating escaped path parameters.
func route(ep *compiler.BuiltEndpoint) string {
	if len(ep.PathParams) == 0 {
		return quote(ep.Path)
	}
	p := ep.Path
	for _, param := range ep.PathParams {
		p = strings.ReplaceAll(p, "{"+param+"}", "{Uri.EscapeDataString("+naming.Camel(param)+")}")
	}
	return "$" + quote(p)
}

var verbAttributes = map[string]string{
	"GET":    "HttpGet",
	"POST":   "HttpPost",
	"PUT":    "HttpPut",
	"PATCH":  "HttpPatch",
	"DELETE": "HttpDelete",
	"HEAD":   "HttpHead",
}

func serverEndpoint(b *strings.Builder, ep *compiler.BuiltEndpoint) {
	b.WriteString(summary("    ", ep.Description))
	if attr, ok := verbAttributes[ep.Method]; ok {
		fmt.Fprintf(b, "    [%s(%s)]\n", attr, quote(ep.Path))
	} else {
		fmt.Fprintf(b, "    [AcceptVerbs(%s, Route = %s)]\n", quote(ep.Method), quote(ep.Path))
	}
	returns := "Task<IActionResult>"
	if ep.Response != nil {
		returns = "Task<ActionResult<" + ep.ResponseName + ">>"
	}
	args := append(endpointParams(ep, "[FromBody] "), "CancellationToken ct")
	fmt.Fprintf(b, "    public abstract %s %s(%s);", returns, ep.Name, strings.Join(args, ", "))
}
