package php

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"specgen/cmd/specgen/compiler"
	"specgen/cmd/specgen/naming"
	"specgen/cmd/specgen/spec"
)

const fileTemplate = `<?php

// Generated by specgen from {{ .Source }}. Do not edit.
{{- if .Strict }}

declare(strict_types=1);
{{- end }}
{{- with .File.Namespace }}

namespace {{ . }};
{{- end }}
{{- if .File.Imports }}
{{ range .File.Imports }}
use {{ . }};
{{- end }}
{{- end }}
{{- range .File.Enums }}

{{ enum . }}
{{- end }}
{{- range .File.Definitions }}

{{ class . }}
{{- end }}
{{- if .File.Constants }}

{{ constants .ConstClass .File.Constants }}
{{- end }}
{{- range .File.Services }}

{{ service . }}
{{- end }}
`

var tmpl = template.Must(template.New("php").Funcs(template.FuncMap{
	"enum":      enum,
	"class":     class,
	"constants": constants,
	"service":   service,
}).Parse(fileTemplate))

type fileData struct {
	Source     string
	Strict     bool
	File       *compiler.BuiltFile
	ConstClass string
}

func Emit(ctx *compiler.BuildContext, f *compiler.BuiltFile) ([]byte, error) {
	data := fileData{
		Source:     ctx.Source.Name,
		Strict:     fileOptions(ctx.Source).StrictTypes,
		File:       f,
		ConstClass: constantsClass(ctx.Source),
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func doc(indent string, parts ...string) string {
	var text []string
	for _, p := range parts {
		if p != "" {
			text = append(text, strings.ReplaceAll(strings.ReplaceAll(p, "*/", "*\\/"), "\n", " "))
		}
	}
	if len(text) == 0 {
		return ""
	}
	return indent + "/** " + strings.Join(text, " ") + " */\n"
}

func enum(e *compiler.BuiltEnum) string {
	var b strings.Builder
	b.WriteString(doc("", e.Description))
	if e.Flags {
		fmt.Fprintf(&b, "final class %s\n{\n", e.Name)
		for _, v := range e.Values {
			fmt.Fprintf(&b, "    public const %s = %d;\n", v.Name, v.Value)
		}
	} else {
		fmt.Fprintf(&b, "enum %s: int\n{\n", e.Name)
		for _, v := range e.Values {
			fmt.Fprintf(&b, "    case %s = %d;\n", v.Name, v.Value)
		}
	}
	b.WriteString("}")
	return b.String()
}

func class(d *compiler.BuiltDefinition) string {
	var b strings.Builder
	b.WriteString(doc("", d.Description))
	fmt.Fprintf(&b, "%s %s implements \\JsonSerializable\n{\n", d.Kind, d.Name)
	constructor(&b, d.Properties)
	for _, fn := range d.Functions {
		b.WriteString("\n\n")
		function(&b, fn)
	}
	b.WriteString("\n}")
	return b.String()
}

// constructor promotes every property. Parameters without a default come
// first since PHP deprecates required parameters after optional ones.
func constructor(b *strings.Builder, props []*compiler.BuiltProperty) {
	if len(props) == 0 {
		b.WriteString("    public function __construct()\n    {\n    }")
		return
	}
	var head, tail []*compiler.BuiltProperty
	for _, p := range props {
		if p.Value.IsNone() && !p.Type.Optional {
			head = append(head, p)
		} else {
			tail = append(tail, p)
		}
	}
	b.WriteString("    public function __construct(\n")
	for _, p := range append(head, tail...) {
		b.WriteString(doc("        ", strings.Join(p.Attributes, " "), p.Description))
		b.WriteString("        public ")
		for _, m := range p.Modifiers {
			b.WriteString(m + " ")
		}
		fmt.Fprintf(b, "%s $%s", p.TypeName, p.Name)
		switch {
		case !p.Value.IsNone():
			b.WriteString(" = " + p.Value.Text)
		case p.Type.Optional:
			b.WriteString(" = null")
		}
		b.WriteString(",\n")
	}
	b.WriteString("    ) {\n    }")
}

func function(b *strings.Builder, fn *compiler.BuiltFunction) {
	switch fn.Kind {
	case compiler.FuncSerialize:
		fmt.Fprintf(b, "    public function %s(): %s\n    {\n        return [\n", fn.Name, fn.Returns)
		for _, p := range fn.Fields {
			fmt.Fprintf(b, "            %s => $this->%s,\n", quote(p.Source.Name), p.Name)
		}
		b.WriteString("        ];\n    }")
	case compiler.FuncDeserialize:
		b.WriteString("    /** @param array<string, mixed> $data */\n")
		fmt.Fprintf(b, "    public static function %s(array $%s): %s\n    {\n", fn.Name, fn.Params[0].Name, fn.Returns)
		b.WriteString("        $args = [];\n")
		for _, p := range fn.Fields {
			fmt.Fprintf(b, "        if (array_key_exists(%s, $%s)) {\n", quote(p.Source.Name), fn.Params[0].Name)
			fmt.Fprintf(b, "            $args[%s] = $%s[%s];\n", quote(p.Name), fn.Params[0].Name, quote(p.Source.Name))
			b.WriteString("        }\n")
		}
		b.WriteString("        return new self(...$args);\n    }")
	case compiler.FuncValidate:
		b.WriteString("    /** @return list<string> */\n")
		fmt.Fprintf(b, "    public function %s(): %s\n    {\n        $errors = [];\n", fn.Name, fn.Returns)
		for _, p := range fn.Fields {
			fmt.Fprintf(b, "        if (%s) {\n", emptyCheck(p))
			fmt.Fprintf(b, "            $errors[] = %s;\n", quote(p.Source.Name+" is required"))
			b.WriteString("        }\n")
		}
		b.WriteString("        return $errors;\n    }")
	}
}

// constants writes class constants. Values PHP only builds at run time,
// dates and objects, become static accessors instead.
func constants(name string, consts []*compiler.BuiltConstant) string {
	var b strings.Builder
	fmt.Fprintf(&b, "final class %s\n{", name)
	for i, c := range consts {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(doc("    ", c.Description))
		switch c.Type.Kind() {
		case spec.TypeDate, spec.TypeTimespan, spec.TypeObject:
			fmt.Fprintf(&b, "    public static function %s(): %s\n    {\n        return %s;\n    }",
				naming.Camel(c.Source.Name), c.TypeName, c.Value.Text)
		default:
			value := c.Value.Text
			if c.Value.IsNone() {
				value = "null"
			}
			fmt.Fprintf(&b, "    public const %s = %s;", c.Name, value)
		}
	}
	b.WriteString("\n}")
	return b.String()
}

func service(s *compiler.BuiltService) string {
	var b strings.Builder
	b.WriteString(doc("", s.Description))
	if s.Role == compiler.ServerRole {
		fmt.Fprintf(&b, "abstract class %s\n{\n", s.Name)
		b.WriteString("    /** @return list<array{string, string, string}> */\n")
		b.WriteString("    public static function routes(): array\n    {\n        return [\n")
		for _, ep := range s.Endpoints {
			fmt.Fprintf(&b, "            [%s, %s, %s],\n", quote(ep.Method), quote(ep.Path), quote(ep.Name))
		}
		b.WriteString("        ];\n    }")
		for _, ep := range s.Endpoints {
			b.WriteString("\n\n")
			b.WriteString(doc("    ", ep.Description))
			fmt.Fprintf(&b, "    abstract public function %s(%s): %s;", ep.Name, endpointParams(ep), returnType(ep))
		}
		b.WriteString("\n}")
		return b.String()
	}

	fmt.Fprintf(&b, "final class %s\n{\n", s.Name)
	b.WriteString("    public function __construct(\n")
	b.WriteString("        private readonly ClientInterface $http,\n")
	b.WriteString("        private readonly RequestFactoryInterface $requests,\n")
	b.WriteString("        private readonly StreamFactoryInterface $streams,\n")
	b.WriteString("        private readonly string $baseUrl = '',\n")
	b.WriteString("    ) {\n    }")
	for _, ep := range s.Endpoints {
		b.WriteString("\n\n")
		clientEndpoint(&b, ep)
	}
	b.WriteString("\n}")
	return b.String()
}

func endpointParams(ep *compiler.BuiltEndpoint) string {
	var out []string
	for _, p := range ep.PathParams {
		out = append(out, "string $"+naming.Camel(p))
	}
	if ep.Request != nil {
		out = append(out, ep.RequestName+" $body")
	}
	return strings.Join(out, ", ")
}

func returnType(ep *compiler.BuiltEndpoint) string {
	if ep.Response == nil {
		return "void"
	}
	return ep.ResponseName
}

func clientEndpoint(b *strings.Builder, ep *compiler.BuiltEndpoint) {
	b.WriteString(doc("    ", ep.Description))
	fmt.Fprintf(b, "    public function %s(%s): %s\n    {\n", ep.Name, endpointParams(ep), returnType(ep))
	fmt.Fprintf(b, "        $request = $this->requests->createRequest(%s, %s)", quote(ep.Method), route(ep))
	if ep.Request != nil {
		b.WriteString("\n            ->withHeader('Content-Type', 'application/json')")
		b.WriteString("\n            ->withBody($this->streams->createStream(json_encode($body, JSON_THROW_ON_ERROR)))")
	}
	b.WriteString(";\n")
	if ep.Response == nil {
		b.WriteString("        $this->http->sendRequest($request);\n    }")
		return
	}
	b.WriteString("        $response = $this->http->sendRequest($request);\n")
	decoded := "json_decode((string) $response->getBody(), true, 512, JSON_THROW_ON_ERROR)"
	switch {
	case ep.Response.Kind() == spec.TypeObject:
		decoded = strings.TrimPrefix(ep.ResponseName, "?") + "::fromArray(" + decoded + ")"
	case ep.Response.Kind() == spec.TypeEnum && !ep.Response.Decl.Enum.Flags:
		decoded = strings.TrimPrefix(ep.ResponseName, "?") + "::from(" + decoded + ")"
	}
	fmt.Fprintf(b, "        return %s;\n    }", decoded)
}

// route concatenates the base URL, the literal parts of the path and the
// encoded path parameters.
func route(ep *compiler.BuiltEndpoint) string {
	parts := []string{"$this->baseUrl"}
	rest := ep.Path
	for _, p := range ep.PathParams {
		tok := "{" + p + "}"
		i := strings.Index(rest, tok)
		if i < 0 {
			continue
		}
		if i > 0 {
			parts = append(parts, quote(rest[:i]))
		}
		parts = append(parts, "rawurlencode($"+naming.Camel(p)+")")
		rest = rest[i+len(tok):]
	}
	if rest != "" {
		parts = append(parts, quote(rest))
	}
	return strings.Join(parts, " . ")
}
