package csharp

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"specgen/cmd/specgen/compiler"
	"specgen/cmd/specgen/naming"
	"specgen/cmd/specgen/spec"
)

// Register adds the csharp builders to reg.
func Register(reg *compiler.Registry[*Backend], b *Backend) {
	reg.RegisterEnum(enumBuilder{backend: b})
	reg.RegisterDefinition(
		definitionBuilder{backend: b, names: "default;class"},
		definitionBuilder{backend: b, names: "record", kind: "record"},
	)
	reg.RegisterClient(serviceBuilder{backend: b, names: "default;http", role: compiler.ClientRole})
	reg.RegisterServer(serviceBuilder{backend: b, names: "default;controller", role: compiler.ServerRole})
	reg.RegisterValidator(validatorBuilder{backend: b})
}

// bucketName is "<File>.g.cs" unless the file sets fileName. Everything
// declared by one input file lands in that bucket.
func bucketName(f *spec.File) string {
	if o := fileOptions(f); o.FileName != "" {
		return o.FileName
	}
	base := path.Base(f.Name)
	return naming.Pascal(strings.TrimSuffix(base, path.Ext(base))) + ".g.cs"
}

func openBucket(ctx *compiler.BuildContext, name string) *compiler.BuiltFile {
	bucket := ctx.GetOrAddFile(name, compiler.Primary)
	bucket.Namespace = fileOptions(ctx.Source).Namespace
	return bucket
}

type enumBuilder struct {
	backend *Backend
}

func (b enumBuilder) Backend() *Backend { return b.backend }
func (enumBuilder) Names() string       { return "default" }

func (enumBuilder) GetBuiltFileName(ctx *compiler.BuildContext, _ *spec.Enum) string {
	return bucketName(ctx.Source)
}

func (b enumBuilder) Build(ctx *compiler.BuildContext, e *spec.Enum) error {
	bucket := openBucket(ctx, b.GetBuiltFileName(ctx, e))
	be := &compiler.BuiltEnum{
		Name:        enumName(e),
		Source:      e,
		Description: e.Description,
		Flags:       e.Flags,
	}
	if e.Flags {
		be.Attributes = append(be.Attributes, "Flags")
		bucket.AddImport("System")
	}
	for _, v := range e.Values {
		be.Values = append(be.Values, compiler.BuiltEnumValue{Name: naming.Pascal(v.Label), Value: v.Value})
	}
	bucket.Enums = append(bucket.Enums, be)
	return nil
}

// definitionBuilder emits partial classes, structs or records. kind forces
// the declaration keyword; when empty the kind option decides.
type definitionBuilder struct {
	backend *Backend
	names   string
	kind    string
}

func (b definitionBuilder) Backend() *Backend { return b.backend }
func (b definitionBuilder) Names() string     { return b.names }

func (definitionBuilder) GetBuiltFileName(ctx *compiler.BuildContext, _ *spec.Definition) string {
	return bucketName(ctx.Source)
}

func (definitionBuilder) GetCompiledClassName(d *spec.Definition) string { return className(d) }

// GetCompiledDefaultValueForPropertyType renders the default of t under
// the backend default options.
func (definitionBuilder) GetCompiledDefaultValueForPropertyType(t *spec.Type) compiler.CompiledValue {
	return compiler.DefaultValue(renderer{opts: DefaultOptions()}, t)
}

// GetCompiledDesiredPropertyValue renders the literal of p, or the default
// of its type, under the options resolved for p.
func (definitionBuilder) GetCompiledDesiredPropertyValue(p *spec.Property) (compiler.CompiledValue, error) {
	r := renderer{opts: propertyOptions(p)}
	if p.Value == nil {
		return compiler.DefaultValue(r, p.Type), nil
	}
	return compiler.CompileValue(r, p.FullName(), p.Type, p.Value)
}

func (definitionBuilder) SerializeFunction(*spec.Definition) *compiler.BuiltFunction {
	return &compiler.BuiltFunction{Name: "ToJson", Kind: compiler.FuncSerialize, Returns: "string"}
}

func (b definitionBuilder) DeserializeFunction(d *spec.Definition) *compiler.BuiltFunction {
	return &compiler.BuiltFunction{
		Name:    "FromJson",
		Kind:    compiler.FuncDeserialize,
		Params:  []compiler.BuiltParam{{Name: "json", TypeName: "string"}},
		Returns: b.GetCompiledClassName(d) + "?",
	}
}

func (b definitionBuilder) Build(ctx *compiler.BuildContext, d *spec.Definition) error {
	o := definitionOptions(d)
	bucket := openBucket(ctx, b.GetBuiltFileName(ctx, d))
	bd := &compiler.BuiltDefinition{
		Name:        b.GetCompiledClassName(d),
		Source:      d,
		Description: d.Description,
		Kind:        b.kind,
	}
	if bd.Kind == "" {
		bd.Kind = o.Kind
	}
	if o.EmitGUID {
		bd.Attributes = append(bd.Attributes, fmt.Sprintf("Guid(%q)", guidFor(d)))
		bucket.AddImport("System.Runtime.InteropServices")
	}

	for _, p := range d.Properties {
		po := propertyOptions(p)
		v, err := b.GetCompiledDesiredPropertyValue(p)
		if err != nil {
			return err
		}
		bd.Properties = append(bd.Properties, &compiler.BuiltProperty{
			Name:        naming.Pascal(p.Name),
			Source:      p,
			Description: p.Description,
			Type:        p.Type,
			TypeName:    typeName(p.Type, po),
			Value:       v,
			Required:    po.Required,
			Attributes:  []string{fmt.Sprintf("JsonPropertyName(%s)", quote(p.Name))},
		})
		for _, imp := range typeImports(p.Type, po) {
			bucket.AddImport(imp)
		}
	}

	ser, de := b.SerializeFunction(d), b.DeserializeFunction(d)
	ser.Fields, de.Fields = bd.Properties, bd.Properties
	bd.Functions = append(bd.Functions, ser, de)
	bucket.AddImport("System.Text.Json")
	bucket.AddImport("System.Text.Json.Serialization")
	bucket.Definitions = append(bucket.Definitions, bd)
	ctx.Log.Trace().Str("definition", bd.Name).Str("kind", bd.Kind).Msg("built")
	return nil
}

// BuildConstants collects the constants of the file into one static class
// emitted next to the definitions.
func (b definitionBuilder) BuildConstants(ctx *compiler.BuildContext, constants []*spec.Constant) error {
	o := fileOptions(ctx.Source)
	bucket := openBucket(ctx, bucketName(ctx.Source))
	for _, c := range constants {
		v, err := compiler.CompileValue(renderer{opts: o}, c.FullName(), c.Type, c.Value)
		if err != nil {
			return err
		}
		bucket.Constants = append(bucket.Constants, &compiler.BuiltConstant{
			Name:        naming.Pascal(c.Name),
			Source:      c,
			Description: c.Description,
			Type:        c.Type,
			TypeName:    typeName(c.Type, o),
			Value:       v,
		})
		for _, imp := range typeImports(c.Type, o) {
			bucket.AddImport(imp)
		}
	}
	return nil
}

// guidFor derives a stable GUID from the qualified name of d.
func guidFor(d *spec.Definition) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(d.QualifiedName())).String()
}

// validatorBuilder adds a Validate method to an already built definition.
// It checks every required property that can hold null.
type validatorBuilder struct {
	backend *Backend
}

func (b validatorBuilder) Backend() *Backend { return b.backend }
func (validatorBuilder) Names() string       { return "default;validator" }

func (validatorBuilder) GetBuiltFileName(ctx *compiler.BuildContext, _ *spec.Definition) string {
	return bucketName(ctx.Source)
}

func (b validatorBuilder) Build(ctx *compiler.BuildContext, d *spec.Definition) error {
	name := b.GetBuiltFileName(ctx, d)
	bucket, ok := ctx.File(name)
	if !ok {
		return fmt.Errorf("phase=build path=%s: validator: bucket %s not built", d.FullName(), name)
	}
	for _, bd := range bucket.Definitions {
		if bd.Source != d {
			continue
		}
		fn := &compiler.BuiltFunction{Name: "Validate", Kind: compiler.FuncValidate, Returns: "IReadOnlyList<string>"}
		for _, p := range bd.Properties {
			if p.Required && (p.Type.Optional || !isValueType(p.Type)) {
				fn.Fields = append(fn.Fields, p)
			}
		}
		bd.Functions = append(bd.Functions, fn)
		bucket.AddImport("System.Collections.Generic")
		return nil
	}
	return fmt.Errorf("phase=build path=%s: validator: definition not built", d.FullName())
}

// serviceBuilder emits an HttpClient wrapper for the client role and an
// abstract ASP.NET controller for the server role.
type serviceBuilder struct {
	backend *Backend
	names   string
	role    compiler.ServiceRole
}

func (b serviceBuilder) Backend() *Backend { return b.backend }
func (b serviceBuilder) Names() string     { return b.names }

func (serviceBuilder) GetBuiltFileName(ctx *compiler.BuildContext, _ *spec.Service) string {
	return bucketName(ctx.Source)
}

func (b serviceBuilder) Build(ctx *compiler.BuildContext, s *spec.Service) error {
	o := serviceOptions(s)
	bucket := openBucket(ctx, b.GetBuiltFileName(ctx, s))
	bs := &compiler.BuiltService{
		Source:      s,
		Role:        b.role,
		Description: s.Description,
	}
	switch b.role {
	case compiler.ClientRole:
		bs.Name = naming.Pascal(s.Name) + "Client"
		for _, imp := range []string{"System", "System.Net.Http", "System.Net.Http.Json", "System.Threading", "System.Threading.Tasks"} {
			bucket.AddImport(imp)
		}
	case compiler.ServerRole:
		bs.Name = naming.Pascal(s.Name) + "ControllerBase"
		bs.Attributes = append(bs.Attributes, "ApiController")
		for _, imp := range []string{"Microsoft.AspNetCore.Mvc", "System.Threading", "System.Threading.Tasks"} {
			bucket.AddImport(imp)
		}
	}

	for _, ep := range s.Endpoints {
		be := &compiler.BuiltEndpoint{
			Name:        naming.Pascal(ep.Name),
			Source:      ep,
			Method:      ep.Method,
			Path:        ep.Path,
			PathParams:  compiler.PathParams(ep.Path),
			Description: ep.Description,
			Request:     ep.RequestType,
			Response:    ep.ResponseType,
		}
		if b.role == compiler.ClientRole {
			be.Name += "Async"
		}
		if ep.RequestType != nil {
			be.RequestName = typeName(ep.RequestType, o)
			for _, imp := range typeImports(ep.RequestType, o) {
				bucket.AddImport(imp)
			}
		}
		if ep.ResponseType != nil {
			be.ResponseName = typeName(ep.ResponseType, o)
			for _, imp := range typeImports(ep.ResponseType, o) {
				bucket.AddImport(imp)
			}
		}
		bs.Endpoints = append(bs.Endpoints, be)
	}
	bucket.Services = append(bucket.Services, bs)
	return nil
}
