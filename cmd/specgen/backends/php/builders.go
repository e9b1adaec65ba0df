package php

import (
	"fmt"
	"path"
	"strings"

	"specgen/cmd/specgen/compiler"
	"specgen/cmd/specgen/naming"
	"specgen/cmd/specgen/spec"
)

// Register adds the php builders to reg.
func Register(reg *compiler.Registry[*Backend], b *Backend) {
	reg.RegisterEnum(enumBuilder{backend: b})
	reg.RegisterDefinition(modelBuilder{backend: b})
	reg.RegisterClient(serviceBuilder{backend: b, names: "default;client", role: compiler.ClientRole})
	reg.RegisterServer(serviceBuilder{backend: b, names: "default;controller", role: compiler.ServerRole})
	reg.RegisterValidator(validatorBuilder{backend: b})
}

// bucketFor follows PSR-4: one class per file under its namespace path.
func bucketFor(ns, class string) string {
	dir := strings.ReplaceAll(ns, `\`, "/")
	if dir == "" {
		return class + ".php"
	}
	return dir + "/" + class + ".php"
}

func openBucket(ctx *compiler.BuildContext, name string) *compiler.BuiltFile {
	bucket := ctx.GetOrAddFile(name, compiler.Primary)
	bucket.Namespace = fileOptions(ctx.Source).Namespace
	return bucket
}

func namespaceOf(ctx *compiler.BuildContext) string { return fileOptions(ctx.Source).Namespace }

type enumBuilder struct {
	backend *Backend
}

func (b enumBuilder) Backend() *Backend { return b.backend }
func (enumBuilder) Names() string       { return "default" }

func (enumBuilder) GetBuiltFileName(ctx *compiler.BuildContext, e *spec.Enum) string {
	return bucketFor(namespaceOf(ctx), enumName(e))
}

func (b enumBuilder) Build(ctx *compiler.BuildContext, e *spec.Enum) error {
	bucket := openBucket(ctx, b.GetBuiltFileName(ctx, e))
	be := &compiler.BuiltEnum{
		Name:        enumName(e),
		Source:      e,
		Description: e.Description,
		Flags:       e.Flags,
	}
	for _, v := range e.Values {
		be.Values = append(be.Values, compiler.BuiltEnumValue{Name: caseName(e, v.Label), Value: v.Value})
	}
	bucket.Enums = append(bucket.Enums, be)
	return nil
}

// modelBuilder emits final classes with promoted constructor properties
// implementing JsonSerializable.
type modelBuilder struct {
	backend *Backend
}

func (b modelBuilder) Backend() *Backend { return b.backend }
func (modelBuilder) Names() string       { return "default;model" }

func (b modelBuilder) GetBuiltFileName(ctx *compiler.BuildContext, d *spec.Definition) string {
	return bucketFor(namespaceOf(ctx), b.GetCompiledClassName(d))
}

func (modelBuilder) GetCompiledClassName(d *spec.Definition) string { return className(d) }

func (modelBuilder) GetCompiledDefaultValueForPropertyType(t *spec.Type) compiler.CompiledValue {
	return compiler.DefaultValue(renderer{}, t)
}

func (b modelBuilder) GetCompiledDesiredPropertyValue(p *spec.Property) (compiler.CompiledValue, error) {
	if p.Value == nil {
		return b.GetCompiledDefaultValueForPropertyType(p.Type), nil
	}
	return compiler.CompileValue(renderer{}, p.FullName(), p.Type, p.Value)
}

func (modelBuilder) SerializeFunction(*spec.Definition) *compiler.BuiltFunction {
	return &compiler.BuiltFunction{Name: "jsonSerialize", Kind: compiler.FuncSerialize, Returns: "array"}
}

func (modelBuilder) DeserializeFunction(*spec.Definition) *compiler.BuiltFunction {
	return &compiler.BuiltFunction{
		Name:    "fromArray",
		Kind:    compiler.FuncDeserialize,
		Params:  []compiler.BuiltParam{{Name: "data", TypeName: "array"}},
		Returns: "self",
	}
}

func (b modelBuilder) Build(ctx *compiler.BuildContext, d *spec.Definition) error {
	bucket := openBucket(ctx, b.GetBuiltFileName(ctx, d))
	bd := &compiler.BuiltDefinition{
		Name:        b.GetCompiledClassName(d),
		Source:      d,
		Description: d.Description,
		Kind:        "final class",
	}
	for _, p := range d.Properties {
		po := propertyOptions(p)
		v, err := b.GetCompiledDesiredPropertyValue(p)
		if err != nil {
			return err
		}
		bp := &compiler.BuiltProperty{
			Name:        naming.Camel(p.Name),
			Source:      p,
			Description: p.Description,
			Type:        p.Type,
			TypeName:    typeName(p.Type),
			Value:       v,
			Required:    po.Required,
		}
		if doc := docType(p.Type); doc != "" {
			bp.Attributes = append(bp.Attributes, "@var "+doc)
		}
		if po.Readonly {
			bp.Modifiers = append(bp.Modifiers, "readonly")
		}
		bd.Properties = append(bd.Properties, bp)
	}
	if definitionOptions(d).Readonly && allReadonly(bd.Properties) {
		bd.Kind = "final readonly class"
		for _, bp := range bd.Properties {
			bp.Modifiers = nil
		}
	}
	ser, de := b.SerializeFunction(d), b.DeserializeFunction(d)
	ser.Fields, de.Fields = bd.Properties, bd.Properties
	bd.Functions = append(bd.Functions, ser, de)
	bucket.Definitions = append(bucket.Definitions, bd)
	return nil
}

func allReadonly(props []*compiler.BuiltProperty) bool {
	for _, p := range props {
		if len(p.Modifiers) == 0 {
			return false
		}
	}
	return true
}

// BuildConstants puts the constants of a file into "<File>Constants".
func (modelBuilder) BuildConstants(ctx *compiler.BuildContext, constants []*spec.Constant) error {
	bucket := openBucket(ctx, bucketFor(namespaceOf(ctx), constantsClass(ctx.Source)))
	for _, c := range constants {
		v, err := compiler.CompileValue(renderer{}, c.FullName(), c.Type, c.Value)
		if err != nil {
			return err
		}
		bucket.Constants = append(bucket.Constants, &compiler.BuiltConstant{
			Name:        naming.Upper(c.Name),
			Source:      c,
			Description: c.Description,
			Type:        c.Type,
			TypeName:    typeName(c.Type),
			Value:       v,
		})
	}
	return nil
}

func constantsClass(f *spec.File) string {
	base := path.Base(f.Name)
	return naming.Pascal(strings.TrimSuffix(base, path.Ext(base))) + "Constants"
}

// validatorBuilder adds validate() to a built model. Required properties are
// checked when PHP lets them be empty: nullable, strings and arrays.
type validatorBuilder struct {
	backend *Backend
}

func (b validatorBuilder) Backend() *Backend { return b.backend }
func (validatorBuilder) Names() string       { return "default;validator" }

func (validatorBuilder) GetBuiltFileName(ctx *compiler.BuildContext, d *spec.Definition) string {
	return bucketFor(namespaceOf(ctx), className(d))
}

func (b validatorBuilder) Build(ctx *compiler.BuildContext, d *spec.Definition) error {
	name := b.GetBuiltFileName(ctx, d)
	bucket, ok := ctx.File(name)
	if !ok || len(bucket.Definitions) == 0 || bucket.Definitions[0].Source != d {
		return fmt.Errorf("phase=build path=%s: validator: bucket %s not built", d.FullName(), name)
	}
	bd := bucket.Definitions[0]
	fn := &compiler.BuiltFunction{Name: "validate", Kind: compiler.FuncValidate, Returns: "array"}
	for _, p := range bd.Properties {
		if p.Required && emptyCheck(p) != "" {
			fn.Fields = append(fn.Fields, p)
		}
	}
	bd.Functions = append(bd.Functions, fn)
	return nil
}

// emptyCheck is the PHP condition telling that p holds no value, or "" when
// its type cannot be empty.
func emptyCheck(p *compiler.BuiltProperty) string {
	v := "$this->" + p.Name
	switch {
	case p.Type.Optional:
		return v + " === null"
	case p.Type.Kind() == spec.TypeString:
		return v + " === ''"
	case p.Type.Kind().IsContainer():
		return v + " === []"
	}
	return ""
}

// serviceBuilder emits a PSR-18 client or an abstract controller with its
// route table.
type serviceBuilder struct {
	backend *Backend
	names   string
	role    compiler.ServiceRole
}

func (b serviceBuilder) Backend() *Backend { return b.backend }
func (b serviceBuilder) Names() string     { return b.names }

func (b serviceBuilder) GetBuiltFileName(ctx *compiler.BuildContext, s *spec.Service) string {
	return bucketFor(namespaceOf(ctx), b.className(s))
}

func (b serviceBuilder) className(s *spec.Service) string {
	if b.role == compiler.ServerRole {
		return naming.Pascal(s.Name) + "Controller"
	}
	return naming.Pascal(s.Name) + "Client"
}

func (b serviceBuilder) Build(ctx *compiler.BuildContext, s *spec.Service) error {
	bucket := openBucket(ctx, b.GetBuiltFileName(ctx, s))
	bs := &compiler.BuiltService{
		Name:        b.className(s),
		Source:      s,
		Role:        b.role,
		Description: s.Description,
	}
	if b.role == compiler.ClientRole {
		bucket.AddImport(`Psr\Http\Client\ClientInterface`)
		bucket.AddImport(`Psr\Http\Message\RequestFactoryInterface`)
		bucket.AddImport(`Psr\Http\Message\StreamFactoryInterface`)
	}
	for _, ep := range s.Endpoints {
		be := &compiler.BuiltEndpoint{
			Name:        naming.Camel(ep.Name),
			Source:      ep,
			Method:      ep.Method,
			Path:        ep.Path,
			PathParams:  compiler.PathParams(ep.Path),
			Description: ep.Description,
			Request:     ep.RequestType,
			Response:    ep.ResponseType,
		}
		if ep.RequestType != nil {
			be.RequestName = typeName(ep.RequestType)
		}
		if ep.ResponseType != nil {
			be.ResponseName = typeName(ep.ResponseType)
		}
		bs.Endpoints = append(bs.Endpoints, be)
	}
	bucket.Services = append(bucket.Services, bs)
	return nil
}
