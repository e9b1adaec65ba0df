package unreal

import (
	"specgen/cmd/specgen/compiler"
	"specgen/cmd/specgen/naming"
	"specgen/cmd/specgen/spec"
)

// Register adds the unreal builders to reg. Unreal has no server or
// validator builders.
func Register(reg *compiler.Registry[*Backend], b *Backend) {
	reg.RegisterEnum(enumBuilder{backend: b})
	reg.RegisterDefinition(structBuilder{backend: b})
	reg.RegisterClient(clientBuilder{backend: b})
}

// buckets returns the header and source of the current input file. Enums
// and constants live in the header alone.
func buckets(ctx *compiler.BuildContext) (header, source *compiler.BuiltFile) {
	header = ctx.GetOrAddFile(headerName(ctx.Source), compiler.Primary)
	source = ctx.GetOrAddFile(sourceName(ctx.Source), compiler.Secondary)
	return header, source
}

type enumBuilder struct {
	backend *Backend
}

func (b enumBuilder) Backend() *Backend { return b.backend }
func (enumBuilder) Names() string       { return "default;uenum" }

func (enumBuilder) GetBuiltFileName(ctx *compiler.BuildContext, _ *spec.Enum) string {
	return headerName(ctx.Source)
}

func (b enumBuilder) Build(ctx *compiler.BuildContext, e *spec.Enum) error {
	header := ctx.GetOrAddFile(headerName(ctx.Source), compiler.Primary)
	o := fileOptions(ctx.Source)
	be := &compiler.BuiltEnum{
		Name:        enumName(e),
		Source:      e,
		Description: e.Description,
		Flags:       e.Flags,
	}
	fits := true
	for _, v := range e.Values {
		be.Values = append(be.Values, compiler.BuiltEnumValue{Name: naming.Pascal(v.Label), Value: v.Value})
		if v.Value < 0 || v.Value > 255 {
			fits = false
		}
	}
	// Blueprints only take uint8 enums.
	if o.BlueprintType && fits {
		be.Attributes = append(be.Attributes, "BlueprintType")
	}
	if e.Flags {
		be.Attributes = append(be.Attributes, `meta = (Bitflags, UseEnumValuesAsMaskValuesInEditor = "true")`)
	}
	if !fits {
		ctx.Log.Warn().Str("enum", e.FullName()).Msg("values exceed uint8, emitted as int32 without BlueprintType")
	}
	header.Enums = append(header.Enums, be)
	return nil
}

// structBuilder declares a USTRUCT in the header and implements its JSON
// functions in the source.
type structBuilder struct {
	backend *Backend
}

func (b structBuilder) Backend() *Backend { return b.backend }
func (structBuilder) Names() string       { return "default;ustruct" }

func (structBuilder) GetBuiltFileName(ctx *compiler.BuildContext, _ *spec.Definition) string {
	return headerName(ctx.Source)
}

func (structBuilder) GetCompiledClassName(d *spec.Definition) string { return structName(d) }

func (structBuilder) GetCompiledDefaultValueForPropertyType(t *spec.Type) compiler.CompiledValue {
	return compiler.DefaultValue(renderer{}, t)
}

// GetCompiledDesiredPropertyValue rejects literals for "any": a JSON
// wrapper has no C++ literal form.
func (b structBuilder) GetCompiledDesiredPropertyValue(p *spec.Property) (compiler.CompiledValue, error) {
	if p.Value == nil {
		return b.GetCompiledDefaultValueForPropertyType(p.Type), nil
	}
	if p.Type.Kind() == spec.TypeAny {
		return compiler.CompiledValue{}, &spec.UnsupportedValueError{Path: p.FullName(), Kind: p.Value.Kind}
	}
	return compiler.CompileValue(renderer{}, p.FullName(), p.Type, p.Value)
}

func (structBuilder) SerializeFunction(*spec.Definition) *compiler.BuiltFunction {
	return &compiler.BuiltFunction{
		Name:    "ToJson",
		Kind:    compiler.FuncSerialize,
		Params:  []compiler.BuiltParam{{Name: "OutJson", TypeName: "FString&"}},
		Returns: "bool",
	}
}

func (b structBuilder) DeserializeFunction(d *spec.Definition) *compiler.BuiltFunction {
	return &compiler.BuiltFunction{
		Name: "FromJson",
		Kind: compiler.FuncDeserialize,
		Params: []compiler.BuiltParam{
			{Name: "Json", TypeName: "const FString&"},
			{Name: "OutValue", TypeName: b.GetCompiledClassName(d) + "&"},
		},
		Returns: "bool",
	}
}

func (b structBuilder) Build(ctx *compiler.BuildContext, d *spec.Definition) error {
	header, source := buckets(ctx)
	o := definitionOptions(d)
	bd := &compiler.BuiltDefinition{
		Name:        b.GetCompiledClassName(d),
		Source:      d,
		Description: d.Description,
		Kind:        "struct",
	}
	if o.BlueprintType {
		bd.Attributes = append(bd.Attributes, "BlueprintType")
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
			TypeName:    typeName(p.Type),
			Value:       v,
			Required:    po.Required,
			Attributes:  propertySpecifiers(po),
		})
		for _, inc := range typeIncludes(p.Type) {
			header.AddImport(inc)
		}
	}
	ser, de := b.SerializeFunction(d), b.DeserializeFunction(d)
	ser.Fields, de.Fields = bd.Properties, bd.Properties
	bd.Functions = append(bd.Functions, ser, de)

	header.Definitions = append(header.Definitions, bd)
	source.Definitions = append(source.Definitions, bd)
	source.AddImport("JsonObjectConverter.h")
	return nil
}

func propertySpecifiers(o Options) []string {
	out := []string{"EditAnywhere"}
	if o.BlueprintType {
		out = append(out, "BlueprintReadWrite")
	}
	if o.Category != "" {
		out = append(out, "Category = "+quote(o.Category))
	}
	return out
}

// BuildConstants writes the constants of a file into a namespace of the
// header.
func (structBuilder) BuildConstants(ctx *compiler.BuildContext, constants []*spec.Constant) error {
	header := ctx.GetOrAddFile(headerName(ctx.Source), compiler.Primary)
	for _, c := range constants {
		if c.Type.Kind() == spec.TypeAny && c.Value != nil {
			return &spec.UnsupportedValueError{Path: c.FullName(), Kind: c.Value.Kind}
		}
		v, err := compiler.CompileValue(renderer{}, c.FullName(), c.Type, c.Value)
		if err != nil {
			return err
		}
		header.Constants = append(header.Constants, &compiler.BuiltConstant{
			Name:        naming.Pascal(c.Name),
			Source:      c,
			Description: c.Description,
			Type:        c.Type,
			TypeName:    typeName(c.Type),
			Value:       v,
		})
	}
	return nil
}

// clientBuilder emits an FHttpModule based client. Object payloads go
// through FJsonObjectConverter; other payloads are passed as raw JSON.
type clientBuilder struct {
	backend *Backend
}

func (b clientBuilder) Backend() *Backend { return b.backend }
func (clientBuilder) Names() string       { return "default;http" }

func (clientBuilder) GetBuiltFileName(ctx *compiler.BuildContext, _ *spec.Service) string {
	return headerName(ctx.Source)
}

func (b clientBuilder) Build(ctx *compiler.BuildContext, s *spec.Service) error {
	header, source := buckets(ctx)
	bs := &compiler.BuiltService{
		Name:        serviceName(s),
		Source:      s,
		Role:        compiler.ClientRole,
		Description: s.Description,
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
		if ep.RequestType != nil {
			be.RequestName = payloadName(ep.RequestType)
		}
		if ep.ResponseType != nil {
			be.ResponseName = payloadName(ep.ResponseType)
		}
		bs.Endpoints = append(bs.Endpoints, be)
	}
	header.Services = append(header.Services, bs)
	source.Services = append(source.Services, bs)
	for _, inc := range []string{
		"GenericPlatform/GenericPlatformHttp.h",
		"HttpModule.h",
		"Interfaces/IHttpRequest.h",
		"Interfaces/IHttpResponse.h",
		"JsonObjectConverter.h",
	} {
		source.AddImport(inc)
	}
	return nil
}

// payloadName is the struct name of object payloads and FString, holding
// raw JSON, for everything else.
func payloadName(t *spec.Type) string {
	if t.Kind() == spec.TypeObject {
		return typeName(t)
	}
	return "FString"
}
