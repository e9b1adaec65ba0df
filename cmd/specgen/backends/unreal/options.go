package unreal

import (
	"specgen/cmd/specgen/options"
	"specgen/cmd/specgen/spec"
)

const backendName = "unreal"

type Options struct {
	// Prefix is a project prefix written after the type letter: with
	// "Acme", Pixel becomes FAcmePixel and Color EAcmeColor.
	Prefix string `option:"prefix"`
	// ModuleAPI is the export macro of the game module, e.g. ACME_API.
	ModuleAPI     string `option:"moduleApi"`
	BlueprintType bool   `option:"blueprintType"`
	Category      string `option:"category"`
	Required      bool   `option:"required"`
}

func DefaultOptions() Options {
	return Options{BlueprintType: true}
}

func (o Options) WithoutRequired() Options {
	o.Required = false
	return o
}

type Reader struct{}

func (Reader) ReadGlobalOptions(raw map[string]any) (Options, error) {
	return options.Decode(DefaultOptions(), raw)
}

func (Reader) ReadFileOptions(_ *spec.File, parent Options, raw map[string]any) (Options, error) {
	return options.Decode(parent, raw)
}

func (Reader) ReadDefinitionOptions(_ *spec.Definition, parent Options, raw map[string]any) (Options, error) {
	return options.Decode(parent, raw)
}

func (Reader) ReadPropertyOptions(_ *spec.Property, parent Options, raw map[string]any) (Options, error) {
	return options.Decode(parent, raw)
}

func (Reader) ReadServiceOptions(_ *spec.Service, parent Options, raw map[string]any) (Options, error) {
	return options.Decode(parent, raw)
}

func fileOptions(f *spec.File) Options {
	if f == nil {
		return DefaultOptions()
	}
	if o, ok := options.Get[Options](f.Options, backendName); ok {
		return o
	}
	return DefaultOptions()
}

func definitionOptions(d *spec.Definition) Options {
	if o, ok := options.Get[Options](d.Options, backendName); ok {
		return o
	}
	return fileOptions(d.File())
}

func propertyOptions(p *spec.Property) Options {
	if o, ok := options.Get[Options](p.Options, backendName); ok {
		return o
	}
	return DefaultOptions()
}
