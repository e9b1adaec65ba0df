package php

import (
	"strings"

	"specgen/cmd/specgen/options"
	"specgen/cmd/specgen/spec"
)

const backendName = "php"

type Options struct {
	// Namespace is the PHP namespace, backslash separated. Dots are
	// accepted and converted.
	Namespace   string `option:"namespace"`
	StrictTypes bool   `option:"strictTypes"`
	Readonly    bool   `option:"readonly"`
	Required    bool   `option:"required"`
}

func DefaultOptions() Options {
	return Options{StrictTypes: true}
}

func (o Options) WithoutRequired() Options {
	o.Required = false
	return o
}

type Reader struct{}

func (Reader) ReadGlobalOptions(raw map[string]any) (Options, error) {
	return normalize(options.Decode(DefaultOptions(), raw))
}

// ReadFileOptions nests the spec namespace of f under the global namespace
// unless the file block names one.
func (Reader) ReadFileOptions(f *spec.File, parent Options, raw map[string]any) (Options, error) {
	o := parent
	if f.Namespace != "" {
		o.Namespace = joinNamespace(parent.Namespace, phpNamespace(f.Namespace))
	}
	return normalize(options.Decode(o, raw))
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

func normalize(o Options, err error) (Options, error) {
	o.Namespace = phpNamespace(o.Namespace)
	return o, err
}

func phpNamespace(ns string) string {
	return strings.Trim(strings.ReplaceAll(ns, ".", `\`), `\`)
}

func joinNamespace(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + `\` + child
}

func fileOptions(f *spec.File) Options {
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
