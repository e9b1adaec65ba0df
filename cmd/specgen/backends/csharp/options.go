package csharp

import (
	"fmt"

	"specgen/cmd/specgen/options"
	"specgen/cmd/specgen/spec"
)

const backendName = "csharp"

// Options is the csharp options block. Every level of the cascade uses the
// same struct.
type Options struct {
	// Namespace of the generated file. A file's spec namespace is appended
	// to the global one unless the file block sets it explicitly.
	Namespace string `option:"namespace"`
	// Kind is the declaration keyword of definitions: class, struct or record.
	Kind                 string `option:"kind"`
	ImmutableCollections bool   `option:"immutableCollections"`
	Required             bool   `option:"required"`
	Nullable             bool   `option:"nullable"`
	EmitGUID             bool   `option:"emitGuid"`
	// FileName overrides the bucket name of a file.
	FileName string `option:"fileName"`
}

func DefaultOptions() Options {
	return Options{Kind: "class", Nullable: true}
}

func (o Options) WithoutRequired() Options {
	o.Required = false
	return o
}

// Reader reads csharp options blocks.
type Reader struct{}

func (Reader) ReadGlobalOptions(raw map[string]any) (Options, error) {
	return check(options.Decode(DefaultOptions(), raw))
}

func (Reader) ReadFileOptions(f *spec.File, parent Options, raw map[string]any) (Options, error) {
	o := parent
	if f.Namespace != "" {
		o.Namespace = joinNamespace(parent.Namespace, f.Namespace)
	}
	return check(options.Decode(o, raw))
}

func (Reader) ReadDefinitionOptions(_ *spec.Definition, parent Options, raw map[string]any) (Options, error) {
	return check(options.Decode(parent, raw))
}

func (Reader) ReadPropertyOptions(_ *spec.Property, parent Options, raw map[string]any) (Options, error) {
	return check(options.Decode(parent, raw))
}

func (Reader) ReadServiceOptions(_ *spec.Service, parent Options, raw map[string]any) (Options, error) {
	return check(options.Decode(parent, raw))
}

func check(o Options, err error) (Options, error) {
	if err != nil {
		return o, err
	}
	switch o.Kind {
	case "class", "struct", "record":
		return o, nil
	}
	return o, fmt.Errorf("%w: kind %q (want class, struct or record)", options.ErrInvalidOptions, o.Kind)
}

func joinNamespace(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
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

func serviceOptions(s *spec.Service) Options {
	if o, ok := options.Get[Options](s.Options, backendName); ok {
		return o
	}
	return fileOptions(s.File())
}
