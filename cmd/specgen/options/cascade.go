// Package options resolves per-backend configuration down the cascade
// global -> file -> definition -> property and global -> file -> service.
//
// The engine is type-erased: every node stores a spec.OptionSet keyed by
// backend name and never inspects the values. Each backend supplies a
// Reader for its own options type O, and reads results back with Get.
package options

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"specgen/cmd/specgen/spec"
)

var (
	ErrInvalidOptions = errors.New("invalid options block")
	ErrNotAttached    = errors.New("options not attached")
)

// Reader resolves one backend's options at every level. Each method gets the
// already resolved options of the enclosing level and the raw block declared
// at this level, or nil when there is none.
type Reader[O any] interface {
	ReadGlobalOptions(raw map[string]any) (O, error)
	ReadFileOptions(file *spec.File, parent O, raw map[string]any) (O, error)
	ReadDefinitionOptions(def *spec.Definition, parent O, raw map[string]any) (O, error)
	ReadPropertyOptions(prop *spec.Property, parent O, raw map[string]any) (O, error)
	ReadServiceOptions(svc *spec.Service, parent O, raw map[string]any) (O, error)
}

// Requirer is implemented by options types carrying a "required" flag.
// Attach uses it to force properties with a literal value to be optional.
type Requirer[O any] interface {
	WithoutRequired() O
}

// Attach resolves options for backend on every file, definition, property
// and service of files, in declaration order, and stores the results. Global
// options are read once from globalRaw.
func Attach[O any](backend string, reader Reader[O], globalRaw map[string]any, files ...*spec.File) error {
	global, err := reader.ReadGlobalOptions(globalRaw)
	if err != nil {
		return fmt.Errorf("phase=options path=<global>: backend %s: %w", backend, err)
	}
	for _, f := range files {
		if err := attachFile(backend, reader, global, f); err != nil {
			return err
		}
	}
	return nil
}

func attachFile[O any](backend string, reader Reader[O], global O, f *spec.File) error {
	fileOpts, err := reader.ReadFileOptions(f, global, f.RawOptions.Block(backend))
	if err != nil {
		return wrap(f.FullName(), backend, err)
	}
	f.Options = with(f.Options, backend, fileOpts)

	for _, d := range f.Definitions {
		defOpts, err := reader.ReadDefinitionOptions(d, fileOpts, d.RawOptions.Block(backend))
		if err != nil {
			return wrap(d.FullName(), backend, err)
		}
		d.Options = with(d.Options, backend, defOpts)

		for _, p := range d.Properties {
			propOpts, err := reader.ReadPropertyOptions(p, defOpts, p.RawOptions.Block(backend))
			if err != nil {
				return wrap(p.FullName(), backend, err)
			}
			if p.Value != nil {
				if r, ok := any(propOpts).(Requirer[O]); ok {
					propOpts = r.WithoutRequired()
				}
			}
			p.Options = with(p.Options, backend, propOpts)
		}
	}

	for _, s := range f.Services {
		svcOpts, err := reader.ReadServiceOptions(s, fileOpts, s.RawOptions.Block(backend))
		if err != nil {
			return wrap(s.FullName(), backend, err)
		}
		s.Options = with(s.Options, backend, svcOpts)
	}
	return nil
}

// with returns a copy of set with backend bound to v. Sets are replaced
// rather than mutated so a set handed out earlier never changes.
func with(set spec.OptionSet, backend string, v any) spec.OptionSet {
	out := make(spec.OptionSet, len(set)+1)
	for k, old := range set {
		out[k] = old
	}
	out[backend] = v
	return out
}

func wrap(path, backend string, err error) error {
	return fmt.Errorf("phase=options path=%s: backend %s: %w", path, backend, err)
}

// Get returns the options attached for backend, checked against O.
func Get[O any](set spec.OptionSet, backend string) (O, bool) {
	var zero O
	v, ok := set[backend]
	if !ok {
		return zero, false
	}
	o, ok := v.(O)
	return o, ok
}

// MustGet is Get for callers that ran Attach for backend beforehand; a
// missing or mistyped entry is reported as ErrNotAttached.
func MustGet[O any](set spec.OptionSet, backend string) (O, error) {
	o, ok := Get[O](set, backend)
	if !ok {
		return o, fmt.Errorf("%w: backend %s", ErrNotAttached, backend)
	}
	return o, nil
}

// Decode overlays raw on a copy of parent: keys present in raw replace the
// parent's values, absent keys keep them. Struct fields are matched through
// the `option` tag; unknown keys are an error.
func Decode[O any](parent O, raw map[string]any) (O, error) {
	out := parent
	if len(raw) == 0 {
		return out, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		TagName:          "option",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return parent, err
	}
	if err := dec.Decode(raw); err != nil {
		return parent, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return out, nil
}
