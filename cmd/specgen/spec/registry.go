package spec

import (
	"github.com/rs/zerolog"
)

const builtinOwner = "<builtin>"

// Registry holds every type available for resolution: the built-ins plus the
// definitions and enums of all registered files. Files are added and
// registered first, then Resolve binds every reference in one pass.
type Registry struct {
	log zerolog.Logger

	types map[string]*TypeDecl
	order []*TypeDecl

	files     []*File
	fileIndex map[string]*File
}

// NewRegistry returns a Registry seeded with the built-in types.
func NewRegistry(log zerolog.Logger) *Registry {
	r := &Registry{
		log:       log,
		types:     make(map[string]*TypeDecl),
		fileIndex: make(map[string]*File),
	}
	for _, d := range builtinDecls {
		r.types[d.Name] = d
		r.order = append(r.order, d)
	}
	return r
}

// AddFile records a file as part of the input set without registering its
// types. Adding the same file name twice fails with FileAlreadyAddedError.
func (r *Registry) AddFile(f *File) error {
	if _, exists := r.fileIndex[f.Name]; exists {
		return &FileAlreadyAddedError{File: f.Name}
	}
	r.fileIndex[f.Name] = f
	r.files = append(r.files, f)
	return nil
}

// RegisterFile adds every definition and enum of f as a user type keyed by
// its namespace-qualified name. The file is added first if needed.
func (r *Registry) RegisterFile(f *File) error {
	if existing, ok := r.fileIndex[f.Name]; !ok {
		if err := r.AddFile(f); err != nil {
			return err
		}
	} else if existing != f {
		return &FileAlreadyAddedError{File: f.Name}
	}

	for _, d := range f.Definitions {
		if err := r.register(&TypeDecl{Name: d.QualifiedName(), Kind: TypeObject, Definition: d}); err != nil {
			return err
		}
	}
	for _, e := range f.Enums {
		if err := r.register(&TypeDecl{Name: e.QualifiedName(), Kind: TypeEnum, Enum: e}); err != nil {
			return err
		}
		r.checkFlags(e)
	}
	r.log.Debug().
		Str("file", f.Name).
		Str("namespace", f.Namespace).
		Int("definitions", len(f.Definitions)).
		Int("enums", len(f.Enums)).
		Msg("registered file types")
	return nil
}

func (r *Registry) register(d *TypeDecl) error {
	if existing, exists := r.types[d.Name]; exists {
		owner := builtinOwner
		if f := existing.File(); f != nil {
			owner = f.Name
		}
		return &DuplicateTypeError{Name: d.Name, Existing: owner, Conflicting: d.File().Name}
	}
	r.types[d.Name] = d
	r.order = append(r.order, d)
	return nil
}

// checkFlags warns about flags enums whose values are not bits. The values
// are kept as declared.
func (r *Registry) checkFlags(e *Enum) {
	if !e.Flags {
		return
	}
	for _, v := range e.Values {
		if v.Value != 0 && v.Value&(v.Value-1) != 0 {
			r.log.Warn().
				Str("enum", e.FullName()).
				Str("label", v.Label).
				Int64("value", v.Value).
				Msg("flags enum value is not a power of two")
		}
	}
}

// Lookup returns the declaration registered under the exact name.
func (r *Registry) Lookup(name string) (*TypeDecl, bool) {
	d, ok := r.types[name]
	return d, ok
}

// Types returns all declarations in registration order, built-ins first.
func (r *Registry) Types() []*TypeDecl {
	return append([]*TypeDecl(nil), r.order...)
}

// Files returns the added files in insertion order.
func (r *Registry) Files() []*File {
	return append([]*File(nil), r.files...)
}

// File returns the added file with the given name.
func (r *Registry) File(name string) (*File, bool) {
	f, ok := r.fileIndex[name]
	return f, ok
}
