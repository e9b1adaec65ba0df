package spec

import (
	"fmt"
	"path"
	"sort"

	"go.uber.org/multierr"
)

// Resolve binds every property, endpoint and constant type reference of
// every added file. References already bound are left untouched, so calling
// Resolve again is a no-op. All failures of the pass are returned together.
func (r *Registry) Resolve() error {
	var errs error
	bound := 0
	for _, f := range r.files {
		sc := r.scopeOf(f)
		for _, d := range f.Definitions {
			for _, p := range d.Properties {
				if p.Type != nil {
					continue
				}
				t, err := r.resolveRef(sc, p.TypeRef, p.FullName())
				if err != nil {
					errs = multierr.Append(errs, err)
					continue
				}
				p.Type = t
				bound++
			}
		}
		for _, s := range f.Services {
			for _, ep := range s.Endpoints {
				if ep.RequestRef != "" && ep.RequestType == nil {
					t, err := r.resolveRef(sc, ep.RequestRef, ep.FullName()+":request")
					if err != nil {
						errs = multierr.Append(errs, err)
					} else {
						ep.RequestType = t
						bound++
					}
				}
				if ep.ResponseRef != "" && ep.ResponseType == nil {
					t, err := r.resolveRef(sc, ep.ResponseRef, ep.FullName()+":response")
					if err != nil {
						errs = multierr.Append(errs, err)
					} else {
						ep.ResponseType = t
						bound++
					}
				}
			}
		}
		for _, c := range f.Constants {
			if c.Type != nil {
				continue
			}
			t, err := r.resolveRef(sc, c.TypeRef, c.FullName())
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			c.Type = t
			bound++
		}
	}
	r.log.Debug().Int("bound", bound).Int("errors", len(multierr.Errors(errs))).Msg("resolved type references")
	return errs
}

// scope is the lookup context of one file: its own namespace and, in
// include order, the namespaces of the files it includes.
type scope struct {
	file      *File
	fallbacks []string
}

func (r *Registry) scopeOf(f *File) scope {
	s := scope{file: f}
	seen := map[string]struct{}{f.Namespace: {}}
	for i, inc := range f.Includes {
		other, ok := r.includedFile(f, i, inc)
		if !ok || other.Namespace == "" {
			continue
		}
		if _, dup := seen[other.Namespace]; dup {
			continue
		}
		seen[other.Namespace] = struct{}{}
		s.fallbacks = append(s.fallbacks, other.Namespace)
	}
	return s
}

// includedFile finds the i-th include of f: by the path the loader
// recorded, else relative to the including file, else by its name as
// written.
func (r *Registry) includedFile(f *File, i int, inc string) (*File, bool) {
	if i < len(f.IncludePaths) {
		if other, ok := r.fileIndex[f.IncludePaths[i]]; ok {
			return other, true
		}
	}
	if other, ok := r.fileIndex[path.Join(path.Dir(f.Name), inc)]; ok {
		return other, true
	}
	other, ok := r.fileIndex[path.Clean(inc)]
	return other, ok
}

func (r *Registry) resolveRef(s scope, raw, crumb string) (*Type, error) {
	ref, err := ParseTypeRef(raw)
	if err != nil {
		return nil, fmt.Errorf("phase=resolve path=%s: %w", crumb, err)
	}
	return r.bind(s, ref, crumb)
}

func (r *Registry) bind(s scope, ref TypeRef, crumb string) (*Type, error) {
	decl, err := r.find(s, ref.Name, crumb)
	if err != nil {
		return nil, err
	}
	if len(ref.Args) != decl.Arity {
		return nil, &TypeArityError{Name: decl.Name, Path: crumb, Want: decl.Arity, Got: len(ref.Args)}
	}
	t := &Type{Decl: decl, Optional: ref.Optional}
	for _, a := range ref.Args {
		arg, err := r.bind(s, a, crumb)
		if err != nil {
			return nil, err
		}
		t.Args = append(t.Args, arg)
	}
	return t, nil
}

// find applies the lookup order: exact name, then the owning file's
// namespace, then the namespaces of included files.
func (r *Registry) find(s scope, name, crumb string) (*TypeDecl, error) {
	if d, ok := r.types[name]; ok {
		return d, nil
	}
	if s.file.Namespace != "" {
		if d, ok := r.types[s.file.Namespace+"."+name]; ok {
			return d, nil
		}
	}
	var hits []*TypeDecl
	for _, ns := range s.fallbacks {
		if d, ok := r.types[ns+"."+name]; ok {
			hits = append(hits, d)
		}
	}
	switch len(hits) {
	case 0:
		return nil, &TypeNotFoundError{Name: name, Path: crumb, File: s.file.Name}
	case 1:
		return hits[0], nil
	default:
		names := make([]string, len(hits))
		for i, h := range hits {
			names[i] = h.Name
		}
		sort.Strings(names)
		return nil, &AmbiguousTypeError{Name: name, Path: crumb, Candidates: names}
	}
}
