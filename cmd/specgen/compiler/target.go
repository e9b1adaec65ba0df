package compiler

import (
	"fmt"

	"github.com/rs/zerolog"

	"specgen/cmd/specgen/options"
	"specgen/cmd/specgen/spec"
)

// Output is one emitted file, Path being relative to the output directory.
type Output struct {
	Path string
	Kind FileKind
	Data []byte
}

// Target hides the backend and options types of one backend so the engine
// and the CLI can drive every backend the same way.
type Target interface {
	Name() string
	Aliases() []string
	Builders() map[Role][]string
	NewSession(sel Selection, log zerolog.Logger) (Session, error)
}

// Session is one run of a Target with its builders already selected.
type Session interface {
	AttachOptions(globalRaw map[string]any, files []*spec.File) error
	Compile(files []*spec.File) ([]*BuildContext, error)
	Emit(ctx *BuildContext) ([]Output, error)
}

// TargetConfig describes a backend to NewTarget.
type TargetConfig[B Backend, O any] struct {
	Name    string
	Aliases []string

	NewBackend func() B
	Register   func(reg *Registry[B], backend B)
	Reader     options.Reader[O]
	Emit       func(ctx *BuildContext, f *BuiltFile) ([]byte, error)
}

// NewTarget adapts a backend to the Target interface.
func NewTarget[B Backend, O any](cfg TargetConfig[B, O]) Target {
	return &target[B, O]{cfg: cfg}
}

type target[B Backend, O any] struct {
	cfg TargetConfig[B, O]
}

func (t *target[B, O]) Name() string      { return t.cfg.Name }
func (t *target[B, O]) Aliases() []string { return t.cfg.Aliases }

func (t *target[B, O]) Builders() map[Role][]string {
	backend := t.cfg.NewBackend()
	reg := NewRegistry[B](t.cfg.Name)
	t.cfg.Register(reg, backend)
	return reg.Aliases()
}

func (t *target[B, O]) NewSession(sel Selection, log zerolog.Logger) (Session, error) {
	backend := t.cfg.NewBackend()
	reg := NewRegistry[B](t.cfg.Name)
	t.cfg.Register(reg, backend)
	c, err := New(backend, reg, sel, log)
	if err != nil {
		return nil, err
	}
	return &session[B, O]{cfg: t.cfg, compiler: c}, nil
}

type session[B Backend, O any] struct {
	cfg      TargetConfig[B, O]
	compiler *Compiler[B]
}

func (s *session[B, O]) AttachOptions(globalRaw map[string]any, files []*spec.File) error {
	return options.Attach[O](s.cfg.Name, s.cfg.Reader, globalRaw, files...)
}

func (s *session[B, O]) Compile(files []*spec.File) ([]*BuildContext, error) {
	return s.compiler.Compile(files)
}

func (s *session[B, O]) Emit(ctx *BuildContext) ([]Output, error) {
	out := make([]Output, 0, len(ctx.Files))
	for _, f := range ctx.Files {
		data, err := s.cfg.Emit(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("phase=emit path=%s: %s: %w", ctx.Source.Name, f.Name, err)
		}
		out = append(out, Output{Path: f.Name, Kind: f.Kind, Data: data})
	}
	return out, nil
}
