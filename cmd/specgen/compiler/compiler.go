// Package compiler turns resolved spec files into per-backend IR.
//
// A Compiler is bound to one backend type B. Its five builder slots are
// picked by alias from a Registry[B] when the compiler is created, so a bad
// builder name fails before any input is touched. Compile then runs the
// builders over every input file in declaration order and finishes the
// import lists of the resulting buckets.
package compiler

import (
	"github.com/rs/zerolog"

	"specgen/cmd/specgen/spec"
)

// Selection names the builder requested for each role. Empty optional
// names leave the slot empty; empty mandatory names select "default".
type Selection struct {
	Enum          string `yaml:"enum,omitempty"`
	Definition    string `yaml:"definition,omitempty"`
	ClientService string `yaml:"client,omitempty"`
	ServerService string `yaml:"server,omitempty"`
	Validator     string `yaml:"validator,omitempty"`
}

// Compiler runs the selected builders of one backend.
type Compiler[B Backend] struct {
	backend B
	log     zerolog.Logger

	enum       EnumBuilder[B]
	definition DefinitionBuilder[B]
	client     ServiceBuilder[B]
	server     ServiceBuilder[B]
	validator  ValidatorBuilder[B]
}

// New selects one builder per role from reg.
func New[B Backend](backend B, reg *Registry[B], sel Selection, log zerolog.Logger) (*Compiler[B], error) {
	c := &Compiler[B]{
		backend: backend,
		log:     log.With().Str("backend", backend.Name()).Logger(),
	}
	var err error
	if c.enum, _, err = pick(backend.Name(), RoleEnum, sel.Enum, reg.enums); err != nil {
		return nil, err
	}
	if c.definition, _, err = pick(backend.Name(), RoleDefinition, sel.Definition, reg.definitions); err != nil {
		return nil, err
	}
	if c.client, _, err = pick(backend.Name(), RoleClient, sel.ClientService, reg.clients); err != nil {
		return nil, err
	}
	if c.server, _, err = pick(backend.Name(), RoleServer, sel.ServerService, reg.servers); err != nil {
		return nil, err
	}
	if c.validator, _, err = pick(backend.Name(), RoleValidator, sel.Validator, reg.validators); err != nil {
		return nil, err
	}
	c.log.Debug().
		Str("enum", c.enum.Names()).
		Str("definition", c.definition.Names()).
		Bool("client", c.client != nil).
		Bool("server", c.server != nil).
		Bool("validator", c.validator != nil).
		Msg("builders selected")
	return c, nil
}

// Backend returns the backend the compiler is bound to.
func (c *Compiler[B]) Backend() B { return c.backend }

// Compile builds every file in order and returns one context per file.
func (c *Compiler[B]) Compile(files []*spec.File) ([]*BuildContext, error) {
	out := make([]*BuildContext, 0, len(files))
	for _, f := range files {
		ctx, err := c.CompileFile(f)
		if err != nil {
			return nil, err
		}
		out = append(out, ctx)
	}
	return out, nil
}

// CompileFile builds one input file: enums, definitions with their
// validators, constants, then client and server services.
func (c *Compiler[B]) CompileFile(f *spec.File) (*BuildContext, error) {
	ctx := NewBuildContext(f, c.log.With().Str("file", f.Name).Logger())

	for _, e := range f.Enums {
		if err := c.enum.Build(ctx, e); err != nil {
			return nil, err
		}
	}
	for _, d := range f.Definitions {
		if err := c.definition.Build(ctx, d); err != nil {
			return nil, err
		}
		if c.validator != nil {
			if err := c.validator.Build(ctx, d); err != nil {
				return nil, err
			}
		}
	}
	if len(f.Constants) > 0 {
		if err := c.definition.BuildConstants(ctx, f.Constants); err != nil {
			return nil, err
		}
	}
	for _, s := range f.Services {
		if c.client != nil {
			if err := c.client.Build(ctx, s); err != nil {
				return nil, err
			}
		}
		if c.server != nil {
			if err := c.server.Build(ctx, s); err != nil {
				return nil, err
			}
		}
	}

	FinishImports(ctx, c.backend)
	ctx.Log.Debug().Int("buckets", len(ctx.Files)).Msg("file compiled")
	return ctx, nil
}
