package compiler

import "specgen/cmd/specgen/spec"

// Backend is one target platform. It decides which import a bucket needs to
// reference a type declared elsewhere.
type Backend interface {
	Name() string
	// GetCompiledIncludeForType returns the import bucket needs for t, or
	// false when none is required. t is never declared in bucket itself.
	GetCompiledIncludeForType(ctx *BuildContext, bucket *BuiltFile, t *spec.Type) (string, bool)
}

// Builder is the part every builder shares. Backend binds the builder to
// its backend type at compile time; Names is a semicolon separated alias
// list such as "default;class".
type Builder[B Backend] interface {
	Backend() B
	Names() string
}

type EnumBuilder[B Backend] interface {
	Builder[B]
	GetBuiltFileName(ctx *BuildContext, e *spec.Enum) string
	Build(ctx *BuildContext, e *spec.Enum) error
}

type DefinitionBuilder[B Backend] interface {
	Builder[B]
	GetBuiltFileName(ctx *BuildContext, d *spec.Definition) string
	Build(ctx *BuildContext, d *spec.Definition) error

	GetCompiledClassName(d *spec.Definition) string
	GetCompiledDefaultValueForPropertyType(t *spec.Type) CompiledValue
	GetCompiledDesiredPropertyValue(p *spec.Property) (CompiledValue, error)
	SerializeFunction(d *spec.Definition) *BuiltFunction
	DeserializeFunction(d *spec.Definition) *BuiltFunction

	// BuildConstants adds the constants of the current input file, which
	// may be empty.
	BuildConstants(ctx *BuildContext, constants []*spec.Constant) error
}

type ServiceBuilder[B Backend] interface {
	Builder[B]
	GetBuiltFileName(ctx *BuildContext, s *spec.Service) string
	Build(ctx *BuildContext, s *spec.Service) error
}

type ValidatorBuilder[B Backend] interface {
	Builder[B]
	GetBuiltFileName(ctx *BuildContext, d *spec.Definition) string
	Build(ctx *BuildContext, d *spec.Definition) error
}
