package spec

import (
	"fmt"
	"strings"
)

// TypeKind classifies a registered type.
type TypeKind uint8

const (
	TypeString TypeKind = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeDate
	TypeTimespan
	TypeAny
	TypeList
	TypeSet
	TypeMap
	TypeObject
	TypeEnum
)

var typeKindNames = map[TypeKind]string{
	TypeString:   "string",
	TypeInt:      "int",
	TypeFloat:    "float",
	TypeBool:     "bool",
	TypeDate:     "date",
	TypeTimespan: "timespan",
	TypeAny:      "any",
	TypeList:     "list",
	TypeSet:      "set",
	TypeMap:      "map",
	TypeObject:   "object",
	TypeEnum:     "enum",
}

func (k TypeKind) String() string { return typeKindNames[k] }

// IsContainer reports whether the kind takes type arguments.
func (k TypeKind) IsContainer() bool {
	return k == TypeList || k == TypeSet || k == TypeMap
}

// TypeDecl is one entry of the registry. Built-ins are singletons shared by
// every registry; user declarations point back at their definition or enum.
type TypeDecl struct {
	Name  string
	Kind  TypeKind
	Arity int

	Definition *Definition
	Enum       *Enum
}

// Builtin reports whether the declaration is one of the fixed built-ins.
func (d *TypeDecl) Builtin() bool { return d.Definition == nil && d.Enum == nil }

// File returns the owning file of a user declaration, or nil for built-ins.
func (d *TypeDecl) File() *File {
	switch {
	case d.Definition != nil:
		return d.Definition.File()
	case d.Enum != nil:
		return d.Enum.File()
	default:
		return nil
	}
}

var builtinDecls = []*TypeDecl{
	{Name: "string", Kind: TypeString},
	{Name: "int", Kind: TypeInt},
	{Name: "float", Kind: TypeFloat},
	{Name: "bool", Kind: TypeBool},
	{Name: "date", Kind: TypeDate},
	{Name: "timespan", Kind: TypeTimespan},
	{Name: "any", Kind: TypeAny},
	{Name: "list", Kind: TypeList, Arity: 1},
	{Name: "set", Kind: TypeSet, Arity: 1},
	{Name: "map", Kind: TypeMap, Arity: 2},
}

// Builtins returns the built-in declarations in registration order.
func Builtins() []*TypeDecl {
	return append([]*TypeDecl(nil), builtinDecls...)
}

// Type is a resolved type reference: a declaration, its resolved arguments
// and the optional marker.
type Type struct {
	Decl     *TypeDecl
	Args     []*Type
	Optional bool
}

// Kind returns the kind of the underlying declaration.
func (t *Type) Kind() TypeKind { return t.Decl.Kind }

// Name returns the canonical spelling, e.g. "map<string,Shared.Color>?".
func (t *Type) Name() string {
	var b strings.Builder
	b.WriteString(t.Decl.Name)
	if len(t.Args) > 0 {
		b.WriteByte('<')
		for i, a := range t.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(a.Name())
		}
		b.WriteByte('>')
	}
	if t.Optional {
		b.WriteByte('?')
	}
	return b.String()
}

func (t *Type) String() string { return t.Name() }

// Elem returns the element type of a list or set, or the value type of a map.
func (t *Type) Elem() *Type {
	switch t.Decl.Kind {
	case TypeList, TypeSet:
		return t.Args[0]
	case TypeMap:
		return t.Args[1]
	}
	return nil
}

// Walk calls fn for t and, depth first, for every type argument.
func (t *Type) Walk(fn func(*Type)) {
	if t == nil {
		return
	}
	fn(t)
	for _, a := range t.Args {
		a.Walk(fn)
	}
}

// TypeRef is a parsed, still unresolved type reference.
type TypeRef struct {
	Name     string
	Args     []TypeRef
	Optional bool
}

func (r TypeRef) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.Args) > 0 {
		b.WriteByte('<')
		for i, a := range r.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(a.String())
		}
		b.WriteByte('>')
	}
	if r.Optional {
		b.WriteByte('?')
	}
	return b.String()
}

// maxTypeNestingDepth bounds recursion for inputs like "list<list<list<...".
const maxTypeNestingDepth = 16

// ParseTypeRef parses a reference such as "string", "int?", "list<Color>"
// or "map<string, list<int>>?".
func ParseTypeRef(s string) (TypeRef, error) {
	ref, err := parseTypeRef(s, 0)
	if err != nil {
		return TypeRef{}, fmt.Errorf("%w: %q: %v", ErrInvalidTypeRef, s, err)
	}
	return ref, nil
}

func parseTypeRef(s string, depth int) (TypeRef, error) {
	if depth > maxTypeNestingDepth {
		return TypeRef{}, fmt.Errorf("type nesting too deep (max %d)", maxTypeNestingDepth)
	}
	s = strings.TrimSpace(s)
	var ref TypeRef
	if rest, ok := strings.CutSuffix(s, "?"); ok {
		ref.Optional = true
		s = strings.TrimSpace(rest)
	}
	if s == "" {
		return TypeRef{}, fmt.Errorf("empty type")
	}

	open := strings.IndexByte(s, '<')
	if open < 0 {
		if strings.ContainsAny(s, ">,?") {
			return TypeRef{}, fmt.Errorf("unexpected character in %q", s)
		}
		ref.Name = s
		return ref, nil
	}
	if !strings.HasSuffix(s, ">") {
		return TypeRef{}, fmt.Errorf("missing closing '>'")
	}
	ref.Name = strings.TrimSpace(s[:open])
	if ref.Name == "" {
		return TypeRef{}, fmt.Errorf("missing container name")
	}
	args, err := splitTypeArgs(s[open+1 : len(s)-1])
	if err != nil {
		return TypeRef{}, err
	}
	for _, a := range args {
		arg, err := parseTypeRef(a, depth+1)
		if err != nil {
			return TypeRef{}, err
		}
		ref.Args = append(ref.Args, arg)
	}
	return ref, nil
}

// splitTypeArgs splits "K, list<V>" on top-level commas.
func splitTypeArgs(s string) ([]string, error) {
	var out []string
	level, start := 0, 0
	for i, r := range s {
		switch r {
		case '<':
			level++
		case '>':
			level--
			if level < 0 {
				return nil, fmt.Errorf("unbalanced '>'")
			}
		case ',':
			if level == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	if level != 0 {
		return nil, fmt.Errorf("unbalanced '<'")
	}
	out = append(out, s[start:])
	for _, a := range out {
		if strings.TrimSpace(a) == "" {
			return nil, fmt.Errorf("empty type argument")
		}
	}
	return out, nil
}
