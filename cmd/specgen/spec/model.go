package spec

import (
	"fmt"
	"strings"
)

// NodeID indexes a node inside the arena of its owning File.
type NodeID int32

// noParent marks the file root in the arena.
const noParent NodeID = -1

// Kind identifies the entity stored at an arena slot.
type Kind uint8

const (
	KindFile Kind = iota
	KindDefinition
	KindProperty
	KindEnum
	KindService
	KindEndpoint
	KindConstant
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDefinition:
		return "definition"
	case KindProperty:
		return "property"
	case KindEnum:
		return "enum"
	case KindService:
		return "service"
	case KindEndpoint:
		return "endpoint"
	case KindConstant:
		return "constant"
	default:
		return "unknown"
	}
}

type nodeEntry struct {
	name   string
	parent NodeID
	kind   Kind
}

// node is embedded by every entity. It refers to its arena slot by index;
// the parent chain lives in the arena, never in the entity itself.
type node struct {
	file *File
	id   NodeID
}

// File returns the file whose arena owns the node.
func (n node) File() *File { return n.file }

// ID returns the arena index of the node.
func (n node) ID() NodeID { return n.id }

// FullName returns the breadcrumb of the node: the names of every enclosing
// node joined with ":", starting at the file.
func (n node) FullName() string {
	return n.file.fullName(n.id)
}

// OptionSet stores resolved options keyed by backend name. The values are
// opaque here; the options package reads them back through typed accessors.
type OptionSet map[string]any

// RawOptions maps a backend name to the unparsed options block found on a node.
type RawOptions map[string]map[string]any

// Block returns the raw block for backend, or nil.
func (r RawOptions) Block(backend string) map[string]any {
	if r == nil {
		return nil
	}
	return r[backend]
}

// File is one parsed input file. It is populated only while parsing; later
// phases attach resolution results and options but never change its shape.
type File struct {
	node

	Name      string
	Namespace string
	Includes  []string

	// IncludePaths holds the loaded file name of each entry of Includes,
	// in the same order. Empty when the loader did not record them.
	IncludePaths []string

	// Included reports that the file was discovered through an include
	// rather than selected as an input.
	Included bool

	RawOptions RawOptions
	Options    OptionSet

	Definitions []*Definition
	Enums       []*Enum
	Services    []*Service
	Constants   []*Constant

	arena   []nodeEntry
	members map[string]NodeID
}

// NewFile creates an empty file named name (usually the source path).
func NewFile(name, namespace string) *File {
	f := &File{
		Name:      name,
		Namespace: namespace,
		members:   make(map[string]NodeID),
	}
	f.node = node{file: f, id: f.alloc(name, noParent, KindFile)}
	return f
}

func (f *File) alloc(name string, parent NodeID, kind Kind) NodeID {
	f.arena = append(f.arena, nodeEntry{name: name, parent: parent, kind: kind})
	return NodeID(len(f.arena) - 1)
}

func (f *File) fullName(id NodeID) string {
	var parts []string
	for cur := id; cur != noParent; cur = f.arena[cur].parent {
		parts = append(parts, f.arena[cur].name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ":")
}

// Qualify returns name prefixed with the file namespace, if any.
func (f *File) Qualify(name string) string {
	if f.Namespace == "" {
		return name
	}
	return f.Namespace + "." + name
}

// claim reserves a top-level member name. Definitions and enums share one
// name space inside a file since both become types.
func (f *File) claim(name string, kind Kind) (NodeID, error) {
	if name == "" {
		return 0, fmt.Errorf("phase=parse path=%s: %w", f.Name, ErrMissingName)
	}
	key := memberKey(name, kind)
	if prev, exists := f.members[key]; exists {
		return 0, fmt.Errorf("phase=parse path=%s: %w: %s %q", f.fullName(prev), ErrDuplicateMember, kind, name)
	}
	id := f.alloc(name, f.id, kind)
	f.members[key] = id
	return id, nil
}

func memberKey(name string, kind Kind) string {
	if kind == KindDefinition || kind == KindEnum {
		return "type:" + name
	}
	return kind.String() + ":" + name
}

// AddDefinition appends a new definition in declaration order.
func (f *File) AddDefinition(name, description string) (*Definition, error) {
	if err := f.checkTypeName(name); err != nil {
		return nil, err
	}
	id, err := f.claim(name, KindDefinition)
	if err != nil {
		return nil, err
	}
	d := &Definition{node: node{file: f, id: id}, Name: name, Description: description, members: map[string]struct{}{}}
	f.Definitions = append(f.Definitions, d)
	return d, nil
}

// AddEnum appends a new enum in declaration order.
func (f *File) AddEnum(name, description string, flags bool) (*Enum, error) {
	if err := f.checkTypeName(name); err != nil {
		return nil, err
	}
	id, err := f.claim(name, KindEnum)
	if err != nil {
		return nil, err
	}
	e := &Enum{node: node{file: f, id: id}, Name: name, Description: description, Flags: flags}
	f.Enums = append(f.Enums, e)
	return e, nil
}

// AddService appends a new service in declaration order.
func (f *File) AddService(name, description string) (*Service, error) {
	id, err := f.claim(name, KindService)
	if err != nil {
		return nil, err
	}
	s := &Service{node: node{file: f, id: id}, Name: name, Description: description}
	f.Services = append(f.Services, s)
	return s, nil
}

// AddConstant appends a new constant in declaration order.
func (f *File) AddConstant(name, description, typeRef string, value *Value) (*Constant, error) {
	id, err := f.claim(name, KindConstant)
	if err != nil {
		return nil, err
	}
	c := &Constant{node: node{file: f, id: id}, Name: name, Description: description, TypeRef: typeRef, Value: value}
	f.Constants = append(f.Constants, c)
	return c, nil
}

// checkTypeName rejects definition and enum names that cannot be declared
// as types: the type grammar reserves '<', '>', ',' and '?'.
func (f *File) checkTypeName(name string) error {
	if strings.ContainsAny(name, "<>,? \t") {
		return fmt.Errorf("phase=parse path=%s: %w: %q", f.Name, ErrInvalidName, name)
	}
	return nil
}

// Definition looks up a definition by name.
func (f *File) Definition(name string) (*Definition, bool) {
	for _, d := range f.Definitions {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// Enum looks up an enum by name.
func (f *File) Enum(name string) (*Enum, bool) {
	for _, e := range f.Enums {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Service looks up a service by name.
func (f *File) Service(name string) (*Service, bool) {
	for _, s := range f.Services {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Definition is a named record type.
type Definition struct {
	node

	Name        string
	Description string
	Properties  []*Property

	RawOptions RawOptions
	Options    OptionSet

	members map[string]struct{}
}

// QualifiedName returns the namespace-qualified name of the definition.
func (d *Definition) QualifiedName() string { return d.file.Qualify(d.Name) }

// AddProperty appends a property in declaration order.
func (d *Definition) AddProperty(name, description, typeRef string, value *Value) (*Property, error) {
	if name == "" {
		return nil, fmt.Errorf("phase=parse path=%s: %w", d.FullName(), ErrMissingName)
	}
	if _, exists := d.members[name]; exists {
		return nil, fmt.Errorf("phase=parse path=%s: %w: property %q", d.FullName(), ErrDuplicateMember, name)
	}
	if strings.TrimSpace(typeRef) == "" {
		return nil, fmt.Errorf("phase=parse path=%s: %w: property %q has no type", d.FullName(), ErrMissingToken, name)
	}
	d.members[name] = struct{}{}
	p := &Property{
		node:        node{file: d.file, id: d.file.alloc(name, d.id, KindProperty)},
		Name:        name,
		Description: description,
		TypeRef:     typeRef,
		Value:       value,
	}
	d.Properties = append(d.Properties, p)
	return p, nil
}

// Property looks up a property by name.
func (d *Definition) Property(name string) (*Property, bool) {
	for _, p := range d.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Property is a named, typed field of a definition.
type Property struct {
	node

	Name        string
	Description string

	// TypeRef is the type as written, e.g. "list<Color>?".
	TypeRef string
	// Type is set by Registry.Resolve.
	Type *Type
	// Value is the literal default, nil when none was given.
	Value *Value

	RawOptions RawOptions
	Options    OptionSet
}

// EnumValue is one label of an enum.
type EnumValue struct {
	Label string
	Value int64
}

// Enum is a named set of labels mapped to integers. Flags marks bitmask
// semantics.
type Enum struct {
	node

	Name        string
	Description string
	Flags       bool
	Values      []EnumValue
}

// QualifiedName returns the namespace-qualified name of the enum.
func (e *Enum) QualifiedName() string { return e.file.Qualify(e.Name) }

// AddValue appends a label.
func (e *Enum) AddValue(label string, value int64) error {
	if label == "" {
		return fmt.Errorf("phase=parse path=%s: %w", e.FullName(), ErrMissingName)
	}
	if _, ok := e.Lookup(label); ok {
		return fmt.Errorf("phase=parse path=%s: %w: label %q", e.FullName(), ErrDuplicateMember, label)
	}
	e.Values = append(e.Values, EnumValue{Label: label, Value: value})
	return nil
}

// Lookup returns the value declared for label.
func (e *Enum) Lookup(label string) (EnumValue, bool) {
	for _, v := range e.Values {
		if v.Label == label {
			return v, true
		}
	}
	return EnumValue{}, false
}

// Service is a named group of RPC-style endpoints.
type Service struct {
	node

	Name        string
	Description string
	Endpoints   []*Endpoint

	RawOptions RawOptions
	Options    OptionSet
}

// AddEndpoint appends an endpoint in declaration order.
func (s *Service) AddEndpoint(name, method, path, requestRef, responseRef, description string) (*Endpoint, error) {
	if name == "" {
		return nil, fmt.Errorf("phase=parse path=%s: %w", s.FullName(), ErrMissingName)
	}
	for _, e := range s.Endpoints {
		if e.Name == name {
			return nil, fmt.Errorf("phase=parse path=%s: %w: endpoint %q", s.FullName(), ErrDuplicateMember, name)
		}
	}
	if method == "" {
		method = "GET"
	}
	ep := &Endpoint{
		node:        node{file: s.file, id: s.file.alloc(name, s.id, KindEndpoint)},
		Name:        name,
		Method:      strings.ToUpper(method),
		Path:        path,
		RequestRef:  requestRef,
		ResponseRef: responseRef,
		Description: description,
	}
	s.Endpoints = append(s.Endpoints, ep)
	return ep, nil
}

// Endpoint is one operation of a service.
type Endpoint struct {
	node

	Name        string
	Method      string
	Path        string
	Description string

	// RequestRef and ResponseRef are empty when the endpoint takes or
	// returns nothing.
	RequestRef   string
	ResponseRef  string
	RequestType  *Type
	ResponseType *Type
}

// Constant is a named, typed value independent of any definition.
type Constant struct {
	node

	Name        string
	Description string
	TypeRef     string
	Type        *Type
	Value       *Value
}
