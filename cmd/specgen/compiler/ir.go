package compiler

import (
	"regexp"

	"specgen/cmd/specgen/spec"
)

// FileKind distinguishes the artifacts an input file produces, such as a
// header (primary) and its source file (secondary).
type FileKind uint8

const (
	Primary FileKind = iota
	Secondary
)

func (k FileKind) String() string {
	if k == Secondary {
		return "secondary"
	}
	return "primary"
}

// BuiltFile is one output bucket. Builders append records to it; the
// finishing pass fills Imports. A bucket never holds text.
type BuiltFile struct {
	Name      string
	Kind      FileKind
	Namespace string

	// Imports holds raw entries added by builders until FinishImports merges
	// them with the imports computed from referenced types.
	Imports []string

	Enums       []*BuiltEnum
	Definitions []*BuiltDefinition
	Services    []*BuiltService
	Constants   []*BuiltConstant
}

// AddImport records an import a builder knows it needs.
func (f *BuiltFile) AddImport(imp string) {
	if imp != "" {
		f.Imports = append(f.Imports, imp)
	}
}

// Declares reports whether decl is emitted into this bucket.
func (f *BuiltFile) Declares(decl *spec.TypeDecl) bool {
	switch {
	case decl.Definition != nil:
		for _, d := range f.Definitions {
			if d.Source == decl.Definition {
				return true
			}
		}
	case decl.Enum != nil:
		for _, e := range f.Enums {
			if e.Source == decl.Enum {
				return true
			}
		}
	}
	return false
}

// BuiltEnum is the IR of one enum.
type BuiltEnum struct {
	Name        string
	Source      *spec.Enum
	Description string
	Flags       bool
	Values      []BuiltEnumValue
	Attributes  []string
}

type BuiltEnumValue struct {
	Name  string
	Value int64
}

// BuiltDefinition is the IR of one definition. Kind is the backend's
// declaration keyword (class, record, struct, ...).
type BuiltDefinition struct {
	Name        string
	Source      *spec.Definition
	Description string
	Kind        string
	Attributes  []string
	Properties  []*BuiltProperty
	Functions   []*BuiltFunction
}

// Function returns the first function of the given kind.
func (d *BuiltDefinition) Function(kind FunctionKind) (*BuiltFunction, bool) {
	for _, fn := range d.Functions {
		if fn.Kind == kind {
			return fn, true
		}
	}
	return nil, false
}

// BuiltProperty is the IR of one property. TypeName is already spelled in
// the backend's syntax; Type keeps the resolved type for import computation.
type BuiltProperty struct {
	Name        string
	Source      *spec.Property
	Description string
	Type        *spec.Type
	TypeName    string
	Value       CompiledValue
	Required    bool
	Attributes  []string
	// Modifiers are keywords written before the type, such as readonly.
	Modifiers []string
}

type FunctionKind uint8

const (
	FuncSerialize FunctionKind = iota
	FuncDeserialize
	FuncValidate
)

func (k FunctionKind) String() string {
	switch k {
	case FuncSerialize:
		return "serialize"
	case FuncDeserialize:
		return "deserialize"
	case FuncValidate:
		return "validate"
	default:
		return "unknown"
	}
}

// BuiltFunction is a generated member function. Fields lists the properties
// the function reads or writes, in declaration order.
type BuiltFunction struct {
	Name    string
	Kind    FunctionKind
	Params  []BuiltParam
	Returns string
	Fields  []*BuiltProperty
}

type BuiltParam struct {
	Name     string
	TypeName string
}

type ServiceRole uint8

const (
	ClientRole ServiceRole = iota
	ServerRole
)

func (r ServiceRole) String() string {
	if r == ServerRole {
		return "server"
	}
	return "client"
}

// BuiltService is the client or server IR of one service.
type BuiltService struct {
	Name        string
	Source      *spec.Service
	Role        ServiceRole
	Description string
	Attributes  []string
	Endpoints   []*BuiltEndpoint
}

// BuiltEndpoint is one operation of a built service. Request and Response
// are nil when the endpoint takes or returns nothing.
type BuiltEndpoint struct {
	Name         string
	Source       *spec.Endpoint
	Method       string
	Path         string
	PathParams   []string
	Description  string
	Request      *spec.Type
	RequestName  string
	Response     *spec.Type
	ResponseName string
}

// pathParamRe matches a route parameter such as {id}.
var pathParamRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// PathParams returns the parameter names of route in order of appearance.
func PathParams(route string) []string {
	var out []string
	for _, m := range pathParamRe.FindAllStringSubmatch(route, -1) {
		out = append(out, m[1])
	}
	return out
}

// BuiltConstant is the IR of one constant.
type BuiltConstant struct {
	Name        string
	Source      *spec.Constant
	Description string
	Type        *spec.Type
	TypeName    string
	Value       CompiledValue
}
