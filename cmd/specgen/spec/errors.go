package spec

import (
	"errors"
	"fmt"
)

var (
	ErrMissingName       = errors.New("missing name")
	ErrInvalidName       = errors.New("invalid name")
	ErrMissingToken      = errors.New("missing required token")
	ErrDuplicateMember   = errors.New("duplicate member name")
	ErrFileAlreadyAdded  = errors.New("file already added")
	ErrTypeAlreadyExists = errors.New("type already exists")
	ErrUnknownType       = errors.New("unknown type")
	ErrAmbiguousType     = errors.New("ambiguous type")
	ErrTypeArity         = errors.New("wrong number of type arguments")
	ErrInvalidTypeRef    = errors.New("invalid type reference")
	ErrTypeMismatch      = errors.New("value does not match property type")
	ErrUnsupportedValue  = errors.New("unsupported value")
)

// FileAlreadyAddedError is returned when the same file is added to a
// registry twice.
type FileAlreadyAddedError struct {
	File string
}

func (e *FileAlreadyAddedError) Error() string {
	return fmt.Sprintf("phase=register path=%s: %v", e.File, ErrFileAlreadyAdded)
}

func (e *FileAlreadyAddedError) Unwrap() error { return ErrFileAlreadyAdded }

// DuplicateTypeError reports a type name declared twice. Existing and
// Conflicting name the owning files; Existing is "<builtin>" for built-ins.
type DuplicateTypeError struct {
	Name        string
	Existing    string
	Conflicting string
}

func (e *DuplicateTypeError) Error() string {
	return fmt.Sprintf("phase=register path=%s: %v: %s (declared in %s, redeclared in %s)",
		e.Conflicting, ErrTypeAlreadyExists, e.Name, e.Existing, e.Conflicting)
}

func (e *DuplicateTypeError) Unwrap() error { return ErrTypeAlreadyExists }

// TypeNotFoundError reports a type reference that matched no registered type.
// Path is the breadcrumb of the referencing node.
type TypeNotFoundError struct {
	Name string
	Path string
	File string
}

func (e *TypeNotFoundError) Error() string {
	return fmt.Sprintf("phase=resolve path=%s: %v: %s (file %s)", e.Path, ErrUnknownType, e.Name, e.File)
}

func (e *TypeNotFoundError) Unwrap() error { return ErrUnknownType }

// AmbiguousTypeError reports a bare reference matching types of several
// included namespaces.
type AmbiguousTypeError struct {
	Name       string
	Path       string
	Candidates []string
}

func (e *AmbiguousTypeError) Error() string {
	return fmt.Sprintf("phase=resolve path=%s: %v: %s matches %v", e.Path, ErrAmbiguousType, e.Name, e.Candidates)
}

func (e *AmbiguousTypeError) Unwrap() error { return ErrAmbiguousType }

// TypeArityError reports a container used with the wrong number of type
// arguments, or a scalar used with arguments.
type TypeArityError struct {
	Name string
	Path string
	Want int
	Got  int
}

func (e *TypeArityError) Error() string {
	return fmt.Sprintf("phase=resolve path=%s: %v: %s takes %d, got %d", e.Path, ErrTypeArity, e.Name, e.Want, e.Got)
}

func (e *TypeArityError) Unwrap() error { return ErrTypeArity }

// PropertyTypeMismatchError reports a literal incompatible with the resolved
// type of its property.
type PropertyTypeMismatchError struct {
	Path  string
	Type  string
	Value string
}

func (e *PropertyTypeMismatchError) Error() string {
	return fmt.Sprintf("phase=compile path=%s: %v: %s literal for %s", e.Path, ErrTypeMismatch, e.Value, e.Type)
}

func (e *PropertyTypeMismatchError) Unwrap() error { return ErrTypeMismatch }

// UnsupportedValueError reports a literal shape that cannot be compiled,
// such as map or nested object literals.
type UnsupportedValueError struct {
	Path string
	Kind ValueKind
}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("phase=compile path=%s: %v: %s literals are not supported", e.Path, ErrUnsupportedValue, e.Kind)
}

func (e *UnsupportedValueError) Unwrap() error { return ErrUnsupportedValue }
