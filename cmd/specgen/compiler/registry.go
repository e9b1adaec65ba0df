package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

var ErrBuilderNotFound = errors.New("builder not found")

// Role is one of the five builder slots of a compiler.
type Role string

const (
	RoleEnum       Role = "enum"
	RoleDefinition Role = "definition"
	RoleClient     Role = "client"
	RoleServer     Role = "server"
	RoleValidator  Role = "validator"
)

// Roles lists the slots in build order.
var Roles = []Role{RoleEnum, RoleDefinition, RoleClient, RoleServer, RoleValidator}

// Mandatory reports whether a compiler cannot work without this slot.
func (r Role) Mandatory() bool { return r == RoleEnum || r == RoleDefinition }

// BuilderNotFoundError reports a requested builder name that no candidate of
// the role advertises.
type BuilderNotFoundError struct {
	Backend   string
	Role      Role
	Name      string
	Available []string
}

func (e *BuilderNotFoundError) Error() string {
	avail := "none"
	if len(e.Available) > 0 {
		avail = strings.Join(e.Available, ", ")
	}
	return fmt.Sprintf("phase=select path=%s:%s: %v: %q (available: %s)", e.Backend, e.Role, ErrBuilderNotFound, e.Name, avail)
}

func (e *BuilderNotFoundError) Unwrap() error { return ErrBuilderNotFound }

// Registry is the registration table of one backend type. Backends fill it
// at startup; the compiler picks one candidate per role from it.
type Registry[B Backend] struct {
	backend string

	enums       []EnumBuilder[B]
	definitions []DefinitionBuilder[B]
	clients     []ServiceBuilder[B]
	servers     []ServiceBuilder[B]
	validators  []ValidatorBuilder[B]
}

func NewRegistry[B Backend](backend string) *Registry[B] {
	return &Registry[B]{backend: backend}
}

func (r *Registry[B]) RegisterEnum(b ...EnumBuilder[B])             { r.enums = append(r.enums, b...) }
func (r *Registry[B]) RegisterDefinition(b ...DefinitionBuilder[B]) { r.definitions = append(r.definitions, b...) }
func (r *Registry[B]) RegisterClient(b ...ServiceBuilder[B])        { r.clients = append(r.clients, b...) }
func (r *Registry[B]) RegisterServer(b ...ServiceBuilder[B])        { r.servers = append(r.servers, b...) }
func (r *Registry[B]) RegisterValidator(b ...ValidatorBuilder[B])   { r.validators = append(r.validators, b...) }

// Aliases returns, per role, the alias list of every registered candidate in
// registration order.
func (r *Registry[B]) Aliases() map[Role][]string {
	return map[Role][]string{
		RoleEnum:       namesOf(r.enums),
		RoleDefinition: namesOf(r.definitions),
		RoleClient:     namesOf(r.clients),
		RoleServer:     namesOf(r.servers),
		RoleValidator:  namesOf(r.validators),
	}
}

func namesOf[T interface{ Names() string }](cands []T) []string {
	return lo.Map(cands, func(c T, _ int) string { return c.Names() })
}

// pick returns the first candidate whose alias list contains name. An empty
// name selects "default" for mandatory roles and nothing for optional ones.
func pick[T interface{ Names() string }](backend string, role Role, name string, cands []T) (T, bool, error) {
	var zero T
	name = strings.TrimSpace(name)
	if name == "" {
		if !role.Mandatory() {
			return zero, false, nil
		}
		name = "default"
	}
	for _, c := range cands {
		if hasAlias(c.Names(), name) {
			return c, true, nil
		}
	}
	return zero, false, &BuilderNotFoundError{
		Backend:   backend,
		Role:      role,
		Name:      name,
		Available: lo.Uniq(lo.FlatMap(cands, func(c T, _ int) []string { return splitAliases(c.Names()) })),
	}
}

func hasAlias(names, name string) bool {
	return lo.ContainsBy(splitAliases(names), func(a string) bool { return strings.EqualFold(a, name) })
}

func splitAliases(names string) []string {
	var out []string
	for _, a := range strings.Split(names, ";") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
