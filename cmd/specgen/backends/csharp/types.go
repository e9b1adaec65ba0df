package csharp

import (
	"specgen/cmd/specgen/naming"
	"specgen/cmd/specgen/spec"
)

var primitiveNames = map[spec.TypeKind]string{
	spec.TypeString:   "string",
	spec.TypeInt:      "long",
	spec.TypeFloat:    "double",
	spec.TypeBool:     "bool",
	spec.TypeDate:     "DateTime",
	spec.TypeTimespan: "TimeSpan",
	spec.TypeAny:      "object",
}

// typeName spells t in C#. Optional types get a "?" when nullable
// annotations are enabled.
func typeName(t *spec.Type, o Options) string {
	s := bareTypeName(t, o)
	if t.Optional && o.Nullable {
		s += "?"
	}
	return s
}

func bareTypeName(t *spec.Type, o Options) string {
	if s, ok := primitiveNames[t.Kind()]; ok {
		return s
	}
	switch t.Kind() {
	case spec.TypeList:
		return collection(o, "List", "ImmutableList") + "<" + typeName(t.Args[0], o) + ">"
	case spec.TypeSet:
		return collection(o, "HashSet", "ImmutableHashSet") + "<" + typeName(t.Args[0], o) + ">"
	case spec.TypeMap:
		return collection(o, "Dictionary", "ImmutableDictionary") + "<" + typeName(t.Args[0], o) + ", " + typeName(t.Args[1], o) + ">"
	case spec.TypeObject:
		return className(t.Decl.Definition)
	case spec.TypeEnum:
		return enumName(t.Decl.Enum)
	}
	return "object"
}

func collection(o Options, mutable, immutable string) string {
	if o.ImmutableCollections {
		return immutable
	}
	return mutable
}

func className(d *spec.Definition) string { return naming.Pascal(d.Name) }
func enumName(e *spec.Enum) string        { return naming.Pascal(e.Name) }

// typeImports lists the System namespaces t needs.
func typeImports(t *spec.Type, o Options) []string {
	var out []string
	t.Walk(func(t *spec.Type) {
		switch t.Kind() {
		case spec.TypeDate, spec.TypeTimespan:
			out = append(out, "System")
		case spec.TypeList, spec.TypeSet, spec.TypeMap:
			out = append(out, collection(o, "System.Collections.Generic", "System.Collections.Immutable"))
		}
	})
	return out
}

// isValueType reports whether a non-optional t can never be null.
func isValueType(t *spec.Type) bool {
	switch t.Kind() {
	case spec.TypeInt, spec.TypeFloat, spec.TypeBool, spec.TypeDate, spec.TypeTimespan, spec.TypeEnum:
		return true
	}
	return false
}
