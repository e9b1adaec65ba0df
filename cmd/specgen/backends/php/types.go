package php

import (
	"specgen/cmd/specgen/naming"
	"specgen/cmd/specgen/spec"
)

var primitiveNames = map[spec.TypeKind]string{
	spec.TypeString:   "string",
	spec.TypeInt:      "int",
	spec.TypeFloat:    "float",
	spec.TypeBool:     "bool",
	spec.TypeDate:     `\DateTimeImmutable`,
	spec.TypeTimespan: `\DateInterval`,
	spec.TypeAny:      "mixed",
	spec.TypeList:     "array",
	spec.TypeSet:      "array",
	spec.TypeMap:      "array",
}

// typeName is the native type declaration of t. Flags enums are plain ints
// since PHP enums cannot be combined.
func typeName(t *spec.Type) string {
	var s string
	switch t.Kind() {
	case spec.TypeObject:
		s = className(t.Decl.Definition)
	case spec.TypeEnum:
		s = enumName(t.Decl.Enum)
		if t.Decl.Enum.Flags {
			s = "int"
		}
	case spec.TypeAny:
		return "mixed"
	default:
		s = primitiveNames[t.Kind()]
	}
	if t.Optional {
		s = "?" + s
	}
	return s
}

// docType is the phpdoc spelling of container types, or "" when the native
// declaration says it all.
func docType(t *spec.Type) string {
	if !t.Kind().IsContainer() {
		return ""
	}
	return elemDoc(t)
}

func elemDoc(t *spec.Type) string {
	var s string
	switch t.Kind() {
	case spec.TypeList, spec.TypeSet:
		s = "list<" + elemDoc(t.Args[0]) + ">"
	case spec.TypeMap:
		s = "array<" + elemDoc(t.Args[0]) + ", " + elemDoc(t.Args[1]) + ">"
	default:
		s = typeName(t)
		if t.Optional && s != "mixed" {
			return s[1:] + "|null"
		}
	}
	if t.Optional {
		s += "|null"
	}
	return s
}

func className(d *spec.Definition) string { return naming.Pascal(d.Name) }
func enumName(e *spec.Enum) string        { return naming.Pascal(e.Name) }

// declName is the class name a user declaration is emitted under.
func declName(decl *spec.TypeDecl) string {
	if decl.Enum != nil {
		return enumName(decl.Enum)
	}
	return className(decl.Definition)
}

func qualify(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + `\` + name
}
