package unreal

import (
	"path"
	"strings"

	"specgen/cmd/specgen/naming"
	"specgen/cmd/specgen/spec"
)

var primitiveNames = map[spec.TypeKind]string{
	spec.TypeString:   "FString",
	spec.TypeInt:      "int64",
	spec.TypeFloat:    "double",
	spec.TypeBool:     "bool",
	spec.TypeDate:     "FDateTime",
	spec.TypeTimespan: "FTimespan",
	spec.TypeAny:      "FJsonObjectWrapper",
}

// typeName spells t in C++. Reflected properties cannot be optional, so the
// optional marker is dropped and null reads back as the default value.
func typeName(t *spec.Type) string {
	if s, ok := primitiveNames[t.Kind()]; ok {
		return s
	}
	switch t.Kind() {
	case spec.TypeList:
		return "TArray<" + typeName(t.Args[0]) + ">"
	case spec.TypeSet:
		return "TSet<" + typeName(t.Args[0]) + ">"
	case spec.TypeMap:
		return "TMap<" + typeName(t.Args[0]) + ", " + typeName(t.Args[1]) + ">"
	case spec.TypeObject:
		return structName(t.Decl.Definition)
	case spec.TypeEnum:
		return enumName(t.Decl.Enum)
	}
	return "FString"
}

// Type names carry the prefix of the declaring file so every file spells a
// shared type the same way.
func structName(d *spec.Definition) string {
	return "F" + fileOptions(d.File()).Prefix + naming.Pascal(d.Name)
}

func enumName(e *spec.Enum) string {
	return "E" + fileOptions(e.File()).Prefix + naming.Pascal(e.Name)
}

func serviceName(s *spec.Service) string {
	return "F" + fileOptions(s.File()).Prefix + naming.Pascal(s.Name) + "Client"
}

// stem is the Pascal cased base name of an input file, shared by its
// header and source.
func stem(f *spec.File) string {
	base := path.Base(f.Name)
	return naming.Pascal(strings.TrimSuffix(base, path.Ext(base)))
}

func headerName(f *spec.File) string { return stem(f) + ".h" }
func sourceName(f *spec.File) string { return stem(f) + ".cpp" }

// typeIncludes lists engine headers t needs beyond CoreMinimal.
func typeIncludes(t *spec.Type) []string {
	var out []string
	t.Walk(func(t *spec.Type) {
		if t.Kind() == spec.TypeAny {
			out = append(out, "JsonObjectWrapper.h")
		}
	})
	return out
}
