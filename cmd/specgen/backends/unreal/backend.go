// Package unreal generates Unreal Engine C++: UENUMs and USTRUCTs with
// JSON helpers in a header/source pair per input file, plus FHttpModule
// clients.
package unreal

import (
	"specgen/cmd/specgen/compiler"
	"specgen/cmd/specgen/spec"
)

type Backend struct{}

func New() *Backend { return &Backend{} }

func (*Backend) Name() string { return backendName }

// GetCompiledIncludeForType returns the header declaring t. Sources include
// their own header first, which already pulls in everything they reference.
func (*Backend) GetCompiledIncludeForType(_ *compiler.BuildContext, bucket *compiler.BuiltFile, t *spec.Type) (string, bool) {
	if bucket.Kind == compiler.Secondary {
		return "", false
	}
	f := t.Decl.File()
	if f == nil {
		return "", false
	}
	return headerName(f), true
}

func Target() compiler.Target {
	return compiler.NewTarget(compiler.TargetConfig[*Backend, Options]{
		Name:       backendName,
		Aliases:    []string{"ue"},
		NewBackend: New,
		Register:   Register,
		Reader:     Reader{},
		Emit:       Emit,
	})
}
