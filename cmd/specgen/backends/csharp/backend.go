// Package csharp generates C# sources: partial classes or records with
// System.Text.Json attributes, HttpClient wrappers and ASP.NET controller
// bases.
package csharp

import (
	"specgen/cmd/specgen/compiler"
	"specgen/cmd/specgen/options"
	"specgen/cmd/specgen/spec"
)

// Backend is the C# backend. It holds no state.
type Backend struct{}

func New() *Backend { return &Backend{} }

func (*Backend) Name() string { return backendName }

// GetCompiledIncludeForType returns the namespace declaring t when it is not
// the namespace of bucket.
func (*Backend) GetCompiledIncludeForType(_ *compiler.BuildContext, bucket *compiler.BuiltFile, t *spec.Type) (string, bool) {
	f := t.Decl.File()
	if f == nil {
		return "", false
	}
	o, ok := options.Get[Options](f.Options, backendName)
	if !ok || o.Namespace == "" || o.Namespace == bucket.Namespace {
		return "", false
	}
	return o.Namespace, true
}

// Target exposes the backend to the engine.
func Target() compiler.Target {
	return compiler.NewTarget(compiler.TargetConfig[*Backend, Options]{
		Name:       backendName,
		Aliases:    []string{"cs"},
		NewBackend: New,
		Register:   Register,
		Reader:     Reader{},
		Emit:       Emit,
	})
}
