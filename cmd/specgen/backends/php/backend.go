// Package php generates PHP 8.1 sources laid out for PSR-4 autoloading:
// backed enums, final model classes, PSR-18 clients and abstract
// controllers.
package php

import (
	"specgen/cmd/specgen/compiler"
	"specgen/cmd/specgen/spec"
)

type Backend struct{}

func New() *Backend { return &Backend{} }

func (*Backend) Name() string { return backendName }

// GetCompiledIncludeForType returns the use statement target for t when it
// lives in another namespace. Classes of the same namespace are found by the
// autoloader without one.
func (*Backend) GetCompiledIncludeForType(_ *compiler.BuildContext, bucket *compiler.BuiltFile, t *spec.Type) (string, bool) {
	f := t.Decl.File()
	if f == nil {
		return "", false
	}
	ns := fileOptions(f).Namespace
	if ns == bucket.Namespace {
		return "", false
	}
	return qualify(ns, declName(t.Decl)), true
}

func Target() compiler.Target {
	return compiler.NewTarget(compiler.TargetConfig[*Backend, Options]{
		Name:       backendName,
		NewBackend: New,
		Register:   Register,
		Reader:     Reader{},
		Emit:       Emit,
	})
}
