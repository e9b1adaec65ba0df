package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"specgen/cmd/specgen/backends/csharp"
	"specgen/cmd/specgen/backends/php"
	"specgen/cmd/specgen/backends/unreal"
	"specgen/cmd/specgen/compiler"
)

var ErrUnknownBackend = errors.New("unknown backend")

// targets is the registration table of every backend the CLI can drive.
var targets = []compiler.Target{
	csharp.Target(),
	php.Target(),
	unreal.Target(),
}

// lookupTarget finds a backend by name or alias, ignoring case.
func lookupTarget(name string) (compiler.Target, error) {
	for _, t := range targets {
		if strings.EqualFold(t.Name(), name) {
			return t, nil
		}
		for _, a := range t.Aliases() {
			if strings.EqualFold(a, name) {
				return t, nil
			}
		}
	}
	return nil, fmt.Errorf("%w %q\navailable: %s", ErrUnknownBackend, name, strings.Join(targetNames(), ", "))
}

func targetNames() []string {
	return lo.Map(targets, func(t compiler.Target, _ int) string { return t.Name() })
}

// globalOptions returns the options block of t from the project config.
// Blocks keyed by an alias are accepted too; the canonical name wins.
func globalOptions(cfg Config, t compiler.Target) map[string]any {
	if raw, ok := cfg.Options[t.Name()]; ok {
		return raw
	}
	for _, a := range t.Aliases() {
		if raw, ok := cfg.Options[a]; ok {
			return raw
		}
	}
	return nil
}
