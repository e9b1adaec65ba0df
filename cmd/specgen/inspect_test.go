package main

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inspectFixture(t *testing.T) ([]typeEntry, *strings.Builder) {
	t.Helper()
	fsys := writeFiles(t, map[string]string{
		"main.spec":   mainSpec,
		"common.spec": commonSpec,
		"dup.spec":    "namespace: Other\nenums:\n  Color: [Cyan]\n",
	})
	cfg := defaultConfig()
	cfg.Input = []string{"main.spec", "dup.spec"}
	res, err := runBuild(context.Background(), fsys, cfg, zerolog.Nop(), true, nil)
	require.NoError(t, err)

	var b strings.Builder
	describeFiles(&b, res.Files, "csharp")
	return collectTypes(res.Files), &b
}

func TestCollectTypes(t *testing.T) {
	entries, _ := inspectFixture(t)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	assert.Equal(t, []string{"Other.Color", "Shared.Color", "Shop.Pixel"}, names)
	assert.Equal(t, "definition", entries[2].Kind)
}

func TestFindType(t *testing.T) {
	entries, _ := inspectFixture(t)

	e, ok := findType(entries, "Pixel")
	require.True(t, ok)
	assert.Equal(t, "Shop.Pixel", e.Name)

	_, ok = findType(entries, "Color")
	assert.False(t, ok, "bare name matching two types")

	e, ok = findType(entries, "Other.Color")
	require.True(t, ok)
	assert.Equal(t, "dup.spec", e.File.Name)
}

func TestDescribeFiles(t *testing.T) {
	_, out := inspectFixture(t)
	got := out.String()
	mustContain(t, got,
		"file main.spec namespace Shop\n  includes common.spec\n",
		"  definition Shop.Pixel (main.spec)\n    A pixel\n",
		"Shared.Color",
		`= "Blue"`,
		"  service Shop.Pixels\n    get GET /pixels/{id} -> Shop.Pixel\n",
		"file common.spec namespace Shared (included)\n",
		"  enum Shared.Color (common.spec)\n",
	)
	assert.Contains(t, got, "options {Namespace:Shop", "options of the selected backend are shown")
}

func TestTypeDetail(t *testing.T) {
	entries, _ := inspectFixture(t)
	e, _ := findType(entries, "Other.Color")
	assert.Equal(t, "enum Other.Color (dup.spec)\n  Cyan  = 0", typeDetail(e, "csharp"))
}
