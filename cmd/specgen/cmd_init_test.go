package main

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteProject(t *testing.T) {
	fsys := afero.NewMemMapFs()
	written, err := writeProject(fsys, ".", initAnswers{Backend: "php", Input: "specs", Output: "out", Namespace: "Acme"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"specgen.yaml", "specs/example.spec"}, written)

	data, err := afero.ReadFile(fsys, "specgen.yaml")
	require.NoError(t, err)
	mustContain(t, string(data), "# specgen project file", "backend: php", "namespace: Acme")

	cfg, err := readConfig(fsys, "specgen.yaml", true)
	require.NoError(t, err)
	require.NoError(t, finish(&cfg))
	res, err := runBuild(context.Background(), fsys, cfg, zerolog.Nop(), true, nil)
	require.NoError(t, err, "the example schema compiles")
	paths := make([]string, len(res.Outputs))
	for i, o := range res.Outputs {
		paths[i] = o.Path
	}
	assert.Contains(t, paths, "Acme/Example/Order.php")

	_, err = writeProject(fsys, ".", initAnswers{Backend: "php", Input: "specs", Output: "out"}, false)
	require.Error(t, err)
	mustContain(t, err.Error(), "already exists")

	_, err = writeProject(fsys, ".", initAnswers{Backend: "php", Input: "specs", Output: "out"}, true)
	require.NoError(t, err)
}

func TestWriteProject_UnrealPrefix(t *testing.T) {
	fsys := afero.NewMemMapFs()
	_, err := writeProject(fsys, "proj", initAnswers{Backend: "ue", Input: "schemas", Output: "Source", Namespace: "Acme"}, false)
	require.NoError(t, err)

	cfg, err := readConfig(fsys, "proj/specgen.yaml", true)
	require.NoError(t, err)
	assert.Equal(t, "unreal", cfg.Backend)
	assert.Equal(t, map[string]any{"prefix": "Acme"}, cfg.Options["unreal"])
	exists, _ := afero.Exists(fsys, "proj/schemas/example.spec")
	assert.True(t, exists)
}

func TestWriteProject_UnknownBackend(t *testing.T) {
	_, err := writeProject(afero.NewMemMapFs(), ".", initAnswers{Backend: "rust"}, false)
	require.ErrorIs(t, err, ErrUnknownBackend)
}
