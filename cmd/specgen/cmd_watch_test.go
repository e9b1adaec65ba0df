package main

import (
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
)

func TestRelevant(t *testing.T) {
	cfg := defaultConfig()
	loaded := map[string]bool{"specs/shared.yaml": true}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"spec file written", fsnotify.Event{Name: "specs/main.spec", Op: fsnotify.Write}, true},
		{"yaml spec created", fsnotify.Event{Name: "specs/x.spec.yaml", Op: fsnotify.Create}, true},
		{"loaded include", fsnotify.Event{Name: "specs/shared.yaml", Op: fsnotify.Write}, true},
		{"chmod only", fsnotify.Event{Name: "specs/main.spec", Op: fsnotify.Chmod}, false},
		{"unrelated file", fsnotify.Event{Name: "specs/readme.md", Op: fsnotify.Write}, false},
		{"generated output", fsnotify.Event{Name: "gen/main.spec", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relevant(cfg, loaded, tt.event))
		})
	}

	cfg.Output = "."
	assert.True(t, relevant(cfg, loaded, fsnotify.Event{Name: "main.spec", Op: fsnotify.Write}), "output at the root does not mask inputs")
}
