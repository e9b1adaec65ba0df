package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"specgen/cmd/specgen/compiler"
)

var flagDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [input ...]",
	Short: "Rebuild whenever a schema file changes",
	Long: "Build once, then watch the directories of every input and included file\n" +
		"and run the whole pipeline again after each change. A failed rebuild is\n" +
		"reported and leaves the previous output in place.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd, args)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return watch(ctx, cfg, log, cmd.ErrOrStderr())
	},
}

func init() {
	addProjectFlags(watchCmd)
	watchCmd.Flags().DurationVar(&flagDebounce, "debounce", 200*time.Millisecond, "quiet period before a rebuild")
}

func watch(ctx context.Context, cfg Config, log zerolog.Logger, w io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]bool)
	loaded := make(map[string]bool)
	rebuild := func() {
		start := time.Now()
		res, err := runBuild(ctx, appFs, cfg, log, false, nil)
		if err != nil {
			fmt.Fprintf(w, "%s %v\n", styleErr.Render("✗"), err)
		} else {
			printSummary(w, cfg.Backend, res, time.Since(start))
			for _, f := range res.Files {
				loaded[filepath.Clean(filepath.FromSlash(f.Name))] = true
			}
		}
		// Editors replace files on save, so directories are watched rather
		// than files.
		for _, dir := range watchDirs(cfg, res) {
			if watched[dir] {
				continue
			}
			if err := watcher.Add(dir); err != nil {
				log.Warn().Err(err).Str("dir", dir).Msg("cannot watch directory")
				continue
			}
			watched[dir] = true
			log.Debug().Str("dir", dir).Msg("watching")
		}
	}
	rebuild()

	var timer <-chan time.Time
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(cfg, loaded, event) {
				continue
			}
			log.Debug().Str("event", event.Op.String()).Str("file", event.Name).Msg("schema changed")
			timer = time.After(flagDebounce)

		case <-timer:
			timer = nil
			rebuild()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("file watcher error")

		case <-ctx.Done():
			return nil
		}
	}
}

// watchDirs lists the input directories plus the directory of every file
// the last run loaded.
func watchDirs(cfg Config, res *compiler.Result) []string {
	var dirs []string
	for _, in := range cfg.Input {
		if fi, err := appFs.Stat(in); err == nil && fi.IsDir() {
			dirs = append(dirs, filepath.Clean(in))
		} else {
			dirs = append(dirs, filepath.Dir(in))
		}
	}
	if res != nil {
		for _, f := range res.Files {
			dirs = append(dirs, filepath.Dir(filepath.FromSlash(f.Name)))
		}
	}
	return dirs
}

// relevant reports whether event touches a schema file: one the last run
// loaded or one matching the include patterns. Chmod events and files under
// the output directory are ignored.
func relevant(cfg Config, loaded map[string]bool, event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Clean(event.Name)
	if out := filepath.Clean(cfg.Output); out != "." {
		if rel, err := filepath.Rel(out, name); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return false
		}
	}
	if loaded[name] {
		return true
	}
	base := filepath.Base(name)
	for _, pat := range cfg.Include {
		if ok, _ := filepath.Match(pat, base); ok {
			return true
		}
	}
	return false
}
