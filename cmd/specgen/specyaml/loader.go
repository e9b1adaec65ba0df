package specyaml

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"specgen/cmd/specgen/spec"
)

var ErrIncludeNotFound = errors.New("included file not found")

// defaultParallelism bounds concurrent file reads.
const defaultParallelism = 8

// Loader reads spec files from a file system. Inputs are parsed in
// parallel; includes are followed wave by wave until no new file shows up.
type Loader struct {
	fs          afero.Fs
	log         zerolog.Logger
	parallelism int
}

func NewLoader(fsys afero.Fs, log zerolog.Logger) *Loader {
	return &Loader{fs: fsys, log: log, parallelism: defaultParallelism}
}

// Load parses paths and every file they include, directly or not. The
// result lists the inputs in the given order followed by included files in
// discovery order; each file appears once. Files reached only through an
// include are marked Included.
func (l *Loader) Load(ctx context.Context, paths []string) ([]*spec.File, error) {
	seen := make(map[string]bool)
	var wave []string
	for _, p := range paths {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			wave = append(wave, p)
		}
	}

	var out []*spec.File
	included := false
	for len(wave) > 0 {
		files, err := l.parseAll(ctx, wave)
		if err != nil {
			return nil, err
		}
		var next []string
		for _, f := range files {
			f.Included = included
			out = append(out, f)
			f.IncludePaths = make([]string, 0, len(f.Includes))
			for _, inc := range f.Includes {
				p, err := l.includePath(f.Name, inc)
				if err != nil {
					return nil, err
				}
				f.IncludePaths = append(f.IncludePaths, filepath.ToSlash(p))
				if !seen[p] {
					seen[p] = true
					next = append(next, p)
				}
			}
		}
		wave, included = next, true
	}
	l.log.Debug().Int("inputs", len(paths)).Int("files", len(out)).Msg("spec files loaded")
	return out, nil
}

// parseAll parses one wave concurrently. Results keep the order of paths.
func (l *Loader) parseAll(ctx context.Context, paths []string) ([]*spec.File, error) {
	files := make([]*spec.File, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.parallelism)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := afero.ReadFile(l.fs, p)
			if err != nil {
				return fmt.Errorf("phase=parse path=%s: %w", p, err)
			}
			f, err := Parse(filepath.ToSlash(p), data)
			if err != nil {
				return err
			}
			files[i] = f
			l.log.Trace().Str("file", p).Msg("parsed")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// includePath resolves inc relative to the including file first, then as
// written.
func (l *Loader) includePath(from, inc string) (string, error) {
	rel := filepath.Join(filepath.Dir(filepath.FromSlash(from)), filepath.FromSlash(inc))
	if ok, _ := afero.Exists(l.fs, rel); ok {
		return rel, nil
	}
	if ok, _ := afero.Exists(l.fs, filepath.Clean(inc)); ok {
		return filepath.Clean(inc), nil
	}
	return "", fmt.Errorf("phase=parse path=%s:include: %w: %s", from, ErrIncludeNotFound, inc)
}

// Discover walks root and returns, sorted, the files whose base name
// matches any of patterns. A root naming a file is returned as is.
func Discover(fsys afero.Fs, root string, patterns []string) ([]string, error) {
	info, err := fsys.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{filepath.Clean(root)}, nil
	}
	var out []string
	err = afero.Walk(fsys, root, func(p string, fi fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}
		for _, pat := range patterns {
			ok, err := filepath.Match(pat, filepath.Base(p))
			if err != nil {
				return fmt.Errorf("pattern %q: %w", pat, err)
			}
			if ok {
				out = append(out, filepath.Clean(p))
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}
