package compiler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"specgen/cmd/specgen/spec"
)

var ErrOutputConflict = errors.New("output file produced twice")

// Loader parses the given input files and every file they include.
type Loader interface {
	Load(ctx context.Context, paths []string) ([]*spec.File, error)
}

// Request is one run of the engine.
type Request struct {
	Inputs    []string
	OutputDir string
	Selection Selection
	// Options is the global options block of the target backend.
	Options map[string]any
	// DryRun stops after emission; nothing is written.
	DryRun bool
}

// Result summarizes a run. Outputs are in emission order.
type Result struct {
	Files   []*spec.File
	Types   int
	Outputs []Output
	Written []string
}

// Engine runs the pipeline phases in strict order: select, parse,
// register, resolve, options, build, emit, write. Each phase completes
// before the next starts and the first failure aborts the run before
// anything is written.
type Engine struct {
	fs      afero.Fs
	loader  Loader
	target  Target
	log     zerolog.Logger
	metrics *Metrics
}

// NewEngine returns an engine writing to fs. metrics may be nil.
func NewEngine(fs afero.Fs, loader Loader, target Target, log zerolog.Logger, metrics *Metrics) *Engine {
	return &Engine{fs: fs, loader: loader, target: target, log: log, metrics: metrics}
}

func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	res, err := e.run(ctx, req)
	if e.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		e.metrics.Runs.WithLabelValues(outcome).Inc()
	}
	return res, err
}

func (e *Engine) run(ctx context.Context, req Request) (*Result, error) {
	res := &Result{}
	var sess Session
	if err := e.phase(ctx, "select", func() (err error) {
		sess, err = e.target.NewSession(req.Selection, e.log)
		return err
	}); err != nil {
		return nil, err
	}
	if len(req.Inputs) == 0 {
		e.log.Info().Msg("no input files, nothing to do")
		return res, nil
	}

	if err := e.phase(ctx, "parse", func() (err error) {
		res.Files, err = e.loader.Load(ctx, req.Inputs)
		return err
	}); err != nil {
		return nil, err
	}

	reg := spec.NewRegistry(e.log)
	if err := e.phase(ctx, "register", func() error {
		for _, f := range res.Files {
			if err := reg.RegisterFile(f); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	res.Types = len(reg.Types()) - len(spec.Builtins())

	if err := e.phase(ctx, "resolve", reg.Resolve); err != nil {
		return nil, err
	}

	if err := e.phase(ctx, "options", func() error {
		return sess.AttachOptions(req.Options, res.Files)
	}); err != nil {
		return nil, err
	}

	var built []*BuildContext
	if err := e.phase(ctx, "build", func() (err error) {
		built, err = sess.Compile(res.Files)
		return err
	}); err != nil {
		return nil, err
	}

	if err := e.phase(ctx, "emit", func() error {
		owners := make(map[string]string)
		for _, bc := range built {
			outs, err := sess.Emit(bc)
			if err != nil {
				return err
			}
			for _, o := range outs {
				if prev, dup := owners[o.Path]; dup {
					return fmt.Errorf("phase=emit path=%s: %w: %s (also from %s)", bc.Source.Name, ErrOutputConflict, o.Path, prev)
				}
				owners[o.Path] = bc.Source.Name
				res.Outputs = append(res.Outputs, o)
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.InputFiles.Add(float64(len(res.Files)))
		e.metrics.UserTypes.Add(float64(res.Types))
	}
	if req.DryRun {
		e.log.Info().Int("outputs", len(res.Outputs)).Msg("dry run, nothing written")
		return res, nil
	}

	if err := e.phase(ctx, "write", func() error {
		return e.write(req.OutputDir, res)
	}); err != nil {
		return nil, err
	}
	e.log.Info().
		Int("inputs", len(res.Files)).
		Int("types", res.Types).
		Int("outputs", len(res.Written)).
		Str("dir", req.OutputDir).
		Msg("build complete")
	return res, nil
}

// write stages every output in a temporary directory next to dir and moves
// them into place only once all of them were written. A failed move rolls
// back the outputs already moved.
func (e *Engine) write(dir string, res *Result) error {
	parent := filepath.Dir(filepath.Clean(dir))
	if err := e.fs.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("phase=write path=%s: %w", parent, err)
	}
	stage, err := afero.TempDir(e.fs, parent, ".specgen-")
	if err != nil {
		return fmt.Errorf("phase=write path=%s: %w", parent, err)
	}
	defer func() {
		if err := e.fs.RemoveAll(stage); err != nil {
			e.log.Warn().Err(err).Str("dir", stage).Msg("staging directory not removed")
		}
	}()

	for _, o := range res.Outputs {
		p := filepath.Join(stage, filepath.FromSlash(o.Path))
		if err := e.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("phase=write path=%s: %w", filepath.Join(dir, o.Path), err)
		}
		if err := afero.WriteFile(e.fs, p, o.Data, 0o644); err != nil {
			return fmt.Errorf("phase=write path=%s: %w", filepath.Join(dir, o.Path), err)
		}
	}

	var moved []string
	for _, o := range res.Outputs {
		rel := filepath.FromSlash(o.Path)
		p := filepath.Join(dir, rel)
		err := e.fs.MkdirAll(filepath.Dir(p), 0o755)
		if err == nil {
			err = e.fs.Rename(filepath.Join(stage, rel), p)
		}
		if err != nil {
			e.rollback(moved)
			return fmt.Errorf("phase=write path=%s: %w", p, err)
		}
		moved = append(moved, p)
	}

	res.Written = moved
	if e.metrics != nil {
		for _, o := range res.Outputs {
			e.metrics.OutputFiles.WithLabelValues(e.target.Name(), o.Kind.String()).Inc()
		}
	}
	return nil
}

func (e *Engine) rollback(paths []string) {
	for _, p := range paths {
		if err := e.fs.Remove(p); err != nil {
			e.log.Warn().Err(err).Str("file", p).Msg("rollback failed")
		}
	}
}

// phase runs fn once the previous phase is done, timing it. Cancellation is
// only observed between phases.
func (e *Engine) phase(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	if e.metrics != nil {
		e.metrics.PhaseDuration.WithLabelValues(name).Observe(elapsed.Seconds())
		if err != nil {
			e.metrics.PhaseFailures.WithLabelValues(name).Inc()
		}
	}
	e.log.Debug().Str("phase", name).Dur("took", elapsed).Err(err).Msg("phase done")
	return err
}
