package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"specgen/cmd/specgen/compiler"
	"specgen/cmd/specgen/specyaml"
)

var (
	flagDryRun      bool
	flagMetricsFile string
	flagStats       bool
)

var (
	styleOK   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	styleErr  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	styleDim  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	styleName = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
)

var buildCmd = &cobra.Command{
	Use:   "build [input ...]",
	Short: "Compile schema files for one backend",
	Long: "Compile the given schema files, or every matching file under the given\n" +
		"directories, and write the generated sources to the output directory.\n" +
		"Included files are followed and compiled too. Nothing is written when any\n" +
		"phase fails.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd, args)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var metrics *compiler.Metrics
		if flagMetricsFile != "" {
			metrics = compiler.NewMetrics()
		}
		start := time.Now()
		res, err := runBuild(ctx, appFs, cfg, log, flagDryRun, metrics)
		if metrics != nil {
			if werr := metrics.WriteTextfile(flagMetricsFile); werr != nil {
				log.Warn().Err(werr).Str("file", flagMetricsFile).Msg("could not write metrics")
			}
		}
		if err != nil {
			return err
		}
		if flagDryRun {
			printOutputs(cmd.OutOrStdout(), cfg.Output, res.Outputs)
		}
		printSummary(cmd.ErrOrStderr(), cfg.Backend, res, time.Since(start))
		if flagStats {
			printStats(cmd.ErrOrStderr(), log)
		}
		return nil
	},
}

func init() {
	addProjectFlags(buildCmd)
	buildCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "compile and list outputs without writing them")
	buildCmd.Flags().StringVar(&flagMetricsFile, "metrics-file", "", "write run metrics to this file in the Prometheus textfile format")
	buildCmd.Flags().BoolVar(&flagStats, "stats", false, "print memory and CPU usage of the run")
}

// runBuild runs the whole pipeline for cfg.
func runBuild(ctx context.Context, fsys afero.Fs, cfg Config, log zerolog.Logger, dryRun bool, metrics *compiler.Metrics) (*compiler.Result, error) {
	target, err := lookupTarget(cfg.Backend)
	if err != nil {
		return nil, err
	}
	inputs, err := discoverInputs(fsys, cfg.Input, cfg.Include)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("backend", target.Name()).Strs("inputs", inputs).Str("output", cfg.Output).Msg("starting build")
	eng := compiler.NewEngine(fsys, specyaml.NewLoader(fsys, log), target, log, metrics)
	return eng.Run(ctx, compiler.Request{
		Inputs:    inputs,
		OutputDir: cfg.Output,
		Selection: cfg.Builders,
		Options:   globalOptions(cfg, target),
		DryRun:    dryRun,
	})
}

// discoverInputs expands directories into the files matching include.
// The result keeps the order of inputs and lists each file once.
func discoverInputs(fsys afero.Fs, inputs, include []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, in := range inputs {
		files, err := specyaml.Discover(fsys, in, include)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", in, err)
		}
		for _, f := range files {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out, nil
}

func printOutputs(w io.Writer, dir string, outputs []compiler.Output) {
	for _, o := range outputs {
		fmt.Fprintf(w, "%-9s %7d  %s\n", o.Kind, len(o.Data), filepath.Join(dir, o.Path))
	}
}

func printSummary(w io.Writer, backend string, res *compiler.Result, took time.Duration) {
	verb := "wrote"
	n := len(res.Written)
	if n == 0 && len(res.Outputs) > 0 {
		verb, n = "would write", len(res.Outputs)
	}
	fmt.Fprintf(w, "%s %s %s %d files from %d inputs (%d types) %s\n",
		styleOK.Render("✓"), styleName.Render(backend), verb, n, len(res.Files), res.Types,
		styleDim.Render("in "+took.Round(time.Millisecond).String()))
}
