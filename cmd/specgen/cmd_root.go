package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string
)

// appFs is the file system every command reads specs from and writes to.
var appFs = afero.NewOsFs()

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Compile schema files into C#, PHP and Unreal C++ sources",
	Long: appName + " reads schema files describing enums, definitions, constants and\n" +
		"services, resolves every type reference across files and emits source code\n" +
		"for one backend.\n\n" +
		"Settings come from, in priority order: flags, $" + envBackend + " and friends,\n" +
		"the project file (" + defaultConfigFile + "), built-in defaults.",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "",
		"project file (default: ./"+defaultConfigFile+" when present)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "",
		"log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "",
		"log format: console or json")
}

// addProjectFlags registers the flags shared by the commands that run the
// pipeline.
func addProjectFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("backend", "b", "", "backend name or alias")
	cmd.Flags().StringP("output", "o", "", "output directory")
	cmd.Flags().StringSlice("include", nil, "file name patterns used when an input is a directory")
	cmd.Flags().StringToString("builder", nil, "builder per role, e.g. --builder definition=record")
	cmd.Flags().StringArray("option", nil, "global backend option as key=value (repeatable)")
	cmd.RegisterFlagCompletionFunc("backend", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return targetNames(), cobra.ShellCompDirectiveNoFileComp
	})
}

// setup resolves the configuration of cmd and builds its logger.
func setup(cmd *cobra.Command, args []string) (Config, zerolog.Logger, error) {
	path, required := flagConfig, flagConfig != ""
	if !required {
		path = defaultConfigFile
	}
	cfg, err := readConfig(appFs, path, required)
	if err != nil {
		return cfg, zerolog.Nop(), err
	}
	applyEnv(&cfg, os.Getenv)
	if err := applyFlags(&cfg, cmd.Flags(), args); err != nil {
		return cfg, zerolog.Nop(), err
	}
	if err := finish(&cfg); err != nil {
		return cfg, zerolog.Nop(), err
	}
	log, err := newLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return cfg, zerolog.Nop(), err
	}
	return cfg, log, nil
}

func newLogger(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level %q: %w", level, err)
	}
	switch format {
	case "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("log format %q: want console or json", format)
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
