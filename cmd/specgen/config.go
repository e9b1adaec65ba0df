package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/imdario/mergo"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"specgen/cmd/specgen/compiler"
)

// appName is the single source of truth for the application name.
// Env vars and the project file name derive from it.
const appName = "specgen"

const defaultConfigFile = appName + ".yaml"

var (
	envBackend   = strings.ToUpper(appName) + "_BACKEND"
	envInput     = strings.ToUpper(appName) + "_INPUT"
	envOutput    = strings.ToUpper(appName) + "_OUTPUT"
	envLogLevel  = strings.ToUpper(appName) + "_LOG_LEVEL"
	envLogFormat = strings.ToUpper(appName) + "_LOG_FORMAT"
)

// Config is the project file. Every field can also come from the
// environment or the command line.
type Config struct {
	Backend string   `yaml:"backend"`
	Input   []string `yaml:"input"`
	// Include holds the base name patterns used when an input is a
	// directory.
	Include  []string                  `yaml:"include,omitempty"`
	Output   string                    `yaml:"output"`
	Builders compiler.Selection        `yaml:"builders,omitempty"`
	Options  map[string]map[string]any `yaml:"options,omitempty"`
	Log      LogConfig                 `yaml:"log,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

func defaultConfig() Config {
	return Config{
		Backend: "csharp",
		Input:   []string{"."},
		Include: []string{"*.spec", "*.spec.yaml", "*.spec.yml"},
		Output:  "gen",
		Log:     LogConfig{Level: "info", Format: "console"},
	}
}

// readConfig loads the project file. A missing file is only an error when
// required is set.
func readConfig(fsys afero.Fs, path string, required bool) (Config, error) {
	var cfg Config
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config file %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// applyEnv overrides cfg with the environment variables that are set.
// $SPECGEN_INPUT is colon separated.
func applyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv(envBackend); v != "" {
		cfg.Backend = v
	}
	if v := splitColon(getenv(envInput)); len(v) > 0 {
		cfg.Input = v
	}
	if v := getenv(envOutput); v != "" {
		cfg.Output = v
	}
	if v := getenv(envLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := getenv(envLogFormat); v != "" {
		cfg.Log.Format = v
	}
}

// applyFlags overrides cfg with the flags set on the command line.
// Positional arguments replace the configured inputs.
func applyFlags(cfg *Config, fl *pflag.FlagSet, args []string) error {
	if len(args) > 0 {
		cfg.Input = args
	}
	str := func(name string, dst *string) {
		if f := fl.Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}
	str("backend", &cfg.Backend)
	str("output", &cfg.Output)
	str("log-level", &cfg.Log.Level)
	str("log-format", &cfg.Log.Format)

	if f := fl.Lookup("include"); f != nil && f.Changed {
		include, err := fl.GetStringSlice("include")
		if err != nil {
			return err
		}
		cfg.Include = include
	}
	if f := fl.Lookup("builder"); f != nil && f.Changed {
		builders, err := fl.GetStringToString("builder")
		if err != nil {
			return err
		}
		for role, name := range builders {
			if err := setBuilder(&cfg.Builders, compiler.Role(role), name); err != nil {
				return err
			}
		}
	}
	if f := fl.Lookup("option"); f != nil && f.Changed {
		pairs, err := fl.GetStringArray("option")
		if err != nil {
			return err
		}
		for _, pair := range pairs {
			if err := setOption(cfg, pair); err != nil {
				return err
			}
		}
	}
	return nil
}

func setBuilder(sel *compiler.Selection, role compiler.Role, name string) error {
	switch role {
	case compiler.RoleEnum:
		sel.Enum = name
	case compiler.RoleDefinition:
		sel.Definition = name
	case compiler.RoleClient:
		sel.ClientService = name
	case compiler.RoleServer:
		sel.ServerService = name
	case compiler.RoleValidator:
		sel.Validator = name
	default:
		return fmt.Errorf("unknown builder role %q (want one of %s)", role, roleList())
	}
	return nil
}

func roleList() string {
	names := make([]string, len(compiler.Roles))
	for i, r := range compiler.Roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

// setOption applies key=value to the global options of the configured
// backend. The value is read as YAML so numbers and booleans keep their
// type.
func setOption(cfg *Config, pair string) error {
	key, raw, ok := strings.Cut(pair, "=")
	if !ok || key == "" {
		return fmt.Errorf("option %q: expected key=value", pair)
	}
	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		return fmt.Errorf("option %q: %w", pair, err)
	}
	if cfg.Options == nil {
		cfg.Options = make(map[string]map[string]any)
	}
	backend := cfg.Backend
	if backend == "" {
		backend = defaultConfig().Backend
	}
	if t, err := lookupTarget(backend); err == nil {
		backend = t.Name()
	}
	if cfg.Options[backend] == nil {
		cfg.Options[backend] = make(map[string]any)
	}
	cfg.Options[backend][key] = value
	return nil
}

// finish fills the fields nothing set from the defaults.
func finish(cfg *Config) error {
	return mergo.Merge(cfg, defaultConfig())
}

// splitColon splits a colon-separated string, filtering empty parts.
func splitColon(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ":")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
