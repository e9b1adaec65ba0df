package main

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"specgen/cmd/specgen/compiler"
)

const initProjectHeader = "# specgen project file\n" +
	"# Flags and $SPECGEN_* variables override these settings.\n" +
	"# List backends and builders with: specgen builders\n\n"

const exampleSpec = `# Example schema. Types of included files are visible here.
namespace: Example
enums:
  Status:
    description: Lifecycle of an order
    values: [Open, Paid, Shipped]
definitions:
  Order:
    description: A placed order
    properties:
      id: int
      status: { type: Status, default: Open }
      items: { type: list<string>, description: Product codes }
      note: string?
constants:
  MaxItems: { type: int, value: 50 }
services:
  Orders:
    endpoints:
      get: { path: "/orders/{id}", responseType: Order }
      create: { method: POST, path: /orders, requestType: Order, responseType: Order }
`

// initAnswers are the settings init asks for.
type initAnswers struct {
	Backend   string
	Input     string
	Output    string
	Namespace string
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a project file and an example schema",
	Long: "Ask for the backend, the schema and output directories and a root\n" +
		"namespace, then write " + defaultConfigFile + " and an example schema file.\n" +
		"Use --yes to skip the questions and take the flag values or defaults.",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		force, _ := cmd.Flags().GetBool("force")
		dir, _ := cmd.Flags().GetString("dir")

		def := defaultConfig()
		a := initAnswers{Backend: def.Backend, Input: "specs", Output: def.Output}
		if v, _ := cmd.Flags().GetString("backend"); v != "" {
			a.Backend = v
		}
		if v, _ := cmd.Flags().GetString("namespace"); v != "" {
			a.Namespace = v
		}
		if !yes {
			if err := askInit(&a); err != nil {
				return err
			}
		}
		written, err := writeProject(appFs, dir, a, force)
		if err != nil {
			return err
		}
		w := cmd.ErrOrStderr()
		fmt.Fprintf(w, "initialised %s\n", dir)
		for _, p := range written {
			fmt.Fprintf(w, "  %s\n", p)
		}
		fmt.Fprintf(w, "\nRun `%s build` to generate sources.\n", appName)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolP("yes", "y", false, "do not ask, use flags and defaults")
	initCmd.Flags().Bool("force", false, "overwrite existing files")
	initCmd.Flags().String("dir", ".", "project directory")
	initCmd.Flags().StringP("backend", "b", "", "backend name or alias")
	initCmd.Flags().String("namespace", "", "root namespace of generated code")
}

func askInit(a *initAnswers) error {
	options := make([]huh.Option[string], 0, len(targets))
	for _, t := range targets {
		options = append(options, huh.NewOption(t.Name(), t.Name()))
	}
	notEmpty := func(s string) error {
		if s == "" {
			return errors.New("required")
		}
		return nil
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Backend").Options(options...).Value(&a.Backend),
			huh.NewInput().Title("Schema directory").Value(&a.Input).Validate(notEmpty),
			huh.NewInput().Title("Output directory").Value(&a.Output).Validate(notEmpty),
			huh.NewInput().Title("Root namespace").Description("Optional, e.g. Acme.Shop").Value(&a.Namespace),
		),
	).Run()
}

// writeProject writes the project file and the example schema under dir
// and returns their paths.
func writeProject(fsys afero.Fs, dir string, a initAnswers, force bool) ([]string, error) {
	t, err := lookupTarget(a.Backend)
	if err != nil {
		return nil, err
	}
	cfg := Config{
		Backend:  t.Name(),
		Input:    []string{a.Input},
		Output:   a.Output,
		Builders: compiler.Selection{Enum: "default", Definition: "default"},
	}
	if a.Namespace != "" {
		key := "namespace"
		if t.Name() == "unreal" {
			key = "prefix"
		}
		cfg.Options = map[string]map[string]any{t.Name(): {key: a.Namespace}}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}

	configFile := filepath.Join(dir, defaultConfigFile)
	specFile := filepath.Join(dir, a.Input, "example.spec")
	if err := fsys.MkdirAll(filepath.Dir(specFile), 0o755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", filepath.Dir(specFile), err)
	}
	if err := writeInitFile(fsys, configFile, initProjectHeader, data, force); err != nil {
		return nil, err
	}
	if err := writeInitFile(fsys, specFile, "", []byte(exampleSpec), force); err != nil {
		return nil, err
	}
	return []string{configFile, specFile}, nil
}

func writeInitFile(fsys afero.Fs, path, header string, content []byte, force bool) error {
	if !force {
		if _, err := fsys.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	fmt.Fprint(f, header)
	_, err = f.Write(content)
	return err
}
