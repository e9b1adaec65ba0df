package main

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"
)

var (
	flagType string
	flagPick bool
	flagTUI  bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [input ...]",
	Short: "Show the resolved type graph",
	Long: "Parse, resolve and attach options without emitting anything, then print\n" +
		"every file with its types, constants and services. Property types are\n" +
		"shown fully qualified, as resolution left them. Options are those of the\n" +
		"selected backend.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd, args)
		if err != nil {
			return err
		}
		target, err := lookupTarget(cfg.Backend)
		if err != nil {
			return err
		}
		res, err := runBuild(cmd.Context(), appFs, cfg, log, true, nil)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		entries := collectTypes(res.Files)

		switch {
		case flagTUI:
			_, err := tea.NewProgram(newInspectModel(entries, target.Name()), tea.WithAltScreen()).Run()
			return err
		case flagPick:
			if len(entries) == 0 {
				return errors.New("no types to pick from")
			}
			idx, err := fuzzyfinder.Find(entries,
				func(i int) string { return entries[i].Name },
				fuzzyfinder.WithPromptString("Select type: "),
				fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
					if i < 0 {
						return ""
					}
					return typeDetail(entries[i], target.Name())
				}),
			)
			if err != nil {
				return err
			}
			describeType(out, entries[idx], target.Name(), "")
		case flagType != "":
			e, ok := findType(entries, flagType)
			if !ok {
				return fmt.Errorf("type %q not found or ambiguous", flagType)
			}
			describeType(out, e, target.Name(), "")
		default:
			describeFiles(out, res.Files, target.Name())
		}
		return nil
	},
}

func init() {
	addProjectFlags(inspectCmd)
	inspectCmd.Flags().StringVarP(&flagType, "type", "t", "", "show only this type (qualified, or bare when unambiguous)")
	inspectCmd.Flags().BoolVar(&flagPick, "pick", false, "pick the type to show with a fuzzy finder")
	inspectCmd.Flags().BoolVar(&flagTUI, "tui", false, "browse types in an interactive table")
	inspectCmd.MarkFlagsMutuallyExclusive("type", "pick", "tui")
}
