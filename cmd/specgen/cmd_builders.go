package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"specgen/cmd/specgen/compiler"
)

var buildersCmd = &cobra.Command{
	Use:   "builders [backend]",
	Short: "List backends and the builders each role can select",
	Long: "List every backend with its aliases and, per role, the names accepted by\n" +
		"--builder. Names separated by ';' select the same builder. Roles without\n" +
		"builders are not supported by that backend.",
	Args: cobra.MaximumNArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return targetNames(), cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		list := targets
		if len(args) == 1 {
			t, err := lookupTarget(args[0])
			if err != nil {
				return err
			}
			list = []compiler.Target{t}
		}
		fmt.Fprintln(cmd.OutOrStdout(), buildersTable(list))
		return nil
	},
}

// builderRows flattens the builder aliases of targets, one row per role.
func builderRows(list []compiler.Target) [][]string {
	var rows [][]string
	for _, t := range list {
		builders := t.Builders()
		for _, role := range compiler.Roles {
			names := builders[role]
			if len(names) == 0 {
				continue
			}
			rows = append(rows, []string{t.Name(), strings.Join(t.Aliases(), ", "), string(role), strings.Join(names, "  ")})
		}
	}
	return rows
}

func buildersTable(list []compiler.Target) *table.Table {
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		Headers("BACKEND", "ALIASES", "ROLE", "BUILDERS").
		Rows(builderRows(list)...)
}
