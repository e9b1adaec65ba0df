package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	styleBase = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))

	styleDetail = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("99")).
			Padding(0, 1).
			MarginLeft(1)

	styleHelp = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)
)

// inspectModel browses the types of a run: a table on the left and the
// selected type on the right.
type inspectModel struct {
	table   table.Model
	entries []typeEntry
	backend string
}

func newInspectModel(entries []typeEntry, backend string) inspectModel {
	columns := []table.Column{
		{Title: "TYPE", Width: 32},
		{Title: "KIND", Width: 10},
		{Title: "FILE", Width: 24},
	}
	rows := make([]table.Row, len(entries))
	for i, e := range entries {
		rows[i] = table.Row{e.Name, e.Kind, e.File.Name}
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true).
		Foreground(lipgloss.Color("99"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return inspectModel{table: t, entries: entries, backend: backend}
}

func (m inspectModel) Init() tea.Cmd {
	return nil
}

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m inspectModel) View() string {
	detail := "no types"
	if i := m.table.Cursor(); i >= 0 && i < len(m.entries) {
		detail = typeDetail(m.entries[i], m.backend)
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		styleBase.Render(m.table.View()),
		styleDetail.Render(detail),
	)
	return body + "\n" + styleHelp.Render("↑/↓ move • q quit")
}

func typeDetail(e typeEntry, backend string) string {
	var b strings.Builder
	describeType(&b, e, backend, "")
	return strings.TrimRight(b.String(), "\n")
}
