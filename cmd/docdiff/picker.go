package main

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type modeOption struct {
	name        string
	description string
}

// modes offered by the picker, in menu order. dirs needs arguments & is
// only available as a sub-command
var modes = []modeOption{
	{"files", "XML files listed in a work-list"},
	{"db", "XML documents stored in a database"},
	{"json", "JSON files listed in a work-list"},
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	itemStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).MarginTop(1)
)

// picker is the interactive mode menu
type picker struct {
	cursor int
	choice string
}

func (p picker) Init() tea.Cmd { return nil }

func (p picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	switch s := key.String(); s {
	case "ctrl+c", "q", "esc":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(modes)-1 {
			p.cursor++
		}
	case "enter", " ":
		p.choice = modes[p.cursor].name
		return p, tea.Quit
	default:
		// digits pick a mode directly
		if len(s) == 1 && s[0] >= '1' && int(s[0]-'1') < len(modes) {
			p.cursor = int(s[0] - '1')
			p.choice = modes[p.cursor].name
			return p, tea.Quit
		}
	}
	return p, nil
}

func (p picker) View() string {
	if p.choice != "" {
		return ""
	}

	b := &strings.Builder{}
	b.WriteString(titleStyle.Render("Select option"))
	b.WriteString("\n")
	for i, m := range modes {
		line := fmt.Sprintf("%d. %-5s %s", i+1, m.name, m.description)
		if i == p.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString(itemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("up/down to move, enter or 1-3 to select, q to quit"))
	b.WriteString("\n")
	return b.String()
}

// pickMode runs the mode menu, returning the chosen mode or "" when the user
// quit without choosing
func pickMode(in io.Reader, out io.Writer) (string, error) {
	final, err := tea.NewProgram(picker{}, tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return "", fmt.Errorf("mode picker: %w", err)
	}
	return final.(picker).choice, nil
}
