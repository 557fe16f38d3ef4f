package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// returns a new welcome screen
func NewWelcome(apiURL string) *Welcome {
	return &Welcome{
		apiURL: apiURL,
		commands: []Command{
			{Name: "generate", Description: "open the content idea generator"},
			{Name: "results", Description: "show the last batch of ideas"},
			{Name: "usage", Description: "refresh this month's usage from the server"},
			{Name: "quit", Description: "exit incdrops"},
		},
	}
}

func (m *Welcome) Update(msg tea.Msg) (*Welcome, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			cmd := m.executeCommand()
			m.input = ""
			return m, cmd
		case "backspace":
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
			}
		default:
			if len(msg.String()) == 1 {
				m.input += msg.String()
			}
		}
	}

	return m, nil
}

func (m *Welcome) View(usage UsageView) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(logo))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("content ideas for your business, on demand"))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render("server: " + m.apiURL))
	b.WriteString("\n")
	b.WriteString(usageLine(usage))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Render("commands:"))
	b.WriteString("\n\n")

	for _, cmd := range m.commands {
		line := fmt.Sprintf("  %s %s",
			commandStyle.Render(cmd.Name),
			commandDescStyle.Render("- "+cmd.Description),
		)
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")

	prompt := promptStyle.Render("> ")
	input := inputStyle.Render(m.input + "_")
	b.WriteString(prompt + input)
	b.WriteString("\n\n")

	b.WriteString(helpStyle.Render("type a command and press enter. press ctrl+c to quit."))

	return b.String()
}

func (m *Welcome) executeCommand() tea.Cmd {
	cmd := strings.TrimSpace(m.input)

	switch cmd {
	case "quit", "q":
		return tea.Quit

	case "generate", "g":
		return func() tea.Msg { return EnterFormMsg{} }

	case "results", "r":
		return func() tea.Msg { return enterResultsMsg{} }

	case "usage", "u":
		return func() tea.Msg { return refreshUsageMsg{} }

	case "":
		return nil

	default:
		return func() tea.Msg {
			return ErrorMsg{err: fmt.Errorf("unknown command: %s", cmd)}
		}
	}
}

func usageLine(u UsageView) string {
	switch {
	case u.AtLimit():
		return warnStyle.Render(u.String() + " · limit reached")
	case u.Degraded:
		return warnStyle.Render(u.String())
	default:
		return infoStyle.Render(u.String())
	}
}

type enterResultsMsg struct{}
type refreshUsageMsg struct{}
