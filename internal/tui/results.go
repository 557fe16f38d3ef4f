package tui

import (
	"fmt"
	"strings"

	"codeberg.org/incdrops/server/internal/generator"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// header, footer and margins around the viewport
const resultsChrome = 6

// returns an empty results screen
func NewResultsModel() *ResultsModel {
	return &ResultsModel{}
}

// replaces the ideas on screen
func (m *ResultsModel) SetResult(brief generator.Brief, resp *GenerateResponse) {
	m.brief = brief
	m.ideas = resp.Ideas
	m.fallback = resp.Fallback
	m.model = resp.Model
	m.refresh()
}

func (m *ResultsModel) HasResults() bool {
	return len(m.ideas) > 0
}

func (m *ResultsModel) Update(msg tea.Msg) (*ResultsModel, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height

		if !m.ready {
			m.viewport = viewport.New(msg.Width, max(5, msg.Height-resultsChrome))
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = max(5, msg.Height-resultsChrome)
		}

		m.glamourRenderer = newRenderer(msg.Width)
		m.refresh()

		return m, nil
	}

	if !m.ready {
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)

	return m, cmd
}

func (m *ResultsModel) View(usage UsageView) string {
	var b strings.Builder

	header := lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Render("IDEAS")
	b.WriteString(header)
	b.WriteString("  ")
	b.WriteString(infoStyle.Render(fmt.Sprintf("%s · %d ideas · model: %s", m.brief.ContentType, len(m.ideas), m.model)))
	b.WriteString("\n")
	b.WriteString(usageLine(usage))
	b.WriteString("\n")

	if m.fallback {
		b.WriteString(warnStyle.Render("the model's answer could not be read, these are placeholder ideas"))
	}

	b.WriteString("\n")

	if m.ready {
		b.WriteString(m.viewport.View())
	} else {
		b.WriteString(m.markdown())
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("[↑/↓: Scroll] [g: Generate again] [Esc: Back]"))

	return b.String()
}

func (m *ResultsModel) refresh() {
	if !m.ready {
		return
	}

	content := m.markdown()

	if m.glamourRenderer == nil {
		m.glamourRenderer = newRenderer(m.width)
	}

	if m.glamourRenderer != nil {
		if rendered, err := m.glamourRenderer.Render(content); err == nil {
			content = rendered
		}
	}

	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

// renders the ideas as markdown
func (m *ResultsModel) markdown() string {
	var b strings.Builder

	for i, idea := range m.ideas {
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, idea.Title)

		if idea.Description != "" {
			b.WriteString(idea.Description)
			b.WriteString("\n\n")
		}

		if len(idea.Platforms) > 0 {
			fmt.Fprintf(&b, "**Platforms:** %s  \n", strings.Join(idea.Platforms, ", "))
		}

		if len(idea.Hashtags) > 0 {
			fmt.Fprintf(&b, "**Hashtags:** `%s`  \n", strings.Join(idea.Hashtags, " "))
		}

		if idea.Type != "" {
			fmt.Fprintf(&b, "**Type:** %s\n", idea.Type)
		}

		b.WriteString("\n---\n\n")
	}

	return b.String()
}

func newRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(40, width-4)),
	)
	if err != nil {
		return nil
	}

	return r
}
