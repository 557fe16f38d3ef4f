package tui

import (
	"errors"
	"fmt"
	"strings"

	"codeberg.org/incdrops/server/internal/generator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	fieldIndustry = iota
	fieldAudience
	fieldServices
	fieldContentType
	fieldCount
)

var fieldLabels = [fieldCount]string{"Industry", "Target audience", "Services", "Content type"}

// returns a new generator form
func NewFormModel() *FormModel {
	placeholders := []string{
		"e.g. specialty coffee roastery",
		"e.g. remote workers in their 30s",
		"e.g. subscriptions, brewing workshops",
	}

	limits := []int{200, 200, 500}

	inputs := make([]textinput.Model, len(placeholders))
	for i := range inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = limits[i]
		ti.Width = 60
		ti.Prompt = "> "
		ti.PromptStyle = lipgloss.NewStyle().Foreground(colorLightGray)
		ti.TextStyle = lipgloss.NewStyle().Foreground(colorWhite)
		inputs[i] = ti
	}

	inputs[fieldIndustry].Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorAccent)

	return &FormModel{
		inputs:  inputs,
		spinner: s,
	}
}

// the brief the form currently describes
func (m *FormModel) Brief() generator.Brief {
	return generator.Brief{
		Industry:       strings.TrimSpace(m.inputs[fieldIndustry].Value()),
		TargetAudience: strings.TrimSpace(m.inputs[fieldAudience].Value()),
		Services:       strings.TrimSpace(m.inputs[fieldServices].Value()),
		ContentType:    generator.ContentTypes[m.contentType],
	}
}

func (m *FormModel) setFocus(i int) tea.Cmd {
	m.focus = (i + fieldCount) % fieldCount

	var cmd tea.Cmd
	for j := range m.inputs {
		if j == m.focus {
			cmd = m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}

	return cmd
}

// starts a request unless one is in flight or the account is at its limit
func (m *FormModel) submit(api *APIClient) tea.Cmd {
	if m.isFetching {
		return nil
	}

	if m.atLimit {
		m.err = errors.New("monthly generation limit reached, upgrade your tier for more")
		return nil
	}

	m.isFetching = true
	m.err = nil

	return tea.Batch(m.spinner.Tick, api.GenerateCmd(m.Brief()))
}

func (m *FormModel) Update(msg tea.Msg, api *APIClient) (*FormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			return m, m.setFocus(m.focus + 1)

		case "shift+tab", "up":
			return m, m.setFocus(m.focus - 1)

		case "left":
			if m.focus == fieldContentType {
				m.contentType = (m.contentType + len(generator.ContentTypes) - 1) % len(generator.ContentTypes)
				return m, nil
			}

		case "right":
			if m.focus == fieldContentType {
				m.contentType = (m.contentType + 1) % len(generator.ContentTypes)
				return m, nil
			}

		case "enter":
			if m.focus < fieldContentType {
				return m, m.setFocus(m.focus + 1)
			}

			return m, m.submit(api)

		case "ctrl+s":
			return m, m.submit(api)

		case "ctrl+l":
			for i := range m.inputs {
				m.inputs[i].SetValue("")
			}

			m.contentType = 0
			m.err = nil
			return m, m.setFocus(fieldIndustry)
		}

	case GenerateResultMsg:
		m.isFetching = false
		return m, nil

	case GenerateErrorMsg:
		m.isFetching = false
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		if !m.isFetching {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		for i := range m.inputs {
			m.inputs[i].Width = max(20, msg.Width-30)
		}
	}

	if m.focus < fieldContentType {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *FormModel) View(usage UsageView) string {
	var b strings.Builder

	header := lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Render("GENERATE IDEAS")
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(usageLine(usage))
	b.WriteString("\n\n")

	var fields strings.Builder
	for i := 0; i < fieldCount; i++ {
		label := labelStyle.Render(fieldLabels[i])
		if i == m.focus {
			label = focusedLabelStyle.Render(fieldLabels[i])
		}

		fields.WriteString(label)

		if i == fieldContentType {
			fields.WriteString(contentTypePicker(m.contentType, m.focus == fieldContentType))
		} else {
			fields.WriteString(m.inputs[i].View())
		}

		fields.WriteString("\n")
	}

	b.WriteString(boxStyle.Width(max(40, m.width-4)).Render(strings.TrimRight(fields.String(), "\n")))
	b.WriteString("\n\n")

	switch {
	case m.isFetching:
		b.WriteString(m.spinner.View() + infoStyle.Render(" generating ideas..."))
	case m.err != nil:
		b.WriteString(errorStyle.Render(formError(m.err)))
	case m.atLimit:
		b.WriteString(warnStyle.Render("monthly generation limit reached, upgrade your tier for more"))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("[Tab: Next field] [←/→: Content type] [Enter/Ctrl+S: Generate] [Ctrl+L: Clear] [Esc: Back]"))

	return b.String()
}

func contentTypePicker(selected int, focused bool) string {
	name := generator.ContentTypes[selected]

	if !focused {
		return inputStyle.Render(name)
	}

	return promptStyle.Render("‹ ") + inputStyle.Foreground(colorAccent).Render(name) + promptStyle.Render(" ›")
}

func formError(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.QuotaExceeded() {
		msg := fmt.Sprintf("limit reached: %d / %d on the %s tier", apiErr.Count, apiErr.Limit, apiErr.Tier)
		if apiErr.UpgradeTo != "" {
			msg += fmt.Sprintf(", upgrade to %s for more", apiErr.UpgradeTo)
		}

		return msg
	}

	return fmt.Sprintf("Error: %v", err)
}
