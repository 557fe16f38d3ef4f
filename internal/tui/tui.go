package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

func NewApp(apiURL string, api *APIClient, shadow *UsageShadow, push *WSClient) *Model {
	return &Model{
		state:   StateWelcome,
		welcome: NewWelcome(apiURL),
		form:    NewFormModel(),
		results: NewResultsModel(),
		api:     api,
		shadow:  shadow,
		ws:      push,
	}
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.shadow.LoadCmd(false)}

	if m.ws != nil {
		cmds = append(cmds, m.ws.ListenCmd())
	}

	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// any key dismisses an error
		if m.err != nil {
			m.err = nil
			if msg.String() != "ctrl+c" {
				return m, nil
			}
		}

		switch msg.String() {
		case "ctrl+c":
			if m.state == StateWelcome {
				return m, tea.Quit
			}

			m.state = StateWelcome
			return m, nil

		case "esc":
			if m.state != StateWelcome && !m.form.isFetching {
				m.state = StateWelcome
				return m, nil
			}

		case "g":
			if m.state == StateResults {
				m.state = StateForm
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		m.form, _ = m.form.Update(msg, m.api)
		m.results, _ = m.results.Update(msg)
		return m, nil

	case ErrorMsg:
		m.err = msg.err
		return m, nil

	case EnterFormMsg:
		m.state = StateForm
		m.form.atLimit = m.usage.AtLimit()
		return m, m.form.setFocus(m.form.focus)

	case enterResultsMsg:
		if !m.results.HasResults() {
			m.err = fmt.Errorf("no ideas generated yet, run generate first")
			return m, nil
		}

		m.state = StateResults
		return m, nil

	case refreshUsageMsg:
		return m, m.shadow.LoadCmd(true)

	case UsageLoadedMsg:
		m.usage = msg.usage
		m.form.atLimit = m.usage.AtLimit()
		return m, nil

	case GenerateResultMsg:
		m.form, _ = m.form.Update(msg, m.api)
		m.results.SetResult(msg.brief, msg.resp)
		m.state = StateResults

		// the server counted this generation, reconcile the shadow
		return m, m.shadow.LoadCmd(true)

	case GenerateErrorMsg:
		m.form, _ = m.form.Update(msg, m.api)

		var cmd tea.Cmd
		if apiErr := (*APIError)(nil); errors.As(msg.err, &apiErr) && apiErr.QuotaExceeded() {
			cmd = m.shadow.LoadCmd(true)
		}

		return m, cmd

	case UsagePushMsg:
		return m, tea.Batch(m.shadow.LoadCmd(true), m.ws.ListenCmd())

	case PushDisconnectedMsg:
		return m, m.ws.ReconnectCmd()

	case reconnectMsg:
		return m, m.ws.ListenCmd()
	}

	switch m.state {
	case StateWelcome:
		var cmd tea.Cmd
		m.welcome, cmd = m.welcome.Update(msg)
		return m, cmd

	case StateForm:
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg, m.api)
		return m, cmd

	case StateResults:
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd

	default:
		return m, nil
	}
}

func (m *Model) View() string {
	if m.err != nil {
		return errorView(m.err)
	}

	switch m.state {
	case StateWelcome:
		return m.welcome.View(m.usage)

	case StateForm:
		return m.form.View(m.usage)

	case StateResults:
		return m.results.View(m.usage)

	default:
		return "Unknown state"
	}
}

func errorView(err error) string {
	return fmt.Sprintf("\n  %s\n\n  Press any key to continue\n", errorStyle.Render(fmt.Sprintf("Error: %v", err)))
}
