package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	colorWhite     = lipgloss.Color("#FFFFFF")
	colorLightGray = lipgloss.Color("#CCCCCC")
	colorGray      = lipgloss.Color("#888888")
	colorDarkGray  = lipgloss.Color("#444444")
	colorAccent    = lipgloss.Color("#7C5CFF")
	colorYellow    = lipgloss.Color("#FFD75F")
	colorRed       = lipgloss.Color("#FF5F5F")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			MarginTop(1).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorLightGray).
			MarginBottom(1)

	commandStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true)

	commandDescStyle = lipgloss.NewStyle().
				Foreground(colorGray).
				PaddingLeft(1)

	inputStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(colorLightGray)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorLightGray).
			Width(18)

	focusedLabelStyle = labelStyle.
				Foreground(colorAccent).
				Bold(true)

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Italic(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDarkGray).
			Italic(true).
			MarginTop(1)
)

const logo = `
  ██╗███╗   ██╗ ██████╗██████╗ ██████╗  ██████╗ ██████╗ ███████╗
  ██║████╗  ██║██╔════╝██╔══██╗██╔══██╗██╔═══██╗██╔══██╗██╔════╝
  ██║██╔██╗ ██║██║     ██║  ██║██████╔╝██║   ██║██████╔╝███████╗
  ██║██║╚██╗██║██║     ██║  ██║██╔══██╗██║   ██║██╔═══╝ ╚════██║
  ██║██║ ╚████║╚██████╗██████╔╝██║  ██║╚██████╔╝██║     ███████║
  ╚═╝╚═╝  ╚═══╝ ╚═════╝╚═════╝ ╚═╝  ╚═╝ ╚═════╝ ╚═╝     ╚══════╝
`
