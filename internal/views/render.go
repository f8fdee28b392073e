// Package views renders the application's panels to plain strings. All layout
// and styling lives here; the update package only assembles data.
package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type AppData struct {
	Header        string
	LeftPane      string
	RightPane     string
	StatusLine    string
	StatusIsError bool
	Footer        string
	Alert         string
}

const (
	leftPaneWidth  = 62
	rightPaneWidth = 54
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	alertStyle  = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).Padding(0, 1).Foreground(lipgloss.Color("11"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func RenderApp(data AppData) string {
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Width(leftPaneWidth).Render(data.LeftPane),
		panelStyle.Width(rightPaneWidth).Render(data.RightPane),
	)

	style := statusStyle
	if data.StatusIsError {
		style = errorStyle
	}

	sections := []string{
		headerStyle.Render(data.Header),
		panes,
		style.Render(data.StatusLine),
	}
	if data.Alert != "" {
		sections = append(sections, alertStyle.Render(data.Alert))
	}
	if data.Footer != "" {
		sections = append(sections, footerStyle.Render(data.Footer))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// RenderMarkdown styles a markdown document for the terminal, falling back to
// the raw text when the renderer rejects it.
func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
