package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mohankv/timebox/internal/conflict"
	"github.com/mohankv/timebox/internal/views"
)

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tickCmd()}
	if m.Scanner != nil {
		cmds = append(cmds, waitForConflictCmd(m.Scanner.C()))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			if typed.String() == m.Keys.Help {
				m.HelpVisible = !m.HelpVisible
				return m, nil
			}
			return m.handlePaletteKey(typed), nil
		}

		switch typed.String() {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.Focus()
			m.commandInput.SetValue("")
			m.Status = StatusBar{Text: "command palette active", IsError: false}
			return m, nil
		case m.Keys.Execution:
			m.CurrentView = ViewExecution
			return m, nil
		case m.Keys.Day:
			m.CurrentView = ViewDay
			return m, nil
		case m.Keys.Conflicts:
			m.CurrentView = ViewConflicts
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}

		switch m.CurrentView {
		case ViewDay:
			return m.handleDayKey(typed), nil
		case ViewConflicts:
			return m.handleConflictKey(typed), nil
		}
		return m, nil

	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	case ConflictDetectedMsg:
		m.Pending = &typed.Event
		m.ConflictCursor = 0
		m.Status = StatusBar{
			Text: fmt.Sprintf("conflict detected: %d items overlap", len(typed.Event.Group.Members)),
		}
		if m.Scanner != nil {
			return m, waitForConflictCmd(m.Scanner.C())
		}
		return m, nil
	case ClockTickMsg:
		return m, m.tickCmd()
	}

	return m, nil
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		status = "status: " + m.Status.Text
	}

	leftPane := ""
	switch m.CurrentView {
	case ViewExecution:
		leftPane = m.renderExecutionView()
	case ViewDay:
		leftPane = m.renderDayView()
	case ViewConflicts:
		leftPane = m.renderConflictsView()
	}
	rightPane := views.RenderCommandPalette(m.Palette.Active, m.Palette.Input) + m.renderHelpIfVisible()

	alert := ""
	if m.Pending != nil {
		alert = views.RenderConflictAlert(len(m.Pending.Group.Members))
	}

	return views.RenderApp(views.AppData{
		Header:        fmt.Sprintf("timebox | view: %s", m.CurrentView),
		LeftPane:      leftPane,
		RightPane:     rightPane,
		StatusLine:    status,
		StatusIsError: m.Status.IsError,
		Alert:         alert,
		Footer: fmt.Sprintf("keys: %s execution | %s day | %s conflicts | / cmd | %s help | %s quit",
			m.Keys.Execution, m.Keys.Day, m.Keys.Conflicts, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) tickCmd() tea.Cmd {
	interval := time.Duration(m.cfg.RefreshSeconds) * time.Second
	if interval <= 0 {
		interval = time.Second
	}
	return tea.Tick(interval, func(time.Time) tea.Msg { return ClockTickMsg{} })
}

func waitForConflictCmd(ch <-chan conflict.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ConflictDetectedMsg{Event: ev}
	}
}

func isKnownView(v View) bool {
	switch v {
	case ViewExecution, ViewDay, ViewConflicts:
		return true
	default:
		return false
	}
}
