package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/mohankv/timebox/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var b strings.Builder
	fmt.Fprintf(&b, "## %s view\n\n", strings.ToLower(string(m.CurrentView)))
	for _, kb := range m.viewBindings() {
		fmt.Fprintf(&b, "- `%s` %s\n", kb.Key, kb.Action)
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Body:        b.String(),
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Execution, Action: "switch to Execution"},
		{Key: m.Keys.Day, Action: "switch to Day"},
		{Key: m.Keys.Conflicts, Action: "switch to Conflicts"},
		{Key: "/", Action: "open command palette"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	switch m.CurrentView {
	case ViewExecution:
		return []KeyBinding{
			{Key: "-", Action: "chain refreshes on the clock tick"},
		}
	case ViewDay:
		return []KeyBinding{
			{Key: "j/k", Action: "move cursor"},
			{Key: "h/l", Action: "previous/next window"},
		}
	case ViewConflicts:
		return []KeyBinding{
			{Key: "j/k", Action: "move selection"},
			{Key: "p", Action: "prioritize selected occurrence"},
			{Key: "s", Action: "snooze the losing occurrences"},
			{Key: "esc", Action: "dismiss prompt (re-prompts next scan)"},
		}
	default:
		return []KeyBinding{{Key: "-", Action: "no contextual bindings"}}
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings())+len(m.viewBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	for _, kb := range m.viewBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
