package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mohankv/timebox/internal/views"
)

func (m Model) handleConflictKey(msg tea.KeyMsg) Model {
	if m.Pending == nil {
		return m
	}
	members := m.Pending.Group.Members
	switch msg.String() {
	case "j", "down":
		if m.ConflictCursor < len(members)-1 {
			m.ConflictCursor++
		}
	case "k", "up":
		if m.ConflictCursor > 0 {
			m.ConflictCursor--
		}
	case "p":
		chosen := members[m.ConflictCursor]
		return m.applyPrioritize(chosen.ID)
	case "s":
		return m.applySnooze(m.cfg.SnoozeDelay())
	case "esc":
		// Dismissal without resolution: the scanner will re-prompt on its
		// next pass, so nothing is recorded in the cooldown ledger.
		m.Pending = nil
		m.Status = StatusBar{Text: "conflict dismissed"}
	}
	return m
}

func (m Model) renderConflictsView() string {
	data := views.ConflictsPanelData{}
	if m.Scanner != nil {
		data.Dropped = m.Scanner.Dropped()
	}
	if m.Pending == nil {
		return views.RenderConflictsPanel(data)
	}
	data.Pending = true
	for i, member := range m.Pending.Group.Members {
		data.Members = append(data.Members, views.ConflictMemberData{
			EntryID:  member.ID,
			Start:    member.Start.Format(clockLayout),
			End:      member.End.Format(clockLayout),
			Priority: member.Priority,
			Selected: i == m.ConflictCursor,
		})
	}
	return views.RenderConflictsPanel(data)
}

func (m Model) conflictResolvedStatus(verb string, affected int) StatusBar {
	return StatusBar{Text: fmt.Sprintf("conflict resolved: %s (%d occurrence(s) updated)", verb, affected)}
}
