package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mohankv/timebox/internal/commands"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed", IsError: false}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		_ = cmd
		m.Palette.Input = m.commandInput.Value()
	}
	return m
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.Palette.Active = false
		m.Palette.Input = ""
		return m
	}

	next := m
	res, err := commands.Execute(cmd, commands.Handlers{
		Schedule: func(a commands.ScheduleArgs) (commands.Result, error) {
			updated, err := next.applySchedule(a.ParentID, a.ChildID, a.Offset)
			if err != nil {
				return commands.Result{}, err
			}
			next = updated
			return commands.Result{Message: next.Status.Text}, nil
		},
		Unschedule: func(a commands.UnscheduleArgs) (commands.Result, error) {
			updated, err := next.applyUnschedule(a.ParentID, a.RelationshipID)
			if err != nil {
				return commands.Result{}, err
			}
			next = updated
			return commands.Result{Message: next.Status.Text}, nil
		},
		Plan: func(a commands.PlanArgs) (commands.Result, error) {
			updated, err := next.applyPlan(a.ItemID, a.Start)
			if err != nil {
				return commands.Result{}, err
			}
			next = updated
			return commands.Result{Message: next.Status.Text}, nil
		},
		Drop: func(a commands.DropArgs) (commands.Result, error) {
			updated, err := next.applyDrop(a.EntryID)
			if err != nil {
				return commands.Result{}, err
			}
			next = updated
			return commands.Result{Message: next.Status.Text}, nil
		},
		Complete: func(a commands.CompleteArgs) (commands.Result, error) {
			updated, err := next.applyComplete(a.ParentID, a.RelationshipID)
			if err != nil {
				return commands.Result{}, err
			}
			next = updated
			return commands.Result{Message: next.Status.Text}, nil
		},
		Prioritize: func(a commands.PrioritizeArgs) (commands.Result, error) {
			if next.Pending == nil {
				return commands.Result{}, &commands.CommandError{
					Code: commands.ErrCodeInvalidArgument, Message: "no pending conflict",
				}
			}
			next = next.applyPrioritize(a.EntryID)
			if next.Status.IsError {
				return commands.Result{}, fmt.Errorf("%s", next.Status.Text)
			}
			return commands.Result{Message: next.Status.Text}, nil
		},
		Snooze: func(a commands.SnoozeArgs) (commands.Result, error) {
			if next.Pending == nil {
				return commands.Result{}, &commands.CommandError{
					Code: commands.ErrCodeInvalidArgument, Message: "no pending conflict",
				}
			}
			next = next.applySnooze(a.Delay)
			if next.Status.IsError {
				return commands.Result{}, fmt.Errorf("%s", next.Status.Text)
			}
			return commands.Result{Message: next.Status.Text}, nil
		},
		Show: func(a commands.ShowArgs) (commands.Result, error) {
			switch a.View {
			case "execution":
				next.CurrentView = ViewExecution
			case "day":
				next.CurrentView = ViewDay
			case "conflicts":
				next.CurrentView = ViewConflicts
			}
			return commands.Result{Message: "showing " + a.View}, nil
		},
	})

	m = next
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
	} else {
		m.Status = StatusBar{Text: res.Message, IsError: false}
	}
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	return m
}
