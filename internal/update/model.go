// Package update holds the bubbletea application model: current view, the
// in-memory plan snapshot, palette and conflict-prompt state, and the update
// loop that mutates them.
package update

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/mohankv/timebox/internal/conflict"
	"github.com/mohankv/timebox/internal/model"
)

type View string

const (
	ViewExecution View = "Execution"
	ViewDay       View = "Day"
	ViewConflicts View = "Conflicts"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Execution string
	Day       string
	Conflicts string
	Help      string
	Quit      string
}

// Persister is the optional write-behind for palette mutations. A nil
// persister keeps everything in memory, which is what tests use.
type Persister interface {
	SaveItem(ctx context.Context, it model.Item) error
	CreateEntry(ctx context.Context, e model.BaseCalendarEntry) error
	DeleteEntry(ctx context.Context, id string) error
	ApplyPrioritize(ctx context.Context, updated []conflict.RootInterval) error
	ApplySnooze(ctx context.Context, updated []conflict.RootInterval) error
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Model struct {
	CurrentView View

	// Clock is injected so tests can pin the rendered instant.
	Clock func() time.Time

	Col model.Collection
	Cal model.Calendar

	Scanner *conflict.Scanner
	// Pending is the conflict group currently awaiting a resolution choice.
	Pending        *conflict.Event
	ConflictCursor int

	// DayShift moves the day window forward/backward from now.
	DayShift  time.Duration
	DayCursor int

	Palette     CommandPaletteState
	HelpVisible bool
	Status      StatusBar
	Keys        GlobalKeyMap
	Quitting    bool
	LastError   error

	store  Persister
	cfg    RuntimeConfig
	relSeq int

	commandInput textinput.Model
	taskProgress progress.Model
	helpModel    help.Model
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type ConflictDetectedMsg struct {
	Event conflict.Event
}

type ClockTickMsg struct{}

func NewModel(col model.Collection, cal model.Calendar) Model {
	m := Model{
		CurrentView: ViewExecution,
		Clock:       func() time.Time { return time.Now().UTC() },
		Col:         col,
		Cal:         cal,
		cfg:         DefaultRuntimeConfig(),
		Keys: GlobalKeyMap{
			Execution: "1",
			Day:       "2",
			Conflicts: "3",
			Help:      "?",
			Quit:      "q",
		},
	}
	m.commandInput = textinput.New()
	m.commandInput.Placeholder = "schedule <child> into <parent> at <offset>"
	m.commandInput.CharLimit = 160
	m.taskProgress = progress.New(progress.WithDefaultGradient())
	m.helpModel = help.New()
	return m
}

func NewModelWithRuntime(col model.Collection, cal model.Calendar, scanner *conflict.Scanner, store Persister, cfg RuntimeConfig) Model {
	m := NewModel(col, cal)
	m.Scanner = scanner
	m.store = store
	m.cfg = cfg
	return m
}

// nextRelationshipID mints a placement id unique across loaded and fresh
// placements.
func (m *Model) nextRelationshipID() string {
	m.relSeq++
	return fmt.Sprintf("rel-%d-%d", m.Clock().UnixNano(), m.relSeq)
}
