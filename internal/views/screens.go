package views

import (
	"fmt"
	"strings"
)

// ExecutionLinkData is one step of the active task chain, root first.
type ExecutionLinkData struct {
	ID          string
	Name        string
	Kind        string
	StartsAt    string
	EndsAt      string
	ProgressPct float64
}

type ExecutionPanelData struct {
	Now          string
	Chain        []ExecutionLinkData
	ProgressView string
}

func RenderExecutionPanel(data ExecutionPanelData) string {
	var b strings.Builder
	b.WriteString("executing now:\n")
	b.WriteString(fmt.Sprintf("clock: %s\n", data.Now))
	if len(data.Chain) == 0 {
		b.WriteString("(nothing scheduled right now)")
		return b.String()
	}
	for depth, link := range data.Chain {
		indent := strings.Repeat("  ", depth)
		marker := "-"
		if depth == len(data.Chain)-1 {
			marker = ">"
		}
		b.WriteString(fmt.Sprintf("%s%s [%s] %s  %s - %s  %.0f%%\n",
			indent, marker, strings.ToUpper(link.Kind), link.Name, link.StartsAt, link.EndsAt, link.ProgressPct))
	}
	if data.ProgressView != "" {
		b.WriteString("task progress: " + data.ProgressView)
	}
	return strings.TrimSpace(b.String())
}

// DayRecordData is one flattened interval inside the day window.
type DayRecordData struct {
	ID       string
	Name     string
	Start    string
	End      string
	Depth    int
	Partial  bool
	Selected bool
}

type DayPanelData struct {
	WindowStart string
	WindowEnd   string
	Records     []DayRecordData
}

func RenderDayPanel(data DayPanelData) string {
	var b strings.Builder
	b.WriteString("day:\n")
	b.WriteString(fmt.Sprintf("window: %s .. %s\n", data.WindowStart, data.WindowEnd))
	b.WriteString("actions: [j/k]move [h/l]shift window\n")
	if len(data.Records) == 0 {
		b.WriteString("(window empty)")
		return b.String()
	}
	for _, r := range data.Records {
		cursor := " "
		if r.Selected {
			cursor = ">"
		}
		indent := strings.Repeat("  ", r.Depth)
		suffix := ""
		if r.Partial {
			suffix = " (cut)"
		}
		b.WriteString(fmt.Sprintf("%s %s%s - %s  %s%s\n", cursor, indent, r.Start, r.End, r.Name, suffix))
	}
	return strings.TrimSpace(b.String())
}

// ConflictMemberData is one scheduled occurrence in a conflict group.
type ConflictMemberData struct {
	EntryID  string
	Start    string
	End      string
	Priority int
	Selected bool
}

type ConflictsPanelData struct {
	Pending bool
	Members []ConflictMemberData
	Dropped uint64
}

func RenderConflictsPanel(data ConflictsPanelData) string {
	var b strings.Builder
	b.WriteString("conflicts:\n")
	if !data.Pending {
		b.WriteString("(no live conflicts)")
		if data.Dropped > 0 {
			b.WriteString(fmt.Sprintf("\ndropped prompts: %d", data.Dropped))
		}
		return b.String()
	}
	b.WriteString("actions: [j/k]move [p]prioritize selected [s]snooze others [esc]dismiss\n")
	for _, m := range data.Members {
		cursor := " "
		if m.Selected {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %s  %s - %s  prio:%d\n", cursor, m.EntryID, m.Start, m.End, m.Priority))
	}
	if data.Dropped > 0 {
		b.WriteString(fmt.Sprintf("dropped prompts: %d", data.Dropped))
	}
	return strings.TrimSpace(b.String())
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

type HelpPanelData struct {
	CurrentView string
	// Body is the markdown help document for the current view.
	Body     string
	HelpView string
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s\n%s",
		RenderMarkdown(data.Body),
		data.HelpView,
	)
}

func RenderConflictAlert(memberCount int) string {
	if memberCount < 2 {
		return ""
	}
	return fmt.Sprintf("conflict: %d items scheduled at once, press 3 to resolve", memberCount)
}
