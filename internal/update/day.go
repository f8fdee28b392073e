package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mohankv/timebox/internal/resolver"
	"github.com/mohankv/timebox/internal/views"
)

func (m Model) dayWindow() resolver.Window {
	start := m.Clock().Add(m.DayShift)
	return resolver.Window{Start: start, End: start.Add(m.cfg.DayWindow())}
}

func (m Model) handleDayKey(msg tea.KeyMsg) Model {
	records, err := resolver.CollectWindow(m.Col, m.Cal, m.dayWindow())
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	switch msg.String() {
	case "j", "down":
		if m.DayCursor < len(records)-1 {
			m.DayCursor++
		}
	case "k", "up":
		if m.DayCursor > 0 {
			m.DayCursor--
		}
	case "l", "right":
		m.DayShift += m.cfg.DayWindow()
		m.DayCursor = 0
	case "h", "left":
		m.DayShift -= m.cfg.DayWindow()
		m.DayCursor = 0
	}
	return m
}

func (m Model) renderDayView() string {
	w := m.dayWindow()
	records, err := resolver.CollectWindow(m.Col, m.Cal, w)
	if err != nil {
		return "day:\nerror: " + err.Error()
	}

	data := views.DayPanelData{
		WindowStart: w.Start.Format(clockLayout),
		WindowEnd:   w.End.Format(clockLayout),
	}
	for i, r := range records {
		data.Records = append(data.Records, views.DayRecordData{
			ID:       r.Item.ID,
			Name:     r.Item.Name,
			Start:    r.Start.Format(clockLayout),
			End:      r.End.Format(clockLayout),
			Depth:    r.Depth,
			Partial:  !r.FullyInside,
			Selected: i == m.DayCursor,
		})
	}
	return views.RenderDayPanel(data)
}
