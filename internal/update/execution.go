package update

import (
	"time"

	"github.com/mohankv/timebox/internal/resolver"
	"github.com/mohankv/timebox/internal/views"
)

const clockLayout = "15:04:05"

func (m Model) renderExecutionView() string {
	now := m.Clock()
	chain, err := resolver.CurrentTaskChain(m.Col, m.Cal, now)
	if err != nil {
		return "executing now:\nerror: " + err.Error()
	}

	data := views.ExecutionPanelData{Now: now.Format(time.RFC3339)}
	for _, link := range chain {
		data.Chain = append(data.Chain, views.ExecutionLinkData{
			ID:          link.Item.ID,
			Name:        link.Item.Name,
			Kind:        string(link.Item.Kind),
			StartsAt:    link.Start.Format(clockLayout),
			EndsAt:      link.Item.End(link.Start).Format(clockLayout),
			ProgressPct: resolver.TaskProgress(link.Item, link.Start, now),
		})
	}
	if deepest, ok := chain.Deepest(); ok {
		pct := resolver.TaskProgress(deepest.Item, deepest.Start, now)
		data.ProgressView = m.taskProgress.ViewAs(pct / 100)
	}
	return views.RenderExecutionPanel(data)
}
