package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"noctisium/internal/analytics"
	"noctisium/internal/engine"
	"noctisium/internal/storage"
	"noctisium/internal/ui"
)

type dashboardModel struct {
	ctx  context.Context
	svc  *engine.Service
	user string

	width  int
	height int

	analytics   *analytics.Snapshot
	progression *engine.ProgressionSnapshot
	unlocks     []storage.UnlockRecord

	loading bool
	err     error
}

type loadedMsg struct {
	analytics   *analytics.Snapshot
	progression *engine.ProgressionSnapshot
	unlocks     []storage.UnlockRecord
	err         error
}

func newDashboardModel(ctx context.Context, svc *engine.Service, user string) dashboardModel {
	return dashboardModel{
		ctx:     ctx,
		svc:     svc,
		user:    user,
		loading: true,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m dashboardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.svc.Analytics(m.ctx, m.user)
		if err != nil {
			return loadedMsg{err: err}
		}
		prog, err := m.svc.Progression(m.ctx, m.user)
		if err != nil {
			return loadedMsg{err: err}
		}
		unlocks, err := m.svc.Unlocks(m.ctx, m.user)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{analytics: snap, progression: prog, unlocks: unlocks}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.analytics = msg.analytics
		m.progression = msg.progression
		m.unlocks = msg.unlocks
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}
	return m, nil
}

func (m dashboardModel) View() string {
	if m.err != nil {
		return ui.Bad.Render(ui.IconError+" "+m.err.Error()) + "\n"
	}
	if m.loading || m.analytics == nil || m.progression == nil {
		return ui.Muted.Render("Loading…") + "\n"
	}

	var b strings.Builder
	b.WriteString(ui.Heading(ui.IconChart, "Noctisium Dashboard") + "\n\n")

	b.WriteString(m.statsPanel())
	b.WriteString("\n")
	b.WriteString(m.trendPanel())
	b.WriteString("\n")
	b.WriteString(m.highlightsPanel())
	b.WriteString("\n")
	b.WriteString(m.unlocksPanel())
	b.WriteString("\n")
	b.WriteString(ui.Muted.Render("r refresh · q quit"))
	return b.String()
}

func (m dashboardModel) statsPanel() string {
	p := m.progression
	var rows []string
	rows = append(rows, fmt.Sprintf("%s %d   %s %s (%d RR)",
		ui.Key.Render("Level"), p.Level,
		ui.Key.Render("Rank"), ui.Gold.Render(string(p.Rank.Tier)), p.Rank.RR))
	for _, st := range p.Stats {
		span := st.XP + st.XPForNext
		frac := 0.0
		if span > 0 {
			frac = float64(st.XP) / float64(span)
		}
		rows = append(rows, fmt.Sprintf("%s lvl %2d %s", st.Stat, st.Level, ui.Bar(frac, 16)))
	}
	return ui.Panel.Render(ui.PanelTitle.Render("Character") + "\n" + strings.Join(rows, "\n"))
}

func (m dashboardModel) trendPanel() string {
	trend := m.analytics.Trend
	if len(trend) == 0 {
		return ui.Panel.Render(ui.PanelTitle.Render("Trend") + "\n" + ui.Muted.Render("No weeks logged yet."))
	}
	values := make([]float64, len(trend))
	for i, p := range trend {
		values[i] = p.Completion
	}
	last := trend[len(trend)-1]
	change := fmt.Sprintf("%+.0f", last.Change)
	if last.Change >= 0 {
		change = ui.Good.Render(change)
	} else {
		change = ui.Bad.Render(change)
	}
	body := fmt.Sprintf("%s\n%s %.0f%%  %s %s  %s %.1f%%",
		ui.Spark(values),
		ui.Key.Render("This week:"), last.Completion,
		ui.Key.Render("Δ:"), change,
		ui.Key.Render("4-week avg:"), last.MonthlyAvg)
	return ui.Panel.Render(ui.PanelTitle.Render("Trend") + "\n" + body)
}

func (m dashboardModel) highlightsPanel() string {
	highs := analytics.TopHighlights(m.analytics.Highlights, 5)
	recs := analytics.TopRecommendations(m.analytics.Recommendations, 3)
	if len(highs) == 0 && len(recs) == 0 {
		return ui.Panel.Render(ui.PanelTitle.Render("Insights") + "\n" + ui.Muted.Render("Nothing to report yet."))
	}
	var rows []string
	for _, h := range highs {
		rows = append(rows, h.Icon+" "+h.Text)
	}
	for _, r := range recs {
		rows = append(rows, r.Icon+" "+ui.Muted.Render(r.Text))
	}
	return ui.Panel.Render(ui.PanelTitle.Render("Insights") + "\n" + strings.Join(rows, "\n"))
}

func (m dashboardModel) unlocksPanel() string {
	if len(m.unlocks) == 0 {
		return ui.Panel.Render(ui.PanelTitle.Render("Achievements") + "\n" + ui.Muted.Render("None unlocked yet."))
	}
	limit := 5
	if len(m.unlocks) < limit {
		limit = len(m.unlocks)
	}
	var rows []string
	for _, rec := range m.unlocks[:limit] {
		def, ok := m.svc.Registry().Get(rec.AchievementKey)
		if !ok {
			rows = append(rows, ui.Muted.Render(rec.AchievementKey))
			continue
		}
		rows = append(rows, fmt.Sprintf("%s %s %s", def.Icon, def.Title,
			ui.Muted.Render(rec.UnlockedAt.Format("2006-01-02"))))
	}
	return ui.Panel.Render(ui.PanelTitle.Render("Achievements") + "\n" + strings.Join(rows, "\n"))
}

// Run starts the full-screen dashboard.
func Run(ctx context.Context, svc *engine.Service, user string) error {
	p := tea.NewProgram(newDashboardModel(ctx, svc, user), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
