package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/fitline/pkg/client"
	"github.com/naveenspark/fitline/pkg/domain"
	"github.com/naveenspark/fitline/pkg/entitlement"
)

// recentLogs is how many workout logs the dashboard lists.
const recentLogs = 5

// dashboardLoadedMsg carries the result of GetMe + GetUserStats + ListWorkoutLogs.
type dashboardLoadedMsg struct {
	me    *domain.User
	stats *domain.UserStats
	logs  []domain.WorkoutLog
	ent   domain.Entitlement
	err   error
}

func (m dashboardLoadedMsg) failure() error { return m.err }

type dashboardModel struct {
	client  *client.Client
	ledger  *entitlement.Ledger
	me      *domain.User
	stats   *domain.UserStats
	logs    []domain.WorkoutLog
	ent     domain.Entitlement
	loading bool
	err     string
	width   int
	height  int
}

func newDashboardModel(c *client.Client, ledger *entitlement.Ledger) dashboardModel {
	return dashboardModel{client: c, ledger: ledger, loading: true}
}

func (m dashboardModel) Init() tea.Cmd {
	return m.load()
}

func (m dashboardModel) load() tea.Cmd {
	c, ledger := m.client, m.ledger
	return func() tea.Msg {
		ctx := context.Background()
		me, err := c.GetMe(ctx)
		if err != nil {
			return dashboardLoadedMsg{err: err}
		}
		// Stats and logs are secondary; the profile alone is enough to render.
		stats, err := c.GetUserStats(ctx)
		if err != nil {
			stats = nil
		}
		logs, err := c.ListWorkoutLogs(ctx)
		if err != nil {
			logs = nil
		}
		var ent domain.Entitlement
		if ledger != nil {
			ent, _ = ledger.Load()
		}
		return dashboardLoadedMsg{me: me, stats: stats, logs: logs, ent: ent}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = errText(msg.err)
			return m, nil
		}
		m.err = ""
		m.me = msg.me
		m.stats = msg.stats
		m.logs = msg.logs
		m.ent = msg.ent

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, m.load()
		}
	}
	return m, nil
}

func (m dashboardModel) helpKeys() string {
	return helpBar("1-6", "tabs", "r", "refresh", "L", "logout", "h", "help", "q", "quit")
}

func (m dashboardModel) View() string {
	if m.loading && m.me == nil {
		return " " + dimStyle.Render("loading dashboard...")
	}
	if m.err != "" {
		return " " + errorStyle.Render("error: "+m.err)
	}
	if m.me == nil {
		return ""
	}

	var b strings.Builder
	name := selectedStyle.Render(m.me.Username)
	if m.ent.IsPremium {
		name += " " + premiumStyle.Render("★ premium")
	}
	fmt.Fprintf(&b, "\n Welcome back, %s\n", name)
	fmt.Fprintf(&b, " %s\n\n", metaStyle.Render(m.me.FitnessGoal.Label()+" · "+string(m.me.ExperienceLevel)))

	b.WriteString(" " + sectionHeaderStyle.Render("This week") + "\n")
	if m.stats == nil {
		b.WriteString("   " + dimStyle.Render("stats unavailable") + "\n")
	} else {
		s := m.stats
		rows := []struct {
			label string
			value string
		}{
			{"workouts", fmt.Sprintf("%d total · %d this week", s.TotalWorkouts, s.WorkoutsThisWk)},
			{"streak", fmt.Sprintf("%d days", s.CurrentStreak)},
			{"calories", fmt.Sprintf("%.0f kcal", s.TotalCalories)},
			{"time", fmt.Sprintf("%d min", s.TotalMinutes)},
			{"records", fmt.Sprintf("%d personal bests", s.PersonalBests)},
		}
		for _, r := range rows {
			fmt.Fprintf(&b, "   %s %s\n", dimStyle.Render(fmt.Sprintf("%-9s", r.label)), normalStyle.Render(r.value))
		}
	}

	b.WriteString("\n " + sectionHeaderStyle.Render("Recent workouts") + "\n")
	if len(m.logs) == 0 {
		b.WriteString("   " + dimStyle.Render("nothing logged yet, press 2 to build a plan") + "\n")
	}
	for i, l := range m.logs {
		if i == recentLogs {
			break
		}
		line := fmt.Sprintf("%d×%d", l.Sets, l.Reps)
		if l.Weight > 0 {
			line += fmt.Sprintf(" @ %g", l.Weight)
		}
		fmt.Fprintf(&b, "   %s  %s  %s\n", metaStyle.Render(fmt.Sprintf("%-10s", l.Date)), normalStyle.Render(truncStr(l.Exercise, 32)), dimStyle.Render(line))
	}

	if !m.ent.VerifiedAt.IsZero() {
		b.WriteString("\n " + metaStyle.Render("premium confirmed "+m.ent.VerifiedAt.Format(time.DateOnly)) + "\n")
	}
	return b.String()
}
