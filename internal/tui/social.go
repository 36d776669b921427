package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/fitline/pkg/client"
	"github.com/naveenspark/fitline/pkg/domain"
)

// feedPollInterval is how often the activity feed auto-refreshes.
const feedPollInterval = 30 * time.Second

type feedTickMsg struct {
	gen int
}

type socialLoadedMsg struct {
	gen   int
	feed  []domain.Activity
	board []domain.LeaderboardEntry
	err   error
}

func (m socialLoadedMsg) failure() error { return m.err }

type socialTab int

const (
	socialFeed socialTab = iota
	socialBoard
)

type socialModel struct {
	client  *client.Client
	tab     socialTab
	feed    []domain.Activity
	board   []domain.LeaderboardEntry
	gen     int
	loading bool
	err     string
	width   int
	height  int
}

func newSocialModel(c *client.Client) socialModel {
	return socialModel{client: c, loading: true}
}

// enter starts a fresh polling generation. Ticks from an earlier visit
// carry a stale gen and are dropped.
func (m socialModel) enter() (socialModel, tea.Cmd) {
	m.gen++
	return m, m.load(m.gen)
}

func (m socialModel) leave() socialModel {
	m.gen++
	return m
}

func (m socialModel) load(gen int) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx := context.Background()
		feed, err := c.GetActivityFeed(ctx)
		if err != nil {
			return socialLoadedMsg{gen: gen, err: err}
		}
		board, err := c.GetLeaderboard(ctx)
		if err != nil {
			return socialLoadedMsg{gen: gen, err: err}
		}
		return socialLoadedMsg{gen: gen, feed: feed, board: board}
	}
}

func feedTickCmd(gen int) tea.Cmd {
	return tea.Tick(feedPollInterval, func(time.Time) tea.Msg {
		return feedTickMsg{gen: gen}
	})
}

func (m socialModel) Update(msg tea.Msg) (socialModel, tea.Cmd) {
	switch msg := msg.(type) {
	case socialLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = errText(msg.err)
		} else {
			m.err = ""
			m.feed = msg.feed
			m.board = msg.board
		}
		if msg.gen != m.gen {
			return m, nil
		}
		return m, feedTickCmd(m.gen)

	case feedTickMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		return m, m.load(m.gen)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			m.tab = 1 - m.tab
		case "r":
			m.loading = true
			m.gen++
			return m, m.load(m.gen)
		}
	}
	return m, nil
}

func (m socialModel) helpKeys() string {
	return helpBar("1-6", "tabs", "tab", "feed/leaderboard", "r", "refresh", "h", "help", "q", "quit")
}

func (m socialModel) View() string {
	if m.loading && len(m.feed) == 0 && len(m.board) == 0 {
		return " " + dimStyle.Render("loading...")
	}

	var b strings.Builder
	feedLabel, boardLabel := dimStyle.Render("Activity"), dimStyle.Render("Leaderboard")
	if m.tab == socialFeed {
		feedLabel = accentStyle.Underline(true).Render("Activity")
	} else {
		boardLabel = accentStyle.Underline(true).Render("Leaderboard")
	}
	b.WriteString("\n " + feedLabel + "   " + boardLabel + "\n\n")

	if m.err != "" {
		b.WriteString(" " + errorStyle.Render("error: "+m.err) + "\n")
	}

	if m.tab == socialBoard {
		if len(m.board) == 0 {
			b.WriteString(" " + dimStyle.Render("no rankings yet") + "\n")
		}
		for _, e := range m.board {
			rank := rankStyle(e.Rank).Render(fmt.Sprintf("%3d", e.Rank))
			fmt.Fprintf(&b, " %s  %s %s\n", rank, normalStyle.Render(fmt.Sprintf("%-20s", truncStr(e.Username, 20))),
				dimStyle.Render(fmt.Sprintf("%d workouts · %d day streak", e.Workouts, e.Streak)))
		}
		return b.String()
	}

	if len(m.feed) == 0 {
		b.WriteString(" " + dimStyle.Render("no activity yet") + "\n")
	}
	for _, a := range m.feed {
		when := formatTime(a.When())
		if when == "" {
			when = a.Time
		}
		line := selectedStyle.Render(a.Username) + " " + normalStyle.Render(a.Action)
		if a.Likes > 0 || a.Comments > 0 {
			line += " " + metaStyle.Render(fmt.Sprintf("♥ %d  ✎ %d", a.Likes, a.Comments))
		}
		fmt.Fprintf(&b, " %s  %s\n", metaStyle.Render(fmt.Sprintf("%10s", truncStr(when, 10))), line)
	}
	return b.String()
}
