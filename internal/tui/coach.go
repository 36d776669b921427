package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/fitline/internal/logging"
	"github.com/naveenspark/fitline/pkg/client"
	"github.com/naveenspark/fitline/pkg/entitlement"
)

const (
	premiumRequired    = "Premium membership required. Redirecting..."
	coachUnavailable   = "Our AI assistant is currently unavailable. Please try again later."
	coachPlaceholder   = "Ask me anything about fitness..."
	coachLockedMessage = "Premium membership required"
)

var suggestedPrompts = []string{
	"Best chest exercises?",
	"How to lose belly fat?",
	"Beginner workout plan",
	"Pre-workout meal ideas",
	"How to improve my squat form?",
	"Best exercises for back pain",
}

// coachPreparedMsg ends the pre-poll step: reconciling a pending checkout
// when there is one.
type coachPreparedMsg struct {
	gen        int
	reconciled bool
	err        error
}

func (m coachPreparedMsg) failure() error { return m.err }

// coachAttemptMsg is the outcome of one status check.
type coachAttemptMsg struct {
	gen     int
	premium bool
	err     error
}

func (m coachAttemptMsg) failure() error { return m.err }

type coachTickMsg struct{ gen int }

type coachRedirectMsg struct{ gen int }

type coachReplyMsg struct {
	reply string
	err   error
}

func (m coachReplyMsg) failure() error { return m.err }

type chatLine struct {
	fromUser bool
	text     string
}

type coachModel struct {
	client   *client.Client
	verifier *entitlement.Verifier
	ledger   *entitlement.Ledger
	log      *slog.Logger

	machine *entitlement.Machine
	gen     int
	ctx     context.Context
	cancel  context.CancelFunc
	status  string
	denied  bool

	lines        []chatLine
	input        string
	inputFocused bool
	suggestion   int
	waiting      bool
	err          string
	width        int
	height       int
}

func newCoachModel(c *client.Client, v *entitlement.Verifier, ledger *entitlement.Ledger, log *slog.Logger) coachModel {
	if log == nil {
		log = logging.Discard()
	}
	return coachModel{client: c, verifier: v, ledger: ledger, log: log, suggestion: -1}
}

// verified reports whether premium access was confirmed on this visit.
func (m coachModel) verified() bool {
	return m.machine != nil && m.machine.State() == entitlement.Verified
}

func (m coachModel) editing() bool {
	return m.verified() && m.inputFocused
}

// enter starts a verification run for this visit. Each visit gets a new
// generation and context; leave invalidates both.
func (m coachModel) enter() (coachModel, tea.Cmd) {
	m = m.leave()
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.machine = m.verifier.NewMachine()
	m.machine.Start()
	m.denied = false
	m.err = ""
	m.status = "Verifying premium status..."
	return m, m.prepare(m.ctx, m.gen)
}

// leave cancels any in-flight check. Messages from the old generation are
// dropped when they arrive.
func (m coachModel) leave() coachModel {
	m.gen++
	if m.cancel != nil {
		m.cancel()
		m.ctx, m.cancel = nil, nil
	}
	if m.machine != nil {
		m.machine.Cancel()
	}
	m.inputFocused = false
	return m
}

func (m coachModel) prepare(ctx context.Context, gen int) tea.Cmd {
	v, ledger, log := m.verifier, m.ledger, m.log
	return func() tea.Msg {
		if ledger == nil {
			return coachPreparedMsg{gen: gen}
		}
		id, err := ledger.Pending()
		if err != nil {
			log.Warn("read pending checkout", logging.Err(err))
			return coachPreparedMsg{gen: gen}
		}
		if id == "" {
			return coachPreparedMsg{gen: gen}
		}
		return coachPreparedMsg{gen: gen, reconciled: true, err: v.Prepare(ctx, id)}
	}
}

func (m coachModel) attempt(gen int) tea.Cmd {
	v, ctx := m.verifier, m.ctx
	if ctx == nil {
		return nil
	}
	return func() tea.Msg {
		premium, err := v.Attempt(ctx)
		return coachAttemptMsg{gen: gen, premium: premium, err: err}
	}
}

func (m coachModel) Update(msg tea.Msg) (coachModel, tea.Cmd) {
	switch msg := msg.(type) {
	case coachPreparedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if errors.Is(msg.err, client.ErrSessionExpired) {
			m.machine.Cancel()
			return m, nil
		}
		if msg.err != nil {
			m.log.Warn("reconcile checkout", logging.Err(msg.err))
		}
		if msg.reconciled {
			m.status = "Confirming your payment..."
		}
		return m, m.attempt(m.gen)

	case coachAttemptMsg:
		if msg.gen != m.gen || m.machine.State() != entitlement.Polling {
			return m, nil
		}
		if errors.Is(msg.err, client.ErrSessionExpired) {
			m.machine.Cancel()
			return m, nil
		}
		switch m.verifier.Record(m.machine, msg.premium, msg.err) {
		case entitlement.Verified:
			m.status = ""
			m.inputFocused = true
			return m, nil
		case entitlement.Exhausted:
			m.denied = true
			m.status = premiumRequired
			gen := m.gen
			return m, tea.Tick(m.verifier.Config().RedirectDelay, func(time.Time) tea.Msg {
				return coachRedirectMsg{gen: gen}
			})
		}
		m.status = fmt.Sprintf("Verifying premium status... (%d/%d)", m.machine.Attempts(), m.machine.MaxAttempts())
		gen := m.gen
		return m, tea.Tick(m.verifier.Config().Interval, func(time.Time) tea.Msg {
			return coachTickMsg{gen: gen}
		})

	case coachTickMsg:
		if msg.gen != m.gen || m.machine.State() != entitlement.Polling {
			return m, nil
		}
		return m, m.attempt(m.gen)

	case coachRedirectMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		return m, func() tea.Msg { return switchViewMsg{to: viewMembership} }

	case coachReplyMsg:
		m.waiting = false
		if msg.err != nil {
			text := coachUnavailable
			var he *client.HTTPError
			if errors.As(msg.err, &he) && he.Message != "" && he.StatusCode < 500 {
				text = he.Message
			}
			m.lines = append(m.lines, chatLine{text: text})
			m.err = text
			return m, nil
		}
		m.err = ""
		m.lines = append(m.lines, chatLine{text: msg.reply})
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if !m.verified() {
			return m, nil
		}
		if !m.inputFocused {
			if msg.String() == "enter" || msg.String() == "i" {
				m.inputFocused = true
			}
			return m, nil
		}
		return m.updateInput(msg)
	}
	return m, nil
}

func (m coachModel) updateInput(msg tea.KeyMsg) (coachModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.inputFocused = false
	case "tab":
		if m.input == "" || m.suggestion >= 0 {
			m.suggestion = (m.suggestion + 1) % len(suggestedPrompts)
			m.input = suggestedPrompts[m.suggestion]
		}
	case "enter":
		text := strings.TrimSpace(m.input)
		if text == "" || m.waiting {
			return m, nil
		}
		m.lines = append(m.lines, chatLine{fromUser: true, text: text})
		m.input = ""
		m.suggestion = -1
		m.waiting = true
		c := m.client
		return m, func() tea.Msg {
			reply, err := c.AskCoach(context.Background(), text)
			return coachReplyMsg{reply: reply, err: err}
		}
	default:
		m.input = editKey(m.input, msg)
		m.suggestion = -1
	}
	return m, nil
}

func (m coachModel) helpKeys() string {
	if m.editing() {
		return helpBar("enter", "send", "tab", "suggest", "esc", "nav")
	}
	if m.verified() {
		return helpBar("1-6", "tabs", "enter", "type", "h", "help", "q", "quit")
	}
	return helpBar("1-6", "tabs", "h", "help", "q", "quit")
}

func (m coachModel) View() string {
	var b strings.Builder
	b.WriteString("\n " + premiumStyle.Render("Premium AI Fitness Assistant") + "\n\n")

	if !m.verified() {
		if m.denied {
			b.WriteString(" " + errorStyle.Render(m.status) + "\n")
		} else if m.status != "" {
			b.WriteString(" " + dimStyle.Render(m.status) + "\n")
		}
		b.WriteString("\n " + inputPromptStyle.Render("> ") + inputPlaceholderStyle.Render(coachLockedMessage) + "\n")
		return b.String()
	}

	if len(m.lines) == 0 {
		b.WriteString(" " + dimStyle.Render("Try one of these (tab to fill):") + "\n")
		for _, p := range suggestedPrompts {
			b.WriteString("   " + metaStyle.Render("· "+p) + "\n")
		}
	}
	width := max(m.width-10, 20)
	for _, l := range m.lines {
		if l.fromUser {
			b.WriteString(" " + chatLabelStyle.Render("you  ") + " " + chatUserStyle.Render(l.text) + "\n")
			continue
		}
		wrapped := lipgloss.NewStyle().Width(width).Render(l.text)
		for i, line := range strings.Split(wrapped, "\n") {
			label := "     "
			if i == 0 {
				label = "coach"
			}
			b.WriteString(" " + chatLabelStyle.Render(label) + " " + chatCoachStyle.Render(line) + "\n")
		}
	}
	if m.waiting {
		b.WriteString(" " + dimStyle.Render("coach is typing...") + "\n")
	}

	b.WriteString("\n")
	switch {
	case m.inputFocused && m.input == "":
		b.WriteString(" " + inputPromptStyle.Render("> ") + accentStyle.Render("█") + inputPlaceholderStyle.Render(" "+coachPlaceholder) + "\n")
	case m.inputFocused:
		b.WriteString(" " + inputPromptStyle.Render("> ") + normalStyle.Render(m.input) + accentStyle.Render("█") + "\n")
	default:
		b.WriteString(" " + inputPromptStyle.Render("> ") + inputPlaceholderStyle.Render(coachPlaceholder) + "\n")
	}
	b.WriteString(" " + metaStyle.Render("Responses may take a few seconds.") + "\n")
	return b.String()
}
