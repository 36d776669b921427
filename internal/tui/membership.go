package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/fitline/internal/browser"
	"github.com/naveenspark/fitline/pkg/client"
	"github.com/naveenspark/fitline/pkg/domain"
	"github.com/naveenspark/fitline/pkg/entitlement"
)

// membershipBenefits is what the premium tier unlocks.
var membershipBenefits = []string{
	"AI fitness coach, answers in seconds",
	"Personalized workout plans for every goal",
	"Nutrition guidance and meal ideas",
	"Support the people building fitline",
}

type checkoutStartedMsg struct {
	session *client.CheckoutSession
	opened  bool
	err     error
}

func (m checkoutStartedMsg) failure() error { return m.err }

type membershipLoadedMsg struct {
	ent domain.Entitlement
	err error
}

type membershipModel struct {
	client *client.Client
	ledger *entitlement.Ledger
	open   func(url string) error
	ent    domain.Entitlement
	busy   bool
	url    string
	status string
	err    string
	width  int
	height int
}

func newMembershipModel(c *client.Client, ledger *entitlement.Ledger) membershipModel {
	return membershipModel{client: c, ledger: ledger, open: browser.Open}
}

func (m membershipModel) Init() tea.Cmd {
	ledger := m.ledger
	return func() tea.Msg {
		if ledger == nil {
			return membershipLoadedMsg{}
		}
		ent, err := ledger.Load()
		return membershipLoadedMsg{ent: ent, err: err}
	}
}

// checkout creates a hosted payment page, records its session id as
// pending so the coach view reconciles it later, and opens the browser.
func (m membershipModel) checkout() tea.Cmd {
	c, ledger, open := m.client, m.ledger, m.open
	return func() tea.Msg {
		s, err := c.CreateCheckoutSession(context.Background(), client.CheckoutRequest{})
		if err != nil {
			return checkoutStartedMsg{err: err}
		}
		if s.SessionID != "" && ledger != nil {
			if err := ledger.SetPending(s.SessionID); err != nil {
				return checkoutStartedMsg{session: s, err: err}
			}
		}
		return checkoutStartedMsg{session: s, opened: open(s.URL) == nil}
	}
}

func (m membershipModel) Update(msg tea.Msg) (membershipModel, tea.Cmd) {
	switch msg := msg.(type) {
	case membershipLoadedMsg:
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.ent = msg.ent
		return m, nil

	case checkoutStartedMsg:
		m.busy = false
		if msg.err != nil {
			m.err = errText(msg.err)
			return m, nil
		}
		m.err = ""
		m.url = msg.session.URL
		if msg.opened {
			m.status = "Complete your payment in the browser, then press 5 to unlock the coach."
		} else {
			m.status = "Open this link to complete your payment, then press 5 to unlock the coach."
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "s":
			if m.busy || m.ent.IsPremium {
				return m, nil
			}
			m.busy = true
			m.err = ""
			return m, m.checkout()
		case "v":
			return m, func() tea.Msg { return switchViewMsg{to: viewCoach} }
		}
	}
	return m, nil
}

func (m membershipModel) helpKeys() string {
	if m.ent.IsPremium {
		return helpBar("1-6", "tabs", "v", "coach", "h", "help", "q", "quit")
	}
	return helpBar("1-6", "tabs", "enter", "subscribe", "v", "verify", "h", "help", "q", "quit")
}

func (m membershipModel) View() string {
	var b strings.Builder
	b.WriteString("\n " + premiumStyle.Render("fitline Premium") + "\n\n")
	for _, benefit := range membershipBenefits {
		b.WriteString("   " + okStyle.Render("✓") + " " + normalStyle.Render(benefit) + "\n")
	}
	b.WriteString("\n")

	switch {
	case m.ent.IsPremium:
		b.WriteString(" " + okStyle.Render("You are a premium member.") + "\n")
	case m.busy:
		b.WriteString(" " + dimStyle.Render("creating checkout session...") + "\n")
	case m.url != "":
		b.WriteString(" " + accentStyle.Render(m.status) + "\n")
		b.WriteString(" " + metaStyle.Render(m.url) + "\n")
	default:
		b.WriteString(" " + inputPromptStyle.Render("> ") + selectedStyle.Render("press enter to subscribe") + "\n")
	}
	if m.err != "" {
		b.WriteString("\n " + errorStyle.Render("error: "+m.err) + "\n")
	}
	return b.String()
}
