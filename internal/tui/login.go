package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/fitline/pkg/client"
	"github.com/naveenspark/fitline/pkg/domain"
)

type loginMode int

const (
	loginModeSignIn loginMode = iota
	loginModeRegister
)

// Register form field order.
const (
	regUsername = iota
	regEmail
	regPassword
	regConfirm
	regGoal
	regLevel
)

// authDoneMsg is the result of Login or Register.
type authDoneMsg struct {
	user *domain.User
	err  error
}

func (m authDoneMsg) failure() error { return m.err }

type loginModel struct {
	client *client.Client
	mode   loginMode
	signIn form
	signUp form
	busy   bool
	err    string
	notice string
	width  int
	height int
}

func newLoginModel(c *client.Client) loginModel {
	goals := make([]string, len(domain.Goals))
	for i, g := range domain.Goals {
		goals[i] = string(g)
	}
	levels := make([]string, len(domain.Levels))
	for i, l := range domain.Levels {
		levels[i] = string(l)
	}
	return loginModel{
		client: c,
		signIn: newForm(
			field{label: "username", placeholder: "your username"},
			field{label: "password", secret: true},
		),
		signUp: newForm(
			field{label: "username", placeholder: "3-150 characters"},
			field{label: "email", placeholder: "you@example.com"},
			field{label: "password", placeholder: "at least 8 characters", secret: true},
			field{label: "confirm", secret: true},
			field{label: "goal", options: goals},
			field{label: "level", options: levels},
		),
	}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case authDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.err = errText(msg.err)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+r":
			if m.mode == loginModeSignIn {
				m.mode = loginModeRegister
			} else {
				m.mode = loginModeSignIn
			}
			m.err = ""
			return m, nil
		case "enter":
			return m.submit()
		}
		if m.mode == loginModeSignIn {
			m.signIn = m.signIn.update(msg)
		} else {
			m.signUp = m.signUp.update(msg)
		}
	}
	return m, nil
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	c := m.client
	m.err = ""
	m.notice = ""

	if m.mode == loginModeSignIn {
		username := m.signIn.value(0)
		password := m.signIn.fields[1].value
		if username == "" || password == "" {
			m.err = "username and password are required"
			return m, nil
		}
		m.busy = true
		return m, func() tea.Msg {
			user, err := c.Login(context.Background(), username, password)
			return authDoneMsg{user: user, err: err}
		}
	}

	req := client.RegisterRequest{
		Username:        m.signUp.value(regUsername),
		Email:           m.signUp.value(regEmail),
		Password:        m.signUp.fields[regPassword].value,
		Password2:       m.signUp.fields[regConfirm].value,
		FitnessGoal:     domain.Goal(m.signUp.value(regGoal)),
		ExperienceLevel: domain.Level(m.signUp.value(regLevel)),
	}
	m.busy = true
	return m, func() tea.Msg {
		user, err := c.Register(context.Background(), req)
		return authDoneMsg{user: user, err: err}
	}
}

func (m loginModel) helpKeys() string {
	toggle := "register"
	if m.mode == loginModeRegister {
		toggle = "sign in"
	}
	return helpBar("tab", "next", "enter", "submit", "ctrl+r", toggle, "ctrl+c", "quit")
}

func (m loginModel) View() string {
	var b strings.Builder
	if m.mode == loginModeSignIn {
		b.WriteString("\n " + sectionHeaderStyle.Render("Sign in") + "\n\n")
		b.WriteString(m.signIn.view())
	} else {
		b.WriteString("\n " + sectionHeaderStyle.Render("Create an account") + "\n\n")
		b.WriteString(m.signUp.view())
	}
	b.WriteString("\n")
	switch {
	case m.busy:
		b.WriteString(" " + dimStyle.Render("contacting server...") + "\n")
	case m.err != "":
		b.WriteString(" " + errorStyle.Render(m.err) + "\n")
	case m.notice != "":
		b.WriteString(" " + accentStyle.Render(m.notice) + "\n")
	}
	return b.String()
}
