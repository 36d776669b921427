package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/fitline/internal/browser"
	"github.com/naveenspark/fitline/internal/logging"
	"github.com/naveenspark/fitline/internal/store"
	"github.com/naveenspark/fitline/pkg/client"
	"github.com/naveenspark/fitline/pkg/domain"
	"github.com/naveenspark/fitline/pkg/entitlement"
	"github.com/naveenspark/fitline/pkg/session"
)

type view int

const (
	viewLogin view = iota
	viewDashboard
	viewPlan
	viewSocial
	viewTools
	viewCoach
	viewMembership
)

// switchViewMsg asks the App to navigate, running the guard like a tab key.
type switchViewMsg struct {
	to view
}

type loggedOutMsg struct {
	err error
}

// Deps are the services the TUI drives.
type Deps struct {
	Client   *client.Client
	Guard    *session.Guard
	Verifier *entitlement.Verifier
	Ledger   *entitlement.Ledger
	Docs     *store.DB
	Log      *slog.Logger
}

// App is the root Bubbletea model.
type App struct {
	deps       Deps
	view       view
	login      loginModel
	dashboard  dashboardModel
	plan       planModel
	social     socialModel
	tools      toolsModel
	coach      coachModel
	membership membershipModel
	me         *domain.User
	helpOpen   bool
	helpCursor int
	width      int
	height     int
	frame      int // logo shimmer animation frame
}

// NewApp creates the TUI. The guard runs once here: a member with a usable
// credential starts on the dashboard, everyone else on the login screen.
func NewApp(d Deps) App {
	if d.Log == nil {
		d.Log = logging.Discard()
	}
	a := App{deps: d}
	a = a.reset()
	if a.authorized() {
		a.view = viewDashboard
	}
	return a
}

// reset replaces every view model, dropping whatever the last member saw.
func (a App) reset() App {
	d := a.deps
	a.login = newLoginModel(d.Client)
	a.dashboard = newDashboardModel(d.Client, d.Ledger)
	a.plan = newPlanModel(d.Client, d.Docs)
	a.social = newSocialModel(d.Client)
	a.tools = newToolsModel(d.Docs)
	a.coach = newCoachModel(d.Client, d.Verifier, d.Ledger, d.Log)
	a.membership = newMembershipModel(d.Client, d.Ledger)
	a.me = nil
	if a.width > 0 {
		a = a.resize(tea.WindowSizeMsg{Width: a.width, Height: a.height})
	}
	return a
}

func (a App) authorized() bool {
	return a.deps.Guard == nil || a.deps.Guard.Check() == session.Authorized
}

func (a App) Init() tea.Cmd {
	if a.view == viewDashboard {
		return tea.Batch(shimmerTickCmd(), a.dashboard.Init())
	}
	return shimmerTickCmd()
}

// navigate leaves the current view and enters v. Every protected view is
// guarded; an unauthorized member lands on the login screen.
func (a App) navigate(v view) (App, tea.Cmd) {
	if v != viewLogin && !a.authorized() {
		return a.toLogin("Please log in to continue.")
	}
	if v == a.view {
		return a, nil
	}

	switch a.view {
	case viewCoach:
		a.coach = a.coach.leave()
	case viewSocial:
		a.social = a.social.leave()
	case viewTools:
		a.tools = a.tools.leave()
	}

	a.view = v
	var cmd tea.Cmd
	switch v {
	case viewDashboard:
		cmd = a.dashboard.Init()
	case viewPlan:
		cmd = a.plan.Init()
	case viewSocial:
		a.social, cmd = a.social.enter()
	case viewTools:
		cmd = a.tools.Init()
	case viewCoach:
		a.coach, cmd = a.coach.enter()
	case viewMembership:
		cmd = a.membership.Init()
	}
	return a, cmd
}

// toLogin ends the visible session: polling stops, view state and the
// account's entitlement are dropped and the login screen shows notice.
func (a App) toLogin(notice string) (App, tea.Cmd) {
	if a.deps.Ledger != nil {
		if err := a.deps.Ledger.Reset(); err != nil {
			a.deps.Log.Warn("reset entitlement", logging.Err(err))
		}
	}
	a.coach = a.coach.leave()
	a.social = a.social.leave()
	a.tools = a.tools.leave()
	a = a.reset()
	a.view = viewLogin
	a.helpOpen = false
	a.login.notice = notice
	return a, nil
}

func (a App) logout() tea.Cmd {
	c := a.deps.Client
	return func() tea.Msg {
		return loggedOutMsg{err: c.Logout(context.Background())}
	}
}

func (a App) resize(msg tea.WindowSizeMsg) App {
	a.width = msg.Width
	a.height = msg.Height
	// Chrome: header(2) + tabs(1) + help(1) = 4 lines
	body := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 4}
	a.login, _ = a.login.Update(body)
	a.dashboard, _ = a.dashboard.Update(body)
	a.plan, _ = a.plan.Update(body)
	a.social, _ = a.social.Update(body)
	a.tools, _ = a.tools.Update(body)
	a.coach, _ = a.coach.Update(body)
	a.membership, _ = a.membership.Update(body)
	return a
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// An ended session from any view sends the member back to login.
	if f, ok := msg.(failed); ok && errors.Is(f.failure(), client.ErrSessionExpired) {
		a.deps.Log.Info("session expired, returning to login")
		return a.toLogin("Your session has expired. Please log in again.")
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return a.resize(msg), nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case switchViewMsg:
		return a.navigate(msg.to)

	case loggedOutMsg:
		if msg.err != nil {
			a.deps.Log.Warn("logout", logging.Err(msg.err))
		}
		return a.toLogin("Logged out.")

	case authDoneMsg:
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		if msg.err != nil {
			return a, cmd
		}
		a.me = msg.user
		return a.navigate(viewDashboard)

	case dashboardLoadedMsg:
		if msg.me != nil {
			a.me = msg.me
		}
		a.plan, _ = a.plan.Update(msg)
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.Update(msg)
		return a, cmd

	// Async results go to their owner whichever view is showing.
	case planLoadedMsg, planSavedMsg, planLoggedMsg, routineCompletedMsg, planCopyMsg:
		var cmd tea.Cmd
		a.plan, cmd = a.plan.Update(msg)
		return a, cmd
	case socialLoadedMsg, feedTickMsg:
		var cmd tea.Cmd
		a.social, cmd = a.social.Update(msg)
		return a, cmd
	case toolsLoadedMsg, toolsSavedMsg, restTickMsg:
		var cmd tea.Cmd
		a.tools, cmd = a.tools.Update(msg)
		return a, cmd
	case coachPreparedMsg, coachAttemptMsg, coachTickMsg, coachRedirectMsg, coachReplyMsg:
		var cmd tea.Cmd
		a.coach, cmd = a.coach.Update(msg)
		return a, cmd
	case membershipLoadedMsg, checkoutStartedMsg:
		var cmd tea.Cmd
		a.membership, cmd = a.membership.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.helpOpen {
			switch msg.String() {
			case "h", "esc":
				a.helpOpen = false
			case "q":
				return a, tea.Quit
			case "j", "down":
				if a.helpCursor < len(helpItems)-1 {
					a.helpCursor++
				}
			case "k", "up":
				if a.helpCursor > 0 {
					a.helpCursor--
				}
			case "enter":
				if err := browser.Open(helpItems[a.helpCursor].url); err != nil {
					a.deps.Log.Warn("open link", logging.Err(err))
				}
			}
			return a, nil
		}

		if !a.isEditing() {
			switch msg.String() {
			case "h":
				a.helpOpen = true
				a.helpCursor = 0
				return a, nil
			case "q":
				return a, tea.Quit
			case "L":
				return a, a.logout()
			case "1", "2", "3", "4", "5", "6":
				return a.navigate(viewDashboard + view(msg.String()[0]-'1'))
			}
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewLogin:
		a.login, cmd = a.login.Update(msg)
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.Update(msg)
	case viewPlan:
		a.plan, cmd = a.plan.Update(msg)
	case viewSocial:
		a.social, cmd = a.social.Update(msg)
	case viewTools:
		a.tools, cmd = a.tools.Update(msg)
	case viewCoach:
		a.coach, cmd = a.coach.Update(msg)
	case viewMembership:
		a.membership, cmd = a.membership.Update(msg)
	}
	return a, cmd
}

// isEditing reports whether the current view has a text input focused, in
// which case global keys are typed instead.
func (a App) isEditing() bool {
	switch a.view {
	case viewLogin:
		return true
	case viewPlan:
		return a.plan.editing()
	case viewTools:
		return a.tools.editing()
	case viewCoach:
		return a.coach.editing()
	}
	return false
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)
	header := strings.Repeat(" ", max((a.width-lipgloss.Width(logo))/2, 0)) + logo
	if a.me != nil {
		who := metaStyle.Render(a.me.Username + " · " + a.me.FitnessGoal.Label())
		header += "\n" + strings.Repeat(" ", max((a.width-lipgloss.Width(who))/2, 0)) + who
	} else {
		header += "\n"
	}

	tabs := []struct {
		key  string
		name string
		v    view
	}{
		{"1", "Home", viewDashboard},
		{"2", "Plan", viewPlan},
		{"3", "Social", viewSocial},
		{"4", "Tools", viewTools},
		{"5", "Coach", viewCoach},
		{"6", "Premium", viewMembership},
	}
	var tabBar strings.Builder
	if a.view != viewLogin {
		colWidth := a.width / len(tabs)
		for _, t := range tabs {
			var label string
			if t.v == a.view {
				label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
			} else {
				label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
			}
			w := lipgloss.Width(label)
			left := max((colWidth-w)/2, 0)
			right := max(colWidth-w-left, 0)
			tabBar.WriteString(strings.Repeat(" ", left) + label + strings.Repeat(" ", right))
		}
	}

	var body, help string
	switch a.view {
	case viewLogin:
		body, help = a.login.View(), a.login.helpKeys()
	case viewDashboard:
		body, help = a.dashboard.View(), a.dashboard.helpKeys()
	case viewPlan:
		body, help = a.plan.View(), a.plan.helpKeys()
	case viewSocial:
		body, help = a.social.View(), a.social.helpKeys()
	case viewTools:
		body, help = a.tools.View(), a.tools.helpKeys()
	case viewCoach:
		body, help = a.coach.View(), a.coach.helpKeys()
	case viewMembership:
		body, help = a.membership.View(), a.membership.helpKeys()
	}

	if a.helpOpen {
		body = helpView(a.helpCursor)
		help = helpBar("j/k", "nav", "enter", "open", "esc", "close")
	}

	body = strings.TrimRight(truncateToHeight(body, a.height-4), "\n")
	return fmt.Sprintf("%s\n%s\n%s\n%s", header, tabBar.String(), body, help)
}
