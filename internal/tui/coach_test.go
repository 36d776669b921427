package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/fitline/pkg/client"
	"github.com/naveenspark/fitline/pkg/entitlement"
)

func newTestCoach(t *testing.T) (coachModel, *testEnv) {
	t.Helper()
	env := newTestEnv(t, "")
	m := newCoachModel(env.deps.Client, env.deps.Verifier, env.ledger, nil)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return m, env
}

// verifiedCoach drives a coach model to the Verified state.
func verifiedCoach(t *testing.T) coachModel {
	t.Helper()
	m, _ := newTestCoach(t)
	m, _ = m.enter()
	m, _ = m.Update(coachPreparedMsg{gen: m.gen})
	m, _ = m.Update(coachAttemptMsg{gen: m.gen, premium: true})
	if !m.verified() {
		t.Fatalf("expected verified, got %s", m.machine.State())
	}
	return m
}

func TestCoachVerifiedUnlocksChat(t *testing.T) {
	m, env := newTestCoach(t)
	m, cmd := m.enter()
	if cmd == nil {
		t.Fatal("expected prepare command")
	}
	if !strings.Contains(m.View(), "Verifying premium status") {
		t.Errorf("expected verifying status, got:\n%s", m.View())
	}

	m, cmd = m.Update(coachPreparedMsg{gen: m.gen})
	if cmd == nil {
		t.Fatal("expected first attempt after prepare")
	}
	m, cmd = m.Update(coachAttemptMsg{gen: m.gen, premium: true})
	if cmd != nil {
		t.Error("expected no further polling once verified")
	}
	if !m.editing() {
		t.Error("expected chat input focused after verification")
	}
	if !strings.Contains(m.View(), coachPlaceholder) {
		t.Errorf("expected chat placeholder, got:\n%s", m.View())
	}

	ent, err := env.ledger.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !ent.IsPremium {
		t.Error("expected verified entitlement to be persisted")
	}
}

func TestCoachExhaustionRedirectsToMembership(t *testing.T) {
	m, env := newTestCoach(t)
	m, _ = m.enter()
	m, _ = m.Update(coachPreparedMsg{gen: m.gen})

	maxAttempts := env.deps.Verifier.Config().MaxAttempts
	for i := 1; i < maxAttempts; i++ {
		var cmd tea.Cmd
		m, cmd = m.Update(coachAttemptMsg{gen: m.gen})
		if cmd == nil {
			t.Fatalf("attempt %d: expected another tick", i)
		}
		if m.denied {
			t.Fatalf("attempt %d: denied too early", i)
		}
		m, cmd = m.Update(coachTickMsg{gen: m.gen})
		if cmd == nil {
			t.Fatalf("attempt %d: expected tick to schedule a check", i)
		}
	}

	m, cmd := m.Update(coachAttemptMsg{gen: m.gen})
	if !m.denied || m.machine.State() != entitlement.Exhausted {
		t.Fatalf("expected exhausted, got %s", m.machine.State())
	}
	if cmd == nil {
		t.Fatal("expected redirect timer")
	}
	if !strings.Contains(m.View(), premiumRequired) {
		t.Errorf("expected %q, got:\n%s", premiumRequired, m.View())
	}

	// Further checks are ignored once exhausted.
	if _, cmd := m.Update(coachTickMsg{gen: m.gen}); cmd != nil {
		t.Error("expected no attempt after exhaustion")
	}

	_, cmd = m.Update(coachRedirectMsg{gen: m.gen})
	if cmd == nil {
		t.Fatal("expected redirect command")
	}
	if got, ok := cmd().(switchViewMsg); !ok || got.to != viewMembership {
		t.Errorf("expected switch to membership, got %#v", cmd())
	}
}

func TestCoachErrorsCountAsAttempts(t *testing.T) {
	m, env := newTestCoach(t)
	m, _ = m.enter()
	boom := &client.HTTPError{StatusCode: 503, Message: "unavailable"}
	for i := 0; i < env.deps.Verifier.Config().MaxAttempts; i++ {
		m, _ = m.Update(coachAttemptMsg{gen: m.gen, err: boom})
	}
	if m.machine.State() != entitlement.Exhausted {
		t.Errorf("expected exhausted after errors, got %s", m.machine.State())
	}
}

func TestCoachSessionExpiryStopsPolling(t *testing.T) {
	m, _ := newTestCoach(t)
	m, _ = m.enter()
	msg := coachAttemptMsg{gen: m.gen, err: client.ErrSessionExpired}
	if !errors.Is(msg.failure(), client.ErrSessionExpired) {
		t.Fatal("expected the message to report session expiry")
	}
	m, cmd := m.Update(msg)
	if cmd != nil {
		t.Error("expected no further polling")
	}
	if m.machine.State() != entitlement.Cancelled {
		t.Errorf("expected cancelled, got %s", m.machine.State())
	}
}

func TestCoachPendingCheckoutIsReconciled(t *testing.T) {
	m, env := newTestCoach(t)
	if err := env.ledger.SetPending("cs_test_42"); err != nil {
		t.Fatal(err)
	}
	env.src.premium = true

	m, cmd := m.enter()
	prepared, ok := cmd().(coachPreparedMsg)
	if !ok || !prepared.reconciled || prepared.err != nil {
		t.Fatalf("unexpected prepare result %#v", prepared)
	}
	if len(env.src.checks) != 1 || env.src.checks[0] != "cs_test_42" {
		t.Errorf("expected one payment check for cs_test_42, got %v", env.src.checks)
	}
	if env.src.refreshes != 1 {
		t.Errorf("expected one forced refresh, got %d", env.src.refreshes)
	}
	if id, _ := env.ledger.Pending(); id != "" {
		t.Errorf("expected pending id cleared, got %q", id)
	}

	m, cmd = m.Update(prepared)
	if !strings.Contains(m.View(), "Confirming your payment") {
		t.Errorf("expected confirming status, got:\n%s", m.View())
	}
	m, _ = m.Update(cmd())
	if !m.verified() {
		t.Errorf("expected verified, got %s", m.machine.State())
	}
}

func TestCoachReplyErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server error", &client.HTTPError{StatusCode: 502, Message: "bad gateway"}, coachUnavailable},
		{"timeout", errors.New("context deadline exceeded"), coachUnavailable},
		{"rejected", &client.HTTPError{StatusCode: 400, Message: "Message too long"}, "Message too long"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := verifiedCoach(t)
			m.waiting = true
			m, _ = m.Update(coachReplyMsg{err: tc.err})
			if m.waiting {
				t.Error("expected waiting cleared")
			}
			if !strings.Contains(m.View(), tc.want) {
				t.Errorf("expected %q, got:\n%s", tc.want, m.View())
			}
		})
	}
}

func TestCoachSendMessage(t *testing.T) {
	m := verifiedCoach(t)
	for _, r := range "squat tips" {
		m, _ = m.Update(key(string(r)))
	}
	m, cmd := m.Update(key("enter"))
	if cmd == nil {
		t.Fatal("expected AskCoach command")
	}
	if !m.waiting || m.input != "" {
		t.Errorf("expected waiting with cleared input, got waiting=%v input=%q", m.waiting, m.input)
	}
	m, _ = m.Update(coachReplyMsg{reply: "Keep your chest up."})
	view := m.View()
	for _, want := range []string{"squat tips", "Keep your chest up."} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view, got:\n%s", want, view)
		}
	}

	// A second enter on an empty input sends nothing.
	if _, cmd := m.Update(key("enter")); cmd != nil {
		t.Error("expected no command for empty input")
	}
}

func TestCoachSuggestedPrompts(t *testing.T) {
	m := verifiedCoach(t)
	m, _ = m.Update(key("tab"))
	if m.input != suggestedPrompts[0] {
		t.Errorf("expected first suggestion, got %q", m.input)
	}
	m, _ = m.Update(key("tab"))
	if m.input != suggestedPrompts[1] {
		t.Errorf("expected second suggestion, got %q", m.input)
	}
}

func TestCoachLockedInputIgnoresKeys(t *testing.T) {
	m, _ := newTestCoach(t)
	m, _ = m.enter()
	m, cmd := m.Update(key("x"))
	if cmd != nil || m.input != "" {
		t.Error("expected keys ignored before verification")
	}
	if !strings.Contains(m.View(), coachLockedMessage) {
		t.Errorf("expected locked placeholder, got:\n%s", m.View())
	}
}

func TestCoachReenterStartsFreshRun(t *testing.T) {
	m, _ := newTestCoach(t)
	m, _ = m.enter()
	first := m.gen
	m = m.leave()
	m, _ = m.enter()
	if m.gen <= first {
		t.Errorf("expected a newer generation, got %d after %d", m.gen, first)
	}
	if m.machine.State() != entitlement.Polling || m.machine.Attempts() != 0 {
		t.Errorf("expected a fresh polling machine, got %s/%d", m.machine.State(), m.machine.Attempts())
	}
}
