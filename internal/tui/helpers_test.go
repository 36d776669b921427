package tui

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/fitline/pkg/client"
)

func TestEditKey(t *testing.T) {
	tests := []struct {
		name string
		text string
		msg  tea.KeyMsg
		want string
	}{
		{"typed runes", "ab", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")}, "abc"},
		{"space", "ab", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, "ab "},
		{"backspace multibyte", "squat ✓", tea.KeyMsg{Type: tea.KeyBackspace}, "squat "},
		{"backspace empty", "", tea.KeyMsg{Type: tea.KeyBackspace}, ""},
		{"paste newlines", "", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a\nb")}, "a b"},
		{"alt ignored", "x", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("b"), Alt: true}, "x"},
		{"arrow ignored", "x", tea.KeyMsg{Type: tea.KeyLeft}, "x"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := editKey(tc.text, tc.msg); got != tc.want {
				t.Errorf("editKey(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestEditKeyClampsLength(t *testing.T) {
	text := strings.Repeat("a", maxInputLen-1)
	got := editKey(text, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("bcd")})
	if len(got) != maxInputLen || !strings.HasSuffix(got, "b") {
		t.Errorf("expected clamp to %d runes ending in b, got len %d", maxInputLen, len(got))
	}
	if editKey(got, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("z")}) != got {
		t.Error("expected full input to ignore more runes")
	}
}

func TestTruncateToHeight(t *testing.T) {
	input := "line1\nline2\nline3\nline4\nline5\n"
	if got := truncateToHeight(input, 3); got != "line1\nline2\nline3\n" {
		t.Errorf("got %q", got)
	}
	if got := truncateToHeight(input, 10); got != input {
		t.Errorf("expected unchanged, got %q", got)
	}
	if got := truncateToHeight(input, 0); got != input {
		t.Errorf("expected unchanged for 0, got %q", got)
	}
}

func TestTruncStr(t *testing.T) {
	if got := truncStr("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := truncStr("dumbbell bench press", 8); got != "dumbbel…" {
		t.Errorf("got %q", got)
	}
}

func TestFormatClock(t *testing.T) {
	for in, want := range map[int]string{0: "0:00", 5: "0:05", 90: "1:30", 120: "2:00", -3: "0:00"} {
		if got := formatClock(in); got != want {
			t.Errorf("formatClock(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	if got := formatTime(time.Time{}); got != "" {
		t.Errorf("expected empty for zero time, got %q", got)
	}
	if got := formatTime(time.Now().Add(-90 * time.Minute)); got != "1h ago" {
		t.Errorf("got %q", got)
	}
	if got := formatTime(time.Now().Add(-50 * time.Hour)); got != "2d ago" {
		t.Errorf("got %q", got)
	}
}

func TestErrText(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"expired", fmt.Errorf("client.GetMe: %w", client.ErrSessionExpired), "session expired, please log in again"},
		{"bad login", fmt.Errorf("client.Login: %w", client.ErrInvalidCredentials), "invalid username or password"},
		{"server", fmt.Errorf("client.GetLeaderboard: %w", &client.HTTPError{StatusCode: 500, Message: "boom"}), "server unavailable, try again shortly"},
		{"client error", &client.HTTPError{StatusCode: 400, Message: "Username taken"}, "Username taken"},
		{"validation", fmt.Errorf("client.Register: %w", fmt.Errorf("%w: email must be a valid email address", client.ErrValidation)), "email must be a valid email address"},
		{"keeps colons in message", fmt.Errorf("client.Register: %w: goal must be one of: a b", client.ErrValidation), "goal must be one of: a b"},
		{"plain", errors.New("disk full"), "disk full"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := errText(tc.err); got != tc.want {
				t.Errorf("errText() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestForm(t *testing.T) {
	f := newForm(
		field{label: "name"},
		field{label: "size", options: []string{"s", "m", "l"}},
	)
	f = f.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(" ana ")})
	if got := f.value(0); got != "ana" {
		t.Errorf("expected trimmed value, got %q", got)
	}

	f = f.update(tea.KeyMsg{Type: tea.KeyTab})
	f = f.update(tea.KeyMsg{Type: tea.KeyLeft})
	if got := f.value(1); got != "l" {
		t.Errorf("expected picker to wrap to l, got %q", got)
	}
	f = f.update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if f.focus != 0 {
		t.Errorf("expected focus back on name, got %d", f.focus)
	}

	f = f.pick(1, "m")
	if got := f.value(1); got != "m" {
		t.Errorf("expected m, got %q", got)
	}
	f = f.pick(1, "xl")
	if got := f.value(1); got != "m" {
		t.Errorf("expected unknown option ignored, got %q", got)
	}

	f = f.clear()
	if f.value(0) != "" || f.focus != 0 {
		t.Error("expected cleared text and focus reset")
	}
	if got := f.value(1); got != "m" {
		t.Errorf("expected picker kept through clear, got %q", got)
	}
}

func TestFormView(t *testing.T) {
	f := newForm(
		field{label: "user", value: "ana"},
		field{label: "password", value: "secret", secret: true},
		field{label: "email", placeholder: "you@example.com"},
		field{label: "goal", options: []string{"lose_fat"}},
	)
	view := f.view()
	for _, want := range []string{"> ", "user:", "ana", "••••••", "you@example.com", "‹ lose_fat ›"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in form, got:\n%s", want, view)
		}
	}
	if strings.Contains(view, "secret") {
		t.Errorf("secret value leaked:\n%s", view)
	}
}

func TestHelpBar(t *testing.T) {
	bar := helpBar("q", "quit", "h", "help")
	if !strings.Contains(bar, "q") || !strings.Contains(bar, "quit") || !strings.Contains(bar, "help") {
		t.Errorf("unexpected help bar %q", bar)
	}
	if helpBar() != " " {
		t.Errorf("expected empty bar, got %q", helpBar())
	}
}

func TestShimmerLogo(t *testing.T) {
	for _, frame := range []int{0, 17, 250} {
		logo := renderShimmerLogo(frame)
		if w := lipgloss.Width(logo); w != len("FITLINE")*3-2 {
			t.Errorf("frame %d: expected width %d, got %d", frame, len("FITLINE")*3-2, w)
		}
	}
}

func TestRankStyleTopThreeBold(t *testing.T) {
	for rank := 1; rank <= 3; rank++ {
		if !rankStyle(rank).GetBold() {
			t.Errorf("rank %d should be bold", rank)
		}
	}
	if rankStyle(4).GetBold() {
		t.Error("rank 4 should not be bold")
	}
}
