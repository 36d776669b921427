package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/naveenspark/fitline/pkg/client"
)

// formatTime renders a relative timestamp for the activity feed.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// formatClock renders seconds as m:ss.
func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// errText turns an error into the short line shown inline in a view.
func errText(err error) string {
	var he *client.HTTPError
	switch {
	case errors.Is(err, client.ErrSessionExpired):
		return "session expired, please log in again"
	case errors.Is(err, client.ErrInvalidCredentials):
		return client.ErrInvalidCredentials.Error()
	case errors.As(err, &he) && he.StatusCode >= 500:
		return "server unavailable, try again shortly"
	case errors.As(err, &he):
		return he.Message
	}
	msg := err.Error()
	// drop "pkg.Func: " prefixes
	for {
		head, rest, ok := strings.Cut(msg, ": ")
		if !ok || strings.ContainsAny(head, " ") || !strings.Contains(head, ".") {
			break
		}
		msg = rest
	}
	if errors.Is(err, client.ErrValidation) {
		msg = strings.TrimPrefix(msg, client.ErrValidation.Error()+": ")
	}
	return msg
}

// failed is implemented by result messages that carry an error. The App
// inspects it to catch an ended session from any view.
type failed interface {
	failure() error
}
