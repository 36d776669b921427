// Package entitlement confirms the premium membership with the server after
// a purchase, using a bounded number of status polls.
package entitlement

// State is a step of one verification run.
type State int

const (
	Idle State = iota
	Polling
	Verified
	Exhausted
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Polling:
		return "polling"
	case Verified:
		return "verified"
	case Exhausted:
		return "exhausted"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// Terminal reports whether no further attempts will be made.
func (s State) Terminal() bool {
	return s == Verified || s == Exhausted || s == Cancelled
}

// Machine counts attempts for one verification run. It is not safe for
// concurrent use; the TUI drives it from Update and Verify from a single
// goroutine.
type Machine struct {
	max      int
	attempts int
	state    State
	lastErr  error
	denied   bool
}

// NewMachine returns an idle machine allowing maxAttempts status checks.
func NewMachine(maxAttempts int) *Machine {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Machine{max: maxAttempts}
}

// Start begins (or restarts) a run.
func (m *Machine) Start() {
	m.attempts = 0
	m.lastErr = nil
	m.denied = false
	m.state = Polling
}

// Observe consumes one attempt. A failed status call counts the same as a
// "not premium" answer. Observations outside Polling are ignored.
func (m *Machine) Observe(premium bool, err error) State {
	if m.state != Polling {
		return m.state
	}
	m.attempts++
	m.lastErr = err
	if err == nil && !premium {
		m.denied = true
	}
	switch {
	case err == nil && premium:
		m.state = Verified
	case m.attempts >= m.max:
		m.state = Exhausted
	}
	return m.state
}

// Cancel stops a run in progress. Terminal states are kept.
func (m *Machine) Cancel() {
	if !m.state.Terminal() {
		m.state = Cancelled
	}
}

func (m *Machine) State() State { return m.state }
func (m *Machine) Attempts() int { return m.attempts }
func (m *Machine) MaxAttempts() int { return m.max }

// Denied reports whether the server answered "not premium" at least once,
// as opposed to every check failing.
func (m *Machine) Denied() bool { return m.denied }

// LastErr is the error from the most recent attempt, if it failed.
func (m *Machine) LastErr() error { return m.lastErr }
