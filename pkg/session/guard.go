package session

import "log/slog"

// Decision is the guard's verdict for one navigation.
type Decision int

const (
	Unauthorized Decision = iota
	Authorized
)

func (d Decision) String() string {
	if d == Authorized {
		return "authorized"
	}
	return "unauthorized"
}

// Guard gates protected views. It reads the store and runs the validator;
// it never calls the network. Credentials the server has revoked pass the
// guard and are caught by the client's refresh path instead.
type Guard struct {
	store     Store
	validator Validator
	log       *slog.Logger
}

// NewGuard creates a Guard. A nil logger discards.
func NewGuard(store Store, validator Validator, log *slog.Logger) *Guard {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Guard{store: store, validator: validator, log: log}
}

// Check evaluates one navigation. An invalid credential clears the store.
func (g *Guard) Check() Decision {
	creds, ok := g.store.Get()
	if !ok || creds.Access == "" {
		return Unauthorized
	}
	if !g.validator.Valid(creds.Access) {
		g.log.Info("access credential invalid or expired, clearing session")
		if err := g.store.Clear(); err != nil {
			g.log.Warn("clear session", "error", err)
		}
		return Unauthorized
	}
	return Authorized
}
