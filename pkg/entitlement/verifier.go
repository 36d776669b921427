package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/naveenspark/fitline/pkg/client"
	"github.com/naveenspark/fitline/pkg/domain"
)

// ErrExhausted means every allowed status check came back without the
// premium entitlement.
var ErrExhausted = errors.New("premium membership required")

// Source is the server surface verification needs. *client.Client
// implements it.
type Source interface {
	AccountStatus(ctx context.Context) (*domain.AccountStatus, error)
	CheckPaymentStatus(ctx context.Context, sessionID string) (*client.PaymentStatus, error)
	ForceRefresh(ctx context.Context) error
}

// Config bounds a verification run.
type Config struct {
	MaxAttempts   int
	Interval      time.Duration
	RedirectDelay time.Duration
}

// DefaultConfig is ten checks two seconds apart, then a two second pause
// before sending the user to the membership page.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   10,
		Interval:      2 * time.Second,
		RedirectDelay: 2 * time.Second,
	}
}

// Verifier polls the server for the premium entitlement.
type Verifier struct {
	src    Source
	ledger *Ledger
	cfg    Config
	log    *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewVerifier creates a Verifier. ledger and log may be nil. Zero fields in
// cfg take their defaults.
func NewVerifier(src Source, ledger *Ledger, cfg Config, log *slog.Logger) *Verifier {
	def := DefaultConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.RedirectDelay <= 0 {
		cfg.RedirectDelay = def.RedirectDelay
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Verifier{src: src, ledger: ledger, cfg: cfg, log: log, sleep: sleepCtx}
}

func (v *Verifier) Config() Config { return v.cfg }

// NewMachine returns a machine sized for this verifier's attempt budget.
func (v *Verifier) NewMachine() *Machine { return NewMachine(v.cfg.MaxAttempts) }

// Attempt performs a single status check.
func (v *Verifier) Attempt(ctx context.Context) (bool, error) {
	st, err := v.src.AccountStatus(ctx)
	if err != nil {
		return false, err
	}
	return st.IsPremium, nil
}

// Record feeds one attempt's outcome into m and persists a Verified result.
// A run exhausted after the server said "not premium" clears a stored flag;
// one where every check failed leaves it alone.
func (v *Verifier) Record(m *Machine, premium bool, err error) State {
	state := m.Observe(premium, err)
	v.log.Info("entitlement check",
		"attempt", m.Attempts(),
		"max", m.MaxAttempts(),
		"premium", premium,
		"state", state.String(),
		"error", err,
	)
	if v.ledger == nil {
		return state
	}
	switch {
	case state == Verified:
		if err := v.ledger.markPremium(); err != nil {
			v.log.Warn("persist entitlement", "error", err)
		}
	case state == Exhausted && m.Denied():
		if err := v.ledger.revoke(); err != nil {
			v.log.Warn("revoke entitlement", "error", err)
		}
	}
	return state
}

// Verify polls until the server reports premium, the attempt budget runs
// out (ErrExhausted) or ctx is done. Exactly MaxAttempts-1 intervals elapse
// on exhaustion. A session expiry ends the run at once.
func (v *Verifier) Verify(ctx context.Context) error {
	m := v.NewMachine()
	m.Start()
	for {
		premium, err := v.Attempt(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			m.Cancel()
			return ctxErr
		}
		if errors.Is(err, client.ErrSessionExpired) {
			m.Cancel()
			return fmt.Errorf("entitlement.Verify: %w", err)
		}

		switch v.Record(m, premium, err) {
		case Verified:
			return nil
		case Exhausted:
			if last := m.LastErr(); last != nil {
				return fmt.Errorf("entitlement.Verify: %w (last check failed: %v)", ErrExhausted, last)
			}
			return fmt.Errorf("entitlement.Verify: %w", ErrExhausted)
		}

		if err := v.sleep(ctx, v.cfg.Interval); err != nil {
			m.Cancel()
			return err
		}
	}
}

// Reconcile finishes a checkout: Prepare, then Verify.
func (v *Verifier) Reconcile(ctx context.Context, sessionID string) error {
	if err := v.Prepare(ctx, sessionID); err != nil {
		return err
	}
	return v.Verify(ctx)
}

// Prepare runs the steps before polling. The pending session id is
// forgotten first so it is never submitted twice, the server is asked to
// reconcile the payment (a failure there is logged and ignored), then the
// access credential is refreshed to pick up new claims.
func (v *Verifier) Prepare(ctx context.Context, sessionID string) error {
	if v.ledger != nil {
		if err := v.ledger.ClearPending(); err != nil {
			v.log.Warn("clear pending checkout", "error", err)
		}
	}
	if sessionID != "" {
		if _, err := v.src.CheckPaymentStatus(ctx, sessionID); err != nil {
			v.log.Warn("payment status check failed", "session_id", sessionID, "error", err)
		}
	}
	if err := v.src.ForceRefresh(ctx); err != nil {
		return fmt.Errorf("entitlement.Reconcile: %w", err)
	}
	return nil
}

// ReconcilePending reconciles the checkout recorded in the ledger, if any.
// It reports whether there was one.
func (v *Verifier) ReconcilePending(ctx context.Context) (bool, error) {
	if v.ledger == nil {
		return false, nil
	}
	id, err := v.ledger.Pending()
	if err != nil {
		return false, err
	}
	if id == "" {
		return false, nil
	}
	return true, v.Reconcile(ctx, id)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
