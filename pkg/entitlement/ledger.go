package entitlement

import (
	"fmt"
	"sync"
	"time"

	"github.com/naveenspark/fitline/pkg/domain"
)

const ledgerKey = "entitlement"

// Documents is the slice of the local document store the ledger needs.
type Documents interface {
	Get(key string, v any) (bool, error)
	Put(key string, v any) error
}

// Ledger keeps the last confirmed entitlement and any checkout session
// still waiting to be reconciled.
type Ledger struct {
	docs Documents
	now  func() time.Time
	mu   sync.Mutex
}

func NewLedger(docs Documents) *Ledger {
	return &Ledger{docs: docs, now: time.Now}
}

// Load returns the stored entitlement; the zero value when none is stored.
func (l *Ledger) Load() (domain.Entitlement, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

func (l *Ledger) load() (domain.Entitlement, error) {
	var e domain.Entitlement
	if _, err := l.docs.Get(ledgerKey, &e); err != nil {
		return domain.Entitlement{}, fmt.Errorf("entitlement: load: %w", err)
	}
	return e, nil
}

func (l *Ledger) update(fn func(*domain.Entitlement)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, err := l.load()
	if err != nil {
		return err
	}
	fn(&e)
	if err := l.docs.Put(ledgerKey, e); err != nil {
		return fmt.Errorf("entitlement: save: %w", err)
	}
	return nil
}

// SetPending records a checkout session to reconcile later.
func (l *Ledger) SetPending(sessionID string) error {
	return l.update(func(e *domain.Entitlement) { e.PendingSessionID = sessionID })
}

// Pending returns the checkout session awaiting reconciliation, if any.
func (l *Ledger) Pending() (string, error) {
	e, err := l.Load()
	return e.PendingSessionID, err
}

// ClearPending forgets the pending checkout session.
func (l *Ledger) ClearPending() error {
	return l.update(func(e *domain.Entitlement) { e.PendingSessionID = "" })
}

// Reset forgets everything tied to the signed-in account. It runs when a
// session ends so the next account starts from the zero value.
func (l *Ledger) Reset() error {
	return l.update(func(e *domain.Entitlement) { *e = domain.Entitlement{} })
}

// revoke drops a premium flag the server no longer confirms. A pending
// checkout is kept.
func (l *Ledger) revoke() error {
	return l.update(func(e *domain.Entitlement) {
		e.IsPremium = false
		e.VerifiedAt = time.Time{}
	})
}

// markPremium is only reached from a Verified transition.
func (l *Ledger) markPremium() error {
	at := l.now()
	return l.update(func(e *domain.Entitlement) {
		e.IsPremium = true
		e.VerifiedAt = at
	})
}
