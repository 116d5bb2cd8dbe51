package application

import (
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	"github.com/ericfisherdev/pinvault/internal/domain/model"
)

// PINErrorMessage is the message shown when the unlock PIN does not match.
const PINErrorMessage = "Please enter the correct pin number."

// Sentinel errors returned by Gate.
var (
	// ErrInvalidPIN indicates the supplied secret did not match. The pending
	// action is kept so the caller may retry.
	ErrInvalidPIN = errors.New(PINErrorMessage)

	// ErrNoPendingAction indicates Confirm was called with an empty slot.
	ErrNoPendingAction = errors.New("no pending action")
)

// Gate holds at most one guarded operation until it is released by the
// unlock secret or cancelled. A new request replaces whatever was pending.
type Gate struct {
	mu      sync.Mutex
	secret  []byte
	pending *model.PendingAction
	now     func() time.Time
}

// NewGate creates a Gate released by secret.
func NewGate(secret string) *Gate {
	return &Gate{secret: []byte(secret), now: time.Now}
}

// Request stores a pending action for recordID, discarding any earlier one.
func (g *Gate) Request(kind model.GuardedOp, recordID int64) model.PendingAction {
	g.mu.Lock()
	defer g.mu.Unlock()

	action := model.PendingAction{
		Kind:        kind,
		RecordID:    recordID,
		Title:       kind.Title(),
		RequestedAt: g.now().UTC(),
	}
	g.pending = &action
	return action
}

// Confirm releases the pending action when secret matches. The slot is
// cleared on success, so each action is released at most once.
func (g *Gate) Confirm(secret string) (model.PendingAction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending == nil {
		return model.PendingAction{}, ErrNoPendingAction
	}

	if subtle.ConstantTimeCompare([]byte(secret), g.secret) != 1 {
		return model.PendingAction{}, ErrInvalidPIN
	}

	action := *g.pending
	g.pending = nil
	return action, nil
}

// Cancel clears the slot without releasing it. It reports whether an action
// was pending.
func (g *Gate) Cancel() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	had := g.pending != nil
	g.pending = nil
	return had
}

// Pending returns the waiting action, if any.
func (g *Gate) Pending() (model.PendingAction, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending == nil {
		return model.PendingAction{}, false
	}
	return *g.pending, true
}
