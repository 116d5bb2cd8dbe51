package model

import "time"

// GuardedOp identifies an operation that must be unlocked with the PIN.
type GuardedOp string

const (
	GuardedOpEdit        GuardedOp = "edit"
	GuardedOpDelete      GuardedOp = "delete"
	GuardedOpViewDetails GuardedOp = "view_details"
	GuardedOpViewHistory GuardedOp = "view_history"
)

// Valid reports whether op is one of the known guarded operations.
func (op GuardedOp) Valid() bool {
	switch op {
	case GuardedOpEdit, GuardedOpDelete, GuardedOpViewDetails, GuardedOpViewHistory:
		return true
	default:
		return false
	}
}

// Title returns the prompt shown while the operation waits for the PIN.
func (op GuardedOp) Title() string {
	switch op {
	case GuardedOpEdit:
		return "Unlock to Edit"
	case GuardedOpDelete:
		return "Unlock to Delete"
	case GuardedOpViewDetails:
		return "Unlock to View Details"
	case GuardedOpViewHistory:
		return "Unlock to View History"
	default:
		return "Unlock"
	}
}

// PendingAction is the single operation held by the action gate until the PIN
// is confirmed or the request is cancelled.
type PendingAction struct {
	Kind        GuardedOp
	RecordID    int64
	Title       string
	RequestedAt time.Time
}
