package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/pinvault/internal/domain/model"
	"github.com/ericfisherdev/pinvault/internal/domain/port/driven"
)

// Sentinel errors returned by VaultService.
var (
	// ErrMissingField is wrapped by ValidationError.
	ErrMissingField = errors.New("missing required field")

	// ErrUnknownAction indicates a guarded operation name that is not recognised.
	ErrUnknownAction = errors.New("unknown action")

	// ErrEditLocked indicates an edit was submitted for a record that has not
	// been unlocked through a confirmed edit action.
	ErrEditLocked = errors.New("record is not unlocked for editing")
)

// ValidationError names the required field that was left blank.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " is required"
}

// Unwrap allows errors.Is(err, ErrMissingField).
func (e *ValidationError) Unwrap() error {
	return ErrMissingField
}

// ActionResult is the outcome of a released guarded operation. Record is the
// target as it was when the action ran; for deletes it is the removed record.
// Revisions is only filled for history views.
type ActionResult struct {
	Action    model.PendingAction
	Record    model.CredentialRecord
	Revisions []model.HistoryEntry
}

// VaultService orchestrates the record store, the sort and search policies
// and the action gate. It also tracks which record, if any, has been unlocked
// for editing.
type VaultService struct {
	store  driven.RecordStore
	gate   *Gate
	logger *slog.Logger

	mu      sync.Mutex
	editing int64
}

// NewVaultService creates a VaultService. A nil logger falls back to slog.Default().
func NewVaultService(store driven.RecordStore, gate *Gate, logger *slog.Logger) *VaultService {
	if logger == nil {
		logger = slog.Default()
	}
	return &VaultService{
		store:  store,
		gate:   gate,
		logger: logger,
	}
}

// List returns the records matching term in site-name order. The order and
// the filter are recomputed on every call.
func (s *VaultService) List(ctx context.Context, term string) ([]SearchHit, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return SearchRecords(term, SortRecords(records)), nil
}

// Register validates the required fields and stores a new record.
func (s *VaultService) Register(ctx context.Context, input model.RecordInput) (model.CredentialRecord, error) {
	if err := validateInput(input); err != nil {
		return model.CredentialRecord{}, err
	}

	rec, err := s.store.Register(ctx, input)
	if err != nil {
		return model.CredentialRecord{}, err
	}

	s.logger.Info("record registered", "id", rec.ID, "site", rec.SiteName)
	return rec, nil
}

// RequestAction parks a guarded operation on the gate. The target record must
// exist at request time.
func (s *VaultService) RequestAction(ctx context.Context, kind model.GuardedOp, recordID int64) (model.PendingAction, error) {
	if !kind.Valid() {
		return model.PendingAction{}, fmt.Errorf("request %q: %w", kind, ErrUnknownAction)
	}

	rec, err := s.store.Get(ctx, recordID)
	if err != nil {
		return model.PendingAction{}, fmt.Errorf("request %s on record %d: %w", kind, recordID, err)
	}
	if rec == nil {
		return model.PendingAction{}, fmt.Errorf("request %s on record %d: %w", kind, recordID, driven.ErrRecordNotFound)
	}

	return s.gate.Request(kind, recordID), nil
}

// PendingAction returns the action waiting on the gate, if any.
func (s *VaultService) PendingAction() (model.PendingAction, bool) {
	return s.gate.Pending()
}

// CancelAction drops the pending action without running it.
func (s *VaultService) CancelAction() bool {
	return s.gate.Cancel()
}

// ConfirmAction releases the pending action with pin and runs it. A wrong PIN
// returns ErrInvalidPIN and leaves the action pending.
func (s *VaultService) ConfirmAction(ctx context.Context, pin string) (ActionResult, error) {
	action, err := s.gate.Confirm(pin)
	if err != nil {
		return ActionResult{}, err
	}

	rec, err := s.store.Get(ctx, action.RecordID)
	if err != nil {
		return ActionResult{}, fmt.Errorf("run %s on record %d: %w", action.Kind, action.RecordID, err)
	}
	if rec == nil {
		return ActionResult{}, fmt.Errorf("run %s on record %d: %w", action.Kind, action.RecordID, driven.ErrRecordNotFound)
	}

	result := ActionResult{Action: action, Record: *rec}

	switch action.Kind {
	case model.GuardedOpEdit:
		s.mu.Lock()
		s.editing = rec.ID
		s.mu.Unlock()
		s.logger.Info("record unlocked for editing", "id", rec.ID)

	case model.GuardedOpDelete:
		if err := s.store.Remove(ctx, rec.ID); err != nil {
			return ActionResult{}, fmt.Errorf("delete record %d: %w", rec.ID, err)
		}
		s.mu.Lock()
		if s.editing == rec.ID {
			s.editing = 0
		}
		s.mu.Unlock()
		s.logger.Info("record deleted", "id", rec.ID, "site", rec.SiteName)

	case model.GuardedOpViewHistory:
		result.Revisions = rec.Revisions()

	case model.GuardedOpViewDetails:
		// The record itself is the result.
	}

	return result, nil
}

// EditTarget returns the record currently unlocked for editing, or nil when
// no edit is in progress.
func (s *VaultService) EditTarget(ctx context.Context) (*model.CredentialRecord, error) {
	s.mu.Lock()
	id := s.editing
	s.mu.Unlock()

	if id == 0 {
		return nil, nil
	}

	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get edit target %d: %w", id, err)
	}
	return rec, nil
}

// SubmitEdit applies input to the record unlocked for editing. Submitting any
// other existing ID returns ErrEditLocked; an unknown ID returns
// driven.ErrRecordNotFound. The unlock is consumed once the store has
// answered, whether or not the record still existed.
func (s *VaultService) SubmitEdit(ctx context.Context, input model.RecordInput) (model.CredentialRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editing == 0 || s.editing != input.ID {
		rec, err := s.store.Get(ctx, input.ID)
		if err != nil {
			return model.CredentialRecord{}, fmt.Errorf("edit record %d: %w", input.ID, err)
		}
		if rec == nil {
			return model.CredentialRecord{}, fmt.Errorf("edit record %d: %w", input.ID, driven.ErrRecordNotFound)
		}
		return model.CredentialRecord{}, fmt.Errorf("edit record %d: %w", input.ID, ErrEditLocked)
	}

	if err := validateInput(input); err != nil {
		return model.CredentialRecord{}, err
	}

	rec, err := s.store.Update(ctx, input)
	if err != nil && !errors.Is(err, driven.ErrRecordNotFound) {
		return model.CredentialRecord{}, err
	}
	s.editing = 0
	if err != nil {
		return model.CredentialRecord{}, err
	}

	s.logger.Info("record updated", "id", rec.ID, "revisions", len(rec.History)-1)
	return rec, nil
}

// CancelEdit drops the edit unlock.
func (s *VaultService) CancelEdit() {
	s.mu.Lock()
	s.editing = 0
	s.mu.Unlock()
}

// SeedDemo registers the demo records when the store is empty. It returns the
// number of records added.
func (s *VaultService) SeedDemo(ctx context.Context) (int, error) {
	existing, err := s.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("check existing records: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	demo := DemoRecords()
	for _, in := range demo {
		if _, err := s.store.Register(ctx, in); err != nil {
			return 0, fmt.Errorf("seed %s: %w", in.SiteName, err)
		}
	}
	return len(demo), nil
}

// validateInput checks the fields the record form marks as required.
func validateInput(in model.RecordInput) error {
	switch {
	case in.SiteName == "":
		return &ValidationError{Field: "site_name"}
	case in.Username == "":
		return &ValidationError{Field: "username"}
	case in.Password == "":
		return &ValidationError{Field: "password"}
	default:
		return nil
	}
}
