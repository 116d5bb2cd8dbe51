// Package memory implements the RecordStore port on an in-process slice.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ericfisherdev/pinvault/internal/domain/model"
	"github.com/ericfisherdev/pinvault/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RecordStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for CreatedAt, UpdatedAt and ID
// generation.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store keeps records in insertion order. Records are copied on the way in and
// out, so the history held here can only grow through Update.
type Store struct {
	mu      sync.RWMutex
	records []model.CredentialRecord
	lastID  int64
	now     func() time.Time
}

// NewStore creates an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register appends a new record. A caller-supplied ID that is already in use
// returns driven.ErrRecordExists.
func (s *Store) Register(_ context.Context, input model.RecordInput) (model.CredentialRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()

	id := input.ID
	if id == 0 {
		id = model.NextID(now, s.lastID)
	} else if s.indexOf(id) >= 0 {
		return model.CredentialRecord{}, fmt.Errorf("register record %d: %w", id, driven.ErrRecordExists)
	}
	if id > s.lastID {
		s.lastID = id
	}

	rec := model.NewRecord(id, input, now)
	s.records = append(s.records, rec)

	return rec.Clone(), nil
}

// Update appends a history entry and replaces the record's editable fields.
func (s *Store) Update(_ context.Context, input model.RecordInput) (model.CredentialRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(input.ID)
	if i < 0 {
		return model.CredentialRecord{}, fmt.Errorf("update record %d: %w", input.ID, driven.ErrRecordNotFound)
	}

	s.records[i].ApplyUpdate(input, s.now().UTC())

	return s.records[i].Clone(), nil
}

// Remove deletes the record with the given ID.
func (s *Store) Remove(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("remove record %d: %w", id, driven.ErrRecordNotFound)
	}

	s.records = slices.Delete(s.records, i, i+1)
	return nil
}

// Get returns the record with the given ID, or nil if it does not exist.
func (s *Store) Get(_ context.Context, id int64) (*model.CredentialRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, nil
	}

	rec := s.records[i].Clone()
	return &rec, nil
}

// List returns every record in insertion order.
func (s *Store) List(_ context.Context) ([]model.CredentialRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.CredentialRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec.Clone())
	}
	return out, nil
}

// indexOf returns the slice position of id, or -1. Callers must hold mu.
func (s *Store) indexOf(id int64) int {
	return slices.IndexFunc(s.records, func(rec model.CredentialRecord) bool {
		return rec.ID == id
	})
}
