package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/pinvault/internal/domain/model"
)

// Sentinel errors returned by RecordStore implementations.
var (
	// ErrRecordNotFound indicates no record exists with the requested ID.
	ErrRecordNotFound = errors.New("record not found")

	// ErrRecordExists indicates a caller-supplied ID is already in use.
	ErrRecordExists = errors.New("record already exists")
)

// RecordStore defines the driven port for credential record persistence. It is
// the only writer of records and their history.
//
// Register assigns an ID when input.ID is zero and seeds the history with a
// single creation entry. Update appends a history entry computed from the
// stored password and memo before replacing the editable fields. Update and
// Remove return ErrRecordNotFound, and leave the record set untouched, when the
// ID does not exist. Get returns (nil, nil) for a missing ID.
type RecordStore interface {
	Register(ctx context.Context, input model.RecordInput) (model.CredentialRecord, error)
	Update(ctx context.Context, input model.RecordInput) (model.CredentialRecord, error)
	Remove(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*model.CredentialRecord, error)
	List(ctx context.Context) ([]model.CredentialRecord, error)
}
