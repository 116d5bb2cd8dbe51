package application_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/pinvault/internal/adapter/driven/memory"
	"github.com/ericfisherdev/pinvault/internal/application"
	"github.com/ericfisherdev/pinvault/internal/domain/model"
	"github.com/ericfisherdev/pinvault/internal/domain/port/driven"
)

const testPIN = "1234"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newVault(t *testing.T) (*application.VaultService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return application.NewVaultService(store, application.NewGate(testPIN), discardLogger()), store
}

// unlockEdit runs a confirmed edit action for id.
func unlockEdit(t *testing.T, svc *application.VaultService, id int64) {
	t.Helper()
	ctx := context.Background()
	_, err := svc.RequestAction(ctx, model.GuardedOpEdit, id)
	require.NoError(t, err)
	_, err = svc.ConfirmAction(ctx, testPIN)
	require.NoError(t, err)
}

func TestVaultService_RegisterGoogle(t *testing.T) {
	svc, store := newVault(t)
	ctx := context.Background()

	rec, err := svc.Register(ctx, model.RecordInput{SiteName: "Google", Username: "u1", Password: "p1"})
	require.NoError(t, err)

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, rec.ID, all[0].ID)

	require.Len(t, all[0].History, 1)
	assert.Equal(t, model.Snapshot{Password: "", Memo: ""}, all[0].History[0].OldState)
	assert.Equal(t, model.Snapshot{Password: "p1", Memo: ""}, all[0].History[0].NewState)
}

func TestVaultService_RegisterValidation(t *testing.T) {
	svc, store := newVault(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input model.RecordInput
		field string
	}{
		{"missing site", model.RecordInput{Username: "u", Password: "p"}, "site_name"},
		{"missing username", model.RecordInput{SiteName: "s", Password: "p"}, "username"},
		{"missing password", model.RecordInput{SiteName: "s", Username: "u"}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.input)
			require.ErrorIs(t, err, application.ErrMissingField)

			var vErr *application.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestVaultService_ListSortsAndFilters(t *testing.T) {
	svc, _ := newVault(t)
	ctx := context.Background()

	for _, name := range []string{"Seven Bank", "apple", "7-Eleven", "Google"} {
		_, err := svc.Register(ctx, model.RecordInput{SiteName: name, Username: "user", Password: "p"})
		require.NoError(t, err)
	}

	hits, err := svc.List(ctx, "")
	require.NoError(t, err)
	names := make([]string, len(hits))
	for i, h := range hits {
		names[i] = h.Record.SiteName
	}
	assert.Equal(t, []string{"7-Eleven", "apple", "Google", "Seven Bank"}, names)

	hits, err = svc.List(ctx, "7")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "7-Eleven", hits[0].Record.SiteName)
	assert.Equal(t, application.TierSiteName, hits[0].Tier)
}

func TestVaultService_EditRequiresUnlock(t *testing.T) {
	svc, _ := newVault(t)
	ctx := context.Background()

	rec, err := svc.Register(ctx, model.RecordInput{SiteName: "Apple", Username: "a", Password: "p1"})
	require.NoError(t, err)

	_, err = svc.SubmitEdit(ctx, model.RecordInput{ID: rec.ID, SiteName: "Apple", Username: "a", Password: "p2"})
	require.ErrorIs(t, err, application.ErrEditLocked)

	unlockEdit(t, svc, rec.ID)

	target, err := svc.EditTarget(ctx)
	require.NoError(t, err)
	require.NotNil(t, target)
	assert.Equal(t, rec.ID, target.ID)

	updated, err := svc.SubmitEdit(ctx, model.RecordInput{ID: rec.ID, SiteName: "Apple", Username: "a", Password: "p2"})
	require.NoError(t, err)
	assert.Equal(t, "p2", updated.Password)

	_, err = svc.SubmitEdit(ctx, model.RecordInput{ID: rec.ID, SiteName: "Apple", Username: "a", Password: "p3"})
	require.ErrorIs(t, err, application.ErrEditLocked, "the unlock is consumed by the first submit")

	target, err = svc.EditTarget(ctx)
	require.NoError(t, err)
	assert.Nil(t, target)
}

func TestVaultService_EditOnlyUnlockedRecord(t *testing.T) {
	svc, _ := newVault(t)
	ctx := context.Background()

	a, err := svc.Register(ctx, model.RecordInput{SiteName: "A", Username: "a", Password: "p"})
	require.NoError(t, err)
	b, err := svc.Register(ctx, model.RecordInput{SiteName: "B", Username: "b", Password: "p"})
	require.NoError(t, err)

	unlockEdit(t, svc, a.ID)

	_, err = svc.SubmitEdit(ctx, model.RecordInput{ID: b.ID, SiteName: "B", Username: "b", Password: "x"})
	require.ErrorIs(t, err, application.ErrEditLocked)

	svc.CancelEdit()
	_, err = svc.SubmitEdit(ctx, model.RecordInput{ID: a.ID, SiteName: "A", Username: "a", Password: "x"})
	require.ErrorIs(t, err, application.ErrEditLocked)
}

func TestVaultService_HistoryChainAfterEdits(t *testing.T) {
	svc, store := newVault(t)
	ctx := context.Background()

	rec, err := svc.Register(ctx, model.RecordInput{SiteName: "Naver", Username: "n", Password: "p0", Memo: "m0"})
	require.NoError(t, err)

	const edits = 5
	for i := 1; i <= edits; i++ {
		unlockEdit(t, svc, rec.ID)
		_, err := svc.SubmitEdit(ctx, model.RecordInput{
			ID: rec.ID, SiteName: "Naver", Username: "n",
			Password: fmt.Sprintf("p%d", i), Memo: fmt.Sprintf("m%d", i),
		})
		require.NoError(t, err)
	}

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.History, edits+1)
	assert.True(t, model.HistoryIsLinear(got.History))

	_, err = svc.RequestAction(ctx, model.GuardedOpViewHistory, rec.ID)
	require.NoError(t, err)
	result, err := svc.ConfirmAction(ctx, testPIN)
	require.NoError(t, err)
	require.Len(t, result.Revisions, edits)
	assert.Equal(t, model.Snapshot{Password: "p0", Memo: "m0"}, result.Revisions[0].OldState)
}

func TestVaultService_ViewHistoryOfUntouchedRecord(t *testing.T) {
	svc, _ := newVault(t)
	ctx := context.Background()

	rec, err := svc.Register(ctx, model.RecordInput{SiteName: "Apple", Username: "a", Password: "p"})
	require.NoError(t, err)

	_, err = svc.RequestAction(ctx, model.GuardedOpViewHistory, rec.ID)
	require.NoError(t, err)
	result, err := svc.ConfirmAction(ctx, testPIN)
	require.NoError(t, err)
	assert.Empty(t, result.Revisions)
	assert.NotNil(t, result.Revisions)
}

func TestVaultService_DeleteFlow(t *testing.T) {
	svc, store := newVault(t)
	ctx := context.Background()

	rec, err := svc.Register(ctx, model.RecordInput{SiteName: "Amazon", Username: "a", Password: "p"})
	require.NoError(t, err)

	pending, err := svc.RequestAction(ctx, model.GuardedOpDelete, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Unlock to Delete", pending.Title)

	_, err = svc.ConfirmAction(ctx, "9999")
	require.ErrorIs(t, err, application.ErrInvalidPIN)

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1, "wrong PIN must not run the action")

	result, err := svc.ConfirmAction(ctx, testPIN)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, result.Record.ID)

	all, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, ok := svc.PendingAction()
	assert.False(t, ok)
}

func TestVaultService_DeleteClearsEditUnlock(t *testing.T) {
	svc, _ := newVault(t)
	ctx := context.Background()

	rec, err := svc.Register(ctx, model.RecordInput{SiteName: "Amazon", Username: "a", Password: "p"})
	require.NoError(t, err)
	unlockEdit(t, svc, rec.ID)

	_, err = svc.RequestAction(ctx, model.GuardedOpDelete, rec.ID)
	require.NoError(t, err)
	_, err = svc.ConfirmAction(ctx, testPIN)
	require.NoError(t, err)

	_, err = svc.SubmitEdit(ctx, model.RecordInput{ID: rec.ID, SiteName: "Amazon", Username: "a", Password: "q"})
	require.ErrorIs(t, err, application.ErrEditLocked)
}

func TestVaultService_RequestActionRejections(t *testing.T) {
	svc, _ := newVault(t)
	ctx := context.Background()

	_, err := svc.RequestAction(ctx, model.GuardedOp("rename"), 1)
	require.ErrorIs(t, err, application.ErrUnknownAction)

	_, err = svc.RequestAction(ctx, model.GuardedOpDelete, 404)
	require.ErrorIs(t, err, driven.ErrRecordNotFound)

	_, ok := svc.PendingAction()
	assert.False(t, ok, "rejected requests must not touch the gate")
}

func TestVaultService_ConfirmWithoutPending(t *testing.T) {
	svc, _ := newVault(t)

	_, err := svc.ConfirmAction(context.Background(), testPIN)
	require.ErrorIs(t, err, application.ErrNoPendingAction)
}

func TestVaultService_CancelAction(t *testing.T) {
	svc, store := newVault(t)
	ctx := context.Background()

	rec, err := svc.Register(ctx, model.RecordInput{SiteName: "Netflix", Username: "n", Password: "p"})
	require.NoError(t, err)

	_, err = svc.RequestAction(ctx, model.GuardedOpDelete, rec.ID)
	require.NoError(t, err)
	assert.True(t, svc.CancelAction())

	_, err = svc.ConfirmAction(ctx, testPIN)
	require.ErrorIs(t, err, application.ErrNoPendingAction)

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestVaultService_SeedDemo(t *testing.T) {
	svc, _ := newVault(t)
	ctx := context.Background()

	n, err := svc.SeedDemo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	n, err = svc.SeedDemo(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "a populated vault is left alone")

	hits, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, hits, 6)
	assert.Equal(t, "Amazon", hits[0].Record.SiteName)

	hits, err = svc.List(ctx, "streaming")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Netflix", hits[0].Record.SiteName)
	assert.Equal(t, application.TierKeyword, hits[0].Tier)
}

// failingStore is a RecordStore whose every call fails.
type failingStore struct{ err error }

func (f failingStore) Register(context.Context, model.RecordInput) (model.CredentialRecord, error) {
	return model.CredentialRecord{}, f.err
}

func (f failingStore) Update(context.Context, model.RecordInput) (model.CredentialRecord, error) {
	return model.CredentialRecord{}, f.err
}

func (f failingStore) Remove(context.Context, int64) error { return f.err }

func (f failingStore) Get(context.Context, int64) (*model.CredentialRecord, error) {
	return nil, f.err
}

func (f failingStore) List(context.Context) ([]model.CredentialRecord, error) { return nil, f.err }

func TestVaultService_StoreErrorsPropagate(t *testing.T) {
	boom := errors.New("disk on fire")
	svc := application.NewVaultService(failingStore{err: boom}, application.NewGate(testPIN), discardLogger())
	ctx := context.Background()

	_, err := svc.List(ctx, "")
	require.ErrorIs(t, err, boom)

	_, err = svc.Register(ctx, model.RecordInput{SiteName: "s", Username: "u", Password: "p"})
	require.ErrorIs(t, err, boom)

	_, err = svc.RequestAction(ctx, model.GuardedOpEdit, 1)
	require.ErrorIs(t, err, boom)

	_, err = svc.SeedDemo(ctx)
	require.ErrorIs(t, err, boom)
}

func TestVaultService_SubmitEditMissingRecord(t *testing.T) {
	svc, store := newVault(t)
	ctx := context.Background()

	rec, err := svc.Register(ctx, model.RecordInput{SiteName: "Google", Username: "u", Password: "p"})
	require.NoError(t, err)

	_, err = svc.SubmitEdit(ctx, model.RecordInput{ID: rec.ID + 1000, SiteName: "x", Username: "x", Password: "x"})
	require.ErrorIs(t, err, driven.ErrRecordNotFound)

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, rec.ID, all[0].ID)
	assert.Len(t, all[0].History, 1)
}
