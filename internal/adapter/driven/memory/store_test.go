package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/pinvault/internal/domain/model"
	"github.com/ericfisherdev/pinvault/internal/domain/port/driven"
)

var testTime = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

// steppingClock returns a clock that advances one second per call.
func steppingClock() func() time.Time {
	current := testTime
	return func() time.Time {
		t := current
		current = current.Add(time.Second)
		return t
	}
}

func googleInput() model.RecordInput {
	return model.RecordInput{SiteName: "Google", Username: "u1", Password: "p1"}
}

func TestStore_Register_SeedsHistory(t *testing.T) {
	store := NewStore(WithClock(steppingClock()))
	ctx := context.Background()

	rec, err := store.Register(ctx, googleInput())
	require.NoError(t, err)

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	assert.Equal(t, testTime, rec.CreatedAt)
	assert.Equal(t, testTime.UnixMilli(), rec.ID)
	require.Len(t, rec.History, 1)
	assert.Equal(t, model.Snapshot{}, rec.History[0].OldState)
	assert.Equal(t, model.Snapshot{Password: "p1", Memo: ""}, rec.History[0].NewState)
	assert.Equal(t, testTime, rec.History[0].UpdatedAt)
}

func TestStore_Register_IDsAreUnique(t *testing.T) {
	fixed := func() time.Time { return testTime }
	store := NewStore(WithClock(fixed))
	ctx := context.Background()

	seen := make(map[int64]bool)
	for range 5 {
		rec, err := store.Register(ctx, googleInput())
		require.NoError(t, err)
		assert.False(t, seen[rec.ID], "duplicate id %d", rec.ID)
		seen[rec.ID] = true
	}
}

func TestStore_Register_CallerSuppliedID(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	in := googleInput()
	in.ID = 42
	rec, err := store.Register(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, int64(42), rec.ID)

	_, err = store.Register(ctx, in)
	require.ErrorIs(t, err, driven.ErrRecordExists)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStore_Update_ChainsHistory(t *testing.T) {
	store := NewStore(WithClock(steppingClock()))
	ctx := context.Background()

	rec, err := store.Register(ctx, googleInput())
	require.NoError(t, err)

	const updates = 4
	for i := range updates {
		in := googleInput()
		in.ID = rec.ID
		in.Password = "p" + string(rune('2'+i))
		in.Memo = "memo " + string(rune('a'+i))
		_, err := store.Update(ctx, in)
		require.NoError(t, err)
	}

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Len(t, got.History, updates+1)
	assert.True(t, model.HistoryIsLinear(got.History))
	assert.Equal(t, rec.CreatedAt, got.CreatedAt)
	assert.Equal(t, "p5", got.Password)
	assert.Equal(t, model.Snapshot{Password: "p5", Memo: "memo d"}, got.History[updates].NewState)
}

func TestStore_Update_ReplacesFields(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	rec, err := store.Register(ctx, model.RecordInput{
		SiteName: "Google", Username: "u1", Password: "p1",
		URL: "https://google.com", Memo: "old", Keyword: "search",
	})
	require.NoError(t, err)

	updated, err := store.Update(ctx, model.RecordInput{
		ID: rec.ID, SiteName: "Gmail", Username: "u2", Password: "p2",
		URL: "https://mail.google.com", Memo: "new", Keyword: "mail",
	})
	require.NoError(t, err)

	assert.Equal(t, "Gmail", updated.SiteName)
	assert.Equal(t, "u2", updated.Username)
	assert.Equal(t, "https://mail.google.com", updated.URL)
	assert.Equal(t, "mail", updated.Keyword)
	require.Len(t, updated.History, 2)
	assert.Equal(t, model.Snapshot{Password: "p1", Memo: "old"}, updated.History[1].OldState)
	assert.Equal(t, model.Snapshot{Password: "p2", Memo: "new"}, updated.History[1].NewState)
}

func TestStore_MissingID_LeavesSetUnchanged(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	_, err := store.Register(ctx, googleInput())
	require.NoError(t, err)
	_, err = store.Register(ctx, model.RecordInput{SiteName: "Apple", Username: "u2", Password: "p2"})
	require.NoError(t, err)

	before, err := store.List(ctx)
	require.NoError(t, err)

	_, err = store.Update(ctx, model.RecordInput{ID: 999, SiteName: "X", Username: "x", Password: "x"})
	require.ErrorIs(t, err, driven.ErrRecordNotFound)

	err = store.Remove(ctx, 999)
	require.ErrorIs(t, err, driven.ErrRecordNotFound)

	after, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestStore_Remove(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	rec, err := store.Register(ctx, googleInput())
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, rec.ID))

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_ReturnedRecordsAreCopies(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	rec, err := store.Register(ctx, googleInput())
	require.NoError(t, err)

	rec.History[0].NewState.Password = "tampered"
	rec.Password = "tampered"

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "p1", got.Password)
	assert.Equal(t, "p1", got.History[0].NewState.Password)
}
