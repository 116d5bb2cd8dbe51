package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/pinvault/internal/domain/model"
	"github.com/ericfisherdev/pinvault/internal/domain/port/driven"
)

func TestRecordRepo_RegisterAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepo(db).WithClock(steppingClock())
	ctx := context.Background()

	rec, err := repo.Register(ctx, model.RecordInput{
		SiteName: "Google", Username: "u1", Password: "p1",
		URL: "https://google.com", Memo: "", Keyword: "search, mail",
	})
	require.NoError(t, err)
	assert.Equal(t, testTime.UnixMilli(), rec.ID)

	got, err := repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "Google", got.SiteName)
	assert.Equal(t, "search, mail", got.Keyword)
	assert.Equal(t, testTime, got.CreatedAt)
	require.Len(t, got.History, 1)
	assert.Equal(t, model.Snapshot{}, got.History[0].OldState)
	assert.Equal(t, model.Snapshot{Password: "p1"}, got.History[0].NewState)
	assert.Equal(t, testTime, got.History[0].UpdatedAt)
}

func TestRecordRepo_GetMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepo(db)

	got, err := repo.Get(context.Background(), 12345)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRecordRepo_Register_DuplicateID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepo(db)
	ctx := context.Background()

	in := model.RecordInput{ID: 7, SiteName: "7-Eleven", Username: "u", Password: "p"}
	_, err := repo.Register(ctx, in)
	require.NoError(t, err)

	_, err = repo.Register(ctx, in)
	require.ErrorIs(t, err, driven.ErrRecordExists)
}

func TestRecordRepo_Register_GeneratedIDsIncrease(t *testing.T) {
	db := setupTestDB(t)
	// A frozen clock forces the generator to bump past the last stored ID.
	repo := NewRecordRepo(db).WithClock(func() time.Time { return testTime })
	ctx := context.Background()

	var last int64
	for i := range 3 {
		rec, err := repo.Register(ctx, model.RecordInput{SiteName: fmt.Sprintf("site-%d", i), Username: "u", Password: "p"})
		require.NoError(t, err)
		assert.Greater(t, rec.ID, last)
		last = rec.ID
	}
}

func TestRecordRepo_Update_AppendsLinearHistory(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepo(db).WithClock(steppingClock())
	ctx := context.Background()

	rec, err := repo.Register(ctx, model.RecordInput{SiteName: "Apple", Username: "appleid", Password: "a1", Memo: "m1"})
	require.NoError(t, err)

	for i := 2; i <= 4; i++ {
		_, err := repo.Update(ctx, model.RecordInput{
			ID: rec.ID, SiteName: "Apple", Username: "appleid",
			Password: fmt.Sprintf("a%d", i), Memo: fmt.Sprintf("m%d", i),
		})
		require.NoError(t, err)
	}

	got, err := repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	require.Len(t, got.History, 4)
	assert.True(t, model.HistoryIsLinear(got.History))
	assert.Equal(t, model.Snapshot{Password: "a3", Memo: "m3"}, got.History[3].OldState)
	assert.Equal(t, model.Snapshot{Password: "a4", Memo: "m4"}, got.History[3].NewState)
	assert.Equal(t, rec.CreatedAt, got.CreatedAt)
	assert.Equal(t, "a4", got.Password)
}

func TestRecordRepo_Update_Missing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepo(db)
	ctx := context.Background()

	_, err := repo.Update(ctx, model.RecordInput{ID: 999, SiteName: "x", Username: "x", Password: "x"})
	require.ErrorIs(t, err, driven.ErrRecordNotFound)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRecordRepo_Remove(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepo(db)
	ctx := context.Background()

	rec, err := repo.Register(ctx, model.RecordInput{SiteName: "Naver", Username: "n", Password: "p"})
	require.NoError(t, err)
	_, err = repo.Update(ctx, model.RecordInput{ID: rec.ID, SiteName: "Naver", Username: "n", Password: "p2"})
	require.NoError(t, err)

	require.NoError(t, repo.Remove(ctx, rec.ID))

	got, err := repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	var orphans int
	require.NoError(t, db.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM record_history WHERE record_id = ?`, rec.ID).Scan(&orphans))
	assert.Zero(t, orphans, "history rows should cascade with the record")

	err = repo.Remove(ctx, rec.ID)
	require.ErrorIs(t, err, driven.ErrRecordNotFound)
}

func TestRecordRepo_List_AttachesHistory(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepo(db).WithClock(steppingClock())
	ctx := context.Background()

	first, err := repo.Register(ctx, model.RecordInput{SiteName: "Netflix", Username: "n", Password: "p"})
	require.NoError(t, err)
	second, err := repo.Register(ctx, model.RecordInput{SiteName: "Amazon", Username: "a", Password: "p"})
	require.NoError(t, err)
	_, err = repo.Update(ctx, model.RecordInput{ID: second.ID, SiteName: "Amazon", Username: "a", Password: "q"})
	require.NoError(t, err)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	assert.Equal(t, first.ID, all[0].ID)
	assert.Len(t, all[0].History, 1)
	assert.Equal(t, second.ID, all[1].ID)
	assert.Len(t, all[1].History, 2)
}

func TestRecordRepo_List_InsertionOrderAcrossFractions(t *testing.T) {
	db := setupTestDB(t)
	// .100 and .120 render as ".1" and ".12" without a fixed-width fraction,
	// which sort the wrong way round as text.
	repo := NewRecordRepo(db).WithClock(sequenceClock(
		testTime.Add(100*time.Millisecond),
		testTime.Add(120*time.Millisecond),
	))
	ctx := context.Background()

	first, err := repo.Register(ctx, model.RecordInput{SiteName: "Bank", Username: "first", Password: "p"})
	require.NoError(t, err)
	second, err := repo.Register(ctx, model.RecordInput{SiteName: "Bank", Username: "second", Password: "p"})
	require.NoError(t, err)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, []int64{first.ID, second.ID}, []int64{all[0].ID, all[1].ID})
	assert.Equal(t, testTime.Add(100*time.Millisecond), all[0].CreatedAt)
}

func TestFormatTime_FixedWidth(t *testing.T) {
	a := formatTime(testTime.Add(100 * time.Millisecond))
	b := formatTime(testTime.Add(120 * time.Millisecond))
	c := formatTime(testTime)

	assert.Len(t, b, len(a))
	assert.Len(t, c, len(a))
	assert.Less(t, c, a)
	assert.Less(t, a, b)

	parsed, err := parseTime(a)
	require.NoError(t, err)
	assert.Equal(t, testTime.Add(100*time.Millisecond), parsed)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	// setupTestDB already migrated; a second run must be a no-op.
	require.NoError(t, RunMigrations(db.Writer))
}
