package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/pinvault/internal/domain/model"
	"github.com/ericfisherdev/pinvault/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RecordStore = (*RecordRepo)(nil)

// RecordRepo is the SQLite implementation of the RecordStore port interface.
// History rows are keyed by (record_id, seq); seq 0 is the creation entry.
type RecordRepo struct {
	db  *DB
	now func() time.Time
}

// NewRecordRepo creates a new RecordRepo backed by the given DB.
func NewRecordRepo(db *DB) *RecordRepo {
	return &RecordRepo{db: db, now: time.Now}
}

// WithClock returns a copy of the repo that reads time from now. Used by tests
// that assert exact timestamps.
func (r *RecordRepo) WithClock(now func() time.Time) *RecordRepo {
	return &RecordRepo{db: r.db, now: now}
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Register inserts a record and its creation history entry in one transaction.
func (r *RecordRepo) Register(ctx context.Context, input model.RecordInput) (model.CredentialRecord, error) {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return model.CredentialRecord{}, fmt.Errorf("begin register: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := r.now().UTC()

	id := input.ID
	if id == 0 {
		var last int64
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM credential_records`).Scan(&last); err != nil {
			return model.CredentialRecord{}, fmt.Errorf("read last record id: %w", err)
		}
		id = model.NextID(now, last)
	}

	rec := model.NewRecord(id, input, now)

	const insertRecord = `INSERT INTO credential_records
		(id, site_name, username, password, url, memo, keyword, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, insertRecord,
		rec.ID, rec.SiteName, rec.Username, rec.Password, rec.URL, rec.Memo, rec.Keyword, formatTime(rec.CreatedAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return model.CredentialRecord{}, fmt.Errorf("register record %d: %w", id, driven.ErrRecordExists)
		}
		return model.CredentialRecord{}, fmt.Errorf("register record %d: %w", id, err)
	}

	if err := insertHistory(ctx, tx, rec.ID, 0, rec.History[0]); err != nil {
		return model.CredentialRecord{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.CredentialRecord{}, fmt.Errorf("commit register %d: %w", id, err)
	}

	return rec, nil
}

// Update appends a history entry diffed against the stored password and memo,
// then replaces the editable columns. Both happen in a single transaction.
func (r *RecordRepo) Update(ctx context.Context, input model.RecordInput) (model.CredentialRecord, error) {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return model.CredentialRecord{}, fmt.Errorf("begin update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := getRecord(ctx, tx, input.ID)
	if err != nil {
		return model.CredentialRecord{}, fmt.Errorf("update record %d: %w", input.ID, err)
	}
	if current == nil {
		return model.CredentialRecord{}, fmt.Errorf("update record %d: %w", input.ID, driven.ErrRecordNotFound)
	}

	entry := current.ApplyUpdate(input, r.now().UTC())

	if err := insertHistory(ctx, tx, current.ID, len(current.History)-1, entry); err != nil {
		return model.CredentialRecord{}, err
	}

	const updateRecord = `UPDATE credential_records
		SET site_name = ?, username = ?, password = ?, url = ?, memo = ?, keyword = ?
		WHERE id = ?`
	_, err = tx.ExecContext(ctx, updateRecord,
		current.SiteName, current.Username, current.Password, current.URL, current.Memo, current.Keyword, current.ID)
	if err != nil {
		return model.CredentialRecord{}, fmt.Errorf("update record %d: %w", input.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return model.CredentialRecord{}, fmt.Errorf("commit update %d: %w", input.ID, err)
	}

	return *current, nil
}

// Remove deletes a record. History rows follow through ON DELETE CASCADE.
func (r *RecordRepo) Remove(ctx context.Context, id int64) error {
	const query = `DELETE FROM credential_records WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("remove record %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("remove record %d: %w", id, driven.ErrRecordNotFound)
	}

	return nil
}

// Get retrieves a record with its full history. Returns nil, nil if the record
// does not exist.
func (r *RecordRepo) Get(ctx context.Context, id int64) (*model.CredentialRecord, error) {
	rec, err := getRecord(ctx, r.db.Reader, id)
	if err != nil {
		return nil, fmt.Errorf("get record %d: %w", id, err)
	}
	return rec, nil
}

// List returns all records in insertion order (creation time, then id), each
// with its history.
func (r *RecordRepo) List(ctx context.Context) ([]model.CredentialRecord, error) {
	const query = `SELECT id, site_name, username, password, url, memo, keyword, created_at
		FROM credential_records ORDER BY created_at, id`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	records := []model.CredentialRecord{}
	index := make(map[int64]int)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		index[rec.ID] = len(records)
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	history, err := loadHistory(ctx, r.db.Reader, `ORDER BY record_id, seq`)
	if err != nil {
		return nil, err
	}
	for recordID, entries := range history {
		if i, ok := index[recordID]; ok {
			records[i].History = entries
		}
	}

	return records, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*model.CredentialRecord, error) {
	var rec model.CredentialRecord
	var createdAt string

	err := s.Scan(&rec.ID, &rec.SiteName, &rec.Username, &rec.Password, &rec.URL, &rec.Memo, &rec.Keyword, &createdAt)
	if err != nil {
		return nil, err
	}

	rec.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &rec, nil
}

func getRecord(ctx context.Context, q querier, id int64) (*model.CredentialRecord, error) {
	const query = `SELECT id, site_name, username, password, url, memo, keyword, created_at
		FROM credential_records WHERE id = ?`

	rec, err := scanRecord(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	history, err := loadHistory(ctx, q, `WHERE record_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	rec.History = history[id]

	return rec, nil
}

// loadHistory reads history rows filtered and ordered by clause, grouped by record ID.
func loadHistory(ctx context.Context, q querier, clause string, args ...any) (map[int64][]model.HistoryEntry, error) {
	query := `SELECT record_id, old_password, old_memo, new_password, new_memo, updated_at
		FROM record_history ` + clause

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]model.HistoryEntry)
	for rows.Next() {
		var recordID int64
		var entry model.HistoryEntry
		var updatedAt string
		if err := rows.Scan(&recordID,
			&entry.OldState.Password, &entry.OldState.Memo,
			&entry.NewState.Password, &entry.NewState.Memo,
			&updatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entry.UpdatedAt, err = parseTime(updatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse updated_at for record %d: %w", recordID, err)
		}
		out[recordID] = append(out[recordID], entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	return out, nil
}

func insertHistory(ctx context.Context, tx *sql.Tx, recordID int64, seq int, entry model.HistoryEntry) error {
	const query = `INSERT INTO record_history
		(record_id, seq, old_password, old_memo, new_password, new_memo, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := tx.ExecContext(ctx, query, recordID, seq,
		entry.OldState.Password, entry.OldState.Memo,
		entry.NewState.Password, entry.NewState.Memo,
		formatTime(entry.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert history %d/%d: %w", recordID, seq, err)
	}
	return nil
}

// storedTimeLayout is RFC 3339 with a fixed nine-digit fraction. Fixed width
// keeps text order equal to time order, which List relies on for ORDER BY.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
