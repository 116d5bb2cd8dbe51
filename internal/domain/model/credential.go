package model

import (
	"slices"
	"time"
)

// Snapshot is the pair of fields tracked by a record's revision history.
type Snapshot struct {
	Password string
	Memo     string
}

// HistoryEntry records one transition of a record's password and memo.
type HistoryEntry struct {
	OldState  Snapshot
	NewState  Snapshot
	UpdatedAt time.Time
}

// CredentialRecord is a single stored credential. Keyword is a comma-separated
// tag string that is only ever used for substring search.
type CredentialRecord struct {
	ID        int64
	SiteName  string
	Username  string
	Password  string
	URL       string
	Memo      string
	Keyword   string
	CreatedAt time.Time
	History   []HistoryEntry
}

// RecordInput carries the caller-editable fields of a record. ID is zero when
// the store should assign one.
type RecordInput struct {
	ID       int64
	SiteName string
	Username string
	Password string
	URL      string
	Memo     string
	Keyword  string
}

// Snapshot returns the record's current password and memo.
func (r CredentialRecord) Snapshot() Snapshot {
	return Snapshot{Password: r.Password, Memo: r.Memo}
}

// Revisions returns the history entries produced by edits, skipping the entry
// written at registration.
func (r CredentialRecord) Revisions() []HistoryEntry {
	if len(r.History) <= 1 {
		return []HistoryEntry{}
	}
	return slices.Clone(r.History[1:])
}

// Clone returns a deep copy so callers cannot alias a store's history slice.
func (r CredentialRecord) Clone() CredentialRecord {
	r.History = slices.Clone(r.History)
	return r
}

// Snapshot returns the password and memo carried by the input.
func (in RecordInput) Snapshot() Snapshot {
	return Snapshot{Password: in.Password, Memo: in.Memo}
}

// NewRecord builds a freshly registered record. Its history holds exactly one
// entry going from the empty snapshot to the initial password and memo.
func NewRecord(id int64, in RecordInput, now time.Time) CredentialRecord {
	return CredentialRecord{
		ID:        id,
		SiteName:  in.SiteName,
		Username:  in.Username,
		Password:  in.Password,
		URL:       in.URL,
		Memo:      in.Memo,
		Keyword:   in.Keyword,
		CreatedAt: now,
		History: []HistoryEntry{{
			OldState:  Snapshot{},
			NewState:  in.Snapshot(),
			UpdatedAt: now,
		}},
	}
}

// ApplyUpdate appends a history entry diffing the current snapshot against the
// input, then replaces every editable field. ID and CreatedAt are kept.
func (r *CredentialRecord) ApplyUpdate(in RecordInput, now time.Time) HistoryEntry {
	entry := HistoryEntry{
		OldState:  r.Snapshot(),
		NewState:  in.Snapshot(),
		UpdatedAt: now,
	}
	r.History = append(r.History, entry)

	r.SiteName = in.SiteName
	r.Username = in.Username
	r.Password = in.Password
	r.URL = in.URL
	r.Memo = in.Memo
	r.Keyword = in.Keyword

	return entry
}

// HistoryIsLinear reports whether every entry's NewState equals the next
// entry's OldState.
func HistoryIsLinear(history []HistoryEntry) bool {
	for i := 1; i < len(history); i++ {
		if history[i-1].NewState != history[i].OldState {
			return false
		}
	}
	return true
}

// NextID returns a time-derived identifier strictly greater than last.
func NextID(now time.Time, last int64) int64 {
	id := now.UnixMilli()
	if id <= last {
		id = last + 1
	}
	return id
}
