// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// StatusKind selects the styling of the status line.
type StatusKind string

const (
	StatusInfo  StatusKind = "info"
	StatusError StatusKind = "error"
)

// StatusViewModel is the one-line message shown above the record list.
type StatusViewModel struct {
	Message string
	Kind    StatusKind
}

// RecordRowViewModel holds presentation-ready data for one row of the record list.
type RecordRowViewModel struct {
	ID        int64
	SiteName  string
	Username  string
	MatchedOn string
}

// PendingViewModel holds the PIN dialog state.
type PendingViewModel struct {
	Title    string
	Action   string
	RecordID int64
	Error    string
}

// RecordDetailViewModel holds the unlocked view of a single record.
type RecordDetailViewModel struct {
	SiteName  string
	Username  string
	Password  string
	URL       string
	Keyword   string
	MemoHTML  string // sanitized HTML rendered from the memo's Markdown
	CreatedAt string
}

// RevisionViewModel is one edit in the history view.
type RevisionViewModel struct {
	UpdatedAt   string
	OldPassword string
	OldMemo     string
	NewPassword string
	NewMemo     string
}

// HistoryViewModel holds the revision list of a single record.
type HistoryViewModel struct {
	SiteName  string
	Revisions []RevisionViewModel
}

// RecordFormViewModel holds the register/edit form state.
type RecordFormViewModel struct {
	Title      string
	ActionURL  string // POST target for the form
	CancelURL  string // POST target for the cancel button; empty links back to the dashboard
	IsEdit     bool
	ID         int64
	SiteName   string
	Username   string
	Password   string
	URL        string
	Memo       string
	Keyword    string
	Error      string
	Analysis   string
	AnalyzeURL string
}

// DashboardViewModel is the full state of the single dashboard page. At most
// one of Pending, Details, History and Form is set.
type DashboardViewModel struct {
	CSRFToken string
	Query     string
	Status    StatusViewModel
	Rows      []RecordRowViewModel
	AIEnabled bool

	Pending *PendingViewModel
	Details *RecordDetailViewModel
	History *HistoryViewModel
	Form    *RecordFormViewModel
}
