package web

import (
	"fmt"
	"time"

	vm "github.com/ericfisherdev/pinvault/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/pinvault/internal/application"
	"github.com/ericfisherdev/pinvault/internal/domain/model"
)

const displayTimeLayout = "2006-01-02 15:04:05 MST"

func formatDisplayTime(t time.Time) string {
	return t.Local().Format(displayTimeLayout)
}

// toRecordRows converts search hits to list rows.
func toRecordRows(hits []application.SearchHit) []vm.RecordRowViewModel {
	rows := make([]vm.RecordRowViewModel, 0, len(hits))
	for _, hit := range hits {
		rows = append(rows, vm.RecordRowViewModel{
			ID:        hit.Record.ID,
			SiteName:  hit.Record.SiteName,
			Username:  hit.Record.Username,
			MatchedOn: hit.Tier.String(),
		})
	}
	return rows
}

// toPendingViewModel converts the gate slot to the PIN dialog state.
func toPendingViewModel(action model.PendingAction) *vm.PendingViewModel {
	return &vm.PendingViewModel{
		Title:    action.Title,
		Action:   string(action.Kind),
		RecordID: action.RecordID,
	}
}

// toRecordDetailViewModel renders the memo through the Markdown pipeline.
func toRecordDetailViewModel(rec model.CredentialRecord) *vm.RecordDetailViewModel {
	return &vm.RecordDetailViewModel{
		SiteName:  rec.SiteName,
		Username:  rec.Username,
		Password:  rec.Password,
		URL:       rec.URL,
		Keyword:   rec.Keyword,
		MemoHTML:  RenderMarkdown(rec.Memo),
		CreatedAt: formatDisplayTime(rec.CreatedAt),
	}
}

// toHistoryViewModel lists a record's edits, newest last.
func toHistoryViewModel(rec model.CredentialRecord, revisions []model.HistoryEntry) *vm.HistoryViewModel {
	out := make([]vm.RevisionViewModel, 0, len(revisions))
	for _, e := range revisions {
		out = append(out, vm.RevisionViewModel{
			UpdatedAt:   formatDisplayTime(e.UpdatedAt),
			OldPassword: e.OldState.Password,
			OldMemo:     e.OldState.Memo,
			NewPassword: e.NewState.Password,
			NewMemo:     e.NewState.Memo,
		})
	}
	return &vm.HistoryViewModel{SiteName: rec.SiteName, Revisions: out}
}

// newRecordForm returns an empty register form.
func newRecordForm() *vm.RecordFormViewModel {
	return &vm.RecordFormViewModel{
		Title:      "Add New Password",
		ActionURL:  "/app/records",
		AnalyzeURL: "/app/password/analyze",
	}
}

// editRecordForm returns an edit form prefilled from rec.
func editRecordForm(rec model.CredentialRecord) *vm.RecordFormViewModel {
	return &vm.RecordFormViewModel{
		Title:      "Edit Password",
		ActionURL:  fmt.Sprintf("/app/records/%d", rec.ID),
		CancelURL:  fmt.Sprintf("/app/records/%d/cancel", rec.ID),
		AnalyzeURL: "/app/password/analyze",
		IsEdit:     true,
		ID:         rec.ID,
		SiteName:   rec.SiteName,
		Username:   rec.Username,
		Password:   rec.Password,
		URL:        rec.URL,
		Memo:       rec.Memo,
		Keyword:    rec.Keyword,
	}
}

// formFromInput rebuilds a form after a failed submit or an analysis request,
// keeping what the user typed.
func formFromInput(in model.RecordInput, isEdit bool) *vm.RecordFormViewModel {
	var form *vm.RecordFormViewModel
	if isEdit {
		form = editRecordForm(model.CredentialRecord{ID: in.ID})
	} else {
		form = newRecordForm()
	}
	form.SiteName = in.SiteName
	form.Username = in.Username
	form.Password = in.Password
	form.URL = in.URL
	form.Memo = in.Memo
	form.Keyword = in.Keyword
	return form
}
