package templates

import (
	"context"
	"fmt"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/pinvault/internal/adapter/driving/web/viewmodel"
)

// Messages shared between the components and the handler tests.
const (
	NoRecordsMessage   = "No matching passwords."
	NoRevisionsMessage = "No changes have been recorded yet."
)

// CSRFField renders the hidden double-submit token input.
func CSRFField(token string) templ.Component {
	return component(func(_ context.Context, hw *htmlWriter) {
		hw.raw(`<input type="hidden" name="csrf_token"`)
		hw.attr("value", token)
		hw.raw(`>`)
	})
}

// SearchBar renders the plain search form and the smart search button.
func SearchBar(query, csrfToken string, aiEnabled bool) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw(`<section class="search">`)
		hw.raw(`<form method="get" action="/" class="search-form">`)
		hw.raw(`<input type="search" name="q" placeholder="Search by site, keyword, memo, URL or username"`)
		hw.attr("value", query)
		hw.raw(`><button type="submit">Search</button></form>`)

		hw.raw(`<form method="post" action="/app/search/smart" class="smart-search-form">`)
		hw.render(ctx, CSRFField(csrfToken))
		hw.raw(`<input type="hidden" name="q"`)
		hw.attr("value", query)
		hw.raw(`><button type="submit"`)
		if !aiEnabled {
			hw.raw(` title="Set PINVAULT_GEMINI_API_KEY to enable"`)
		}
		hw.raw(`>Smart Search</button></form>`)

		hw.raw(`<a class="button" href="/app/records/new">Add Password</a>`)
		hw.raw(`</section>`)
	})
}

// StatusLine renders the flash or assistant message, if any.
func StatusLine(status vm.StatusViewModel) templ.Component {
	return component(func(_ context.Context, hw *htmlWriter) {
		if status.Message == "" {
			return
		}
		hw.raw(`<p class="status status-`)
		hw.text(string(status.Kind))
		hw.raw(`" role="status">`)
		hw.text(status.Message)
		hw.raw(`</p>`)
	})
}

// RecordList renders the filtered records with a button per guarded action.
func RecordList(rows []vm.RecordRowViewModel, query, csrfToken string) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		if len(rows) == 0 {
			hw.raw(`<p class="empty">`)
			hw.text(NoRecordsMessage)
			hw.raw(`</p>`)
			return
		}

		hw.raw(`<ul class="record-list">`)
		for _, row := range rows {
			hw.raw(`<li class="record" data-matched-on="`)
			hw.text(row.MatchedOn)
			hw.raw(`"><div class="record-info"><span class="site">`)
			hw.text(row.SiteName)
			hw.raw(`</span><span class="username">`)
			hw.text(row.Username)
			hw.raw(`</span></div><div class="record-actions">`)
			for _, action := range []struct{ kind, label string }{
				{"view_details", "Details"},
				{"view_history", "History"},
				{"edit", "Edit"},
				{"delete", "Delete"},
			} {
				hw.raw(`<form method="post" action="/app/gate">`)
				hw.render(ctx, CSRFField(csrfToken))
				hw.raw(`<input type="hidden" name="action"`)
				hw.attr("value", action.kind)
				hw.raw(`><input type="hidden" name="record_id"`)
				hw.attr("value", fmt.Sprint(row.ID))
				hw.raw(`><input type="hidden" name="q"`)
				hw.attr("value", query)
				hw.raw(`><button type="submit" class="action-`)
				hw.text(action.kind)
				hw.raw(`">`)
				hw.text(action.label)
				hw.raw(`</button></form>`)
			}
			hw.raw(`</div></li>`)
		}
		hw.raw(`</ul>`)
	})
}

// PinDialog renders the unlock prompt for the pending action. Both forms carry
// the search term so the list stays filtered after the dialog closes.
func PinDialog(pending vm.PendingViewModel, query, csrfToken string) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		queryField := func() {
			hw.raw(`<input type="hidden" name="q"`)
			hw.attr("value", query)
			hw.raw(`>`)
		}

		hw.raw(`<dialog open class="modal pin-dialog"><h2>`)
		hw.text(pending.Title)
		hw.raw(`</h2><form method="post" action="/app/gate/confirm">`)
		hw.render(ctx, CSRFField(csrfToken))
		queryField()
		hw.raw(`<input type="password" name="pin" inputmode="numeric" maxlength="4" autocomplete="off" autofocus placeholder="PIN">`)
		if pending.Error != "" {
			hw.raw(`<p class="error">`)
			hw.text(pending.Error)
			hw.raw(`</p>`)
		}
		hw.raw(`<button type="submit">Unlock</button></form>`)
		hw.raw(`<form method="post" action="/app/gate/cancel">`)
		hw.render(ctx, CSRFField(csrfToken))
		queryField()
		hw.raw(`<button type="submit" class="secondary">Cancel</button></form></dialog>`)
	})
}

// DetailsPanel renders an unlocked record. MemoHTML is already sanitized.
func DetailsPanel(d vm.RecordDetailViewModel) templ.Component {
	return component(func(_ context.Context, hw *htmlWriter) {
		hw.raw(`<dialog open class="modal details"><h2>`)
		hw.text(d.SiteName)
		hw.raw(`</h2><dl>`)
		for _, field := range []struct{ label, value string }{
			{"Username", d.Username},
			{"Password", d.Password},
			{"URL", d.URL},
			{"Keyword", d.Keyword},
			{"Created", d.CreatedAt},
		} {
			hw.raw(`<dt>`)
			hw.text(field.label)
			hw.raw(`</dt><dd>`)
			hw.text(field.value)
			hw.raw(`</dd>`)
		}
		hw.raw(`<dt>Memo</dt><dd class="memo">`)
		hw.raw(d.MemoHTML)
		hw.raw(`</dd></dl><a class="button" href="/">Close</a></dialog>`)
	})
}

// HistoryPanel renders the edits of a record, or a placeholder when there are none.
func HistoryPanel(h vm.HistoryViewModel) templ.Component {
	return component(func(_ context.Context, hw *htmlWriter) {
		hw.raw(`<dialog open class="modal history"><h2>History: `)
		hw.text(h.SiteName)
		hw.raw(`</h2>`)

		if len(h.Revisions) == 0 {
			hw.raw(`<p class="empty">`)
			hw.text(NoRevisionsMessage)
			hw.raw(`</p>`)
		} else {
			hw.raw(`<ol class="revisions">`)
			for _, rev := range h.Revisions {
				hw.raw(`<li><time>`)
				hw.text(rev.UpdatedAt)
				hw.raw(`</time><table><tr><th></th><th>Before</th><th>After</th></tr><tr><th>Password</th><td>`)
				hw.text(rev.OldPassword)
				hw.raw(`</td><td>`)
				hw.text(rev.NewPassword)
				hw.raw(`</td></tr><tr><th>Memo</th><td>`)
				hw.text(rev.OldMemo)
				hw.raw(`</td><td>`)
				hw.text(rev.NewMemo)
				hw.raw(`</td></tr></table></li>`)
			}
			hw.raw(`</ol>`)
		}

		hw.raw(`<a class="button" href="/">Close</a></dialog>`)
	})
}

// RecordForm renders the register or edit form. The analyze button posts the
// same fields to the analysis endpoint so nothing typed is lost.
func RecordForm(f vm.RecordFormViewModel, csrfToken string) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw(`<dialog open class="modal record-form"><h2>`)
		hw.text(f.Title)
		hw.raw(`</h2>`)
		if f.Error != "" {
			hw.raw(`<p class="error">`)
			hw.text(f.Error)
			hw.raw(`</p>`)
		}

		hw.raw(`<form method="post"`)
		hw.attr("action", f.ActionURL)
		hw.raw(`>`)
		hw.render(ctx, CSRFField(csrfToken))
		if f.IsEdit {
			hw.raw(`<input type="hidden" name="id"`)
			hw.attr("value", fmt.Sprint(f.ID))
			hw.raw(`><input type="hidden" name="mode" value="edit">`)
		}

		input := func(name, label, kind, value string, required bool) {
			hw.raw(`<label>`)
			hw.text(label)
			hw.raw(`<input`)
			hw.attr("type", kind)
			hw.attr("name", name)
			hw.attr("value", value)
			if required {
				hw.raw(` required`)
			}
			hw.raw(`></label>`)
		}
		input("site_name", "Site Name", "text", f.SiteName, true)
		input("username", "Username", "text", f.Username, true)
		input("password", "Password", "text", f.Password, true)
		input("url", "URL", "url", f.URL, false)
		input("keyword", "Keywords (comma separated)", "text", f.Keyword, false)

		hw.raw(`<label>Memo<textarea name="memo" rows="4">`)
		hw.text(f.Memo)
		hw.raw(`</textarea></label>`)

		if f.Analysis != "" {
			hw.raw(`<p class="status status-info analysis">`)
			hw.text(f.Analysis)
			hw.raw(`</p>`)
		}

		hw.raw(`<div class="form-actions"><button type="submit"`)
		hw.attr("formaction", f.AnalyzeURL)
		hw.raw(` formnovalidate class="secondary">Analyze Password</button>`)
		hw.raw(`<button type="submit">Save</button></div></form>`)

		if f.CancelURL != "" {
			hw.raw(`<form method="post"`)
			hw.attr("action", f.CancelURL)
			hw.raw(`>`)
			hw.render(ctx, CSRFField(csrfToken))
			hw.raw(`<button type="submit" class="secondary">Cancel</button></form>`)
		} else {
			hw.raw(`<a class="button secondary" href="/">Cancel</a>`)
		}
		hw.raw(`</dialog>`)
	})
}
