// Package pages composes full page bodies from the shared components.
package pages

import (
	"github.com/a-h/templ"

	"github.com/ericfisherdev/pinvault/internal/adapter/driving/web/templates"
	vm "github.com/ericfisherdev/pinvault/internal/adapter/driving/web/viewmodel"
)

// Dashboard renders the search bar, the status line, the record list and
// whichever dialog the view model carries.
func Dashboard(data vm.DashboardViewModel) templ.Component {
	parts := []templ.Component{
		templates.SearchBar(data.Query, data.CSRFToken, data.AIEnabled),
		templates.StatusLine(data.Status),
		templates.RecordList(data.Rows, data.Query, data.CSRFToken),
	}

	switch {
	case data.Pending != nil:
		parts = append(parts, templates.PinDialog(*data.Pending, data.Query, data.CSRFToken))
	case data.Details != nil:
		parts = append(parts, templates.DetailsPanel(*data.Details))
	case data.History != nil:
		parts = append(parts, templates.HistoryPanel(*data.History))
	case data.Form != nil:
		parts = append(parts, templates.RecordForm(*data.Form, data.CSRFToken))
	}

	return templates.Fragment(parts...)
}
