// Package templates holds the HTML components of the GUI.
package templates

import (
	"context"

	"github.com/a-h/templ"
)

// Layout wraps body in the HTML document shell.
func Layout(title string, body templ.Component) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		hw.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		hw.raw(`<title>`)
		hw.text(title)
		hw.raw(`</title><link rel="stylesheet" href="/static/app.css"></head><body><main class="container">`)
		hw.raw(`<h1>`)
		hw.text(title)
		hw.raw(`</h1>`)
		hw.render(ctx, body)
		hw.raw(`</main></body></html>`)
	})
}
