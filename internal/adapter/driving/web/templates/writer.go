package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
	templruntime "github.com/a-h/templ/runtime"
)

// htmlWriter accumulates the first write error so components can emit markup
// without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

// raw writes trusted markup.
func (hw *htmlWriter) raw(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

// text writes s with HTML escaping.
func (hw *htmlWriter) text(s string) {
	if hw.err != nil {
		return
	}
	var joined string
	joined, hw.err = templ.JoinStringErrs(s)
	if hw.err != nil {
		return
	}
	hw.raw(templ.EscapeString(joined))
}

// attr writes name="value" with the value escaped.
func (hw *htmlWriter) attr(name, value string) {
	hw.raw(" " + name + `="`)
	hw.text(value)
	hw.raw(`"`)
}

// render writes a child component into the same buffer.
func (hw *htmlWriter) render(ctx context.Context, c templ.Component) {
	if hw.err != nil || c == nil {
		return
	}
	hw.err = c.Render(ctx, hw.w)
}

// component adapts a markup function into a templ.Component with the buffer
// handling of generated templ code: the outermost component owns a pooled
// buffer and flushes it on release, nested components write into it.
func component(fn func(ctx context.Context, hw *htmlWriter)) templ.Component {
	return templruntime.GeneratedTemplate(func(input templruntime.GeneratedComponentInput) (err error) {
		w, ctx := input.Writer, input.Context
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		buf, isBuffer := templruntime.GetBuffer(w)
		if !isBuffer {
			defer func() {
				bufErr := templruntime.ReleaseBuffer(buf)
				if err == nil {
					err = bufErr
				}
			}()
		}

		hw := &htmlWriter{w: buf}
		fn(ctx, hw)
		return hw.err
	})
}

// Fragment renders parts one after another into a single buffer.
func Fragment(parts ...templ.Component) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		for _, c := range parts {
			hw.render(ctx, c)
		}
	})
}
