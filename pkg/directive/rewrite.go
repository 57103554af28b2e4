package directive

import (
	"strings"
)

// Resolver maps a referenced filename to its replacement. Returning false
// leaves the directive unchanged.
type Resolver func(form Form, filename string) (string, bool)

// Result describes a rewrite pass
type Result struct {
	// Text is the rewritten text
	Text string

	// Found is true when at least one start token occurs in the input
	Found bool

	// Rewritten counts the directives whose reference was replaced
	Rewritten int
}

// Rewrite replaces the references of every recognised directive in text
// using resolve. Include and page directives keep their tokens and
// attributes; a cms directive is replaced by the resolved name alone.
// Unclassified or malformed directives, and those resolve rejects, are
// copied verbatim.
func Rewrite(text string, resolve Resolver) Result {
	result := Result{Found: strings.Contains(text, Start)}
	if !result.Found {
		result.Text = text
		return result
	}

	var buf strings.Builder
	buf.Grow(len(text))

	p0 := 0
	for {
		d, ok := next(text, p0)
		if !ok {
			break
		}
		buf.WriteString(text[p0:d.Start])

		replacement, ok := "", false
		if d.Referenced() {
			replacement, ok = resolve(d.Form, d.Filename)
		}

		switch {
		case !ok:
			buf.WriteString(d.Text(text))
		case d.Form == Cms:
			buf.WriteString(replacement)
			result.Rewritten++
		default:
			buf.WriteString(text[d.Start:d.ValueStart])
			buf.WriteString(replacement)
			buf.WriteString(text[d.ValueEnd:d.End])
			result.Rewritten++
		}
		p0 = d.End
	}
	buf.WriteString(text[p0:])

	result.Text = buf.String()
	return result
}
