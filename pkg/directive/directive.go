package directive

import (
	"strings"
)

const (
	// Start opens a directive
	Start = "<%@"
	// End closes a directive
	End = "%>"
)

// Form identifies a recognised directive
type Form int

const (
	// Unknown is any directive the rewriter leaves alone
	Unknown Form = iota
	// Include is <%@ include file="..." %>
	Include
	// Page is <%@ page errorPage="..." %>
	Page
	// Cms is <%@ cms file="..." %>
	Cms
)

// String returns the directive keyword
func (f Form) String() string {
	switch f {
	case Include:
		return "include"
	case Page:
		return "page"
	case Cms:
		return "cms"
	default:
		return "unknown"
	}
}

// keyword and attribute searched for by each form, in match order
var forms = []struct {
	form      Form
	keyword   string
	attribute string
}{
	{Include, "include", "file"},
	{Page, "page", "errorPage"},
	{Cms, "cms", "file"},
}

// Directive is one <%@ ... %> occurrence found in a text
type Directive struct {
	// Form is the recognised kind, Unknown when unclassified
	Form Form

	// Start and End delimit the directive including its tokens
	Start, End int

	// Filename is the referenced template, empty when none was found
	Filename string

	// ValueStart and ValueEnd delimit Filename in the text
	ValueStart, ValueEnd int
}

// Text returns the directive as it appears in text
func (d Directive) Text(text string) string {
	return text[d.Start:d.End]
}

// Referenced reports whether the directive names a template to rewrite
func (d Directive) Referenced() bool {
	return d.Form != Unknown && d.Filename != ""
}

// Scan returns every complete directive in text, in order
func Scan(text string) []Directive {
	var found []Directive
	p0 := 0
	for {
		d, ok := next(text, p0)
		if !ok {
			return found
		}
		found = append(found, d)
		p0 = d.End
	}
}

// next finds the first complete directive at or after p0
func next(text string, p0 int) (Directive, bool) {
	i := strings.Index(text[p0:], Start)
	if i < 0 {
		return Directive{}, false
	}
	start := p0 + i
	bodyStart := start + len(Start)

	j := strings.Index(text[bodyStart:], End)
	if j < 0 {
		return Directive{}, false
	}
	bodyEnd := bodyStart + j

	d := Directive{Start: start, End: bodyEnd + len(End)}
	classify(&d, text, bodyStart, bodyEnd)
	return d, true
}

// classify fills in form and filename from the directive body text[from:to]
func classify(d *Directive, text string, from, to int) {
	body := text[from:to]

	t1 := 0
	for t1 < len(body) && body[t1] == ' ' {
		t1++
	}

	for _, f := range forms {
		if !strings.HasPrefix(body[t1:], f.keyword) {
			continue
		}
		d.Form = f.form

		afterKeyword := t1 + len(f.keyword)
		a := strings.Index(body[afterKeyword:], f.attribute)
		if a < 0 {
			return
		}
		t3 := afterKeyword + a + len(f.attribute)
		for t3 < len(body) && (body[t3] == ' ' || body[t3] == '=' || body[t3] == '"') {
			t3++
		}
		t4 := strings.IndexByte(body[t3:], '"')
		if t4 <= 0 {
			// unterminated or empty value
			return
		}
		d.Filename = body[t3 : t3+t4]
		d.ValueStart = from + t3
		d.ValueEnd = from + t3 + t4
		return
	}
}
