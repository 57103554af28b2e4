// Package charset converts template bytes between the CMS default encoding,
// the encoding of the current request and the storage encoding of
// materialised templates.
package charset

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/arthur-debert/jsploader/pkg/errors"
)

// DefaultJspEncoding is the storage encoding of materialised templates when
// the resource declares none. The template engine assumes it.
const DefaultJspEncoding = "ISO-8859-1"

// Normalize trims and upper-cases an encoding name, falling back to
// DefaultJspEncoding when it is empty.
func Normalize(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return DefaultJspEncoding
	}
	return name
}

// Lookup returns the encoding registered under an IANA name or alias
func Lookup(name string) (encoding.Encoding, error) {
	switch Normalize(name) {
	case "ISO-8859-1", "ISO8859_1", "LATIN1":
		return charmap.ISO8859_1, nil
	case "UTF-8", "UTF8":
		return unicode.UTF8, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrUnsupportedEncoding, "unknown encoding %q", name)
	}
	if enc == nil {
		return nil, errors.Newf(errors.ErrUnsupportedEncoding, "encoding %q is not supported", name)
	}
	return enc, nil
}

// Same reports whether two names denote the same encoding
func Same(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == nb {
		return true
	}
	return canonical(na) == canonical(nb)
}

func canonical(name string) string {
	enc, err := Lookup(name)
	if err != nil {
		return name
	}
	if c, err := ianaindex.IANA.Name(enc); err == nil {
		return strings.ToUpper(c)
	}
	return name
}

// Decode converts bytes in the named encoding to a string
func Decode(b []byte, name string) (string, error) {
	enc, err := Lookup(name)
	if err != nil {
		return "", err
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrUnsupportedEncoding, "failed to decode %s", name)
	}
	return string(out), nil
}

// Replacement is written for each character the target encoding cannot
// represent.
const Replacement = '?'

// Encode converts a string to bytes in the named encoding. Characters the
// encoding cannot represent are written as Replacement.
func Encode(s string, name string) ([]byte, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	out, err := enc.NewEncoder().String(s)
	if err == nil {
		return []byte(out), nil
	}
	return encodeRunes(enc.NewEncoder(), s), nil
}

// encodeRunes encodes s one rune at a time, substituting Replacement for
// every rune e rejects.
func encodeRunes(e *encoding.Encoder, s string) []byte {
	var buf bytes.Buffer
	buf.Grow(len(s))
	for _, r := range s {
		out, err := e.String(string(r))
		if err != nil {
			buf.WriteByte(Replacement)
			continue
		}
		buf.WriteString(out)
	}
	return buf.Bytes()
}

// Convert re-encodes b from one encoding to another. When both names denote
// the same encoding b is returned untouched.
func Convert(b []byte, from, to string) ([]byte, error) {
	if Same(from, to) {
		return b, nil
	}
	s, err := Decode(b, from)
	if err != nil {
		return nil, err
	}
	return Encode(s, to)
}
