package paths

import (
	"strings"

	"github.com/arthur-debert/jsploader/pkg/errors"
)

// AbsoluteURI resolves a template reference against the URI of the element
// that contains it. Absolute references are only cleaned. A reference whose
// ".." segments climb above the VFS root is rejected with ErrInvalidPath.
func AbsoluteURI(relative, base string) (string, error) {
	if relative == "" {
		return "", errors.New(errors.ErrInvalidPath, "empty reference")
	}

	target := relative
	if !strings.HasPrefix(relative, "/") {
		dir := "/"
		if i := strings.LastIndex(base, "/"); i >= 0 {
			dir = base[:i+1]
		}
		if !strings.HasPrefix(dir, "/") {
			dir = "/" + dir
		}
		target = dir + relative
	}

	return cleanURI(target)
}

// ValidateVFSPath checks that p is an absolute, clean VFS path
func ValidateVFSPath(p string) error {
	if !strings.HasPrefix(p, "/") {
		return errors.Newf(errors.ErrInvalidPath, "VFS path %q is not absolute", p)
	}
	if strings.Contains(p, "\x00") {
		return errors.Newf(errors.ErrInvalidPath, "VFS path %q contains null bytes", p)
	}
	for _, segment := range strings.Split(p[1:], "/") {
		if segment == ".." || segment == "." {
			return errors.Newf(errors.ErrInvalidPath, "VFS path %q is not clean", p)
		}
	}
	return nil
}

func cleanURI(p string) (string, error) {
	segments := strings.Split(p[1:], "/")
	out := make([]string, 0, len(segments))
	for i, segment := range segments {
		switch segment {
		case ".":
			continue
		case "..":
			if len(out) == 0 {
				return "", errors.Newf(errors.ErrInvalidPath, "reference %q escapes the VFS root", p).
					WithDetail("path", p)
			}
			out = out[:len(out)-1]
		case "":
			// keep a trailing slash, drop empty inner segments
			if i == len(segments)-1 {
				out = append(out, "")
			}
		default:
			out = append(out, segment)
		}
	}
	return "/" + strings.Join(out, "/"), nil
}
