package vdf

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedDocument = errors.New("malformed document")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrPathNotFound      = errors.New("path not found")
)

// MalformedDocumentError reports unbalanced braces, an open brace with no
// key line before it, or an object left open at end of input.
type MalformedDocumentError struct {
	Source string // file name, if known
	Line   int    // 1-based, 0 when the problem is at end of input
	Reason string
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("%s: %s%s", ErrMalformedDocument, e.Reason, location(e.Source, e.Line))
}

func (e *MalformedDocumentError) Is(target error) bool { return target == ErrMalformedDocument }

// DuplicateKeyError reports a key that already exists in the object it is
// being added to.
type DuplicateKeyError struct {
	Source string
	Line   int
	Key    string
	Path   []string // path of the object holding Key
}

func (e *DuplicateKeyError) Error() string {
	where := ""
	if len(e.Path) > 0 {
		where = " in " + strings.Join(e.Path, "/")
	}
	return fmt.Sprintf("%s %q%s%s", ErrDuplicateKey, e.Key, where, location(e.Source, e.Line))
}

func (e *DuplicateKeyError) Is(target error) bool { return target == ErrDuplicateKey }

// PathNotFoundError reports a path whose intermediate segment is missing
// or is a leaf.
type PathNotFoundError struct {
	Path    []string
	Missing int // index into Path of the first segment that could not be descended
}

func (e *PathNotFoundError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("%s: empty path", ErrPathNotFound)
	}
	return fmt.Sprintf("%s: %s (at %q)", ErrPathNotFound, strings.Join(e.Path, "/"), e.Path[e.Missing])
}

func (e *PathNotFoundError) Is(target error) bool { return target == ErrPathNotFound }

// location formats a " at <source>:<line>" suffix for error messages.
func location(source string, line int) string {
	switch {
	case source != "" && line > 0:
		return fmt.Sprintf(" at %s:%d", source, line)
	case source != "":
		return " in " + source
	case line > 0:
		return fmt.Sprintf(" at line %d", line)
	default:
		return ""
	}
}
