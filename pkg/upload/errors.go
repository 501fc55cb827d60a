package upload

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoFiles is reported by Upload when the collection is empty.
var ErrNoFiles = errors.New("no files")

// Reason is why a file was rejected.
type Reason int

const (
	InvalidType   Reason = iota + 1 // MIME type not allowed
	TooLarge                        // Larger than MaxSize
	LimitExceeded                   // Collection already holds MaxFiles
)

// String returns the reason name.
func (r Reason) String() string {
	switch r {
	case InvalidType:
		return "invalid_type"
	case TooLarge:
		return "too_large"
	case LimitExceeded:
		return "limit_exceeded"
	default:
		return "unknown"
	}
}

// ValidationError describes a rejected file.
type ValidationError struct {
	FileName    string
	ContentType string
	Size        int64
	Reason      Reason

	// Limit is MaxSize for TooLarge and MaxFiles for LimitExceeded.
	Limit int64
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	switch e.Reason {
	case InvalidType:
		return fmt.Sprintf("File %q (%s) has an unsupported type %q", e.FileName, FormatBytes(e.Size), e.ContentType)
	case TooLarge:
		return fmt.Sprintf("File %q is too large (%s, limit %s)", e.FileName, FormatBytes(e.Size), FormatBytes(e.Limit))
	case LimitExceeded:
		return fmt.Sprintf("File %q (%s) was not added: maximum number of files is %d", e.FileName, FormatBytes(e.Size), e.Limit)
	default:
		return fmt.Sprintf("File %q (%s) was rejected", e.FileName, FormatBytes(e.Size))
	}
}

// ValidationErrors is the list of rejections from one ProcessFiles call,
// in detection order.
type ValidationErrors []*ValidationError

// Error joins the messages, one per line.
func (errs ValidationErrors) Error() string {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (errs ValidationErrors) Unwrap() []error {
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return out
}

// Count returns the number of errors with the given reason.
func (errs ValidationErrors) Count(reason Reason) int {
	n := 0
	for _, e := range errs {
		if e.Reason == reason {
			n++
		}
	}
	return n
}
