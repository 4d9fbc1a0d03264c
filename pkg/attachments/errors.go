package attachments

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTypeNotAllowed = errors.New("attachments: file type not allowed")
	ErrFileTooLarge   = errors.New("attachments: file too large")
	ErrTotalTooLarge  = errors.New("attachments: total size too large")
	ErrTooManyFiles   = errors.New("attachments: too many files")
	ErrDuplicateName  = errors.New("attachments: file already added")
	ErrNotFound       = errors.New("attachments: file not found")
	ErrClosed         = errors.New("attachments: collector closed")
)

// RejectionError explains why a candidate was refused. Reason is the
// customer-facing sentence; Err is one of the sentinels above.
type RejectionError struct {
	Name   string
	Reason string
	Err    error
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Reason)
}

func (e *RejectionError) Unwrap() error { return e.Err }

// BatchReport summarises one Add call.
type BatchReport struct {
	Accepted []File
	Rejected []*RejectionError
}

// OK reports whether every candidate was accepted.
func (r BatchReport) OK() bool { return len(r.Rejected) == 0 }

// Message renders the aggregated rejection notice, or "" when none.
func (r BatchReport) Message() string {
	if len(r.Rejected) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("The following files could not be added:")
	for _, rejection := range r.Rejected {
		b.WriteString("\n- ")
		b.WriteString(rejection.Error())
	}
	return b.String()
}
