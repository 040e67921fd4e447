package command

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes a failed command.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindPathEscapesSandbox
	KindManifestParseError
	KindEntryNotFound
	KindPermissionDenied
	KindAlreadyExists
	KindIOFailure
	KindUnrecognizedCommand
	KindUnsupportedContentOperation
)

// String returns the string representation of ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindPathEscapesSandbox:
		return "PathEscapesSandbox"
	case KindManifestParseError:
		return "ManifestParseError"
	case KindEntryNotFound:
		return "EntryNotFound"
	case KindPermissionDenied:
		return "PermissionDenied"
	case KindAlreadyExists:
		return "AlreadyExists"
	case KindIOFailure:
		return "IOFailure"
	case KindUnrecognizedCommand:
		return "UnrecognizedCommand"
	case KindUnsupportedContentOperation:
		return "UnsupportedContentOperation"
	default:
		return "Unknown"
	}
}

// Denial says which check refused a PermissionDenied command.
type Denial int

const (
	DenialNone Denial = iota
	DenialVisibility
	DenialOperability
	DenialCreation
)

func (d Denial) String() string {
	switch d {
	case DenialVisibility:
		return "visibility"
	case DenialOperability:
		return "operability"
	case DenialCreation:
		return "creation"
	default:
		return ""
	}
}

// Error is a command failure. It never escapes Execute; it is folded into
// the Result instead.
type Error struct {
	Kind    ErrorKind
	Denial  Denial
	Message string
	Err     error
}

// Label renders the kind, with the denial for permission failures,
// e.g. "PermissionDenied{visibility}".
func (e *Error) Label() string {
	return label(e.Kind, e.Denial)
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Label(), e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func label(kind ErrorKind, denial Denial) string {
	if kind == KindPermissionDenied && denial != DenialNone {
		return fmt.Sprintf("%s{%s}", kind, denial)
	}
	return kind.String()
}

func newError(kind ErrorKind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func denied(denial Denial, format string, args ...any) error {
	return &Error{Kind: KindPermissionDenied, Denial: denial, Message: fmt.Sprintf(format, args...)}
}

func ioFailure(err error, format string, args ...any) error {
	return &Error{
		Kind:    KindIOFailure,
		Message: fmt.Sprintf("%s: %v", fmt.Sprintf(format, args...), err),
		Err:     err,
	}
}

// KindOf returns the kind of err, KindNone for nil, and KindIOFailure for
// errors that are not command errors.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindIOFailure
}

// IsPermissionDenied reports whether err was refused by the given check.
// DenialNone matches any permission failure.
func IsPermissionDenied(err error, denial Denial) bool {
	var ce *Error
	if !errors.As(err, &ce) || ce.Kind != KindPermissionDenied {
		return false
	}
	return denial == DenialNone || ce.Denial == denial
}
