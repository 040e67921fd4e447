package command

import "errors"

// Result is the outcome of one command. Failures carry a kind instead of
// an error value so callers can hand the result straight to a model or a
// terminal.
type Result struct {
	Command string
	Op      Op
	OK      bool
	Kind    ErrorKind
	Denial  Denial
	Message string
	// Path is the primary target relative to the sandbox root, when known.
	Path string
}

// String renders success as the message and failure as "[Kind] message".
func (r Result) String() string {
	if r.OK {
		return r.Message
	}
	return "[" + label(r.Kind, r.Denial) + "] " + r.Message
}

// Label is the failure kind as rendered by String, or "" on success.
func (r Result) Label() string {
	if r.OK {
		return ""
	}
	return label(r.Kind, r.Denial)
}

// Err returns the failure as an error, or nil on success.
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	return &Error{Kind: r.Kind, Denial: r.Denial, Message: r.Message}
}

func newResult(cmd Command, path, message string, err error) Result {
	res := Result{Command: cmd.Raw, Op: cmd.Op, Path: path}
	if err == nil {
		res.OK = true
		res.Message = message
		return res
	}
	var ce *Error
	if !errors.As(err, &ce) {
		ce = &Error{Kind: KindIOFailure, Message: err.Error(), Err: err}
	}
	res.Kind = ce.Kind
	res.Denial = ce.Denial
	res.Message = ce.Message
	return res
}
