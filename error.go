package mixvote

import (
	"fmt"

	"golang.org/x/xerrors"
)

// Error wraps a failure of one of the election stages together with the
// frame of the caller that reported it and, when known, the election it
// concerns. Printing it with "%+v" shows the frame followed by the wrapped
// chain.
type Error struct {
	err      error
	msg      string
	election string
	frame    xerrors.Frame
}

// ErrorOrNil returns nil if err is nil, otherwise err wrapped with msg and
// the frame of the caller.
func ErrorOrNil(err error, msg string) error {
	return ErrorOrNilSkip(err, msg, 1)
}

// ErrorOrNilSkip is like ErrorOrNil but records the frame of the skip-nth
// caller.
func ErrorOrNilSkip(err error, msg string, skip int) error {
	if err == nil {
		return nil
	}
	return &Error{err: err, msg: msg, frame: xerrors.Caller(skip)}
}

// WrapError records the caller frame without adding a message, so that the
// error still prints and compares like the original one.
func WrapError(err error) error {
	return ErrorOrNilSkip(err, "", 2)
}

// ElectionError is like WrapError and also tags err with the election id.
func ElectionError(err error, id string) error {
	if err == nil {
		return nil
	}
	return &Error{err: err, election: id, frame: xerrors.Caller(1)}
}

// ElectionOf returns the election id of the first tagged error of the
// chain, or an empty string.
func ElectionOf(err error) string {
	for err != nil {
		if e, ok := err.(*Error); ok && e.election != "" {
			return e.election
		}
		err = xerrors.Unwrap(err)
	}
	return ""
}

func (e *Error) prefix() string {
	switch {
	case e.msg != "" && e.election != "":
		return e.msg + " (election " + e.election + "): "
	case e.msg != "":
		return e.msg + ": "
	case e.election != "":
		return "election " + e.election + ": "
	}
	return ""
}

func (e *Error) Error() string {
	return e.prefix() + e.err.Error()
}

// Unwrap returns the next error in the chain.
func (e *Error) Unwrap() error {
	return e.err
}

// Format prints the error to the formatter.
func (e *Error) Format(f fmt.State, c rune) {
	xerrors.FormatError(e, f, c)
}

// FormatError prints the error to the printer, including the frame when
// the detail flag ('+') is set.
func (e *Error) FormatError(p xerrors.Printer) error {
	p.Printf("%s%v", e.prefix(), e.err)
	if p.Detail() {
		e.frame.Format(p)
		p.Printf("%+v", e.err)
	}
	return nil
}
