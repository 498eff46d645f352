package json

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat reports text that does not match any accepted representation of the target type.
	ErrFormat = errors.New("invalid format")
	// ErrUnsupported reports a decode attempted through a write-only converter.
	ErrUnsupported = errors.New("unsupported operation")
	// ErrConfiguration reports an invalid configuration assignment.
	ErrConfiguration = errors.New("invalid configuration")
)

// Error carries the operation, JSON path and cause of a failure.
type Error struct {
	Op      string
	Path    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("json %s failed at %s: %s", e.Op, e.Path, e.Message)
	}
	return fmt.Sprintf("json %s failed: %s", e.Op, e.Message)
}

// Unwrap returns the error category.
func (e *Error) Unwrap() error { return e.Err }

// FormatErrorf returns an ErrFormat error with a formatted message.
func FormatErrorf(format string, args ...interface{}) error {
	return &Error{Op: "decode", Message: fmt.Sprintf(format, args...), Err: ErrFormat}
}

// UnsupportedErrorf returns an ErrUnsupported error with a formatted message.
func UnsupportedErrorf(format string, args ...interface{}) error {
	return &Error{Op: "decode", Message: fmt.Sprintf(format, args...), Err: ErrUnsupported}
}

// ConfigurationErrorf returns an ErrConfiguration error with a formatted message.
func ConfigurationErrorf(format string, args ...interface{}) error {
	return &Error{Op: "configure", Message: fmt.Sprintf(format, args...), Err: ErrConfiguration}
}

func newSyntaxError(pos int, format string, args ...interface{}) error {
	return &Error{Op: "decode", Message: fmt.Sprintf(format, args...) + fmt.Sprintf(" at offset %d", pos), Err: ErrFormat}
}

// withPath prefixes segment to the JSON path recorded on err.
func withPath(err error, op string, segment string) error {
	if err == nil {
		return nil
	}
	var jErr *Error
	if !errors.As(err, &jErr) {
		return &Error{Op: op, Path: segment, Message: err.Error(), Err: err}
	}
	if segment == "" {
		return err
	}
	clone := *jErr
	switch {
	case clone.Path == "":
		clone.Path = segment
	case clone.Path[0] == '[':
		clone.Path = segment + clone.Path
	default:
		clone.Path = segment + "." + clone.Path
	}
	return &clone
}
