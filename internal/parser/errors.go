package parser

import (
	"errors"
	"fmt"
)

// ErrMalformedDocument matches every structural parse failure via errors.Is.
var ErrMalformedDocument = errors.New("malformed recipe document")

// MalformedError reports which structural rule a document broke and where.
type MalformedError struct {
	Line int
	Msg  string
}

func (e *MalformedError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("Invalid recipe format at line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

// Is makes errors.Is(err, ErrMalformedDocument) true for any MalformedError.
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformedDocument
}

func malformed(line int, format string, args ...any) error {
	return &MalformedError{Line: line, Msg: fmt.Sprintf(format, args...)}
}
