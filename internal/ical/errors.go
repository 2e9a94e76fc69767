package ical

import (
	"errors"
	"fmt"
)

// ErrEndOfInput is returned by the cursor (and anything reading through it)
// once the underlying line source is exhausted.
var ErrEndOfInput = errors.New("ical: end of input")

// TagMismatchError reports that a line did not start with the expected literal.
type TagMismatchError struct {
	Expected string
	Actual   string // prefix of the input with the same length as Expected
}

func (e *TagMismatchError) Error() string {
	return fmt.Sprintf("ical: expected %q, got %q", e.Expected, e.Actual)
}

// IncompleteLineError reports that a matcher succeeded but left part of the
// line unclaimed.
type IncompleteLineError struct {
	Residual string
}

func (e *IncompleteLineError) Error() string {
	return fmt.Sprintf("ical: incomplete line parse, %q remaining", e.Residual)
}

// NoAlternativeError reports that none of the branches of an Alt matched.
type NoAlternativeError struct {
	Line string
}

func (e *NoAlternativeError) Error() string {
	return fmt.Sprintf("ical: no alternative matched line %q", e.Line)
}

// NumericConversionError reports a field value that should have been
// numeric but was not. It is fatal: Alt and Many never absorb it.
type NumericConversionError struct {
	Text string
	Err  error
}

func (e *NumericConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ical: cannot convert %q to a number: %v", e.Text, e.Err)
	}
	return fmt.Sprintf("ical: cannot convert %q to a number", e.Text)
}

func (e *NumericConversionError) Unwrap() error { return e.Err }

// Fatal marks the error as one that aborts the whole parse.
func (e *NumericConversionError) Fatal() bool { return true }

// TrailingContentError is returned in strict mode when lines follow END:VCALENDAR.
type TrailingContentError struct {
	Line string
}

func (e *TrailingContentError) Error() string {
	return fmt.Sprintf("ical: unexpected content after END:VCALENDAR: %q", e.Line)
}

// ParseError is what Parse hands back to callers. It carries the line the
// failure surfaced on so the offending input can be reported.
type ParseError struct {
	Line int    // 1-based line number, 0 when the input was exhausted
	Text string // text of the offending line, empty when it could not be read
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("ical: parse failed at end of input: %v", e.Err)
	}
	return fmt.Sprintf("ical: parse failed at line %d (%q): %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsFatal reports whether err must abort parsing instead of being treated
// as a failed choice or the end of a repetition.
func IsFatal(err error) bool {
	var f interface{ Fatal() bool }
	return errors.As(err, &f) && f.Fatal()
}
