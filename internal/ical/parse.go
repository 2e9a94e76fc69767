package ical

import (
	"errors"
	"io"
)

// Options tunes Parse.
type Options struct {
	// Strict rejects any line after END:VCALENDAR. By default trailing
	// content is left unread.
	Strict bool
}

// Parse decodes one calendar document from src. The parse is all or
// nothing: on failure no records are returned and the error is a
// *ParseError locating the offending line.
func Parse(src Source, opts Options) ([]Record, error) {
	c := NewCursor(src)
	records, err := ParseDocument(c)
	if err != nil {
		return nil, wrapAt(c, err)
	}
	if opts.Strict {
		text, err := c.Peek()
		switch {
		case err == nil:
			return nil, wrapAt(c, &TrailingContentError{Line: text})
		case !errors.Is(err, ErrEndOfInput):
			return nil, wrapAt(c, err)
		}
	}
	return records, nil
}

// ParseReader parses a calendar body read line by line from r.
func ParseReader(r io.Reader, opts Options) ([]Record, error) {
	return Parse(NewReaderSource(r), opts)
}

// ParseLines parses a calendar body that has already been split into lines.
func ParseLines(lines []string, opts Options) ([]Record, error) {
	return Parse(NewSliceSource(lines), opts)
}

func wrapAt(c *Cursor, err error) error {
	pe := &ParseError{Err: err}
	text, perr := c.Peek()
	switch {
	case perr == nil:
		pe.Line = c.Line()
		pe.Text = text
	case !errors.Is(perr, ErrEndOfInput):
		// the line could not be read at all
		pe.Line = c.Line()
	}
	return pe
}
