package ical

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// Source yields the lines of a calendar body in order. Next returns io.EOF
// once there are no more lines.
type Source interface {
	Next() (string, error)
}

type sliceSource struct {
	lines []string
	pos   int
}

// NewSliceSource returns a Source over already-split lines.
func NewSliceSource(lines []string) Source {
	return &sliceSource{lines: lines}
}

func (s *sliceSource) Next() (string, error) {
	if s.pos >= len(s.lines) {
		return "", io.EOF
	}
	line := s.lines[s.pos]
	s.pos++
	return line, nil
}

// MaxLineLength is the longest line a reader source accepts, matching the
// largest feed body the fetcher reads.
const MaxLineLength = 4 << 20

type readerSource struct {
	sc *bufio.Scanner
}

// NewReaderSource returns a Source that reads lines from r as they are
// needed. Lines end with "\n", "\n\r" or "\r\n"; the terminator is stripped.
// A line longer than MaxLineLength fails with bufio.ErrTooLong.
func NewReaderSource(r io.Reader) Source {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), MaxLineLength)
	sc.Split(splitLines)
	return &readerSource{sc: sc}
}

func (s *readerSource) Next() (string, error) {
	if s.sc.Scan() {
		return s.sc.Text(), nil
	}
	if err := s.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// splitLines is a bufio.SplitFunc that also swallows a '\r' directly after
// the '\n', and drops one directly before it.
func splitLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		if i+1 == len(data) && !atEOF {
			// need one more byte to see whether this is "\n\r"
			return 0, nil, nil
		}
		advance = i + 1
		if advance < len(data) && data[advance] == '\r' {
			advance++
		}
		return advance, bytes.TrimSuffix(data[:i], []byte{'\r'}), nil
	}
	if atEOF {
		return len(data), bytes.TrimSuffix(data, []byte{'\r'}), nil
	}
	return 0, nil, nil
}

// Cursor is a forward-only view over a Source with exactly one line of
// lookahead. It is owned by a single parse call and is not safe for
// concurrent use.
type Cursor struct {
	src    Source
	cached string
	ok     bool
	line   int // lines consumed so far
}

// NewCursor wraps src.
func NewCursor(src Source) *Cursor {
	return &Cursor{src: src}
}

// Peek returns the current line without consuming it. Repeated calls return
// the same text; the source is only read when nothing is cached.
func (c *Cursor) Peek() (string, error) {
	if c.ok {
		return c.cached, nil
	}
	line, err := c.src.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", ErrEndOfInput
		}
		return "", err
	}
	c.cached, c.ok = line, true
	return line, nil
}

// Advance consumes the current line and returns it.
func (c *Cursor) Advance() (string, error) {
	line, err := c.Peek()
	if err != nil {
		return "", err
	}
	c.cached, c.ok = "", false
	c.line++
	return line, nil
}

// Line returns the 1-based number of the line Peek would return.
func (c *Cursor) Line() int {
	return c.line + 1
}
