package ical

// Rule parses one or more lines from the cursor.
type Rule[T any] func(c *Cursor) (T, error)

// Line binds a matcher to the cursor. The matcher has to claim the whole
// current line; only then is the line consumed. On any failure the cursor
// is left where it was.
func Line[T any](m Matcher[T]) Rule[T] {
	return func(c *Cursor) (T, error) {
		var zero T
		text, err := c.Peek()
		if err != nil {
			return zero, err
		}
		rest, v, err := m.Match(text)
		if err != nil {
			return zero, err
		}
		if rest != "" {
			return zero, &IncompleteLineError{Residual: rest}
		}
		if _, err := c.Advance(); err != nil {
			return zero, err
		}
		return v, nil
	}
}
