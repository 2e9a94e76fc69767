package ical

import "errors"

// Alt tries each rule in order against the current cursor position and
// returns the first success. Rules built with Line never consume on failure,
// so the next alternative always sees the same line.
//
// Fatal errors, and failures of a multi-line rule after it consumed input,
// are returned immediately. When every alternative fails the
// result is a *NoAlternativeError naming the line, or ErrEndOfInput when
// there is no line left.
func Alt[T any](rules ...Rule[T]) Rule[T] {
	return func(c *Cursor) (T, error) {
		var zero T
		for _, r := range rules {
			before := c.Line()
			v, err := r(c)
			if err == nil {
				return v, nil
			}
			// a branch that consumed lines before failing cannot be undone
			if IsFatal(err) || c.Line() != before {
				return zero, err
			}
		}
		text, err := c.Peek()
		if err != nil {
			return zero, err
		}
		return zero, &NoAlternativeError{Line: text}
	}
}

// Many applies rule until it fails and returns the values collected so far.
// The failure that ends the repetition is swallowed and the line it happened
// on stays peekable for whatever comes next. Nil values (see DiscardRest) are
// not collected. Fatal errors, source read errors and failures after the
// rule consumed lines are still returned.
func Many[T any](rule Rule[T]) Rule[[]T] {
	return func(c *Cursor) ([]T, error) {
		var out []T
		for {
			before := c.Line()
			v, err := rule(c)
			if err != nil {
				// A rule that failed part way through a multi-line block
				// (BEGIN:VEVENT without END:VEVENT) is an error, not the end
				// of the repetition.
				if IsFatal(err) || !recoverable(err) || c.Line() != before {
					return nil, err
				}
				return out, nil
			}
			if any(v) != nil {
				out = append(out, v)
			}
			if c.Line() == before {
				// nothing consumed; repeating would loop forever
				return out, nil
			}
		}
	}
}

// recoverable reports whether err is one of the ordinary "did not match"
// signals that choice and repetition use to make decisions.
func recoverable(err error) bool {
	if errors.Is(err, ErrEndOfInput) {
		return true
	}
	var (
		tag  *TagMismatchError
		inc  *IncompleteLineError
		none *NoAlternativeError
	)
	return errors.As(err, &tag) || errors.As(err, &inc) || errors.As(err, &none)
}
