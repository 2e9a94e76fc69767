package ical

import "strings"

// Matcher consumes a prefix of a line of text and produces a value of type T
// together with the unconsumed remainder. Matchers are pure: they never see
// the Cursor, so a failed match has nothing to undo.
type Matcher[T any] interface {
	Match(text string) (rest string, value T, err error)
}

// MatcherFunc adapts an ordinary function to Matcher.
type MatcherFunc[T any] func(text string) (string, T, error)

func (f MatcherFunc[T]) Match(text string) (string, T, error) {
	return f(text)
}

// Tag matches the literal at the start of the text and yields it.
func Tag(literal string) Matcher[string] {
	return MatcherFunc[string](func(text string) (string, string, error) {
		if !strings.HasPrefix(text, literal) {
			actual := text
			if len(actual) > len(literal) {
				actual = actual[:len(literal)]
			}
			return text, "", &TagMismatchError{Expected: literal, Actual: actual}
		}
		return text[len(literal):], literal, nil
	})
}

// TakeRest claims the whole remaining text.
func TakeRest() Matcher[string] {
	return MatcherFunc[string](func(text string) (string, string, error) {
		return "", text, nil
	})
}

// DiscardRest claims the whole remaining text and yields the zero value of T.
// For interface types that is nil, which Many leaves out of its result.
func DiscardRest[T any]() Matcher[T] {
	return MatcherFunc[T](func(string) (string, T, error) {
		var zero T
		return "", zero, nil
	})
}

// Map replaces the value produced by m with f(value).
func Map[A, B any](m Matcher[A], f func(A) B) Matcher[B] {
	return MatcherFunc[B](func(text string) (string, B, error) {
		rest, v, err := m.Match(text)
		if err != nil {
			var zero B
			return text, zero, err
		}
		return rest, f(v), nil
	})
}

// MapErr is Map for conversions that can fail. The conversion error is
// returned as is, so conversions that must abort the parse should return a
// fatal error such as *NumericConversionError.
func MapErr[A, B any](m Matcher[A], f func(A) (B, error)) Matcher[B] {
	return MatcherFunc[B](func(text string) (string, B, error) {
		var zero B
		rest, v, err := m.Match(text)
		if err != nil {
			return text, zero, err
		}
		out, err := f(v)
		if err != nil {
			return text, zero, err
		}
		return rest, out, nil
	})
}

// Constant yields v whenever m matches.
func Constant[A, B any](v B, m Matcher[A]) Matcher[B] {
	return Map(m, func(A) B { return v })
}
