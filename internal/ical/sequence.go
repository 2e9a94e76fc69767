package ical

// Pair holds the values of two matchers run in sequence.
type Pair[A, B any] struct {
	First  A
	Second B
}

// PairOf runs a, then b on what a left over. Both must succeed.
func PairOf[A, B any](a Matcher[A], b Matcher[B]) Matcher[Pair[A, B]] {
	return MatcherFunc[Pair[A, B]](func(text string) (string, Pair[A, B], error) {
		var p Pair[A, B]
		rest, first, err := a.Match(text)
		if err != nil {
			return text, p, err
		}
		rest, second, err := b.Match(rest)
		if err != nil {
			return text, p, err
		}
		p.First, p.Second = first, second
		return rest, p, nil
	})
}

// SeparatedPair runs a, sep and b in sequence and drops the separator.
func SeparatedPair[A, S, B any](a Matcher[A], sep Matcher[S], b Matcher[B]) Matcher[Pair[A, B]] {
	return PairOf(Terminated(a, sep), b)
}

// Terminated runs a then b and keeps a's value.
func Terminated[A, B any](a Matcher[A], b Matcher[B]) Matcher[A] {
	return Map(PairOf(a, b), func(p Pair[A, B]) A { return p.First })
}

// Preceded runs a then b and keeps b's value.
func Preceded[A, B any](a Matcher[A], b Matcher[B]) Matcher[B] {
	return Map(PairOf(a, b), func(p Pair[A, B]) B { return p.Second })
}
