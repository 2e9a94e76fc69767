package bins

import (
	"sort"
	"strings"
	"time"

	"bindicator/internal/model"
)

// Set is a set of bin tokens such as "GREEN" or "BLUE".
type Set map[string]struct{}

// NewSet builds a Set from tokens.
func NewSet(tokens ...string) Set {
	s := make(Set, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}

func (s Set) Has(token string) bool {
	_, ok := s[token]
	return ok
}

// Equal reports whether s and o hold the same tokens.
func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for t := range s {
		if !o.Has(t) {
			return false
		}
	}
	return true
}

// Sorted returns the tokens in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (s Set) String() string {
	return strings.Join(s.Sorted(), "+")
}

// ForDate returns the bins collected on the calendar day of date. The day
// is compared field by field in date's location.
func ForDate(collections []model.Collection, date time.Time) Set {
	set := make(Set)
	for _, c := range collections {
		if c.SameDay(date) {
			set[c.Bin] = struct{}{}
		}
	}
	return set
}

// Tomorrow returns local midnight of the day after t, in t's location.
func Tomorrow(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}
