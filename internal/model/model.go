package model

import "time"

// Collection is one scheduled bin collection decoded from a feed.
type Collection struct {
	SourceID string // calendar source ID (e.g., config ICS ID)

	// Date is local midnight of the collection day in the configured
	// timezone. Only its year, month and day are meaningful.
	Date time.Time

	// Bin is the normalized bin token, e.g. "GREEN".
	Bin string
}

// SameDay reports whether t falls on the collection day, comparing
// calendar fields in t's own location.
func (c Collection) SameDay(t time.Time) bool {
	y1, m1, d1 := c.Date.Date()
	y2, m2, d2 := t.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
