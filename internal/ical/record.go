package ical

import "fmt"

// Date is a calendar date exactly as written in the feed. It is not
// validated: month 13 or day 0 pass through untouched.
type Date struct {
	Year  int
	Month int
	Day   int
}

// IsZero reports whether d is the zero Date, i.e. no DTSTART was seen.
func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Record is one VEVENT reduced to the two fields that matter downstream.
// A field that never appeared in the block is left at its zero value.
type Record struct {
	Start   Date
	Summary string
}

// Field is one recognized event property, ready to be folded into a Record.
type Field interface {
	apply(b *RecordBuilder)
}

// StartField carries a DTSTART;VALUE=DATE value.
type StartField Date

func (f StartField) apply(b *RecordBuilder) { b.SetStart(Date(f)) }

// SummaryField carries a normalized SUMMARY token.
type SummaryField string

func (f SummaryField) apply(b *RecordBuilder) { b.SetSummary(string(f)) }

// RecordBuilder folds fields into a Record. When a key occurs more than once
// in a block the last value wins.
type RecordBuilder struct {
	rec Record
}

// SetStart records the start date, replacing any earlier one.
func (b *RecordBuilder) SetStart(d Date) { b.rec.Start = d }

// SetSummary records the summary token, replacing any earlier one.
func (b *RecordBuilder) SetSummary(s string) { b.rec.Summary = s }

// Add applies fields in order.
func (b *RecordBuilder) Add(fields ...Field) {
	for _, f := range fields {
		if f != nil {
			f.apply(b)
		}
	}
}

// Record returns the folded record.
func (b *RecordBuilder) Record() Record { return b.rec }
