// Package ical decodes the small subset of iCalendar used by household
// waste collection feeds: a VCALENDAR header followed by VEVENT blocks that
// carry an all-day DTSTART and a SUMMARY.
//
// The decoder is built from line-level parser combinators. A Matcher works
// on the text of a single line; Line binds a matcher to a Cursor and only
// consumes the line once the matcher has claimed all of it. Alt and Many
// are built on top of that guarantee, so a failed alternative never needs
// to be rolled back.
package ical
