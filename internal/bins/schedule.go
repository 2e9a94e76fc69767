package bins

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	"bindicator/internal/model"
)

// Day is one calendar day of a schedule and the bins due on it.
type Day struct {
	Date time.Time
	Bins Set
}

// Schedule lists the bins due on each of the days calendar days starting
// with from's day. Days are enumerated with a DAILY recurrence anchored at
// local midnight, so DST transitions do not shift them.
func Schedule(collections []model.Collection, from time.Time, days int) ([]Day, error) {
	if days <= 0 {
		return nil, errors.New("bins: schedule needs at least one day")
	}
	y, m, d := from.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, from.Location())

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: start,
		Count:   days,
	})
	if err != nil {
		return nil, err
	}

	out := make([]Day, 0, days)
	for _, t := range r.All() {
		out = append(out, Day{Date: t, Bins: ForDate(collections, t)})
	}
	return out, nil
}

// Upcoming drops the days on which nothing is collected.
func Upcoming(days []Day) []Day {
	out := make([]Day, 0, len(days))
	for _, d := range days {
		if len(d.Bins) > 0 {
			out = append(out, d)
		}
	}
	return out
}
