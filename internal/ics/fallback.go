package ics

import (
	"bytes"
	"strings"
	"time"

	goical "github.com/arran4/golang-ical"

	"bindicator/internal/ical"
	appLog "bindicator/internal/log"
	"bindicator/internal/model"
)

// decodeFallback decodes body with arran4/golang-ical, which accepts the
// full RFC 5545 syntax (folded lines, extra properties, VTIMEZONE and so
// on). Only the date part of DTSTART and the SUMMARY token are kept, with
// the same normalization as the line grammar.
func decodeFallback(src Source, body []byte, loc *time.Location) (DecodeResult, error) {
	cal, err := goical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return DecodeResult{}, err
	}

	res := DecodeResult{Fallback: true}
	for _, ev := range cal.Events() {
		date, ok := fallbackDate(ev, loc)
		if !ok {
			res.Skipped++
			continue
		}
		var bin string
		if p := ev.GetProperty(goical.ComponentPropertySummary); p != nil {
			bin = ical.NormalizeSummary(p.Value)
		}
		res.Collections = append(res.Collections, model.Collection{
			SourceID: src.ID,
			Date:     date,
			Bin:      bin,
		})
	}
	return res, nil
}

// fallbackDate reads the calendar day of DTSTART. Both DATE and DATE-TIME
// values are accepted; for the latter only the leading YYYYMMDD is used.
func fallbackDate(ev *goical.VEvent, loc *time.Location) (time.Time, bool) {
	p := ev.GetProperty(goical.ComponentPropertyDtStart)
	if p == nil {
		return time.Time{}, false
	}
	v := strings.TrimSpace(p.Value)
	if len(v) < 8 {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("20060102", v[:8], loc)
	if err != nil {
		appLog.Debug("ics fallback: unreadable DTSTART", "value", v, "err", err)
		return time.Time{}, false
	}
	return t, true
}
