package ics

import (
	"bytes"
	"errors"
	"time"

	"bindicator/internal/ical"
	appLog "bindicator/internal/log"
	"bindicator/internal/model"
)

// DecodeOptions controls how a feed body is decoded.
type DecodeOptions struct {
	// Strict rejects content after END:VCALENDAR.
	Strict bool
	// Fallback retries with the general-purpose iCalendar decoder when the
	// line grammar rejects the body.
	Fallback bool
	// Location is the zone collection dates are anchored in. Nil means
	// time.Local.
	Location *time.Location
}

// DecodeResult is the outcome of decoding one feed body.
type DecodeResult struct {
	Collections []model.Collection
	// Skipped counts events without a usable start date.
	Skipped int
	// Fallback is set when the body was decoded by the fallback decoder.
	Fallback bool
	// GrammarErr holds the line grammar's error when Fallback is set.
	GrammarErr error
}

// Decode turns a fetched ICS body into collections, in feed order.
func Decode(src Source, body []byte, opts DecodeOptions) (DecodeResult, error) {
	if len(body) == 0 {
		return DecodeResult{}, errors.New("empty ICS body")
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	records, err := ical.ParseReader(bytes.NewReader(body), ical.Options{Strict: opts.Strict})
	if err != nil {
		appLog.Error("ics parse failed", err, "id", src.ID, "url", redactURL(src.URL))
		if !opts.Fallback {
			return DecodeResult{}, err
		}
		res, ferr := decodeFallback(src, body, loc)
		if ferr != nil {
			return DecodeResult{}, errors.Join(err, ferr)
		}
		res.GrammarErr = err
		appLog.Info("ics decoded with fallback", "id", src.ID, "collections", len(res.Collections), "skipped", res.Skipped)
		return res, nil
	}

	var res DecodeResult
	for _, rec := range records {
		if rec.Start.IsZero() {
			res.Skipped++
			appLog.Debug("ics event without start date skipped", "id", src.ID, "summary", rec.Summary)
			continue
		}
		res.Collections = append(res.Collections, model.Collection{
			SourceID: src.ID,
			Date:     dateIn(rec.Start, loc),
			Bin:      rec.Summary,
		})
	}

	appLog.Info("ics parse completed", "id", src.ID, "url", redactURL(src.URL), "event_count", len(records), "skipped", res.Skipped)
	return res, nil
}

// dateIn anchors d at local midnight. Out-of-range months or days are
// normalized by time.Date (month 13 becomes January of the next year).
func dateIn(d ical.Date, loc *time.Location) time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, loc)
}
