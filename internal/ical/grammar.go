package ical

import (
	"strconv"
	"strings"
)

// property matches "NAME:value" and keeps the value matched by v.
func property[V any](name string, v Matcher[V]) Matcher[V] {
	return Map(SeparatedPair(Tag(name), Tag(":"), v), func(p Pair[string, V]) V { return p.Second })
}

// ignored matches "NAME:anything" and yields no field.
func ignored(name string) Matcher[Field] {
	return Constant[Pair[string, string], Field](nil, SeparatedPair(Tag(name), Tag(":"), TakeRest()))
}

var (
	beginCalendar = Line(Tag("BEGIN:VCALENDAR"))
	endCalendar   = Line(Tag("END:VCALENDAR"))
	beginEvent    = Line(Tag("BEGIN:VEVENT"))
	endEvent      = Line(Tag("END:VEVENT"))

	headerLine = Alt(
		Line(property("PRODID", DiscardRest[Field]())),
		Line(property("VERSION", DiscardRest[Field]())),
		Line(Preceded(Tag("X-"), DiscardRest[Field]())),
	)

	startDateLine = Line(property("DTSTART;VALUE=DATE", MapErr(TakeRest(), parseStartDate)))
	summaryLine   = Line(property("SUMMARY", Map(TakeRest(), summaryToken)))

	eventField = Alt(
		Line(ignored("UID")),
		Line(ignored("DTSTAMP")),
		startDateLine,
		summaryLine,
	)
)

// ParseDocument parses BEGIN:VCALENDAR ... END:VCALENDAR from c and returns
// one Record per VEVENT block in source order. Whatever follows
// END:VCALENDAR is left unread.
func ParseDocument(c *Cursor) ([]Record, error) {
	if _, err := beginCalendar(c); err != nil {
		return nil, err
	}
	if _, err := Many(headerLine)(c); err != nil {
		return nil, err
	}
	events, err := Many(Rule[Record](parseEvent))(c)
	if err != nil {
		return nil, err
	}
	if _, err := endCalendar(c); err != nil {
		return nil, err
	}
	return events, nil
}

func parseEvent(c *Cursor) (Record, error) {
	if _, err := beginEvent(c); err != nil {
		return Record{}, err
	}
	fields, err := Many(eventField)(c)
	if err != nil {
		return Record{}, err
	}
	if _, err := endEvent(c); err != nil {
		return Record{}, err
	}
	var b RecordBuilder
	b.Add(fields...)
	return b.Record(), nil
}

// parseStartDate converts a YYYYMMDD value. Anything other than exactly
// eight ASCII digits is a NumericConversionError.
func parseStartDate(text string) (Field, error) {
	if len(text) != 8 {
		return nil, &NumericConversionError{Text: text}
	}
	year, err := decimal(text[0:4])
	if err != nil {
		return nil, err
	}
	month, err := decimal(text[4:6])
	if err != nil {
		return nil, err
	}
	day, err := decimal(text[6:8])
	if err != nil {
		return nil, err
	}
	return StartField{Year: year, Month: month, Day: day}, nil
}

func decimal(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, &NumericConversionError{Text: s}
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &NumericConversionError{Text: s, Err: err}
	}
	return n, nil
}

func summaryToken(text string) Field {
	return SummaryField(NormalizeSummary(text))
}

// NormalizeSummary reduces "Green Bin Collection" to "GREEN". The feeds
// this package targets name each bin by its colour in the first word.
func NormalizeSummary(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}
