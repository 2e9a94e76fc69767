package ical

import (
	"bufio"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFixture(t *testing.T) {
	f, err := os.Open("testdata/bins.ics")
	require.NoError(t, err)
	defer f.Close()

	c := NewCursor(NewReaderSource(f))
	records, err := ParseDocument(c)
	require.NoError(t, err)
	require.Len(t, records, 16)

	assert.Equal(t, Record{Start: Date{2022, 11, 11}, Summary: "BLACK"}, records[0])
	assert.Equal(t, Record{Start: Date{2022, 11, 18}, Summary: "GREEN"}, records[1])
	assert.Equal(t, Record{Start: Date{2022, 11, 18}, Summary: "BLUE"}, records[2])
	assert.Equal(t, Record{Start: Date{2023, 1, 27}, Summary: "BLUE"}, records[15])

	_, err = c.Advance()
	assert.ErrorIs(t, err, ErrEndOfInput)
}

func TestParseMinimalDocument(t *testing.T) {
	input := "BEGIN:VCALENDAR\nBEGIN:VEVENT\nDTSTART;VALUE=DATE:20221111\nSUMMARY:Black Bin Collection\nEND:VEVENT\nEND:VCALENDAR\n"

	records, err := ParseReader(strings.NewReader(input), Options{})
	require.NoError(t, err)
	assert.Equal(t, []Record{{Start: Date{2022, 11, 11}, Summary: "BLACK"}}, records)
}

func TestParseNewlineCarriageReturn(t *testing.T) {
	input := "BEGIN:VCALENDAR\n\rVERSION:2.0\n\rBEGIN:VEVENT\n\rSUMMARY:Green Bin Collection\n\rEND:VEVENT\n\rEND:VCALENDAR\n\r"

	records, err := ParseReader(strings.NewReader(input), Options{})
	require.NoError(t, err)
	assert.Equal(t, []Record{{Summary: "GREEN"}}, records)
}

func TestParseEmptyCalendar(t *testing.T) {
	records, err := ParseLines([]string{"BEGIN:VCALENDAR", "PRODID:x", "END:VCALENDAR"}, Options{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseLastValueWins(t *testing.T) {
	records, err := ParseLines([]string{
		"BEGIN:VCALENDAR",
		"BEGIN:VEVENT",
		"SUMMARY:Green Bin Collection",
		"DTSTART;VALUE=DATE:20221118",
		"SUMMARY:Blue Bin Collection",
		"DTSTART;VALUE=DATE:20221202",
		"END:VEVENT",
		"END:VCALENDAR",
	}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []Record{{Start: Date{2022, 12, 2}, Summary: "BLUE"}}, records)
}

func TestParseDoesNotValidateCalendarRanges(t *testing.T) {
	records, err := ParseLines([]string{
		"BEGIN:VCALENDAR",
		"BEGIN:VEVENT",
		"DTSTART;VALUE=DATE:20221340",
		"END:VEVENT",
		"END:VCALENDAR",
	}, Options{})
	require.NoError(t, err)
	assert.Equal(t, Date{2022, 13, 40}, records[0].Start)
}

func TestParseFailures(t *testing.T) {
	testCases := map[string]struct {
		lines []string
		line  int
		text  string
		check func(t *testing.T, err error)
	}{
		"missing begin": {
			lines: []string{"VERSION:2.0"},
			line:  1,
			text:  "VERSION:2.0",
			check: func(t *testing.T, err error) {
				var tm *TagMismatchError
				require.True(t, errors.As(err, &tm))
				assert.Equal(t, "BEGIN:VCALENDAR", tm.Expected)
			},
		},
		"unknown event property": {
			lines: []string{
				"BEGIN:VCALENDAR",
				"BEGIN:VEVENT",
				"SUMMARY:Blue Bin Collection",
				"LOCATION:Street",
				"END:VEVENT",
				"END:VCALENDAR",
			},
			line: 4,
			text: "LOCATION:Street",
			check: func(t *testing.T, err error) {
				var tm *TagMismatchError
				assert.True(t, errors.As(err, &tm))
			},
		},
		"bad date digits": {
			lines: []string{
				"BEGIN:VCALENDAR",
				"BEGIN:VEVENT",
				"DTSTART;VALUE=DATE:2022111X",
				"END:VEVENT",
				"END:VCALENDAR",
			},
			line: 3,
			text: "DTSTART;VALUE=DATE:2022111X",
			check: func(t *testing.T, err error) {
				var nc *NumericConversionError
				require.True(t, errors.As(err, &nc))
				assert.Equal(t, "1X", nc.Text)
			},
		},
		"date too long": {
			lines: []string{
				"BEGIN:VCALENDAR",
				"BEGIN:VEVENT",
				"DTSTART;VALUE=DATE:202211180",
			},
			line: 3,
			text: "DTSTART;VALUE=DATE:202211180",
			check: func(t *testing.T, err error) {
				assert.True(t, IsFatal(err))
			},
		},
		"missing end of event": {
			lines: []string{
				"BEGIN:VCALENDAR",
				"BEGIN:VEVENT",
				"DTSTART;VALUE=DATE:20221111",
				"SUMMARY:Black Bin Collection",
				"END:VEVENT",
				"BEGIN:VEVENT",
				"DTSTART;VALUE=DATE:20221118",
				"SUMMARY:Green Bin Collection",
				"END:VCALENDAR",
			},
			line: 9,
			text: "END:VCALENDAR",
			check: func(t *testing.T, err error) {
				var tm *TagMismatchError
				require.True(t, errors.As(err, &tm))
				assert.Equal(t, "END:VEVENT", tm.Expected)
			},
		},
		"truncated": {
			lines: []string{"BEGIN:VCALENDAR", "BEGIN:VEVENT", "SUMMARY:Blue"},
			line:  0,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrEndOfInput)
			},
		},
	}

	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			records, err := ParseLines(tc.lines, Options{})
			require.Error(t, err)
			assert.Nil(t, records)

			strictRecords, strictErr := ParseLines(tc.lines, Options{Strict: true})
			assert.Nil(t, strictRecords)
			assert.Equal(t, err.Error(), strictErr.Error())

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tc.line, pe.Line)
			assert.Equal(t, tc.text, pe.Text)
			tc.check(t, err)
		})
	}
}

func TestParseTrailingContent(t *testing.T) {
	input := []string{"BEGIN:VCALENDAR", "END:VCALENDAR", "garbage"}

	records, err := ParseLines(input, Options{})
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = ParseLines(input, Options{Strict: true})
	var tc *TrailingContentError
	require.True(t, errors.As(err, &tc))
	assert.Equal(t, "garbage", tc.Line)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 3, pe.Line)

	_, err = ParseLines(input[:2], Options{Strict: true})
	assert.NoError(t, err)
}

func TestParseReaderLongLine(t *testing.T) {
	desc := "X-WR-CALDESC:" + strings.Repeat("a", 70000)
	input := "BEGIN:VCALENDAR\n" + desc + "\nEND:VCALENDAR\n"

	fromReader, err := ParseReader(strings.NewReader(input), Options{Strict: true})
	require.NoError(t, err)
	fromLines, err := ParseLines([]string{"BEGIN:VCALENDAR", desc, "END:VCALENDAR"}, Options{Strict: true})
	require.NoError(t, err)
	assert.Equal(t, fromLines, fromReader)
}

func TestParseReaderLineTooLong(t *testing.T) {
	input := "BEGIN:VCALENDAR\nX-WR-CALDESC:" + strings.Repeat("a", MaxLineLength) + "\nEND:VCALENDAR\n"

	_, err := ParseReader(strings.NewReader(input), Options{})
	require.ErrorIs(t, err, bufio.ErrTooLong)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Line)
	assert.Empty(t, pe.Text)
	assert.NotContains(t, err.Error(), "end of input")
}
