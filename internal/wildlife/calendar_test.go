package wildlife

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCalendarIntervalContains(t *testing.T) {
	plain := NewInterval(MD(time.April, 15), MD(time.June, 15))
	wrapping := NewInterval(MD(time.November, 16), MD(time.April, 14))
	sameMonth := NewInterval(MD(time.March, 1), MD(time.March, 31))
	reversed := NewInterval(MD(time.March, 20), MD(time.March, 10))

	if plain.Wraps || !wrapping.Wraps || sameMonth.Wraps || reversed.Wraps {
		t.Fatalf("unexpected wrap flags: plain=%v wrapping=%v sameMonth=%v reversed=%v",
			plain.Wraps, wrapping.Wraps, sameMonth.Wraps, reversed.Wraps)
	}
	if !reversed.Reversed() || sameMonth.Reversed() {
		t.Fatalf("expected only the 03-20..03-10 span to be reversed")
	}

	cases := []struct {
		interval CalendarInterval
		md       MonthDay
		want     bool
	}{
		{plain, MD(time.April, 15), true},
		{plain, MD(time.June, 15), true},
		{plain, MD(time.April, 14), false},
		{plain, MD(time.June, 16), false},
		{wrapping, MD(time.December, 31), true},
		{wrapping, MD(time.January, 1), true},
		{wrapping, MD(time.April, 14), true},
		{wrapping, MD(time.April, 15), false},
		{wrapping, MD(time.November, 15), false},
		{sameMonth, MD(time.March, 1), true},
		{sameMonth, MD(time.March, 31), true},
		{sameMonth, MD(time.April, 1), false},
		{reversed, MD(time.March, 25), false},
		{reversed, MD(time.March, 5), false},
		{reversed, MD(time.June, 1), false},
	}
	for _, tc := range cases {
		if got := tc.interval.Contains(tc.md); got != tc.want {
			t.Fatalf("%s..%s contains %s: expected %v, got %v", tc.interval.Start, tc.interval.End, tc.md, tc.want, got)
		}
	}
}

func TestCalendarIntervalDates(t *testing.T) {
	wrapping := NewInterval(MD(time.November, 16), MD(time.April, 14))

	start, end := wrapping.Dates(day(2024, time.January, 15))
	if start.Year() != 2023 || end.Year() != 2024 {
		t.Fatalf("expected 2023..2024 for a January date, got %s..%s", start, end)
	}
	start, end = wrapping.Dates(day(2024, time.December, 2))
	if start.Year() != 2024 || end.Year() != 2025 {
		t.Fatalf("expected 2024..2025 for a December date, got %s..%s", start, end)
	}
}

func TestLeapDayMonthDay(t *testing.T) {
	leap := MD(time.February, 29)
	if !leap.Valid() {
		t.Fatalf("expected Feb 29 to be a valid month-day")
	}
	if got := leap.In(2023); !got.Equal(day(2023, time.February, 28)) {
		t.Fatalf("expected Feb 29 to fall back to Feb 28 in 2023, got %s", got)
	}
	if got := leap.In(2024); !got.Equal(day(2024, time.February, 29)) {
		t.Fatalf("expected Feb 29 in 2024, got %s", got)
	}
	if MD(time.April, 31).Valid() || MD(time.Month(13), 1).Valid() || MD(time.May, 0).Valid() {
		t.Fatalf("expected impossible month-days to be invalid")
	}
}

func TestParseMonthDay(t *testing.T) {
	md, err := ParseMonthDay("09-20")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if md != MD(time.September, 20) || md.String() != "09-20" {
		t.Fatalf("expected 09-20, got %s", md)
	}
	for _, bad := range []string{"", "september", "02-30", "13-01"} {
		if _, err := ParseMonthDay(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}

	var phase Phase
	if err := json.Unmarshal([]byte(`{"name":"rut","start":"09-20","end":"10-15","peak":"10-01","base_activity":0.8}`), &phase); err != nil {
		t.Fatalf("decode phase: %v", err)
	}
	if phase.Peak == nil || *phase.Peak != MD(time.October, 1) {
		t.Fatalf("expected peak 10-01, got %v", phase.Peak)
	}
}
