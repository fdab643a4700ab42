package wildlife

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// MonthDay is a year-less calendar position, written "MM-DD".
type MonthDay struct {
	Month time.Month
	Day   int
}

func MD(month time.Month, day int) MonthDay {
	return MonthDay{Month: month, Day: day}
}

func MonthDayOf(t time.Time) MonthDay {
	return MonthDay{Month: t.Month(), Day: t.Day()}
}

func (m MonthDay) Compare(other MonthDay) int {
	switch {
	case m.Month < other.Month:
		return -1
	case m.Month > other.Month:
		return 1
	case m.Day < other.Day:
		return -1
	case m.Day > other.Day:
		return 1
	default:
		return 0
	}
}

// Valid accepts Feb 29 so leap days can be covered by a phase.
func (m MonthDay) Valid() bool {
	if m.Month < time.January || m.Month > time.December || m.Day < 1 {
		return false
	}
	return m.Day <= daysInMonth(m.Month, 2024)
}

// In places m in year. Feb 29 falls back to Feb 28 in common years.
func (m MonthDay) In(year int) time.Time {
	day := m.Day
	if limit := daysInMonth(m.Month, year); day > limit {
		day = limit
	}
	return time.Date(year, m.Month, day, 0, 0, 0, 0, time.UTC)
}

func (m MonthDay) String() string {
	return fmt.Sprintf("%02d-%02d", int(m.Month), m.Day)
}

func ParseMonthDay(s string) (MonthDay, error) {
	var month, day int
	if _, err := fmt.Sscanf(s, "%d-%d", &month, &day); err != nil {
		return MonthDay{}, fmt.Errorf("month-day %q: want MM-DD", s)
	}
	md := MD(time.Month(month), day)
	if !md.Valid() {
		return MonthDay{}, fmt.Errorf("month-day %q is not a calendar date", s)
	}
	return md, nil
}

func (m MonthDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *MonthDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	md, err := ParseMonthDay(s)
	if err != nil {
		return err
	}
	*m = md
	return nil
}

func (m MonthDay) MarshalYAML() (any, error) {
	return m.String(), nil
}

func (m *MonthDay) UnmarshalYAML(node *yaml.Node) error {
	md, err := ParseMonthDay(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*m = md
	return nil
}

func daysInMonth(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// CalendarInterval is an inclusive month/day span. A wrapping interval runs
// across the new year: [Start, Dec 31] and [Jan 1, End]. Only the months
// decide wrapping; a same-month span with Start after End contains no day.
type CalendarInterval struct {
	Start MonthDay
	End   MonthDay
	Wraps bool
}

func NewInterval(start, end MonthDay) CalendarInterval {
	return CalendarInterval{Start: start, End: end, Wraps: start.Month > end.Month}
}

// Reversed reports a same-month span whose start day follows its end day.
func (c CalendarInterval) Reversed() bool {
	return c.Start.Month == c.End.Month && c.Start.Day > c.End.Day
}

func (c CalendarInterval) Contains(md MonthDay) bool {
	if c.Wraps {
		return md.Compare(c.Start) >= 0 || md.Compare(c.End) <= 0
	}
	return md.Compare(c.Start) >= 0 && md.Compare(c.End) <= 0
}

// Dates pins the interval instance that contains (or next follows) on to
// concrete dates. For a wrapping interval queried in its January side the
// start falls in the previous year.
func (c CalendarInterval) Dates(on time.Time) (start, end time.Time) {
	year := on.Year()
	if !c.Wraps {
		return c.Start.In(year), c.End.In(year)
	}
	if MonthDayOf(on).Compare(c.End) <= 0 {
		return c.Start.In(year - 1), c.End.In(year)
	}
	return c.Start.In(year), c.End.In(year + 1)
}

// DateOf places md inside the interval instance starting at start.
func (c CalendarInterval) DateOf(md MonthDay, start time.Time) time.Time {
	year := start.Year()
	if c.Wraps && md.Compare(c.Start) < 0 {
		year++
	}
	return md.In(year)
}

func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(civilDate(to).Sub(civilDate(from)).Hours() / 24)
}
