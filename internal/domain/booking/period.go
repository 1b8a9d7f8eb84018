package booking

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidPeriod = errors.New("invalid period")

var (
	dmyPattern       = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)
	isoDatePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	yearMonthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

// Month is a calendar month used as a period endpoint. All conflict
// comparisons happen at the last calendar day of the month, so a period
// that touches a month occupies it fully.
type Month struct {
	year  int
	month time.Month
}

func NewMonth(year int, month time.Month) (Month, error) {
	if year < 1 || year > 9999 || month < time.January || month > time.December {
		return Month{}, ErrInvalidPeriod
	}
	return Month{year: year, month: month}, nil
}

func MonthOf(t time.Time) Month {
	return Month{year: t.Year(), month: t.Month()}
}

// ParseMonth accepts the three supported textual encodings and rejects
// everything else:
//
//	DD/MM/YYYY  (storage encoding, day is ignored)
//	YYYY-MM-DD  (day is ignored)
//	YYYY-MM
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	switch {
	case dmyPattern.MatchString(s):
		parts := strings.Split(s, "/")
		day, err1 := strconv.Atoi(parts[0])
		month, err2 := strconv.Atoi(parts[1])
		year, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return Month{}, ErrInvalidPeriod
		}
		if day < 1 || day > 31 {
			return Month{}, ErrInvalidPeriod
		}
		return NewMonth(year, time.Month(month))
	case isoDatePattern.MatchString(s):
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return Month{}, ErrInvalidPeriod
		}
		return MonthOf(t), nil
	case yearMonthPattern.MatchString(s):
		t, err := time.Parse("2006-01", s)
		if err != nil {
			return Month{}, ErrInvalidPeriod
		}
		return MonthOf(t), nil
	default:
		return Month{}, ErrInvalidPeriod
	}
}

func (m Month) Year() int         { return m.year }
func (m Month) Month() time.Month { return m.month }

func (m Month) AddMonths(n int) Month {
	t := time.Date(m.year, m.month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return MonthOf(t)
}

func (m Month) FirstDay() time.Time {
	return time.Date(m.year, m.month, 1, 0, 0, 0, 0, time.UTC)
}

// LastDay is the canonical comparison instant for this endpoint.
func (m Month) LastDay() time.Time {
	return time.Date(m.year, m.month+1, 0, 0, 0, 0, 0, time.UTC)
}

func (m Month) Before(o Month) bool {
	return m.LastDay().Before(o.LastDay())
}

func (m Month) After(o Month) bool {
	return m.LastDay().After(o.LastDay())
}

func (m Month) Equal(o Month) bool {
	return m.year == o.year && m.month == o.month
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.year, int(m.month))
}

// FormatFirstDay renders the first day of the month in the DD/MM/YYYY
// storage encoding.
func (m Month) FormatFirstDay() string {
	return m.FirstDay().Format("02/01/2006")
}

// FormatLastDay renders the last day of the month in the DD/MM/YYYY
// storage encoding.
func (m Month) FormatLastDay() string {
	return m.LastDay().Format("02/01/2006")
}

// Period is an inclusive month range.
type Period struct {
	start Month
	end   Month
}

// NewPeriod builds a period covering months whole months starting at start.
func NewPeriod(start Month, months int) (Period, error) {
	if months <= 0 {
		return Period{}, ErrInvalidPeriod
	}
	return Period{start: start, end: start.AddMonths(months - 1)}, nil
}

func PeriodFromBounds(start, end Month) (Period, error) {
	if end.Before(start) {
		return Period{}, ErrInvalidPeriod
	}
	return Period{start: start, end: end}, nil
}

// ParsePeriod normalizes a stored start/end endpoint pair.
func ParsePeriod(startStr, endStr string) (Period, error) {
	start, err := ParseMonth(startStr)
	if err != nil {
		return Period{}, err
	}
	end, err := ParseMonth(endStr)
	if err != nil {
		return Period{}, err
	}
	return PeriodFromBounds(start, end)
}

func (p Period) Start() Month { return p.start }
func (p Period) End() Month   { return p.end }

func (p Period) Months() int {
	return (p.end.year-p.start.year)*12 + int(p.end.month-p.start.month) + 1
}

// Overlaps uses closed-interval semantics on last-day instants: a period
// ending in the month another starts still collides.
func (p Period) Overlaps(o Period) bool {
	return !p.start.LastDay().After(o.end.LastDay()) &&
		!o.start.LastDay().After(p.end.LastDay())
}

func (p Period) String() string {
	return p.start.String() + ".." + p.end.String()
}
