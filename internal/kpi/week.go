package kpi

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// WeekKey identifies a calendar week as ISO year + week number,
// formatted "2025-W17". The zero value is invalid.
type WeekKey struct {
	Year int
	Week int
}

var weekKeyRe = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)

// ParseWeekKey parses the canonical "YYYY-Www" form.
func ParseWeekKey(s string) (WeekKey, error) {
	m := weekKeyRe.FindStringSubmatch(s)
	if m == nil {
		return WeekKey{}, fmt.Errorf("invalid week key %q (want YYYY-Www)", s)
	}
	year, _ := strconv.Atoi(m[1])
	week, _ := strconv.Atoi(m[2])
	if week < 1 || week > 53 {
		return WeekKey{}, fmt.Errorf("invalid week number %d in %q", week, s)
	}
	return WeekKey{Year: year, Week: week}, nil
}

// WeekKeyOf returns the key of the ISO week containing t.
func WeekKeyOf(t time.Time) WeekKey {
	y, w := t.ISOWeek()
	return WeekKey{Year: y, Week: w}
}

func (k WeekKey) String() string {
	return fmt.Sprintf("%04d-W%02d", k.Year, k.Week)
}

func (k WeekKey) IsZero() bool {
	return k.Year == 0 && k.Week == 0
}

// Start returns the Monday 00:00 UTC opening the week.
func (k WeekKey) Start() time.Time {
	// Jan 4 is always in ISO week 1 of its year.
	jan4 := time.Date(k.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	wd := int(jan4.Weekday())
	if wd == 0 {
		wd = 7
	}
	week1Monday := jan4.AddDate(0, 0, 1-wd)
	return week1Monday.AddDate(0, 0, (k.Week-1)*7)
}

// Next returns the key of the following calendar week.
func (k WeekKey) Next() WeekKey {
	return WeekKeyOf(k.Start().AddDate(0, 0, 7))
}

// Prev returns the key of the preceding calendar week.
func (k WeekKey) Prev() WeekKey {
	return WeekKeyOf(k.Start().AddDate(0, 0, -7))
}

// Compare orders two keys chronologically: -1, 0 or +1.
func (k WeekKey) Compare(other WeekKey) int {
	switch {
	case k.Year != other.Year:
		if k.Year < other.Year {
			return -1
		}
		return 1
	case k.Week != other.Week:
		if k.Week < other.Week {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// Before reports whether k is chronologically earlier than other.
func (k WeekKey) Before(other WeekKey) bool {
	return k.Compare(other) < 0
}
