package evalctx

import (
	"fmt"
	"strings"
	"time"

	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/models"
)

// Age is a calendar difference between two dates.
type Age struct {
	Years  int
	Months int // 0-11, remainder after whole years
	Days   int // remainder after whole months

	TotalMonths int
	TotalDays   int
}

// CalendarDiff returns the calendar difference from -> to. Days borrow from the
// month preceding to, and months borrow from years, so a birth
// date exactly N years before to yields Years == N. ok is false when from is
// after to.
func CalendarDiff(from, to time.Time) (Age, bool) {
	from = dateOnly(from)
	to = dateOnly(to)
	if from.After(to) {
		return Age{}, false
	}

	years := to.Year() - from.Year()
	months := int(to.Month()) - int(from.Month())
	days := to.Day() - from.Day()

	if days < 0 {
		months--
		// Borrow the month before to's month; a from-day past its end is
		// clamped to its last day (Jan 31 -> Mar 1 is 1 month 1 day).
		prev := time.Date(to.Year(), to.Month(), 0, 0, 0, 0, 0, time.UTC).Day()
		days = to.Day() + prev - min(from.Day(), prev)
	}
	if months < 0 {
		years--
		months += 12
	}

	return Age{
		Years:       years,
		Months:      months,
		Days:        days,
		TotalMonths: years*12 + months,
		TotalDays:   int(to.Sub(from).Hours() / 24),
	}, true
}

// DaysBetween returns whole days from -> to; negative when from is later.
func DaysBetween(from, to time.Time) int {
	return int(dateOnly(to).Sub(dateOnly(from)).Hours() / 24)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate reads a date answer. It accepts YYYY-MM-DD and RFC 3339 strings.
func ParseDate(v models.Value) (time.Time, error) {
	s, ok := v.AsString()
	if !ok {
		return time.Time{}, fmt.Errorf("date answer is %s, not a string", v.Kind())
	}
	s = strings.TrimSpace(s)
	if t, err := time.Parse(models.DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want %s", s, models.DateLayout)
	}
	return dateOnly(t), nil
}
