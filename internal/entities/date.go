package entities

import (
	"cloud.google.com/go/civil"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the day format used by the upstream source and the public API.
const DateLayout = "02.01.2006"

func ParseDate(value string) (civil.Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w: %w: date %q must look like dd.mm.yyyy", ErrInvalidInput, ErrParsing, value)
	}
	return civil.DateOf(t), nil
}

func FormatDate(d civil.Date) string {
	return d.In(time.UTC).Format(DateLayout)
}

// DateRange is inclusive on both ends.
type DateRange struct {
	Start civil.Date
	End   civil.Date
}

func NewDateRange(start, end civil.Date) (DateRange, error) {
	if start.After(end) {
		return DateRange{}, fmt.Errorf("%w: range start %s is after end %s", ErrInvalidInput, FormatDate(start), FormatDate(end))
	}
	return DateRange{Start: start, End: end}, nil
}

func (r DateRange) Days() []civil.Date {
	days := make([]civil.Date, 0, r.End.DaysSince(r.Start)+1)
	for d := r.Start; !d.After(r.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

func (r DateRange) Contains(d civil.Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

func (r DateRange) String() string {
	return FormatDate(r.Start) + "-" + FormatDate(r.End)
}

type Period string

const (
	PeriodWeek       Period = "week"
	PeriodMonth      Period = "month"
	PeriodQuarter    Period = "quarter"
	PeriodHalfYear   Period = "half-year"
	PeriodNineMonths Period = "nine-months"
	PeriodYear       Period = "year"
)

// Range resolves the period to a range ending today.
// Unknown names cover yesterday and today.
func (p Period) Range(today civil.Date) DateRange {
	var start civil.Date

	switch Period(strings.ToLower(strings.TrimSpace(string(p)))) {
	case PeriodWeek:
		start = today.AddDays(-7)
	case PeriodMonth:
		start = minusMonths(today, 1)
	case PeriodQuarter:
		start = minusMonths(today, 3)
	case PeriodHalfYear:
		start = minusMonths(today, 6)
	case PeriodNineMonths:
		start = minusMonths(today, 9)
	case PeriodYear:
		start = minusMonths(today, 12)
	default:
		start = today.AddDays(-1)
	}

	return DateRange{Start: start, End: today}
}

// minusMonths clamps the day to the end of the target month.
func minusMonths(d civil.Date, n int) civil.Date {
	total := d.Year*12 + int(d.Month) - 1 - n
	year, month := total/12, time.Month(total%12+1)

	return civil.Date{Year: year, Month: month, Day: min(d.Day, daysIn(year, month))}
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
