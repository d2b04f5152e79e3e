package util

import "time"

var etLocation *time.Location

func init() {
	var err error
	etLocation, err = time.LoadLocation("America/New_York")
	if err != nil {
		etLocation = time.FixedZone("EST", -5*60*60)
	}
}

// DateLayout is the calendar-day layout used by the games API and the post ledger.
const DateLayout = "2006-01-02"

func EasternLocation() *time.Location {
	return etLocation
}

func ToET(t time.Time) time.Time {
	return t.In(etLocation)
}

func FormatET(t time.Time, layout string) string {
	return t.In(etLocation).Format(layout)
}

// DayET returns the YYYY-MM-DD calendar day of t in Eastern time.
func DayET(t time.Time) string {
	return FormatET(t, DateLayout)
}

// MonthDay renders t as "January 2" in loc, falling back to Eastern time.
func MonthDay(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = etLocation
	}
	return t.In(loc).Format("January 2")
}

// ParseDay parses a YYYY-MM-DD day anchored at noon Eastern so that rendering it
// in any US zone keeps the same calendar day.
func ParseDay(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, etLocation)
	if err != nil {
		return time.Time{}, err
	}
	return d.Add(12 * time.Hour), nil
}
