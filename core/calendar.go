package core

import "time"

// AddMonths shifts a date forward by n calendar months. The day of month is
// kept where it exists in the target month; when the target month is shorter
// the date rolls over into the following month (Jan 31 + 1 month lands on
// Mar 2 or Mar 3, never Feb 28).
func AddMonths(n int, t time.Time) time.Time {
	return t.AddDate(0, n, 0)
}

// SubMonths shifts a date backward by n calendar months, with the same
// rollover rule as AddMonths.
func SubMonths(n int, t time.Time) time.Time {
	return t.AddDate(0, -n, 0)
}
