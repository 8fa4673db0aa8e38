package boxoffice

import "time"

// MostRecentFriday returns the Friday opening the most recently completed
// box-office weekend. A Friday morning counts as still inside the prior
// weekend because that weekend's numbers are not final until Friday noon.
func MostRecentFriday(now time.Time) time.Time {
	daysBack := (int(now.Weekday()) - int(time.Friday) + 7) % 7
	if daysBack == 0 && now.Hour() < 12 {
		daysBack = 7
	}
	friday := now.AddDate(0, 0, -daysBack)
	return time.Date(friday.Year(), friday.Month(), friday.Day(), 0, 0, 0, 0, friday.Location())
}

// WeekOf returns the ISO year and week containing t.
func WeekOf(t time.Time) (year, week int) {
	return t.ISOWeek()
}

// PreviousWeek returns the ISO week immediately before (year, week),
// handling year boundaries.
func PreviousWeek(year, week int) (int, int) {
	return mondayOfWeek(year, week).AddDate(0, 0, -7).ISOWeek()
}

// mondayOfWeek resolves the Monday of an ISO (year, week). January 4th is
// always inside ISO week 1, which anchors the calculation.
func mondayOfWeek(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	monday := jan4.AddDate(0, 0, -((int(jan4.Weekday()) + 6) % 7))
	return monday.AddDate(0, 0, (week-1)*7)
}
