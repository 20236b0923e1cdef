package achievement

import "time"

// WeekStart normalizes a date to the Monday of its containing week, at
// midnight UTC. Applying it twice yields the same value, so stored week
// keys can be re-normalized safely.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	d := t.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
