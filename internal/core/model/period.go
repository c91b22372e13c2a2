package model

import "time"

// WeekWindow is a closed Monday-to-Sunday date interval.
type WeekWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// WeekWindowFor computes the week window containing the reference date
// shifted by offset weeks. Offset 0 is the week of the reference date
// itself; negative offsets walk into the past.
func WeekWindowFor(ref time.Time, offset int) WeekWindow {
	d := ref.AddDate(0, 0, offset*7)
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	// Weekday() puts Sunday at 0; shift so Monday opens the week.
	back := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -back)
	return WeekWindow{Start: start, End: start.AddDate(0, 0, 6)}
}

// Contains reports whether the given date falls inside the window,
// comparing calendar days only.
func (w WeekWindow) Contains(d time.Time) bool {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(w.Start) && !day.After(w.End)
}

// Label renders the window for display, e.g. "Jun 10 - Jun 16".
func (w WeekWindow) Label() string {
	return w.Start.Format("Jan 2") + " - " + w.End.Format("Jan 2")
}

// PreviousMonth returns the first and last calendar day of the month
// preceding the reference date. This is the payroll period handed to
// the Payroll Engine.
func PreviousMonth(ref time.Time) (start, end time.Time) {
	firstOfCurrent := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	start = firstOfCurrent.AddDate(0, -1, 0)
	end = firstOfCurrent.AddDate(0, 0, -1)
	return start, end
}
