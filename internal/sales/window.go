package sales

import "time"

// Window is an inclusive date range.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window, both ends included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// SubtractMonths moves t back by the given number of calendar months. When the
// target month is shorter, the day is clipped to its last day, so 2024-08-31
// minus six months is 2024-02-29 rather than overflowing into March.
func SubtractMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	total := y*12 + int(m) - 1 - months
	ty, tm := total/12, time.Month(total%12+1)
	if last := daysIn(ty, tm); d > last {
		d = last
	}
	hh, mm, ss := t.Clock()
	return time.Date(ty, tm, d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MaxDate returns the latest transaction_date in the table; ok is false for an
// empty table.
func MaxDate(t *Table) (max time.Time, ok bool) {
	t.Each(func(_ int, tx Transaction) {
		if !ok || tx.Date.After(max) {
			max, ok = tx.Date, true
		}
	})
	return max, ok
}

// TrailingWindow is the window of the given length ending at the data's
// latest date. "Now" is the data, never the wall clock.
func TrailingWindow(t *Table, months int) (Window, bool) {
	end, ok := MaxDate(t)
	if !ok {
		return Window{}, false
	}
	return Window{Start: SubtractMonths(end, months), End: end}, true
}
