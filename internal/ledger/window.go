package ledger

import (
	"fmt"
	"time"

	"ms-tombola/internal/models"
)

// Window bounds a set of sales by creation time. The zero Window matches
// everything. End, when set, is inclusive.
type Window struct {
	Start time.Time
	End   time.Time
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// Today covers [midnight, open-ended).
func Today(now time.Time) Window {
	return Window{Start: StartOfDay(now)}
}

// LastDays covers the n days before now, starting at midnight.
func LastDays(now time.Time, n int) Window {
	return Window{Start: StartOfDay(now.AddDate(0, 0, -n))}
}

// Between covers an explicit range. The end bound is stretched to the
// literal end of its day so "to 2024-06-30" includes the 30th.
func Between(start, end time.Time) Window {
	w := Window{Start: start}
	if !end.IsZero() {
		w.End = EndOfDay(end)
	}
	return w
}

// ParseWindow builds a window from from/to date strings in YYYY-MM-DD
// form. Either side may be empty; both empty yields the zero window.
func ParseWindow(from, to string) (Window, error) {
	var start, end time.Time
	var err error

	if from != "" {
		start, err = time.ParseInLocation("2006-01-02", from, time.Local)
		if err != nil {
			return Window{}, fmt.Errorf("invalid 'from' date %q: %w", from, err)
		}
	}
	if to != "" {
		end, err = time.ParseInLocation("2006-01-02", to, time.Local)
		if err != nil {
			return Window{}, fmt.Errorf("invalid 'to' date %q: %w", to, err)
		}
	}

	switch {
	case !start.IsZero() && !end.IsZero():
		return Between(start, end), nil
	case !start.IsZero():
		return Window{Start: StartOfDay(start)}, nil
	case !end.IsZero():
		return Window{End: EndOfDay(end)}, nil
	default:
		return Window{}, nil
	}
}

// ParsePeriod resolves a period preset into a window. Presets mirror
// the panel's filter bar: today, 7days, 30days, or custom with explicit
// from/to dates. An empty period falls back to whatever from/to say.
func ParsePeriod(period, from, to string) (Window, error) {
	switch period {
	case "", "custom":
		return ParseWindow(from, to)
	case "today":
		return Today(time.Now()), nil
	case "7days":
		return LastDays(time.Now(), 7), nil
	case "30days":
		return LastDays(time.Now(), 30), nil
	default:
		return Window{}, fmt.Errorf("unknown period %q", period)
	}
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && t.After(w.End) {
		return false
	}
	return true
}

// IsZero reports whether the window is unbounded.
func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Filter returns the sales whose creation time falls inside the window,
// preserving input order.
func (w Window) Filter(sales []models.Sale) []models.Sale {
	if w.IsZero() {
		return sales
	}
	out := make([]models.Sale, 0, len(sales))
	for _, s := range sales {
		if w.Contains(s.CreatedAt) {
			out = append(out, s)
		}
	}
	return out
}
