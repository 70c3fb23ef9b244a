// Package availability lays out the bookable half-hour grid of a day.
package availability

import (
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Grid is a fixed set of start times from Open to Close inclusive, Step apart.
type Grid struct {
	Open  time.Duration
	Close time.Duration
	Step  time.Duration
}

// NewGrid parses HH:MM bounds. Close must not be before Open.
func NewGrid(open, close string, step time.Duration) (Grid, error) {
	o, err := ParseClock(open)
	if err != nil {
		return Grid{}, err
	}
	c, err := ParseClock(close)
	if err != nil {
		return Grid{}, err
	}
	if c < o {
		return Grid{}, fmt.Errorf("grid close %s is before open %s", close, open)
	}
	if step <= 0 {
		return Grid{}, fmt.Errorf("grid step must be positive")
	}
	return Grid{Open: o, Close: c, Step: step}, nil
}

// ParseClock turns HH:MM into an offset from midnight.
func ParseClock(v string) (time.Duration, error) {
	t, err := time.Parse(ClockLayout, v)
	if err != nil || len(v) != len(ClockLayout) {
		return 0, fmt.Errorf("invalid clock %q", v)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func formatClock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

// Times lists every grid start as HH:MM.
func (g Grid) Times() []string {
	var out []string
	for d := g.Open; d <= g.Close; d += g.Step {
		out = append(out, formatClock(d))
	}
	return out
}

// Contains reports whether v is exactly one of the grid's start strings.
func (g Grid) Contains(v string) bool {
	d, err := ParseClock(v)
	if err != nil {
		return false
	}
	if d < g.Open || d > g.Close {
		return false
	}
	return (d-g.Open)%g.Step == 0
}

type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// DaySlots marks each grid time of day as available unless it is taken or,
// when day is today in now's location, already started.
func DaySlots(day time.Time, g Grid, taken map[string]bool, now time.Time) []Slot {
	y, m, d := day.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	times := g.Times()
	slots := make([]Slot, 0, len(times))
	for i, t := range times {
		start := midnight.Add(g.Open + time.Duration(i)*g.Step)
		slots = append(slots, Slot{
			Time:      t,
			Available: !taken[t] && !start.Before(now),
		})
	}
	return slots
}
