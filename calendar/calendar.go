// Package calendar computes working-time and overtime-time overlap between
// arbitrary intervals and the factory's fixed weekly business calendar. All
// functions are pure; the calendar itself is an immutable Config injected by
// the caller, so tests can run against facilities with different shift hours.
package calendar

import (
	"fmt"
	"time"
)

// Clock is a wall-clock time of day, minute resolution.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM".
func ParseClock(s string) (Clock, error) {
	var c Clock
	if _, err := fmt.Sscanf(s, "%d:%d", &c.Hour, &c.Minute); err != nil {
		return Clock{}, fmt.Errorf("calendar: parse clock %q: %w", s, err)
	}
	if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 {
		return Clock{}, fmt.Errorf("calendar: clock %q out of range", s)
	}
	return c, nil
}

// IsZero reports whether c is the zero Clock (midnight, used as "unset").
func (c Clock) IsZero() bool { return c.Hour == 0 && c.Minute == 0 }

func (c Clock) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// on anchors the clock time to the calendar day of t in t's location.
func (c Clock) on(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, t.Location())
}

// Window is a half-open [Start, End) span within one day.
type Window struct {
	Start Clock
	End   Clock
}

// Config is the immutable weekly business calendar.
type Config struct {
	loc      *time.Location
	working  []Window
	overtime Window
	workdays [7]bool
}

// Option configures a Config.
type Option func(*Config)

// WithLocation sets the calendar's time zone.
func WithLocation(loc *time.Location) Option {
	return func(c *Config) { c.loc = loc }
}

// WithWorkingWindows replaces the default working windows.
func WithWorkingWindows(ws ...Window) Option {
	return func(c *Config) { c.working = ws }
}

// WithOvertimeWindow replaces the default overtime window.
func WithOvertimeWindow(w Window) Option {
	return func(c *Config) { c.overtime = w }
}

// WithWorkdays sets which weekdays count as working days.
func WithWorkdays(days ...time.Weekday) Option {
	return func(c *Config) {
		c.workdays = [7]bool{}
		for _, d := range days {
			c.workdays[d] = true
		}
	}
}

// New returns the factory default calendar: working windows 08:30-12:00,
// 13:00-15:00 and 15:10-16:45 (the 12:00-13:00 lunch and 15:00-15:10 break
// are excluded by construction), overtime 17:30-22:30, Monday through
// Saturday. The default zone is Asia/Bangkok.
func New(opts ...Option) *Config {
	loc, err := time.LoadLocation("Asia/Bangkok")
	if err != nil {
		loc = time.FixedZone("ICT", 7*3600)
	}
	c := &Config{
		loc: loc,
		working: []Window{
			{Clock{8, 30}, Clock{12, 0}},
			{Clock{13, 0}, Clock{15, 0}},
			{Clock{15, 10}, Clock{16, 45}},
		},
		overtime: Window{Clock{17, 30}, Clock{22, 30}},
		workdays: [7]bool{
			time.Monday:    true,
			time.Tuesday:   true,
			time.Wednesday: true,
			time.Thursday:  true,
			time.Friday:    true,
			time.Saturday:  true,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Location returns the calendar's time zone.
func (c *Config) Location() *time.Location { return c.loc }

// WorkingTime sums, per calendar day in [start, end), the overlap with the
// configured working windows on working days. Negative or empty intervals
// yield zero.
func (c *Config) WorkingTime(start, end time.Time) time.Duration {
	return c.WorkingTimeUntil(start, end, Clock{})
}

// WorkingTimeUntil is WorkingTime with the end of the final working window
// replaced by workEnd. A zero workEnd keeps the default. Process types with a
// shorter last shift use this variant.
func (c *Config) WorkingTimeUntil(start, end time.Time, workEnd Clock) time.Duration {
	windows := c.working
	if !workEnd.IsZero() && len(windows) > 0 {
		windows = append(append([]Window(nil), windows[:len(windows)-1]...), Window{
			Start: windows[len(windows)-1].Start,
			End:   workEnd,
		})
	}
	return c.sum(start, end, windows)
}

// OvertimeTime sums overlap with the overtime window on working days.
func (c *Config) OvertimeTime(start, end time.Time) time.Duration {
	return c.sum(start, end, []Window{c.overtime})
}

// InOvertimeWindow reports whether t falls inside [start, end) of the
// overtime window on a working day.
func (c *Config) InOvertimeWindow(t time.Time) bool {
	t = t.In(c.loc)
	if !c.workdays[t.Weekday()] {
		return false
	}
	return !t.Before(c.overtime.Start.on(t)) && t.Before(c.overtime.End.on(t))
}

// OvertimeCutoff returns the overtime window end on t's calendar day.
func (c *Config) OvertimeCutoff(t time.Time) time.Time {
	return c.overtime.End.on(t.In(c.loc))
}

// sum steps day by day over [start, end), clamping each window to the
// interval before adding its length.
func (c *Config) sum(start, end time.Time, windows []Window) time.Duration {
	start = start.In(c.loc)
	end = end.In(c.loc)
	if !end.After(start) {
		return 0
	}

	var total time.Duration
	y, m, d := start.Date()
	for day := time.Date(y, m, d, 0, 0, 0, 0, c.loc); day.Before(end); day = day.AddDate(0, 0, 1) {
		if !c.workdays[day.Weekday()] {
			continue
		}
		for _, w := range windows {
			ws, we := w.Start.on(day), w.End.on(day)
			if ws.Before(start) {
				ws = start
			}
			if we.After(end) {
				we = end
			}
			if we.After(ws) {
				total += we.Sub(ws)
			}
		}
	}
	return total
}
