package calendar

import (
	"testing"
	"time"
)

var bkk = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Bangkok")
	if err != nil {
		loc = time.FixedZone("ICT", 7*3600)
	}
	return loc
}()

// at returns a time on Monday 2024-01-08 plus day offset.
func at(dayOffset, h, m int, t *testing.T) time.Time {
	t.Helper()
	return time.Date(2024, 1, 8+dayOffset, h, m, 0, 0, bkk)
}

func TestWorkingTimeInsideSingleWindow(t *testing.T) {
	c := New()
	start := at(0, 9, 0, t)
	end := at(0, 10, 30, t)
	if got := c.WorkingTime(start, end); got != end.Sub(start) {
		t.Fatalf("WorkingTime = %v, want %v", got, end.Sub(start))
	}
}

func TestWorkingTimeExcludesLunchAndBreak(t *testing.T) {
	c := New()
	cases := []struct {
		name       string
		start, end time.Time
	}{
		{"lunch", at(0, 12, 0, t), at(0, 13, 0, t)},
		{"afternoon break", at(0, 15, 0, t), at(0, 15, 10, t)},
		{"sunday", at(6, 9, 0, t), at(6, 16, 0, t)},
		{"before start of day", at(0, 6, 0, t), at(0, 8, 30, t)},
	}
	for _, tc := range cases {
		if got := c.WorkingTime(tc.start, tc.end); got != 0 {
			t.Errorf("%s: WorkingTime = %v, want 0", tc.name, got)
		}
	}
}

func TestWorkingTimeSpansLunch(t *testing.T) {
	c := New()
	// 11:00-14:00 is 1h before lunch + 1h after.
	got := c.WorkingTime(at(0, 11, 0, t), at(0, 14, 0, t))
	if want := 2 * time.Hour; got != want {
		t.Fatalf("WorkingTime = %v, want %v", got, want)
	}
}

func TestWorkingTimeFullDay(t *testing.T) {
	c := New()
	// 08:30-16:45 with lunch and break excluded: 3h30m + 2h + 1h35m.
	got := c.WorkingTime(at(0, 0, 0, t), at(0, 23, 59, t))
	if want := 7*time.Hour + 5*time.Minute; got != want {
		t.Fatalf("WorkingTime = %v, want %v", got, want)
	}
}

func TestWorkingTimeMultiDaySkipsSunday(t *testing.T) {
	c := New()
	// Saturday 13th 16:00 through Monday 15th 09:00:
	// Sat 16:00-16:45 (45m) + Mon 08:30-09:00 (30m); Sunday contributes nothing.
	got := c.WorkingTime(at(5, 16, 0, t), at(7, 9, 0, t))
	if want := 75 * time.Minute; got != want {
		t.Fatalf("WorkingTime = %v, want %v", got, want)
	}
}

func TestWorkingTimeAdditive(t *testing.T) {
	c := New()
	a := at(0, 9, 0, t)
	b := at(1, 14, 23, t)
	d := at(3, 16, 50, t)
	sum := c.WorkingTime(a, b) + c.WorkingTime(b, d)
	if got := c.WorkingTime(a, d); got != sum {
		t.Fatalf("WorkingTime(a,d) = %v, want split sum %v", got, sum)
	}
}

func TestWorkingTimeNegativeInterval(t *testing.T) {
	c := New()
	if got := c.WorkingTime(at(0, 10, 0, t), at(0, 9, 0, t)); got != 0 {
		t.Fatalf("WorkingTime on reversed interval = %v, want 0", got)
	}
}

func TestWorkingTimeUntilCustomEnd(t *testing.T) {
	c := New()
	// Last window shortened to 16:00: 15:10-16:00 instead of 15:10-16:45.
	got := c.WorkingTimeUntil(at(0, 15, 10, t), at(0, 17, 0, t), Clock{16, 0})
	if want := 50 * time.Minute; got != want {
		t.Fatalf("WorkingTimeUntil = %v, want %v", got, want)
	}
}

func TestOvertimeTime(t *testing.T) {
	c := New()
	got := c.OvertimeTime(at(0, 17, 0, t), at(0, 19, 0, t))
	if want := 90 * time.Minute; got != want {
		t.Fatalf("OvertimeTime = %v, want %v", got, want)
	}
	if got := c.OvertimeTime(at(6, 18, 0, t), at(6, 20, 0, t)); got != 0 {
		t.Fatalf("OvertimeTime on Sunday = %v, want 0", got)
	}
}

func TestInOvertimeWindow(t *testing.T) {
	c := New()
	if c.InOvertimeWindow(at(0, 16, 0, t)) {
		t.Error("16:00 should be outside the overtime window")
	}
	if !c.InOvertimeWindow(at(0, 17, 30, t)) {
		t.Error("17:30 should be inside the overtime window")
	}
	if c.InOvertimeWindow(at(0, 22, 30, t)) {
		t.Error("22:30 should be outside the overtime window (half-open)")
	}
	if c.InOvertimeWindow(at(6, 18, 0, t)) {
		t.Error("Sunday evening should be outside the overtime window")
	}
}

func TestOvertimeCutoff(t *testing.T) {
	c := New()
	cut := c.OvertimeCutoff(at(0, 9, 13, t))
	if cut.Hour() != 22 || cut.Minute() != 30 || cut.Day() != 8 {
		t.Fatalf("OvertimeCutoff = %v, want same-day 22:30", cut)
	}
}

func TestCustomCalendar(t *testing.T) {
	c := New(
		WithWorkingWindows(Window{Clock{9, 0}, Clock{17, 0}}),
		WithWorkdays(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday),
	)
	// Saturday is not a workday on this calendar.
	if got := c.WorkingTime(at(5, 9, 0, t), at(5, 17, 0, t)); got != 0 {
		t.Fatalf("WorkingTime on Saturday = %v, want 0", got)
	}
	if got := c.WorkingTime(at(0, 9, 0, t), at(0, 17, 0, t)); got != 8*time.Hour {
		t.Fatalf("WorkingTime = %v, want 8h", got)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "-"},
		{-time.Minute, "-"},
		{30 * time.Minute, "0:30:00"},
		{time.Hour + 5*time.Minute + 3*time.Second, "1:05:03"},
		{26*time.Hour + 59*time.Second, "26:00:59"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.d); got != tc.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestParseDurationRoundTrip(t *testing.T) {
	for _, d := range []time.Duration{0, 30 * time.Minute, 90*time.Minute + 12*time.Second} {
		got, err := ParseDuration(FormatDuration(d))
		if err != nil {
			t.Fatalf("ParseDuration: %v", err)
		}
		if got != d {
			t.Errorf("round trip %v -> %v", d, got)
		}
	}
	if _, err := ParseDuration("garbage"); err == nil {
		t.Error("ParseDuration should fail on garbage")
	}
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("16:30")
	if err != nil || c != (Clock{16, 30}) {
		t.Fatalf("ParseClock = %v, %v", c, err)
	}
	if _, err := ParseClock("25:00"); err == nil {
		t.Error("ParseClock should reject 25:00")
	}
}
