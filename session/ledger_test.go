package session

import (
	"errors"
	"strings"
	"testing"
	"time"

	cnclog "github.com/tpt-cnclog/mfg-dashboard"
	"github.com/tpt-cnclog/mfg-dashboard/calendar"
)

var (
	cal = calendar.New()
	bkk = cal.Location()
)

// mon returns a time on Monday 2024-01-08.
func mon(h, m int) time.Time {
	return time.Date(2024, 1, 8, h, m, 0, 0, bkk)
}

func completedPause(typ PauseType, reason string, from, to time.Time) Pause {
	p := NewPause(typ, reason, from, false)
	p.Resume(to)
	return p
}

func TestPauseDurationWorkingHoursOnly(t *testing.T) {
	p := completedPause(TypeDowntime, "tooling", mon(10, 0), mon(10, 30))
	if got := PauseDuration(p, nil, cal); got != 30*time.Minute {
		t.Fatalf("PauseDuration = %v, want 30m", got)
	}
}

func TestPauseDurationSpansLunch(t *testing.T) {
	p := completedPause(TypePause, "", mon(11, 30), mon(13, 30))
	if got := PauseDuration(p, nil, cal); got != time.Hour {
		t.Fatalf("PauseDuration = %v, want 1h (lunch excluded)", got)
	}
}

func TestPauseDurationIgnoresUnauthorizedOvertime(t *testing.T) {
	// Pause 18:00-19:00 falls inside the nominal OT band but no overtime
	// session was logged: nothing is billed.
	p := completedPause(TypePause, "", mon(18, 0), mon(19, 0))
	if got := PauseDuration(p, nil, cal); got != 0 {
		t.Fatalf("PauseDuration = %v, want 0 without a logged OT session", got)
	}
}

func TestPauseDurationBillsLoggedOvertimeOverlap(t *testing.T) {
	ot := NewOvertime(mon(17, 30))
	ot.End(mon(20, 0))
	p := completedPause(TypePause, "", mon(18, 0), mon(19, 0))
	if got := PauseDuration(p, []Overtime{ot}, cal); got != time.Hour {
		t.Fatalf("PauseDuration = %v, want 1h of OT-covered pause", got)
	}

	// OT session covering only half the pause bills half.
	short := NewOvertime(mon(17, 30))
	short.End(mon(18, 30))
	if got := PauseDuration(p, []Overtime{short}, cal); got != 30*time.Minute {
		t.Fatalf("PauseDuration = %v, want 30m", got)
	}
}

func TestPauseDurationOpenOvertimeClampsAtResume(t *testing.T) {
	open := NewOvertime(mon(17, 30))
	p := completedPause(TypeDowntime, "", mon(18, 0), mon(18, 45))
	if got := PauseDuration(p, []Overtime{open}, cal); got != 45*time.Minute {
		t.Fatalf("PauseDuration = %v, want 45m against still-open OT", got)
	}
}

func TestOpenPauseBillsNothing(t *testing.T) {
	p := NewPause(TypePause, "", mon(10, 0), false)
	if got := PauseDuration(p, nil, cal); got != 0 {
		t.Fatalf("open pause billed %v, want 0", got)
	}
	if got := TotalPause([]Pause{p}, nil, cal); got != 0 {
		t.Fatalf("TotalPause with only open pause = %v, want 0", got)
	}
}

func TestTotalsByType(t *testing.T) {
	ps := []Pause{
		completedPause(TypeDowntime, "spindle", mon(9, 0), mon(9, 30)),
		completedPause(TypePause, "", mon(10, 0), mon(10, 15)),
		completedPause(TypeDowntime, "coolant", mon(14, 0), mon(14, 5)),
	}
	if got := TotalDowntime(ps, nil, cal); got != 35*time.Minute {
		t.Errorf("TotalDowntime = %v, want 35m", got)
	}
	if got := TotalNormalPause(ps, nil, cal); got != 15*time.Minute {
		t.Errorf("TotalNormalPause = %v, want 15m", got)
	}
	if got := TotalPause(ps, nil, cal); got != 50*time.Minute {
		t.Errorf("TotalPause = %v, want 50m", got)
	}
}

func TestTotalPauseNoDriftOverCycles(t *testing.T) {
	// N pause/continue cycles: the total must equal the sum of individual
	// completed sessions, recomputed fresh.
	var ps []Pause
	var want time.Duration
	start := mon(9, 0)
	for i := 0; i < 5; i++ {
		from := start.Add(time.Duration(i) * 20 * time.Minute)
		to := from.Add(7 * time.Minute)
		ps = append(ps, completedPause(TypePause, "", from, to))
		want += 7 * time.Minute
	}
	for i := 0; i < 3; i++ {
		if got := TotalPause(ps, nil, cal); got != want {
			t.Fatalf("recompute %d: TotalPause = %v, want %v", i, got, want)
		}
	}
}

func TestOvertimeTotal(t *testing.T) {
	a := NewOvertime(mon(17, 30))
	a.End(mon(19, 0))
	b := NewOvertime(mon(20, 0)) // still open, contributes nothing
	if got := OvertimeTotal([]Overtime{a, b}, cal); got != 90*time.Minute {
		t.Fatalf("OvertimeTotal = %v, want 1h30m", got)
	}
}

func TestAutoStopOpenPastCutoff(t *testing.T) {
	ot := NewOvertime(mon(21, 0))
	ots := []Overtime{ot}
	if n := AutoStopOpen(ots, mon(22, 45), cal); n != 1 {
		t.Fatalf("AutoStopOpen = %d, want 1", n)
	}
	got := ots[0]
	if got.EndedAt == nil || !got.AutoStopped {
		t.Fatalf("session not auto-stopped: %+v", got)
	}
	if got.EndedAt.Hour() != 22 || got.EndedAt.Minute() != 30 {
		t.Fatalf("auto-stop end = %v, want that day's 22:30", got.EndedAt)
	}
	if got.Note == "" {
		t.Error("auto-stop should attach a note")
	}

	// Idempotent: nothing left to stop.
	if n := AutoStopOpen(ots, mon(23, 0), cal); n != 0 {
		t.Errorf("second AutoStopOpen = %d, want 0", n)
	}
}

func TestAutoStopOpenCountsEverySession(t *testing.T) {
	// Two stale open sessions in one ledger, as left by hand-edited rows.
	done := NewOvertime(mon(19, 0))
	done.End(mon(20, 0))
	ots := []Overtime{
		NewOvertime(mon(18, 0)),
		done,
		NewOvertime(mon(21, 0)),
	}
	if n := AutoStopOpen(ots, mon(23, 0), cal); n != 2 {
		t.Fatalf("AutoStopOpen = %d, want 2", n)
	}
	for i, o := range ots {
		if o.Open() {
			t.Fatalf("ots[%d] still open", i)
		}
	}
	if ots[1].AutoStopped {
		t.Fatal("already-ended session should not be flagged")
	}
}

func TestAutoStopOpenDayRollover(t *testing.T) {
	ot := NewOvertime(mon(21, 0))
	ots := []Overtime{ot}
	nextMorning := time.Date(2024, 1, 9, 8, 0, 0, 0, bkk)
	if n := AutoStopOpen(ots, nextMorning, cal); n != 1 {
		t.Fatalf("AutoStopOpen = %d, want 1", n)
	}
	if ots[0].EndedAt.Day() != 8 {
		t.Fatalf("end day = %d, want the session's own day", ots[0].EndedAt.Day())
	}
}

func TestAutoStopOpenBeforeCutoffNoop(t *testing.T) {
	ots := []Overtime{NewOvertime(mon(18, 0))}
	if n := AutoStopOpen(ots, mon(22, 0), cal); n != 0 {
		t.Fatalf("AutoStopOpen = %d, want 0", n)
	}
	if !ots[0].Open() {
		t.Fatal("session should still be open")
	}
}

func TestCodecRoundTrip(t *testing.T) {
	ps := []Pause{
		completedPause(TypeDowntime, "tooling", mon(10, 0), mon(10, 30)),
		NewPause(TypePause, "", mon(11, 0), true),
	}
	cell, err := EncodePauses(ps)
	if err != nil {
		t.Fatalf("EncodePauses: %v", err)
	}
	got, err := DecodePauses(cell)
	if err != nil {
		t.Fatalf("DecodePauses: %v", err)
	}
	if len(got) != 2 || got[0].Reason != "tooling" || !got[1].Open() || !got[1].InOvertime {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestCodecEmpty(t *testing.T) {
	cell, err := EncodePauses(nil)
	if err != nil || cell != "" {
		t.Fatalf("EncodePauses(nil) = %q, %v", cell, err)
	}
	got, err := DecodePauses("")
	if err != nil || got != nil {
		t.Fatalf("DecodePauses(\"\") = %v, %v", got, err)
	}
}

func TestCodecCorruptIsTypedError(t *testing.T) {
	for _, cell := range []string{"{not json", `[1,2,3]`, `{"v":99,"sessions":[]}`} {
		_, err := DecodePauses(cell)
		if !errors.Is(err, cnclog.ErrCorruptSessionLog) {
			t.Errorf("DecodePauses(%q) err = %v, want ErrCorruptSessionLog", cell, err)
		}
	}
}

func TestPauseSummaryFormat(t *testing.T) {
	ps := []Pause{
		completedPause(TypeDowntime, "tooling", mon(10, 0), mon(10, 30)),
		NewPause(TypePause, "", mon(11, 0), false),
	}
	got := PauseSummary(ps, nil, cal)
	want := "1. เครื่องเสีย: 08/01/2024 10:00 ถึง 08/01/2024 10:30 (0:30:00) - tooling" +
		entrySeparator +
		"2. พักงาน: 08/01/2024 11:00 ถึง " + OpenPlaceholder + " (-)"
	if got != want {
		t.Fatalf("PauseSummary:\n got %q\nwant %q", got, want)
	}
}

func TestReasonSummary(t *testing.T) {
	ps := []Pause{
		completedPause(TypeDowntime, "tooling", mon(10, 0), mon(10, 30)),
		completedPause(TypePause, "", mon(11, 0), mon(11, 10)),
	}
	if got, want := ReasonSummary(ps), "1. tooling | 2. -"; got != want {
		t.Fatalf("ReasonSummary = %q, want %q", got, want)
	}
	if ReasonSummary(nil) != "" {
		t.Error("empty list should render empty")
	}
}

func TestOvertimeSummaryFormat(t *testing.T) {
	ot := NewOvertime(mon(17, 30))
	ot.End(mon(19, 0))
	open := NewOvertime(mon(20, 0))
	got := OvertimeSummary([]Overtime{ot, open}, cal)
	want := "1. OT: 08/01/2024 17:30 ถึง 08/01/2024 19:00 (1:30:00)" +
		entrySeparator +
		"2. OT: 08/01/2024 20:00 ถึง " + OpenPlaceholder + " (-)"
	if got != want {
		t.Fatalf("OvertimeSummary:\n got %q\nwant %q", got, want)
	}
	if !strings.Contains(OvertimeSummary([]Overtime{{
		StartedAt: mon(21, 0), StartedAtLocal: "08/01/2024 21:00",
		AutoStopped: true, Note: AutoStopNote,
	}}, cal), AutoStopNote) {
		// the note renders even while the session is open
		t.Error("note should be appended to the entry")
	}
}
