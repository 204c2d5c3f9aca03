package session

import (
	"time"

	"github.com/tpt-cnclog/mfg-dashboard/calendar"
)

// AutoStopNote is attached to overtime sessions closed by the cutoff sweep.
const AutoStopNote = "ปิดอัตโนมัติเมื่อถึงเวลาสิ้นสุด OT"

// PauseDuration is the billed length of a completed pause: working-hours
// overlap of [PausedAt, ResumedAt] plus overtime overlap, where the overtime
// part is computed only against portions of the pause that intersect an
// actual logged overtime session. A pause that merely falls inside the
// nominal 17:30-22:30 band while no overtime was authorized bills nothing
// extra. Open pauses bill zero.
func PauseDuration(p Pause, ots []Overtime, cal *calendar.Config) time.Duration {
	if p.Open() {
		return 0
	}
	resumed := *p.ResumedAt
	total := cal.WorkingTime(p.PausedAt, resumed)

	for i := range ots {
		o := &ots[i]
		end := resumed
		if o.EndedAt != nil && o.EndedAt.Before(resumed) {
			end = *o.EndedAt
		}
		start := o.StartedAt
		if start.Before(p.PausedAt) {
			start = p.PausedAt
		}
		if end.After(start) {
			total += cal.OvertimeTime(start, end)
		}
	}
	return total
}

func sumPauses(ps []Pause, ots []Overtime, cal *calendar.Config, want func(*Pause) bool) time.Duration {
	var total time.Duration
	for i := range ps {
		if ps[i].Open() || !want(&ps[i]) {
			continue
		}
		total += PauseDuration(ps[i], ots, cal)
	}
	return total
}

// TotalPause sums billed duration over all completed pauses of either type.
func TotalPause(ps []Pause, ots []Overtime, cal *calendar.Config) time.Duration {
	return sumPauses(ps, ots, cal, func(*Pause) bool { return true })
}

// TotalDowntime sums billed duration over completed DOWNTIME pauses.
func TotalDowntime(ps []Pause, ots []Overtime, cal *calendar.Config) time.Duration {
	return sumPauses(ps, ots, cal, func(p *Pause) bool { return p.Type == TypeDowntime })
}

// TotalNormalPause sums billed duration over completed PAUSE pauses.
func TotalNormalPause(ps []Pause, ots []Overtime, cal *calendar.Config) time.Duration {
	return sumPauses(ps, ots, cal, func(p *Pause) bool { return p.Type == TypePause })
}

// OvertimeTotal sums in-window overtime over all completed overtime sessions.
func OvertimeTotal(ots []Overtime, cal *calendar.Config) time.Duration {
	var total time.Duration
	for i := range ots {
		if ots[i].EndedAt == nil {
			continue
		}
		total += cal.OvertimeTime(ots[i].StartedAt, *ots[i].EndedAt)
	}
	return total
}

// AutoStopOpen force-closes any overtime session left open past its same-day
// cutoff, or whose calendar day has rolled over, ending it at that day's
// cutoff with AutoStopped set. Returns the number of sessions closed so the
// caller can decide whether to persist. Safe to call repeatedly.
func AutoStopOpen(ots []Overtime, now time.Time, cal *calendar.Config) int {
	stopped := 0
	loc := cal.Location()
	for i := range ots {
		o := &ots[i]
		if !o.Open() {
			continue
		}
		cutoff := cal.OvertimeCutoff(o.StartedAt)
		sy, sm, sd := o.StartedAt.In(loc).Date()
		ny, nm, nd := now.In(loc).Date()
		sameDay := sy == ny && sm == nm && sd == nd
		if now.After(cutoff) || !sameDay {
			o.End(cutoff)
			o.AutoStopped = true
			if o.Note == "" {
				o.Note = AutoStopNote
			}
			stopped++
		}
	}
	return stopped
}
