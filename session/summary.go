package session

import (
	"fmt"
	"strings"

	"github.com/tpt-cnclog/mfg-dashboard/calendar"
)

// Display tokens for the dashboard summaries.
const (
	labelPause    = "พักงาน"
	labelDowntime = "เครื่องเสีย"
	labelOvertime = "OT"

	// OpenPlaceholder renders as the end of a session that is still open.
	OpenPlaceholder = "ยังไม่สิ้นสุด"

	entrySeparator = " | "
)

func pauseLabel(t PauseType) string {
	if t == TypeDowntime {
		return labelDowntime
	}
	return labelPause
}

// PauseSummary renders the numbered, pipe-delimited pause list:
//
//	1. เครื่องเสีย: 08/01/2024 10:00 ถึง 08/01/2024 10:30 (0:30:00) - tooling | 2. ...
//
// An open pause renders its end as the placeholder token and no duration.
func PauseSummary(ps []Pause, ots []Overtime, cal *calendar.Config) string {
	if len(ps) == 0 {
		return ""
	}
	entries := make([]string, 0, len(ps))
	for i := range ps {
		p := &ps[i]
		end := OpenPlaceholder
		if !p.Open() {
			end = p.ResumedAtLocal
		}
		entry := fmt.Sprintf("%d. %s: %s ถึง %s (%s)",
			i+1, pauseLabel(p.Type), p.PausedAtLocal, end,
			calendar.FormatDuration(PauseDuration(*p, ots, cal)))
		if p.Reason != "" {
			entry += " - " + p.Reason
		}
		entries = append(entries, entry)
	}
	return strings.Join(entries, entrySeparator)
}

// ReasonSummary renders the numbered pause reasons, "-" where none was given.
func ReasonSummary(ps []Pause) string {
	if len(ps) == 0 {
		return ""
	}
	entries := make([]string, 0, len(ps))
	for i := range ps {
		reason := ps[i].Reason
		if reason == "" {
			reason = "-"
		}
		entries = append(entries, fmt.Sprintf("%d. %s", i+1, reason))
	}
	return strings.Join(entries, entrySeparator)
}

// OvertimeSummary renders the numbered, pipe-delimited overtime list in the
// same shape as PauseSummary. Auto-stopped sessions carry their note.
func OvertimeSummary(ots []Overtime, cal *calendar.Config) string {
	if len(ots) == 0 {
		return ""
	}
	entries := make([]string, 0, len(ots))
	for i := range ots {
		o := &ots[i]
		end := OpenPlaceholder
		dur := calendar.DurationPlaceholder
		if !o.Open() {
			end = o.EndedAtLocal
			dur = calendar.FormatDuration(cal.OvertimeTime(o.StartedAt, *o.EndedAt))
		}
		entry := fmt.Sprintf("%d. %s: %s ถึง %s (%s)", i+1, labelOvertime, o.StartedAtLocal, end, dur)
		if o.Note != "" {
			entry += " - " + o.Note
		}
		entries = append(entries, entry)
	}
	return strings.Join(entries, entrySeparator)
}
