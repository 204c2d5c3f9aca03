// Package session models a job row's pause and overtime session logs and the
// derived aggregates recomputed from them. Sessions are append-only: a pause
// is appended open and later resumed in place, an overtime session is
// appended open and later ended; neither is ever removed.
package session

import "time"

// TimeLayout is how session timestamps render on the dashboard.
const TimeLayout = "02/01/2006 15:04"

// PauseType distinguishes planned pauses from equipment/process failure.
type PauseType string

const (
	TypePause    PauseType = "PAUSE"
	TypeDowntime PauseType = "DOWNTIME"
)

// Pause is one pause session. A nil ResumedAt means the pause is still open;
// at most one open pause may exist per row.
type Pause struct {
	Type           PauseType  `json:"type"`
	Reason         string     `json:"reason,omitempty"`
	PausedAt       time.Time  `json:"paused_at"`
	PausedAtLocal  string     `json:"paused_at_local"`
	ResumedAt      *time.Time `json:"resumed_at,omitempty"`
	ResumedAtLocal string     `json:"resumed_at_local,omitempty"`

	// InOvertime records whether the row was in OT when the pause began.
	InOvertime bool `json:"in_overtime"`
}

// Open reports whether the pause has not been resumed yet.
func (p *Pause) Open() bool { return p.ResumedAt == nil }

// Overtime is one overtime session. A nil EndedAt means it is still open; at
// most one open overtime session may exist per row.
type Overtime struct {
	StartedAt      time.Time  `json:"started_at"`
	StartedAtLocal string     `json:"started_at_local"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
	EndedAtLocal   string     `json:"ended_at_local,omitempty"`
	AutoStopped    bool       `json:"auto_stopped,omitempty"`
	Note           string     `json:"note,omitempty"`
}

// Open reports whether the overtime session has not been ended yet.
func (o *Overtime) Open() bool { return o.EndedAt == nil }

// NewPause returns an open pause starting at t.
func NewPause(typ PauseType, reason string, t time.Time, inOvertime bool) Pause {
	return Pause{
		Type:          typ,
		Reason:        reason,
		PausedAt:      t,
		PausedAtLocal: t.Format(TimeLayout),
		InOvertime:    inOvertime,
	}
}

// NewOvertime returns an open overtime session starting at t.
func NewOvertime(t time.Time) Overtime {
	return Overtime{
		StartedAt:      t,
		StartedAtLocal: t.Format(TimeLayout),
	}
}

// Resume closes the pause at t.
func (p *Pause) Resume(t time.Time) {
	p.ResumedAt = &t
	p.ResumedAtLocal = t.Format(TimeLayout)
}

// End closes the overtime session at t.
func (o *Overtime) End(t time.Time) {
	o.EndedAt = &t
	o.EndedAtLocal = t.Format(TimeLayout)
}

// LastOpenPause returns the most recent open pause, or nil.
func LastOpenPause(ps []Pause) *Pause {
	for i := len(ps) - 1; i >= 0; i-- {
		if ps[i].Open() {
			return &ps[i]
		}
	}
	return nil
}

// LastOpenOvertime returns the most recent open overtime session, or nil.
func LastOpenOvertime(ots []Overtime) *Overtime {
	for i := len(ots) - 1; i >= 0; i-- {
		if ots[i].Open() {
			return &ots[i]
		}
	}
	return nil
}
