// Package record defines the job row: one manufacturing job-step instance
// persisted as a 29-column row in the shared grid, together with the status
// machine and the identity key used for matching and duplicate guarding.
package record

import (
	"fmt"
	"strconv"
	"time"

	"github.com/tpt-cnclog/mfg-dashboard/calendar"
	"github.com/tpt-cnclog/mfg-dashboard/session"
)

// Column indexes of the persisted row. Order is the wire format: WriteRange
// calls address columns by these indexes, so reordering is a schema change.
const (
	ColLogNo = iota
	ColProjectNo
	ColCustomerName
	ColPartName
	ColDrawingNo
	ColQuantityOrdered
	ColProcessName
	ColProcessNo
	ColStepNo
	ColMachineNo
	ColStartEmployee
	ColStartTime
	ColEndEmployee
	ColEndTime
	ColProcessTime
	ColFG
	ColNG
	ColRework
	ColStatus
	ColPauseSummary
	ColTotalDowntime
	ColTotalNormalPause
	ColTotalPause
	ColPauseSessions
	ColReasonSummary
	ColOvertimeSessions
	ColOvertimeSummary
	ColOvertimeTotal
	ColRemark

	NumCols = ColRemark + 1
)

// CellTimeLayout is how start/end timestamps are stored in their cells.
const CellTimeLayout = "02/01/2006 15:04:05"

// QuantitySentinel marks fg/ng/rework for process types that close without
// piece counts.
const QuantitySentinel = "-"

// Record is one job-step row. Every derived field (summaries, totals) is a
// pure function of the session lists; Recompute rebuilds them all, nothing is
// ever incremented in place.
type Record struct {
	// Row is the backing store row ID; not itself a cell.
	Row int

	LogNo           int
	ProjectNo       string
	CustomerName    string
	PartName        string
	DrawingNo       string
	QuantityOrdered string
	ProcessName     string
	ProcessNo       string
	StepNo          string
	MachineNo       string

	StartEmployee string
	StartedAt     time.Time
	EndEmployee   string
	EndedAt       *time.Time
	ProcessTime   time.Duration
	FG            string
	NG            string
	Rework        string
	Status        Status

	PauseSummary     string
	TotalDowntime    time.Duration
	TotalNormalPause time.Duration
	TotalPause       time.Duration
	Pauses           []session.Pause
	ReasonSummary    string
	Overtimes        []session.Overtime
	OvertimeSummary  string
	OvertimeTotal    time.Duration
	Remark           string
}

// Identity returns the row's identity tuple (raw, un-normalized).
func (r *Record) Identity() Identity {
	return Identity{
		ProjectNo:   r.ProjectNo,
		PartName:    r.PartName,
		ProcessName: r.ProcessName,
		ProcessNo:   r.ProcessNo,
		StepNo:      r.StepNo,
		MachineNo:   r.MachineNo,
	}
}

// Recompute rebuilds every session-derived field from the current session
// lists. Call after any session-list change; never patch the aggregates
// incrementally.
func (r *Record) Recompute(cal *calendar.Config) {
	r.PauseSummary = session.PauseSummary(r.Pauses, r.Overtimes, cal)
	r.ReasonSummary = session.ReasonSummary(r.Pauses)
	r.TotalDowntime = session.TotalDowntime(r.Pauses, r.Overtimes, cal)
	r.TotalNormalPause = session.TotalNormalPause(r.Pauses, r.Overtimes, cal)
	r.TotalPause = session.TotalPause(r.Pauses, r.Overtimes, cal)
	r.OvertimeSummary = session.OvertimeSummary(r.Overtimes, cal)
	r.OvertimeTotal = session.OvertimeTotal(r.Overtimes, cal)
}

func formatCellTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(CellTimeLayout)
}

// Cells renders the full 29-column row.
func (r *Record) Cells() ([]string, error) {
	pauseCell, err := session.EncodePauses(r.Pauses)
	if err != nil {
		return nil, fmt.Errorf("record: encode pauses: %w", err)
	}
	otCell, err := session.EncodeOvertimes(r.Overtimes)
	if err != nil {
		return nil, fmt.Errorf("record: encode overtimes: %w", err)
	}

	endTime := ""
	if r.EndedAt != nil {
		endTime = formatCellTime(*r.EndedAt)
	}

	cells := make([]string, NumCols)
	cells[ColLogNo] = strconv.Itoa(r.LogNo)
	cells[ColProjectNo] = r.ProjectNo
	cells[ColCustomerName] = r.CustomerName
	cells[ColPartName] = r.PartName
	cells[ColDrawingNo] = r.DrawingNo
	cells[ColQuantityOrdered] = r.QuantityOrdered
	cells[ColProcessName] = r.ProcessName
	cells[ColProcessNo] = r.ProcessNo
	cells[ColStepNo] = r.StepNo
	cells[ColMachineNo] = r.MachineNo
	cells[ColStartEmployee] = r.StartEmployee
	cells[ColStartTime] = formatCellTime(r.StartedAt)
	cells[ColEndEmployee] = r.EndEmployee
	cells[ColEndTime] = endTime
	cells[ColProcessTime] = calendar.FormatDuration(r.ProcessTime)
	cells[ColFG] = r.FG
	cells[ColNG] = r.NG
	cells[ColRework] = r.Rework
	cells[ColStatus] = string(r.Status)
	cells[ColPauseSummary] = r.PauseSummary
	cells[ColTotalDowntime] = calendar.FormatDuration(r.TotalDowntime)
	cells[ColTotalNormalPause] = calendar.FormatDuration(r.TotalNormalPause)
	cells[ColTotalPause] = calendar.FormatDuration(r.TotalPause)
	cells[ColPauseSessions] = pauseCell
	cells[ColReasonSummary] = r.ReasonSummary
	cells[ColOvertimeSessions] = otCell
	cells[ColOvertimeSummary] = r.OvertimeSummary
	cells[ColOvertimeTotal] = calendar.FormatDuration(r.OvertimeTotal)
	cells[ColRemark] = r.Remark
	return cells, nil
}

// MutableCells renders the contiguous range [ColEndEmployee, ColRemark] that
// every mutating command writes in one atomic WriteRange. Status and all
// derived fields live inside it, so a concurrent reader never sees the status
// updated with the aggregates stale, or the reverse.
func (r *Record) MutableCells() ([]string, error) {
	cells, err := r.Cells()
	if err != nil {
		return nil, err
	}
	return cells[ColEndEmployee:], nil
}

// FromRow decodes a persisted row. Malformed numeric or time cells decode to
// zero values (the grid is hand-editable and a stray cell must not brick the
// row), but a session log that fails to parse surfaces
// cnclog.ErrCorruptSessionLog: that is data loss, not absence of sessions.
func FromRow(rowID int, cells []string, loc *time.Location) (*Record, error) {
	get := func(col int) string {
		if col < len(cells) {
			return cells[col]
		}
		return ""
	}
	parseTime := func(cell string) time.Time {
		if cell == "" {
			return time.Time{}
		}
		t, err := time.ParseInLocation(CellTimeLayout, cell, loc)
		if err != nil {
			return time.Time{}
		}
		return t
	}
	parseDur := func(cell string) time.Duration {
		d, err := calendar.ParseDuration(cell)
		if err != nil {
			return 0
		}
		return d
	}

	pauses, err := session.DecodePauses(get(ColPauseSessions))
	if err != nil {
		return nil, fmt.Errorf("record: row %d: %w", rowID, err)
	}
	overtimes, err := session.DecodeOvertimes(get(ColOvertimeSessions))
	if err != nil {
		return nil, fmt.Errorf("record: row %d: %w", rowID, err)
	}

	logNo, _ := strconv.Atoi(get(ColLogNo))

	r := &Record{
		Row:              rowID,
		LogNo:            logNo,
		ProjectNo:        get(ColProjectNo),
		CustomerName:     get(ColCustomerName),
		PartName:         get(ColPartName),
		DrawingNo:        get(ColDrawingNo),
		QuantityOrdered:  get(ColQuantityOrdered),
		ProcessName:      get(ColProcessName),
		ProcessNo:        get(ColProcessNo),
		StepNo:           get(ColStepNo),
		MachineNo:        get(ColMachineNo),
		StartEmployee:    get(ColStartEmployee),
		StartedAt:        parseTime(get(ColStartTime)),
		EndEmployee:      get(ColEndEmployee),
		ProcessTime:      parseDur(get(ColProcessTime)),
		FG:               get(ColFG),
		NG:               get(ColNG),
		Rework:           get(ColRework),
		Status:           Status(get(ColStatus)),
		PauseSummary:     get(ColPauseSummary),
		TotalDowntime:    parseDur(get(ColTotalDowntime)),
		TotalNormalPause: parseDur(get(ColTotalNormalPause)),
		TotalPause:       parseDur(get(ColTotalPause)),
		Pauses:           pauses,
		ReasonSummary:    get(ColReasonSummary),
		Overtimes:        overtimes,
		OvertimeSummary:  get(ColOvertimeSummary),
		OvertimeTotal:    parseDur(get(ColOvertimeTotal)),
		Remark:           get(ColRemark),
	}
	if end := parseTime(get(ColEndTime)); !end.IsZero() {
		r.EndedAt = &end
	}
	return r, nil
}
