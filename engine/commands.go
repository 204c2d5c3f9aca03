package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	cnclog "github.com/tpt-cnclog/mfg-dashboard"
	"github.com/tpt-cnclog/mfg-dashboard/record"
	"github.com/tpt-cnclog/mfg-dashboard/session"
)

// CreateRequest carries the fields of a new job row.
type CreateRequest struct {
	record.Identity
	CustomerName    string
	DrawingNo       string
	QuantityOrdered string
	Employee        string
}

// CloseRequest carries the closing fields. FG/NG/Rework are ignored for
// non-quantified process types.
type CloseRequest struct {
	record.Identity
	Employee string
	FG       string
	NG       string
	Rework   string
}

// Create opens a new job row. It refuses when any active row already matches
// the request's identity; a closed row for the same step does not block.
func (e *Engine) Create(ctx context.Context, req CreateRequest) (_ *record.Record, err error) {
	defer e.observe(record.CommandCreate, time.Now(), &err)

	rows, err := e.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine: create: %w", err)
	}
	switch _, ferr := e.findActive(rows, req.Identity); {
	case ferr == nil:
		return nil, cnclog.ErrDuplicateOpenJob
	case !errors.Is(ferr, cnclog.ErrJobNotFound):
		return nil, ferr
	}

	logNo := 0
	for _, row := range rows {
		if n, aerr := strconv.Atoi(cellAt(row.Cells, record.ColLogNo)); aerr == nil && n > logNo {
			logNo = n
		}
	}

	now := e.now()
	rec := &record.Record{
		LogNo:           logNo + 1,
		ProjectNo:       req.ProjectNo,
		CustomerName:    req.CustomerName,
		PartName:        req.PartName,
		DrawingNo:       req.DrawingNo,
		QuantityOrdered: req.QuantityOrdered,
		ProcessName:     req.ProcessName,
		ProcessNo:       req.ProcessNo,
		StepNo:          req.StepNo,
		MachineNo:       req.MachineNo,
		StartEmployee:   req.Employee,
		StartedAt:       now,
		Status:          record.StatusOpen,
	}
	rec.Recompute(e.cal)

	cells, err := rec.Cells()
	if err != nil {
		return nil, err
	}
	rowID, err := e.store.Append(ctx, cells)
	if err != nil {
		return nil, fmt.Errorf("%w: append: %w", cnclog.ErrWriteFailed, err)
	}
	rec.Row = rowID
	e.highlight(ctx, rowID, rec.Status)
	e.mutated()

	e.log.Info("job created",
		"row", rowID, "logNo", rec.LogNo,
		"projectNo", rec.ProjectNo, "partName", rec.PartName,
		"machineNo", rec.MachineNo)
	return rec, nil
}

// Pause suspends an open or overtime job with an open pause session. The row
// remembers whether it was in overtime so Continue and the pause accounting
// can tell an overtime pause from a daytime one.
func (e *Engine) Pause(ctx context.Context, id record.Identity, typ session.PauseType, reason, employee string) (err error) {
	defer e.observe(record.CommandPause, time.Now(), &err)

	rec, err := e.locate(ctx, record.CommandPause, id)
	if err != nil {
		return err
	}

	now := e.now()
	session.AutoStopOpen(rec.Overtimes, now, e.cal)
	inOT := rec.Status == record.StatusOT && session.LastOpenOvertime(rec.Overtimes) != nil

	rec.Pauses = append(rec.Pauses, session.NewPause(typ, reason, now, inOT))
	rec.EndEmployee = employee
	rec.Status = record.StatusPause
	rec.Recompute(e.cal)
	if err := e.writeBack(ctx, rec); err != nil {
		return err
	}

	e.log.Info("job paused", "row", rec.Row, "logNo", rec.LogNo, "type", typ, "reason", reason)
	return nil
}

// Continue resumes the open pause. The row returns to OT when an overtime
// session is still open and the clock is inside the overtime window,
// otherwise to OPEN.
func (e *Engine) Continue(ctx context.Context, id record.Identity, employee string) (err error) {
	defer e.observe(record.CommandContinue, time.Now(), &err)

	rec, err := e.locate(ctx, record.CommandContinue, id)
	if err != nil {
		return err
	}
	p := session.LastOpenPause(rec.Pauses)
	if p == nil {
		return cnclog.ErrNoOpenPause
	}

	now := e.now()
	p.Resume(now)
	session.AutoStopOpen(rec.Overtimes, now, e.cal)

	rec.EndEmployee = employee
	if session.LastOpenOvertime(rec.Overtimes) != nil && e.cal.InOvertimeWindow(now) {
		rec.Status = record.StatusOT
	} else {
		rec.Status = record.StatusOpen
	}
	rec.Recompute(e.cal)
	if err := e.writeBack(ctx, rec); err != nil {
		return err
	}

	e.log.Info("job continued", "row", rec.Row, "logNo", rec.LogNo, "status", rec.Status)
	return nil
}

// StartOvertime opens an overtime session. Only valid inside the overtime
// window on a working day, and only when no overtime session is already open.
func (e *Engine) StartOvertime(ctx context.Context, id record.Identity, employee string) (err error) {
	defer e.observe(record.CommandStartOvertime, time.Now(), &err)

	rec, err := e.locate(ctx, record.CommandStartOvertime, id)
	if err != nil {
		return err
	}

	now := e.now()
	session.AutoStopOpen(rec.Overtimes, now, e.cal)
	if session.LastOpenOvertime(rec.Overtimes) != nil {
		return cnclog.ErrOvertimeAlreadyOpen
	}
	if !e.cal.InOvertimeWindow(now) {
		return cnclog.ErrOutsideOvertimeWindow
	}

	rec.Overtimes = append(rec.Overtimes, session.NewOvertime(now))
	rec.EndEmployee = employee
	rec.Status = record.StatusOT
	rec.Recompute(e.cal)
	if err := e.writeBack(ctx, rec); err != nil {
		return err
	}

	e.log.Info("overtime started", "row", rec.Row, "logNo", rec.LogNo)
	return nil
}

// StopOvertime ends the open overtime session. A paused row stays paused;
// otherwise the row returns to OPEN.
func (e *Engine) StopOvertime(ctx context.Context, id record.Identity, employee string) (err error) {
	defer e.observe(record.CommandStopOvertime, time.Now(), &err)

	rec, err := e.locate(ctx, record.CommandStopOvertime, id)
	if err != nil {
		return err
	}
	o := session.LastOpenOvertime(rec.Overtimes)
	if o == nil {
		return cnclog.ErrNoOpenOvertime
	}

	o.End(e.now())
	rec.EndEmployee = employee
	if rec.Status != record.StatusPause {
		rec.Status = record.StatusOpen
	}
	rec.Recompute(e.cal)
	if err := e.writeBack(ctx, rec); err != nil {
		return err
	}

	e.log.Info("overtime stopped", "row", rec.Row, "logNo", rec.LogNo, "status", rec.Status)
	return nil
}

// Close finalizes the job: ends any open overtime session, stamps the end
// fields, and computes process time as calendar working time from start to
// now (honoring a custom work end for the process type) plus logged overtime
// minus total pause, floored at zero. A paused job must be continued first.
func (e *Engine) Close(ctx context.Context, req CloseRequest) (err error) {
	defer e.observe(record.CommandClose, time.Now(), &err)

	rows, err := e.store.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("engine: close: %w", err)
	}
	rec, err := e.findActive(rows, req.Identity)
	if err != nil {
		return err
	}
	if rec.Status == record.StatusPause {
		return cnclog.ErrJobPaused
	}
	if !record.CanApply(record.CommandClose, rec.Status) {
		return cnclog.ErrInvalidTransition
	}

	now := e.now()
	session.AutoStopOpen(rec.Overtimes, now, e.cal)
	if o := session.LastOpenOvertime(rec.Overtimes); o != nil {
		o.End(now)
	}
	rec.Recompute(e.cal)

	worked := e.cal.WorkingTimeUntil(rec.StartedAt, now, e.workEnd(rec.ProcessName))
	processTime := worked + rec.OvertimeTotal - rec.TotalPause
	if processTime < 0 {
		processTime = 0
	}

	rec.EndEmployee = req.Employee
	rec.EndedAt = &now
	rec.ProcessTime = processTime
	if e.quantified(rec.ProcessName) {
		rec.FG = orZero(req.FG)
		rec.NG = orZero(req.NG)
		rec.Rework = orZero(req.Rework)
	} else {
		rec.FG = record.QuantitySentinel
		rec.NG = record.QuantitySentinel
		rec.Rework = record.QuantitySentinel
	}
	rec.Status = record.StatusClose
	if err := e.writeBack(ctx, rec); err != nil {
		return err
	}

	e.log.Info("job closed",
		"row", rec.Row, "logNo", rec.LogNo,
		"processTime", rec.ProcessTime.String(), "fg", rec.FG)
	return nil
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

// locate reads a fresh snapshot, finds the active row for id, and checks that
// cmd may act on its current status.
func (e *Engine) locate(ctx context.Context, cmd record.Command, id record.Identity) (*record.Record, error) {
	rows, err := e.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine: %s: %w", cmd, err)
	}
	rec, err := e.findActive(rows, id)
	if err != nil {
		return nil, err
	}
	if !record.CanApply(cmd, rec.Status) {
		return nil, cnclog.ErrInvalidTransition
	}
	return rec, nil
}

// Sweep force-closes overtime sessions left open past the cutoff and reverts
// rows stuck in OT to OPEN, returning how many sessions it closed. Idempotent;
// rows with unreadable session logs are logged and skipped so one bad row
// cannot stall the rest.
func (e *Engine) Sweep(ctx context.Context) (int, error) {
	rows, err := e.store.ReadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("engine: sweep: %w", err)
	}

	now := e.now()
	stopped := 0
	var errs []error
	for _, row := range rows {
		if !record.Status(cellAt(row.Cells, record.ColStatus)).Active() {
			continue
		}
		rec, derr := record.FromRow(row.ID, row.Cells, e.cal.Location())
		if derr != nil {
			e.log.Warn("sweep skipping unreadable row", "row", row.ID, "error", derr)
			continue
		}

		n := session.AutoStopOpen(rec.Overtimes, now, e.cal)
		stopped += n
		changed := n > 0
		if rec.Status == record.StatusOT && session.LastOpenOvertime(rec.Overtimes) == nil {
			rec.Status = record.StatusOpen
			changed = true
		}
		if !changed {
			continue
		}

		rec.Recompute(e.cal)
		if werr := e.writeBack(ctx, rec); werr != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", rec.Row, werr))
			continue
		}
		e.log.Info("sweep closed overtime", "row", rec.Row, "logNo", rec.LogNo, "status", rec.Status)
	}

	e.metrics.AddSweepAutoStops(stopped)
	return stopped, errors.Join(errs...)
}

// Step is one active job step, as offered to the operator UI for selection.
type Step struct {
	ProcessName string `json:"processName"`
	ProcessNo   string `json:"processNo"`
	StepNo      string `json:"stepNo"`
	MachineNo   string `json:"machineNo"`
	Status      string `json:"status"`
}

// OpenSteps lists the active steps of a project/part pair. It reads identity
// and status straight from the cells, so corrupt session logs never block the
// listing.
func (e *Engine) OpenSteps(ctx context.Context, projectNo, partName string) ([]Step, error) {
	rows, err := e.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine: open steps: %w", err)
	}

	want := record.Identity{ProjectNo: projectNo, PartName: partName}.Key()
	var steps []Step
	for _, row := range rows {
		status := record.Status(cellAt(row.Cells, record.ColStatus))
		if !status.Active() {
			continue
		}
		id := rowIdentity(row.Cells).Key()
		if id.ProjectNo != want.ProjectNo || id.PartName != want.PartName {
			continue
		}
		steps = append(steps, Step{
			ProcessName: cellAt(row.Cells, record.ColProcessName),
			ProcessNo:   cellAt(row.Cells, record.ColProcessNo),
			StepNo:      cellAt(row.Cells, record.ColStepNo),
			MachineNo:   cellAt(row.Cells, record.ColMachineNo),
			Status:      string(status),
		})
	}
	return steps, nil
}
