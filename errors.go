package cnclog

import "errors"

var (
	// Validation errors. No mutation was performed; the caller must correct
	// the input or the job state before retrying.
	ErrDuplicateOpenJob      = errors.New("cnclog: an active job already exists for this step")
	ErrInvalidTransition     = errors.New("cnclog: invalid state transition")
	ErrOutsideOvertimeWindow = errors.New("cnclog: outside the overtime window")
	ErrOvertimeAlreadyOpen   = errors.New("cnclog: an overtime session is already open")
	ErrJobPaused             = errors.New("cnclog: job is paused, continue before closing")

	// Not-found errors.
	ErrJobNotFound    = errors.New("cnclog: no matching job row")
	ErrNoOpenPause    = errors.New("cnclog: no open pause session")
	ErrNoOpenOvertime = errors.New("cnclog: no open overtime session")

	// Data errors. A row's serialized session log failed to parse. This is
	// surfaced, never silently reset to an empty list.
	ErrCorruptSessionLog = errors.New("cnclog: corrupt session log")

	// Persistence errors. The atomic range write itself failed; the caller
	// must treat the row state as ambiguous and re-verify before retrying.
	ErrWriteFailed = errors.New("cnclog: row write failed")
)
