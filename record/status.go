package record

// Status is the lifecycle state of a job row.
type Status string

const (
	StatusOpen  Status = "OPEN"
	StatusPause Status = "PAUSE"
	StatusOT    Status = "OT"
	StatusClose Status = "CLOSE"
)

// Active reports whether the status indicates work in progress. CLOSE is
// terminal.
func (s Status) Active() bool {
	return s == StatusOpen || s == StatusPause || s == StatusOT
}

// Command identifies one of the engine's mutating commands.
type Command string

const (
	CommandCreate        Command = "CREATE"
	CommandPause         Command = "PAUSE"
	CommandContinue      Command = "CONTINUE"
	CommandStartOvertime Command = "START_OT"
	CommandStopOvertime  Command = "STOP_OT"
	CommandClose         Command = "CLOSE"
)

// transitions is the central state-transition table: the source states each
// command may act on. Checked before any mutation instead of being re-derived
// per handler. CommandCreate is absent because it targets no existing row.
var transitions = map[Command][]Status{
	CommandPause:         {StatusOpen, StatusOT},
	CommandContinue:      {StatusPause},
	CommandStartOvertime: {StatusOpen, StatusOT},
	CommandStopOvertime:  {StatusOT, StatusPause},
	CommandClose:         {StatusOpen, StatusOT},
}

// SourceStates returns the valid source states for cmd.
func SourceStates(cmd Command) []Status {
	return transitions[cmd]
}

// CanApply reports whether cmd may act on a row in state s.
func CanApply(cmd Command, s Status) bool {
	for _, valid := range transitions[cmd] {
		if s == valid {
			return true
		}
	}
	return false
}
