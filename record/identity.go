package record

import "github.com/tpt-cnclog/mfg-dashboard/normalize"

// Identity is the tuple that uniquely identifies a job step for matching and
// duplicate-guard purposes. Fields hold raw user input; comparisons go
// through Key.
type Identity struct {
	ProjectNo   string `json:"projectNo"`
	PartName    string `json:"partName"`
	ProcessName string `json:"processName"`
	ProcessNo   string `json:"processNo"`
	StepNo      string `json:"stepNo"`
	MachineNo   string `json:"machineNo"`
}

// Key returns the normalized form used for equality.
func (i Identity) Key() Identity {
	return Identity{
		ProjectNo:   normalize.ProjectNo(i.ProjectNo),
		PartName:    normalize.String(i.PartName),
		ProcessName: normalize.String(i.ProcessName),
		ProcessNo:   normalize.String(i.ProcessNo),
		StepNo:      normalize.String(i.StepNo),
		MachineNo:   normalize.String(i.MachineNo),
	}
}

// Matches reports whether two identities are equal after normalization.
func (i Identity) Matches(other Identity) bool {
	return i.Key() == other.Key()
}
