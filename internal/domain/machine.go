package domain

import "time"

// MachineStatus represents lifecycle states for a monitored machine.
type MachineStatus string

const (
	MachineStatusActive  MachineStatus = "ACTIVE"
	MachineStatusRetired MachineStatus = "RETIRED"
)

// Machine is a monitored workstation running the agent. ServiceID groups the
// machines enrolled by one service installation; MachineID is the hardware
// identifier the agent reports and the one service tokens are bound to.
type Machine struct {
	ID           string
	ServiceID    string
	MachineID    string
	ComputerName string
	Username     string
	Status       MachineStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
