package models

import (
	"time"
)

// RunMode identifies which batch-utility mode produced a run record
type RunMode string

const (
	RunModeInteractive RunMode = "interactive"
	RunModeList        RunMode = "list"
	RunModeAuto        RunMode = "auto"
	RunModeReverify    RunMode = "reverify"
)

// VerificationRun is the audit record written for every batch invocation
type VerificationRun struct {
	ID            string     `json:"run_id" db:"id"`
	Mode          RunMode    `json:"mode" db:"mode"`
	RosterOK      bool       `json:"roster_ok" db:"roster_ok"`
	RosterSize    int        `json:"roster_size" db:"roster_size"`
	Total         int        `json:"total" db:"total"`
	AlreadyRoled  int        `json:"already_roled" db:"already_roled"`
	Granted       int        `json:"granted" db:"granted"`
	GrantFailed   int        `json:"grant_failed" db:"grant_failed"`
	NewlyVerified int        `json:"newly_verified" db:"newly_verified"`
	Pending       int        `json:"pending" db:"pending"`
	StartedAt     time.Time  `json:"started_at" db:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}
