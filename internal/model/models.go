package model

import (
	"database/sql"
	"time"
)

// Operation statuses.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusError   = "error"
)

// Operation is one recorded blastkit command.
type Operation struct {
	ID         int64        // auto-increment
	Operation  string       // command name, e.g. "MakeDatabase"
	Parameters string       // command arguments as typed
	Status     string       // running, success or error
	StartedAt  time.Time
	FinishedAt sql.NullTime // unset while running
}
