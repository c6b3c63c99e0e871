package app

import "blastkit/internal/model"

// Operation tracks a CLI command in the journal. Operations are created in
// memory with ID=0. Only commands that run a tool or write files persist
// them (giving them an auto-increment ID from the database).
type Operation struct {
	ID         int64
	Operation  string
	Parameters string
	Status     string // "success" or "error"
}

// NewOperation creates a new in-memory operation.
func NewOperation(operation, parameters string) *Operation {
	return &Operation{
		Operation:  operation,
		Parameters: parameters,
		Status:     model.StatusSuccess,
	}
}

// Persisted returns true if this operation has been saved to the database.
func (op *Operation) Persisted() bool {
	return op.ID != 0
}

// Fail marks the operation as failed. It is never reset to success.
func (op *Operation) Fail() {
	op.Status = model.StatusError
}
