package blast

import (
	"fmt"
	"time"

	"blastkit/internal/model"
)

// OperationStore records the commands that have been run.
type OperationStore interface {
	// CreateOperation starts a record and returns it with its assigned ID.
	CreateOperation(operation, parameters string) (*model.Operation, error)

	// FinishOperation stamps the finish time and final status of a record.
	FinishOperation(id int64, status string) error

	// ListOperations returns up to limit records, newest first.
	ListOperations(limit int) ([]*model.Operation, error)

	// AddOperationDatabase records that operation id built the database at dbPath.
	AddOperationDatabase(id int64, dbPath string) error

	// ListDatabases returns the databases built by successful operations.
	ListDatabases() ([]DatabaseRecord, error)

	// Close releases the underlying storage.
	Close() error
}

// GetHistory returns the most recent operations, ordered newest first.
func (s *Service) GetHistory(limit int) ([]*model.Operation, error) {
	if s.store == nil {
		return nil, fmt.Errorf("no operation store configured")
	}
	ops, err := s.store.ListOperations(limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}

// DatabaseRecord is a local database recorded in the operation journal.
type DatabaseRecord struct {
	Path        string
	OperationID int64
	BuiltAt     time.Time
}

// ListDatabases returns the local databases recorded in the journal.
func (s *Service) ListDatabases() ([]DatabaseRecord, error) {
	if s.store == nil {
		return nil, fmt.Errorf("no operation store configured")
	}
	recs, err := s.store.ListDatabases()
	if err != nil {
		return nil, fmt.Errorf("listing databases: %w", err)
	}
	return recs, nil
}
