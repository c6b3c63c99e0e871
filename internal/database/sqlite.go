package database

import (
	"database/sql"
	"fmt"

	"blastkit/internal/blast"
	"blastkit/internal/database/migrations"
	"blastkit/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements blast.OperationStore using SQLite.
type SQLiteDatabase struct {
	db    *sql.DB
	path  string
	clock blast.Clock
}

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for in-memory database.
// A nil clock means blast.RealClock.
func NewSQLiteDatabase(path string, clock blast.Clock) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	s := NewSQLiteDatabaseFromDB(db, clock)
	s.path = path
	return s, nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB, clock blast.Clock) *SQLiteDatabase {
	if clock == nil {
		clock = blast.RealClock{}
	}
	return &SQLiteDatabase{db: db, clock: clock}
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// every pooled connection to ":memory:" would be a separate empty database
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Operation tracking

func (s *SQLiteDatabase) CreateOperation(operation, parameters string) (*model.Operation, error) {
	startedAt := s.clock.Now().UTC()
	res, err := s.db.Exec(
		`INSERT INTO operations (operation, parameters, status, started_at) VALUES (?, ?, ?, ?)`,
		operation, parameters, model.StatusRunning, startedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating operation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading operation id: %w", err)
	}

	return &model.Operation{
		ID:         id,
		Operation:  operation,
		Parameters: parameters,
		Status:     model.StatusRunning,
		StartedAt:  startedAt,
	}, nil
}

func (s *SQLiteDatabase) FinishOperation(id int64, status string) error {
	res, err := s.db.Exec(
		`UPDATE operations SET status = ?, finished_at = ? WHERE id = ?`,
		status, s.clock.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finishing operation: no operation with id %d", id)
	}
	return nil
}

func (s *SQLiteDatabase) ListOperations(limit int) ([]*model.Operation, error) {
	rows, err := s.db.Query(
		`SELECT id, operation, parameters, status, started_at, finished_at
		 FROM operations ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	defer rows.Close()

	var result []*model.Operation
	for rows.Next() {
		var op model.Operation
		if err := rows.Scan(&op.ID, &op.Operation, &op.Parameters, &op.Status, &op.StartedAt, &op.FinishedAt); err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}
		result = append(result, &op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return result, nil
}

// Database tracking

// AddOperationDatabase records that the operation built the database at dbPath.
func (s *SQLiteDatabase) AddOperationDatabase(id int64, dbPath string) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO operation_databases (operation_id, db_path) VALUES (?, ?)`,
		id, dbPath,
	)
	if err != nil {
		return fmt.Errorf("recording database %s: %w", dbPath, err)
	}
	return nil
}

// ListDatabases returns the databases built by successful operations, most
// recently built first. A path built more than once is listed once.
func (s *SQLiteDatabase) ListDatabases() ([]blast.DatabaseRecord, error) {
	rows, err := s.db.Query(
		`SELECT d.db_path, o.id, o.started_at
		 FROM operation_databases d
		 JOIN operations o ON o.id = d.operation_id
		 WHERE o.status = ?
		 ORDER BY o.id DESC`,
		model.StatusSuccess,
	)
	if err != nil {
		return nil, fmt.Errorf("listing databases: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var result []blast.DatabaseRecord
	for rows.Next() {
		var rec blast.DatabaseRecord
		if err := rows.Scan(&rec.Path, &rec.OperationID, &rec.BuiltAt); err != nil {
			return nil, fmt.Errorf("scanning database: %w", err)
		}
		if seen[rec.Path] {
			continue
		}
		seen[rec.Path] = true
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing databases: %w", err)
	}
	return result, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// Migrate brings the schema to the latest version.
func (s *SQLiteDatabase) Migrate() error {
	return migrations.MigrateUp(s.db)
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements blast.OperationStore
var _ blast.OperationStore = (*SQLiteDatabase)(nil)
