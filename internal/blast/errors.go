package blast

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidDatabasePath is returned when blastdbcmd cannot open the
	// database or reports an error for it.
	ErrInvalidDatabasePath = errors.New("invalid BLAST database path")

	// ErrMalformedOutput is returned when tool output does not have the
	// expected shape (missing lines, delimiters, or columns).
	ErrMalformedOutput = errors.New("malformed output")

	// ErrInvalidFastaPath is returned for FASTA paths makeblastdb cannot take.
	ErrInvalidFastaPath = errors.New("invalid FASTA path")

	// ErrNoEntries is returned when a sequence fetch is given no identifiers.
	ErrNoEntries = errors.New("no sequence identifiers given")

	// ErrAlreadyCreated is returned when Create is called twice on one LocalDB.
	ErrAlreadyCreated = errors.New("local database already created")

	// ErrNotCreated is returned when a LocalDB is used before it has a path.
	ErrNotCreated = errors.New("local database has not been created")
)

// ToolError describes a BLAST+ executable that exited unsuccessfully.
type ToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Tool, e.ExitCode)
	if e.ExitCode < 0 {
		msg = fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

// ParseError locates a positional parse failure in tool output.
// It always matches ErrMalformedOutput.
type ParseError struct {
	Line   int // 0-based line index, -1 when not line specific
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line < 0 {
		return fmt.Sprintf("%v: %s", ErrMalformedOutput, e.Reason)
	}
	return fmt.Sprintf("%v: line %d: %s: %q", ErrMalformedOutput, e.Line, e.Reason, e.Text)
}

func (e *ParseError) Is(target error) bool { return target == ErrMalformedOutput }
