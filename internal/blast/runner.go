package blast

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"path/filepath"
	"time"
)

// BLAST+ executables driven by this package.
const (
	ToolBlastn      = "blastn"
	ToolMakeBlastDB = "makeblastdb"
	ToolBlastDBCmd  = "blastdbcmd"
)

// Runner executes a BLAST+ tool and blocks until it exits.
// stdout may be nil when the output is not consumed.
// A non-zero exit must be reported as a *ToolError.
type Runner interface {
	Run(ctx context.Context, tool string, args []string, stdout io.Writer) error
}

// ExecRunner runs the real executables with os/exec.
type ExecRunner struct {
	// BinDir holds the executables. Empty means resolve through PATH.
	BinDir string

	// Timeout bounds a single invocation. Zero means no limit.
	Timeout time.Duration
}

// NewExecRunner creates a runner for executables in binDir.
func NewExecRunner(binDir string, timeout time.Duration) *ExecRunner {
	return &ExecRunner{BinDir: binDir, Timeout: timeout}
}

// Run starts tool with args and waits for it to finish.
func (r *ExecRunner) Run(ctx context.Context, tool string, args []string, stdout io.Writer) error {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	path := tool
	if r.BinDir != "" {
		path = filepath.Join(r.BinDir, tool)
	}

	// https://www.ncbi.nlm.nih.gov/books/NBK279682/
	cmd := exec.CommandContext(ctx, path, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if stdout != nil {
		cmd.Stdout = stdout
	}

	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return &ToolError{
			Tool:     tool,
			Args:     args,
			ExitCode: code,
			Stderr:   stderr.String(),
			Err:      err,
		}
	}
	return nil
}

var _ Runner = (*ExecRunner)(nil)
