package testutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"blastkit/internal/blast"
)

// RunnerCall is one recorded tool invocation.
type RunnerCall struct {
	Tool string
	Args []string
}

// Arg returns the value following flag, or "" if flag is absent.
func (c RunnerCall) Arg(flag string) string {
	i := slices.Index(c.Args, flag)
	if i < 0 || i+1 >= len(c.Args) {
		return ""
	}
	return c.Args[i+1]
}

// Has reports whether flag appears in the arguments.
func (c RunnerCall) Has(flag string) bool {
	return slices.Contains(c.Args, flag)
}

type runnerResponse struct {
	output string
	err    error
}

// FakeRunner replays scripted output instead of running BLAST+ tools.
// Output goes to the file named by -out when present, as blastn and
// blastdbcmd do, and to stdout otherwise. Safe for concurrent use.
type FakeRunner struct {
	mu        sync.Mutex
	responses map[string][]runnerResponse
	calls     []RunnerCall
}

// NewFakeRunner creates a runner with no scripted responses. Unscripted
// tools succeed with no output.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{responses: make(map[string][]runnerResponse)}
}

// Respond queues output for the next call of tool. The last queued response
// for a tool is reused once the queue drains.
func (r *FakeRunner) Respond(tool, output string) *FakeRunner {
	return r.queue(tool, runnerResponse{output: output})
}

// Fail queues a failure for the next call of tool.
func (r *FakeRunner) Fail(tool string, exitCode int, stderr string) *FakeRunner {
	return r.queue(tool, runnerResponse{err: &blast.ToolError{
		Tool:     tool,
		ExitCode: exitCode,
		Stderr:   stderr,
		Err:      fmt.Errorf("exit status %d", exitCode),
	}})
}

func (r *FakeRunner) queue(tool string, resp runnerResponse) *FakeRunner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[tool] = append(r.responses[tool], resp)
	return r
}

func (r *FakeRunner) Run(ctx context.Context, tool string, args []string, stdout io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	call := RunnerCall{Tool: tool, Args: append([]string(nil), args...)}
	r.calls = append(r.calls, call)

	var resp runnerResponse
	if q := r.responses[tool]; len(q) > 0 {
		resp = q[0]
		if len(q) > 1 {
			r.responses[tool] = q[1:]
		}
	}
	r.mu.Unlock()

	if resp.err != nil {
		if te, ok := resp.err.(*blast.ToolError); ok {
			copied := *te
			copied.Args = call.Args
			return &copied
		}
		return resp.err
	}

	// makeblastdb -out names the database, not a report file
	if out := call.Arg("-out"); out != "" && tool != blast.ToolMakeBlastDB {
		return os.WriteFile(out, []byte(resp.output), 0644)
	}
	if stdout != nil {
		_, err := io.WriteString(stdout, resp.output)
		return err
	}
	return nil
}

// Calls returns every recorded invocation in order.
func (r *FakeRunner) Calls() []RunnerCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RunnerCall(nil), r.calls...)
}

// CallsTo returns the recorded invocations of tool.
func (r *FakeRunner) CallsTo(tool string) []RunnerCall {
	var out []RunnerCall
	for _, c := range r.Calls() {
		if c.Tool == tool {
			out = append(out, c)
		}
	}
	return out
}

// Compile-time check
var _ blast.Runner = (*FakeRunner)(nil)
