// Package transporttest provides a scripted transport.Executor for tests.
package transporttest

import (
	"context"
	"fmt"
	"sync"

	"github.com/jbweber/kvmctl/internal/transport"
)

// Fake answers commands from a script keyed by the rendered command line.
// Unscripted commands fail the call with an error. Fake is safe for
// concurrent use.
type Fake struct {
	mu      sync.Mutex
	script  map[string][]transport.Result
	missing map[string]bool
	calls   []transport.Command
}

// New returns an empty Fake on which every tool is present.
func New() *Fake {
	return &Fake{
		script:  make(map[string][]transport.Result),
		missing: make(map[string]bool),
	}
}

// On scripts the results for line. Successive calls consume results in
// order and the last one repeats.
func (f *Fake) On(line string, results ...transport.Result) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script[line] = append(f.script[line], results...)
	return f
}

// Missing marks tools that LookPath reports as absent.
func (f *Fake) Missing(names ...string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range names {
		f.missing[n] = true
	}
	return f
}

// Execute implements transport.Executor.
func (f *Fake) Execute(ctx context.Context, cmd transport.Command) (transport.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, cmd)
	if err := ctx.Err(); err != nil {
		return transport.Result{}, err
	}

	line := cmd.String()
	results, ok := f.script[line]
	if !ok || len(results) == 0 {
		return transport.Result{}, fmt.Errorf("unexpected command: %s", line)
	}

	res := results[0]
	if len(results) > 1 {
		f.script[line] = results[1:]
	}
	return transport.NewResult(res.Succeeded, res.Stdout, res.Stderr), nil
}

// LookPath implements transport.Executor.
func (f *Fake) LookPath(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing[name] {
		return fmt.Errorf("%w: %s", transport.ErrNotFound, name)
	}
	return nil
}

// Calls returns the commands executed so far.
func (f *Fake) Calls() []transport.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]transport.Command, len(f.calls))
	copy(out, f.calls)
	return out
}

// Lines returns the rendered command lines executed so far.
func (f *Fake) Lines() []string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}

// Count returns how many times line was executed.
func (f *Fake) Count(line string) int {
	n := 0
	for _, l := range f.Lines() {
		if l == line {
			n++
		}
	}
	return n
}

// OK is a successful result with the given stdout.
func OK(stdout string) transport.Result {
	return transport.Result{Succeeded: true, Stdout: stdout}
}

// Fail is a failed result with the given stderr.
func Fail(stderr string) transport.Result {
	return transport.Result{Stderr: stderr}
}
