package transport

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by LookPath when the executable is not available.
var ErrNotFound = errors.New("executable not found")

// Command is a single command invocation.
type Command struct {
	// Name is the executable, e.g. "virsh".
	Name string
	// Args are passed to the executable verbatim.
	Args []string
	// Stdin is written to the command's standard input when non-empty.
	Stdin string
}

// String renders the command as a shell command line.
func (c Command) String() string {
	return Join(append([]string{c.Name}, c.Args...))
}

// Result is the outcome of a command that ran.
type Result struct {
	Succeeded bool
	Stdout    string
	Stderr    string
}

// NewResult builds a Result with trailing newlines stripped from both streams.
func NewResult(succeeded bool, stdout, stderr string) Result {
	return Result{
		Succeeded: succeeded,
		Stdout:    strings.TrimRight(stdout, "\n"),
		Stderr:    strings.TrimRight(stderr, "\n"),
	}
}

// Executor runs commands on a host.
type Executor interface {
	// Execute runs cmd and blocks until it exits or ctx is done.
	Execute(ctx context.Context, cmd Command) (Result, error)
	// LookPath reports ErrNotFound when name cannot be run on the host.
	LookPath(ctx context.Context, name string) error
}

// Join quotes each word for a POSIX shell and joins them with spaces.
func Join(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = Quote(w)
	}
	return strings.Join(quoted, " ")
}

// Quote returns s quoted for a POSIX shell. Words made only of safe
// characters are returned unchanged.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, unsafeRune) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func unsafeRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	switch r {
	case '-', '_', '.', '/', ':', '=', ',', '@', '+', '%':
		return false
	}
	return true
}
