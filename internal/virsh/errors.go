package virsh

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/jbweber/kvmctl/internal/transport"
)

var (
	unknownCommandRE    = regexp.MustCompile(`error: unknown command: '(.*)'`)
	unsupportedOptionRE = regexp.MustCompile(`error: command '(.*)' doesn't support option '?-*([^']*)'?`)
)

// CommandError is returned when a command ran and failed. Error returns the
// tool's stderr unchanged.
type CommandError struct {
	Command string
	Stderr  string
}

func (e *CommandError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s failed", e.Command)
	}
	return e.Stderr
}

// UnknownCommand reports the sub-command virsh did not recognise.
func (e *CommandError) UnknownCommand() (string, bool) {
	m := unknownCommandRE.FindStringSubmatch(e.Stderr)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// UnsupportedOption reports the command and option virsh rejected.
func (e *CommandError) UnsupportedOption() (command, option string, ok bool) {
	m := unsupportedOptionRE.FindStringSubmatch(e.Stderr)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// Unsupported reports whether the installed virsh lacks the command or
// one of its options.
func (e *CommandError) Unsupported() bool {
	if _, ok := e.UnknownCommand(); ok {
		return true
	}
	_, _, ok := e.UnsupportedOption()
	return ok
}

// SetupError is returned when a required tool is missing on the host.
type SetupError struct {
	Tool string
	Err  error
}

func (e *SetupError) Error() string {
	if e.Tool == ToolVirsh {
		return "unable to find 'virsh' command, is this a KVM host?"
	}
	return fmt.Sprintf("unable to find '%s' command", e.Tool)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// Require checks that tool can be run through exec. A missing tool is a
// *SetupError; transport failures are returned as they are.
func Require(ctx context.Context, exec transport.Executor, tool string) error {
	err := exec.LookPath(ctx, tool)
	if err == nil {
		return nil
	}
	if errors.Is(err, transport.ErrNotFound) {
		return &SetupError{Tool: tool, Err: err}
	}
	return fmt.Errorf("failed to look up %s: %w", tool, err)
}
