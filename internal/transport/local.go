package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Local runs commands on the local machine.
type Local struct{}

// NewLocal returns an executor for the local machine.
func NewLocal() *Local {
	return &Local{}
}

// Execute implements Executor.
func (l *Local) Execute(ctx context.Context, cmd Command) (Result, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if cmd.Stdin != "" {
		c.Stdin = strings.NewReader(cmd.Stdin)
	}

	err := c.Run()
	if err == nil {
		return NewResult(true, stdout.String(), stderr.String()), nil
	}

	if ctx.Err() != nil {
		return Result{}, fmt.Errorf("failed to run %s: %w", cmd.Name, ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return NewResult(false, stdout.String(), stderr.String()), nil
	}

	return Result{}, fmt.Errorf("failed to run %s: %w", cmd.Name, err)
}

// LookPath implements Executor.
func (l *Local) LookPath(_ context.Context, name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}
