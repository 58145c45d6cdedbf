// Package lifecycle stops domains with a bounded wait.
//
// Stop asks the guest to shut down, polls its state until it reports
// "shut off" or a deadline passes and, when forced, destroys it. Each stop
// walks a small state machine:
//
//	Requested ──► NotFound
//	    │
//	    ▼
//	 Polling ──► Stopped | ForceStopped | Timeout
package lifecycle

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/utils/clock"

	"github.com/jbweber/kvmctl/internal/transport"
)

// Defaults for Options.
const (
	DefaultTimeout  = 30 * time.Second
	DefaultInterval = time.Second
)

// StateShutOff is the domain state Stop waits for.
const StateShutOff = "shut off"

// Messages reported by Stop.
const (
	MessageNotFound = "Domain not found"
)

// Controller is the domain control surface Stop drives.
type Controller interface {
	// Exists reports whether the domain is defined, running or not.
	Exists(ctx context.Context, name string) (bool, error)
	// Shutdown requests a graceful shutdown.
	Shutdown(ctx context.Context, name string) (transport.Result, error)
	// State returns the domain state, e.g. "running" or "shut off".
	State(ctx context.Context, name string) (string, error)
	// Destroy stops the domain immediately.
	Destroy(ctx context.Context, name string) (transport.Result, error)
}

// Options tune a Stop.
type Options struct {
	// Timeout is how long to wait for the guest. Zero means DefaultTimeout.
	Timeout time.Duration
	// Interval is the time between state polls. Zero means DefaultInterval.
	Interval time.Duration
	// Force destroys the domain when the timeout passes.
	Force bool
	// Clock defaults to the real clock.
	Clock clock.Clock
	Log   logr.Logger
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Clock == nil {
		o.Clock = clock.RealClock{}
	}
	return o
}

// Outcome is the terminal result of a Stop. A domain that did not stop is
// an Outcome with Succeeded false, not an error.
type Outcome struct {
	State     State
	Succeeded bool
	Stdout    string
	// Message explains the outcome: why it failed, or how it succeeded
	// when force was needed.
	Message string
	// Polls is the number of state queries made.
	Polls int
}

// Stop shuts down the named domain and waits for it to reach "shut off".
//
// Errors are returned only when the controller itself fails (the transport
// broke or a state query failed) or ctx is done. A failed shutdown request
// is logged and the domain is still polled, since the guest may already be
// going down.
func Stop(ctx context.Context, c Controller, name string, opts Options) (Outcome, error) {
	opts = opts.withDefaults()
	log := opts.Log.WithValues("domain", name)
	s := &session{domain: name, interval: opts.Interval, state: StateRequested}

	exists, err := c.Exists(ctx, name)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to look up domain %s: %w", name, err)
	}
	if !exists {
		if err := s.transition(StateNotFound); err != nil {
			return Outcome{}, err
		}
		return s.outcome(false, "", MessageNotFound), nil
	}

	res, err := c.Shutdown(ctx, name)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to shut down domain %s: %w", name, err)
	}
	if !res.Succeeded {
		log.Info("Warning: shutdown request failed, waiting anyway", "stderr", res.Stderr)
	}

	s.deadline = opts.Clock.Now().Add(opts.Timeout)
	if err := s.transition(StatePolling); err != nil {
		return Outcome{}, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return s.outcome(false, "", err.Error()), fmt.Errorf("stopping domain %s: %w", name, err)
		}

		state, err := c.State(ctx, name)
		if err != nil {
			return s.outcome(false, "", err.Error()), fmt.Errorf("failed to get state of domain %s: %w", name, err)
		}
		s.polls++
		log.V(1).Info("polled domain state", "state", state, "poll", s.polls)

		if state == StateShutOff {
			if err := s.transition(StateStopped); err != nil {
				return Outcome{}, err
			}
			return s.outcome(true, "", ""), nil
		}

		if !opts.Clock.Now().Before(s.deadline) {
			break
		}
		opts.Clock.Sleep(s.interval)
	}

	if !opts.Force {
		if err := s.transition(StateTimeout); err != nil {
			return Outcome{}, err
		}
		return s.outcome(false, "", "VM not stopped after "+seconds(opts.Timeout)), nil
	}

	log.Info("graceful shutdown timed out, destroying", "timeout", opts.Timeout.String())
	res, err = c.Destroy(ctx, name)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to destroy domain %s: %w", name, err)
	}
	if err := s.transition(StateForceStopped); err != nil {
		return Outcome{}, err
	}
	if !res.Succeeded {
		return s.outcome(false, res.Stdout, res.Stderr), nil
	}
	return s.outcome(true, res.Stdout, "VM has been destroyed after "+seconds(opts.Timeout)), nil
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + "s"
}
