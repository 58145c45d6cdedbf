package virsh

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/go-logr/logr"

	"github.com/jbweber/kvmctl/internal/textparse"
	"github.com/jbweber/kvmctl/internal/transport"
	"github.com/jbweber/kvmctl/internal/xmlmap"
)

// tuneScopes are the options a tune operation accepts while still only
// reading the current values.
var tuneScopes = []string{"config", "live", "current"}

// Runner builds and runs descriptor commands. A Runner is immutable; With
// returns a Runner sharing the executor with different Controls.
type Runner struct {
	exec     transport.Executor
	controls Controls
	log      logr.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger commands are logged to at V(1).
func WithLogger(log logr.Logger) RunnerOption {
	return func(r *Runner) {
		r.log = log
	}
}

// WithControls sets the initial Controls.
func WithControls(c Controls) RunnerOption {
	return func(r *Runner) {
		r.controls = c
	}
}

// NewRunner returns a Runner executing through exec.
func NewRunner(exec transport.Executor, opts ...RunnerOption) *Runner {
	r := &Runner{exec: exec, log: logr.Discard()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Controls returns the Runner's Controls.
func (r *Runner) Controls() Controls {
	return r.controls
}

// With returns a Runner using c for every call made through it.
func (r *Runner) With(c Controls) *Runner {
	return &Runner{exec: r.exec, controls: c, log: r.log}
}

// Build renders the command for d. Options follow the positional arguments
// unless d.OptionsFirst is set.
func (r *Runner) Build(d Descriptor, args []string, opts Options) transport.Command {
	for _, o := range d.Overrides {
		opts = opts.Set(o.Name, o.Value)
	}
	for _, name := range slices.Concat(d.Disabled, r.controls.ignored) {
		if _, ok := opts.Get(name); ok {
			opts = opts.Set(name, false)
		}
	}

	words := slices.Clone(d.Command)
	if d.OptionsFirst {
		words = append(words, opts.Render()...)
		words = append(words, args...)
	} else {
		words = append(words, args...)
		words = append(words, opts.Render()...)
	}
	return transport.Command{Name: d.Executable(), Args: words}
}

// Execute runs an already built command.
func (r *Runner) Execute(ctx context.Context, cmd transport.Command) (transport.Result, error) {
	r.log.V(1).Info("running command", "command", cmd.String())
	res, err := r.exec.Execute(ctx, cmd)
	if err != nil {
		return transport.Result{}, err
	}
	if !res.Succeeded {
		r.log.V(1).Info("command failed", "command", cmd.String(), "stderr", res.Stderr)
	}
	return res, nil
}

// Exec runs d and returns the unparsed result.
func (r *Runner) Exec(ctx context.Context, d Descriptor, args []string, opts Options) (transport.Result, error) {
	return r.Execute(ctx, r.Build(d, args, opts))
}

// Lines runs d and returns its stdout lines, or a *CommandError when it
// failed.
func (r *Runner) Lines(ctx context.Context, d Descriptor, args []string, opts Options) ([]string, error) {
	return r.lines(ctx, r.Build(d, args, opts))
}

func (r *Runner) lines(ctx context.Context, cmd transport.Command) ([]string, error) {
	res, err := r.Execute(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if !res.Succeeded {
		return nil, &CommandError{Command: cmd.String(), Stderr: res.Stderr}
	}
	return textparse.SplitOutput(res.Stdout), nil
}

// Run runs d and parses its output according to d.Shape.
//
// The result is a transport.Result for raw and none, a string (or int with
// Convert) for scalar, a map[string]string (map[string]any with Convert) for
// key-value, a []map[string]string for table, a map[string]string for stats
// and the decoded value under RootKey for xml.
func (r *Runner) Run(ctx context.Context, d Descriptor, args []string, opts Options) (any, error) {
	switch d.Shape {
	case ShapeRaw, ShapeNone:
		return r.Exec(ctx, d, args, opts)
	case ShapeScalar:
		s, err := r.RunScalar(ctx, d, args, opts)
		if err != nil || !d.Convert {
			return s, err
		}
		return toInt(s), nil
	case ShapeKeyValue:
		return r.keyValue(ctx, d, args, opts)
	case ShapeTable:
		return r.RunTable(ctx, d, args, opts)
	case ShapeStats:
		return r.RunStats(ctx, d, args, opts)
	case ShapeXML:
		return r.RunXML(ctx, d, args, opts)
	case ShapeTune:
		if !TuneReads(opts) {
			return r.Exec(ctx, d, args, opts)
		}
		return r.keyValue(ctx, d, args, opts)
	default:
		return nil, fmt.Errorf("operation %s has unknown shape %s", d.Name, d.Shape)
	}
}

func (r *Runner) keyValue(ctx context.Context, d Descriptor, args []string, opts Options) (any, error) {
	m, err := r.RunKeyValue(ctx, d, args, opts)
	if err != nil || !d.Convert {
		return m, err
	}
	return textparse.ConvertMap(m), nil
}

// TuneReads reports whether opts only read tunables: no options at all, or
// a single config, live or current scope.
func TuneReads(opts Options) bool {
	active := opts.Active()
	switch len(active) {
	case 0:
		return true
	case 1:
		return slices.ContainsFunc(tuneScopes, func(s string) bool { return sameOption(active[0].Name, s) })
	default:
		return false
	}
}

// RunScalar runs d and returns its first non-empty output line.
func (r *Runner) RunScalar(ctx context.Context, d Descriptor, args []string, opts Options) (string, error) {
	lines, err := r.Lines(ctx, d, args, opts)
	if err != nil {
		return "", err
	}
	for _, l := range lines {
		if s := strings.TrimSpace(l); s != "" {
			return s, nil
		}
	}
	return "", nil
}

// RunInt runs d and returns its first output line as an int, or -1 when it
// is not a number.
func (r *Runner) RunInt(ctx context.Context, d Descriptor, args []string, opts Options) (int, error) {
	s, err := r.RunScalar(ctx, d, args, opts)
	if err != nil {
		return 0, err
	}
	return toInt(s), nil
}

// RunKeyValue runs d and parses "Key: value" output.
func (r *Runner) RunKeyValue(ctx context.Context, d Descriptor, args []string, opts Options) (map[string]string, error) {
	lines, err := r.Lines(ctx, d, args, opts)
	if err != nil {
		return nil, err
	}
	return textparse.ParseKeyValueLines(lines)
}

// RunTable runs d and parses a whitespace table.
func (r *Runner) RunTable(ctx context.Context, d Descriptor, args []string, opts Options) ([]map[string]string, error) {
	lines, err := r.Lines(ctx, d, args, opts)
	if err != nil {
		return nil, err
	}
	lines = trim(lines, d.DropHead, d.DropTail)
	if len(lines) == 0 {
		return nil, nil
	}
	return textparse.ParseWhitespaceTable(lines)
}

// RunStats runs d and parses statistics lines.
func (r *Runner) RunStats(ctx context.Context, d Descriptor, args []string, opts Options) (map[string]string, error) {
	lines, err := r.Lines(ctx, d, args, opts)
	if err != nil {
		return nil, err
	}
	return textparse.ParseStatLines(lines, d.SkipLeading)
}

// RunXML runs d, decodes its XML output and returns the value under
// d.RootKey.
func (r *Runner) RunXML(ctx context.Context, d Descriptor, args []string, opts Options) (any, error) {
	lines, err := r.Lines(ctx, d, args, opts)
	if err != nil {
		return nil, err
	}
	doc, err := xmlmap.DecodeString(strings.Join(lines, "\n"), d.ForceList...)
	if err != nil {
		return nil, &textparse.FormatError{Reason: err.Error()}
	}
	root := d.RootKey
	if root == "" {
		root = doc.Oldest().Key
	}
	v, ok := doc.Get(root)
	if !ok {
		return nil, &textparse.FormatError{Reason: fmt.Sprintf("missing <%s> root element", root)}
	}
	return v, nil
}

func trim(lines []string, head, tail int) []string {
	if head+tail >= len(lines) {
		return nil
	}
	return lines[head : len(lines)-tail]
}

func toInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return -1
	}
	return n
}
