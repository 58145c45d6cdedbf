package virsh

import (
	"fmt"
	"slices"
	"strings"
)

// Option is a single command line option. A true Value renders a bare flag,
// false or nil leaves the option out, anything else renders the flag
// followed by the value.
type Option struct {
	Name  string
	Value any
}

// Options keeps options in the order they were given.
type Options []Option

// Opt is shorthand for building Options inline.
func Opt(name string, value any) Option {
	return Option{Name: name, Value: value}
}

// Flags returns Options with every name set to true.
func Flags(names ...string) Options {
	out := make(Options, len(names))
	for i, n := range names {
		out[i] = Option{Name: n, Value: true}
	}
	return out
}

// Set returns a copy of o with name set to value, keeping its position when
// already present.
func (o Options) Set(name string, value any) Options {
	out := slices.Clone(o)
	for i := range out {
		if sameOption(out[i].Name, name) {
			out[i].Value = value
			return out
		}
	}
	return append(out, Option{Name: name, Value: value})
}

// Get returns the value for name.
func (o Options) Get(name string) (any, bool) {
	for _, opt := range o {
		if sameOption(opt.Name, name) {
			return opt.Value, true
		}
	}
	return nil, false
}

// Without returns a copy of o without the named options.
func (o Options) Without(names ...string) Options {
	out := make(Options, 0, len(o))
	for _, opt := range o {
		if !slices.ContainsFunc(names, func(n string) bool { return sameOption(opt.Name, n) }) {
			out = append(out, opt)
		}
	}
	return out
}

// Active returns the options that render to something.
func (o Options) Active() Options {
	out := make(Options, 0, len(o))
	for _, opt := range o {
		if opt.Value == nil || opt.Value == false {
			continue
		}
		out = append(out, opt)
	}
	return out
}

// Render returns the command line words for o.
func (o Options) Render() []string {
	var out []string
	for _, opt := range o.Active() {
		flag := FlagName(opt.Name)
		if b, ok := opt.Value.(bool); ok && b {
			out = append(out, flag)
			continue
		}
		out = append(out, flag, fmt.Sprint(opt.Value))
	}
	return out
}

// FlagName renders an option name: underscores become dashes, a single
// letter gets one dash and anything longer gets two.
func FlagName(name string) string {
	name = canonical(name)
	if len(name) == 1 {
		return "-" + name
	}
	return "--" + name
}

func canonical(name string) string {
	return strings.ReplaceAll(strings.TrimLeft(name, "-"), "_", "-")
}

func sameOption(a, b string) bool {
	return canonical(a) == canonical(b)
}

// Controls is per-call configuration for a Runner. It is a value: the With
// methods return a modified copy and never touch the receiver.
type Controls struct {
	ignored []string
}

// WithIgnored returns a copy of c that also leaves the named options off
// every command line.
func (c Controls) WithIgnored(names ...string) Controls {
	return Controls{ignored: append(slices.Clone(c.ignored), names...)}
}

// Ignored returns the options c leaves off command lines.
func (c Controls) Ignored() []string {
	return slices.Clone(c.ignored)
}
