package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-logr/logr"

	"github.com/jbweber/kvmctl/internal/config"
	"github.com/jbweber/kvmctl/internal/kvm"
	"github.com/jbweber/kvmctl/internal/logging"
	"github.com/jbweber/kvmctl/internal/output"
	"github.com/jbweber/kvmctl/internal/transport"
	"github.com/jbweber/kvmctl/internal/virsh"
	"github.com/jbweber/kvmctl/internal/xmlmap"
)

// env is what a command needs to talk to the hypervisor.
type env struct {
	cfg       *config.Config
	log       logr.Logger
	hv        *kvm.Hypervisor
	formatter output.Formatter
}

// loadConfig reads --config (or the defaults) and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if sshTarget != "" {
		target, err := config.ParseSSHTarget(sshTarget)
		if err != nil {
			return nil, err
		}
		target.PrivateKey = cfg.SSH.PrivateKey
		cfg.Transport = config.TransportSSH
		cfg.SSH = target
	}
	if sshKey != "" {
		cfg.SSH.PrivateKey = sshKey
	}
	if cfg.Transport == config.TransportSSH && cfg.SSH.PrivateKey == "" {
		cfg.SSH.PrivateKey = defaultKey()
	}

	if verbose {
		cfg.Log.Verbose = true
	}
	if development {
		cfg.Log.Development = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// defaultKey returns the first of ~/.ssh/id_ed25519 and ~/.ssh/id_rsa that
// exists, or "" when neither does.
func defaultKey() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	for _, name := range []string{"id_ed25519", "id_rsa"} {
		path := filepath.Join(home, ".ssh", name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func newLogger(cfg *config.Config) logr.Logger {
	opts := logging.DefaultOptions()
	opts.Development = cfg.Log.Development
	if cfg.Log.Verbose {
		opts.Level = logging.LevelVerbose
	}
	return logging.Setup(opts)
}

func newExecutor(cfg *config.Config, log logr.Logger) (transport.Executor, error) {
	if cfg.Transport != config.TransportSSH {
		return transport.NewLocal(), nil
	}
	if cfg.SSH.PrivateKey == "" {
		return nil, fmt.Errorf("no private key for %s: use --key or ssh.private_key", cfg.SSH.Address())
	}

	exec, err := transport.NewSSH(cfg.SSH.Host, cfg.SSH.User, strconv.Itoa(cfg.SSH.Port), cfg.SSH.PrivateKey)
	if err != nil {
		return nil, err
	}
	exec.Log = log.WithName("ssh")
	return exec, nil
}

// setup builds the hypervisor for a command. It fails when virsh is missing
// on the target host.
func setup(ctx context.Context) (*env, error) {
	if err := output.ValidateFormat(outputFormat); err != nil {
		return nil, err
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := newLogger(cfg)

	exec, err := newExecutor(cfg, log)
	if err != nil {
		return nil, err
	}

	hv, err := kvm.New(ctx, exec,
		kvm.WithLogger(log.WithName("virsh")),
		kvm.WithControls(virsh.Controls{}.WithIgnored(cfg.IgnoreOptions...)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize hypervisor: %w", err)
	}

	formatter, err := output.NewFormatter(output.Options{
		Format:    output.Format(outputFormat),
		NoHeaders: noHeaders,
	})
	if err != nil {
		return nil, err
	}

	return &env{cfg: cfg, log: log, hv: hv, formatter: formatter}, nil
}

// print formats v and writes it to stdout.
func (e *env) print(v any) error {
	result, err := e.formatter.FormatValue(v)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Print(result)
	return nil
}

// printResult reports the result of command. A failed command becomes an
// error carrying the tool's stderr.
func printResult(res transport.Result, err error, command, done string) error {
	if err != nil {
		return err
	}
	if !res.Succeeded {
		return &virsh.CommandError{Command: command, Stderr: res.Stderr}
	}
	if res.Stdout != "" && verbose {
		fmt.Println(res.Stdout)
	}
	fmt.Printf("✓ %s\n", done)
	return nil
}

// unsupportedHint explains a command error caused by an older virsh, or
// returns "" for any other error.
func unsupportedHint(err error) string {
	var cmdErr *virsh.CommandError
	if !errors.As(err, &cmdErr) || !cmdErr.Unsupported() {
		return ""
	}
	if command, option, ok := cmdErr.UnsupportedOption(); ok {
		return fmt.Sprintf("virsh %s on this host has no --%s option; add %q to ignore_options in the config file", command, option, option)
	}
	command, _ := cmdErr.UnknownCommand()
	return fmt.Sprintf("virsh on this host has no %q command", command)
}

// definition is a domain or network definition read from disk. Exactly one
// of xml and mapping is set.
type definition struct {
	xml     string
	mapping xmlmap.Mapping
}

// loadDefinition reads an XML document, or a YAML mapping when path ends in
// .yaml or .yml.
func loadDefinition(path, root string) (*definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s definition: %w", root, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		m, err := xmlmap.DecodeYAML(data)
		if err != nil {
			return nil, fmt.Errorf("invalid %s definition %s: %w", root, path, err)
		}
		return &definition{mapping: xmlmap.Unwrap(m, root)}, nil
	default:
		return &definition{xml: string(data)}, nil
	}
}

// describe names the definition for messages: the mapping's name element,
// or "from path".
func (d *definition) describe(path string) string {
	if d.mapping != nil {
		if name, ok := xmlmap.LookupString(d.mapping, "name"); ok && name != "" {
			return name
		}
	}
	return "from " + path
}

// parseOptions turns repeated --opt values into Options. "name=value" sets a
// value, a bare "name" is a flag and "name=false" suppresses it.
func parseOptions(raw []string) (virsh.Options, error) {
	var opts virsh.Options
	for _, item := range raw {
		name, value, hasValue := strings.Cut(item, "=")
		name = strings.TrimLeft(strings.TrimSpace(name), "-")
		if name == "" {
			return nil, fmt.Errorf("invalid option %q: expected name[=value]", item)
		}
		switch {
		case !hasValue:
			opts = opts.Set(name, true)
		case value == "true" || value == "false":
			opts = opts.Set(name, value == "true")
		default:
			opts = opts.Set(name, value)
		}
	}
	return opts, nil
}
