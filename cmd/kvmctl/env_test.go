package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/kvmctl/internal/config"
	"github.com/jbweber/kvmctl/internal/virsh"
	"github.com/jbweber/kvmctl/internal/xmlmap"
)

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions([]string{"all", "--pool=default", "persistent=false", "title=true"})
	require.NoError(t, err)

	assert.Equal(t, virsh.Options{
		{Name: "all", Value: true},
		{Name: "pool", Value: "default"},
		{Name: "persistent", Value: false},
		{Name: "title", Value: true},
	}, opts)
	assert.Equal(t, []string{"--all", "--pool", "default", "--title"}, opts.Render())

	_, err = parseOptions([]string{"=x"})
	assert.Error(t, err)
}

func TestLoadConfigFlags(t *testing.T) {
	reset := func() {
		configPath, sshTarget, sshKey = "", "", ""
		verbose, development = false, false
	}
	t.Cleanup(reset)

	t.Run("defaults", func(t *testing.T) {
		reset()
		cfg, err := loadConfig()
		require.NoError(t, err)
		assert.Equal(t, config.TransportLocal, cfg.Transport)
		assert.Equal(t, 30*time.Second, cfg.Stop.Timeout)
		assert.False(t, cfg.Log.Verbose)
	})

	t.Run("file and overrides", func(t *testing.T) {
		reset()
		configPath = filepath.Join(t.TempDir(), "kvmctl.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("stop:\n  timeout: 5s\nignore_options: [title]\n"), 0644))
		verbose, development = true, true

		cfg, err := loadConfig()
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, cfg.Stop.Timeout)
		assert.Equal(t, []string{"title"}, cfg.IgnoreOptions)
		assert.True(t, cfg.Log.Verbose)
		assert.True(t, cfg.Log.Development)
	})

	t.Run("ssh target with missing key", func(t *testing.T) {
		reset()
		sshTarget = "root@kvm1:2222"
		sshKey = filepath.Join(t.TempDir(), "missing")

		_, err := loadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read private_key")
	})

	t.Run("bad ssh target", func(t *testing.T) {
		reset()
		sshTarget = "kvm1"

		_, err := loadConfig()
		assert.Error(t, err)
	})
}

func TestUnsupportedHint(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "unsupported option",
			err:  fmt.Errorf("failed to list domains: %w", &virsh.CommandError{Stderr: "error: command 'list' doesn't support option --title"}),
			want: `virsh list on this host has no --title option; add "title" to ignore_options in the config file`,
		},
		{
			name: "unknown command",
			err:  &virsh.CommandError{Stderr: "error: unknown command: 'domtime'"},
			want: `virsh on this host has no "domtime" command`,
		},
		{
			name: "other command failure",
			err:  &virsh.CommandError{Stderr: "error: failed to get domain 'ghost'"},
		},
		{name: "not a command error", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, unsupportedHint(tt.err))
		})
	}
}

func TestLoadDefinition(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	t.Run("xml passes through", func(t *testing.T) {
		path := write("web.xml", "<domain><name>web</name></domain>")
		def, err := loadDefinition(path, "domain")
		require.NoError(t, err)
		assert.Nil(t, def.mapping)
		assert.Equal(t, "<domain><name>web</name></domain>", def.xml)
		assert.Equal(t, "from "+path, def.describe(path))
	})

	t.Run("yaml is decoded and unwrapped", func(t *testing.T) {
		path := write("lab.yml", "network:\n  name: lab\n  bridge:\n    '@name': virbr1\n")
		def, err := loadDefinition(path, "network")
		require.NoError(t, err)
		require.NotNil(t, def.mapping)
		assert.Equal(t, "lab", def.describe(path))

		bridge, ok := xmlmap.LookupString(def.mapping, "bridge", "@name")
		require.True(t, ok)
		assert.Equal(t, "virbr1", bridge)
	})

	t.Run("yaml that is not a mapping", func(t *testing.T) {
		path := write("bad.yaml", "- web\n")
		_, err := loadDefinition(path, "domain")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid domain definition")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadDefinition(filepath.Join(dir, "nope.xml"), "domain")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read domain definition")
	})
}
