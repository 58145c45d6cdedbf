package transport

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"virsh", "virsh"},
		{"--all", "--all"},
		{"/dev/nbd0", "/dev/nbd0"},
		{"", "''"},
		{"my vm", "'my vm'"},
		{"it's", `'it'\''s'`},
		{"$HOME", "'$HOME'"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Quote(tt.in))
		})
	}
}

func TestCommandString(t *testing.T) {
	cmd := Command{Name: "virsh", Args: []string{"domstate", "web 01", "--reason"}}
	assert.Equal(t, "virsh domstate 'web 01' --reason", cmd.String())
}

func TestNewResultStripsTrailingNewlines(t *testing.T) {
	res := NewResult(true, "a\nb\n\n", "oops\n")
	assert.Equal(t, "a\nb", res.Stdout)
	assert.Equal(t, "oops", res.Stderr)
	assert.True(t, res.Succeeded)
}

func TestLocalExecute(t *testing.T) {
	ctx := context.Background()
	l := NewLocal()

	t.Run("success", func(t *testing.T) {
		res, err := l.Execute(ctx, Command{Name: "sh", Args: []string{"-c", "echo hello; echo warn >&2"}})
		require.NoError(t, err)
		assert.True(t, res.Succeeded)
		assert.Equal(t, "hello", res.Stdout)
		assert.Equal(t, "warn", res.Stderr)
	})

	t.Run("non-zero exit is a result", func(t *testing.T) {
		res, err := l.Execute(ctx, Command{Name: "sh", Args: []string{"-c", "echo bad >&2; exit 3"}})
		require.NoError(t, err)
		assert.False(t, res.Succeeded)
		assert.Equal(t, "bad", res.Stderr)
	})

	t.Run("stdin", func(t *testing.T) {
		res, err := l.Execute(ctx, Command{Name: "cat", Stdin: "<domain/>\n"})
		require.NoError(t, err)
		assert.Equal(t, "<domain/>", res.Stdout)
	})

	t.Run("missing binary is an error", func(t *testing.T) {
		_, err := l.Execute(ctx, Command{Name: "kvmctl-no-such-binary"})
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		_, err := l.Execute(ctx, Command{Name: "sleep", Args: []string{"5"}})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestLocalLookPath(t *testing.T) {
	l := NewLocal()
	assert.NoError(t, l.LookPath(context.Background(), "sh"))

	err := l.LookPath(context.Background(), "kvmctl-no-such-binary")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSSHAddr(t *testing.T) {
	assert.Equal(t, "hv1:22", (&SSH{Host: "hv1"}).Addr())
	assert.Equal(t, "hv1:2222", (&SSH{Host: "hv1", Port: "2222"}).Addr())
	assert.Equal(t, "[::1]:22", (&SSH{Host: "::1"}).Addr())
}

func TestNewSSHInvalidKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "id_ed25519")
	require.NoError(t, os.WriteFile(path, []byte("not a key"), 0o600))

	_, err := NewSSH("hv1", "root", "", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse private key")

	_, err = NewSSH("hv1", "root", "", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read private key")
}
