package transporttest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/kvmctl/internal/transport"
)

func TestFakeSequence(t *testing.T) {
	f := New().On("virsh domstate vm1", OK("running\n"), OK("shut off\n"))
	ctx := context.Background()
	cmd := transport.Command{Name: "virsh", Args: []string{"domstate", "vm1"}}

	for _, want := range []string{"running", "shut off", "shut off"} {
		res, err := f.Execute(ctx, cmd)
		require.NoError(t, err)
		assert.Equal(t, want, res.Stdout)
	}
	assert.Equal(t, 3, f.Count("virsh domstate vm1"))
}

func TestFakeUnscripted(t *testing.T) {
	f := New()
	_, err := f.Execute(context.Background(), transport.Command{Name: "virsh", Args: []string{"list"}})
	assert.ErrorContains(t, err, "unexpected command: virsh list")
	assert.Equal(t, []string{"virsh list"}, f.Lines())
}

func TestFakeMissing(t *testing.T) {
	f := New().Missing("qemu-img")
	assert.NoError(t, f.LookPath(context.Background(), "virsh"))
	assert.ErrorIs(t, f.LookPath(context.Background(), "qemu-img"), transport.ErrNotFound)
}
