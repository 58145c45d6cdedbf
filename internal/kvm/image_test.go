package kvm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/kvmctl/internal/transport/transporttest"
	"github.com/jbweber/kvmctl/internal/virsh"
)

func TestImageCommands(t *testing.T) {
	ctx := context.Background()
	fake := transporttest.New()
	for _, line := range []string{
		"qemu-img create -f qcow2 /img/web.qcow2 10G",
		"qemu-img convert /img/src.raw /img/dst.qcow2 -O qcow2",
		"qemu-img resize /img/web.qcow2 +5G",
		"qemu-img check /img/web.qcow2",
		"qemu-img compare /img/a.qcow2 /img/b.qcow2",
		"qemu-img snapshot -l /img/web.qcow2",
		"qemu-nbd -c /dev/nbd0 /img/web.qcow2",
		"qemu-nbd -c /dev/nbd3 /img/web.qcow2",
		"qemu-nbd -d /dev/nbd0",
	} {
		fake.On(line, transporttest.OK(""))
	}
	img, err := newTestHypervisor(t, fake).Image()
	require.NoError(t, err)

	_, err = img.Create(ctx, "/img/web.qcow2", "10G", virsh.Opt("f", "qcow2"))
	require.NoError(t, err)
	_, err = img.Convert(ctx, "/img/src.raw", "/img/dst.qcow2", virsh.Opt("O", "qcow2"))
	require.NoError(t, err)
	_, err = img.Resize(ctx, "/img/web.qcow2", "+5G")
	require.NoError(t, err)
	_, err = img.Check(ctx, "/img/web.qcow2")
	require.NoError(t, err)
	_, err = img.Compare(ctx, []string{"/img/a.qcow2", "/img/b.qcow2"})
	require.NoError(t, err)
	_, err = img.Snapshot(ctx, "/img/web.qcow2", virsh.Opt("l", true))
	require.NoError(t, err)
	_, err = img.Load(ctx, "/img/web.qcow2", "")
	require.NoError(t, err)
	_, err = img.Load(ctx, "/img/web.qcow2", "nbd3")
	require.NoError(t, err)
	_, err = img.Unload(ctx, "")
	require.NoError(t, err)

	assert.Len(t, fake.Lines(), 9)
}

func TestImageInfo(t *testing.T) {
	ctx := context.Background()
	out := `image: /img/web.qcow2
file format: qcow2
virtual size: 10 GiB (10737418240 bytes)
disk size: 196 KiB
cluster_size: 65536
`
	fake := transporttest.New().
		On("qemu-img info /img/web.qcow2", transporttest.OK(out)).
		On("qemu-img info /img/missing.qcow2", transporttest.Fail("qemu-img: Could not open '/img/missing.qcow2': No such file or directory"))
	img, err := newTestHypervisor(t, fake).Image()
	require.NoError(t, err)

	info, err := img.Info(ctx, "/img/web.qcow2")
	require.NoError(t, err)
	assert.Equal(t, "qcow2", info["file_format"])
	assert.Equal(t, "10 GiB (10737418240 bytes)", info["virtual_size"])
	assert.Equal(t, 65536, info["cluster_size"])

	_, err = img.Info(ctx, "/img/missing.qcow2")
	var ce *virsh.CommandError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Error(), "No such file or directory")
}

func TestImageNBDMissing(t *testing.T) {
	fake := transporttest.New().Missing("qemu-nbd")
	img, err := newTestHypervisor(t, fake).Image()
	require.NoError(t, err)

	_, err = img.Load(context.Background(), "/img/web.qcow2", "")
	var se *virsh.SetupError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "qemu-nbd", se.Tool)
}
