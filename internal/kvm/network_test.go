package kvm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/kvmctl/internal/transport/transporttest"
	"github.com/jbweber/kvmctl/internal/xmlmap"
)

func TestNetworkDefineMapping(t *testing.T) {
	ctx := context.Background()
	fake := transporttest.New().
		On("virsh net-define /dev/stdin", transporttest.OK("Network lab defined from /dev/stdin"))
	n := newTestHypervisor(t, fake).Network()

	m, err := xmlmap.DecodeYAML([]byte("name: lab\nbridge:\n  '@name': virbr1\n  '@stp': 'on'\nip:\n  '@address': 192.168.100.1\n  '@netmask': 255.255.255.0\n"))
	require.NoError(t, err)

	res, err := n.DefineMapping(ctx, m)
	require.NoError(t, err)
	assert.True(t, res.Succeeded)

	calls := fake.Calls()
	assert.Equal(t, `<network>
  <name>lab</name>
  <bridge name="virbr1" stp="on"/>
  <ip address="192.168.100.1" netmask="255.255.255.0"/>
</network>
`, calls[len(calls)-1].Stdin)
}
