package kvm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	testclock "k8s.io/utils/clock/testing"

	"github.com/jbweber/kvmctl/internal/transport/transporttest"
)

const domainList = ` Id   Name   State
------------------------
 1    web    running
 -    db     shut off
 3    batch  paused
`

// newTestHypervisor returns a Hypervisor over fake using a fake clock.
func newTestHypervisor(t *testing.T, fake *transporttest.Fake) *Hypervisor {
	t.Helper()
	h, err := New(context.Background(), fake, WithClock(testclock.NewFakeClock(time.Unix(0, 0))))
	require.NoError(t, err)
	return h
}
