package libvirt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/digitalocean/go-libvirt"
	testclock "k8s.io/utils/clock/testing"

	"github.com/jbweber/kvmctl/internal/lifecycle"
)

var errNoDomain = libvirt.Error{Code: uint32(libvirt.ErrNoDomain), Message: "Domain not found: no domain with matching name 'web'"}

func TestDomainController_Exists(t *testing.T) {
	tests := []struct {
		name      string
		lookupErr error
		want      bool
		wantErr   bool
	}{
		{name: "defined", want: true},
		{name: "not found", lookupErr: errNoDomain, want: false},
		{name: "connection error", lookupErr: errors.New("broken pipe"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newMockDomainAPI()
			api.domainLookupByNameFunc = func(name string) (libvirt.Domain, error) {
				return libvirt.Domain{Name: name}, tt.lookupErr
			}

			got, err := NewDomainController(api).Exists(context.Background(), "web")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Exists() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Exists() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDomainController_ShutdownAndDestroy(t *testing.T) {
	api := newMockDomainAPI()
	c := NewDomainController(api)

	res, err := c.Shutdown(context.Background(), "web")
	if err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if !res.Succeeded {
		t.Errorf("Expected shutdown to succeed, got %+v", res)
	}

	api.domainDestroyFunc = func(dom libvirt.Domain) error {
		return libvirt.Error{Code: 55, Message: "Requested operation is not valid: domain is not running"}
	}
	res, err = c.Destroy(context.Background(), "web")
	if err != nil {
		t.Fatalf("Destroy returned a Go error for a libvirt error: %v", err)
	}
	if res.Succeeded || res.Stderr != "Requested operation is not valid: domain is not running" {
		t.Errorf("Expected failed result carrying the libvirt message, got %+v", res)
	}

	api.domainShutdownFunc = func(dom libvirt.Domain) error {
		return errors.New("connection reset")
	}
	if _, err := c.Shutdown(context.Background(), "web"); err == nil {
		t.Error("Expected a Go error for a connection failure")
	}

	if len(api.domainShutdownCalls) != 2 || len(api.domainDestroyCalls) != 1 {
		t.Errorf("Unexpected call counts: shutdown=%d destroy=%d", len(api.domainShutdownCalls), len(api.domainDestroyCalls))
	}
}

func TestDomainController_State(t *testing.T) {
	api := newMockDomainAPI()
	api.domainGetStateFunc = func(dom libvirt.Domain, flags uint32) (int32, int32, error) {
		return 5, 1, nil
	}

	got, err := NewDomainController(api).State(context.Background(), "web")
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	if got != lifecycle.StateShutOff {
		t.Errorf("State() = %q, want %q", got, lifecycle.StateShutOff)
	}

	api.domainGetStateFunc = func(dom libvirt.Domain, flags uint32) (int32, int32, error) {
		return 0, 0, errors.New("rpc failure")
	}
	if _, err := NewDomainController(api).State(context.Background(), "web"); err == nil {
		t.Error("Expected error from failing DomainGetState")
	}
}

func TestDomainController_DrivesStop(t *testing.T) {
	api := newMockDomainAPI()
	polls := 0
	api.domainGetStateFunc = func(dom libvirt.Domain, flags uint32) (int32, int32, error) {
		polls++
		if polls < 3 {
			return 1, 0, nil
		}
		return 5, 0, nil
	}

	fakeClock := testclock.NewFakeClock(time.Unix(0, 0))
	outcome, err := lifecycle.Stop(context.Background(), NewDomainController(api), "web", lifecycle.Options{
		Timeout:  10 * time.Second,
		Interval: time.Second,
		Clock:    fakeClock,
	})
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if outcome.State != lifecycle.StateStopped || !outcome.Succeeded {
		t.Errorf("Expected stopped outcome, got %+v", outcome)
	}
	if outcome.Polls != 3 {
		t.Errorf("Expected 3 polls, got %d", outcome.Polls)
	}
	if len(api.domainDestroyCalls) != 0 {
		t.Errorf("Expected no destroy, got %d calls", len(api.domainDestroyCalls))
	}
}

func TestStateName(t *testing.T) {
	tests := map[int32]string{
		0: "no state",
		1: "running",
		3: "paused",
		5: "shut off",
		7: "pmsuspended",
		9: "unknown(9)",
	}
	for in, want := range tests {
		if got := StateName(in); got != want {
			t.Errorf("StateName(%d) = %q, want %q", in, got, want)
		}
	}
}
