package libvirt

import (
	"context"
	"errors"
	"fmt"

	"github.com/digitalocean/go-libvirt"

	"github.com/jbweber/kvmctl/internal/lifecycle"
	"github.com/jbweber/kvmctl/internal/transport"
)

// domainAPI is the subset of *libvirt.Libvirt the controller uses.
type domainAPI interface {
	DomainLookupByName(name string) (libvirt.Domain, error)
	DomainGetState(dom libvirt.Domain, flags uint32) (int32, int32, error)
	DomainShutdown(dom libvirt.Domain) error
	DomainDestroy(dom libvirt.Domain) error
}

// DomainController implements lifecycle.Controller over libvirt RPC.
// A libvirt error on shutdown or destroy is reported as a failed Result,
// the way a failing virsh command would be; connection errors are returned.
type DomainController struct {
	api domainAPI
}

var _ lifecycle.Controller = (*DomainController)(nil)

// NewDomainController returns a controller backed by api, usually
// Client.Libvirt().
func NewDomainController(api domainAPI) *DomainController {
	return &DomainController{api: api}
}

// Exists reports whether the domain is defined.
func (c *DomainController) Exists(_ context.Context, name string) (bool, error) {
	if _, err := c.api.DomainLookupByName(name); err != nil {
		if isNoDomain(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up domain %s: %w", name, err)
	}
	return true, nil
}

// Shutdown requests a graceful shutdown.
func (c *DomainController) Shutdown(_ context.Context, name string) (transport.Result, error) {
	return c.act(name, c.api.DomainShutdown)
}

// Destroy stops the domain immediately.
func (c *DomainController) Destroy(_ context.Context, name string) (transport.Result, error) {
	return c.act(name, c.api.DomainDestroy)
}

// State returns the domain state as virsh prints it.
func (c *DomainController) State(_ context.Context, name string) (string, error) {
	dom, err := c.api.DomainLookupByName(name)
	if err != nil {
		return "", fmt.Errorf("failed to look up domain %s: %w", name, err)
	}

	state, _, err := c.api.DomainGetState(dom, 0)
	if err != nil {
		return "", fmt.Errorf("failed to get domain state: %w", err)
	}

	return StateName(state), nil
}

func (c *DomainController) act(name string, fn func(libvirt.Domain) error) (transport.Result, error) {
	dom, err := c.api.DomainLookupByName(name)
	if err == nil {
		err = fn(dom)
	}

	var lverr libvirt.Error
	switch {
	case err == nil:
		return transport.Result{Succeeded: true}, nil
	case errors.As(err, &lverr):
		return transport.Result{Succeeded: false, Stderr: lverr.Message}, nil
	default:
		return transport.Result{}, fmt.Errorf("failed to control domain %s: %w", name, err)
	}
}

func isNoDomain(err error) bool {
	var lverr libvirt.Error
	return errors.As(err, &lverr) && lverr.Code == uint32(libvirt.ErrNoDomain)
}

// StateName converts a libvirt domain state to the string virsh prints.
func StateName(state int32) string {
	switch state {
	case 0:
		return "no state"
	case 1:
		return "running"
	case 2:
		return "idle"
	case 3:
		return "paused"
	case 4:
		return "in shutdown"
	case 5:
		return lifecycle.StateShutOff
	case 6:
		return "crashed"
	case 7:
		return "pmsuspended"
	default:
		return fmt.Sprintf("unknown(%d)", state)
	}
}
