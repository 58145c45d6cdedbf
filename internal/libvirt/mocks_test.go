package libvirt

import (
	"sync"

	"github.com/digitalocean/go-libvirt"
)

// mockDomainAPI is a mock implementation of domainAPI for testing.
type mockDomainAPI struct {
	mu sync.Mutex

	// Configurable behavior
	domainLookupByNameFunc func(name string) (libvirt.Domain, error)
	domainGetStateFunc     func(dom libvirt.Domain, flags uint32) (int32, int32, error)
	domainShutdownFunc     func(dom libvirt.Domain) error
	domainDestroyFunc      func(dom libvirt.Domain) error

	// Call tracking
	domainLookupByNameCalls []string
	domainGetStateCalls     []libvirt.Domain
	domainShutdownCalls     []libvirt.Domain
	domainDestroyCalls      []libvirt.Domain
}

// newMockDomainAPI returns a mock where every domain exists and is running.
func newMockDomainAPI() *mockDomainAPI {
	return &mockDomainAPI{
		domainLookupByNameFunc: func(name string) (libvirt.Domain, error) {
			return libvirt.Domain{Name: name}, nil
		},
		domainGetStateFunc: func(dom libvirt.Domain, flags uint32) (int32, int32, error) {
			return 1, 0, nil // VIR_DOMAIN_RUNNING = 1
		},
		domainShutdownFunc: func(dom libvirt.Domain) error {
			return nil
		},
		domainDestroyFunc: func(dom libvirt.Domain) error {
			return nil
		},
	}
}

func (m *mockDomainAPI) DomainLookupByName(name string) (libvirt.Domain, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.domainLookupByNameCalls = append(m.domainLookupByNameCalls, name)
	return m.domainLookupByNameFunc(name)
}

func (m *mockDomainAPI) DomainGetState(dom libvirt.Domain, flags uint32) (int32, int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.domainGetStateCalls = append(m.domainGetStateCalls, dom)
	return m.domainGetStateFunc(dom, flags)
}

func (m *mockDomainAPI) DomainShutdown(dom libvirt.Domain) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.domainShutdownCalls = append(m.domainShutdownCalls, dom)
	return m.domainShutdownFunc(dom)
}

func (m *mockDomainAPI) DomainDestroy(dom libvirt.Domain) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.domainDestroyCalls = append(m.domainDestroyCalls, dom)
	return m.domainDestroyFunc(dom)
}
