package lifecycle

import (
	"context"
	"sync"

	"github.com/jbweber/kvmctl/internal/transport"
)

// mockController is a mock implementation of Controller for testing.
type mockController struct {
	mu sync.Mutex

	// Configurable behavior
	existsFunc   func(name string) (bool, error)
	shutdownFunc func(name string) (transport.Result, error)
	stateFunc    func(name string) (string, error)
	destroyFunc  func(name string) (transport.Result, error)

	// Call tracking
	existsCalls   []string
	shutdownCalls []string
	stateCalls    []string
	destroyCalls  []string
}

// newMockController returns a controller for a running domain that accepts
// every request.
func newMockController() *mockController {
	return &mockController{
		existsFunc: func(string) (bool, error) { return true, nil },
		shutdownFunc: func(string) (transport.Result, error) {
			return transport.Result{Succeeded: true}, nil
		},
		stateFunc: func(string) (string, error) { return "running", nil },
		destroyFunc: func(string) (transport.Result, error) {
			return transport.Result{Succeeded: true}, nil
		},
	}
}

func (m *mockController) Exists(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	m.existsCalls = append(m.existsCalls, name)
	m.mu.Unlock()
	return m.existsFunc(name)
}

func (m *mockController) Shutdown(_ context.Context, name string) (transport.Result, error) {
	m.mu.Lock()
	m.shutdownCalls = append(m.shutdownCalls, name)
	m.mu.Unlock()
	return m.shutdownFunc(name)
}

func (m *mockController) State(_ context.Context, name string) (string, error) {
	m.mu.Lock()
	m.stateCalls = append(m.stateCalls, name)
	m.mu.Unlock()
	return m.stateFunc(name)
}

func (m *mockController) Destroy(_ context.Context, name string) (transport.Result, error) {
	m.mu.Lock()
	m.destroyCalls = append(m.destroyCalls, name)
	m.mu.Unlock()
	return m.destroyFunc(name)
}
