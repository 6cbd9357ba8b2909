package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Manager hands out Handles to background services and waits for them on
// shutdown.
type Manager struct {
	wg       sync.WaitGroup
	mu       sync.Mutex
	services map[string]bool
	log      *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager creates a Manager. log may be nil.
func NewManager(log *logrus.Logger) *Manager {
	m := &Manager{
		services: make(map[string]bool),
		log:      log,
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return m
}

// NewServiceHandle registers a service under a unique name.
func (m *Manager) NewServiceHandle(name string) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.services[name] {
		return nil, fmt.Errorf("lifecycle: service %q already registered", name)
	}
	m.services[name] = true
	m.wg.Add(1)
	if m.log != nil {
		m.log.WithField("service", name).Debug("lifecycle: service registered")
	}

	return &Handle{
		name: name,
		ctx:  m.ctx,
		Close: func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if _, exists := m.services[name]; !exists {
				return
			}
			delete(m.services, name)
			m.wg.Done()
		},
	}, nil
}

// Go registers name and runs fn in a new goroutine, closing the handle
// when fn returns.
func (m *Manager) Go(name string, fn func(h *Handle)) error {
	h, err := m.NewServiceHandle(name)
	if err != nil {
		return err
	}
	go func() {
		defer h.Close()
		fn(h)
	}()
	return nil
}

// Shutdown cancels every handle.
func (m *Manager) Shutdown() {
	if m.log != nil {
		m.log.Info("lifecycle: broadcasting shutdown")
	}
	m.cancel()
}

// WaitWithTimeout waits for every registered service. It returns the names
// of the services still running when the timeout expires, sorted.
func (m *Manager) WaitWithTimeout(timeout time.Duration) []string {
	doneChan := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(doneChan)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-doneChan:
		return nil
	case <-timer.C:
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.getRemainingServices()
	}
}

func (m *Manager) getRemainingServices() []string {
	remaining := make([]string, 0, len(m.services))
	for name := range m.services {
		remaining = append(remaining, name)
	}
	sort.Strings(remaining)
	return remaining
}
