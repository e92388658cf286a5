package shutdown

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"skiff/internal/logger"
)

// Manager translates OS termination signals into a single quit request.
// The quit callback asks the host run loop to end; module teardown happens
// on the normal exit path, never inside the signal handler.
type Manager struct {
	log  logger.Logger
	quit func()

	sigChan   chan os.Signal
	once      sync.Once
	closeOnce sync.Once
	done      chan struct{}
}

func NewManager(log logger.Logger, quit func()) *Manager {
	return &Manager{
		log:     log,
		quit:    quit,
		sigChan: make(chan os.Signal, 1),
		done:    make(chan struct{}),
	}
}

// Listen starts watching for SIGINT and SIGTERM.
func (m *Manager) Listen() {
	signal.Notify(m.sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-m.sigChan:
			m.log.Info("ShutdownManager", "shutdown signal received", map[string]interface{}{
				"signal": sig.String(),
			})
			m.Trigger()
		case <-m.done:
		}
	}()
}

// Trigger requests quit exactly once, regardless of how many signals or
// callers race here.
func (m *Manager) Trigger() {
	m.once.Do(func() {
		if m.quit != nil {
			m.quit()
		}
	})
}

// Close stops signal delivery. The manager cannot be reused afterwards.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		signal.Stop(m.sigChan)
		close(m.done)
	})
}

// Done is closed once the manager stops listening.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}
