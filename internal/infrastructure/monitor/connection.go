package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/safezoneph/syncd/internal/infrastructure/localstore"
)

// RemotePinger is the slice of the remote client the monitor needs.
type RemotePinger interface {
	Ping(ctx context.Context) error
}

// Monitor periodically probes the remote API and the local store so the
// outbox processor knows whether draining is worth attempting.
type Monitor struct {
	remote RemotePinger
	store  *localstore.Store
	outbox *localstore.Outbox

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	logger   *zap.Logger
}

func New(remote RemotePinger, store *localstore.Store, outbox *localstore.Outbox, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		remote:   remote,
		store:    store,
		outbox:   outbox,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	close(m.stopCh)
}

// IsOnline reports whether the remote API is reachable. Local operation
// never depends on this.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Remote
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.refresh()
	for {
		select {
		case <-ticker.C:
			m.refresh()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) refresh() {
	status := Status{
		Remote:    m.checkRemote(),
		Store:     m.store.Healthy(),
		LastCheck: time.Now(),
	}
	if m.outbox != nil {
		if size, err := m.outbox.Size(); err == nil {
			status.OutboxSize = size
		} else {
			m.logger.Warn("outbox size check failed", zap.Error(err))
		}
	}

	m.mu.Lock()
	wasOnline := m.status.Remote
	m.status = status
	m.mu.Unlock()

	if status.Remote != wasOnline {
		m.logger.Info("remote connectivity changed", zap.Bool("online", status.Remote))
	}
}

func (m *Monitor) checkRemote() bool {
	if m.remote == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return m.remote.Ping(ctx) == nil
}
