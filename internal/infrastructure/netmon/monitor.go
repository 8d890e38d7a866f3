package netmon

import (
	"net"
	"sync"
	"time"

	"github.com/airmote/airmote-go-client/internal/domain/port"
)

// Monitor polls the network interfaces and reports link transitions.
// Loss is reported immediately; availability is debounced so bursts of
// interface flaps do not restart the connection sequence repeatedly.
type Monitor struct {
	pollInterval time.Duration
	debounce     time.Duration
	logger       port.Logger

	mutex  sync.Mutex
	active bool
	stop   chan struct{}
	lastUp time.Time

	// linkUp is replaceable for tests
	linkUp func() bool
}

// NewMonitor creates a monitor polling every pollInterval and suppressing
// repeated availability events inside the debounce window
func NewMonitor(pollInterval, debounce time.Duration, logger port.Logger) *Monitor {
	return &Monitor{
		pollInterval: pollInterval,
		debounce:     debounce,
		logger:       logger,
		linkUp:       hasUsableInterface,
	}
}

// Start begins observing. No-op when already active.
func (m *Monitor) Start(onChange func(available bool)) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.active {
		return nil
	}

	m.active = true
	m.stop = make(chan struct{})

	go m.loop(m.stop, onChange)

	return nil
}

// loop polls for link transitions until stopped
func (m *Monitor) loop(stop <-chan struct{}, onChange func(available bool)) {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	up := m.linkUp()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		current := m.linkUp()
		if current == up {
			continue
		}
		up = current

		if !current {
			m.logger.Warn("Network link lost")
			onChange(false)
			continue
		}

		m.mutex.Lock()
		suppressed := time.Since(m.lastUp) < m.debounce
		if !suppressed {
			m.lastUp = time.Now()
		}
		m.mutex.Unlock()

		if suppressed {
			m.logger.Debug("Suppressing repeated link-available event")
			continue
		}

		m.logger.Info("Network link available")
		onChange(true)
	}
}

// Stop stops observing. Safe to call more than once.
func (m *Monitor) Stop() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.active {
		return
	}

	close(m.stop)
	m.active = false
}

// hasUsableInterface reports whether any non-loopback interface is up
// with a unicast address assigned
func hasUsableInterface() bool {
	interfaces, err := net.Interfaces()
	if err != nil {
		return false
	}

	for _, iface := range interfaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipNet, ok := addr.(*net.IPNet); ok && !ipNet.IP.IsLinkLocalUnicast() {
				return true
			}
		}
	}

	return false
}

// Ensure Monitor implements port.NetworkMonitor
var _ port.NetworkMonitor = (*Monitor)(nil)
