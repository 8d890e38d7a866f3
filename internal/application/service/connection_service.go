package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/airmote/airmote-go-client/internal/domain/model"
	"github.com/airmote/airmote-go-client/internal/domain/port"
)

// ConnectionStatus is a read-only snapshot of the engine for display
type ConnectionStatus struct {
	State             model.ConnectionState
	Strategy          model.Strategy
	Endpoint          model.Endpoint
	ReconnectAttempts int
}

// ConnectionService owns the connection state machine. It decides which
// endpoint to try next (cached address, then discovery, then the fallback
// domain), tracks attempt identity so callbacks from superseded attempts
// are discarded, and drives the reconnect loop on failure.
//
// All mutations of {state, strategy, attemptID, isReconnecting, counters}
// happen under one mutex; discovery, transport-close and network-change
// callbacks funnel through methods that take it.
type ConnectionService struct {
	cfg       *model.Config
	cache     port.ConnectionCache
	discovery port.Discovery
	dialer    port.Dialer
	monitor   port.NetworkMonitor
	logger    port.Logger

	mutex             sync.Mutex
	state             model.ConnectionState
	strategy          model.Strategy
	attemptID         uint64
	conn              port.Conn
	endpoint          model.Endpoint
	isReconnecting    bool
	reconnectAttempts int
	reconnectStop     chan struct{}
	closed            bool

	listeners []func(model.ConnectionState)
	stateCh   chan model.ConnectionState
	quit      chan struct{}
}

// NewConnectionService creates a new ConnectionService instance
func NewConnectionService(
	cfg *model.Config,
	cache port.ConnectionCache,
	discovery port.Discovery,
	dialer port.Dialer,
	monitor port.NetworkMonitor,
	logger port.Logger,
) *ConnectionService {
	s := &ConnectionService{
		cfg:       cfg,
		cache:     cache,
		discovery: discovery,
		dialer:    dialer,
		monitor:   monitor,
		logger:    logger,
		state:     model.StateDisconnected,
		strategy:  model.StrategyDiscovery,
		stateCh:   make(chan model.ConnectionState, 16),
		quit:      make(chan struct{}),
	}

	go s.dispatchStates()

	return s
}

// Initialize starts the connection sequence: cached endpoint first when a
// fresh cache entry exists, discovery otherwise. It also registers the
// network monitor. Returns immediately; progress is observable through
// OnStateChange and State.
func (s *ConnectionService) Initialize() error {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return fmt.Errorf("connection service is closed")
	}
	if s.state != model.StateDisconnected {
		s.mutex.Unlock()
		return nil
	}
	s.startSequenceLocked()
	s.mutex.Unlock()

	if err := s.monitor.Start(s.onNetworkChange); err != nil {
		s.logger.Warn("Network monitor unavailable: %v", err)
	}

	return nil
}

// startSequenceLocked begins the strategy sequence from the top.
// Caller holds the mutex.
func (s *ConnectionService) startSequenceLocked() {
	s.setStateLocked(model.StateConnecting)

	if entry, ok := s.cache.Load(); ok {
		s.strategy = model.StrategyCachedAddress
		id := s.newAttemptLocked()
		s.logger.Info("Trying cached endpoint %s", entry.Endpoint.Addr())
		go s.attempt(id, entry.Endpoint, model.StrategyCachedAddress)
		go s.graceTimer(id)
		return
	}

	s.beginDiscoveryLocked()
}

// graceTimer escalates to discovery when the cached-address attempt has
// not connected within the grace period. The cached attempt keeps running;
// it is superseded only once something else produces an endpoint.
func (s *ConnectionService) graceTimer(id uint64) {
	timer := time.NewTimer(s.cfg.GracePeriod)
	defer timer.Stop()

	select {
	case <-s.quit:
		return
	case <-timer.C:
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed || s.attemptID != id || s.state == model.StateConnected {
		return
	}

	s.logger.Info("Cached endpoint not connected within grace period, starting discovery")
	s.beginDiscoveryLocked()
}

// beginDiscoveryLocked switches to the discovery strategy. Caller holds
// the mutex. The listening session itself starts on a separate goroutine
// so discovery callbacks can never re-enter the lock we hold.
func (s *ConnectionService) beginDiscoveryLocked() {
	s.strategy = model.StrategyDiscovery
	gen := s.attemptID
	go s.runDiscovery(gen)
}

// runDiscovery starts the listening session and arms the discovery window.
// If nothing resolves inside the window and no newer attempt superseded
// generation gen, the fallback domain is tried.
func (s *ConnectionService) runDiscovery(gen uint64) {
	if err := s.discovery.StartListening(s.onServiceFound); err != nil {
		s.logger.Warn("Discovery unavailable: %v", err)
		s.attemptFallback(gen)
		return
	}

	timer := time.NewTimer(s.cfg.DiscoveryWindow)
	defer timer.Stop()

	select {
	case <-s.quit:
		return
	case <-timer.C:
	}

	s.attemptFallback(gen)
}

// onServiceFound handles a resolved advertisement from discovery
func (s *ConnectionService) onServiceFound(svc model.DiscoveredService) {
	s.mutex.Lock()
	if s.closed || s.state == model.StateConnected {
		s.mutex.Unlock()
		return
	}
	s.strategy = model.StrategyDiscovery
	id := s.newAttemptLocked()
	s.mutex.Unlock()

	s.logger.Info("Connecting to discovered service %q at %s", svc.Name, svc.Endpoint.Addr())
	s.attempt(id, svc.Endpoint, model.StrategyDiscovery)
}

// attemptFallback tries the fallback domain unless generation gen has
// been superseded in the meantime
func (s *ConnectionService) attemptFallback(gen uint64) {
	s.mutex.Lock()
	if s.closed || s.state == model.StateConnected || s.attemptID != gen {
		s.mutex.Unlock()
		return
	}
	s.strategy = model.StrategyDomainFallback
	id := s.newAttemptLocked()
	s.mutex.Unlock()

	endpoint := s.cfg.FallbackEndpoint()
	s.logger.Info("Trying fallback endpoint %s", endpoint.Addr())
	s.attempt(id, endpoint, model.StrategyDomainFallback)
}

// newAttemptLocked allocates a new attempt id, invalidating every
// callback that belongs to an older attempt, and closes any live
// transport. Caller holds the mutex.
func (s *ConnectionService) newAttemptLocked() uint64 {
	s.attemptID++

	if s.conn != nil {
		conn := s.conn
		s.conn = nil
		go conn.Close()
	}

	return s.attemptID
}

// attempt dials the endpoint, probing consecutive ports, and reports the
// outcome. It abandons the sequence as soon as the attempt is superseded.
// Returns true when the attempt ended with a live adopted connection.
func (s *ConnectionService) attempt(id uint64, endpoint model.Endpoint, strategy model.Strategy) bool {
	probes := s.cfg.PortProbeCount
	if probes < 1 {
		probes = 1
	}

	var lastErr error
	for i := 0; i < probes; i++ {
		if !s.attemptCurrent(id) {
			return false
		}

		candidate := model.Endpoint{Host: endpoint.Host, Port: endpoint.Port + i}
		conn, err := s.dialer.Dial(candidate, func(cerr error) {
			s.onConnClosed(id, cerr)
		})
		if err == nil {
			return s.adoptConn(id, candidate, strategy, conn)
		}

		lastErr = err
		s.logger.Debug("Connect to %s failed: %v", candidate.Addr(), err)

		if i < probes-1 {
			select {
			case <-s.quit:
				return false
			case <-time.After(s.cfg.PortProbeDelay):
			}
		}
	}

	s.onAttemptFailed(id, endpoint, strategy, lastErr)
	return false
}

// attemptCurrent reports whether the attempt id is still the live one
func (s *ConnectionService) attemptCurrent(id uint64) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return !s.closed && s.attemptID == id
}

// adoptConn installs a successfully opened connection, provided the
// attempt has not been superseded while the dial was in flight
func (s *ConnectionService) adoptConn(id uint64, endpoint model.Endpoint, strategy model.Strategy, conn port.Conn) bool {
	s.mutex.Lock()
	if s.closed || s.attemptID != id {
		s.mutex.Unlock()
		// Superseded attempt, discard the connection silently
		conn.Close()
		return false
	}

	s.conn = conn
	s.endpoint = endpoint
	s.strategy = strategy
	s.reconnectAttempts = 0
	s.setStateLocked(model.StateConnected)
	s.mutex.Unlock()

	s.discovery.StopListening()

	// Fallback endpoints are a last-resort guess, not a verified server
	// identity, so they are never cached
	if strategy != model.StrategyDomainFallback {
		if err := s.cache.Save(endpoint); err != nil {
			s.logger.Warn("Failed to cache endpoint: %v", err)
		}
	}

	s.logger.Info("Connected to %s (%s)", endpoint.Addr(), strategy)
	return true
}

// onAttemptFailed handles a fully failed connection attempt
func (s *ConnectionService) onAttemptFailed(id uint64, endpoint model.Endpoint, strategy model.Strategy, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed || s.attemptID != id {
		return
	}

	s.logger.Warn("Failed to connect to %s: %v", endpoint.Addr(), err)

	// A cached endpoint that no longer answers is no longer trusted
	if strategy == model.StrategyCachedAddress {
		if cerr := s.cache.Clear(); cerr != nil {
			s.logger.Warn("Failed to clear endpoint cache: %v", cerr)
		}
	}

	if s.isReconnecting {
		return
	}

	s.setStateLocked(model.StateDisconnected)
	s.scheduleRetryLocked()
}

// onConnClosed handles an asynchronous transport failure or close
func (s *ConnectionService) onConnClosed(id uint64, err error) {
	s.mutex.Lock()
	if s.closed || s.attemptID != id || s.conn == nil {
		s.mutex.Unlock()
		return
	}

	conn := s.conn
	s.conn = nil
	s.setStateLocked(model.StateDisconnected)
	s.scheduleRetryLocked()
	s.mutex.Unlock()

	conn.Close()
	s.logger.Warn("Connection lost: %v", err)
}

// ManualReconnect cancels any in-flight attempt, clears the cache so the
// next connection goes through fresh discovery, resets the attempt
// counters and restarts from the discovery strategy. Ignored while the
// reconnect loop is running, so loops never overlap.
func (s *ConnectionService) ManualReconnect() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return
	}

	if s.isReconnecting {
		s.logger.Debug("Ignoring manual reconnect while reconnecting")
		return
	}

	s.logger.Info("Manual reconnect requested")

	s.newAttemptLocked()
	s.reconnectAttempts = 0

	if err := s.cache.Clear(); err != nil {
		s.logger.Warn("Failed to clear endpoint cache: %v", err)
	}

	s.setStateLocked(model.StateConnecting)
	s.beginDiscoveryLocked()
}

// onNetworkChange handles link transitions from the network monitor
func (s *ConnectionService) onNetworkChange(available bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return
	}

	if !available {
		// The link is gone; no attempt at graceful continuation and no
		// retries until it returns or the user reconnects manually
		s.cancelReconnectLocked()
		s.newAttemptLocked()
		s.setStateLocked(model.StateDisconnected)
		return
	}

	if s.state == model.StateConnected {
		return
	}

	s.cancelReconnectLocked()
	s.reconnectAttempts = 0
	s.newAttemptLocked()
	s.startSequenceLocked()
}

// Send encodes v as JSON and sends it over the live connection. Fails
// without side effects when not connected; a write failure on a live
// connection triggers the same handling as any transport failure.
func (s *ConnectionService) Send(v interface{}) error {
	s.mutex.Lock()
	conn := s.conn
	id := s.attemptID
	connected := s.state == model.StateConnected && conn != nil
	s.mutex.Unlock()

	if !connected {
		return fmt.Errorf("not connected")
	}

	if err := conn.SendJSON(v); err != nil {
		s.onConnClosed(id, err)
		return err
	}

	return nil
}

// SendKeepAlive sends the bare keep-alive text frame
func (s *ConnectionService) SendKeepAlive() error {
	s.mutex.Lock()
	conn := s.conn
	id := s.attemptID
	connected := s.state == model.StateConnected && conn != nil
	s.mutex.Unlock()

	if !connected {
		return fmt.Errorf("not connected")
	}

	if err := conn.SendText(model.KeepAliveFrame); err != nil {
		s.onConnClosed(id, err)
		return err
	}

	return nil
}

// State returns the current connection state
func (s *ConnectionService) State() model.ConnectionState {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state
}

// Status returns a snapshot of the engine for display
func (s *ConnectionService) Status() ConnectionStatus {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return ConnectionStatus{
		State:             s.state,
		Strategy:          s.strategy,
		Endpoint:          s.endpoint,
		ReconnectAttempts: s.reconnectAttempts,
	}
}

// OnStateChange registers a listener for state transitions. Listeners are
// invoked in order from a single dispatch goroutine.
func (s *ConnectionService) OnStateChange(fn func(model.ConnectionState)) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.listeners = append(s.listeners, fn)
}

// setStateLocked transitions the state and queues the notification.
// Caller holds the mutex.
func (s *ConnectionService) setStateLocked(state model.ConnectionState) {
	if s.state == state {
		return
	}

	s.state = state

	select {
	case s.stateCh <- state:
	default:
		// A full buffer means listeners are far behind; dropping beats
		// blocking the state machine
	}
}

// dispatchStates delivers state notifications to listeners in order
func (s *ConnectionService) dispatchStates() {
	for {
		select {
		case <-s.quit:
			return
		case state := <-s.stateCh:
			s.mutex.Lock()
			listeners := make([]func(model.ConnectionState), len(s.listeners))
			copy(listeners, s.listeners)
			s.mutex.Unlock()

			for _, fn := range listeners {
				fn(state)
			}
		}
	}
}

// cancelReconnectLocked stops a running reconnect loop. Caller holds the
// mutex.
func (s *ConnectionService) cancelReconnectLocked() {
	if s.reconnectStop != nil {
		close(s.reconnectStop)
		s.reconnectStop = nil
	}
	s.isReconnecting = false
}

// Close tears the whole client down: invalidates the current attempt,
// closes the transport, cancels the reconnect loop, stops discovery and
// unregisters the network monitor. Idempotent.
func (s *ConnectionService) Close() {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return
	}

	s.closed = true
	s.cancelReconnectLocked()
	s.attemptID++

	conn := s.conn
	s.conn = nil
	s.setStateLocked(model.StateDisconnected)
	s.mutex.Unlock()

	if conn != nil {
		conn.Close()
	}

	s.discovery.StopListening()
	s.monitor.Stop()

	close(s.quit)

	s.logger.Info("Connection service closed")
}
