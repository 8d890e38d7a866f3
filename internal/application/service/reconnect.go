package service

import (
	"time"

	"github.com/airmote/airmote-go-client/internal/domain/model"
)

// scheduleRetryLocked starts the reconnect loop unless one is already
// running or the attempt ceiling is already reached. Caller holds the mutex.
func (s *ConnectionService) scheduleRetryLocked() {
	if s.closed || s.isReconnecting {
		return
	}

	if s.reconnectAttempts >= s.cfg.MaxReconnectAttempts {
		s.logger.Warn("Reconnect attempts exhausted (%d), waiting for manual reconnect", s.reconnectAttempts)
		s.setStateLocked(model.StateDisconnected)
		return
	}

	s.isReconnecting = true
	s.setStateLocked(model.StateReconnecting)

	stop := make(chan struct{})
	s.reconnectStop = stop

	go s.reconnectLoop(stop)
}

// reconnectLoop retries connecting with linear backoff until connected,
// cancelled, or the attempt ceiling is reached. Cancellation is
// cooperative: the stop channel is checked at every wait boundary.
//
// The loop owns the isReconnecting guard only while reconnectStop still
// points at its own stop channel. A cancelled loop can be pinned inside a
// slow dial while a newer loop is already scheduled; its wind-down must
// not touch state the newer loop owns.
func (s *ConnectionService) reconnectLoop(stop <-chan struct{}) {
	defer func() {
		s.mutex.Lock()
		if s.reconnectStop == stop {
			s.isReconnecting = false
			s.reconnectStop = nil
		}
		s.mutex.Unlock()
	}()

	for {
		s.mutex.Lock()
		if s.closed || s.state == model.StateConnected || s.reconnectStop != stop {
			s.mutex.Unlock()
			return
		}
		if s.reconnectAttempts >= s.cfg.MaxReconnectAttempts {
			s.logger.Warn("Giving up after %d reconnect attempts", s.reconnectAttempts)
			s.setStateLocked(model.StateDisconnected)
			s.mutex.Unlock()
			return
		}
		s.reconnectAttempts++
		attemptNumber := s.reconnectAttempts
		s.mutex.Unlock()

		delay := backoffDelay(s.cfg.BackoffBase, s.cfg.BackoffCeiling, attemptNumber)
		s.logger.Info("Reconnect attempt %d/%d in %s", attemptNumber, s.cfg.MaxReconnectAttempts, delay)

		select {
		case <-stop:
			return
		case <-time.After(delay):
		}

		endpoint, strategy, ok := s.nextCandidate(stop)
		if !ok {
			continue
		}

		s.mutex.Lock()
		if s.closed || s.state == model.StateConnected || s.reconnectStop != stop {
			s.mutex.Unlock()
			return
		}
		id := s.newAttemptLocked()
		s.mutex.Unlock()

		if s.attempt(id, endpoint, strategy) {
			return
		}
	}
}

// nextCandidate picks the next endpoint per the ordering rule: the cached
// address whenever a fresh entry exists and it is not already the current
// strategy, otherwise the discovery/fallback cycle. For the discovery
// strategy it has no endpoint of its own: the listening session delivers
// endpoints through onServiceFound, so the loop just waits out the window.
func (s *ConnectionService) nextCandidate(stop <-chan struct{}) (model.Endpoint, model.Strategy, bool) {
	s.mutex.Lock()
	if entry, ok := s.cache.Load(); ok && s.strategy != model.StrategyCachedAddress {
		s.strategy = model.StrategyCachedAddress
		s.mutex.Unlock()
		return entry.Endpoint, model.StrategyCachedAddress, true
	}

	s.strategy = model.NextStrategy(s.strategy)
	strategy := s.strategy
	s.mutex.Unlock()

	switch strategy {
	case model.StrategyDiscovery:
		if err := s.discovery.StartListening(s.onServiceFound); err != nil {
			s.logger.Warn("Discovery unavailable: %v", err)
			s.mutex.Lock()
			s.strategy = model.StrategyDomainFallback
			s.mutex.Unlock()
			return s.cfg.FallbackEndpoint(), model.StrategyDomainFallback, true
		}

		select {
		case <-stop:
		case <-time.After(s.cfg.DiscoveryWindow):
		}
		return model.Endpoint{}, strategy, false

	case model.StrategyDomainFallback:
		return s.cfg.FallbackEndpoint(), strategy, true
	}

	return model.Endpoint{}, strategy, false
}

// backoffDelay returns the wait before the given attempt number, growing
// linearly from the base and capped at the ceiling
func backoffDelay(base, ceiling time.Duration, attemptNumber int) time.Duration {
	delay := time.Duration(attemptNumber) * base
	if delay > ceiling {
		return ceiling
	}
	return delay
}
