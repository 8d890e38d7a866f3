package service

import (
	"sync"
	"time"

	"github.com/airmote/airmote-go-client/internal/domain/model"
	"github.com/airmote/airmote-go-client/internal/domain/port"
)

// Sender is the slice of the connection engine the send path needs
type Sender interface {
	State() model.ConnectionState
	Send(v interface{}) error
	SendKeepAlive() error
}

// InputService is the send path for input events. Every call returns
// immediately. Events sent while not connected are dropped and logged,
// never queued: stale input is worse than lost input for a live
// remote-control session. Pointer moves and scrolls are coalesced so
// repeated calls inside the flush interval produce one wire message
// carrying the accumulated delta.
type InputService struct {
	sender Sender
	cfg    *model.Config
	logger port.Logger

	mutex      sync.Mutex
	move       pendingMove
	scroll     pendingScroll
	pingStop   chan struct{}
	pingActive bool
}

// pendingMove accumulates coalesced pointer movement awaiting a flush
type pendingMove struct {
	x, y      float64
	relative  bool
	pending   bool
	timer     *time.Timer
	lastFlush time.Time
}

// pendingScroll accumulates coalesced scroll deltas awaiting a flush
type pendingScroll struct {
	amount    int
	pending   bool
	timer     *time.Timer
	lastFlush time.Time
}

// NewInputService creates a new InputService instance
func NewInputService(sender Sender, cfg *model.Config, logger port.Logger) *InputService {
	return &InputService{
		sender: sender,
		cfg:    cfg,
		logger: logger,
	}
}

// MoveMouse moves the pointer. Relative moves accumulate their deltas;
// absolute moves replace the pending position. A batch is flushed
// immediately when no flush happened recently, otherwise when the
// coalescing interval elapses.
func (s *InputService) MoveMouse(x, y float64, relative bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.connectedLocked(model.MessageTypeMouseMove) {
		return
	}

	// A batch is always homogeneous: flush before switching mode
	if s.move.pending && s.move.relative != relative {
		s.flushMoveLocked()
	}

	if relative && s.move.pending {
		s.move.x += x
		s.move.y += y
	} else {
		s.move.x = x
		s.move.y = y
	}
	s.move.relative = relative
	s.move.pending = true

	interval := s.cfg.MoveFlushInterval
	if time.Since(s.move.lastFlush) >= interval {
		s.flushMoveLocked()
		return
	}

	if s.move.timer == nil {
		remaining := interval - time.Since(s.move.lastFlush)
		s.move.timer = time.AfterFunc(remaining, s.flushMove)
	}
}

// Scroll scrolls the wheel by a signed amount, coalesced like pointer moves
func (s *InputService) Scroll(amount int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.connectedLocked(model.MessageTypeMouseScroll) {
		return
	}

	s.scroll.amount += amount
	s.scroll.pending = true

	interval := s.cfg.ScrollFlushInterval
	if time.Since(s.scroll.lastFlush) >= interval {
		s.flushScrollLocked()
		return
	}

	if s.scroll.timer == nil {
		remaining := interval - time.Since(s.scroll.lastFlush)
		s.scroll.timer = time.AfterFunc(remaining, s.flushScroll)
	}
}

// ClickMouse clicks a mouse button
func (s *InputService) ClickMouse(button string, clicks int, interval float64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.connectedLocked(model.MessageTypeMouseClick) {
		return
	}

	// Preserve input order relative to any pending movement
	s.flushMoveLocked()
	s.flushScrollLocked()

	s.sendLocked(model.NewMouseClickMessage(button, clicks, interval))
}

// PressKey presses, holds or releases a single key
func (s *InputService) PressKey(key string, hold, release bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.connectedLocked(model.MessageTypeKeyPress) {
		return
	}

	s.sendLocked(model.NewKeyPressMessage(key, hold, release))
}

// TypeText types a text string with per-character pacing
func (s *InputService) TypeText(text string, interval float64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.connectedLocked(model.MessageTypeKeyType) {
		return
	}

	s.sendLocked(model.NewKeyTypeMessage(text, interval))
}

// PressKeys presses a multi-key combination
func (s *InputService) PressKeys(keys []string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.connectedLocked(model.MessageTypeMultipleKeys) {
		return
	}

	s.sendLocked(model.NewMultipleKeysMessage(keys))
}

// StartKeepAlive starts the keep-alive loop, sending the ping frame on a
// fixed interval while connected. No-op when already running.
func (s *InputService) StartKeepAlive() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.pingActive {
		return
	}

	s.pingActive = true
	stop := make(chan struct{})
	s.pingStop = stop

	go s.keepAliveLoop(stop)
}

// keepAliveLoop sends pings until stopped. A failed ping is handled by
// the sender like any other send failure.
func (s *InputService) keepAliveLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if s.sender.State() != model.StateConnected {
				continue
			}
			if err := s.sender.SendKeepAlive(); err != nil {
				s.logger.Warn("Failed to send keep-alive: %v", err)
			}
		}
	}
}

// StopKeepAlive stops the keep-alive loop. Safe to call more than once.
func (s *InputService) StopKeepAlive() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.pingActive {
		return
	}

	close(s.pingStop)
	s.pingStop = nil
	s.pingActive = false
}

// Close stops the keep-alive loop and discards any pending batches
func (s *InputService) Close() {
	s.StopKeepAlive()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.move.timer != nil {
		s.move.timer.Stop()
		s.move.timer = nil
	}
	if s.scroll.timer != nil {
		s.scroll.timer.Stop()
		s.scroll.timer = nil
	}
	s.move.pending = false
	s.scroll.pending = false
}

// connectedLocked reports whether sending is possible, logging the drop
// otherwise. Caller holds the mutex.
func (s *InputService) connectedLocked(kind model.MessageType) bool {
	state := s.sender.State()
	if state == model.StateConnected {
		return true
	}
	s.logger.Debug("Dropping %s while %s", kind, state)
	return false
}

// sendLocked sends a message, logging failure. Caller holds the mutex.
func (s *InputService) sendLocked(v interface{}) {
	if err := s.sender.Send(v); err != nil {
		s.logger.Warn("Failed to send input event: %v", err)
	}
}

// flushMove is the timer callback for a pending movement batch
func (s *InputService) flushMove() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.flushMoveLocked()
}

// flushMoveLocked sends the accumulated movement as one message.
// Caller holds the mutex.
func (s *InputService) flushMoveLocked() {
	if s.move.timer != nil {
		s.move.timer.Stop()
		s.move.timer = nil
	}

	if !s.move.pending {
		return
	}

	msg := model.NewMouseMoveMessage(s.move.x, s.move.y, s.move.relative)
	s.move.pending = false
	s.move.x = 0
	s.move.y = 0
	s.move.lastFlush = time.Now()

	s.sendLocked(msg)
}

// flushScroll is the timer callback for a pending scroll batch
func (s *InputService) flushScroll() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.flushScrollLocked()
}

// flushScrollLocked sends the accumulated scroll delta as one message.
// Caller holds the mutex.
func (s *InputService) flushScrollLocked() {
	if s.scroll.timer != nil {
		s.scroll.timer.Stop()
		s.scroll.timer = nil
	}

	if !s.scroll.pending {
		return
	}

	msg := model.NewMouseScrollMessage(s.scroll.amount)
	s.scroll.pending = false
	s.scroll.amount = 0
	s.scroll.lastFlush = time.Now()

	s.sendLocked(msg)
}
