package service

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/airmote/airmote-go-client/internal/domain/model"
	"github.com/airmote/airmote-go-client/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSender records what the send path emits
type fakeSender struct {
	mu         sync.Mutex
	state      model.ConnectionState
	sent       []interface{}
	keepalives int
}

func (s *fakeSender) State() model.ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *fakeSender) Send(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, v)
	return nil
}

func (s *fakeSender) SendKeepAlive() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keepalives++
	return nil
}

func (s *fakeSender) setState(state model.ConnectionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

func (s *fakeSender) messages() []interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]interface{}, len(s.sent))
	copy(out, s.sent)
	return out
}

func (s *fakeSender) keepaliveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keepalives
}

func newTestInput(t *testing.T, mutators ...func(*model.Config)) (*InputService, *fakeSender) {
	t.Helper()

	cfg := model.NewConfig()
	cfg.MoveFlushInterval = 100 * time.Millisecond
	cfg.ScrollFlushInterval = 100 * time.Millisecond
	cfg.PingInterval = 20 * time.Millisecond
	for _, m := range mutators {
		m(cfg)
	}

	sender := &fakeSender{state: model.StateConnected}
	input := NewInputService(sender, cfg, logger.NewLogger(io.Discard, "error"))
	t.Cleanup(input.Close)

	return input, sender
}

func TestMoveCoalescing(t *testing.T) {
	input, sender := newTestInput(t)

	// First call flushes immediately since no flush happened recently
	input.MoveMouse(1, 1, true)
	require.Len(t, sender.messages(), 1)

	// Calls inside the interval accumulate into one message
	input.MoveMouse(2, 3, true)
	input.MoveMouse(4, 5, true)
	input.MoveMouse(-1, 2, true)
	require.Len(t, sender.messages(), 1)

	require.Eventually(t, func() bool {
		return len(sender.messages()) == 2
	}, time.Second, 2*time.Millisecond)

	msg, ok := sender.messages()[1].(*model.MouseMoveMessage)
	require.True(t, ok)
	assert.Equal(t, float64(5), msg.X)
	assert.Equal(t, float64(10), msg.Y)
	assert.True(t, msg.Relative)
}

func TestAbsoluteMoveReplacesPending(t *testing.T) {
	input, sender := newTestInput(t)

	input.MoveMouse(100, 100, false)
	require.Len(t, sender.messages(), 1)

	// Later absolute positions replace the pending one, last wins
	input.MoveMouse(200, 200, false)
	input.MoveMouse(300, 350, false)

	require.Eventually(t, func() bool {
		return len(sender.messages()) == 2
	}, time.Second, 2*time.Millisecond)

	msg, ok := sender.messages()[1].(*model.MouseMoveMessage)
	require.True(t, ok)
	assert.Equal(t, float64(300), msg.X)
	assert.Equal(t, float64(350), msg.Y)
	assert.False(t, msg.Relative)
}

func TestMixedModeFlushesBeforeSwitching(t *testing.T) {
	input, sender := newTestInput(t)

	input.MoveMouse(1, 1, true)
	input.MoveMouse(2, 2, true)

	// Switching to absolute flushes the pending relative batch first
	input.MoveMouse(500, 500, false)

	messages := sender.messages()
	require.Len(t, messages, 2)

	relative := messages[1].(*model.MouseMoveMessage)
	assert.True(t, relative.Relative)
	assert.Equal(t, float64(2), relative.X)

	require.Eventually(t, func() bool {
		return len(sender.messages()) == 3
	}, time.Second, 2*time.Millisecond)

	absolute := sender.messages()[2].(*model.MouseMoveMessage)
	assert.False(t, absolute.Relative)
	assert.Equal(t, float64(500), absolute.X)
}

func TestScrollCoalescing(t *testing.T) {
	input, sender := newTestInput(t)

	input.Scroll(1)
	require.Len(t, sender.messages(), 1)

	input.Scroll(2)
	input.Scroll(3)
	input.Scroll(-1)

	require.Eventually(t, func() bool {
		return len(sender.messages()) == 2
	}, time.Second, 2*time.Millisecond)

	msg, ok := sender.messages()[1].(*model.MouseScrollMessage)
	require.True(t, ok)
	assert.Equal(t, 4, msg.Amount)
}

func TestEventsDroppedWhileDisconnected(t *testing.T) {
	input, sender := newTestInput(t)
	sender.setState(model.StateDisconnected)

	input.MoveMouse(1, 1, true)
	input.Scroll(5)
	input.ClickMouse("left", 1, 0)
	input.PressKey("enter", false, false)
	input.TypeText("hello", 0)
	input.PressKeys([]string{"ctrl", "c"})

	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, sender.messages())
}

func TestClickFlushesPendingMovement(t *testing.T) {
	input, sender := newTestInput(t)

	input.MoveMouse(1, 1, true)
	input.MoveMouse(3, 4, true)
	input.ClickMouse("left", 1, 0)

	messages := sender.messages()
	require.Len(t, messages, 3)

	_, isMove := messages[1].(*model.MouseMoveMessage)
	assert.True(t, isMove)

	click, isClick := messages[2].(*model.MouseClickMessage)
	require.True(t, isClick)
	assert.Equal(t, "left", click.Button)
}

func TestImmediateEvents(t *testing.T) {
	input, sender := newTestInput(t)

	input.PressKey("enter", false, false)
	input.TypeText("hello world", 0.02)
	input.PressKeys([]string{"ctrl", "alt", "del"})

	messages := sender.messages()
	require.Len(t, messages, 3)

	key := messages[0].(*model.KeyPressMessage)
	assert.Equal(t, "enter", key.Key)

	text := messages[1].(*model.KeyTypeMessage)
	assert.Equal(t, "hello world", text.Text)

	combo := messages[2].(*model.MultipleKeysMessage)
	assert.Equal(t, []string{"ctrl", "alt", "del"}, combo.Keys)
}

func TestKeepAliveLoop(t *testing.T) {
	input, sender := newTestInput(t)

	input.StartKeepAlive()
	// Idempotent start
	input.StartKeepAlive()

	require.Eventually(t, func() bool {
		return sender.keepaliveCount() >= 2
	}, time.Second, 2*time.Millisecond)

	input.StopKeepAlive()
	count := sender.keepaliveCount()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, count, sender.keepaliveCount())

	// Stop is safe to repeat
	input.StopKeepAlive()
}

func TestKeepAliveSkipsWhileDisconnected(t *testing.T) {
	input, sender := newTestInput(t)
	sender.setState(model.StateReconnecting)

	input.StartKeepAlive()
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 0, sender.keepaliveCount())
}
