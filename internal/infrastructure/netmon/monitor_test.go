package netmon

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/airmote/airmote-go-client/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type linkSwitch struct {
	mu sync.Mutex
	up bool
}

func (l *linkSwitch) get() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.up
}

func (l *linkSwitch) set(up bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.up = up
}

type eventLog struct {
	mu     sync.Mutex
	events []bool
}

func (e *eventLog) record(up bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, up)
}

func (e *eventLog) snapshot() []bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]bool, len(e.events))
	copy(out, e.events)
	return out
}

func newTestMonitor(t *testing.T, debounce time.Duration) (*Monitor, *linkSwitch, *eventLog) {
	t.Helper()

	link := &linkSwitch{up: true}
	events := &eventLog{}

	m := NewMonitor(5*time.Millisecond, debounce, logger.NewLogger(io.Discard, "error"))
	m.linkUp = link.get
	t.Cleanup(m.Stop)

	return m, link, events
}

func TestMonitorReportsTransitions(t *testing.T) {
	m, link, events := newTestMonitor(t, 10*time.Millisecond)
	require.NoError(t, m.Start(events.record))

	link.set(false)
	require.Eventually(t, func() bool {
		return len(events.snapshot()) == 1
	}, time.Second, time.Millisecond)

	link.set(true)
	require.Eventually(t, func() bool {
		return len(events.snapshot()) == 2
	}, time.Second, time.Millisecond)

	assert.Equal(t, []bool{false, true}, events.snapshot())
}

func TestMonitorIgnoresStableLink(t *testing.T) {
	m, _, events := newTestMonitor(t, 10*time.Millisecond)
	require.NoError(t, m.Start(events.record))

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, events.snapshot())
}

func TestMonitorDebouncesFlappingLink(t *testing.T) {
	m, link, events := newTestMonitor(t, time.Hour)
	require.NoError(t, m.Start(events.record))

	// First recovery passes, the second lands inside the debounce window
	for i := 0; i < 2; i++ {
		link.set(false)
		require.Eventually(t, func() bool {
			snapshot := events.snapshot()
			return len(snapshot) > 0 && !snapshot[len(snapshot)-1]
		}, time.Second, time.Millisecond)
		link.set(true)
		time.Sleep(30 * time.Millisecond)
	}

	assert.Equal(t, []bool{false, true, false}, events.snapshot())
}

func TestMonitorStartStopIdempotent(t *testing.T) {
	m, _, events := newTestMonitor(t, 10*time.Millisecond)

	require.NoError(t, m.Start(events.record))
	require.NoError(t, m.Start(events.record))

	m.Stop()
	m.Stop()
}
