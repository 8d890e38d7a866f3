package transport

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/airmote/airmote-go-client/internal/domain/model"
	"github.com/airmote/airmote-go-client/internal/infrastructure/logger"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testServer is a minimal websocket input server that records every
// text frame it receives
type testServer struct {
	server   *httptest.Server
	upgrader websocket.Upgrader

	mu     sync.Mutex
	frames []string
	conns  []*websocket.Conn
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{}
	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := ts.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ts.mu.Lock()
		ts.conns = append(ts.conns, conn)
		ts.mu.Unlock()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			ts.mu.Lock()
			ts.frames = append(ts.frames, string(data))
			ts.mu.Unlock()
		}
	}))
	t.Cleanup(ts.server.Close)

	return ts
}

func (ts *testServer) endpoint(t *testing.T) model.Endpoint {
	t.Helper()

	host, portStr, err := net.SplitHostPort(ts.server.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	return model.Endpoint{Host: host, Port: port}
}

func (ts *testServer) received() []string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	out := make([]string, len(ts.frames))
	copy(out, ts.frames)
	return out
}

func (ts *testServer) dropConnections() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for _, conn := range ts.conns {
		conn.Close()
	}
	ts.conns = nil
}

func newTestDialer() *Dialer {
	return NewDialer(2*time.Second, logger.NewLogger(io.Discard, "error"))
}

func TestDialAndSend(t *testing.T) {
	ts := newTestServer(t)

	conn, err := newTestDialer().Dial(ts.endpoint(t), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.True(t, conn.IsOpen())

	require.NoError(t, conn.SendJSON(model.NewMouseMoveMessage(10, 20, true)))
	require.NoError(t, conn.SendText(model.KeepAliveFrame))

	require.Eventually(t, func() bool {
		return len(ts.received()) == 2
	}, 2*time.Second, 5*time.Millisecond)

	frames := ts.received()

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(frames[0]), &decoded))
	assert.Equal(t, "mouse_move", decoded["type"])
	assert.Equal(t, float64(10), decoded["x"])

	assert.Equal(t, model.KeepAliveFrame, frames[1])
}

func TestDialUnreachableEndpoint(t *testing.T) {
	// Grab a port nothing listens on
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	endpoint := model.Endpoint{
		Host: "127.0.0.1",
		Port: listener.Addr().(*net.TCPAddr).Port,
	}
	listener.Close()

	_, err = newTestDialer().Dial(endpoint, nil)
	assert.Error(t, err)
}

func TestRemoteCloseFiresCallbackOnce(t *testing.T) {
	ts := newTestServer(t)

	var mu sync.Mutex
	fired := 0
	conn, err := newTestDialer().Dial(ts.endpoint(t), func(err error) {
		mu.Lock()
		fired++
		mu.Unlock()
	})
	require.NoError(t, err)

	ts.dropConnections()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return fired == 1
	}, 2*time.Second, 5*time.Millisecond)

	assert.False(t, conn.IsOpen())
	assert.Error(t, conn.SendText("x"))

	// No second firing and Close stays safe after the remote close
	conn.Close()
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, 1, fired)
	mu.Unlock()
}

func TestLocalCloseSuppressesCallback(t *testing.T) {
	ts := newTestServer(t)

	var mu sync.Mutex
	fired := 0
	conn, err := newTestDialer().Dial(ts.endpoint(t), func(err error) {
		mu.Lock()
		fired++
		mu.Unlock()
	})
	require.NoError(t, err)

	conn.Close()
	assert.False(t, conn.IsOpen())

	// Give the read pump time to observe the close
	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, 0, fired)
	mu.Unlock()

	// Close is idempotent
	conn.Close()
	assert.Error(t, conn.SendText("x"))
}
