package transport

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/airmote/airmote-go-client/internal/domain/model"
	"github.com/airmote/airmote-go-client/internal/domain/port"
	"github.com/gorilla/websocket"
)

// Dialer opens websocket connections to candidate endpoints
type Dialer struct {
	handshakeTimeout time.Duration
	logger           port.Logger
}

// NewDialer creates a new Dialer instance
func NewDialer(handshakeTimeout time.Duration, logger port.Logger) *Dialer {
	return &Dialer{
		handshakeTimeout: handshakeTimeout,
		logger:           logger,
	}
}

// Dial opens a connection to the endpoint. onClosed fires exactly once,
// asynchronously, when the connection terminates for any reason other
// than a local Close.
func (d *Dialer) Dial(endpoint model.Endpoint, onClosed func(err error)) (port.Conn, error) {
	serverURL := url.URL{Scheme: "ws", Host: endpoint.Addr(), Path: "/"}

	d.logger.Debug("Dialing %s", serverURL.String())

	dialer := websocket.Dialer{HandshakeTimeout: d.handshakeTimeout}
	wsConn, _, err := dialer.Dial(serverURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %v", endpoint.Addr(), err)
	}

	conn := &Conn{
		conn:     wsConn,
		endpoint: endpoint,
		logger:   d.logger,
		onClosed: onClosed,
		open:     true,
	}

	go conn.readPump()

	d.logger.Info("Connected to %s", endpoint.Addr())

	return conn, nil
}

// Conn is a single live websocket connection to the input server
type Conn struct {
	conn     *websocket.Conn
	endpoint model.Endpoint
	logger   port.Logger
	onClosed func(err error)

	mutex       sync.Mutex
	open        bool
	localClose  bool
	closedFired bool
}

// SendJSON encodes v as JSON and sends it as one text frame
func (c *Conn) SendJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to convert message to JSON: %v", err)
	}
	return c.write(data)
}

// SendText sends a bare text frame
func (c *Conn) SendText(text string) error {
	return c.write([]byte(text))
}

// write sends one text frame, marking the connection unusable on failure
func (c *Conn) write(data []byte) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.open {
		return fmt.Errorf("connection to %s is closed", c.endpoint.Addr())
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.open = false
		return fmt.Errorf("failed to send message: %v", err)
	}

	return nil
}

// Close closes the connection without firing onClosed. Safe to call more than once.
func (c *Conn) Close() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.localClose {
		return
	}

	c.localClose = true
	c.open = false
	c.conn.Close()

	c.logger.Debug("Closed connection to %s", c.endpoint.Addr())
}

// IsOpen returns whether the connection is still usable
func (c *Conn) IsOpen() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.open
}

// readPump drains incoming frames until the connection terminates. The
// client only sends; reading exists to detect the close and to discard
// anything the server pushes (pong frames, acknowledgements).
func (c *Conn) readPump() {
	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			c.terminated(err)
			return
		}
	}
}

// terminated reports an asynchronous close exactly once, unless the
// close was requested locally
func (c *Conn) terminated(err error) {
	c.mutex.Lock()
	c.open = false
	local := c.localClose
	fired := c.closedFired
	c.closedFired = true
	c.mutex.Unlock()

	if local || fired {
		return
	}

	if websocket.IsUnexpectedCloseError(err) {
		c.logger.Warn("Connection to %s closed unexpectedly: %v", c.endpoint.Addr(), err)
	} else {
		c.logger.Debug("Connection to %s terminated: %v", c.endpoint.Addr(), err)
	}

	c.conn.Close()

	if c.onClosed != nil {
		c.onClosed(err)
	}
}

// Ensure the websocket types implement the transport ports
var (
	_ port.Dialer = (*Dialer)(nil)
	_ port.Conn   = (*Conn)(nil)
)
