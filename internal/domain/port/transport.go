package port

import "github.com/airmote/airmote-go-client/internal/domain/model"

// Conn is a single live full-duplex message connection to the server
type Conn interface {
	// SendJSON encodes v as JSON and sends it as one text frame
	SendJSON(v interface{}) error

	// SendText sends a bare text frame
	SendText(text string) error

	// Close closes the connection. Safe to call more than once.
	Close()

	// IsOpen returns whether the connection is still usable
	IsOpen() bool
}

// Dialer opens connections to candidate endpoints.
// The onClosed callback fires exactly once, asynchronously, when the
// returned connection terminates for any reason other than a local Close.
type Dialer interface {
	Dial(endpoint model.Endpoint, onClosed func(err error)) (Conn, error)
}
