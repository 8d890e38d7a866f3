package port

import "github.com/airmote/airmote-go-client/internal/domain/model"

// Discovery listens for service advertisements on the local network
type Discovery interface {
	// StartListening begins listening for advertisements and reports
	// matching resolved services through onFound. Calling it while
	// already active is a no-op. A returned error means listening could
	// not start and the caller must fall back to another strategy.
	StartListening(onFound func(model.DiscoveredService)) error

	// StopListening stops listening. Safe to call even if never started.
	StopListening()

	// IsActive returns whether a discovery session is running
	IsActive() bool
}
