package port

// NetworkMonitor observes link-level connectivity transitions.
// Loss events are delivered immediately; availability events are
// debounced by the implementation.
type NetworkMonitor interface {
	// Start begins observing. onChange receives true when the link
	// becomes available and false when it is lost.
	Start(onChange func(available bool)) error

	// Stop stops observing. Safe to call more than once.
	Stop()
}
