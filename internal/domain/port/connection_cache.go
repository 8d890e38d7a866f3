package port

import "github.com/airmote/airmote-go-client/internal/domain/model"

// ConnectionCache persists the last successfully connected endpoint
type ConnectionCache interface {
	// Save records the endpoint and the current time as the cache entry
	Save(endpoint model.Endpoint) error

	// Load returns the entry only if present and not expired
	Load() (model.CachedConnection, bool)

	// Clear removes the entry
	Clear() error
}
