package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/airmote/airmote-go-client/internal/domain/model"
	"github.com/airmote/airmote-go-client/internal/domain/port"
	"github.com/spf13/viper"
)

// ConnectionCache persists the last successfully connected endpoint as a
// small YAML record. Entries older than the freshness window load as absent
// but are left on disk for inspection; only Clear removes them.
type ConnectionCache struct {
	path   string
	ttl    time.Duration
	mutex  sync.Mutex
	logger port.Logger

	// now is replaceable for tests
	now func() time.Time
}

// NewConnectionCache creates a cache backed by the file at path
func NewConnectionCache(path string, ttl time.Duration, logger port.Logger) *ConnectionCache {
	return &ConnectionCache{
		path:   path,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Save records the endpoint and the current time as the cache entry
func (c *ConnectionCache) Save(endpoint model.Endpoint) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if endpoint.IsZero() {
		return fmt.Errorf("refusing to cache empty endpoint")
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("error creating cache directory: %v", err)
	}

	v := viper.New()
	v.SetConfigFile(c.path)
	v.Set("host", endpoint.Host)
	v.Set("port", endpoint.Port)
	v.Set("last_success", c.now().Unix())

	if err := v.WriteConfigAs(c.path); err != nil {
		return fmt.Errorf("error writing cache file: %v", err)
	}

	c.logger.Debug("Cached endpoint %s", endpoint.Addr())
	return nil
}

// Load returns the entry only if present and not expired
func (c *ConnectionCache) Load() (model.CachedConnection, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, ok := c.read()
	if !ok {
		return model.CachedConnection{}, false
	}

	if !entry.Fresh(c.ttl, c.now()) {
		c.logger.Debug("Cached endpoint %s expired (last success %s)",
			entry.Endpoint.Addr(), entry.LastSuccess.Format(time.RFC3339))
		return model.CachedConnection{}, false
	}

	return entry, true
}

// Peek returns the raw entry regardless of freshness, for inspection
func (c *ConnectionCache) Peek() (model.CachedConnection, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.read()
}

// Clear removes the entry
func (c *ConnectionCache) Clear() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err := os.Remove(c.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("error removing cache file: %v", err)
	}

	c.logger.Debug("Cleared cached endpoint")
	return nil
}

// read loads the raw record from disk. Caller holds the mutex.
func (c *ConnectionCache) read() (model.CachedConnection, bool) {
	if _, err := os.Stat(c.path); os.IsNotExist(err) {
		return model.CachedConnection{}, false
	}

	v := viper.New()
	v.SetConfigFile(c.path)
	if err := v.ReadInConfig(); err != nil {
		c.logger.Warn("Failed to read cache file: %v", err)
		return model.CachedConnection{}, false
	}

	entry := model.CachedConnection{
		Endpoint: model.Endpoint{
			Host: v.GetString("host"),
			Port: v.GetInt("port"),
		},
		LastSuccess: time.Unix(v.GetInt64("last_success"), 0),
	}

	if entry.Endpoint.IsZero() {
		return model.CachedConnection{}, false
	}

	return entry, true
}

// Ensure ConnectionCache implements port.ConnectionCache
var _ port.ConnectionCache = (*ConnectionCache)(nil)
