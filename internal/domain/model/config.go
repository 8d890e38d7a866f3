package model

import (
	"os"
	"path/filepath"
	"time"
)

// LogLevel defines logging levels
type LogLevel string

const (
	// LogLevelDebug is the level for debug messages
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the level for informational messages
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn is the level for warning messages
	LogLevelWarn LogLevel = "warn"
	// LogLevelError is the level for error messages
	LogLevelError LogLevel = "error"
)

// Config is the configuration structure for the airmote client
type Config struct {
	// ServerPort is the default port the input server listens on
	ServerPort int
	// ServiceType is the mDNS service type advertised by the server
	ServiceType string
	// ServiceName is the substring that must appear in a matching advertisement name
	ServiceName string
	// FallbackDomain is the last-resort host tried when discovery finds nothing
	FallbackDomain string
	// ConnectTimeout is the websocket handshake timeout
	ConnectTimeout time.Duration
	// GracePeriod is how long a cached-address attempt may run before discovery starts
	GracePeriod time.Duration
	// DiscoveryWindow is how long discovery may run before the fallback domain is tried
	DiscoveryWindow time.Duration
	// MaxReconnectAttempts bounds the reconnect loop
	MaxReconnectAttempts int
	// BackoffBase is the per-attempt reconnect delay multiplier
	BackoffBase time.Duration
	// BackoffCeiling caps the reconnect delay
	BackoffCeiling time.Duration
	// PortProbeCount is how many consecutive ports are tried per host
	PortProbeCount int
	// PortProbeDelay is the pause between port probes
	PortProbeDelay time.Duration
	// PingInterval is the keep-alive send interval while connected
	PingInterval time.Duration
	// MoveFlushInterval is the pointer-move coalescing interval
	MoveFlushInterval time.Duration
	// ScrollFlushInterval is the scroll coalescing interval
	ScrollFlushInterval time.Duration
	// CacheTTL is the freshness window for the cached endpoint
	CacheTTL time.Duration
	// CachePath is the path to the cached endpoint file (empty for default)
	CachePath string
	// LogLevel is the logging level (debug, info, warn, error)
	LogLevel LogLevel
	// LogFile is the path to log file (empty for stdout)
	LogFile string
}

// NewConfig creates a new Config instance with default values
func NewConfig() *Config {
	return &Config{
		ServerPort:           8765,
		ServiceType:          "_airmote._tcp",
		ServiceName:          "Airmote",
		FallbackDomain:       "remote-control.local",
		ConnectTimeout:       4 * time.Second,
		GracePeriod:          2 * time.Second,
		DiscoveryWindow:      3 * time.Second,
		MaxReconnectAttempts: 10,
		BackoffBase:          1 * time.Second,
		BackoffCeiling:       10 * time.Second,
		PortProbeCount:       3,
		PortProbeDelay:       300 * time.Millisecond,
		PingInterval:         30 * time.Second,
		MoveFlushInterval:    16 * time.Millisecond,
		ScrollFlushInterval:  50 * time.Millisecond,
		CacheTTL:             24 * time.Hour,
		CachePath:            "",
		LogLevel:             LogLevelInfo,
		LogFile:              "",
	}
}

// FallbackEndpoint returns the domain-fallback endpoint
func (c *Config) FallbackEndpoint() Endpoint {
	return Endpoint{Host: c.FallbackDomain, Port: c.ServerPort}
}

// ConfigDir returns the directory holding config and cache files
func ConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".airmote"
	}
	return filepath.Join(homeDir, ".airmote")
}

// GetConfigFilePath returns the path to the configuration file
func (c *Config) GetConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// GetCacheFilePath returns the path to the cached endpoint file
func (c *Config) GetCacheFilePath() string {
	if c.CachePath != "" {
		return c.CachePath
	}
	return filepath.Join(ConfigDir(), "cache.yaml")
}
