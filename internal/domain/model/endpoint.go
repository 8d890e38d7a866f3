package model

import (
	"net"
	"strconv"
	"time"
)

// Endpoint identifies a candidate server location
type Endpoint struct {
	// Host is the server hostname or IP address
	Host string `json:"host" mapstructure:"host"`
	// Port is the server port
	Port int `json:"port" mapstructure:"port"`
}

// Addr returns the endpoint as a dialable host:port string
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// IsZero reports whether the endpoint is unset
func (e Endpoint) IsZero() bool {
	return e.Host == "" || e.Port == 0
}

// CachedConnection is the last successfully connected endpoint
type CachedConnection struct {
	// Endpoint is the cached server location
	Endpoint Endpoint `json:"endpoint"`
	// LastSuccess is when the endpoint last connected successfully
	LastSuccess time.Time `json:"last_success"`
}

// Fresh reports whether the entry is still inside the freshness window
func (c CachedConnection) Fresh(window time.Duration, now time.Time) bool {
	return !c.LastSuccess.IsZero() && now.Sub(c.LastSuccess) < window
}

// DiscoveredService is a resolved service advertisement found on the local network
type DiscoveredService struct {
	// Name is the advertised instance name
	Name string
	// Endpoint is the resolved server location
	Endpoint Endpoint
	// Resolved indicates the advertisement was resolved to a concrete address
	Resolved bool
}

// ConnectionState is the single authoritative connection state observed by callers
type ConnectionState string

const (
	// StateDisconnected means no connection and no attempt in progress
	StateDisconnected ConnectionState = "disconnected"
	// StateConnecting means an initial connection attempt is in progress
	StateConnecting ConnectionState = "connecting"
	// StateConnected means a live transport is established
	StateConnected ConnectionState = "connected"
	// StateReconnecting means the reconnect loop is driving retries
	StateReconnecting ConnectionState = "reconnecting"
)

// Strategy determines which source supplies the next endpoint to try
type Strategy string

const (
	// StrategyCachedAddress tries the persisted last-known endpoint
	StrategyCachedAddress Strategy = "cached_address"
	// StrategyDiscovery waits for an mDNS advertisement to resolve
	StrategyDiscovery Strategy = "discovery"
	// StrategyDomainFallback tries the well-known fallback domain
	StrategyDomainFallback Strategy = "domain_fallback"
)

// strategyCycle maps each strategy to the one tried after it fails.
// CachedAddress is never cycled back to; it is re-entered only when a
// fresh cache entry exists (see ConnectionService.nextCandidate).
var strategyCycle = map[Strategy]Strategy{
	StrategyCachedAddress:  StrategyDiscovery,
	StrategyDiscovery:      StrategyDomainFallback,
	StrategyDomainFallback: StrategyDiscovery,
}

// NextStrategy returns the strategy tried after the given one
func NextStrategy(s Strategy) Strategy {
	next, ok := strategyCycle[s]
	if !ok {
		return StrategyDiscovery
	}
	return next
}
