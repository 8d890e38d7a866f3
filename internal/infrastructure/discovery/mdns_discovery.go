package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/airmote/airmote-go-client/internal/domain/model"
	"github.com/airmote/airmote-go-client/internal/domain/port"
	"github.com/grandcat/zeroconf"
)

// MDNSDiscovery listens for mDNS advertisements of the input server.
// It keeps an explicit active flag so StopListening is safe from cleanup
// paths that do not know whether a session was ever started.
type MDNSDiscovery struct {
	serviceType   string
	nameSubstring string
	logger        port.Logger

	mutex  sync.Mutex
	active bool
	cancel context.CancelFunc
}

// NewMDNSDiscovery creates a discovery session factory for the given
// service type, matching advertisements whose instance name contains
// nameSubstring
func NewMDNSDiscovery(serviceType, nameSubstring string, logger port.Logger) *MDNSDiscovery {
	return &MDNSDiscovery{
		serviceType:   serviceType,
		nameSubstring: nameSubstring,
		logger:        logger,
	}
}

// StartListening begins browsing for advertisements. No-op when already active.
func (d *MDNSDiscovery) StartListening(onFound func(model.DiscoveredService)) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.active {
		return nil
	}

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("failed to create mDNS resolver: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	entries := make(chan *zeroconf.ServiceEntry, 8)

	if err := resolver.Browse(ctx, d.serviceType, "local.", entries); err != nil {
		cancel()
		return fmt.Errorf("failed to browse %s: %v", d.serviceType, err)
	}

	d.active = true
	d.cancel = cancel

	d.logger.Info("Listening for %s advertisements", d.serviceType)

	go d.consume(entries, onFound)

	return nil
}

// consume filters and resolves advertisements until the session is cancelled
func (d *MDNSDiscovery) consume(entries <-chan *zeroconf.ServiceEntry, onFound func(model.DiscoveredService)) {
	for entry := range entries {
		if entry == nil {
			continue
		}

		if !strings.Contains(entry.Instance, d.nameSubstring) {
			d.logger.Debug("Ignoring advertisement %q", entry.Instance)
			continue
		}

		endpoint, ok := entryEndpoint(entry)
		if !ok {
			// Resolution failure is not fatal, more advertisements may arrive
			d.logger.Warn("Could not resolve advertisement %q to an address", entry.Instance)
			continue
		}

		d.logger.Info("Discovered %q at %s", entry.Instance, endpoint.Addr())

		onFound(model.DiscoveredService{
			Name:     entry.Instance,
			Endpoint: endpoint,
			Resolved: true,
		})
	}
}

// entryEndpoint resolves a service entry to a concrete endpoint,
// preferring IPv4 addresses over the advertised hostname
func entryEndpoint(entry *zeroconf.ServiceEntry) (model.Endpoint, bool) {
	if entry.Port == 0 {
		return model.Endpoint{}, false
	}

	for _, ip := range entry.AddrIPv4 {
		if ip != nil && !ip.IsUnspecified() {
			return model.Endpoint{Host: ip.String(), Port: entry.Port}, true
		}
	}

	if host := strings.TrimSuffix(entry.HostName, "."); host != "" {
		return model.Endpoint{Host: host, Port: entry.Port}, true
	}

	return model.Endpoint{}, false
}

// StopListening stops the session. Safe to call even if never started.
func (d *MDNSDiscovery) StopListening() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if !d.active {
		return
	}

	d.cancel()
	d.cancel = nil
	d.active = false

	d.logger.Debug("Stopped listening for advertisements")
}

// IsActive returns whether a discovery session is running
func (d *MDNSDiscovery) IsActive() bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.active
}

// Ensure MDNSDiscovery implements port.Discovery
var _ port.Discovery = (*MDNSDiscovery)(nil)
