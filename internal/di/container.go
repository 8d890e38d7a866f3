package di

import (
	"os"
	"time"

	"github.com/airmote/airmote-go-client/internal/application/service"
	"github.com/airmote/airmote-go-client/internal/domain/model"
	"github.com/airmote/airmote-go-client/internal/infrastructure/cache"
	"github.com/airmote/airmote-go-client/internal/infrastructure/config"
	"github.com/airmote/airmote-go-client/internal/infrastructure/discovery"
	"github.com/airmote/airmote-go-client/internal/infrastructure/logger"
	"github.com/airmote/airmote-go-client/internal/infrastructure/netmon"
	"github.com/airmote/airmote-go-client/internal/infrastructure/transport"
)

// Container is a container for dependency injection
type Container struct {
	// Logger
	Logger *logger.Logger

	// Repositories
	ConfigRepository *config.ConfigRepository
	ConnectionCache  *cache.ConnectionCache

	// Services
	ConfigService     *service.ConfigService
	ConnectionService *service.ConnectionService
	InputService      *service.InputService

	// Infrastructure
	Discovery *discovery.MDNSDiscovery
	Dialer    *transport.Dialer
	Monitor   *netmon.Monitor

	// Config
	Config *model.Config
}

// NewContainer creates a new Container instance
func NewContainer() *Container {
	return &Container{}
}

// Initialize initializes the container
func (c *Container) Initialize(configPath string) error {
	// Initialize logger
	c.Logger = logger.NewLogger(os.Stdout, "info")

	// Initialize config repository and service
	c.ConfigRepository = config.NewConfigRepository()
	c.ConfigService = service.NewConfigService(c.ConfigRepository, c.Logger)

	// Load configuration
	var err error
	c.Config, err = c.ConfigService.LoadConfig(configPath)
	if err != nil {
		return err
	}

	// Set logger level based on configuration
	c.Logger.SetLevel(string(c.Config.LogLevel))

	// If log file is specified, switch to a file logger
	if c.Config.LogFile != "" {
		fileLogger, err := logger.NewFileLogger(c.Config.LogFile, string(c.Config.LogLevel))
		if err != nil {
			c.Logger.Error("Failed to create file logger: %v", err)
		} else {
			c.Logger = fileLogger
		}
	}

	// Initialize the connection core
	c.ConnectionCache = cache.NewConnectionCache(c.Config.GetCacheFilePath(), c.Config.CacheTTL, c.Logger)
	c.Discovery = discovery.NewMDNSDiscovery(c.Config.ServiceType, c.Config.ServiceName, c.Logger)
	c.Dialer = transport.NewDialer(c.Config.ConnectTimeout, c.Logger)
	c.Monitor = netmon.NewMonitor(2*time.Second, 5*time.Second, c.Logger)

	c.ConnectionService = service.NewConnectionService(
		c.Config,
		c.ConnectionCache,
		c.Discovery,
		c.Dialer,
		c.Monitor,
		c.Logger,
	)

	// Initialize the send path
	c.InputService = service.NewInputService(c.ConnectionService, c.Config, c.Logger)

	return nil
}

// Close closes all resources
func (c *Container) Close() {
	if c.InputService != nil {
		c.InputService.Close()
	}

	if c.ConnectionService != nil {
		c.ConnectionService.Close()
	}

	if c.Logger != nil {
		c.Logger.Close()
	}
}
