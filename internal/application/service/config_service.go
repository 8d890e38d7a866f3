package service

import (
	"fmt"

	"github.com/airmote/airmote-go-client/internal/domain/model"
	"github.com/airmote/airmote-go-client/internal/domain/port"
)

// ConfigService is a service for managing configuration
type ConfigService struct {
	configRepo port.ConfigRepository
	logger     port.Logger
}

// NewConfigService creates a new ConfigService instance
func NewConfigService(configRepo port.ConfigRepository, logger port.Logger) *ConfigService {
	return &ConfigService{
		configRepo: configRepo,
		logger:     logger,
	}
}

// LoadConfig loads configuration from a file
func (s *ConfigService) LoadConfig(configPath string) (*model.Config, error) {
	// If configPath is empty, use the default path
	if configPath == "" {
		var err error
		configPath, err = s.configRepo.GetDefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get default path: %v", err)
		}
	}

	config, err := s.configRepo.Load(configPath)
	if err != nil {
		s.logger.Warn("Failed to load configuration from %s: %v", configPath, err)
		// Return default configuration if loading fails
		return model.NewConfig(), nil
	}

	s.logger.Info("Configuration loaded from %s", configPath)

	return config, nil
}

// SaveConfig saves configuration to a file
func (s *ConfigService) SaveConfig(config *model.Config, configPath string) error {
	// If configPath is empty, use the default path
	if configPath == "" {
		var err error
		configPath, err = s.configRepo.GetDefaultPath()
		if err != nil {
			return fmt.Errorf("failed to get default path: %v", err)
		}
	}

	if err := s.configRepo.Save(config, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %v", err)
	}

	s.logger.Info("Configuration saved to %s", configPath)

	return nil
}

// SetServerPort sets the default server port
func (s *ConfigService) SetServerPort(config *model.Config, port int) {
	config.ServerPort = port
}

// SetServiceName sets the advertisement name substring
func (s *ConfigService) SetServiceName(config *model.Config, name string) {
	config.ServiceName = name
}

// SetFallbackDomain sets the fallback host
func (s *ConfigService) SetFallbackDomain(config *model.Config, domain string) {
	config.FallbackDomain = domain
}

// SetMaxReconnectAttempts sets the reconnect attempt ceiling
func (s *ConfigService) SetMaxReconnectAttempts(config *model.Config, attempts int) {
	config.MaxReconnectAttempts = attempts
}

// SetLogLevel sets the log level
func (s *ConfigService) SetLogLevel(config *model.Config, logLevel string) {
	config.LogLevel = model.LogLevel(logLevel)
}

// SetLogFile sets the log file
func (s *ConfigService) SetLogFile(config *model.Config, logFile string) {
	config.LogFile = logFile
}
