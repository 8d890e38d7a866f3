package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/airmote/airmote-go-client/internal/domain/model"
	"github.com/airmote/airmote-go-client/internal/domain/port"
	"github.com/spf13/viper"
)

// ConfigRepository is an implementation of port.ConfigRepository
type ConfigRepository struct{}

// NewConfigRepository creates a new ConfigRepository instance
func NewConfigRepository() *ConfigRepository {
	return &ConfigRepository{}
}

// Load loads configuration from file
func (r *ConfigRepository) Load(configPath string) (*model.Config, error) {
	config := model.NewConfig()

	// If configPath is empty, look in the default location
	if configPath == "" {
		var err error
		configPath, err = r.GetDefaultPath()
		if err != nil {
			return nil, err
		}
	}

	// Missing file means defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config, nil
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	// Map from viper to Config struct, keeping defaults for absent keys
	if v.IsSet("server_port") {
		config.ServerPort = v.GetInt("server_port")
	}
	if v.IsSet("service_type") {
		config.ServiceType = v.GetString("service_type")
	}
	if v.IsSet("service_name") {
		config.ServiceName = v.GetString("service_name")
	}
	if v.IsSet("fallback_domain") {
		config.FallbackDomain = v.GetString("fallback_domain")
	}
	if v.IsSet("connect_timeout") {
		config.ConnectTimeout = v.GetDuration("connect_timeout")
	}
	if v.IsSet("grace_period") {
		config.GracePeriod = v.GetDuration("grace_period")
	}
	if v.IsSet("discovery_window") {
		config.DiscoveryWindow = v.GetDuration("discovery_window")
	}
	if v.IsSet("max_reconnect_attempts") {
		config.MaxReconnectAttempts = v.GetInt("max_reconnect_attempts")
	}
	if v.IsSet("backoff_base") {
		config.BackoffBase = v.GetDuration("backoff_base")
	}
	if v.IsSet("backoff_ceiling") {
		config.BackoffCeiling = v.GetDuration("backoff_ceiling")
	}
	if v.IsSet("port_probe_count") {
		config.PortProbeCount = v.GetInt("port_probe_count")
	}
	if v.IsSet("port_probe_delay") {
		config.PortProbeDelay = v.GetDuration("port_probe_delay")
	}
	if v.IsSet("ping_interval") {
		config.PingInterval = v.GetDuration("ping_interval")
	}
	if v.IsSet("move_flush_interval") {
		config.MoveFlushInterval = v.GetDuration("move_flush_interval")
	}
	if v.IsSet("scroll_flush_interval") {
		config.ScrollFlushInterval = v.GetDuration("scroll_flush_interval")
	}
	if v.IsSet("cache_ttl_hours") {
		config.CacheTTL = time.Duration(v.GetInt("cache_ttl_hours")) * time.Hour
	}
	if v.IsSet("cache_path") {
		config.CachePath = v.GetString("cache_path")
	}
	if v.IsSet("log_level") {
		config.LogLevel = model.LogLevel(v.GetString("log_level"))
	}
	if v.IsSet("log_file") {
		config.LogFile = v.GetString("log_file")
	}

	return config, nil
}

// Save saves configuration to file
func (r *ConfigRepository) Save(config *model.Config, configPath string) error {
	// If configPath is empty, use default location
	if configPath == "" {
		var err error
		configPath, err = r.GetDefaultPath()
		if err != nil {
			return err
		}
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %v", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("server_port", config.ServerPort)
	v.Set("service_type", config.ServiceType)
	v.Set("service_name", config.ServiceName)
	v.Set("fallback_domain", config.FallbackDomain)
	v.Set("connect_timeout", config.ConnectTimeout.String())
	v.Set("grace_period", config.GracePeriod.String())
	v.Set("discovery_window", config.DiscoveryWindow.String())
	v.Set("max_reconnect_attempts", config.MaxReconnectAttempts)
	v.Set("backoff_base", config.BackoffBase.String())
	v.Set("backoff_ceiling", config.BackoffCeiling.String())
	v.Set("port_probe_count", config.PortProbeCount)
	v.Set("port_probe_delay", config.PortProbeDelay.String())
	v.Set("ping_interval", config.PingInterval.String())
	v.Set("move_flush_interval", config.MoveFlushInterval.String())
	v.Set("scroll_flush_interval", config.ScrollFlushInterval.String())
	v.Set("cache_ttl_hours", int(config.CacheTTL/time.Hour))
	v.Set("cache_path", config.CachePath)
	v.Set("log_level", string(config.LogLevel))
	v.Set("log_file", config.LogFile)

	if err := v.WriteConfig(); err != nil {
		// If file doesn't exist, create new one
		if strings.Contains(err.Error(), "no such file") {
			return v.SafeWriteConfig()
		}
		return fmt.Errorf("error saving configuration: %v", err)
	}

	return nil
}

// GetDefaultPath returns the default path for configuration file
func (r *ConfigRepository) GetDefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting home directory: %v", err)
	}

	return filepath.Join(homeDir, ".airmote", "config.yaml"), nil
}

// Ensure ConfigRepository implements port.ConfigRepository
var _ port.ConfigRepository = (*ConfigRepository)(nil)
