package port

import "github.com/airmote/airmote-go-client/internal/domain/model"

// ConfigRepository is an interface for loading and saving configuration
type ConfigRepository interface {
	// Load loads configuration from a file
	Load(configPath string) (*model.Config, error)

	// Save saves configuration to a file
	Save(config *model.Config, configPath string) error

	// GetDefaultPath returns the default path for the configuration file
	GetDefaultPath() (string, error)
}
