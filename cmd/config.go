package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// configCmd is the command to manage configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Manage Airmote Client configuration.`,
}

// configShowCmd is the command to display configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show configuration",
	Long:  `Display Airmote Client configuration.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := Container.Config

		fmt.Println("Airmote Client Configuration:")
		fmt.Printf("Server Port: %d\n", cfg.ServerPort)
		fmt.Printf("Service Type: %s\n", cfg.ServiceType)
		fmt.Printf("Service Name: %s\n", cfg.ServiceName)
		fmt.Printf("Fallback Domain: %s\n", cfg.FallbackDomain)
		fmt.Printf("Max Reconnect Attempts: %d\n", cfg.MaxReconnectAttempts)
		fmt.Printf("Backoff: %s base, %s ceiling\n", cfg.BackoffBase, cfg.BackoffCeiling)
		fmt.Printf("Cache TTL: %s\n", cfg.CacheTTL)
		fmt.Printf("Log Level: %s\n", cfg.LogLevel)
		fmt.Printf("Log File: %s\n", cfg.LogFile)

		if entry, ok := Container.ConnectionCache.Peek(); ok {
			age := time.Since(entry.LastSuccess).Round(time.Minute)
			fmt.Printf("\nCached endpoint: %s (last success %s ago)\n", entry.Endpoint.Addr(), age)
		} else {
			fmt.Println("\nCached endpoint: none")
		}
	},
}

// configSetCmd is the command to set configuration
var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set configuration",
	Long: `Set Airmote Client configuration.
Examples:
  airmote config set server_port 8765
  airmote config set service_name Airmote
  airmote config set fallback_domain remote-control.local
  airmote config set max_reconnect_attempts 10
  airmote config set log_level debug
  airmote config set log_file /path/to/log.txt`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]
		value := args[1]

		switch key {
		case "server_port":
			port, err := strconv.Atoi(value)
			if err != nil {
				fmt.Printf("Error: Port must be a number: %v\n", err)
				os.Exit(1)
			}
			Container.ConfigService.SetServerPort(Container.Config, port)
		case "service_name":
			Container.ConfigService.SetServiceName(Container.Config, value)
		case "fallback_domain":
			Container.ConfigService.SetFallbackDomain(Container.Config, value)
		case "max_reconnect_attempts":
			attempts, err := strconv.Atoi(value)
			if err != nil {
				fmt.Printf("Error: Attempts must be a number: %v\n", err)
				os.Exit(1)
			}
			Container.ConfigService.SetMaxReconnectAttempts(Container.Config, attempts)
		case "log_level":
			Container.ConfigService.SetLogLevel(Container.Config, value)
		case "log_file":
			Container.ConfigService.SetLogFile(Container.Config, value)
		default:
			fmt.Printf("Error: Invalid configuration key: %s\n", key)
			os.Exit(1)
		}

		if err := Container.ConfigService.SaveConfig(Container.Config, ConfigPath); err != nil {
			fmt.Printf("Error: Failed to save configuration: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Configuration %s successfully changed to %s\n", key, value)
	},
}

// configResetCacheCmd is the command to clear the cached endpoint,
// forcing fresh discovery on the next connection
var configResetCacheCmd = &cobra.Command{
	Use:   "reset-cache",
	Short: "Clear the cached endpoint",
	Long:  `Remove the cached server endpoint so the next connection goes through fresh discovery.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := Container.ConnectionCache.Clear(); err != nil {
			fmt.Printf("Error: Failed to clear cache: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Cached endpoint cleared")
	},
}

func init() {
	RootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configResetCacheCmd)
}
