package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/dittobank/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `Manage DittoBank configuration files.

Subcommands:
  init  Write a default configuration file
  show  Display the effective configuration`,
}

var configInitForce bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a configuration file populated with the default values.

By default the file is created at ~/.dittobank/config.yaml. Use the global
--config flag to choose a custom path.

Examples:
  # Initialize with default location
  dittobank config init

  # Initialize with custom path
  dittobank --config /etc/dittobank/config.yaml config init

  # Force overwrite an existing config
  dittobank config init --force`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long: `Display the configuration the server would start with, after merging
the config file, environment variables, and defaults.`,
	RunE: runConfigShow,
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Force overwrite existing config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := GetConfigFile()
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	if _, err := os.Stat(configPath); err == nil && !configInitForce {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", configPath)
	}

	if err := config.SaveConfig(config.GetDefaultConfig(), configPath); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to customize your setup")
	fmt.Println("  2. Start the server with: dittobank start")
	fmt.Printf("  3. Or specify custom config: dittobank start --config %s\n", configPath)

	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	fmt.Print(string(data))
	return nil
}
