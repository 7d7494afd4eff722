package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/ods-client/internal/constants"
)

// Config represents the CLI configuration.
type Config struct {
	APIKey     string `json:"api_key,omitempty"     yaml:"api_key,omitempty"`
	UniverseID string `json:"universe_id,omitempty" yaml:"universe_id,omitempty"`
	BaseURL    string `json:"base_url,omitempty"    yaml:"base_url,omitempty"`
	Output     string `json:"output,omitempty"      yaml:"output,omitempty"`
	Retries    int    `json:"retries,omitempty"     yaml:"retries,omitempty"`
}

// masked returns a copy safe to display.
func (c Config) masked() Config {
	if c.APIKey != "" {
		c.APIKey = constants.MaskedValue
	}

	return c
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the settings stored in the ODS CLI configuration file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective CLI configuration with the API key masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			config := loadConfig().masked()

			done, err := renderStructured(cmd.OutOrStdout(), format, config)
			if done || err != nil {
				return err
			}

			return displayConfigTable(cmd.OutOrStdout(), config)
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: api_key, universe_id, base_url, output, retries",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value from the configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := unsetConfigValue(config, args[0])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return nil
		},
	}
}

func loadConfig() *Config {
	return &Config{
		APIKey:     viper.GetString(KeyAPIKey),
		UniverseID: viper.GetString(KeyUniverseID),
		BaseURL:    viper.GetString(KeyBaseURL),
		Output:     viper.GetString(KeyOutput),
		Retries:    viper.GetInt(KeyRetries),
	}
}

func setConfigValue(config *Config, key, value string) error {
	switch key {
	case KeyAPIKey:
		if value == "" {
			return constants.ErrEmptyAPIKey
		}

		config.APIKey = value
	case KeyUniverseID:
		id, err := strconv.ParseUint(value, 10, 64)
		if err != nil || id == 0 {
			return fmt.Errorf("%w: universe id %q", ErrInvalidValue, value)
		}

		config.UniverseID = value
	case KeyBaseURL:
		config.BaseURL = value
	case KeyOutput:
		switch value {
		case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
			config.Output = value
		default:
			return fmt.Errorf("%w: %q", constants.ErrInvalidOutputFormat, value)
		}
	case KeyRetries:
		retries, err := strconv.Atoi(value)
		if err != nil || retries < 0 {
			return fmt.Errorf("%w: retries %q", ErrInvalidValue, value)
		}

		config.Retries = retries
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	viper.Set(key, value)

	return nil
}

func unsetConfigValue(config *Config, key string) error {
	switch key {
	case KeyAPIKey:
		config.APIKey = ""
	case KeyUniverseID:
		config.UniverseID = ""
	case KeyBaseURL:
		config.BaseURL = ""
	case KeyOutput:
		config.Output = ""
	case KeyRetries:
		config.Retries = 0
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	viper.Set(key, "")

	return nil
}

// configFilePath returns the file in use, defaulting to ~/.ods/config.yml.
func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".ods", "config.yml"), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func displayConfigTable(w io.Writer, config Config) error {
	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	_ = table.Append("API Key", valueOrUnset(config.APIKey))
	_ = table.Append("Universe ID", valueOrUnset(config.UniverseID))
	_ = table.Append("Base URL", valueOrDefault(config.BaseURL, constants.DefaultBaseURL))
	_ = table.Append("Output", valueOrDefault(config.Output, constants.FormatTable))
	_ = table.Append("Retries", strconv.Itoa(config.Retries))

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func valueOrUnset(value string) string {
	if value == "" {
		return "(not set)"
	}

	return value
}

func valueOrDefault(value, fallback string) string {
	if value == "" {
		return fallback + " (default)"
	}

	return value
}
