package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/couchbeans/internal/constants"
)

const masked = "***"

// configKeys are the settings the config file may hold.
var configKeys = []string{
	"url", "username", "password", "timeout", "max-retries", "output",
	"log-format", "verbose", "debug", "nats-url", "nats-subject",
}

// NewConfigCommand creates the config command group
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the settings stored in $HOME/.couch/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long:  "Show the configuration after merging flags, environment and the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := make(map[string]string, len(configKeys))
			rows := make([][2]string, 0, len(configKeys))

			for _, key := range configKeys {
				value := viper.GetString(key)
				if key == "password" && value != "" {
					value = masked
				}

				settings[key] = value
				rows = append(rows, [2]string{key, orNotAvailable(value)})
			}

			return render(cmd.OutOrStdout(), settings, propertyTable(rows))
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "set KEY VALUE",
		Short:     "Store a setting",
		Long:      "Store a setting in the config file",
		Args:      cobra.ExactArgs(2),
		ValidArgs: configKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfigFile(cmd, args[0], func(values map[string]interface{}) {
				values[args[0]] = args[1]
			})
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Remove a setting",
		Long:  "Remove a setting from the config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfigFile(cmd, args[0], func(values map[string]interface{}) {
				delete(values, args[0])
			})
		},
	}
}

// updateConfigFile applies change to the stored settings and writes them back.
func updateConfigFile(cmd *cobra.Command, key string, change func(map[string]interface{})) error {
	if !slices.Contains(configKeys, key) {
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	values := map[string]interface{}{}

	// #nosec G304 -- config path comes from the --config flag or the home directory
	content, err := os.ReadFile(configFile)
	switch {
	case err == nil:
		err = yaml.Unmarshal(content, &values)
		if err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}

		if values == nil {
			values = map[string]interface{}{}
		}
	case os.IsNotExist(err):
	default:
		return fmt.Errorf("failed to read config file: %w", err)
	}

	change(values)

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated %s in %s\n", key, configFile)

	return nil
}

// configFilePath returns the file named by --config, the file viper loaded,
// or $HOME/.couch/config.yml.
func configFilePath() (string, error) {
	if configFile := viper.GetString("config"); configFile != "" {
		return configFile, nil
	}

	if configFile := viper.ConfigFileUsed(); configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".couch", "config.yml"), nil
}
