package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/couchbeans/cmd/couch/commands"
	"github.com/fivetwenty-io/couchbeans/internal/constants"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "couch",
	Short: "CouchDB CLI",
	Long: `A command-line interface for working with a CouchDB server.

Create and delete databases, read and write documents and run Mango queries.
Every request is retried on refused connections and timeouts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.couch/config.yml)")
	flags.StringP("url", "u", "", "CouchDB server URL")
	flags.String("username", "", "username for basic authentication")
	flags.String("password", "", "password for basic authentication (prompted when omitted)")
	flags.Duration("timeout", constants.DefaultTimeout, "timeout of a single request attempt")
	flags.Int("max-retries", constants.DefaultMaxRetries, "attempts per request on refused connections and timeouts")
	flags.String("output", constants.FormatTable, "output format (table, json, yaml)")
	flags.String("log-format", constants.FormatText, "log format (text, json)")
	flags.BoolP("verbose", "v", false, "log failed attempts")
	flags.Bool("debug", false, "log every HTTP request and response")
	flags.String("nats-url", "", "publish mutation events to this NATS server")
	flags.String("nats-subject", constants.DefaultNATSSubject, "subject prefix for mutation events")

	// Bind flags to viper
	for _, name := range []string{
		"config", "url", "username", "password", "timeout", "max-retries", "output",
		"log-format", "verbose", "debug", "nats-url", "nats-subject",
	} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewInfoCommand())
	rootCmd.AddCommand(commands.NewDatabasesCommand())
	rootCmd.AddCommand(commands.NewDocumentsCommand())
	rootCmd.AddCommand(commands.NewFindCommand())
	rootCmd.AddCommand(commands.NewFindAllCommand())
}

func initConfig() {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".couch")

		// Search config in ~/.couch/config.yml
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	// COUCH_URL, COUCH_MAX_RETRIES, ...
	viper.SetEnvPrefix("COUCH")
	viper.SetEnvKeyReplacer(commands.EnvKeyReplacer)
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err == nil && viper.GetBool("verbose") {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
