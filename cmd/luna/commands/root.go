// Package commands implements the luna command-line interface.
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/config"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
)

// Flag and viper keys that are not client settings.
const (
	keyConfig  = "config"
	keyEnvFile = "env-file"
	keyOutput  = "output"
	keyVerbose = "verbose"
)

// app carries the configuration shared by all commands of one invocation.
type app struct {
	v *viper.Viper
}

// NewRootCommand creates the luna command tree.
func NewRootCommand(version, commit, date string) *cobra.Command {
	a := &app{v: config.New()}

	// Request logs go to stderr; keep them quiet unless asked for.
	a.v.SetDefault(config.KeyLogLevel, luna.LogLevelWarn.String())

	rootCmd := &cobra.Command{
		Use:   "luna",
		Short: "Luna API CLI",
		Long: `A command-line interface for the Luna API.

Credentials and settings are read from flags, LUNA_* environment variables,
a .env file and $HOME/.luna/config.yml, in that order of precedence.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initConfig,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP(keyConfig, "c", "", "config file (default is $HOME/.luna/config.yml)")
	flags.String(keyEnvFile, "", "env file to load (default is ./.env when present)")
	flags.String("api-key", "", "API key")
	flags.String("base-url", "", "API base URL")
	flags.StringP(keyOutput, "o", "", "output format (table, json, yaml); table on a terminal, json otherwise")
	flags.String("log-level", "", "log level (trace, debug, info, warn, error)")
	flags.BoolP(keyVerbose, "v", false, "verbose output, same as --log-level debug")

	// Bind flags to viper
	_ = a.v.BindPFlag(config.KeyAPIKey, flags.Lookup("api-key"))
	_ = a.v.BindPFlag(config.KeyBaseURL, flags.Lookup("base-url"))
	_ = a.v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = a.v.BindPFlag(keyOutput, flags.Lookup(keyOutput))
	_ = a.v.BindPFlag(keyVerbose, flags.Lookup(keyVerbose))

	// Add commands
	rootCmd.AddCommand(a.newVersionCommand(version, commit, date))
	rootCmd.AddCommand(a.newConfigCommand())
	rootCmd.AddCommand(a.newUsersCommand())
	rootCmd.AddCommand(a.newProjectsCommand())
	rootCmd.AddCommand(a.newRequestCommand())

	return rootCmd
}

func (a *app) initConfig(cmd *cobra.Command, _ []string) error {
	envFile, _ := cmd.Flags().GetString(keyEnvFile)

	var err error
	if envFile != "" {
		err = config.LoadDotEnv(envFile)
	} else {
		err = config.LoadDotEnv()
	}

	if err != nil {
		return err
	}

	cfgFile, _ := cmd.Flags().GetString(keyConfig)
	if cfgFile == "" {
		cfgFile = defaultConfigFile()
	}

	err = config.ReadFile(a.v, cfgFile)
	if err != nil {
		return err
	}

	if a.v.GetBool(keyVerbose) {
		a.v.Set(config.KeyLogLevel, luna.LogLevelDebug.String())

		if used := a.v.ConfigFileUsed(); used != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", used)
		}
	}

	return nil
}

// defaultConfigFile returns $HOME/.luna/config.yml when it exists.
func defaultConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	path := filepath.Join(home, constants.ConfigDirName, constants.ConfigFileName)

	if _, err := os.Stat(path); err != nil {
		return ""
	}

	return path
}
