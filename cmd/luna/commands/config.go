package commands

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/config"
)

func (a *app) newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect CLI configuration",
		Long:  "Inspect the settings resolved from flags, environment, .env and config file",
	}

	cmd.AddCommand(a.newConfigShowCommand())

	return cmd
}

func (a *app) newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the resolved configuration with credentials masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(a.v)
			if err != nil {
				return err
			}

			redacted := settings.Redacted()

			return a.render(cmd.OutOrStdout(), redacted, func(table *tablewriter.Table) {
				table.Header("Setting", "Value")
				_ = table.Append("Base URL", redacted.BaseURL)
				_ = table.Append("API Key", orNA(redacted.APIKey))
				_ = table.Append("Access Token", orNA(redacted.AccessToken))
				_ = table.Append("Refresh Token", orNA(redacted.RefreshToken))
				_ = table.Append("Timeout", redacted.Timeout.String())
				_ = table.Append("Max Retries", strconv.Itoa(redacted.MaxRetries))
				_ = table.Append("Log Level", redacted.LogLevel.String())
				_ = table.Append("Log File", orNA(redacted.LogFile))
				_ = table.Append("Token URL", orNA(redacted.TokenURL))
				_ = table.Append("Client ID", orNA(redacted.ClientID))
				_ = table.Append("Client Secret", orNA(redacted.ClientSecret))
				_ = table.Append("NATS URL", orNA(redacted.NATSURL))
				_ = table.Append("Config File", orNA(a.v.ConfigFileUsed()))
			})
		},
	}
}

func orNA(value string) string {
	return valueOrNA(&value)
}
