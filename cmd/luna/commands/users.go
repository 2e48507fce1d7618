package commands

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
)

func (a *app) newUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Manage users",
		Long:    "List and inspect Luna users",
	}

	cmd.AddCommand(a.newUsersListCommand())
	cmd.AddCommand(a.newUsersGetCommand())

	return cmd
}

func (a *app) newUsersListCommand() *cobra.Command {
	var (
		limit    int
		cursor   string
		allPages bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Long:  "List users one page at a time, or every user with --all",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			params := &luna.ListParams{Limit: limit, Cursor: cursor}

			if allPages {
				users, err := c.Users().Iterate(cmd.Context(), params).All()
				if err != nil {
					return fmt.Errorf("failed to list users: %w", err)
				}

				return a.render(cmd.OutOrStdout(), users, func(table *tablewriter.Table) {
					renderUsersTable(table, users)
				})
			}

			page, err := c.Users().List(cmd.Context(), params)
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			err = a.render(cmd.OutOrStdout(), page, func(table *tablewriter.Table) {
				renderUsersTable(table, page.Data)
			})
			if err != nil {
				return err
			}

			printNextCursor(cmd, page.HasMore, page.NextCursor)

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", constants.DefaultPageLimit, "page size (1-100)")
	cmd.Flags().StringVar(&cursor, "cursor", "", "resume from this cursor")
	cmd.Flags().BoolVar(&allPages, "all", false, "fetch every page")

	return cmd
}

func renderUsersTable(table *tablewriter.Table, users []luna.User) {
	table.Header("ID", "Email", "Name", "Created")

	for _, user := range users {
		_ = table.Append(user.ID, user.Email, user.Name, user.CreatedAt.Format(timeLayout))
	}
}

func (a *app) newUsersGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get USER_ID",
		Short: "Get user details",
		Long:  "Display detailed information about a specific user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			user, err := c.Users().Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get user: %w", err)
			}

			return a.render(cmd.OutOrStdout(), user, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("ID", user.ID)
				_ = table.Append("Email", user.Email)
				_ = table.Append("Name", user.Name)
				_ = table.Append("Avatar", valueOrNA(user.AvatarURL))
				_ = table.Append("Created", user.CreatedAt.Format(timeLayout))
				_ = table.Append("Updated", user.UpdatedAt.Format(timeLayout))
			})
		},
	}
}
