package commands

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
)

func (a *app) newProjectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Manage projects",
		Long:    "List and inspect Luna projects",
	}

	cmd.AddCommand(a.newProjectsListCommand())
	cmd.AddCommand(a.newProjectsGetCommand())

	return cmd
}

func (a *app) newProjectsListCommand() *cobra.Command {
	var (
		limit    int
		cursor   string
		allPages bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Long:  "List projects one page at a time, or every project with --all",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			params := &luna.ListParams{Limit: limit, Cursor: cursor}

			if allPages {
				projects, err := c.Projects().Iterate(cmd.Context(), params).All()
				if err != nil {
					return fmt.Errorf("failed to list projects: %w", err)
				}

				return a.render(cmd.OutOrStdout(), projects, func(table *tablewriter.Table) {
					renderProjectsTable(table, projects)
				})
			}

			page, err := c.Projects().List(cmd.Context(), params)
			if err != nil {
				return fmt.Errorf("failed to list projects: %w", err)
			}

			err = a.render(cmd.OutOrStdout(), page, func(table *tablewriter.Table) {
				renderProjectsTable(table, page.Data)
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

func renderProjectsTable(table *tablewriter.Table, projects []luna.Project) {
	table.Header("ID", "Name", "Owner", "Created")

	for _, project := range projects {
		_ = table.Append(project.ID, project.Name, project.OwnerID, project.CreatedAt.Format(timeLayout))
	}
}

func (a *app) newProjectsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get PROJECT_ID",
		Short: "Get project details",
		Long:  "Display detailed information about a specific project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			project, err := c.Projects().Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get project: %w", err)
			}

			return a.render(cmd.OutOrStdout(), project, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("ID", project.ID)
				_ = table.Append("Name", project.Name)
				_ = table.Append("Description", valueOrNA(project.Description))
				_ = table.Append("Owner", project.OwnerID)
				_ = table.Append("Created", project.CreatedAt.Format(timeLayout))
				_ = table.Append("Updated", project.UpdatedAt.Format(timeLayout))
			})
		},
	}
}
