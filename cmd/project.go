package cmd

import (
	"fmt"

	"github.com/assertlab/actl/internal/auth"
	"github.com/assertlab/actl/internal/hub"
	"github.com/assertlab/actl/internal/ui"
	"github.com/spf13/cobra"
)

var projectDescriptionFlag string

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage hub projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Credential == nil {
			return auth.ErrNotAuthenticated
		}
		client := hub.NewClient(hubURL(), bearerToken())
		p, err := client.CreateProject(cmd.Context(), args[0], projectDescriptionFlag)
		if err != nil {
			return sessionError(err)
		}
		fmt.Println(ui.Success(fmt.Sprintf("Project %s created (%s)", ui.Project(p.Name), p.ID)))
		fmt.Println(ui.Hint(fmt.Sprintf("Register assertions with: actl submit -p %s", p.Name)))
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Credential == nil {
			return auth.ErrNotAuthenticated
		}
		client := hub.NewClient(hubURL(), bearerToken())
		projects, err := client.Projects(cmd.Context())
		if err != nil {
			return sessionError(err)
		}
		if len(projects) == 0 {
			fmt.Println(ui.Info("No projects yet."))
			fmt.Println(ui.Hint("Create one with: actl project create <name>"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 24},
			{Title: "ID", Width: 20},
			{Title: "Pending", Width: 8},
		})
		for _, p := range projects {
			t.AddRow(ui.Row{
				ui.Project(p.Name),
				ui.Meta(p.ID),
				fmt.Sprintf("%d", len(cfg.PendingFor(p.Name))),
			})
		}
		fmt.Println(t.Render())
		return nil
	},
}

func init() {
	projectCreateCmd.Flags().StringVarP(&projectDescriptionFlag, "description", "d", "", "project description")
	projectCmd.AddCommand(projectCreateCmd, projectListCmd)
}
