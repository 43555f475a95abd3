package cmd

import (
	"fmt"
	"sort"

	"github.com/assertlab/actl/internal/hub"
	"github.com/assertlab/actl/internal/ui"
	"github.com/spf13/cobra"
)

var pendingProjectFlag string

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List stored assertions awaiting registration",
	Long:  "Shows the local pending table without contacting any service.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		projects := make([]string, 0, len(cfg.Pending))
		for name := range cfg.Pending {
			if pendingProjectFlag != "" && name != pendingProjectFlag {
				continue
			}
			projects = append(projects, name)
		}
		sort.Strings(projects)

		total := 0
		t := ui.NewTable([]ui.Column{
			{Title: "Project", Width: 18},
			{Title: "Assertion", Width: 32},
			{Title: "Artifact", Width: 16},
			{Title: "Digest", Width: 14},
			{Title: "Stored", Width: 20},
		})
		for _, name := range projects {
			for _, pa := range cfg.PendingFor(name) {
				t.AddRow(ui.Row{
					ui.Project(name),
					ui.Val(pa.Key()),
					ui.Meta(pa.ArtifactID),
					ui.Addr(ui.TruncateHash(pa.Digest)),
					ui.Meta(pa.StoredAt.Local().Format("2006-01-02 15:04")),
				})
				total++
			}
		}

		if total == 0 {
			fmt.Println(ui.Info("Nothing pending."))
			fmt.Println(ui.Hint("Store an assertion with: actl store <Contract>"))
			return nil
		}

		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d assertion(s) pending", total)))
		fmt.Println(ui.Hint("Register them with: actl submit"))
		return nil
	},
}

var pendingRemoveCmd = &cobra.Command{
	Use:   "remove <selector>",
	Short: "Drop a pending assertion without registering it",
	Long: `Removes an entry from the local pending table. The stored DA artifact
is untouched; only the local record of it is forgotten.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := hub.ParseSelector(args[0])
		if err != nil {
			return err
		}

		project := pendingProjectFlag
		if project == "" {
			// Unambiguous only when a single project has this entry pending.
			var candidates []string
			for name, entries := range cfg.Pending {
				for _, pa := range entries {
					if sel.Matches(pa) {
						candidates = append(candidates, name)
						break
					}
				}
			}
			switch len(candidates) {
			case 0:
				return &hub.AssertionNotFoundError{Key: sel.Key()}
			case 1:
				project = candidates[0]
			default:
				return fmt.Errorf("%s is pending in %d projects; pass -p to pick one", sel.Key(), len(candidates))
			}
		}

		if !ui.ConfirmDanger(fmt.Sprintf("Drop pending assertion %s from %s?", sel.Key(), project)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		if !cfg.RemovePending(project, sel.Key()) {
			return &hub.AssertionNotFoundError{Key: sel.Key()}
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Println(ui.Success(fmt.Sprintf("Dropped %s from %s.", sel.Key(), project)))
		return nil
	},
}

func init() {
	pendingCmd.Flags().StringVarP(&pendingProjectFlag, "project", "p", "", "only show this project's pending assertions")
	pendingRemoveCmd.Flags().StringVarP(&pendingProjectFlag, "project", "p", "", "project the pending assertion belongs to")
	pendingCmd.AddCommand(pendingRemoveCmd)
}
