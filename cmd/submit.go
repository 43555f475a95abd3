package cmd

import (
	"fmt"

	"github.com/assertlab/actl/internal/hub"
	"github.com/assertlab/actl/internal/ui"
	"github.com/spf13/cobra"
)

var (
	submitProjectFlag    string
	submitAssertionFlags []string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Register pending assertions with a project",
	Long: `Register stored artifacts against a hub project. Without flags the
project and assertions are chosen interactively from your pending table.

Assertions are addressed by selector: a bare contract name matches the
entry stored without constructor arguments, while Name(arg0,arg1) matches
the exact argument list. Repeat -a to register several at once.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		selectors := make([]hub.Selector, 0, len(submitAssertionFlags))
		for _, raw := range submitAssertionFlags {
			sel, err := hub.ParseSelector(raw)
			if err != nil {
				return err
			}
			selectors = append(selectors, sel)
		}

		sub := &hub.Submission{
			Client:   hub.NewClient(hubURL(), bearerToken()),
			Config:   cfg,
			Prompter: interactivePrompter{},
		}
		res, err := sub.Run(cmd.Context(), submitProjectFlag, selectors)
		if err != nil {
			return sessionError(err)
		}

		for _, key := range res.Registered {
			fmt.Println(ui.Success(fmt.Sprintf("Registered %s with %s", key, ui.Project(res.Project.Name))))
		}
		for _, f := range res.Failed {
			fmt.Println(ui.Err(fmt.Sprintf("%s: %v", f.Key, f.Err)))
		}
		if len(res.Failed) > 0 {
			fmt.Println(ui.Hint("Failed assertions stay pending; fix the cause and submit again."))
		}
		return res.Err()
	},
}

func init() {
	submitCmd.Flags().StringVarP(&submitProjectFlag, "project", "p", "", "target project name (skips the interactive picker)")
	submitCmd.Flags().StringArrayVarP(&submitAssertionFlags, "assertion", "a", nil, "assertion selector, e.g. OwnerChange or 'OwnerChange(0xabc,42)' (repeatable)")
}
