package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/assertlab/actl/internal/auth"
	"github.com/assertlab/actl/internal/build"
	"github.com/assertlab/actl/internal/da"
	"github.com/assertlab/actl/internal/ui"
	"github.com/spf13/cobra"
)

var (
	storeProjectFlag string
	storeRootFlag    string
	storeJSONFlag    bool
)

var storeCmd = &cobra.Command{
	Use:   "store <contract> [constructor-args...]",
	Short: "Build an assertion and store it in the DA layer",
	Long: `Compile the assertion contract, flatten its source, and submit the
artifact to the data-availability layer. The stored artifact is recorded
locally as pending until it is registered with: actl submit

Constructor arguments are positional and must match the contract's
constructor arity exactly.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		contract := args[0]
		ctorArgs := args[1:]

		// Fail before building, not after.
		if cfg.Credential == nil {
			return auth.ErrNotAuthenticated
		}

		root, err := filepath.Abs(storeRootFlag)
		if err != nil {
			return fmt.Errorf("resolving project root: %w", err)
		}
		project := storeProjectFlag
		if project == "" {
			project = filepath.Base(root)
		}

		runner := build.NewRunner(root)
		sp := ui.NewSpinner(fmt.Sprintf("Building %s...", contract))
		if !storeJSONFlag {
			sp.Start()
		}
		art, err := runner.BuildAndFlatten(cmd.Context(), contract, ctorArgs)
		if !storeJSONFlag {
			sp.Stop()
		}
		if err != nil {
			var berr *build.Error
			if errors.As(err, &berr) && berr.Output != "" {
				fmt.Fprintln(os.Stderr, strings.TrimRight(berr.Output, "\n"))
			}
			return err
		}

		sub := &da.Submitter{
			Client: da.NewClient(daURL(), bearerToken()),
			Config: cfg,
		}
		pa, err := sub.Submit(cmd.Context(), project, art, ctorArgs)
		if err != nil {
			return sessionError(err)
		}

		if storeJSONFlag {
			out, err := json.MarshalIndent(map[string]string{
				"project":         project,
				"name":            pa.Name,
				"artifact_id":     pa.ArtifactID,
				"digest":          pa.Digest,
				"constructor_sig": art.ConstructorSig,
			}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		fmt.Println(ui.Success(fmt.Sprintf("Stored %s as %s", pa.Key(), ui.Val(pa.ArtifactID))))
		fmt.Println(ui.KeyValueBlock("Artifact", [][2]string{
			{"Project", project},
			{"Digest", ui.TruncateHash(pa.Digest)},
			{"Constructor", art.ConstructorSig},
		}))
		fmt.Println(ui.Hint(fmt.Sprintf("Register it with: actl submit -p %s -a '%s'", project, pa.Key())))
		return nil
	},
}

// sessionError handles a rejected credential: the stale session is cleared
// so the next command starts from a clean not-logged-in state.
func sessionError(err error) error {
	if !errors.Is(err, auth.ErrUnauthorized) {
		return err
	}
	cfg.ClearCredential()
	cfg.Save() //nolint:errcheck
	fmt.Println(ui.Err("The service rejected your session."))
	fmt.Println(ui.Hint("Log in again with: actl auth login"))
	return err
}

func init() {
	storeCmd.Flags().StringVarP(&storeProjectFlag, "project", "p", "", "project to record the artifact under (default: project root dir name)")
	storeCmd.Flags().StringVar(&storeRootFlag, "root", ".", "assertion project root")
	storeCmd.Flags().BoolVar(&storeJSONFlag, "json", false, "emit machine-readable output")
}
