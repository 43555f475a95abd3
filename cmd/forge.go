package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/assertlab/actl/internal/build"
	"github.com/spf13/cobra"
)

var (
	buildRootFlag string
	testRootFlag  string
)

var buildCmd = &cobra.Command{
	Use:   "build [tool args...]",
	Short: "Compile the assertion project",
	Long:  "Runs the build tool in the project root, passing extra arguments through unchanged.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return passthrough(cmd, buildRootFlag, "build", args)
	},
}

var testCmd = &cobra.Command{
	Use:   "test [tool args...]",
	Short: "Run the assertion project's tests",
	Long:  "Runs the test tool in the project root, passing extra arguments through unchanged.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return passthrough(cmd, testRootFlag, "test", args)
	},
}

// passthrough runs the external tool with inherited stdio and propagates its
// exit status directly, so the tool's own diagnostics stay untouched.
func passthrough(cmd *cobra.Command, rootFlag, sub string, args []string) error {
	root, err := filepath.Abs(rootFlag)
	if err != nil {
		return fmt.Errorf("resolving project root: %w", err)
	}
	runner := build.NewRunner(root)
	err = runner.Passthrough(cmd.Context(), append([]string{sub}, args...)...)
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.ExitCode())
	}
	return err
}

func init() {
	buildCmd.Flags().StringVar(&buildRootFlag, "root", ".", "assertion project root")
	testCmd.Flags().StringVar(&testRootFlag, "root", ".", "assertion project root")
	// Tool flags like -vvv must reach the underlying tool, not cobra.
	buildCmd.Flags().SetInterspersed(false)
	testCmd.Flags().SetInterspersed(false)
}
