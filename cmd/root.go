package cmd

import (
	"fmt"
	"os"

	"github.com/assertlab/actl/internal/auth"
	"github.com/assertlab/actl/internal/config"
	"github.com/assertlab/actl/internal/da"
	"github.com/assertlab/actl/internal/hub"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/assertlab/actl/cmd.Version=1.2.3" .
var Version = "1.0.0"

var (
	cfgDir  string
	cfg     *config.Config
	verbose bool
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "actl",
	Short: "Assertion toolchain CLI",
	Long: `actl — terminal tool for assertion developers.

  Authenticate with your wallet, build and store assertion artifacts
  in the data-availability layer, and register them against your
  projects — without leaving the terminal.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config (skip for commands that don't need it).
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Service endpoints are overridable per invocation through the environment,
// primarily for staging setups and tests.
func authURL() string {
	if u := os.Getenv("ACTL_AUTH_URL"); u != "" {
		return u
	}
	return auth.DefaultBaseURL
}

func daURL() string {
	if u := os.Getenv("ACTL_DA_URL"); u != "" {
		return u
	}
	return da.DefaultBaseURL
}

func hubURL() string {
	if u := os.Getenv("ACTL_HUB_URL"); u != "" {
		return u
	}
	return hub.DefaultBaseURL
}

// bearerToken returns the stored access token, or "" when not logged in.
// Callers that need authentication rely on the guards in internal/da and
// internal/hub rather than checking here.
func bearerToken() string {
	if cfg.Credential == nil {
		return ""
	}
	return cfg.Credential.Token
}

func init() {
	// ACTL_CONFIG_DIR env var seeds the --config flag default.
	if envDir := os.Getenv("ACTL_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.actl)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Register all sub-commands.
	rootCmd.AddCommand(
		authCmd,
		storeCmd,
		submitCmd,
		projectCmd,
		pendingCmd,
		buildCmd,
		testCmd,
	)
}
