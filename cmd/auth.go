package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/assertlab/actl/internal/auth"
	"github.com/assertlab/actl/internal/config"
	"github.com/assertlab/actl/internal/ui"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage wallet authentication",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with your wallet",
	Long: `Start a device-authorization flow: actl prints a pairing link, you
approve it in your wallet, and the resulting credential is stored locally.

The access token lands in the config file; the long-lived refresh token
goes into the OS keychain.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Authenticated(time.Now()) {
			fmt.Println(ui.Info(fmt.Sprintf("Already logged in as %s", ui.Addr(cfg.Credential.Address))))
			fmt.Println(ui.Hint("Log out first with: actl auth logout"))
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		flow := auth.NewFlow(auth.NewClient(authURL()))
		flow.OnCode = func(code *auth.DeviceCode) {
			fmt.Println()
			fmt.Println(ui.KeyValueBlock("Wallet pairing", [][2]string{
				{"Open", code.PairingURL},
				{"Expires in", fmt.Sprintf("%ds", code.ExpiresIn)},
			}))
			fmt.Println(ui.Meta("Waiting for approval... (Ctrl-C to cancel)"))
		}

		cred, err := flow.Run(ctx)
		switch {
		case errors.Is(err, auth.ErrCancelled):
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		case errors.Is(err, auth.ErrExpired):
			fmt.Println(ui.Err("Pairing code expired before approval."))
			fmt.Println(ui.Hint("Run actl auth login again and approve promptly."))
			return err
		case errors.Is(err, auth.ErrDenied):
			fmt.Println(ui.Err("The wallet denied the pairing request."))
			return err
		case err != nil:
			return err
		}

		// Keychain trouble shouldn't lose the session; the refresh token is
		// just skipped.
		ref := ""
		if cred.RefreshToken != "" {
			ref, err = auth.DefaultKeystore().StoreRefreshToken(cred.Address, cred.RefreshToken)
			if err != nil {
				fmt.Println(ui.Warn(fmt.Sprintf("Could not store refresh token in keychain: %v", err)))
				ref = ""
			}
		}

		cfg.SetCredential(config.Credential{
			Token:      cred.Token,
			Address:    cred.Address,
			ExpiresAt:  cred.ExpiresAt,
			RefreshRef: ref,
		})
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving credential: %w", err)
		}

		fmt.Println(ui.Success(fmt.Sprintf("Logged in as %s", ui.Addr(cred.Address))))
		fmt.Println(ui.Hint("Store an assertion with: actl store <Contract> [constructor args]"))
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored credential",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Credential != nil && cfg.Credential.RefreshRef != "" {
			if err := auth.DefaultKeystore().Delete(cfg.Credential.RefreshRef); err != nil {
				fmt.Println(ui.Warn(fmt.Sprintf("Could not remove refresh token from keychain: %v", err)))
			}
		}
		cfg.ClearCredential()
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Println(ui.Success("Logged out."))
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	Long:  "Reports the stored credential without contacting any service.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Credential == nil {
			fmt.Println(ui.Info("Not logged in."))
			fmt.Println(ui.Hint("Authenticate with: actl auth login"))
			return nil
		}

		expires := "no expiry hint"
		if !cfg.Credential.ExpiresAt.IsZero() {
			expires = cfg.Credential.ExpiresAt.Local().Format(time.RFC1123)
		}
		fmt.Println(ui.KeyValueBlock("Session", [][2]string{
			{"Address", cfg.Credential.Address},
			{"Expires", expires},
		}))

		if cfg.Credential.Expired(time.Now()) {
			fmt.Println(ui.Warn("The session has expired."))
			fmt.Println(ui.Hint("Renew it with: actl auth login"))
		}
		return nil
	},
}

func init() {
	authCmd.AddCommand(authLoginCmd, authLogoutCmd, authStatusCmd)
}
