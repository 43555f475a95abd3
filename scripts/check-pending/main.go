// check-pending: loads one or more actl config directories and prints a
// summary of the session and pending-assertion state in each. Useful for
// spotting stale artifacts that were stored but never registered.
//
// Run from the module root:
//
//	go run ./scripts/check-pending [config-dir ...]
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/assertlab/actl/internal/config"
)

// Artifacts pending longer than this are flagged.
const staleAfter = 7 * 24 * time.Hour

func main() {
	dirs := os.Args[1:]
	if len(dirs) == 0 {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot resolve home dir:", err)
			os.Exit(1)
		}
		dirs = []string{filepath.Join(home, ".actl")}
	}

	now := time.Now()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DIR\tSESSION\tPROJECT\tASSERTION\tARTIFACT\tAGE")

	exit := 0
	for _, dir := range dirs {
		cfg, err := config.Load(dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", dir, err)
			exit = 1
			continue
		}

		session := "none"
		switch {
		case cfg.Credential == nil:
		case cfg.Credential.Expired(now):
			session = "expired (" + short(cfg.Credential.Address) + ")"
		default:
			session = short(cfg.Credential.Address)
		}

		projects := make([]string, 0, len(cfg.Pending))
		for name := range cfg.Pending {
			projects = append(projects, name)
		}
		sort.Strings(projects)

		if len(projects) == 0 {
			fmt.Fprintf(w, "%s\t%s\t-\t-\t-\t-\n", dir, session)
			continue
		}
		for _, name := range projects {
			for _, pa := range cfg.PendingFor(name) {
				age := now.Sub(pa.StoredAt).Round(time.Hour).String()
				if now.Sub(pa.StoredAt) > staleAfter {
					age += " STALE"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					dir, session, name, pa.Key(), pa.ArtifactID, age)
			}
		}
	}

	w.Flush() //nolint:errcheck
	os.Exit(exit)
}

func short(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + ".." + addr[len(addr)-4:]
}
