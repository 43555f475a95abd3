package config

import (
	"slices"
	"strings"
	"time"
)

// Credential is the bearer credential issued by the auth service after a
// completed device authorization. The long-lived refresh token is not stored
// here — it lives in the OS keychain and is referenced by RefreshRef.
type Credential struct {
	Token      string    `json:"token"`
	Address    string    `json:"address"`
	ExpiresAt  time.Time `json:"expires_at"`
	RefreshRef string    `json:"refresh_ref,omitempty"`
}

// Expired reports whether the credential is past its expiry hint.
// A zero ExpiresAt means the server gave no hint; treat as not expired —
// revocation is discovered lazily when an authenticated call is rejected.
func (c *Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// PendingAssertion is an artifact stored in the DA layer but not yet
// registered against a hub project.
type PendingAssertion struct {
	Name            string    `json:"name"`
	ConstructorArgs []string  `json:"constructor_args"`
	ArtifactID      string    `json:"artifact_id"`
	Digest          string    `json:"digest,omitempty"`
	StoredAt        time.Time `json:"stored_at"`
}

// Key returns the selector form of the entry: "Name(arg0,arg1)".
// This is the string shown in pickers and accepted by `actl submit -a`.
func (p PendingAssertion) Key() string {
	return p.Name + "(" + strings.Join(p.ConstructorArgs, ",") + ")"
}

// sameIdentity reports whether two entries share (name, constructor args) —
// the identity the pending table is unique over within a project.
func (p PendingAssertion) sameIdentity(o PendingAssertion) bool {
	return p.Name == o.Name && slices.Equal(p.ConstructorArgs, o.ConstructorArgs)
}

// Config is the persisted CLI state: the current credential (nil when logged
// out) plus pending assertions keyed by project name.
//
// Commands load it once at entry, mutate in memory, and save once per change.
// No cross-process lock is provided; concurrent invocations may race on the
// file (documented limitation).
type Config struct {
	Credential *Credential                   `json:"credential,omitempty"`
	Pending    map[string][]PendingAssertion `json:"pending"`

	// internal: config dir path used for Save()
	configDir string
}
