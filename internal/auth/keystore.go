package auth

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/99designs/keyring"
)

const keychainService = "actl"

// Keystore wraps OS keychain access for the long-lived refresh token. The
// bearer access token lives in the config file; only the refresh secret is
// held in the keychain.
type Keystore struct {
	ring keyring.Keyring
}

// DefaultKeystore returns a keystore backed by the OS keychain.
func DefaultKeystore() *Keystore {
	cfg := keyring.Config{
		ServiceName:              keychainService,
		KeychainTrustApplication: true,
	}

	// On Linux without a GUI, fall back to file-based storage.
	if runtime.GOOS == "linux" {
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		// Use file backend as ultimate fallback.
		ring, _ = keyring.Open(keyring.Config{
			ServiceName:     keychainService,
			AllowedBackends: []keyring.BackendType{keyring.FileBackend},
		})
	}

	return &Keystore{ring: ring}
}

// StoreRefreshToken saves the refresh token for a wallet address and returns
// the reference recorded in the config file.
func (k *Keystore) StoreRefreshToken(address, token string) (string, error) {
	ref := keychainService + ".refresh." + address
	if k.ring == nil {
		return ref, nil // no keychain available; token is simply not persisted
	}
	err := k.ring.Set(keyring.Item{
		Key:  ref,
		Data: []byte(token),
	})
	if err != nil {
		return "", fmt.Errorf("keychain store: %w", err)
	}
	return ref, nil
}

// Retrieve fetches a refresh token by its reference.
func (k *Keystore) Retrieve(ref string) (string, error) {
	if k.ring == nil {
		return "", fmt.Errorf("keystore not available")
	}
	item, err := k.ring.Get(ref)
	if err != nil {
		return "", fmt.Errorf("keychain retrieve: %w", err)
	}
	return string(item.Data), nil
}

// Delete removes a stored refresh token. Deleting a ref that does not exist
// is not an error, so logout stays idempotent.
func (k *Keystore) Delete(ref string) error {
	if k.ring == nil {
		return nil
	}
	err := k.ring.Remove(ref)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}
