package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/assertlab/actl/internal/build"
	"github.com/assertlab/actl/internal/config"
	"github.com/assertlab/actl/internal/da"
	"github.com/assertlab/actl/internal/hub"
	"github.com/assertlab/actl/test/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDAServer accepts artifact submissions and returns sequential ids.
func mockDAServer(t *testing.T) *httptest.Server {
	t.Helper()
	n := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/assertions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		n++
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"artifact_id": fmt.Sprintf("art_%d", n)}) //nolint:errcheck
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// mockHubServer serves one project and accepts registrations for it.
func mockHubServer(t *testing.T, registered *[]hub.Registration) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/projects", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]string{{"id": "p1", "name": "vault"}}) //nolint:errcheck
	})
	mux.HandleFunc("/projects/p1/assertions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var reg hub.Registration
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reg))
		*registered = append(*registered, reg)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]bool{"registered": true}) //nolint:errcheck
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// TestStoreThenSubmit walks an artifact through the full pipeline: build,
// store in the DA layer, record as pending, then register with a project
// and clear the pending entry.
func TestStoreThenSubmit(t *testing.T) {
	ctx := context.Background()

	root := t.TempDir()
	t.Setenv(build.ForgeBinEnv, fixtures.WriteForgeStub(t, root))
	fixtures.WriteAssertionProject(t, root, "OwnerChange", "0x6001600101", []fixtures.ConstructorInput{
		{Name: "owner", Type: "address"},
	})

	cfgDir := t.TempDir()
	cfg, err := config.Load(cfgDir)
	require.NoError(t, err)
	cfg.SetCredential(config.Credential{Token: "tok-1", Address: "0xabc"})
	require.NoError(t, cfg.Save())

	// Store.
	art, err := build.NewRunner(root).BuildAndFlatten(ctx, "OwnerChange", []string{"0xowner"})
	require.NoError(t, err)

	daSrv := mockDAServer(t)
	sub := &da.Submitter{Client: da.NewClient(daSrv.URL, "tok-1"), Config: cfg}
	pa, err := sub.Submit(ctx, "vault", art, []string{"0xowner"})
	require.NoError(t, err)
	assert.Equal(t, "art_1", pa.ArtifactID)
	require.Len(t, cfg.PendingFor("vault"), 1)

	// Submit.
	var registered []hub.Registration
	hubSrv := mockHubServer(t, &registered)
	run := &hub.Submission{Client: hub.NewClient(hubSrv.URL, "tok-1"), Config: cfg}
	res, err := run.Run(ctx, "vault", []hub.Selector{{Name: "OwnerChange", Args: []string{"0xowner"}}})
	require.NoError(t, err)
	require.NoError(t, res.Err())

	require.Len(t, registered, 1)
	assert.Equal(t, "art_1", registered[0].ArtifactID)
	assert.Equal(t, "OwnerChange", registered[0].Name)
	assert.Equal(t, []string{"0xowner"}, registered[0].ConstructorArgs)

	// The pending entry is gone, in memory and on disk.
	assert.Empty(t, cfg.PendingFor("vault"))
	reloaded, err := config.Load(cfgDir)
	require.NoError(t, err)
	assert.Empty(t, reloaded.PendingFor("vault"))
}

// TestStoreRecordsDigestAndTimestamp checks the pending entry carries the
// bytecode digest and a recent stored-at stamp.
func TestStoreRecordsDigestAndTimestamp(t *testing.T) {
	ctx := context.Background()

	root := t.TempDir()
	t.Setenv(build.ForgeBinEnv, fixtures.WriteForgeStub(t, root))
	fixtures.WriteAssertionProject(t, root, "BalanceGuard", "0x6002", nil)

	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	cfg.SetCredential(config.Credential{Token: "tok-1", Address: "0xabc"})
	require.NoError(t, cfg.Save())

	art, err := build.NewRunner(root).BuildAndFlatten(ctx, "BalanceGuard", nil)
	require.NoError(t, err)

	daSrv := mockDAServer(t)
	sub := &da.Submitter{Client: da.NewClient(daSrv.URL, "tok-1"), Config: cfg}
	pa, err := sub.Submit(ctx, "vault", art, nil)
	require.NoError(t, err)

	wantDigest, err := art.Digest()
	require.NoError(t, err)
	assert.Equal(t, wantDigest, pa.Digest)
	assert.WithinDuration(t, time.Now().UTC(), pa.StoredAt, 5*time.Second)
}
