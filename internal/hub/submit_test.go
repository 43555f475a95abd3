package hub_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/assertlab/actl/internal/auth"
	"github.com/assertlab/actl/internal/config"
	"github.com/assertlab/actl/internal/hub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hubServer serves a single project and registers assertions, failing any
// whose name is in failNames.
func hubServer(t *testing.T, failNames ...string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/projects", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]hub.Project{{ID: "p1", Name: "vault"}}) //nolint:errcheck
	})
	mux.HandleFunc("/projects/p1/assertions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var reg hub.Registration
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reg))
		for _, name := range failNames {
			if reg.Name == name {
				http.Error(w, "adopter contract mismatch", http.StatusConflict)
				return
			}
		}
		json.NewEncoder(w).Encode(map[string]bool{"registered": true}) //nolint:errcheck
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func submissionFixture(t *testing.T, srvURL string, names ...string) (*hub.Submission, *config.Config) {
	t.Helper()
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	cfg.SetCredential(config.Credential{Token: "tok", Address: "0xabc"})
	for i, name := range names {
		cfg.UpsertPending("vault", config.PendingAssertion{
			Name:       name,
			ArtifactID: "0xart" + string(rune('a'+i)),
		})
	}
	require.NoError(t, cfg.Save())

	return &hub.Submission{
		Client:   hub.NewClient(srvURL, "tok"),
		Config:   cfg,
		Prompter: &scriptedPrompter{},
	}, cfg
}

func TestSubmissionRegistersAndClearsPending(t *testing.T) {
	srv := hubServer(t)
	sub, cfg := submissionFixture(t, srv.URL, "first", "second")

	res, err := sub.Run(context.Background(), "vault", nil)
	require.NoError(t, err)
	require.NoError(t, res.Err())

	assert.ElementsMatch(t, []string{"first()", "second()"}, res.Registered)
	assert.Empty(t, cfg.PendingFor("vault"))

	// Removal was persisted per item.
	reloaded, err := config.Load(cfg.Dir())
	require.NoError(t, err)
	assert.Empty(t, reloaded.PendingFor("vault"))
}

func TestSubmissionPartialFailureIsolation(t *testing.T) {
	srv := hubServer(t, "second")
	sub, cfg := submissionFixture(t, srv.URL, "first", "second", "third")

	res, err := sub.Run(context.Background(), "vault", nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"first()", "third()"}, res.Registered)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "second()", res.Failed[0].Key)
	assert.Contains(t, res.Failed[0].Err.Error(), "adopter contract mismatch")

	// The failing entry stays pending; its siblings are gone.
	remaining := cfg.PendingFor("vault")
	require.Len(t, remaining, 1)
	assert.Equal(t, "second", remaining[0].Name)

	// Overall outcome is a failure (non-zero exit at the command layer).
	require.Error(t, res.Err())
	assert.Contains(t, res.Err().Error(), "second()")
}

func TestSubmissionExplicitSelectors(t *testing.T) {
	srv := hubServer(t)
	sub, cfg := submissionFixture(t, srv.URL, "first", "second")

	sel, err := hub.ParseSelector("first")
	require.NoError(t, err)

	res, err := sub.Run(context.Background(), "vault", []hub.Selector{sel})
	require.NoError(t, err)

	assert.Equal(t, []string{"first()"}, res.Registered)
	require.Len(t, cfg.PendingFor("vault"), 1)
	assert.Equal(t, "second", cfg.PendingFor("vault")[0].Name)
}

func TestSubmissionUnknownProject(t *testing.T) {
	srv := hubServer(t)
	sub, _ := submissionFixture(t, srv.URL, "first")

	_, err := sub.Run(context.Background(), "ghost", nil)
	var notFound *hub.ProjectNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestSubmissionWithoutCredentialMakesNoNetworkCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("network call made without a stored credential")
	}))
	t.Cleanup(srv.Close)

	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	sub := &hub.Submission{
		Client:   hub.NewClient(srv.URL, ""),
		Config:   cfg,
		Prompter: &scriptedPrompter{},
	}
	_, err = sub.Run(context.Background(), "vault", nil)
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)
}

func TestSubmissionUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	sub, _ := submissionFixture(t, srv.URL, "first")
	_, err := sub.Run(context.Background(), "vault", nil)
	assert.ErrorIs(t, err, auth.ErrUnauthorized)
}

func TestResultErrMessageEnumeratesFailures(t *testing.T) {
	res := &hub.Result{
		Registered: []string{"a()"},
		Failed: []hub.FailedItem{
			{Key: "b()", Err: assert.AnError},
			{Key: "c(1)", Err: assert.AnError},
		},
	}
	err := res.Err()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "b()") && strings.Contains(err.Error(), "c(1)"))
	assert.Contains(t, err.Error(), "2 of 3")
}
