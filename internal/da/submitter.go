package da

import (
	"context"
	"fmt"
	"time"

	"github.com/assertlab/actl/internal/auth"
	"github.com/assertlab/actl/internal/build"
	"github.com/assertlab/actl/internal/config"
)

// Submitter packages a build artifact, stores it in the DA layer, and
// records the result as a pending assertion in the config store.
//
// Resubmitting an identical (project, name, args) artifact replaces the
// prior pending entry rather than duplicating it; the table is
// last-write-wins per identity. On a rejected or failed submission the
// pending table is left untouched.
type Submitter struct {
	Client *Client
	Config *config.Config
}

// Submit uploads the artifact and persists the pending entry. The stored
// credential must be present before any network call is made.
func (s *Submitter) Submit(ctx context.Context, project string, art *build.Artifact, constructorArgs []string) (*config.PendingAssertion, error) {
	if s.Config.Credential == nil {
		return nil, auth.ErrNotAuthenticated
	}

	digest, err := art.Digest()
	if err != nil {
		return nil, err
	}

	artifactID, err := s.Client.Submit(ctx, art.Bytecode, art.FlattenedSource, art.ConstructorSig)
	if err != nil {
		return nil, err
	}

	pa := config.PendingAssertion{
		Name:            art.Name,
		ConstructorArgs: constructorArgs,
		ArtifactID:      artifactID,
		Digest:          digest,
		StoredAt:        time.Now().UTC(),
	}
	s.Config.UpsertPending(project, pa)
	if err := s.Config.Save(); err != nil {
		return nil, fmt.Errorf("artifact stored as %s but recording it locally failed: %w", artifactID, err)
	}
	return &pa, nil
}
