package hub

import (
	"context"
	"fmt"
	"strings"

	"github.com/assertlab/actl/internal/auth"
	"github.com/assertlab/actl/internal/config"
)

// FailedItem is one assertion whose registration was attempted and failed.
type FailedItem struct {
	Key string
	Err error
}

// Result is the outcome of a submission run. Registered and Failed together
// cover every resolved assertion: registration is attempted for all of them
// even when some fail.
type Result struct {
	Project    Project
	Registered []string // selector keys, in registration order
	Failed     []FailedItem
}

// Err returns a non-nil error when any item failed, suitable for a non-zero
// exit after the per-item outcomes have been reported.
func (r *Result) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	keys := make([]string, len(r.Failed))
	for i, f := range r.Failed {
		keys[i] = f.Key
	}
	return fmt.Errorf("%d of %d assertion(s) failed to register: %s",
		len(r.Failed), len(r.Failed)+len(r.Registered), strings.Join(keys, ", "))
}

// Submission registers pending assertions against a hub project. Each
// successfully registered entry is removed from the pending table and the
// config persisted immediately; a failing entry stays pending and does not
// roll back its registered siblings.
type Submission struct {
	Client   *Client
	Config   *config.Config
	Prompter Prompter
}

// Run resolves the target project and assertion set, then registers each
// resolved entry. The stored credential must be present before any network
// call is made.
func (s *Submission) Run(ctx context.Context, projectName string, selectors []Selector) (*Result, error) {
	if s.Config.Credential == nil {
		return nil, auth.ErrNotAuthenticated
	}

	projects, err := s.Client.Projects(ctx)
	if err != nil {
		return nil, err
	}

	project, err := ResolveProject(projectName, projects, s.Prompter)
	if err != nil {
		return nil, err
	}

	assertions, err := ResolveAssertions(selectors, s.Config.PendingFor(project.Name), s.Prompter)
	if err != nil {
		return nil, err
	}

	result := &Result{Project: project}
	for _, pa := range assertions {
		reg := Registration{
			ArtifactID:      pa.ArtifactID,
			Name:            pa.Name,
			ConstructorArgs: pa.ConstructorArgs,
		}
		if err := s.Client.RegisterAssertion(ctx, project.ID, reg); err != nil {
			result.Failed = append(result.Failed, FailedItem{Key: pa.Key(), Err: err})
			continue
		}

		s.Config.RemovePending(project.Name, pa.Key())
		if err := s.Config.Save(); err != nil {
			// Registered remotely; losing the local removal only means the
			// entry is offered again next time.
			result.Failed = append(result.Failed, FailedItem{Key: pa.Key(), Err: err})
			continue
		}
		result.Registered = append(result.Registered, pa.Key())
	}
	return result, nil
}
