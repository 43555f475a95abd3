package hub

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/assertlab/actl/internal/config"
)

var (
	// ErrNoProjects means the authenticated account owns no projects.
	ErrNoProjects = errors.New("no projects found for this account — create one with `actl project create`")

	// ErrNoPending means the resolved project has no stored-but-unregistered
	// assertions to offer.
	ErrNoPending = errors.New("no pending assertions — run `actl store <contract>` first")
)

// ProjectNotFoundError reports an explicit project name that does not exist
// under the authenticated account.
type ProjectNotFoundError struct {
	Name string
}

func (e *ProjectNotFoundError) Error() string {
	return fmt.Sprintf("project %q not found — run `actl submit` without --project to pick from your projects", e.Name)
}

// AssertionNotFoundError reports an explicit selector with no matching
// pending entry.
type AssertionNotFoundError struct {
	Key string
}

func (e *AssertionNotFoundError) Error() string {
	return fmt.Sprintf("no pending assertion matches %q — run `actl pending` to list what is stored", e.Key)
}

// Prompter supplies interactive choices when selectors are not given on the
// command line. The terminal implementation lives in the cmd package; tests
// use a scripted one.
type Prompter interface {
	// SelectProject picks exactly one project.
	SelectProject(projects []Project) (Project, error)
	// SelectAssertions picks one or more selector keys out of keys.
	SelectAssertions(keys []string) ([]string, error)
}

// Selector identifies a pending assertion: a bare contract name (matching an
// entry with no constructor arguments) or a name with an explicit argument
// list, e.g. "OwnerChange(0xabc,42)".
type Selector struct {
	Name string
	Args []string
}

// ParseSelector parses "name" or "name(arg0,arg1)".
func ParseSelector(s string) (Selector, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open == -1 {
		if s == "" {
			return Selector{}, fmt.Errorf("empty assertion selector")
		}
		return Selector{Name: s}, nil
	}
	if !strings.HasSuffix(s, ")") || open == 0 {
		return Selector{}, fmt.Errorf("malformed assertion selector %q — expected name or name(arg0,arg1)", s)
	}

	name := s[:open]
	inner := s[open+1 : len(s)-1]
	var args []string
	if inner != "" {
		args = strings.Split(inner, ",")
		for i := range args {
			args[i] = strings.TrimSpace(args[i])
		}
	}
	return Selector{Name: name, Args: args}, nil
}

// Key returns the canonical "name(arg0,arg1)" form.
func (s Selector) Key() string {
	return s.Name + "(" + strings.Join(s.Args, ",") + ")"
}

// Matches reports whether the selector identifies the given pending entry:
// the name and the constructor-argument encoding must both match.
func (s Selector) Matches(p config.PendingAssertion) bool {
	return s.Name == p.Name && slices.Equal(s.Args, p.ConstructorArgs)
}

// ResolveProject picks the target project: by explicit name if given,
// otherwise interactively via the prompter.
func ResolveProject(explicit string, projects []Project, prompter Prompter) (Project, error) {
	if len(projects) == 0 {
		return Project{}, ErrNoProjects
	}
	if explicit != "" {
		for _, p := range projects {
			if p.Name == explicit {
				return p, nil
			}
		}
		return Project{}, &ProjectNotFoundError{Name: explicit}
	}
	return prompter.SelectProject(projects)
}

// ResolveAssertions picks the pending entries to register: each explicit
// selector must match exactly one entry, otherwise the prompter offers a
// multi-choice over everything pending.
func ResolveAssertions(selectors []Selector, pending []config.PendingAssertion, prompter Prompter) ([]config.PendingAssertion, error) {
	if len(pending) == 0 {
		return nil, ErrNoPending
	}

	if len(selectors) > 0 {
		var matched []config.PendingAssertion
		for _, sel := range selectors {
			i := slices.IndexFunc(pending, sel.Matches)
			if i == -1 {
				return nil, &AssertionNotFoundError{Key: sel.Key()}
			}
			matched = append(matched, pending[i])
		}
		return matched, nil
	}

	keys := make([]string, len(pending))
	for i, p := range pending {
		keys[i] = p.Key()
	}
	chosen, err := prompter.SelectAssertions(keys)
	if err != nil {
		return nil, err
	}

	var matched []config.PendingAssertion
	for _, key := range chosen {
		i := slices.IndexFunc(pending, func(p config.PendingAssertion) bool { return p.Key() == key })
		if i == -1 {
			return nil, &AssertionNotFoundError{Key: key}
		}
		matched = append(matched, pending[i])
	}
	return matched, nil
}
