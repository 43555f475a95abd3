package hub_test

import (
	"testing"

	"github.com/assertlab/actl/internal/config"
	"github.com/assertlab/actl/internal/hub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedPrompter returns pre-scripted choices instead of prompting.
type scriptedPrompter struct {
	project    string
	assertions []string
}

func (p *scriptedPrompter) SelectProject(projects []hub.Project) (hub.Project, error) {
	for _, pr := range projects {
		if pr.Name == p.project {
			return pr, nil
		}
	}
	return projects[0], nil
}

func (p *scriptedPrompter) SelectAssertions(keys []string) ([]string, error) {
	if p.assertions == nil {
		return keys, nil
	}
	return p.assertions, nil
}

func TestParseSelector(t *testing.T) {
	sel, err := hub.ParseSelector("OwnerChange")
	require.NoError(t, err)
	assert.Equal(t, "OwnerChange", sel.Name)
	assert.Empty(t, sel.Args)
	assert.Equal(t, "OwnerChange()", sel.Key())

	sel, err = hub.ParseSelector("OwnerChange(1, 2)")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, sel.Args)
	assert.Equal(t, "OwnerChange(1,2)", sel.Key())

	sel, err = hub.ParseSelector("Foo()")
	require.NoError(t, err)
	assert.Equal(t, "Foo", sel.Name)
	assert.Empty(t, sel.Args)
}

func TestParseSelectorMalformed(t *testing.T) {
	for _, in := range []string{"", "Foo(1,2", "(1,2)"} {
		_, err := hub.ParseSelector(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestSelectorMatchesExactArgsOnly(t *testing.T) {
	sel, err := hub.ParseSelector("foo(1,2)")
	require.NoError(t, err)

	assert.True(t, sel.Matches(config.PendingAssertion{Name: "foo", ConstructorArgs: []string{"1", "2"}}))
	assert.False(t, sel.Matches(config.PendingAssertion{Name: "foo"}))
	assert.False(t, sel.Matches(config.PendingAssertion{Name: "foo", ConstructorArgs: []string{"1", "3"}}))
	assert.False(t, sel.Matches(config.PendingAssertion{Name: "bar", ConstructorArgs: []string{"1", "2"}}))
}

func TestResolveProjectExplicit(t *testing.T) {
	projects := []hub.Project{{ID: "p1", Name: "vault"}, {ID: "p2", Name: "bridge"}}

	p, err := hub.ResolveProject("bridge", projects, nil)
	require.NoError(t, err)
	assert.Equal(t, "p2", p.ID)
}

func TestResolveProjectNotFound(t *testing.T) {
	projects := []hub.Project{{ID: "p1", Name: "vault"}}

	_, err := hub.ResolveProject("ghost", projects, nil)
	var notFound *hub.ProjectNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ghost", notFound.Name)
}

func TestResolveProjectNoneAvailable(t *testing.T) {
	_, err := hub.ResolveProject("", nil, &scriptedPrompter{})
	assert.ErrorIs(t, err, hub.ErrNoProjects)
}

func TestResolveProjectInteractive(t *testing.T) {
	projects := []hub.Project{{ID: "p1", Name: "vault"}, {ID: "p2", Name: "bridge"}}

	p, err := hub.ResolveProject("", projects, &scriptedPrompter{project: "bridge"})
	require.NoError(t, err)
	assert.Equal(t, "bridge", p.Name)
}

func TestResolveAssertionsExplicit(t *testing.T) {
	pending := []config.PendingAssertion{
		{Name: "foo", ConstructorArgs: []string{"1", "2"}, ArtifactID: "0xa"},
		{Name: "bar", ArtifactID: "0xb"},
	}

	sel, err := hub.ParseSelector("foo(1,2)")
	require.NoError(t, err)

	matched, err := hub.ResolveAssertions([]hub.Selector{sel}, pending, nil)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "0xa", matched[0].ArtifactID)
}

func TestResolveAssertionsBareNameMatchesNoArgs(t *testing.T) {
	pending := []config.PendingAssertion{{Name: "bar", ArtifactID: "0xb"}}

	sel, err := hub.ParseSelector("bar")
	require.NoError(t, err)

	matched, err := hub.ResolveAssertions([]hub.Selector{sel}, pending, nil)
	require.NoError(t, err)
	require.Len(t, matched, 1)
}

func TestResolveAssertionsNotFound(t *testing.T) {
	pending := []config.PendingAssertion{
		{Name: "foo", ArtifactID: "0xa"},                                   // foo()
		{Name: "foo", ConstructorArgs: []string{"1", "3"}, ArtifactID: "0xb"}, // foo(1,3)
	}

	sel, err := hub.ParseSelector("foo(1,2)")
	require.NoError(t, err)

	_, err = hub.ResolveAssertions([]hub.Selector{sel}, pending, nil)
	var notFound *hub.AssertionNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "foo(1,2)", notFound.Key)
}

func TestResolveAssertionsEmptyPending(t *testing.T) {
	_, err := hub.ResolveAssertions(nil, nil, &scriptedPrompter{})
	assert.ErrorIs(t, err, hub.ErrNoPending)
}

func TestResolveAssertionsInteractive(t *testing.T) {
	pending := []config.PendingAssertion{
		{Name: "foo", ConstructorArgs: []string{"1", "2"}},
		{Name: "bar"},
	}

	matched, err := hub.ResolveAssertions(nil, pending, &scriptedPrompter{assertions: []string{"bar()"}})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "bar", matched[0].Name)
}
