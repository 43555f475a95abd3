package cmd

import (
	"fmt"

	"github.com/assertlab/actl/internal/hub"
	"github.com/assertlab/actl/internal/ui"
)

// interactivePrompter backs hub.Prompter with the terminal pickers.
type interactivePrompter struct{}

func (interactivePrompter) SelectProject(projects []hub.Project) (hub.Project, error) {
	items := make([]ui.PickerItem, len(projects))
	for i, p := range projects {
		items[i] = ui.PickerItem{
			Label:    p.Name,
			SubLabel: p.ID,
			Value:    p.ID,
		}
	}
	id, err := ui.PickItem("Select a project", items)
	if err != nil {
		return hub.Project{}, err
	}
	if id == "" {
		return hub.Project{}, fmt.Errorf("project selection cancelled")
	}
	for _, p := range projects {
		if p.ID == id {
			return p, nil
		}
	}
	return hub.Project{}, fmt.Errorf("project selection cancelled")
}

func (interactivePrompter) SelectAssertions(keys []string) ([]string, error) {
	items := make([]ui.PickerItem, len(keys))
	for i, k := range keys {
		items[i] = ui.PickerItem{Label: k, Value: k}
	}
	picked, err := ui.PickItems("Select assertions to register", items)
	if err != nil {
		return nil, err
	}
	if len(picked) == 0 {
		return nil, fmt.Errorf("assertion selection cancelled")
	}
	return picked, nil
}
