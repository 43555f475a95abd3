package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// multiModel is the Bubble Tea model for the multi-select picker.
type multiModel struct {
	title    string
	items    []PickerItem
	cursor   int
	checked  map[int]bool
	done     bool
	quitting bool
}

func (m multiModel) Init() tea.Cmd { return nil }

func (m multiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case " ":
			m.checked[m.cursor] = !m.checked[m.cursor]
		case "a":
			all := len(m.checked) < len(m.items)
			for i := range m.items {
				if all {
					m.checked[i] = true
				} else {
					delete(m.checked, i)
				}
			}
		case "enter":
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m multiModel) View() string {
	if m.quitting || m.done {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(StyleTitle.Render("  "+m.title) + "\n\n")

	for i, item := range m.items {
		prefix := "    "
		if i == m.cursor {
			prefix = "  ▸ "
		}

		box := "[ ]"
		if m.checked[i] {
			box = StyleSuccess.Render("[x]")
		}

		line := prefix + box + " " + StyleValue.Render(item.Label)
		if item.SubLabel != "" {
			line += "  " + StyleMeta.Render(item.SubLabel)
		}

		if i == m.cursor {
			sb.WriteString(StyleSelected.Render(line) + "\n")
		} else {
			sb.WriteString(line + "\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(StyleMeta.Render("  [ ↑↓ / jk ] navigate   [ Space ] toggle   [ a ] all   [ Enter ] confirm   [ q ] cancel") + "\n")
	return sb.String()
}

// PickItems runs an interactive multi-select picker and returns the selected
// Values in list order. Returns (nil, nil) if the user cancels or confirms
// with nothing checked. Returns an error only on TUI failure.
func PickItems(title string, items []PickerItem) ([]string, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("no items to pick from")
	}

	m := multiModel{title: title, items: items, checked: make(map[int]bool)}
	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("picker: %w", err)
	}

	fm := final.(multiModel)
	if fm.quitting {
		return nil, nil
	}
	var out []string
	for i, item := range fm.items {
		if fm.checked[i] {
			out = append(out, item.Value)
		}
	}
	return out, nil
}
