package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// wizard steps
const (
	stepName = iota
	stepKind
	stepDone
)

// wizardModel holds the state for the init wizard.
type wizardModel struct {
	dir string

	step     int
	name     string
	kindIdx  int
	aborted  bool
	err      error
	finished string
}

func newWizardModel(dir string) wizardModel {
	return wizardModel{dir: dir}
}

// Init implements the Bubble Tea init method.
func (m wizardModel) Init() tea.Cmd {
	return nil
}

// Update implements the Bubble Tea update method.
func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "ctrl+c", "esc":
		m.aborted = true
		return m, tea.Quit
	}

	switch m.step {
	case stepName:
		return m.updateName(keyMsg)
	case stepKind:
		return m.updateKind(keyMsg)
	}
	return m, tea.Quit
}

func (m wizardModel) updateName(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEnter:
		if validName(m.name) {
			m.step = stepKind
		}
	case tea.KeyBackspace:
		if len(m.name) > 0 {
			m.name = m.name[:len(m.name)-1]
		}
	case tea.KeyRunes:
		m.name += string(key.Runes)
	}
	return m, nil
}

func (m wizardModel) updateKind(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "up", "k":
		if m.kindIdx > 0 {
			m.kindIdx--
		}
	case "down", "j":
		if m.kindIdx < len(allKinds)-1 {
			m.kindIdx++
		}
	case "enter":
		m.step = stepDone
		m.err = scaffold(m.dir, m.name, allKinds[m.kindIdx])
		if m.err == nil {
			m.finished = fmt.Sprintf("%s/%s", m.dir, m.name)
		}
		return m, tea.Quit
	}
	return m, nil
}

// View implements the Bubble Tea view method.
func (m wizardModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New Atakama detector plugin"))
	b.WriteString("\n\n")

	switch m.step {
	case stepName:
		b.WriteString("Plugin name: ")
		b.WriteString(m.name)
		b.WriteString("▌\n")
		if !validName(m.name) {
			b.WriteString(hintStyle.Render("lowercase letters, digits and dashes"))
			b.WriteString("\n")
		}
		b.WriteString(hintStyle.Render("enter to continue, esc to abort"))
	case stepKind:
		b.WriteString(fmt.Sprintf("Plugin name: %s\n\nDetector flavor:\n", m.name))
		for i, k := range allKinds {
			cursor := "  "
			line := string(k)
			if i == m.kindIdx {
				cursor = "> "
				line = selectedStyle.Render(line)
			}
			b.WriteString(cursor + line + "\n")
		}
		b.WriteString(hintStyle.Render("up/down to choose, enter to create"))
	case stepDone:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("error: %v", m.err)))
		} else {
			b.WriteString(successStyle.Render(fmt.Sprintf("created %s", m.finished)))
		}
	}

	b.WriteString("\n")
	return b.String()
}

// validName accepts the names the host registry accepts: short, stable,
// shell-safe identifiers.
func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-':
		default:
			return false
		}
	}
	return name[0] != '-' && name[len(name)-1] != '-'
}
