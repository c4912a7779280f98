// Package tui implements the interactive registry editor behind
// 'botops edit'.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/avolkov/botops/internal/registry"
	"github.com/avolkov/botops/internal/style"
)

type mode int

const (
	modeBrowse mode = iota
	modeAdd
)

// row is one selectable line in the browse view.
type row struct {
	section registry.Section
	entry   registry.Entry
}

// Model is the bubbletea model for the registry editor. Every mutation
// goes through the registry manager immediately, so quitting at any
// point leaves a consistent file.
type Model struct {
	mgr *registry.Manager

	rows   []row
	cursor int
	mode   mode

	// add-mode state
	idInput    textinput.Model
	nameInput  textinput.Model
	addSection registry.Section
	focusName  bool

	status string
	err    error
}

// New builds an editor over the given registry manager.
func New(mgr *registry.Manager) (*Model, error) {
	idInput := textinput.New()
	idInput.Placeholder = "numeric id"
	idInput.CharLimit = 20

	nameInput := textinput.New()
	nameInput.Placeholder = "display name (optional)"
	nameInput.CharLimit = 64

	m := &Model{
		mgr:        mgr,
		idInput:    idInput,
		nameInput:  nameInput,
		addSection: registry.SectionUsers,
	}
	if err := m.reload(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) reload() error {
	admins, users, err := m.mgr.List()
	if err != nil {
		return err
	}

	m.rows = m.rows[:0]
	for _, e := range admins {
		m.rows = append(m.rows, row{section: registry.SectionAdmins, entry: e})
	}
	for _, e := range users {
		m.rows = append(m.rows, row{section: registry.SectionUsers, entry: e})
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	return nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.mode == modeAdd {
		return m.updateAdd(keyMsg)
	}
	return m.updateBrowse(keyMsg)
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case "d":
		if len(m.rows) == 0 {
			break
		}
		target := m.rows[m.cursor]
		if err := m.mgr.Remove(target.entry.ID); err != nil {
			m.err = err
			break
		}
		m.err = nil
		m.status = fmt.Sprintf("removed %s", target.entry.ID)
		m.err = m.reload()

	case "a":
		m.mode = modeAdd
		m.addSection = registry.SectionUsers
		m.focusName = false
		m.idInput.SetValue("")
		m.nameInput.SetValue("")
		m.idInput.Focus()
		m.nameInput.Blur()
	}
	return m, nil
}

func (m *Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		return m, nil

	case "ctrl+c":
		return m, tea.Quit

	case "ctrl+s":
		if m.addSection == registry.SectionUsers {
			m.addSection = registry.SectionAdmins
		} else {
			m.addSection = registry.SectionUsers
		}
		return m, nil

	case "tab":
		m.focusName = !m.focusName
		if m.focusName {
			m.idInput.Blur()
			m.nameInput.Focus()
		} else {
			m.nameInput.Blur()
			m.idInput.Focus()
		}
		return m, nil

	case "enter":
		id := strings.TrimSpace(m.idInput.Value())
		name := strings.TrimSpace(m.nameInput.Value())

		var err error
		if m.addSection == registry.SectionAdmins {
			err = m.mgr.AddAdmin(id, name)
		} else {
			err = m.mgr.AddUser(id, name)
		}
		if err != nil {
			m.err = err
			return m, nil
		}

		m.err = nil
		m.status = fmt.Sprintf("added %s to %s", id, m.addSection)
		m.mode = modeBrowse
		m.err = m.reload()
		return m, nil
	}

	var cmd tea.Cmd
	if m.focusName {
		m.nameInput, cmd = m.nameInput.Update(msg)
	} else {
		m.idInput, cmd = m.idInput.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(style.Render(style.Bold, "users.cfg") + "\n\n")

	if m.mode == modeAdd {
		b.WriteString(fmt.Sprintf("Add to %s (ctrl+s switches section)\n\n", style.Render(style.Section, string(m.addSection))))
		b.WriteString("  ID:   " + m.idInput.View() + "\n")
		b.WriteString("  Name: " + m.nameInput.View() + "\n\n")
		b.WriteString(style.Render(style.Dim, "enter save · tab next field · esc cancel") + "\n")
	} else {
		if len(m.rows) == 0 {
			b.WriteString(style.Render(style.Dim, "  (no entries)") + "\n")
		}
		lastSection := registry.Section("")
		for i, r := range m.rows {
			if r.section != lastSection {
				b.WriteString(style.Render(style.Section, r.section.Header()) + "\n")
				lastSection = r.section
			}
			marker := "  "
			if i == m.cursor {
				marker = style.Render(style.Bold, "> ")
			}
			b.WriteString(fmt.Sprintf("%s%s\n", marker, r.entry))
		}
		b.WriteString("\n" + style.Render(style.Dim, "a add · d delete · j/k move · q quit") + "\n")
	}

	if m.err != nil {
		b.WriteString(style.Fail() + " " + m.err.Error() + "\n")
	} else if m.status != "" {
		b.WriteString(style.OK() + " " + m.status + "\n")
	}

	return b.String()
}

// Run launches the editor in the terminal.
func Run(mgr *registry.Manager) error {
	m, err := New(mgr)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m).Run()
	return err
}
