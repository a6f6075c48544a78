package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/checklist/internal/todos"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// confirmDelete asks before an item is removed.
type confirmDelete struct {
	item todos.Item
}

func newConfirmDelete(item todos.Item) Modal {
	return confirmDelete{item: item}
}

func (c confirmDelete) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case key.Matches(keyMsg, keys.Confirm):
		return c, c.decide(true), true
	case key.Matches(keyMsg, keys.Decline):
		return c, c.decide(false), true
	}
	return c, nil, false
}

func (c confirmDelete) decide(confirmed bool) tea.Cmd {
	item := c.item
	return func() tea.Msg {
		return deleteDecisionMsg{item: item, confirmed: confirmed}
	}
}

func (c confirmDelete) View(theme Theme, width, height int) string {
	styles := theme.Styles().WithBackground(theme.SurfaceAlt)
	boxWidth := minInt(60, maxInt(24, width-4))

	var b strings.Builder
	b.WriteString(styles.DangerText.Render("Delete item?"))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Render(truncate(c.item.Text, boxWidth-6)))
	b.WriteString("\n\n")
	b.WriteString(styles.AccentText.Render("y"))
	b.WriteString(styles.MutedText.Render(" delete   "))
	b.WriteString(styles.AccentText.Render("n/esc"))
	b.WriteString(styles.MutedText.Render(" keep"))

	box := styles.Modal.Width(boxWidth).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(lipgloss.Color(theme.Background)),
	)
}

// renderModal draws the active modal over the whole screen.
func (m Model) renderModal() string {
	return m.modal.View(m.theme, m.width, m.height)
}
