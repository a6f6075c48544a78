package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/five82/checklist/internal/cache"
	"github.com/five82/checklist/internal/todos"
)

// renderBody renders the list area, exactly height rows tall.
func (m Model) renderBody(height int) string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)

	var lines []string
	switch m.snapshot.State {
	case cache.Loading:
		lines = []string{bg.Render(m.spinner.View()+" Loading items...", styles.MutedText)}
	case cache.Error:
		msg := "unknown error"
		if m.snapshot.LastError != nil {
			msg = m.snapshot.LastError.Error()
		}
		lines = []string{
			bg.Render("Could not load items", styles.DangerText),
			bg.Render(truncate(msg, maxInt(10, m.width-2)), styles.MutedText),
			"",
			bg.Render("press r to retry", styles.FaintText),
		}
	default:
		lines = m.listLines(height, styles, bg)
	}

	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for i, line := range lines {
		lines[i] = bg.FillLine(line, m.width)
	}
	return strings.Join(lines, "\n")
}

// listLines renders the visible window of items around the cursor.
func (m Model) listLines(height int, styles Styles, bg BgStyle) []string {
	items := m.visibleItems()
	if len(items) == 0 {
		text := "Nothing here yet. Press a to add an item."
		if len(m.snapshot.Items) > 0 {
			text = "No " + string(m.filter) + " items."
		}
		return []string{bg.Render(text, styles.FaintText)}
	}

	start := 0
	if m.cursor >= height {
		start = m.cursor - height + 1
	}
	end := minInt(len(items), start+height)

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, m.renderItem(items[i], i == m.cursor, styles, bg))
	}
	return lines
}

func (m Model) renderItem(item todos.Item, selected bool, styles Styles, bg BgStyle) string {
	box := "[ ] "
	textStyle := styles.Text
	if item.Done {
		box = "[x] "
		textStyle = styles.DoneItem
	}
	text := truncate(item.Text, maxInt(1, m.width-6))

	if selected {
		return styles.Selected.Width(m.width).Render(padRight(" "+box+text, m.width))
	}
	boxStyle := styles.MutedText
	if item.Done {
		boxStyle = styles.SuccessText
	}
	return bg.Space() + bg.Render(box, boxStyle) + bg.Render(text, textStyle)
}

// renderDraft renders the inline add input.
func (m Model) renderDraft() string {
	styles := m.theme.Styles()
	return styles.Draft.Width(m.width).Render(m.draft.View())
}

// renderNotice renders the transient notice line.
func (m Model) renderNotice() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)
	style := styles.InfoText
	if m.notice.isErr {
		style = styles.DangerText
	}
	return bg.FillLine(bg.Space()+bg.Render(truncate(m.notice.text, maxInt(1, m.width-2)), style), m.width)
}

// renderFooter renders the key hints bar.
func (m Model) renderFooter() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	bindings := m.keys.ShortHelp()
	if m.drafting {
		bindings = []key.Binding{m.keys.Submit, m.keys.Cancel}
	}

	segments := make([]string, 0, len(bindings)+1)
	for _, b := range bindings {
		h := b.Help()
		segments = append(segments, bg.Render(h.Key, styles.AccentText)+bg.Render(":", styles.FaintText)+bg.Render(h.Desc, styles.MutedText))
	}
	segments = append(segments, bg.Render("T", styles.AccentText)+bg.Render(":", styles.FaintText)+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Footer.Width(m.width).Render(bg.Join(segments, "  "))
}
