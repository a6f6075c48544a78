package ui

import (
	"fmt"
	"strings"

	"github.com/five82/checklist/internal/cache"
	"github.com/five82/checklist/internal/mutation"
	"github.com/five82/checklist/internal/todos"
)

// activityLabels names the in-flight mutation shown in the header.
var activityLabels = []struct {
	kind  mutation.Kind
	label string
}{
	{mutation.KindAdd, "adding…"},
	{mutation.KindToggle, "toggling…"},
	{mutation.KindDelete, "deleting…"},
}

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{bg.Render("checklist", styles.Logo)}

	switch m.snapshot.State {
	case cache.Loading:
		parts = append(parts, bg.Render(m.spinner.View()+" Loading...", styles.WarningText))
	case cache.Error:
		parts = append(parts, bg.Render("UNAVAILABLE", styles.DangerText))
	case cache.Ready:
		done, pending := todos.Counts(m.snapshot.Items)
		parts = append(parts,
			bg.Render("Pending:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprintf("%d", pending), styles.Text),
			bg.Render("Done:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprintf("%d", done), styles.SuccessText),
		)
	}

	parts = append(parts, bg.Render("Filter:", styles.MutedText)+bg.Space()+bg.Render(string(m.filter), styles.AccentText))

	if activity := m.activity(); activity != "" {
		parts = append(parts, bg.Render(m.spinner.View()+" "+activity, styles.InfoText))
	}

	if m.snapshot.IsReady() && m.snapshot.LastError != nil {
		label := "STALE"
		if m.snapshot.IsOffline() {
			label = "OFFLINE"
		}
		parts = append(parts, bg.Render(label, styles.DangerText))
	}

	if !m.snapshot.LastUpdated.IsZero() {
		parts = append(parts, bg.Render(m.snapshot.LastUpdated.Format("15:04:05"), styles.MutedText))
	}

	if !compact && m.endpoint != "" {
		parts = append(parts, bg.Render(truncate(m.endpoint, 40), styles.FaintText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// activity describes the mutations that are in flight.
func (m Model) activity() string {
	if m.mutator == nil {
		return ""
	}
	var labels []string
	for _, a := range activityLabels {
		if m.mutator.Status(a.kind).Phase == mutation.InFlight {
			labels = append(labels, a.label)
		}
	}
	return strings.Join(labels, " ")
}
