package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/feedwatch/internal/model"
)

var (
	feedHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	newStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	updatedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	removedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// printChanges writes one feed's changes as a short colored list.
func printChanges(w io.Writer, title string, changes []model.Change) {
	fmt.Fprintln(w, feedHeaderStyle.Render(fmt.Sprintf("%s (%d changes)", title, len(changes))))
	if len(changes) == 0 {
		fmt.Fprintln(w, dimStyle.Render("  no changes"))
		return
	}
	for _, c := range changes {
		fmt.Fprintf(w, "  %s %s\n", kindMarker(c.Kind), c.String())
	}
}

func printRemoved(w io.Writer, removed []model.Record) {
	fmt.Fprintln(w, feedHeaderStyle.Render(fmt.Sprintf("removed (%d)", len(removed))))
	for _, r := range removed {
		fmt.Fprintf(w, "  %s %s (%s)\n", removedStyle.Render("-"), r.Subject, r.UpdateDate)
	}
}

func kindMarker(k model.ChangeKind) string {
	if k == model.ChangeUpdated {
		return updatedStyle.Render("~")
	}
	return newStyle.Render("+")
}
