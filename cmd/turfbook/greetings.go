package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func printHelp() {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#3ecf6a")).
		Bold(true).
		Render("T U R F B O O K")

	tagline := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("Book a pitch from your terminal.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"turfbook", "Browse turfs and book slots (interactive TUI)"},
		{"turfbook whoami", "Show the signed-in account"},
		{"turfbook logout", "Clear the saved session"},
		{"turfbook --version", "Show version"},
		{"turfbook help", "You are here"},
	}

	fmt.Printf("\n  %s\n\n  %s\n\n  Commands:\n", title, tagline)
	for _, c := range commands {
		fmt.Printf("    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}

	envStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	fmt.Printf("\n  Environment:\n")
	for _, e := range []struct{ name, desc string }{
		{"TURFBOOK_API_URL", "API base URL (default http://localhost:9000/api/v1)"},
		{"TURFBOOK_DEBUG", "set to 1 for a request log in ~/.turfbook/debug.log"},
	} {
		fmt.Printf("    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", e.name)), envStyle.Render(e.desc))
	}
	fmt.Println()
}
