package main

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/lipgloss"
)

var motivations = [...]string{
	"The plan is written. The bar is not going to lift itself.",
	"Rest days count. Skipped days do not.",
	"Three sets today beat ten sets someday.",
	"Progress is a log entry, not a feeling.",
	"Warm up first. Your future knees will thank you.",
	"Consistency compounds. So does the couch.",
	"Add one rep. Then add one more next week.",
	"The hardest exercise is leaving the house. The rest is programming.",
	"Nobody regrets a workout they finished.",
	"Hydrate, lift, log, repeat.",
}

// motivation returns one line to close a command with.
func motivation() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(motivations[rand.IntN(len(motivations))])
}

func printHelp(w io.Writer) {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fb923c")).
		Bold(true).
		Render("F I T L I N E")

	tagline := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("Plans, logs and a premium coach, from your terminal.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"fitline", "Open the dashboard (interactive TUI)"},
		{"fitline login [user]", "Sign in"},
		{"fitline register", "Create an account"},
		{"fitline logout", "Sign out and revoke the session"},
		{"fitline status", "Show account and premium status"},
		{"fitline plan generate", "Build a plan (--goal --level --days --equipment)"},
		{"fitline plan show", "Print the saved plan"},
		{"fitline plan export [file]", "Write the saved plan as YAML"},
		{"fitline plan import <file>", "Load a plan from YAML"},
		{"fitline subscribe", "Buy premium in the browser"},
		{"fitline verify", "Re-check premium (--session-id)"},
		{"fitline --version", "Show version"},
		{"fitline help", "You are here"},
	}

	fmt.Fprintf(w, "\n  %s\n\n  %s\n\n  Commands:\n", title, tagline)
	for _, c := range commands {
		fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-28s", c.cmd)), descStyle.Render(c.desc))
	}
	fmt.Fprintf(w, "\n  %s\n\n", descStyle.Render("Settings: ~/.fitline/config.yaml or FITLINE_* environment variables"))
}
