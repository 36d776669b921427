package main

import (
	"fmt"
	"io"
)

// ANSI colors for command output (no lipgloss here, runs outside the TUI).
const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiItalic = "\033[3m"
	ansiEmber  = "\033[38;2;249;115;22m"  // #f97316
	ansiAmber  = "\033[38;2;251;146;60m"  // #fb923c
	ansiGold   = "\033[38;2;212;168;68m"  // #d4a844
	ansiSlate  = "\033[38;2;136;144;160m" // #8890a0
)

// printLogo prints the spaced FITLINE wordmark in alternating orange.
func printLogo(w io.Writer) {
	letters := "FITLINE"
	colors := [2]string{ansiAmber, ansiEmber}
	fmt.Fprint(w, "\n  ")
	for i, ch := range letters {
		fmt.Fprintf(w, "%s%s%c%s", colors[i%2], ansiBold, ch, ansiReset)
		if i < len(letters)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)
}

// printPremiumConfirmed announces a verified membership.
func printPremiumConfirmed(w io.Writer) {
	printLogo(w)
	fmt.Fprintf(w, "\n  %s%s★ premium%s  %s%sconfirmed%s\n",
		ansiGold, ansiBold, ansiReset,
		ansiSlate, ansiItalic, ansiReset,
	)
	fmt.Fprintf(w, "\n  %s│%s The coach is unlocked. Open it with %sfitline%s and press 5.\n\n",
		ansiGold, ansiReset, ansiBold, ansiReset)
}
