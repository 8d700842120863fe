package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"

	"github.com/aretw0/automata/pkg/domain"
)

// PrintBanner writes the ASCII art banner shown by long-running commands.
func PrintBanner(w io.Writer) {
	p := termenv.EnvColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"                _                        _        ", "#818cf8"},
		{"     __ _ _   _| |_ ___  _ __ ___   __ _| |_ __ _ ", "#a78bfa"},
		{"    / _` | | | | __/ _ \\| '_ ` _ \\ / _` | __/ _` |", "#c084fc"},
		{"   | (_| | |_| | || (_) | | | | | | (_| | || (_| |", "#e879f9"},
		{"    \\__,_|\\__,_|\\__\\___/|_| |_| |_|\\__,_|\\__\\__,_|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Verdict returns the verdict styled for the terminal: green for accepted,
// red for rejected. The color is dropped when the environment disables it.
func Verdict(v domain.Verdict) string {
	p := termenv.EnvColorProfile()
	color := "#ef4444"
	if v == domain.VerdictAccepted {
		color = "#22c55e"
	}
	return p.String(string(v)).Foreground(p.Color(color)).Bold().String()
}
