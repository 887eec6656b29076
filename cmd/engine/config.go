package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/younwookim/roomshell/internal/infrastructure/config"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	keyStyle     = lipgloss.NewStyle().Width(10).Foreground(lipgloss.Color("6"))
	defaultStyle = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

var configCmd = &cobra.Command{
	Use:   "config <file>",
	Short: "Show the effective settings of a config file",
	Long: `Parse a key=value settings file and print the values the engine would use.
Keys with malformed values fall back to their defaults and are listed as errors.

Examples:
  engine config ./game.cfg`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		loader := config.NewLoader(filepath.Dir(path))
		s, err := loader.LoadSettings(filepath.Base(path))

		var perrs config.ParseErrors
		if err != nil && !errors.As(err, &perrs) {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), renderSettings(path, s, perrs))
		return nil
	},
}

// renderSettings formats s with malformed keys marked as defaults
func renderSettings(name string, s config.Settings, perrs config.ParseErrors) string {
	bad := perrs.Keys()
	rows := []struct{ key, value string }{
		{"title", s.Title},
		{"width", strconv.Itoa(s.Width)},
		{"height", strconv.Itoa(s.Height)},
		{"framerate", strconv.Itoa(s.Framerate)},
		{"taskbar", strconv.FormatBool(s.Taskbar)},
		{"visible", strconv.FormatBool(s.Visible)},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(name))
	b.WriteString("\n")
	for _, r := range rows {
		value := r.value
		if slices.Contains(bad, r.key) {
			value += " " + defaultStyle.Render("(default)")
		}
		fmt.Fprintf(&b, "  %s%s\n", keyStyle.Render(r.key), value)
	}
	for _, e := range perrs {
		b.WriteString(errorStyle.Render("  " + e.Error()))
		b.WriteString("\n")
	}
	return b.String()
}
