package cli

import (
	"os"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	boldStyle  = lipgloss.NewStyle().Bold(true)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#FF6B6B"})
	pathStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1F618D", Dark: "#5DADE2"})
)

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// render applies style only when f is a terminal
func render(f *os.File, style lipgloss.Style, s string) string {
	if !isTerminal(f) {
		return s
	}
	return style.Render(s)
}

// FormatError renders err for stderr
func FormatError(err error) string {
	return render(os.Stderr, errorStyle, "Error: "+err.Error())
}

func formatBold(s string) string {
	return render(os.Stdout, boldStyle, s)
}

func formatBoldUpper(s string) string {
	return formatBold(strings.ToUpper(s))
}

func formatPath(s string) string {
	return render(os.Stdout, pathStyle, s)
}

// initTemplateFormatting adds custom formatting functions to Cobra templates
func initTemplateFormatting() {
	cobra.AddTemplateFuncs(template.FuncMap{
		"bold":      formatBold,
		"boldUpper": formatBoldUpper,
	})
}
