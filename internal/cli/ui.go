package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// statusOut receives status lines. Command results go to CLI.Out, so stdout
// stays pipeable.
var statusOut io.Writer = os.Stderr

// =============================================================================
// Styles
// =============================================================================

var (
	colorAccent = lipgloss.Color("36")  // teal
	colorOK     = lipgloss.Color("35")  // green
	colorTraced = lipgloss.Color("220") // amber, also warnings
	colorFail   = lipgloss.Color("167") // soft red
	colorLink   = lipgloss.Color("75")  // light blue
	colorText   = lipgloss.Color("255")
	colorMuted  = lipgloss.Color("245")
	colorFaint  = lipgloss.Color("240")
)

var (
	// StyleTitle renders headings such as the traced focus.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	// StyleDim renders secondary text and dimmed (off-lineage) nodes.
	StyleDim = lipgloss.NewStyle().Foreground(colorFaint)

	// StyleValue renders ids, paths and counts.
	StyleValue = lipgloss.NewStyle().Foreground(colorText)

	// StyleTraced renders nodes and attributes on a traced lineage.
	StyleTraced = lipgloss.NewStyle().Foreground(colorTraced)

	styleSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleLabel   = lipgloss.NewStyle().Foreground(colorMuted).Width(12)
	styleCommand = lipgloss.NewStyle().Foreground(colorLink)
)

// =============================================================================
// Status Lines
// =============================================================================

type statusKind int

const (
	statusSuccess statusKind = iota
	statusError
	statusWarning
)

var statusIcons = [...]struct {
	glyph string
	style lipgloss.Style
}{
	statusSuccess: {"✓", lipgloss.NewStyle().Foreground(colorOK)},
	statusError:   {"✗", lipgloss.NewStyle().Foreground(colorFail)},
	statusWarning: {"!", lipgloss.NewStyle().Foreground(colorTraced)},
}

func status(kind statusKind, format string, args ...any) {
	icon := statusIcons[kind]
	msg := fmt.Sprintf(format, args...)
	if kind == statusWarning {
		msg = icon.style.Render(msg)
	}
	fmt.Fprintln(statusOut, icon.style.Render(icon.glyph)+" "+msg)
}

func printSuccess(format string, args ...any) { status(statusSuccess, format, args...) }
func printError(format string, args ...any)   { status(statusError, format, args...) }
func printWarning(format string, args ...any) { status(statusWarning, format, args...) }

// printFile prints an indented "→ path" line under a status line.
func printFile(path string) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(statusOut, styleLabel.Render(key)+" "+StyleValue.Render(value))
}

// printStats prints "n nodes · m edges · k dropped" for a prepared graph.
func printStats(nodes, edges, dropped int) {
	parts := []string{fmt.Sprintf("%d nodes", nodes), fmt.Sprintf("%d edges", edges)}
	if dropped > 0 {
		parts = append(parts, StyleTraced.Render(fmt.Sprintf("%d dropped", dropped)))
	}
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(strings.Join(parts, " · ")))
}

func printCacheStatus(cached bool) {
	label, style := "fresh", StyleDim
	if cached {
		label, style = "cached", statusIcons[statusSuccess].style
	}
	fmt.Fprintln(statusOut, "  "+style.Render(label))
}

// printNextStep suggests a follow-up command after a blank line.
func printNextStep(description, cmd string) {
	fmt.Fprintln(statusOut)
	fmt.Fprintln(statusOut, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}
