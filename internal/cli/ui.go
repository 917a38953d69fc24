package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/lanechart/pkg/pipeline"
)

// stdout receives all user-facing output. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// =============================================================================
// Palette and Styles
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(10)
)

// statusColors colors a link's routing outcome in tables and the browser.
var statusColors = map[string]lipgloss.Color{
	statusRouted:   colorGreen,
	statusFallback: colorYellow,
	statusSkipped:  colorRed,
}

func statusStyle(status string) lipgloss.Style {
	c, ok := statusColors[status]
	if !ok {
		c = colorGray
	}
	return lipgloss.NewStyle().Foreground(c)
}

const (
	iconArrow = "→"
	iconDot   = " · "
)

// =============================================================================
// Status Lines
// =============================================================================

type lineKind int

const (
	lineSuccess lineKind = iota
	lineError
	lineWarning
	lineInfo
)

var lineMarks = [...]struct {
	icon  string
	color lipgloss.Color
	tint  bool // color the message too, not just the icon
}{
	lineSuccess: {"✓", colorGreen, false},
	lineError:   {"✗", colorRed, false},
	lineWarning: {"!", colorYellow, true},
	lineInfo:    {"›", colorGray, false},
}

func emit(kind lineKind, format string, args ...any) {
	mark := lineMarks[kind]
	style := lipgloss.NewStyle().Foreground(mark.color)
	msg := fmt.Sprintf(format, args...)
	if mark.tint {
		msg = style.Render(msg)
	}
	fmt.Fprintln(stdout, style.Render(mark.icon)+" "+msg)
}

func printSuccess(format string, args ...any) { emit(lineSuccess, format, args...) }
func printError(format string, args ...any)   { emit(lineError, format, args...) }
func printWarning(format string, args ...any) { emit(lineWarning, format, args...) }
func printInfo(format string, args ...any)    { emit(lineInfo, format, args...) }

// printDetail prints an indented, dimmed line under a status line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, "  "+styleKey.Render(key)+StyleValue.Render(value))
}

// printStats summarizes a pipeline run on one line, ending with whether the
// artifacts came from the cache.
func printStats(s pipeline.Stats, cached bool) {
	parts := []string{
		fmt.Sprintf("%d lanes", s.Lanes),
		fmt.Sprintf("%d items", s.Items),
	}
	if s.Links > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d links routed", s.Routed, s.Links))
	}
	if s.Fallbacks > 0 {
		parts = append(parts, fmt.Sprintf("%d fallbacks", s.Fallbacks))
	}

	origin := StyleDim.Render("fresh")
	if cached {
		origin = lipgloss.NewStyle().Foreground(colorGreen).Render("cached")
	}
	fmt.Fprintln(stdout, "  "+StyleDim.Render(strings.Join(parts, iconDot)+iconDot)+origin)
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}
