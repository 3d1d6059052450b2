package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Terminal palette. Greens lead since most output describes growth.
var (
	colorLeaf  = lipgloss.Color("35")
	colorMoss  = lipgloss.Color("36")
	colorBark  = lipgloss.Color("180")
	colorRust  = lipgloss.Color("167")
	colorSky   = lipgloss.Color("75")
	colorChalk = lipgloss.Color("255")
	colorStone = lipgloss.Color("245")
	colorShade = lipgloss.Color("240")
)

// Styles shared by the commands and the TUI.
var (
	StyleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorMoss)
	StyleDim    = lipgloss.NewStyle().Foreground(colorShade)
	StyleValue  = lipgloss.NewStyle().Foreground(colorChalk)
	StyleNumber = lipgloss.NewStyle().Foreground(colorMoss)
)

var (
	styleOK      = lipgloss.NewStyle().Foreground(colorLeaf)
	styleFail    = lipgloss.NewStyle().Foreground(colorRust)
	styleNote    = lipgloss.NewStyle().Foreground(colorStone)
	styleSpin    = lipgloss.NewStyle().Foreground(colorMoss)
	styleHit     = lipgloss.NewStyle().Foreground(colorLeaf)
	styleMiss    = lipgloss.NewStyle().Foreground(colorBark)
	styleCommand = lipgloss.NewStyle().Foreground(colorSky)
	styleLabel   = lipgloss.NewStyle().Foreground(colorStone).Width(12)
)

const (
	markOK    = "✓"
	markFail  = "✗"
	markNote  = "›"
	markArrow = "→"
	sep       = " · "
)

func printMarked(mark string, style lipgloss.Style, format string, args []any) {
	fmt.Println(style.Render(mark) + " " + fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { printMarked(markOK, styleOK, format, args) }

func printError(format string, args ...any) { printMarked(markFail, styleFail, format, args) }

func printInfo(format string, args ...any) { printMarked(markNote, styleNote, format, args) }

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile lists a written output path.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(markArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleLabel.Render(key) + " " + StyleValue.Render(value))
}

// printStats summarizes a run as "N nodes · T ticks · reason · cached".
func printStats(nodes, ticks int, reason string, cached bool) {
	fields := []string{fmt.Sprintf("%d nodes", nodes), fmt.Sprintf("%d ticks", ticks)}
	if reason != "" {
		fields = append(fields, reason)
	}
	for i, f := range fields {
		fields[i] = StyleDim.Render(f)
	}
	if cached {
		fields = append(fields, styleHit.Render("cached"))
	} else {
		fields = append(fields, styleMiss.Render("fresh"))
	}
	fmt.Println("  " + strings.Join(fields, StyleDim.Render(sep)))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() { fmt.Println() }
