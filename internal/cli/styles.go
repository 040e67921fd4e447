package cli

import "github.com/charmbracelet/lipgloss"

// Styles holds all lipgloss styles for the REPL.
type Styles struct {
	// Echoed input prompt
	Prompt lipgloss.Style
	// Echoed command text
	Command lipgloss.Style
	// Successful result
	OutputSuccess lipgloss.Style
	// Failed result
	OutputFailure lipgloss.Style
	// Error kind label
	ErrorLabel lipgloss.Style
	// Directory lines in a tree
	TreeDir lipgloss.Style
	// Dimmed output text
	OutputDim lipgloss.Style
	// Permission flags that are set
	FlagOn lipgloss.Style
	// Agent turn header
	TurnHeader lipgloss.Style
	// Separator line between viewport and input
	Separator lipgloss.Style
	// Status bar
	StatusBar lipgloss.Style
	// Spinner message
	SpinnerMessage lipgloss.Style
}

// DefaultStyles returns styles with colors enabled.
func DefaultStyles() Styles {
	return Styles{
		Prompt:         lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true), // cyan
		Command:        lipgloss.NewStyle().Bold(true),
		OutputSuccess:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")), // green
		OutputFailure:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")), // red
		ErrorLabel:     lipgloss.NewStyle().Foreground(lipgloss.Color("3")), // yellow
		TreeDir:        lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true),
		OutputDim:      lipgloss.NewStyle().Faint(true),
		FlagOn:         lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		TurnHeader:     lipgloss.NewStyle().Faint(true),
		Separator:      lipgloss.NewStyle().Faint(true),
		StatusBar:      lipgloss.NewStyle().Faint(true),
		SpinnerMessage: lipgloss.NewStyle().Faint(true),
	}
}

// NoColorStyles returns styles with no colors (plain text).
func NoColorStyles() Styles {
	return Styles{
		Prompt:         lipgloss.NewStyle(),
		Command:        lipgloss.NewStyle(),
		OutputSuccess:  lipgloss.NewStyle(),
		OutputFailure:  lipgloss.NewStyle(),
		ErrorLabel:     lipgloss.NewStyle(),
		TreeDir:        lipgloss.NewStyle(),
		OutputDim:      lipgloss.NewStyle(),
		FlagOn:         lipgloss.NewStyle(),
		TurnHeader:     lipgloss.NewStyle(),
		Separator:      lipgloss.NewStyle(),
		StatusBar:      lipgloss.NewStyle(),
		SpinnerMessage: lipgloss.NewStyle(),
	}
}
