package cli

import "github.com/charmbracelet/lipgloss"

// Ember colour palette
// Shared theme colours for consistent branding across CLI and TUI
var (
	// Core colours (dark to bright)
	EmberYellow  = lipgloss.Color("#FFD700") // Bright yellow
	EmberOrange  = lipgloss.Color("#FF8C00") // Deep orange
	EmberRed     = lipgloss.Color("#FF4500") // Orange-red
	EmberCrimson = lipgloss.Color("#DC143C") // Deep crimson

	// Accent colours
	WarmGray = lipgloss.Color("#B8860B") // Dark goldenrod for subtle text
)
