package tui

import "github.com/charmbracelet/lipgloss"

// Layout constants
const (
	StatusBarHeight    = 1
	BorderSize         = 2 // Width or height consumed by a rounded border
	SidebarMinWidth    = 36
	SidebarWidthRatio  = 40 // Percent of the terminal width
	NarrowTerminal     = 100
	FormMaxHeightRatio = 2 // The form takes at most 1/ratio of the right pane
	InputCharLimit     = 4096

	// HistoryLimit caps the entries loaded per operation
	HistoryLimit = 50
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"}
	colorBlue   = lipgloss.AdaptiveColor{Light: "#00008b", Dark: "#5f87ff"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
	colorPurple = lipgloss.AdaptiveColor{Light: "#5f00af", Dark: "#d787ff"}
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleError   = lipgloss.NewStyle().Foreground(colorRed)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleSubtle  = lipgloss.NewStyle().Foreground(colorGray)
	styleStrike  = lipgloss.NewStyle().Foreground(colorGray).Strikethrough(true)
)

// methodColors colors HTTP verbs in lists
var methodColors = map[string]lipgloss.AdaptiveColor{
	"get":     colorBlue,
	"post":    colorGreen,
	"put":     colorYellow,
	"patch":   colorPurple,
	"delete":  colorRed,
	"head":    colorCyan,
	"options": colorGray,
	"trace":   colorGray,
}
