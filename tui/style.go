package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/tilequest/engine"
	"github.com/nathoo/tilequest/engine/grid"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarration = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleDialogue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	styleSuccess = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	styleBoard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	stylePlayer = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)
)

// Tile colours of the board pane.
var tileStyles = map[string]lipgloss.Style{
	grid.Glyph(grid.Wall):    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	grid.Glyph(grid.Floor):   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	grid.Glyph(grid.Crystal): lipgloss.NewStyle().Foreground(lipgloss.Color("201")).Bold(true),
	grid.Glyph(grid.Exit):    lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true),
	grid.Glyph(grid.Door):    lipgloss.NewStyle().Foreground(lipgloss.Color("178")),
	grid.Glyph(grid.Hole):    lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
	grid.Glyph(grid.Block):   lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
}

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarration lineKind = iota
	kindDialogue
	kindSystem
	kindError
	kindSuccess
	kindTrace
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case line == engine.MsgLevelComplete:
		return kindSuccess
	case line == engine.MsgDied, line == engine.MsgFellIntoHole,
		strings.HasPrefix(line, "You have no"),
		strings.HasPrefix(line, "You don't see"),
		strings.HasPrefix(line, "Unknown command"),
		strings.HasPrefix(line, "The exit is sealed"):
		return kindError
	case isSpeech(line):
		return kindDialogue
	default:
		return kindNarration
	}
}

// isSpeech reports whether line reads "Speaker: text" with a short,
// capitalised speaker.
func isSpeech(line string) bool {
	i := strings.Index(line, ": ")
	if i <= 0 || i > 24 {
		return false
	}
	c := line[0]
	return c >= 'A' && c <= 'Z' && !strings.ContainsAny(line[:i], ".!?")
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindDialogue:
		return styleDialogue.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindSuccess:
		return styleSuccess.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarration.Render(line)
	}
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}

// renderBoard draws the session view with one style per cell.
func renderBoard(view [][]engine.Cell) string {
	if len(view) == 0 {
		return ""
	}
	lines := make([]string, len(view))
	for y, row := range view {
		var b strings.Builder
		for _, c := range row {
			b.WriteString(renderCell(c))
		}
		lines[y] = b.String()
	}
	return styleBoard.Render(strings.Join(lines, "\n"))
}

func renderCell(c engine.Cell) string {
	switch {
	case c.Glyph == engine.PlayerGlyph:
		return stylePlayer.Render(c.Glyph)
	case c.Color != "":
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render(c.Glyph)
	}
	if st, ok := tileStyles[c.Glyph]; ok {
		return st.Render(c.Glyph)
	}
	return c.Glyph
}
