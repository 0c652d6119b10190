package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderStatusBar produces a full-width inverted status line showing the
// board, crystals and the active quest stage.
func (m Model) renderStatusBar() string {
	st := m.session.Status()

	left := fmt.Sprintf(" %s | Crystals: %d/%d", st.Board, st.Crystals, st.Required)
	if m.playMode {
		left += " | PLAY"
	}
	right := ""
	if st.Quest != "" {
		right = fmt.Sprintf("%s: %s ", st.Quest, st.Stage)
		if lipgloss.Width(left)+lipgloss.Width(right)+2 >= m.width {
			right = st.Quest + " "
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
