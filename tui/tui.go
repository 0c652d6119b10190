// Package tui provides the Bubble Tea console: a board pane, a scrolling
// history of messages, a status bar and a command line.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/tilequest/engine"
	"github.com/nathoo/tilequest/engine/command"
	"github.com/nathoo/tilequest/engine/grid"
	"github.com/nathoo/tilequest/engine/save"
	"github.com/nathoo/tilequest/types"
)

// rawLine is one history line kept unstyled so a resize can wrap it again.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool
	isSystem bool
}

// Model is the Bubble Tea model for the tilequest TUI.
type Model struct {
	session *engine.Session

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine

	width    int
	height   int
	ready    bool
	trace    bool
	playMode bool // arrow keys move the player
	quitting bool
	lastCmd  string
	saveDir  string
}

type keyMap struct {
	Quit     key.Binding
	Play     key.Binding
	Submit   key.Binding
	Older    key.Binding
	Newer    key.Binding
	Scroll   key.Binding
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Continue key.Binding
	Answer   key.Binding
	Leave    key.Binding
}

var keys = keyMap{
	Quit:     key.NewBinding(key.WithKeys("ctrl+c")),
	Play:     key.NewBinding(key.WithKeys("esc")),
	Submit:   key.NewBinding(key.WithKeys("enter")),
	Older:    key.NewBinding(key.WithKeys("up")),
	Newer:    key.NewBinding(key.WithKeys("down")),
	Scroll:   key.NewBinding(key.WithKeys("pgup", "pgdown", "ctrl+u", "ctrl+d")),
	Up:       key.NewBinding(key.WithKeys("up", "k", "w")),
	Down:     key.NewBinding(key.WithKeys("down", "j", "s")),
	Left:     key.NewBinding(key.WithKeys("left", "h", "a")),
	Right:    key.NewBinding(key.WithKeys("right", "l", "d")),
	Continue: key.NewBinding(key.WithKeys("enter", " ")),
	Answer:   key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9")),
	Leave:    key.NewBinding(key.WithKeys("q")),
}

// direction maps a play-mode key to a move.
func (k keyMap) direction(msg tea.KeyMsg) (grid.Direction, bool) {
	switch {
	case key.Matches(msg, k.Up):
		return grid.Up, true
	case key.Matches(msg, k.Down):
		return grid.Down, true
	case key.Matches(msg, k.Left):
		return grid.Left, true
	case key.Matches(msg, k.Right):
		return grid.Right, true
	}
	return 0, false
}

// New creates a TUI model and enters the session's start board.
func New(s *engine.Session, saveDir string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	m := Model{
		session: s,
		input:   ti,
		history: NewHistory(100),
		saveDir: saveDir,
	}
	res, err := s.Start()
	if err != nil {
		return m.appendOutput([]string{fmt.Sprintf("Cannot start: %v", err)}, "", true)
	}
	return m.appendOutput(res.Output, "", false)
}

// Run shows the console full-screen until the player quits.
func Run(s *engine.Session, saveDir string) error {
	p := tea.NewProgram(New(s, saveDir), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles resizes and key presses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.historyHeight()
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Play):
			return m.togglePlay(), nil
		case key.Matches(msg, keys.Scroll):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case m.playMode:
			return m.handlePlayKey(msg), nil
		case key.Matches(msg, keys.Submit):
			return m.handleEnter()
		case key.Matches(msg, keys.Older):
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil
		case key.Matches(msg, keys.Newer):
			next, ok := m.history.Next()
			if !ok {
				m.history.ResetCursor()
			}
			m.input.SetValue(next)
			m.input.CursorEnd()
			return m, nil
		}
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	return m, inputCmd
}

func (m Model) togglePlay() Model {
	m.playMode = !m.playMode
	if m.playMode {
		m.input.Blur()
	} else {
		m.input.Focus()
	}
	return m
}

// handlePlayKey moves the player, answers dialogue with digits and
// advances it with enter or space.
func (m Model) handlePlayKey(msg tea.KeyMsg) Model {
	if d, ok := keys.direction(msg); ok {
		return m.run(command.Command{Verb: command.Move, Dir: d}, "")
	}
	talking := m.session.Dialogue.Active()
	switch {
	case talking && key.Matches(msg, keys.Continue):
		return m.run(command.Command{Verb: command.Next}, "")
	case talking && key.Matches(msg, keys.Answer):
		return m.run(command.Command{Verb: command.Choose, Args: []string{msg.String()}}, "")
	case key.Matches(msg, keys.Leave):
		return m.togglePlay()
	}
	return m
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			return m.appendOutput([]string{"Nothing to repeat."}, input, true), nil
		}
		input = m.lastCmd
	} else {
		m.lastCmd = input
	}

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(output, input, true)
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	return m.run(command.Parse(input), input), nil
}

// run executes one game command and records its output.
func (m Model) run(cmd command.Command, echo string) Model {
	result := command.Execute(m.session, cmd)
	output := result.Output
	if m.trace {
		output = append(output, formatTrace(result)...)
	}
	if len(output) == 0 && echo == "" {
		m.refreshViewport()
		return m
	}
	return m.appendOutput(output, echo, false)
}

// appendOutput records one turn: the echoed input, its lines and a blank
// separator.
func (m Model) appendOutput(lines []string, input string, isSystem bool) Model {
	if input != "" {
		m.rawLines = append(m.rawLines, rawLine{text: "> " + input, isInput: true})
	}
	for _, line := range lines {
		for _, part := range strings.Split(line, "\n") {
			rl := rawLine{text: part, isSystem: isSystem}
			if !isSystem {
				rl.kind = classifyLine(part)
			}
			m.rawLines = append(m.rawLines, rl)
		}
	}

	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()
	return m
}

// historyHeight is what remains below the board pane for the viewport.
func (m Model) historyHeight() int {
	h := m.height - 2 - lipgloss.Height(renderBoard(m.session.View()))
	if h < 1 {
		h = 1
	}
	return h
}

// refreshViewport restyles the history for the current size and scrolls to
// the newest line.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	// The board can change size on a transition.
	m.viewport.Height = m.historyHeight()

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap breaks text at spaces so no line exceeds width, unless a
// single word is longer.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) > width:
			lines = append(lines, line)
			line = word
		default:
			line += " " + word
		}
	}
	return strings.Join(append(lines, line), "\n")
}

// View stacks the board, the history, the status bar and the prompt.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return renderBoard(m.session.View()) + "\n" +
		m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta runs a slash command and reports whether the program should exit.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/save":
		return m.cmdSave(arg), false

	case "/load":
		return m.cmdLoad(arg), false

	case "/help":
		return m.cmdHelp(), false

	case "/state":
		return m.cmdState(), false

	case "/analyze":
		return command.Execute(m.session, command.Command{Verb: command.Analyze}).Output, false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdSave(name string) []string {
	data, err := m.session.Save()
	if err == nil {
		name, err = save.Store{Dir: m.saveDir}.Write(name, data)
	}
	if err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	return []string{fmt.Sprintf("Game saved to %s.", name)}
}

func (m *Model) cmdLoad(name string) []string {
	data, name, err := save.Store{Dir: m.saveDir}.Read(name)
	if err == nil {
		var res types.Result
		if res, err = m.session.Load(data); err == nil {
			return append([]string{fmt.Sprintf("Game loaded from %s (%s).", name, m.session.BoardName())}, res.Output...)
		}
	}
	return []string{fmt.Sprintf("Load failed: %v", err)}
}

func (m *Model) cmdHelp() []string {
	out := []string{
		"System:",
		"  /save [name]  Save game (default: quicksave)",
		"  /load [name]  Load game (default: quicksave)",
		"  /quit         Exit game",
		"  /help         Show this help",
		"  /state        Debug: dump current state",
		"  /analyze      Check the board is still solvable",
		"  /trace        Toggle debug trace output",
		"",
		"Game commands:",
	}
	for _, line := range command.Usage {
		out = append(out, "  "+line)
	}
	return append(out,
		"  again (g)             Repeat your last command",
		"",
		"Esc toggles play mode, where arrows or hjkl move and digits answer dialogue.",
		"PgUp/PgDn scroll the history; Up/Down recall earlier commands.",
	)
}

func (m *Model) cmdState() []string {
	s := m.session
	p := s.Position()
	st := s.Status()
	output := []string{
		fmt.Sprintf("Board: %s at (%d, %d)", s.BoardID(), p.X, p.Y),
		fmt.Sprintf("Crystals: %d/%d", st.Crystals, st.Required),
		fmt.Sprintf("Inventory: %v", s.Inventory.Snapshot()),
	}
	if flags := s.World.Snapshot(); len(flags) > 0 {
		output = append(output, fmt.Sprintf("Flags: %v", flags))
	}
	return output
}

func formatTrace(result types.Result) []string {
	var lines []string
	if len(result.Events) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			lines = append(lines, fmt.Sprintf("[trace]   %s %v", e.Type, e.Data))
		}
	}
	return lines
}

// viewportKeyMap leaves the arrow keys to the command history.
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
