// Package cli provides the plain line console: prompt loop, ASCII board,
// coloured system lines and meta-command dispatch.
package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gookit/color"
	"golang.org/x/term"

	"github.com/nathoo/tilequest/engine"
	"github.com/nathoo/tilequest/engine/command"
	"github.com/nathoo/tilequest/engine/grid"
	"github.com/nathoo/tilequest/engine/save"
	"github.com/nathoo/tilequest/types"
)

// Fallback width when Out is not a terminal.
const defaultWidth = 80

var (
	styleSystem  = color.Style{color.FgCyan}
	styleError   = color.Style{color.FgRed, color.OpBold}
	styleGood    = color.Style{color.FgGreen, color.OpBold}
	stylePlayer  = color.Style{color.FgGreen, color.OpBold}
	styleWall    = color.Style{color.FgGray}
	styleCrystal = color.Style{color.FgMagenta, color.OpBold}
	styleExit    = color.Style{color.FgYellow, color.OpBold}
	styleHole    = color.Style{color.FgRed}
	styleBlock   = color.Style{color.FgBlue}
)

var tileStyles = map[string]color.Style{
	grid.Glyph(grid.Wall):    styleWall,
	grid.Glyph(grid.Crystal): styleCrystal,
	grid.Glyph(grid.Exit):    styleExit,
	grid.Glyph(grid.Hole):    styleHole,
	grid.Glyph(grid.Block):   styleBlock,
	grid.Glyph(grid.Door):    styleExit,
}

// CLI handles terminal interaction with the player.
type CLI struct {
	Session   *engine.Session
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	Trace     bool
	Color     bool
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given session. Colour is on when stdout
// is a terminal.
func New(s *engine.Session, saveDir string) *CLI {
	return &CLI{
		Session: s,
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: saveDir,
		Color:   term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// Run enters the start board and loops: prompt, input, dispatch, output.
func (c *CLI) Run() {
	res, err := c.Session.Start()
	if err != nil {
		c.printError(fmt.Sprintf("Cannot start: %v", err))
		return
	}
	c.printResult(res)
	c.printBoard()

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		// "again" / "g" repeats the last game command.
		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printSystem("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		cmd := command.Parse(input)
		result := command.Execute(c.Session, cmd)
		c.printResult(result)
		if changesBoard(cmd.Verb) {
			c.printBoard()
		}

		if c.Trace {
			c.printTrace(result)
		}
	}
}

func changesBoard(verb string) bool {
	switch verb {
	case command.Move, command.Reset, command.Flag, command.Emit, command.Use, command.Next, command.Choose:
		return true
	}
	return false
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(arg)

	case "/load":
		c.cmdLoad(arg)

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/analyze":
		c.cmdAnalyze()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdSave(name string) {
	data, err := c.Session.Save()
	if err == nil {
		name, err = save.Store{Dir: c.SaveDir}.Write(name, data)
	}
	if err != nil {
		c.printError(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Game saved to %s.", name))
}

func (c *CLI) cmdLoad(name string) {
	data, name, err := save.Store{Dir: c.SaveDir}.Read(name)
	if err != nil {
		c.printError(fmt.Sprintf("Load failed: %v", err))
		return
	}
	res, err := c.Session.Load(data)
	if err != nil {
		c.printError(fmt.Sprintf("Load failed: %v", err))
		return
	}
	c.printResult(res)
	c.printSystem(fmt.Sprintf("Game loaded from %s (%s).", name, c.Session.BoardName()))
	c.printBoard()
}

func (c *CLI) cmdHelp() {
	help := []string{
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
	for _, line := range help {
		c.printLine(line)
	}
	for _, line := range command.Usage {
		c.printLine("  " + line)
	}
	c.printLine("  again (g)             Repeat your last command")
}

func (c *CLI) cmdState() {
	s := c.Session
	p := s.Position()
	c.printSystem(fmt.Sprintf("Board: %s at (%d, %d)", s.BoardID(), p.X, p.Y))
	st := s.Status()
	c.printSystem(fmt.Sprintf("Crystals: %d/%d", st.Crystals, st.Required))
	c.printSystem(fmt.Sprintf("Inventory: %v", s.Inventory.Snapshot()))
	if flags := s.World.Snapshot(); len(flags) > 0 {
		raw, _ := json.Marshal(flags)
		c.printSystem(fmt.Sprintf("Flags: %s", raw))
	}
}

func (c *CLI) cmdAnalyze() {
	res, err := c.Session.Analyze()
	if err != nil {
		c.printError(err.Error())
		return
	}
	if res.Playable {
		c.printGood("Board is playable.")
		return
	}
	c.printError("Board is NOT playable:")
	for _, r := range res.Reasons {
		c.printLine("  " + r)
	}
}

func (c *CLI) printTrace(result types.Result) {
	if len(result.Events) > 0 {
		c.printSystem(fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			c.printSystem(fmt.Sprintf("[trace]   %s %v", e.Type, e.Data))
		}
	}
}

// printBoard draws the current board, unless it is wider than the terminal.
func (c *CLI) printBoard() {
	view := c.Session.View()
	if len(view) == 0 {
		return
	}
	if w := c.width(); len(view[0]) > w {
		c.printSystem(fmt.Sprintf("Board is %d columns wide; the terminal has %d.", len(view[0]), w))
		return
	}
	for _, row := range view {
		var b strings.Builder
		for _, cell := range row {
			b.WriteString(c.paintCell(cell))
		}
		c.printLine(b.String())
	}
	st := c.Session.Status()
	c.printSystem(fmt.Sprintf("%s  Crystals: %d/%d", st.Board, st.Crystals, st.Required))
}

func (c *CLI) paintCell(cell engine.Cell) string {
	if !c.Color {
		return cell.Glyph
	}
	switch {
	case cell.Glyph == engine.PlayerGlyph:
		return stylePlayer.Sprint(cell.Glyph)
	case cell.Color != "":
		return color.HEX(cell.Color).Sprint(cell.Glyph)
	}
	if st, ok := tileStyles[cell.Glyph]; ok {
		return st.Sprint(cell.Glyph)
	}
	return cell.Glyph
}

func (c *CLI) width() int {
	f, ok := c.Out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultWidth
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

func (c *CLI) printResult(result types.Result) {
	for _, line := range result.Output {
		switch line {
		case engine.MsgLevelComplete:
			c.printGood(line)
		case engine.MsgDied, engine.MsgFellIntoHole:
			c.printError(line)
		default:
			c.printLine(line)
		}
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) styled(st color.Style, text string) {
	if c.Color {
		text = st.Sprint(text)
	}
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	c.styled(styleSystem, "["+text+"]")
}

func (c *CLI) printError(text string) {
	c.styled(styleError, text)
}

func (c *CLI) printGood(text string) {
	c.styled(styleGood, text)
}
