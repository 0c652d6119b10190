// Package dialogue runs conversations: a speaker, a list of nodes and
// optional choices that jump between nodes.
package dialogue

// End is a choice target that closes the dialogue.
const End = -1

// Choice is one selectable answer. Next is the node index to jump to.
type Choice struct {
	Text string `json:"text"`
	Next int    `json:"next"`
}

// Node is one screen of text.
type Node struct {
	Text    string   `json:"text"`
	Choices []Choice `json:"choices,omitempty"`
}

// Dialogue is a full conversation.
type Dialogue struct {
	Speaker string `json:"speaker"`
	Nodes   []Node `json:"nodes"`
}

// Line is something shown to the player.
type Line struct {
	Speaker string
	Text    string
	Choices []string
	// Selected is the highlighted choice when Choices is set.
	Selected int
}

// System holds the running dialogue, if any. Game input goes to the
// dialogue while it is active.
type System struct {
	active   bool
	current  Dialogue
	node     int
	selected int
	onDone   func()

	shown   []Line
	pending int
}

// New returns an idle dialogue system.
func New() *System {
	return &System{}
}

// Start opens d. onDone, if set, runs once when the dialogue closes.
func (s *System) Start(d Dialogue, onDone func()) {
	s.active = true
	s.current = d
	s.node = 0
	s.selected = 0
	s.onDone = onDone
	s.render()
}

// StartSimple opens a one-line dialogue.
func (s *System) StartSimple(speaker, text string) {
	s.Start(Dialogue{Speaker: speaker, Nodes: []Node{{Text: text}}}, nil)
}

// Active reports whether a dialogue is open.
func (s *System) Active() bool {
	return s.active
}

// Current returns the node being shown.
func (s *System) Current() (Node, bool) {
	if !s.active || s.node < 0 || s.node >= len(s.current.Nodes) {
		return Node{}, false
	}
	return s.current.Nodes[s.node], true
}

// Speaker returns the speaker of the open dialogue.
func (s *System) Speaker() string {
	return s.current.Speaker
}

// Selected returns the highlighted choice index.
func (s *System) Selected() int {
	return s.selected
}

// Advance moves past the current node: to the selected choice's target
// when the node has choices, otherwise to the next node. It returns
// whether the dialogue is still open.
func (s *System) Advance() bool {
	if !s.active {
		return false
	}
	node, ok := s.Current()
	if !ok {
		s.Close()
		return false
	}

	next := s.node + 1
	if len(node.Choices) > 0 {
		next = node.Choices[s.selected].Next
	}
	s.selected = 0
	if next < 0 || next >= len(s.current.Nodes) {
		s.Close()
		return false
	}
	s.node = next
	s.render()
	return true
}

// Choose selects choice n and advances.
func (s *System) Choose(n int) bool {
	node, ok := s.Current()
	if !ok || n < 0 || n >= len(node.Choices) {
		return s.active
	}
	s.selected = n
	return s.Advance()
}

// SelectNext moves the highlight down one choice.
func (s *System) SelectNext() {
	if node, ok := s.Current(); ok && len(node.Choices) > 0 && s.selected < len(node.Choices)-1 {
		s.selected++
		s.render()
	}
}

// SelectPrevious moves the highlight up one choice.
func (s *System) SelectPrevious() {
	if node, ok := s.Current(); ok && len(node.Choices) > 0 && s.selected > 0 {
		s.selected--
		s.render()
	}
}

// Close ends the dialogue and runs its completion callback.
func (s *System) Close() {
	if !s.active {
		return
	}
	cb := s.onDone
	s.active = false
	s.current = Dialogue{}
	s.node = 0
	s.selected = 0
	s.onDone = nil
	if cb != nil {
		cb()
	}
}

func (s *System) render() {
	node, ok := s.Current()
	if !ok {
		return
	}
	line := Line{Speaker: s.current.Speaker, Text: node.Text, Selected: s.selected}
	for _, c := range node.Choices {
		line.Choices = append(line.Choices, c.Text)
	}
	s.shown = append(s.shown, line)
}

// Log returns every line shown so far.
func (s *System) Log() []Line {
	return append([]Line(nil), s.shown...)
}

// TakeShown returns the lines shown since the previous call.
func (s *System) TakeShown() []Line {
	out := append([]Line(nil), s.shown[s.pending:]...)
	s.pending = len(s.shown)
	return out
}
