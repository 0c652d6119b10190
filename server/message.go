package server

import (
	"encoding/json"

	"github.com/oklog/ulid/v2"

	"github.com/nathoo/tilequest/engine"
	"github.com/nathoo/tilequest/engine/analyzer"
	"github.com/nathoo/tilequest/types"
)

// Message types.
const (
	TypeCommand = "command" // client: {line}
	TypeWelcome = "welcome" // server: {clientId, state}
	TypeResult  = "result"  // server: {clientId, output, events, state}
	TypeError   = "error"   // server: {error}
)

// Message is the envelope of every websocket frame in both directions.
type Message struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// CommandPayload is one console line sent by a client.
type CommandPayload struct {
	Line string `json:"line"`
}

// EventPayload is one bus event caused by a command.
type EventPayload struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// StatePayload is the board as the clients draw it.
type StatePayload struct {
	Board    string   `json:"board"`
	Name     string   `json:"name"`
	Rows     []string `json:"rows"`
	X        int      `json:"x"`
	Y        int      `json:"y"`
	Crystals int      `json:"crystals"`
	Required int      `json:"required"`
	Quest    string   `json:"quest,omitempty"`
	Stage    string   `json:"stage,omitempty"`
	Complete bool     `json:"complete"`
}

// WelcomePayload greets a newly connected client.
type WelcomePayload struct {
	ClientID string       `json:"clientId"`
	State    StatePayload `json:"state"`
}

// ResultPayload is broadcast after every command.
type ResultPayload struct {
	ClientID string         `json:"clientId"`
	Output   []string       `json:"output"`
	Events   []EventPayload `json:"events"`
	State    StatePayload   `json:"state"`
}

// ErrorPayload reports a bad frame back to its sender.
type ErrorPayload struct {
	Error string `json:"error"`
}

// AnalyzeResponse is the body returned by POST /analyze.
type AnalyzeResponse struct {
	Playable      bool             `json:"playable"`
	Reasons       []string         `json:"reasons"`
	CriticalHoles []types.Position `json:"criticalHoles"`
	Report        analyzer.Report  `json:"report"`
	Fixes         []string         `json:"fixes"`
}

// newMessage wraps payload in an envelope with a fresh id.
func newMessage(kind string, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{ID: ulid.Make().String(), Type: kind, Payload: raw}, nil
}

func stateOf(s *engine.Session) StatePayload {
	st := s.Status()
	p := s.Position()
	var rows []string
	for _, row := range s.View() {
		var line []byte
		for _, c := range row {
			line = append(line, c.Glyph...)
		}
		rows = append(rows, string(line))
	}
	return StatePayload{
		Board:    s.BoardID(),
		Name:     st.Board,
		Rows:     rows,
		X:        p.X,
		Y:        p.Y,
		Crystals: st.Crystals,
		Required: st.Required,
		Quest:    st.Quest,
		Stage:    st.Stage,
		Complete: s.Complete(),
	}
}

func eventsOf(res types.Result) []EventPayload {
	out := make([]EventPayload, 0, len(res.Events))
	for _, e := range res.Events {
		out = append(out, EventPayload{Type: e.Type, Data: e.Data})
	}
	return out
}
