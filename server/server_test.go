package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nathoo/tilequest/config"
	"github.com/nathoo/tilequest/engine"
	"github.com/nathoo/tilequest/engine/world"
	"github.com/nathoo/tilequest/types"
)

type memSource map[string]types.BoardDef

func (m memSource) ReadBoard(file string) (types.BoardDef, error) {
	def, ok := m[file]
	if !ok {
		return types.BoardDef{}, errors.New("no such board file")
	}
	return def, nil
}

func rows(lines ...string) [][]string {
	out := make([][]string, len(lines))
	for y, l := range lines {
		for _, r := range l {
			out[y] = append(out[y], string(r))
		}
	}
	return out
}

// newTestServer serves a started one-board session: player, floor,
// crystal, exit.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	wd := types.WorldDef{
		StartBoard: "hall",
		Boards:     map[string]types.BoardRef{"hall": {File: "hall.json", Name: "Hall"}},
	}
	board := types.BoardDef{Tiles: rows("wwwwww", "wp.cxw", "wwwwww"), RequiredCrystals: 1}
	s := engine.NewSession(world.NewGraph(wd, memSource{"hall.json": board}), nil, nil, engine.DefaultOptions())
	if _, err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	srv := New(s, config.Default())
	ctx, cancel := context.WithCancel(context.Background())
	go srv.hub.Run(ctx)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		cancel()
		ts.Close()
	})
	return ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn, wantType string, payload any) Message {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline: %v", err)
	}
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if msg.Type != wantType {
		t.Fatalf("message type = %q, want %q (payload %s)", msg.Type, wantType, msg.Payload)
	}
	if msg.ID == "" {
		t.Error("message has no id")
	}
	if payload != nil {
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			t.Fatalf("decoding %s payload: %v", msg.Type, err)
		}
	}
	return msg
}

func sendLine(t *testing.T, conn *websocket.Conn, line string) {
	t.Helper()
	raw, _ := json.Marshal(CommandPayload{Line: line})
	if err := conn.WriteJSON(Message{ID: "test", Type: TypeCommand, Payload: raw}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
}

func TestWebsocket_Welcome(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts)

	var w WelcomePayload
	read(t, conn, TypeWelcome, &w)
	if w.ClientID == "" {
		t.Error("expected a client id")
	}
	if w.State.Board != "hall" || w.State.Name != "Hall" {
		t.Errorf("state board = %q (%q), want hall (Hall)", w.State.Board, w.State.Name)
	}
	want := []string{"######", "#@.*X#", "######"}
	if strings.Join(w.State.Rows, "\n") != strings.Join(want, "\n") {
		t.Errorf("rows = %v, want %v", w.State.Rows, want)
	}
}

func TestWebsocket_CommandBroadcast(t *testing.T) {
	ts := newTestServer(t)
	a := dial(t, ts)
	b := dial(t, ts)

	var wa, wb WelcomePayload
	read(t, a, TypeWelcome, &wa)
	read(t, b, TypeWelcome, &wb)
	if wa.ClientID == wb.ClientID {
		t.Errorf("client ids should differ, both %q", wa.ClientID)
	}

	sendLine(t, a, "right")

	for _, conn := range []*websocket.Conn{a, b} {
		var res ResultPayload
		read(t, conn, TypeResult, &res)
		if res.ClientID != wa.ClientID {
			t.Errorf("result client = %q, want %q", res.ClientID, wa.ClientID)
		}
		if res.State.X != 2 || res.State.Y != 1 {
			t.Errorf("position = (%d, %d), want (2, 1)", res.State.X, res.State.Y)
		}
		found := false
		for _, e := range res.Events {
			if e.Type == "player:move" {
				found = true
			}
		}
		if !found {
			t.Errorf("expected player:move event, got %v", res.Events)
		}
	}
}

func TestWebsocket_PlayToCompletion(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts)
	read(t, conn, TypeWelcome, nil)

	var res ResultPayload
	for _, line := range []string{"right", "right", "right"} {
		sendLine(t, conn, line)
		read(t, conn, TypeResult, &res)
	}
	if !res.State.Complete {
		t.Errorf("expected complete state, got %+v", res.State)
	}
	if res.State.Crystals != 1 {
		t.Errorf("crystals = %d, want 1", res.State.Crystals)
	}
	if len(res.Output) == 0 || res.Output[len(res.Output)-1] != engine.MsgLevelComplete {
		t.Errorf("output = %v, want level complete", res.Output)
	}
}

func TestWebsocket_BadFrames(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts)
	read(t, conn, TypeWelcome, nil)

	if err := conn.WriteJSON(Message{ID: "x", Type: "dance"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var e ErrorPayload
	read(t, conn, TypeError, &e)
	if !strings.Contains(e.Error, "unknown message type") {
		t.Errorf("error = %q", e.Error)
	}

	sendLine(t, conn, "   ")
	read(t, conn, TypeError, &e)
	if e.Error != "empty command" {
		t.Errorf("error = %q, want empty command", e.Error)
	}
}

func postBoard(t *testing.T, ts *httptest.Server, body string) (*http.Response, AnalyzeResponse) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/analyze", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	var out AnalyzeResponse
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
	}
	return resp, out
}

func TestAnalyze_Playable(t *testing.T) {
	ts := newTestServer(t)
	resp, out := postBoard(t, ts, `{"tiles":[["w","w","w","w","w"],["w","p","c","x","w"],["w","w","w","w","w"]],"required_crystals":1}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !out.Playable {
		t.Errorf("expected playable, reasons %v", out.Reasons)
	}
	if out.Report.Dimensions.Width != 5 || out.Report.Dimensions.Height != 3 {
		t.Errorf("dimensions = %+v, want 5x3", out.Report.Dimensions)
	}
	if len(out.Fixes) != 1 {
		t.Errorf("fixes = %v, want the single already-playable line", out.Fixes)
	}
}

func TestAnalyze_UnreachableCrystal(t *testing.T) {
	ts := newTestServer(t)
	_, out := postBoard(t, ts, `{"tiles":[["w","w","w","w","w","w"],["w","p","x","w","c","w"],["w","w","w","w","w","w"]],"required_crystals":1}`)
	if out.Playable {
		t.Fatal("expected unplayable board")
	}
	if len(out.Reasons) == 0 {
		t.Error("expected reasons")
	}
	if len(out.Report.Paths.UnreachableCrystals) != 1 {
		t.Errorf("unreachable crystals = %v, want one", out.Report.Paths.UnreachableCrystals)
	}
}

func TestAnalyze_BadRequests(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name string
		body string
		want int
	}{
		{"not json", `{`, http.StatusBadRequest},
		{"empty board", `{"tiles":[]}`, http.StatusUnprocessableEntity},
		{"no floor", `{"tiles":[["w","w","w"],["w","c","w"],["w","w","w"]]}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := postBoard(t, ts, tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}

	resp, err := http.Get(ts.URL + "/analyze")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want 405", resp.StatusCode)
	}
}
