package dialogue

import (
	"reflect"
	"testing"
)

func testDialogue() Dialogue {
	return Dialogue{
		Speaker: "Elder",
		Nodes: []Node{
			{Text: "Will you help?", Choices: []Choice{{Text: "Yes", Next: 1}, {Text: "No", Next: 2}}},
			{Text: "Thank you."},
			{Text: "Pity."},
		},
	}
}

func TestStartSimple(t *testing.T) {
	s := New()
	s.StartSimple("System", "Hello")
	node, ok := s.Current()
	if !ok || node.Text != "Hello" || s.Speaker() != "System" {
		t.Fatalf("unexpected node %+v", node)
	}
	if s.Advance() {
		t.Error("single line dialogue should close on advance")
	}
	if s.Active() {
		t.Error("expected dialogue closed")
	}
}

func TestAdvance_FollowsChoice(t *testing.T) {
	s := New()
	s.Start(testDialogue(), nil)
	s.SelectNext()
	if s.Selected() != 1 {
		t.Fatalf("expected choice 1 selected, got %d", s.Selected())
	}
	s.SelectNext()
	if s.Selected() != 1 {
		t.Errorf("selection should clamp at last choice, got %d", s.Selected())
	}
	if !s.Advance() {
		t.Fatal("expected dialogue to continue")
	}
	node, _ := s.Current()
	if node.Text != "Pity." {
		t.Errorf("expected the No branch, got %q", node.Text)
	}
	// Node 2 is the last node.
	if s.Advance() {
		t.Error("expected dialogue to end after the last node")
	}
}

func TestChoose(t *testing.T) {
	s := New()
	s.Start(testDialogue(), nil)
	if !s.Choose(0) {
		t.Fatal("expected dialogue to continue")
	}
	node, _ := s.Current()
	if node.Text != "Thank you." {
		t.Errorf("expected the Yes branch, got %q", node.Text)
	}
	if !s.Choose(5) {
		t.Error("out of range choice should leave the dialogue open")
	}
}

func TestChoice_EndCloses(t *testing.T) {
	s := New()
	s.Start(Dialogue{Speaker: "Guard", Nodes: []Node{{Text: "Halt!", Choices: []Choice{{Text: "Leave", Next: End}}}}}, nil)
	if s.Advance() {
		t.Error("End choice should close the dialogue")
	}
}

func TestClose_RunsCallbackOnce(t *testing.T) {
	s := New()
	calls := 0
	s.Start(testDialogue(), func() { calls++ })
	s.Close()
	s.Close()
	if calls != 1 {
		t.Errorf("expected 1 callback, got %d", calls)
	}
}

func TestTakeShown(t *testing.T) {
	s := New()
	s.StartSimple("A", "one")
	s.StartSimple("B", "two")
	first := s.TakeShown()
	if len(first) != 2 || first[1].Text != "two" {
		t.Fatalf("unexpected lines %+v", first)
	}
	if len(s.TakeShown()) != 0 {
		t.Error("expected no new lines")
	}
	s.Start(testDialogue(), nil)
	got := s.TakeShown()
	if !reflect.DeepEqual(got[0].Choices, []string{"Yes", "No"}) {
		t.Errorf("expected choices in line, got %+v", got[0])
	}
	if len(s.Log()) != 3 {
		t.Errorf("expected 3 logged lines, got %d", len(s.Log()))
	}
}
