package confirm

import (
	"testing"

	tea "charm.land/bubbletea/v2"
)

type appliedMsg struct{ n int }

func TestRequestCmd(t *testing.T) {
	msg := Request("buy?", func() tea.Msg { return nil })()
	req, ok := msg.(RequestMsg)
	if !ok {
		t.Fatalf("expected RequestMsg, got %T", msg)
	}
	if req.Message != "buy?" || req.Apply == nil {
		t.Errorf("unexpected request %+v", req)
	}
}

func TestDeclineDoesNotApply(t *testing.T) {
	var g Gate
	applied := 0
	g.Open(RequestMsg{Message: "sell 10", Apply: func() tea.Msg { applied++; return nil }})

	cmd := g.Update(tea.KeyPressMsg{Code: 'n', Text: "n"})
	if applied != 0 {
		t.Fatal("declining must not apply the mutation")
	}
	if g.Active() {
		t.Error("gate should close after declining")
	}
	res, ok := cmd().(ResolvedMsg)
	if !ok || res.Accepted || res.Message != "sell 10" {
		t.Errorf("unexpected resolution %+v", res)
	}
}

func TestAcceptAppliesOnce(t *testing.T) {
	var g Gate
	applied := 0
	g.Open(RequestMsg{Message: "buy 10", Apply: func() tea.Msg { applied++; return appliedMsg{applied} }})

	if cmd := g.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd == nil {
		t.Fatal("expected a command after accepting")
	}
	if applied != 1 {
		t.Fatalf("apply ran %d times, want 1", applied)
	}
	if g.Accept() != nil || applied != 1 {
		t.Error("accepting an empty gate must do nothing")
	}
}

func TestQueueOrder(t *testing.T) {
	var g Gate
	var order []string
	for _, m := range []string{"first", "second", "third"} {
		g.Open(RequestMsg{Message: m, Apply: func() tea.Msg { order = append(order, m); return nil }})
	}
	g.Open(RequestMsg{Message: "no apply"})
	if g.Len() != 3 {
		t.Fatalf("expected 3 queued requests, got %d", g.Len())
	}

	if req, _ := g.Pending(); req.Message != "first" {
		t.Errorf("pending = %q, want first", req.Message)
	}
	g.Accept()
	g.Decline()
	g.Accept()

	if len(order) != 2 || order[0] != "first" || order[1] != "third" {
		t.Errorf("applied %v, want [first third]", order)
	}
	if g.Active() {
		t.Error("gate should be empty")
	}
}

func TestOtherKeysSwallowed(t *testing.T) {
	var g Gate
	g.Open(RequestMsg{Message: "x", Apply: func() tea.Msg { return nil }})
	if cmd := g.Update(tea.KeyPressMsg{Code: 'q', Text: "q"}); cmd != nil {
		t.Error("unrelated keys should not resolve the dialog")
	}
	if !g.Active() {
		t.Error("gate should still be open")
	}
}
