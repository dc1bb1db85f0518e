// Package confirm is the modal yes/no gate every trading mutation passes
// through. Requests queue up; only the oldest one is shown.
package confirm

import tea "charm.land/bubbletea/v2"

// RequestMsg asks the shell to show a confirmation dialog. Apply runs in the
// update loop only after the user accepts, and its result (if any) is fed
// back as a message.
type RequestMsg struct {
	Message string
	Apply   func() tea.Msg
}

// ResolvedMsg reports how a request ended.
type ResolvedMsg struct {
	Message  string
	Accepted bool
}

// Request returns a command that opens a confirmation dialog.
func Request(message string, apply func() tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return RequestMsg{Message: message, Apply: apply}
	}
}

// Gate holds pending requests in arrival order.
type Gate struct {
	queue []RequestMsg
}

// Open enqueues req. Requests without an Apply func are dropped.
func (g *Gate) Open(req RequestMsg) {
	if req.Apply == nil {
		return
	}
	g.queue = append(g.queue, req)
}

// Active reports whether a dialog is showing.
func (g *Gate) Active() bool { return len(g.queue) > 0 }

// Pending returns the request on screen.
func (g *Gate) Pending() (RequestMsg, bool) {
	if len(g.queue) == 0 {
		return RequestMsg{}, false
	}
	return g.queue[0], true
}

// Len returns the number of queued requests, including the visible one.
func (g *Gate) Len() int { return len(g.queue) }

// Accept applies the visible request and pops it.
func (g *Gate) Accept() tea.Cmd {
	req, ok := g.pop()
	if !ok {
		return nil
	}
	result := req.Apply()
	resolved := resolvedCmd(req.Message, true)
	if result == nil {
		return resolved
	}
	return tea.Batch(func() tea.Msg { return result }, resolved)
}

// Decline pops the visible request without applying it.
func (g *Gate) Decline() tea.Cmd {
	req, ok := g.pop()
	if !ok {
		return nil
	}
	return resolvedCmd(req.Message, false)
}

// Update handles key presses while the gate is active: y/enter accept,
// n/esc decline. Other keys are swallowed so nothing behind the dialog sees
// them.
func (g *Gate) Update(msg tea.KeyPressMsg) tea.Cmd {
	if !g.Active() {
		return nil
	}
	switch msg.String() {
	case "y", "Y", "enter":
		return g.Accept()
	case "n", "N", "esc":
		return g.Decline()
	}
	return nil
}

func (g *Gate) pop() (RequestMsg, bool) {
	if len(g.queue) == 0 {
		return RequestMsg{}, false
	}
	req := g.queue[0]
	g.queue[0] = RequestMsg{}
	g.queue = g.queue[1:]
	return req, true
}

func resolvedCmd(message string, accepted bool) tea.Cmd {
	return func() tea.Msg {
		return ResolvedMsg{Message: message, Accepted: accepted}
	}
}
