package server

import (
	"sync"
	"time"

	"github.com/mobile-next/autotype/autotype"
	"github.com/mobile-next/autotype/commands"
	"github.com/mobile-next/autotype/utils"
)

// hub tracks websocket clients for server pushes.
type hub struct {
	mu    sync.RWMutex
	conns map[*wsConnection]struct{}
}

func newHub() *hub {
	return &hub{conns: make(map[*wsConnection]struct{})}
}

func (h *hub) add(c *wsConnection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = struct{}{}
}

// remove unregisters c and returns how many clients remain.
func (h *hub) remove(c *wsConnection) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, c)
	return len(h.conns)
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// broadcast sends a notification to every client and returns how many
// received it.
func (h *hub) broadcast(method string, params interface{}) int {
	h.mu.RLock()
	conns := make([]*wsConnection, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range conns {
		if err := c.sendNotification(method, params); err != nil {
			utils.Verbose("Failed to push %s: %v", method, err)
			continue
		}
		delivered++
	}
	return delivered
}

func (h *hub) closeAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns {
		_ = c.conn.Close()
	}
}

type selectionClosed struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// selectionChooser offers selections to websocket clients. They answer
// with selection_confirm or selection_cancel.
type selectionChooser struct {
	engine  *autotype.Engine
	hub     *hub
	timeout time.Duration
}

func (c *selectionChooser) Choose(req autotype.SelectionRequest) {
	if c.hub.broadcast("selection", commands.NewSelectionInfo(req)) == 0 {
		utils.Info("No client to choose between %d entries for %q", len(req.Matches), req.WindowTitle)
		_ = c.engine.CancelSelection(req.ID)
		return
	}

	time.AfterFunc(c.timeout, func() {
		if err := c.engine.CancelSelection(req.ID); err != nil {
			return
		}
		utils.Info("Selection %s timed out after %s", req.ID, c.timeout)
		c.hub.broadcast("selection_closed", selectionClosed{ID: req.ID, Reason: "timeout"})
	})
}

type notification struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// hubNotifier logs notifications and pushes them to websocket clients.
type hubNotifier struct {
	hub *hub
}

func (n *hubNotifier) Notify(title, message string) {
	utils.Info("%s: %s", title, message)
	n.hub.broadcast("notification", notification{Title: title, Message: message})
}
