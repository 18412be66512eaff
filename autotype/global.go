package autotype

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mobile-next/autotype/types"
	"github.com/mobile-next/autotype/utils"
)

// NotificationTitle is the title of every notice auto-type raises.
const NotificationTitle = "Auto-Type"

// Match is an entry eligible for global auto-type and the sequence it
// would type.
type Match struct {
	Entry    Entry
	Sequence string
}

// SelectionRequest asks the user to pick one of several matches. It stays
// pending until ConfirmSelection or CancelSelection is called with its ID.
type SelectionRequest struct {
	ID          string
	WindowTitle string
	Matches     []Match
}

// Chooser shows a SelectionRequest to the user. It must not block on the
// user: the answer comes back through ConfirmSelection or CancelSelection,
// and a chooser that cannot show anything must cancel.
type Chooser interface {
	Choose(req SelectionRequest)
}

// ChooserFunc adapts a function to Chooser.
type ChooserFunc func(req SelectionRequest)

func (f ChooserFunc) Choose(req SelectionRequest) { f(req) }

// Notifier shows a user-visible notice.
type Notifier interface {
	Notify(title, message string)
}

type pendingSelection struct {
	request SelectionRequest
	window  types.WindowID
}

// PerformGlobal auto-types into the active window using whichever entry of
// sources matches its title.
//
// A single match types at once unless AskBeforeTyping is set. Several
// matches return the pending SelectionRequest after handing it to the
// chooser. No match notifies the user and returns ErrNoMatch. An active
// window without a title does nothing.
func (e *Engine) PerformGlobal(ctx context.Context, sources ...Source) (*SelectionRequest, error) {
	if e.platform == nil {
		return nil, ErrUnavailable
	}

	e.mu.Lock()
	if e.state != StateIdle {
		e.mu.Unlock()
		return nil, ErrBusy
	}

	windowTitle := e.platform.ActiveWindowTitle()
	if windowTitle == "" {
		e.mu.Unlock()
		utils.Verbose("Active window has no title, skipping global auto-type")
		return nil, nil
	}

	e.state = StateMatching
	e.mu.Unlock()

	matches := e.collectMatches(sources, windowTitle)
	utils.Verbose("Global auto-type found %d matches for %q", len(matches), windowTitle)

	switch {
	case len(matches) == 0:
		e.finish()
		e.notify(NotificationTitle, "Couldn't find an entry that matches the window title:\n\n"+windowTitle)
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, windowTitle)

	case len(matches) == 1 && !e.cfg.AskBeforeTyping:
		e.mu.Lock()
		e.state = StateDispatching
		e.mu.Unlock()
		defer e.finish()
		return nil, e.perform(ctx, matches[0].Entry, PerformOptions{Sequence: matches[0].Sequence})
	}

	req := SelectionRequest{
		ID:          uuid.New().String(),
		WindowTitle: windowTitle,
		Matches:     matches,
	}

	e.mu.Lock()
	e.state = StateAwaitingSelection
	e.pending = &pendingSelection{request: req, window: e.platform.ActiveWindow()}
	chooser := e.chooser
	e.mu.Unlock()

	if chooser == nil {
		utils.Warn("No selection surface for %d auto-type matches, cancelling", len(matches))
		_ = e.CancelSelection(req.ID)
		return nil, fmt.Errorf("%d entries match %q: %w", len(matches), windowTitle, ErrNoSelection)
	}

	chooser.Choose(req)
	return &req, nil
}

// PendingSelection returns the selection waiting for the user, if any.
func (e *Engine) PendingSelection() (SelectionRequest, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateAwaitingSelection || e.pending == nil {
		return SelectionRequest{}, false
	}
	return e.pending.request, true
}

// ConfirmSelection types the match at index of the pending selection id
// into the window that was active when the selection started.
func (e *Engine) ConfirmSelection(ctx context.Context, id string, index int) error {
	e.mu.Lock()
	if e.state != StateAwaitingSelection || e.pending == nil || e.pending.request.ID != id {
		e.mu.Unlock()
		return ErrNoSelection
	}

	matches := e.pending.request.Matches
	if index < 0 || index >= len(matches) {
		e.mu.Unlock()
		return fmt.Errorf("selection index %d out of range [0, %d)", index, len(matches))
	}

	match := matches[index]
	window := e.pending.window
	e.pending = nil
	e.state = StateDispatching
	e.mu.Unlock()

	defer e.finish()

	e.platform.RaiseWindow(window)
	return e.perform(ctx, match.Entry, PerformOptions{Sequence: match.Sequence, Window: window})
}

// CancelSelection abandons the pending selection id without typing.
func (e *Engine) CancelSelection(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateAwaitingSelection || e.pending == nil || e.pending.request.ID != id {
		return ErrNoSelection
	}

	utils.Verbose("Auto-type selection %s cancelled", id)
	e.state = StateIdle
	e.pending = nil
	return nil
}

func (e *Engine) collectMatches(sources []Source, windowTitle string) []Match {
	var matches []Match
	for _, source := range sources {
		if source == nil {
			continue
		}
		for _, entry := range source.Entries() {
			sequence := e.selector.Select(entry, windowTitle)
			if sequence != "" {
				matches = append(matches, Match{Entry: entry, Sequence: sequence})
			}
		}
	}
	return matches
}

func (e *Engine) notify(title, message string) {
	e.mu.Lock()
	n := e.notifier
	e.mu.Unlock()
	n.Notify(title, message)
}
