package commands

import (
	"context"
	"fmt"

	"github.com/mobile-next/autotype/autotype"
	"github.com/mobile-next/autotype/types"
)

// SelectRequest represents the parameters for a sequence selection
type SelectRequest struct {
	// Entry limits selection to one entry; empty checks every entry.
	Entry string `json:"entry,omitempty"`
	// WindowTitle is matched against associations; empty selects as a
	// manual auto-type would.
	WindowTitle string `json:"windowTitle,omitempty"`
}

// MatchInfo is an entry together with the sequence it would type.
type MatchInfo struct {
	Index    int       `json:"index"`
	Entry    EntryInfo `json:"entry"`
	Sequence string    `json:"sequence"`
}

type SelectResponse struct {
	WindowTitle string      `json:"windowTitle,omitempty"`
	Matches     []MatchInfo `json:"matches"`
}

// SelectCommand reports which entries would auto-type and with what,
// without typing anything.
func (s *Service) SelectCommand(req SelectRequest) *CommandResponse {
	selector := s.engine.Selector()

	var candidates []autotype.Entry
	if req.Entry != "" {
		entry, err := s.findEntry(req.Entry)
		if err != nil {
			return NewErrorResponse(err)
		}
		candidates = []autotype.Entry{entry}
	} else {
		db, err := s.requireDatabase()
		if err != nil {
			return NewErrorResponse(err)
		}
		candidates = db.Entries()
	}

	matches := []MatchInfo{}
	for _, entry := range candidates {
		sequence := selector.Select(entry, req.WindowTitle)
		if sequence == "" {
			continue
		}
		matches = append(matches, MatchInfo{
			Index:    len(matches),
			Entry:    newEntryInfo(entry),
			Sequence: sequence,
		})
	}

	return NewSuccessResponse(SelectResponse{
		WindowTitle: req.WindowTitle,
		Matches:     matches,
	})
}

// TypeRequest represents the parameters for auto-typing one entry
type TypeRequest struct {
	Entry    string `json:"entry"`
	Sequence string `json:"sequence,omitempty"`
	// Window is the target window id; zero types into the active window.
	Window uint64 `json:"window,omitempty"`
}

type TypeResponse struct {
	Entry   EntryInfo `json:"entry"`
	Message string    `json:"message"`
}

// TypeCommand auto-types an entry into the active (or given) window.
func (s *Service) TypeCommand(ctx context.Context, req TypeRequest) *CommandResponse {
	entry, err := s.findEntry(req.Entry)
	if err != nil {
		return NewErrorResponse(err)
	}

	err = s.engine.Perform(ctx, entry, autotype.PerformOptions{
		Sequence: req.Sequence,
		Window:   types.WindowID(req.Window),
	})
	if err != nil {
		return NewErrorResponse(fmt.Errorf("failed to auto-type %s: %w", entry.Path(), err))
	}

	return NewSuccessResponse(TypeResponse{
		Entry:   newEntryInfo(entry),
		Message: fmt.Sprintf("Typed %s", entry.Path()),
	})
}

// SelectionInfo describes a selection waiting for the user.
type SelectionInfo struct {
	ID          string      `json:"id"`
	WindowTitle string      `json:"windowTitle"`
	Matches     []MatchInfo `json:"matches"`
}

// NewSelectionInfo describes req for clients.
func NewSelectionInfo(req autotype.SelectionRequest) SelectionInfo {
	info := SelectionInfo{
		ID:          req.ID,
		WindowTitle: req.WindowTitle,
		Matches:     make([]MatchInfo, 0, len(req.Matches)),
	}
	for i, m := range req.Matches {
		info.Matches = append(info.Matches, MatchInfo{
			Index:    i,
			Entry:    newEntryInfo(m.Entry),
			Sequence: m.Sequence,
		})
	}
	return info
}

type GlobalResponse struct {
	// Result is "typed", "selection", "closed" (the chooser already
	// confirmed or cancelled) or "skipped" (the window has no title).
	Result    string         `json:"result"`
	Selection *SelectionInfo `json:"selection,omitempty"`
}

// GlobalCommand runs global auto-type against the active window.
func (s *Service) GlobalCommand(ctx context.Context) *CommandResponse {
	db, err := s.requireDatabase()
	if err != nil {
		return NewErrorResponse(err)
	}

	title := s.engine.ActiveWindowTitle()

	req, err := s.engine.PerformGlobal(ctx, db)
	if err != nil {
		return NewErrorResponse(err)
	}

	if req != nil {
		if _, pending := s.engine.PendingSelection(); !pending {
			return NewSuccessResponse(GlobalResponse{Result: "closed"})
		}
		info := NewSelectionInfo(*req)
		return NewSuccessResponse(GlobalResponse{Result: "selection", Selection: &info})
	}

	if title == "" {
		return NewSuccessResponse(GlobalResponse{Result: "skipped"})
	}
	return NewSuccessResponse(GlobalResponse{Result: "typed"})
}

// SelectionGetCommand returns the pending selection, if any.
func (s *Service) SelectionGetCommand() *CommandResponse {
	req, ok := s.engine.PendingSelection()
	if !ok {
		return NewErrorResponse(autotype.ErrNoSelection)
	}
	return NewSuccessResponse(NewSelectionInfo(req))
}

// SelectionConfirmRequest represents the parameters for confirming a selection
type SelectionConfirmRequest struct {
	ID    string `json:"id"`
	Index int    `json:"index"`
}

// SelectionConfirmCommand types the chosen match.
func (s *Service) SelectionConfirmCommand(ctx context.Context, req SelectionConfirmRequest) *CommandResponse {
	if req.ID == "" {
		return NewErrorResponse(fmt.Errorf("selection id is required"))
	}

	if err := s.engine.ConfirmSelection(ctx, req.ID, req.Index); err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(map[string]string{
		"message": "Typed selection " + req.ID,
	})
}

// SelectionCancelRequest represents the parameters for cancelling a selection
type SelectionCancelRequest struct {
	ID string `json:"id"`
}

// SelectionCancelCommand abandons the pending selection.
func (s *Service) SelectionCancelCommand(req SelectionCancelRequest) *CommandResponse {
	if req.ID == "" {
		return NewErrorResponse(fmt.Errorf("selection id is required"))
	}

	if err := s.engine.CancelSelection(req.ID); err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(map[string]string{
		"message": "Cancelled selection " + req.ID,
	})
}

type WindowsResponse struct {
	Active string   `json:"active"`
	Titles []string `json:"titles"`
}

// WindowsCommand lists window titles, handy for writing associations.
func (s *Service) WindowsCommand() *CommandResponse {
	if !s.engine.Available() {
		return NewErrorResponse(autotype.ErrUnavailable)
	}

	return NewSuccessResponse(WindowsResponse{
		Active: s.engine.ActiveWindowTitle(),
		Titles: s.engine.WindowTitles(),
	})
}

