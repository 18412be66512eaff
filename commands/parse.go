package commands

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mobile-next/autotype/autotype"
)

// ParseRequest represents the parameters for compiling a sequence
type ParseRequest struct {
	Sequence string `json:"sequence"`
	// Entry resolves placeholders when set; otherwise they type nothing.
	Entry string `json:"entry,omitempty"`
}

// ActionInfo is one compiled action in a readable form.
type ActionInfo struct {
	Type         string `json:"type" yaml:"type"`
	Char         string `json:"char,omitempty" yaml:"char,omitempty"`
	Key          string `json:"key,omitempty" yaml:"key,omitempty"`
	Milliseconds int    `json:"ms,omitempty" yaml:"ms,omitempty"`
}

type ParseResponse struct {
	Sequence string       `json:"sequence" yaml:"sequence"`
	Actions  []ActionInfo `json:"actions" yaml:"actions"`
}

// ParseCommand compiles a sequence without typing it. Secrets never reach
// the output: placeholder expansions are masked.
func (s *Service) ParseCommand(req ParseRequest) *CommandResponse {
	var resolver autotype.PlaceholderResolver
	if req.Entry != "" {
		entry, err := s.findEntry(req.Entry)
		if err != nil {
			return NewErrorResponse(err)
		}
		resolver = maskingResolver{entry}
	}

	actions, err := autotype.ParseSequence(req.Sequence, resolver)
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(ParseResponse{
		Sequence: req.Sequence,
		Actions:  describeActions(actions),
	})
}

func describeActions(actions autotype.Sequence) []ActionInfo {
	out := make([]ActionInfo, 0, len(actions))
	for _, a := range actions {
		switch a := a.(type) {
		case autotype.CharAction:
			out = append(out, ActionInfo{Type: "char", Char: string(a.Char)})
		case autotype.KeyAction:
			out = append(out, ActionInfo{Type: "key", Key: a.Key.String()})
		case autotype.DelayAction:
			out = append(out, ActionInfo{Type: "delay", Milliseconds: a.Milliseconds})
		case autotype.ClearFieldAction:
			out = append(out, ActionInfo{Type: "clearfield"})
		default:
			out = append(out, ActionInfo{Type: fmt.Sprintf("%T", a)})
		}
	}
	return out
}

// maskingResolver resolves {PASSWORD} to asterisks of the same length so
// a parse preview has the right shape without leaking it.
type maskingResolver struct {
	autotype.PlaceholderResolver
}

func (m maskingResolver) ResolvePlaceholder(placeholder string) string {
	resolved := m.PlaceholderResolver.ResolvePlaceholder(placeholder)
	if resolved == placeholder || !isPasswordPlaceholder(placeholder) {
		return resolved
	}

	return strings.Repeat("*", utf8.RuneCountInString(resolved))
}

func isPasswordPlaceholder(placeholder string) bool {
	return strings.EqualFold(placeholder, "{PASSWORD}")
}
