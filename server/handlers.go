package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mobile-next/autotype/commands"
)

func responseResult(response *commands.CommandResponse) (interface{}, error) {
	if response.Status == "error" {
		return nil, fmt.Errorf("%s", response.Error)
	}
	return response.Data, nil
}

func (s *Server) handleParse(ctx context.Context, params json.RawMessage) (interface{}, error) {
	if len(params) == 0 {
		return nil, &invalidParamsError{err: fmt.Errorf("'params' is required with fields: sequence")}
	}

	var req commands.ParseRequest
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}

	return responseResult(s.service.ParseCommand(req))
}

func (s *Server) handleSelect(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req commands.SelectRequest
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}

	return responseResult(s.service.SelectCommand(req))
}

func (s *Server) handleType(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req commands.TypeRequest
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}

	if req.Entry == "" {
		return nil, &invalidParamsError{err: fmt.Errorf("'entry' is required")}
	}

	return responseResult(s.service.TypeCommand(ctx, req))
}

func (s *Server) handleGlobal(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return responseResult(s.service.GlobalCommand(ctx))
}

func (s *Server) handleWindows(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return responseResult(s.service.WindowsCommand())
}

func (s *Server) handleSelectionGet(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return responseResult(s.service.SelectionGetCommand())
}

func (s *Server) handleSelectionConfirm(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req commands.SelectionConfirmRequest
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}

	if req.ID == "" {
		return nil, &invalidParamsError{err: fmt.Errorf("'id' is required")}
	}

	result, err := responseResult(s.service.SelectionConfirmCommand(ctx, req))
	if err == nil {
		s.hub.broadcast("selection_closed", selectionClosed{ID: req.ID, Reason: "confirmed"})
	}
	return result, err
}

func (s *Server) handleSelectionCancel(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req commands.SelectionCancelRequest
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}

	if req.ID == "" {
		return nil, &invalidParamsError{err: fmt.Errorf("'id' is required")}
	}

	result, err := responseResult(s.service.SelectionCancelCommand(req))
	if err == nil {
		s.hub.broadcast("selection_closed", selectionClosed{ID: req.ID, Reason: "cancelled"})
	}
	return result, err
}

func (s *Server) handleServerShutdown(ctx context.Context, params json.RawMessage) (interface{}, error) {
	// the response is written before the listener drains
	s.Shutdown()
	return okResponse, nil
}
