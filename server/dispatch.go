package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// HandlerFunc is the signature for JSON-RPC method handlers
type HandlerFunc func(ctx context.Context, params json.RawMessage) (interface{}, error)

// typingMethods may block for as long as a sequence takes to type.
var typingMethods = map[string]bool{
	"type":              true,
	"global":            true,
	"selection_confirm": true,
}

const (
	errTitleInvalidReq = "Invalid Request"
	errTitleParseError = "Parse error"

	errMsgParseError     = "expecting jsonrpc payload"
	errMsgInvalidJSONRPC = "'jsonrpc' must be '2.0'"
	errMsgIDRequired     = "'id' field is required"
	errMsgMethodRequired = "'method' is required"
)

type rpcError struct {
	code    int
	message string
	data    string
}

// validateJSONRPCRequest checks the envelope shared by /rpc and /ws.
func validateJSONRPCRequest(req JSONRPCRequest) *rpcError {
	if req.JSONRPC != "2.0" {
		return &rpcError{ErrCodeInvalidRequest, errTitleInvalidReq, errMsgInvalidJSONRPC}
	}

	if req.ID == nil {
		return &rpcError{ErrCodeInvalidRequest, errTitleInvalidReq, errMsgIDRequired}
	}

	if req.Method == "" {
		return &rpcError{ErrCodeInvalidRequest, errTitleInvalidReq, errMsgMethodRequired}
	}

	return nil
}

// invalidParamsError is reported as ErrCodeInvalidParams.
type invalidParamsError struct {
	err error
}

func (e *invalidParamsError) Error() string {
	return fmt.Sprintf("invalid parameters: %v", e.err)
}

func (e *invalidParamsError) Unwrap() error {
	return e.err
}

// decodeParams unmarshals params into v; absent params leave v untouched.
func decodeParams(params json.RawMessage, v interface{}) error {
	trimmed := bytes.TrimSpace(params)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	if err := json.Unmarshal(trimmed, v); err != nil {
		return &invalidParamsError{err: err}
	}
	return nil
}

// methodRegistry maps method names to handlers bound to this server.
func (s *Server) methodRegistry() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"parse":             s.handleParse,
		"select":            s.handleSelect,
		"type":              s.handleType,
		"global":            s.handleGlobal,
		"windows":           s.handleWindows,
		"selection_get":     s.handleSelectionGet,
		"selection_confirm": s.handleSelectionConfirm,
		"selection_cancel":  s.handleSelectionCancel,
		"server_shutdown":   s.handleServerShutdown,
	}
}

// Execute dispatches a method call using the registry
// This is the main entry point for embedded clients
func (s *Server) Execute(ctx context.Context, method string, params json.RawMessage) (interface{}, error) {
	handler, exists := s.methodRegistry()[method]
	if !exists {
		return nil, fmt.Errorf("method not found: %s", method)
	}

	return handler(ctx, params)
}
