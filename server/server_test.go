package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mobile-next/autotype/autotype"
	"github.com/mobile-next/autotype/commands"
	"github.com/mobile-next/autotype/config"
	"github.com/mobile-next/autotype/database"
	"github.com/mobile-next/autotype/platform/testplatform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDatabase = `
[entry Banking/MyBank]
username = alice
password = hunter2
association.1 = *Bank*

[entry Banking/OtherBank]
username = bob
password = pw
association.1 = //bank//
association.1.sequence = {USERNAME}!
`

func newTestServer(t *testing.T, opts Options) (*Server, *testplatform.Platform) {
	t.Helper()

	db, err := database.Parse([]byte(testDatabase))
	require.NoError(t, err)

	cfg := config.Default()
	cfg.AskBeforeTyping = false
	cfg.Platform = testplatform.Name

	p := testplatform.New()
	engine := autotype.New(p, cfg.Engine())
	return New(commands.NewService(engine, cfg, db), opts), p
}

func postRPC(t *testing.T, handler http.Handler, body string) JSONRPCResponse {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var jsonResp JSONRPCResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&jsonResp))
	return jsonResp
}

func errorCode(t *testing.T, resp JSONRPCResponse) int {
	t.Helper()
	errorMap, ok := resp.Error.(map[string]interface{})
	require.True(t, ok, "Expected error to be map, got %T", resp.Error)
	return int(errorMap["code"].(float64))
}

func TestSendBanner(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	sendBanner(w, req)

	resp := w.Result()
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)

	var data map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
	assert.Equal(t, "ok", data["status"])
}

func TestJSONRPCValidation(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	handler := s.Handler()

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"invalid json", `{invalid json}`, ErrCodeParseError},
		{"wrong version", `{"jsonrpc":"1.0","method":"parse","id":1}`, ErrCodeInvalidRequest},
		{"missing id", `{"jsonrpc":"2.0","method":"parse"}`, ErrCodeInvalidRequest},
		{"missing method", `{"jsonrpc":"2.0","id":1}`, ErrCodeInvalidRequest},
		{"unknown method", `{"jsonrpc":"2.0","method":"devices","id":1}`, ErrCodeMethodNotFound},
		{"parse without params", `{"jsonrpc":"2.0","method":"parse","id":1}`, ErrCodeInvalidParams},
		{"malformed params", `{"jsonrpc":"2.0","method":"type","params":[1],"id":1}`, ErrCodeInvalidParams},
		{"type without entry", `{"jsonrpc":"2.0","method":"type","params":{},"id":1}`, ErrCodeInvalidParams},
		{"confirm without id", `{"jsonrpc":"2.0","method":"selection_confirm","params":{"index":0},"id":1}`, ErrCodeInvalidParams},
		{"sequence syntax error", `{"jsonrpc":"2.0","method":"parse","params":{"sequence":"a{b"},"id":1}`, ErrCodeServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postRPC(t, handler, tt.body)
			assert.Equal(t, "2.0", resp.JSONRPC)
			assert.Nil(t, resp.Result)
			assert.Equal(t, tt.wantCode, errorCode(t, resp))
		})
	}
}

func TestHandleJSONRPC_NonPost(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	req := httptest.NewRequest(http.MethodGet, "/rpc", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRPC_Parse(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	resp := postRPC(t, s.Handler(), `{"jsonrpc":"2.0","method":"parse","params":{"sequence":"a{TAB}{DELAY 5}"},"id":"p"}`)
	require.Nil(t, resp.Error)
	assert.Equal(t, "p", resp.ID)

	result := resp.Result.(map[string]interface{})
	actions := result["actions"].([]interface{})
	require.Len(t, actions, 3)
	assert.Equal(t, "char", actions[0].(map[string]interface{})["type"])
	assert.Equal(t, "Tab", actions[1].(map[string]interface{})["key"])
	assert.Equal(t, float64(5), actions[2].(map[string]interface{})["ms"])
}

func TestRPC_Type(t *testing.T) {
	s, p := newTestServer(t, Options{})
	p.AddWindow("Login")

	resp := postRPC(t, s.Handler(), `{"jsonrpc":"2.0","method":"type","params":{"entry":"MyBank"},"id":1}`)
	require.Nil(t, resp.Error)
	assert.Equal(t, "alice[Tab]hunter2[Enter]", p.ActionChars())
}

func TestRPC_Windows(t *testing.T) {
	s, p := newTestServer(t, Options{})
	p.AddWindow("Editor")

	resp := postRPC(t, s.Handler(), `{"jsonrpc":"2.0","method":"windows","id":1}`)
	require.Nil(t, resp.Error)
	assert.Equal(t, "Editor", resp.Result.(map[string]interface{})["active"])
}

func TestRPC_GlobalWithoutClientsCancels(t *testing.T) {
	s, p := newTestServer(t, Options{})
	p.AddWindow("MyBank Login")

	resp := postRPC(t, s.Handler(), `{"jsonrpc":"2.0","method":"global","id":1}`)
	require.Nil(t, resp.Error)
	assert.Equal(t, "closed", resp.Result.(map[string]interface{})["result"])

	_, pending := s.service.Engine().PendingSelection()
	assert.False(t, pending)
	assert.Equal(t, autotype.StateIdle, s.service.Engine().State())
	assert.Equal(t, 0, p.ActionCount())
}

func TestRPC_ServerShutdown(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	resp := postRPC(t, s.Handler(), `{"jsonrpc":"2.0","method":"server_shutdown","id":1}`)
	require.Nil(t, resp.Error)

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("shutdown was not requested")
	}

	// a second request is harmless
	s.Shutdown()
}

func TestExecute(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	result, err := s.Execute(ctx, "parse", json.RawMessage(`{"sequence":"x"}`))
	require.NoError(t, err)
	assert.Len(t, result.(commands.ParseResponse).Actions, 1)

	_, err = s.Execute(ctx, "nope", nil)
	assert.Error(t, err)
}

func TestSendJSONRPCResponse(t *testing.T) {
	w := httptest.NewRecorder()
	sendJSONRPCResponse(w, 123, map[string]string{"test": "data"})

	var jsonResp JSONRPCResponse
	require.NoError(t, json.NewDecoder(w.Result().Body).Decode(&jsonResp))

	assert.Equal(t, "2.0", jsonResp.JSONRPC)
	assert.Equal(t, float64(123), jsonResp.ID)
	assert.Equal(t, "data", jsonResp.Result.(map[string]interface{})["test"])
}

func TestSendJSONRPCError(t *testing.T) {
	w := httptest.NewRecorder()
	sendJSONRPCError(w, 456, ErrCodeMethodNotFound, "Method not found", "Test method")

	var jsonResp JSONRPCResponse
	require.NoError(t, json.NewDecoder(w.Result().Body).Decode(&jsonResp))

	errorMap, ok := jsonResp.Error.(map[string]interface{})
	require.True(t, ok, "Expected error to be map, got %T", jsonResp.Error)

	assert.Equal(t, float64(456), jsonResp.ID)
	assert.Equal(t, float64(ErrCodeMethodNotFound), errorMap["code"])
	assert.Equal(t, "Method not found", errorMap["message"])
	assert.Equal(t, "Test method", errorMap["data"])
}

func TestCORSMiddleware(t *testing.T) {
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	corsHandler := corsMiddleware(testHandler)

	tests := []struct {
		name       string
		method     string
		wantStatus int
	}{
		{"GET request", "GET", http.StatusTeapot},
		{"POST request", "POST", http.StatusTeapot},
		// preflight never reaches the handler
		{"OPTIONS request", "OPTIONS", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			corsHandler.ServeHTTP(w, httptest.NewRequest(tt.method, "/", nil))

			resp := w.Result()
			assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "POST, GET, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestHandler_CORSOnlyWhenEnabled(t *testing.T) {
	plain, _ := newTestServer(t, Options{})
	cors, _ := newTestServer(t, Options{EnableCORS: true})

	for _, tt := range []struct {
		server *Server
		want   string
	}{
		{plain, ""},
		{cors, "*"},
	} {
		w := httptest.NewRecorder()
		tt.server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/rpc", bytes.NewReader([]byte(`{}`))))
		assert.Equal(t, tt.want, w.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestNormalizeAddr(t *testing.T) {
	tests := []struct {
		addr    string
		want    string
		wantErr bool
	}{
		{"12100", ":12100", false},
		{"localhost:12100", "localhost:12100", false},
		{":8080", ":8080", false},
		{"abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			got, err := NormalizeAddr(tt.addr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
