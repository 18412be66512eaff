package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wsMessage decodes both responses and notifications.
type wsMessage struct {
	JSONRPC string                 `json:"jsonrpc"`
	Method  string                 `json:"method,omitempty"`
	Params  json.RawMessage        `json:"params,omitempty"`
	Result  json.RawMessage        `json:"result,omitempty"`
	Error   map[string]interface{} `json:"error,omitempty"`
	ID      interface{}            `json:"id"`
}

func setupTestServer(t *testing.T, s *Server) (*httptest.Server, string) {
	t.Helper()
	server := httptest.NewServer(s.Handler())
	t.Cleanup(server.Close)
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	return server, wsURL
}

func connectWebSocket(t *testing.T, s *Server, url string) *websocket.Conn {
	t.Helper()
	before := s.hub.count()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err, "should connect to WebSocket")
	require.Eventually(t, func() bool { return s.hub.count() > before }, time.Second, 5*time.Millisecond)
	return conn
}

func sendJSONRPCRequest(t *testing.T, conn *websocket.Conn, req JSONRPCRequest) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(req), "should send request")
}

func readMessage(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg), "should read message")
	return msg
}

// readResponse reads until the response to id, returning it together with
// the notifications seen on the way.
func readResponse(t *testing.T, conn *websocket.Conn, id interface{}) (wsMessage, []wsMessage) {
	t.Helper()
	var notifications []wsMessage
	for {
		msg := readMessage(t, conn)
		if msg.Method != "" {
			notifications = append(notifications, msg)
			continue
		}
		if msg.ID == id {
			return msg, notifications
		}
	}
}

func readNotification(t *testing.T, conn *websocket.Conn, method string) wsMessage {
	t.Helper()
	for {
		msg := readMessage(t, conn)
		if msg.Method == method {
			return msg
		}
	}
}

func TestWebSocket_ValidRequest(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	_, wsURL := setupTestServer(t, s)

	conn := connectWebSocket(t, s, wsURL)
	defer conn.Close()

	sendJSONRPCRequest(t, conn, JSONRPCRequest{
		JSONRPC: "2.0",
		Method:  "parse",
		Params:  json.RawMessage(`{"sequence":"ab"}`),
		ID:      "string-id-123",
	})
	resp, _ := readResponse(t, conn, "string-id-123")

	assert.Equal(t, "2.0", resp.JSONRPC)
	assert.Nil(t, resp.Error)
	assert.Contains(t, string(resp.Result), `"sequence":"ab"`)
}

func TestWebSocket_Validation(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	_, wsURL := setupTestServer(t, s)

	conn := connectWebSocket(t, s, wsURL)
	defer conn.Close()

	tests := []struct {
		name     string
		payload  string
		wantCode int
		wantData string
	}{
		{"invalid json", `{invalid`, ErrCodeParseError, errMsgParseError},
		{"wrong version", `{"jsonrpc":"1.0","method":"parse","id":1}`, ErrCodeInvalidRequest, errMsgInvalidJSONRPC},
		{"missing id", `{"jsonrpc":"2.0","method":"parse"}`, ErrCodeInvalidRequest, errMsgIDRequired},
		{"missing method", `{"jsonrpc":"2.0","id":1}`, ErrCodeInvalidRequest, errMsgMethodRequired},
		{"method not found", `{"jsonrpc":"2.0","method":"devices","id":1}`, ErrCodeMethodNotFound, "devices not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tt.payload)))
			msg := readMessage(t, conn)
			require.NotNil(t, msg.Error)
			assert.Equal(t, float64(tt.wantCode), msg.Error["code"])
			assert.Equal(t, tt.wantData, msg.Error["data"])
		})
	}
}

func TestWebSocket_BinaryMessageRejected(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	_, wsURL := setupTestServer(t, s)

	conn := connectWebSocket(t, s, wsURL)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte(`{}`)))
	msg := readMessage(t, conn)
	require.NotNil(t, msg.Error)
	assert.Equal(t, float64(ErrCodeInvalidRequest), msg.Error["code"])
}

func TestWebSocket_SelectionRoundTrip(t *testing.T) {
	s, p := newTestServer(t, Options{})
	p.AddWindow("MyBank Login")
	_, wsURL := setupTestServer(t, s)

	conn := connectWebSocket(t, s, wsURL)
	defer conn.Close()

	sendJSONRPCRequest(t, conn, JSONRPCRequest{JSONRPC: "2.0", Method: "global", ID: "g"})
	resp, notifications := readResponse(t, conn, "g")
	require.Nil(t, resp.Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, "selection", notifications[0].Method)

	var pushed struct {
		ID      string `json:"id"`
		Matches []struct {
			Index    int    `json:"index"`
			Sequence string `json:"sequence"`
		} `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(notifications[0].Params, &pushed))
	require.Len(t, pushed.Matches, 2)
	assert.Equal(t, "{USERNAME}!", pushed.Matches[1].Sequence)

	var result struct {
		Result    string `json:"result"`
		Selection struct {
			ID string `json:"id"`
		} `json:"selection"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.Equal(t, "selection", result.Result)
	assert.Equal(t, pushed.ID, result.Selection.ID)

	sendJSONRPCRequest(t, conn, JSONRPCRequest{
		JSONRPC: "2.0",
		Method:  "selection_confirm",
		Params:  json.RawMessage(`{"id":"` + pushed.ID + `","index":1}`),
		ID:      "c",
	})
	resp, notifications = readResponse(t, conn, "c")
	require.Nil(t, resp.Error)
	assert.Equal(t, "bob!", p.ActionChars())

	require.Len(t, notifications, 1)
	assert.Equal(t, "selection_closed", notifications[0].Method)
	assert.JSONEq(t, `{"id":"`+pushed.ID+`","reason":"confirmed"}`, string(notifications[0].Params))
}

func TestWebSocket_SelectionCancel(t *testing.T) {
	s, p := newTestServer(t, Options{})
	p.AddWindow("MyBank Login")
	_, wsURL := setupTestServer(t, s)

	conn := connectWebSocket(t, s, wsURL)
	defer conn.Close()

	sendJSONRPCRequest(t, conn, JSONRPCRequest{JSONRPC: "2.0", Method: "global", ID: "g"})
	readResponse(t, conn, "g")

	req, ok := s.service.Engine().PendingSelection()
	require.True(t, ok)

	sendJSONRPCRequest(t, conn, JSONRPCRequest{
		JSONRPC: "2.0",
		Method:  "selection_cancel",
		Params:  json.RawMessage(`{"id":"` + req.ID + `"}`),
		ID:      "x",
	})
	resp, _ := readResponse(t, conn, "x")
	require.Nil(t, resp.Error)

	_, ok = s.service.Engine().PendingSelection()
	assert.False(t, ok)
	assert.Equal(t, 0, p.ActionCount())
}

func TestWebSocket_SelectionTimesOut(t *testing.T) {
	s, p := newTestServer(t, Options{SelectionTimeout: 20 * time.Millisecond})
	p.AddWindow("MyBank Login")
	_, wsURL := setupTestServer(t, s)

	conn := connectWebSocket(t, s, wsURL)
	defer conn.Close()

	sendJSONRPCRequest(t, conn, JSONRPCRequest{JSONRPC: "2.0", Method: "global", ID: "g"})
	_, notifications := readResponse(t, conn, "g")

	var closed wsMessage
	found := false
	for _, n := range notifications {
		if n.Method == "selection_closed" {
			closed, found = n, true
		}
	}
	if !found {
		closed = readNotification(t, conn, "selection_closed")
	}
	assert.Contains(t, string(closed.Params), `"reason":"timeout"`)

	_, ok := s.service.Engine().PendingSelection()
	assert.False(t, ok)
}

func TestWebSocket_LastClientLeavingCancelsSelection(t *testing.T) {
	s, p := newTestServer(t, Options{})
	p.AddWindow("MyBank Login")
	_, wsURL := setupTestServer(t, s)

	conn := connectWebSocket(t, s, wsURL)

	sendJSONRPCRequest(t, conn, JSONRPCRequest{JSONRPC: "2.0", Method: "global", ID: "g"})
	readResponse(t, conn, "g")

	_, ok := s.service.Engine().PendingSelection()
	require.True(t, ok)

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool {
		_, pending := s.service.Engine().PendingSelection()
		return !pending
	}, 2*time.Second, 5*time.Millisecond)
}

func TestWebSocket_NotificationPushed(t *testing.T) {
	s, p := newTestServer(t, Options{})
	p.AddWindow("Terminal")
	_, wsURL := setupTestServer(t, s)

	conn := connectWebSocket(t, s, wsURL)
	defer conn.Close()

	sendJSONRPCRequest(t, conn, JSONRPCRequest{JSONRPC: "2.0", Method: "global", ID: 7})
	resp, notifications := readResponse(t, conn, float64(7))
	require.NotNil(t, resp.Error)

	require.Len(t, notifications, 1)
	assert.Equal(t, "notification", notifications[0].Method)
	assert.Contains(t, string(notifications[0].Params), "Terminal")
}

func TestNewUpgrader_CORSEnabled(t *testing.T) {
	upgrader := newUpgrader(true)
	require.NotNil(t, upgrader.CheckOrigin)

	req := &http.Request{Header: http.Header{}}
	req.Header.Set("Origin", "http://any-origin.com")
	assert.True(t, upgrader.CheckOrigin(req))
}

func TestWebSocket_CrossOriginRejected(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	_, wsURL := setupTestServer(t, s)

	header := http.Header{}
	header.Set("Origin", "http://other.example")
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestIsSameOrigin(t *testing.T) {
	tests := []struct {
		name     string
		origin   string
		host     string
		expected bool
	}{
		{"no origin header", "", "localhost:8080", true},
		{"same origin", "http://localhost:8080", "localhost:8080", true},
		{"different origin", "http://other.com", "localhost:8080", false},
		{"invalid origin url", "://invalid", "localhost:8080", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &http.Request{Header: http.Header{}, Host: tt.host}
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.expected, isSameOrigin(req))
		})
	}
}
