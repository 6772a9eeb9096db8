package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencode-ai/opencode/internal/event"
)

func wsURL(httpURL, path string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http") + path
}

func TestServeSessionWS_InvalidCredentialClosesPolicyViolation(t *testing.T) {
	s := newTestServer(t)
	sess := newTestDataset(t, s, "alice")

	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv.URL, "/sessions/"+sess.ID+"/ws"), nil)
	require.NoError(t, err)
	defer conn.Close()

	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	closeErr, ok := err.(*websocket.CloseError)
	require.True(t, ok, "expected a close error, got %T: %v", err, err)
	assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
}

func TestServeSessionWS_NonOwnerClosesPolicyViolation(t *testing.T) {
	s := newTestServer(t)
	sess := newTestDataset(t, s, "bob")

	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	header := http.Header{"Authorization": []string{"Bearer user:alice"}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv.URL, "/sessions/"+sess.ID+"/ws"), header)
	require.NoError(t, err)
	defer conn.Close()

	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	closeErr, ok := err.(*websocket.CloseError)
	require.True(t, ok)
	assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
}

func TestServeSessionWS_UnknownMessageTypeYieldsErrorEvent(t *testing.T) {
	s := newTestServer(t)
	sess := newTestDataset(t, s, "alice")

	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	header := http.Header{"Authorization": []string{"Bearer user:alice"}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv.URL, "/sessions/"+sess.ID+"/ws"), header)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "bogus"}))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var got event.Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, event.Error, got.Type)
}

func TestServeSessionWS_StopWithNoActiveTurnIsNoOp(t *testing.T) {
	s := newTestServer(t)
	sess := newTestDataset(t, s, "alice")

	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	header := http.Header{"Authorization": []string{"Bearer user:alice"}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv.URL, "/sessions/"+sess.ID+"/ws"), header)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "stop"}))
	assert.False(t, s.sessionService.IsProcessing(sess.ID))
}

func TestReconnectSupersedesPreviousConnection(t *testing.T) {
	s := newTestServer(t)
	sess := newTestDataset(t, s, "alice")

	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	header := http.Header{"Authorization": []string{"Bearer user:alice"}}
	first, _, err := websocket.DefaultDialer.Dial(wsURL(srv.URL, "/sessions/"+sess.ID+"/ws"), header)
	require.NoError(t, err)
	defer first.Close()

	second, _, err := websocket.DefaultDialer.Dial(wsURL(srv.URL, "/sessions/"+sess.ID+"/ws"), header)
	require.NoError(t, err)
	defer second.Close()

	first.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = first.ReadMessage()
	assert.Error(t, err, "the superseded connection should be closed by the new one")
}
