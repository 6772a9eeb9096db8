package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencode-ai/opencode/internal/auth"
	"github.com/opencode-ai/opencode/internal/provider"
	"github.com/opencode-ai/opencode/internal/storage"
	"github.com/opencode-ai/opencode/internal/tool"
	"github.com/opencode-ai/opencode/pkg/types"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := storage.New(t.TempDir())
	cfg := &Config{EnableCORS: false}
	appCfg := &types.Config{LLMModel: "anthropic/claude-sonnet-4-5", MaxIterations: 1}
	return New(cfg, appCfg, store, provider.NewRegistry(nil), tool.DefaultRegistry(), auth.StubVerifier{})
}

// newTestDataset writes a small CSV file to disk and registers a session
// owned by ownerUserID bound to it, returning the session.
func newTestDataset(t *testing.T, s *Server, ownerUserID string) *types.Session {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,age\nAda,36\nGrace,85\n"), 0o644))

	sess, err := s.sessionService.Create(context.Background(), ownerUserID, "", types.DatasetFile{
		Path:     path,
		Filename: "data.csv",
		Format:   "csv",
		Profile:  types.Profile{RowCount: 2, Columns: []types.ColumnProfile{{Name: "name", Type: "string"}, {Name: "age", Type: "integer"}}},
	})
	require.NoError(t, err)
	return sess
}

func authedRequest(method, url string) *http.Request {
	r := httptest.NewRequest(method, url, nil)
	r.Header.Set("Authorization", "Bearer user:alice")
	return r
}

func TestListSessions_RequiresIdentity(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListSessions_OwnedOnly(t *testing.T) {
	s := newTestServer(t)
	newTestDataset(t, s, "alice")
	newTestDataset(t, s, "bob")

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, authedRequest(http.MethodGet, "/sessions"))
	require.Equal(t, http.StatusOK, w.Code)

	var out []sessionSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Len(t, out, 1)
}

func TestGetSession_NotOwnerReturns404(t *testing.T) {
	s := newTestServer(t)
	sess := newTestDataset(t, s, "bob")

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, authedRequest(http.MethodGet, "/sessions/"+sess.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSession_Owner(t *testing.T) {
	s := newTestServer(t)
	sess := newTestDataset(t, s, "alice")

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, authedRequest(http.MethodGet, "/sessions/"+sess.ID))
	require.Equal(t, http.StatusOK, w.Code)

	var detail sessionDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, sess.ID, detail.ID)
	assert.Equal(t, "data.csv", detail.File.Filename)
	assert.Equal(t, 2, detail.File.ColumnCount)
	assert.Len(t, detail.File.Preview, 2)
	assert.Empty(t, detail.Messages)
}

func TestGetSession_ExcludesQueryResultMessages(t *testing.T) {
	s := newTestServer(t)
	sess := newTestDataset(t, s, "alice")

	require.NoError(t, s.storage.Put(context.Background(), []string{"message", sess.ID, "m1"}, &types.Message{
		ID: "m1", SessionID: sess.ID, Role: "assistant", Kind: "text", Text: "hi",
	}))
	require.NoError(t, s.storage.Put(context.Background(), []string{"message", sess.ID, "m2"}, &types.Message{
		ID: "m2", SessionID: sess.ID, Role: "assistant", Kind: "query_result",
	}))

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, authedRequest(http.MethodGet, "/sessions/"+sess.ID))
	require.Equal(t, http.StatusOK, w.Code)

	var detail sessionDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	require.Len(t, detail.Messages, 1)
	assert.Equal(t, "m1", detail.Messages[0].ID)
}

func TestDeleteSession_IdempotentNotFoundAfterFirstDelete(t *testing.T) {
	s := newTestServer(t)
	sess := newTestDataset(t, s, "alice")

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, authedRequest(http.MethodDelete, "/sessions/"+sess.ID))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w2 := httptest.NewRecorder()
	s.Router().ServeHTTP(w2, authedRequest(http.MethodDelete, "/sessions/"+sess.ID))
	assert.Equal(t, http.StatusNotFound, w2.Code)
}

func TestDeleteSession_NotOwnerReturns404(t *testing.T) {
	s := newTestServer(t)
	sess := newTestDataset(t, s, "bob")

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, authedRequest(http.MethodDelete, "/sessions/"+sess.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
