package server

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/opencode-ai/opencode/pkg/types"
)

// sessionSummary is the shape returned by GET /sessions: just enough to
// populate a session list, never the dataset or message history.
type sessionSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"created_at"`
}

// fileInfo describes a session's bound dataset alongside its cached profile.
type fileInfo struct {
	Filename    string                `json:"filename"`
	RowCount    int                   `json:"row_count"`
	ColumnCount int                   `json:"column_count"`
	Columns     []types.ColumnProfile `json:"columns"`
	Preview     []map[string]any      `json:"preview"`
}

// sessionDetail is the shape returned by GET /sessions/{id}.
type sessionDetail struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	CreatedAt int64            `json:"created_at"`
	File      fileInfo         `json:"file"`
	Messages  []*types.Message `json:"messages"`
}

const previewRowCount = 10

// listSessions handles GET /sessions: every session owned by the caller,
// most recently created first.
func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	sessions, err := s.sessionService.List(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Time.Created > sessions[j].Time.Created
	})

	out := make([]sessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sessionSummary{ID: sess.ID, Title: sess.Title, CreatedAt: sess.Time.Created})
	}
	writeJSON(w, http.StatusOK, out)
}

// getSession handles GET /sessions/{id}: full detail for one session owned
// by the caller, including its dataset profile and message history with
// query_result messages excluded (they're replay-only, not display).
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	sessionID := chi.URLParam(r, "sessionID")

	sess, err := s.sessionService.Get(r.Context(), sessionID)
	if err != nil || sess.OwnerUserID != identity.UserID {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "session not found")
		return
	}

	messages, err := s.sessionService.GetMessages(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	visible := make([]*types.Message, 0, len(messages))
	for _, m := range messages {
		if m.Kind == "query_result" {
			continue
		}
		visible = append(visible, m)
	}

	preview, err := s.sessionService.PreviewRows(r.Context(), sessionID, previewRowCount)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, sessionDetail{
		ID:        sess.ID,
		Title:     sess.Title,
		CreatedAt: sess.Time.Created,
		File: fileInfo{
			Filename:    sess.Dataset.Filename,
			RowCount:    sess.Dataset.Profile.RowCount,
			ColumnCount: len(sess.Dataset.Profile.Columns),
			Columns:     sess.Dataset.Profile.Columns,
			Preview:     preview,
		},
		Messages: visible,
	})
}

// deleteSession handles DELETE /sessions/{id}: cascades to the session's
// file and messages. A successful delete answers 204; a repeated delete,
// like a missing or non-owned session, answers 404 with the usual error
// body.
func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	sessionID := chi.URLParam(r, "sessionID")

	sess, err := s.sessionService.Get(r.Context(), sessionID)
	if err != nil || sess.OwnerUserID != identity.UserID {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "session not found")
		return
	}

	if err := s.sessionService.Delete(r.Context(), sessionID); err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
