// Package session implements the Session Runtime: it owns session and
// message persistence and drives the Agent Loop via Processor.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/opencode-ai/opencode/internal/agent"
	"github.com/opencode-ai/opencode/internal/dataset"
	"github.com/opencode-ai/opencode/internal/event"
	"github.com/opencode-ai/opencode/internal/provider"
	"github.com/opencode-ai/opencode/internal/query"
	"github.com/opencode-ai/opencode/internal/storage"
	"github.com/opencode-ai/opencode/internal/tool"
	"github.com/opencode-ai/opencode/internal/upload"
	"github.com/opencode-ai/opencode/pkg/types"
)

var _ upload.Registrar = (*Service)(nil)

// Service is the top-level Session Runtime: session/message CRUD plus the
// one-turn-per-session Agent Loop driver.
type Service struct {
	storage   *storage.Storage
	processor *Processor
	bus       *event.Bus

	mu      sync.Mutex
	engines map[string]*query.Engine
}

// NewService wires a Service around an already-constructed Processor.
func NewService(store *storage.Storage, bus *event.Bus, processor *Processor) *Service {
	return &Service{
		storage:   store,
		processor: processor,
		bus:       bus,
		engines:   make(map[string]*query.Engine),
	}
}

// NewServiceWithProcessor builds both the Processor and the Service around
// the given dependencies in one call.
func NewServiceWithProcessor(
	store *storage.Storage,
	providerReg *provider.Registry,
	toolReg *tool.Registry,
	bus *event.Bus,
	defaultProviderID, defaultModelID string,
	maxIterations, maxTurnDurationSeconds, contextTokenBudget int,
) *Service {
	processor := NewProcessor(providerReg, toolReg, store, bus, defaultProviderID, defaultModelID, maxIterations, maxTurnDurationSeconds, contextTokenBudget)
	return NewService(store, bus, processor)
}

// GetProcessor returns the processor driving this service's turns.
func (s *Service) GetProcessor() *Processor {
	return s.processor
}

// Create registers a new session bound to an already-uploaded dataset file.
func (s *Service) Create(ctx context.Context, ownerUserID, title string, ds types.DatasetFile) (*types.Session, error) {
	now := time.Now().UnixMilli()
	sess := &types.Session{
		ID:          ulid.Make().String(),
		OwnerUserID: ownerUserID,
		Title:       title,
		Dataset:     ds,
		Time:        types.SessionTime{Created: now, Updated: now},
	}

	if err := s.storage.Put(ctx, []string{"session", sess.ID}, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return sess, nil
}

// RegisterUpload implements upload.Registrar: it binds a completed upload
// to a session, creating the session if this is the first upload for it.
func (s *Service) RegisterUpload(ctx context.Context, ownerUserID string, result upload.Result) (*types.Session, error) {
	format, err := dataset.DetectFormat(result.Filename)
	if err != nil {
		return nil, fmt.Errorf("unrecognized dataset format: %w", err)
	}

	ds := types.DatasetFile{
		Path:     result.FilePath,
		Filename: result.Filename,
		Format:   string(format),
		Profile:  result.Profile,
	}

	if existing, err := s.Get(ctx, result.SessionID); err == nil {
		existing.Dataset = ds
		existing.Time.Updated = time.Now().UnixMilli()
		if err := s.storage.Put(ctx, []string{"session", existing.ID}, existing); err != nil {
			return nil, fmt.Errorf("failed to update session: %w", err)
		}
		return existing, nil
	}

	now := time.Now().UnixMilli()
	sess := &types.Session{
		ID:          result.SessionID,
		OwnerUserID: ownerUserID,
		Dataset:     ds,
		Time:        types.SessionTime{Created: now, Updated: now},
	}
	if err := s.storage.Put(ctx, []string{"session", sess.ID}, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return sess, nil
}

// Get retrieves a session by ID.
func (s *Service) Get(ctx context.Context, sessionID string) (*types.Session, error) {
	var sess types.Session
	if err := s.storage.Get(ctx, []string{"session", sessionID}, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Update applies a title change to a session.
func (s *Service) Update(ctx context.Context, sessionID string, title string) (*types.Session, error) {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess.Title = title
	sess.Time.Updated = time.Now().UnixMilli()
	if err := s.storage.Put(ctx, []string{"session", sess.ID}, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Delete removes a session, its messages, its dataset file, and its cached
// query engine.
func (s *Service) Delete(ctx context.Context, sessionID string) error {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if eng, ok := s.engines[sessionID]; ok {
		eng.Close()
		delete(s.engines, sessionID)
	}
	s.mu.Unlock()

	if err := s.storage.Delete(ctx, []string{"session", sessionID}); err != nil {
		return err
	}

	messages, _ := s.GetMessages(ctx, sessionID)
	for _, msg := range messages {
		s.storage.Delete(ctx, []string{"message", sessionID, msg.ID})
	}
	if sess.Dataset.Path != "" {
		_ = os.Remove(sess.Dataset.Path)
	}
	return nil
}

// List returns every session owned by ownerUserID, or every session if
// ownerUserID is empty.
func (s *Service) List(ctx context.Context, ownerUserID string) ([]*types.Session, error) {
	ids, err := s.storage.List(ctx, []string{"session"})
	if err != nil {
		return nil, err
	}

	sessions := make([]*types.Session, 0, len(ids))
	for _, id := range ids {
		var sess types.Session
		if err := s.storage.Get(ctx, []string{"session", id}, &sess); err != nil {
			continue
		}
		if ownerUserID != "" && sess.OwnerUserID != ownerUserID {
			continue
		}
		sessions = append(sessions, &sess)
	}
	return sessions, nil
}

// GetMessages returns every message for a session in append order.
func (s *Service) GetMessages(ctx context.Context, sessionID string) ([]*types.Message, error) {
	var messages []*types.Message
	err := s.storage.Scan(ctx, []string{"message", sessionID}, func(key string, data json.RawMessage) error {
		var msg types.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			return err
		}
		messages = append(messages, &msg)
		return nil
	})
	return messages, err
}

// engineFor returns the cached query engine for a session's dataset,
// loading and indexing the file on first use.
func (s *Service) engineFor(sessionID string, ds types.DatasetFile) (*query.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if eng, ok := s.engines[sessionID]; ok {
		return eng, nil
	}

	table, err := dataset.Load(ds.Path, dataset.Format(ds.Format))
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	eng, err := query.New(table)
	if err != nil {
		return nil, fmt.Errorf("failed to build query engine: %w", err)
	}
	s.engines[sessionID] = eng
	return eng, nil
}

// PreviewRows returns the first n rows of a session's dataset as column ->
// value maps, for display alongside a session's structural profile.
func (s *Service) PreviewRows(ctx context.Context, sessionID string, n int) ([]map[string]any, error) {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	eng, err := s.engineFor(sessionID, sess.Dataset)
	if err != nil {
		return nil, err
	}
	result, err := eng.Execute(ctx, "SELECT * FROM data", n, 0)
	if err != nil {
		return nil, err
	}
	return result.Rows, nil
}

// ProcessMessage starts one turn for a session with triggerText as the
// user's new message, using the given prompt profile (auto_analyze for a
// session's first turn, follow_up thereafter). It returns ErrTurnActive,
// rather than blocking, if a turn is already running.
func (s *Service) ProcessMessage(ctx context.Context, sessionID, triggerText, agentName string) error {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	eng, err := s.engineFor(sessionID, sess.Dataset)
	if err != nil {
		return err
	}

	ag, ok := agent.BuiltInAgents()[agentName]
	if !ok {
		ag = agent.DefaultAgent()
	}

	return s.processor.Process(ctx, sessionID, ag, eng, triggerText)
}

// Abort cancels the active turn for a session, if any.
func (s *Service) Abort(sessionID string) {
	s.processor.Abort(sessionID)
}

// IsProcessing reports whether a turn is currently active for a session.
func (s *Service) IsProcessing(sessionID string) bool {
	return s.processor.IsProcessing(sessionID)
}
