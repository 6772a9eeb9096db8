package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/opencode-ai/opencode/internal/agent"
	"github.com/opencode-ai/opencode/internal/event"
	"github.com/opencode-ai/opencode/internal/provider"
	"github.com/opencode-ai/opencode/internal/query"
	"github.com/opencode-ai/opencode/internal/storage"
	"github.com/opencode-ai/opencode/internal/tool"
)

// ErrTurnActive is returned by Process when a turn is already running for
// the session. A session runs at most one turn at a time: a concurrent
// message is rejected rather than queued, so the caller can surface an
// error event immediately instead of leaving the sender waiting.
var ErrTurnActive = errors.New("session: a turn is already in progress")

// Processor drives the Agent Loop for a single turn at a time per session.
type Processor struct {
	mu sync.Mutex

	providerRegistry *provider.Registry
	toolRegistry     *tool.Registry
	storage          *storage.Storage
	bus              *event.Bus

	defaultProviderID string
	defaultModelID    string

	maxIterations      int
	maxTurnDuration    time.Duration
	contextTokenBudget int

	sessions map[string]*sessionState
}

// sessionState tracks the single active turn for a session, if any.
type sessionState struct {
	ctx    context.Context
	cancel context.CancelFunc
	engine *query.Engine
}

// NewProcessor creates a session processor. maxIterations, maxTurnDuration
// (seconds) and contextTokenBudget fall back to sane defaults when <= 0.
func NewProcessor(
	providerReg *provider.Registry,
	toolReg *tool.Registry,
	store *storage.Storage,
	bus *event.Bus,
	defaultProviderID, defaultModelID string,
	maxIterations, maxTurnDurationSeconds, contextTokenBudget int,
) *Processor {
	if defaultProviderID == "" {
		defaultProviderID = "anthropic"
	}
	if defaultModelID == "" {
		defaultModelID = "claude-sonnet-4-5"
	}
	if maxIterations <= 0 {
		maxIterations = MaxIterations
	}
	if maxTurnDurationSeconds <= 0 {
		maxTurnDurationSeconds = int(DefaultMaxTurnDuration.Seconds())
	}
	if contextTokenBudget <= 0 {
		contextTokenBudget = DefaultContextTokenBudget
	}
	if bus == nil {
		bus = event.NewBus()
	}
	return &Processor{
		providerRegistry:   providerReg,
		toolRegistry:       toolReg,
		storage:            store,
		bus:                bus,
		defaultProviderID:  defaultProviderID,
		defaultModelID:     defaultModelID,
		maxIterations:      maxIterations,
		maxTurnDuration:    time.Duration(maxTurnDurationSeconds) * time.Second,
		contextTokenBudget: contextTokenBudget,
		sessions:           make(map[string]*sessionState),
	}
}

// Process runs one turn for sessionID: it appends triggerText as a user
// message (unless empty, for a resumed/retried turn), drives the Agent
// Loop against engine, and publishes every event onto the bus. It returns
// ErrTurnActive immediately, without blocking, if a turn is already
// running for this session.
func (p *Processor) Process(ctx context.Context, sessionID string, ag *agent.Agent, engine *query.Engine, triggerText string) error {
	p.mu.Lock()
	if _, ok := p.sessions[sessionID]; ok {
		p.mu.Unlock()
		return ErrTurnActive
	}

	loopCtx, cancel := context.WithTimeout(ctx, p.maxTurnDuration)
	state := &sessionState{ctx: loopCtx, cancel: cancel, engine: engine}
	p.sessions[sessionID] = state
	p.mu.Unlock()

	defer func() {
		cancel()
		p.mu.Lock()
		delete(p.sessions, sessionID)
		p.mu.Unlock()
	}()

	return p.runLoop(loopCtx, sessionID, state, ag, triggerText)
}

// publish tags evt with sessionID before putting it on the bus, so a
// transport subscribed globally can filter events to the session it serves.
func (p *Processor) publish(sessionID string, evt event.Event) {
	evt.SessionID = sessionID
	p.bus.Publish(evt)
}

// Bus returns the event bus this processor publishes turn events to.
func (p *Processor) Bus() *event.Bus {
	return p.bus
}

// Abort cancels the active turn for a session, if any. Aborting a session
// with no active turn is a no-op: "stop" when nothing is running has
// nothing to do.
func (p *Processor) Abort(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if state, ok := p.sessions[sessionID]; ok {
		state.cancel()
	}
}

// IsProcessing reports whether a turn is currently running for a session.
func (p *Processor) IsProcessing(sessionID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.sessions[sessionID]
	return ok
}
