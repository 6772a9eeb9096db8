package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudwego/eino/schema"
	"github.com/oklog/ulid/v2"

	"github.com/opencode-ai/opencode/internal/agent"
	"github.com/opencode-ai/opencode/internal/event"
	"github.com/opencode-ai/opencode/internal/provider"
	"github.com/opencode-ai/opencode/pkg/types"
)

const (
	// MaxIterations bounds how many model/tool round-trips a single turn
	// may take before the loop gives up and ends the turn uncleanly.
	MaxIterations = 15

	// DefaultMaxTurnDuration is the wall-clock ceiling on one turn,
	// overridable via types.Config.MaxTurnDuration.
	DefaultMaxTurnDuration = 10 * time.Minute

	retryInitialInterval = time.Second
	retryMaxInterval     = 30 * time.Second
	retryMaxElapsedTime  = 2 * time.Minute
	retryMaxAttempts     = 3

	// statusCoalesceWindow is the minimum gap between consecutive status
	// events: when a turn emits several in quick succession, the first is
	// published and the rest inside the window are dropped instead of
	// flooding the transport.
	statusCoalesceWindow = 2500 * time.Millisecond
)

func newRetryBackoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialInterval
	b.MaxInterval = retryMaxInterval
	b.MaxElapsedTime = retryMaxElapsedTime
	b.RandomizationFactor = 0.5
	b.Multiplier = 2.0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, retryMaxAttempts-1), ctx)
}

// runLoop drives one turn: append the trigger message (if any), then
// iterate model-call -> tool-dispatch rounds until finalize is called, the
// model stops without requesting tools, the iteration cap is hit, or the
// turn is cancelled. Exactly one done event is published before return.
func (p *Processor) runLoop(ctx context.Context, sessionID string, state *sessionState, ag *agent.Agent, triggerText string) error {
	if ag == nil {
		ag = agent.DefaultAgent()
	}

	session, err := p.loadSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("session not found: %w", err)
	}

	if triggerText != "" {
		userMsg := p.newMessage(sessionID, "user", "text")
		userMsg.Text = triggerText
		userMsg.TokenEstimate = types.EstimateTokens(triggerText)
		if err := p.appendMessage(ctx, sessionID, userMsg); err != nil {
			return fmt.Errorf("failed to save message: %w", err)
		}
	}

	prov, err := p.providerRegistry.Get(p.defaultProviderID)
	if err != nil {
		return fmt.Errorf("provider not found: %w", err)
	}
	model, err := p.providerRegistry.GetModel(p.defaultProviderID, p.defaultModelID)
	if err != nil {
		return fmt.Errorf("model not found: %w", err)
	}

	tools, err := p.resolveTools(ag, model)
	if err != nil {
		return err
	}

	visibleEmitted := false
	var lastStatusAt time.Time
	cleanlyEnded := false
	aborted := false
	dataUpdated := false

	emitStatus := func(message string) {
		now := time.Now()
		if !lastStatusAt.IsZero() && now.Sub(lastStatusAt) < statusCoalesceWindow {
			return
		}
		lastStatusAt = now
		p.publish(sessionID, event.Event{Type: event.Status, Data: event.StatusData{Message: message}})
	}

	retryBackoff := newRetryBackoff(ctx)

	for iteration := 0; iteration < p.maxIterations; iteration++ {
		select {
		case <-ctx.Done():
			aborted = true
			goto done
		default:
		}

		messages, err := p.loadMessages(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to load messages: %w", err)
		}

		systemPrompt := NewSystemPrompt(session, ag)
		einoMessages := make([]*schema.Message, 0, len(messages)+1)
		einoMessages = append(einoMessages, &schema.Message{Role: schema.System, Content: systemPrompt.Build()})
		einoMessages = append(einoMessages, provider.ConvertToEinoMessages(truncateForReplay(messages, p.contextTokenBudget))...)

		maxTokens := model.MaxOutputTokens
		if maxTokens <= 0 {
			maxTokens = 8192
		}

		req := &provider.CompletionRequest{
			Model:       model.ID,
			Messages:    einoMessages,
			Tools:       tools,
			MaxTokens:   maxTokens,
			Temperature: ag.Temperature,
			TopP:        ag.TopP,
		}

		emitStatus("thinking")

		stream, err := prov.CreateCompletion(ctx, req)
		if err != nil {
			if !p.retryOrGiveUp(ctx, retryBackoff, err) {
				p.emitError(sessionID, err.Error())
				goto done
			}
			iteration--
			continue
		}

		resp, err := drainStream(ctx, stream)
		stream.Close()
		if err != nil {
			if ctx.Err() != nil {
				aborted = true
				goto done
			}
			if !p.retryOrGiveUp(ctx, retryBackoff, err) {
				p.emitError(sessionID, err.Error())
				goto done
			}
			iteration--
			continue
		}
		retryBackoff = newRetryBackoff(ctx)

		if resp.Text != "" {
			assistantMsg := p.newMessage(sessionID, "assistant", "internal")
			assistantMsg.Text = resp.Text
			assistantMsg.ModelID = model.ID
			assistantMsg.ProviderID = p.defaultProviderID
			assistantMsg.Tokens = resp.Tokens
			assistantMsg.TokenEstimate = types.EstimateTokens(resp.Text)
			p.appendMessage(ctx, sessionID, assistantMsg)
		}

		if len(resp.ToolCalls) == 0 {
			// The model stopped without requesting a tool. It was asked to
			// call finalize explicitly; treat this as an unclean end of
			// turn rather than loop forever waiting for it.
			goto done
		}

		for _, call := range resp.ToolCalls {
			result, err := p.dispatchToolCall(ctx, sessionID, session, call, ag, state)
			if err != nil {
				p.emitError(sessionID, err.Error())
				continue
			}
			if result.visible {
				visibleEmitted = true
			}
			if result.dataUpdated {
				dataUpdated = true
			}
			if result.terminate {
				if result.titleUpdate != "" && session.Title == "" {
					session.Title = result.titleUpdate
					p.saveSession(ctx, session)
					p.publish(sessionID, event.Event{Type: event.SessionUpdate, Data: event.SessionUpdateData{Title: session.Title}})
				}
				cleanlyEnded = true
				goto done
			}
		}
	}

done:
	if !aborted && !visibleEmitted {
		// Nothing visible was produced during the turn, whether or not it
		// ended cleanly: leave the user with something rather than a silent
		// done event.
		fallback := p.newMessage(sessionID, "assistant", "text")
		fallback.Text = "Sorry, I wasn't able to produce an answer for that."
		fallback.TokenEstimate = types.EstimateTokens(fallback.Text)
		p.appendMessage(ctx, sessionID, fallback)
		p.publish(sessionID, event.Event{Type: event.Text, Data: event.TextData{Text: fallback.Text}})
	}

	p.publish(sessionID, event.Event{Type: event.Done, Data: event.DoneData{
		Aborted:      aborted,
		DataUpdated:  dataUpdated,
		CleanlyEnded: cleanlyEnded,
	}})
	return nil
}

func (p *Processor) retryOrGiveUp(ctx context.Context, b backoff.BackOff, err error) bool {
	next := b.NextBackOff()
	if next == backoff.Stop {
		return false
	}
	timer := time.NewTimer(next)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (p *Processor) emitError(sessionID, message string) {
	p.publish(sessionID, event.Event{Type: event.Error, Data: event.ErrorData{Message: message}})
}

// resolveTools returns the Eino tool definitions for every tool enabled on
// the agent, or nil if the model doesn't support tool calling.
func (p *Processor) resolveTools(ag *agent.Agent, model *types.Model) ([]*schema.ToolInfo, error) {
	if !model.SupportsTools {
		return nil, nil
	}

	var result []*schema.ToolInfo
	for _, t := range p.toolRegistry.List() {
		if !ag.ToolEnabled(t.ID()) {
			continue
		}
		info, err := t.EinoTool().Info(context.Background())
		if err != nil {
			return nil, err
		}
		result = append(result, info)
	}
	return result, nil
}

// newMessage builds a message skeleton with a fresh ID and timestamp; the
// caller fills in Text/Payload/Kind-specific fields before appending it.
func (p *Processor) newMessage(sessionID, role, kind string) *types.Message {
	return &types.Message{
		ID:        ulid.Make().String(),
		SessionID: sessionID,
		Role:      role,
		Kind:      kind,
		Time:      types.MessageTime{Created: time.Now().UnixMilli()},
	}
}

func parseToolArgs(call schema.ToolCall, v any) error {
	return json.Unmarshal([]byte(call.Function.Arguments), v)
}
