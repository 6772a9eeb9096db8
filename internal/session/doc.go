// Package session implements the Session Runtime and the Agent Loop it
// drives: one conversation bound to one uploaded dataset, enforcing at
// most one active turn per session and emitting every event the transport
// needs to stream a turn back to the client.
//
// # Core Components
//
// ## Service
//
// Service is the session/message CRUD surface the server handlers call:
//
//	service := session.NewServiceWithProcessor(
//		storage, providerReg, toolReg, bus,
//		"anthropic", "claude-sonnet-4-5",
//		config.MaxIterations, config.MaxTurnDuration, config.ContextTokenBudget,
//	)
//
//	sess, err := service.Create(ctx, ownerUserID, "", datasetFile)
//	err = service.ProcessMessage(ctx, sess.ID, "What's the average order size?", agent.FollowUp)
//
// ## Processor
//
// Processor drives the Agent Loop for one turn at a time per session:
//
//	err := processor.Process(ctx, sessionID, ag, engine, "How many rows have nulls?")
//
// A second call while a turn is active returns ErrTurnActive immediately —
// the turn is rejected, not queued, per the one-turn-per-session rule.
//
// # Turn Lifecycle
//
//  1. The trigger text is appended as a user message.
//  2. The system prompt is rebuilt from the dataset profile (system.go).
//  3. Conversation history is replayed, front-truncated to the configured
//     token budget (context.go).
//  4. The model is called; its stream is drained into text + tool calls
//     (stream.go).
//  5. Each tool call is dispatched against the closed 5-tool registry and
//     its result recorded as an assistant-role message (dispatch.go).
//  6. finalize ends the turn; the iteration cap or cancellation also end
//     it, but leave CleanlyEnded=false.
//  7. If the turn produced no visible event and was not aborted, a neutral
//     text message is synthesized before the done event, so such a turn is
//     never silent.
//
// # Storage Layout
//
//	session/{sessionID}          -> Session metadata + dataset profile
//	message/{sessionID}/{msgID}  -> Append-only message log
//
// # Error Handling
//
// LLM transport errors retry with jittered exponential backoff
// (cenkalti/backoff); tool-level failures (bad SQL, unknown chart type) are
// fed back to the model as ordinary tool-result messages instead of
// aborting the turn — only a turn-ending error (provider/model not found,
// context cancelled) stops the loop outright.
package session
