/*
Package event provides a type-safe, pub/sub event system that carries Agent
Loop output out to a session's transport.

# Architecture

The package is built on top of watermill's gochannel for infrastructure while
maintaining direct-call semantics to preserve type information. It provides
both synchronous and asynchronous event publishing patterns.

# Event Types

	status         - advisory phase hint, suppressible, coalesced (>=2.5s apart)
	text           - markdown answer body
	table          - title + headers + rows
	plot           - title + opaque declarative chart spec
	query_result   - one per sql_query tool call, success or failure
	session_update - session title set by finalize
	error          - terminates a turn's visible output alongside done
	done           - exactly one per turn, regardless of outcome

# Basic Usage

Publishing events:

	// Asynchronous publishing (non-blocking)
	event.Publish(event.Event{
		Type: event.Text,
		Data: event.TextData{Text: "The dataset has 1,000 rows."},
	})

	// Synchronous publishing (blocking until all subscribers complete)
	event.PublishSync(event.Event{
		Type: event.Done,
		Data: event.DoneData{CleanlyEnded: true},
	})

Subscribing to specific events:

	unsubscribe := event.Subscribe(event.Text, func(e event.Event) {
		data := e.Data.(event.TextData)
		log.Info().Str("text", data.Text).Msg("text event")
	})
	defer unsubscribe()

Subscribing to all events (the transport's usual mode — it forwards
everything for a session to its socket):

	unsubscribe := event.SubscribeAll(func(e event.Event) {
		log.Debug().Str("type", string(e.Type)).Msg("event received")
	})
	defer unsubscribe()

# Subscriber Safety Guidelines

When using PublishSync, subscribers are called synchronously in the
publisher's goroutine. To avoid blocking or deadlocks, subscribers MUST:

  - Complete quickly (avoid long-running operations)
  - Use non-blocking channel sends (select with default case)
  - Never call Publish/PublishSync from within a subscriber (no re-entrant publishing)
  - Never acquire locks that the publisher might hold

# Custom Event Bus

A Bus can also be created directly. The server creates one bus that every
session's turns publish to; each Event carries its SessionID, and a
subscriber that serves one session filters on it:

	bus := event.NewBus()
	defer bus.Close()

	unsubscribe := bus.Subscribe(event.Done, handler)
	bus.PublishSync(event.Event{Type: event.Done, Data: data})

# Thread Safety

The event bus is thread-safe and can be used concurrently from multiple
goroutines. Both publishing and subscribing operations are protected by
internal synchronization.

# Backpressure

Status events are advisory: a transport under pressure may drop them. Every
other event type must be delivered; a slow transport blocks the loop
goroutine for that session rather than the whole process.
*/
package event
