// Package server provides the transport for the agent runtime: a small
// chi-based REST surface for session lifecycle, and a WebSocket connection
// per session that drives its turns and streams their events.
//
// # Endpoints
//
//   - GET    /sessions           list sessions owned by the caller
//   - GET    /sessions/{id}      session detail: dataset profile, preview, messages
//   - DELETE /sessions/{id}      cascade-delete a session, its file, and its messages
//   - GET    /sessions/{id}/ws   bidirectional turn transport
//
// Uploading a dataset and issuing credentials are both external
// collaborator concerns (see internal/upload, internal/auth); this package
// only consumes their results, through auth.Verifier and session.Service.
//
// # Authentication
//
// Every request is resolved by authenticate middleware, which turns a
// bearer credential (the Authorization header, or a "token" query
// parameter for browser WS clients that can't set arbitrary handshake
// headers) into an auth.Identity via the configured auth.Verifier. REST
// handlers reject a request with no resolved identity; the WS handler
// upgrades first and then closes with a policy-violation code, so an
// invalid handshake is reported the same way a protocol-level handshake
// error would be.
//
// # WebSocket transport
//
// Each session has at most one live connection at a time. serveSessionWS
// registers the new connection as the session's sink before subscribing to
// the event bus, and a later reconnect supersedes (closes) whatever
// connection held the sink previously — no event replay, matching the
// runtime's one-active-turn-per-session model. The write pump enforces the
// resource model's backpressure rule: a 256-deep per-connection buffer,
// where a full buffer drops only status events and blocks on every other
// kind.
//
// Client frames are {"type": "message"|"auto_analyze"|"stop", "text"?};
// an unrecognized type gets back a local error event rather than being
// silently ignored. Server frames are the event bus's own Event shape
// ({"type", "data"}), so dispatchToolCall and the agent loop need no
// transport-specific serialization step.
package server
