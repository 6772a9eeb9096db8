// Package config loads the runtime's configuration from the process
// environment.
//
// Unlike the coding-agent configuration this package started from — which
// merged JSON/JSONC files from several well-known locations — this runtime
// has exactly one configuration source: environment variables, optionally
// seeded from a local .env file via godotenv. There is no project directory
// to discover and no file to merge; every deployment sets the variables it
// needs and Load reads them once at startup.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Recognized Variables
//
//   - DATA_DIR - root directory for persisted sessions, messages, and
//     uploaded dataset files (default: $XDG_DATA_HOME/opencode or
//     ~/.local/share/opencode)
//   - LLM_API_KEY - credential for the configured LLM provider
//   - LLM_MODEL - "provider/model" identifier, e.g. "anthropic/claude-sonnet-4-5"
//   - MAX_UPLOAD_BYTES - upload size limit, loaded into Config.MaxUploadBytes;
//     nothing in this runtime checks uploads against it
//   - AGENT_MAX_ITERATIONS - tool-calling iteration cap per turn
//   - AGENT_MAX_TURN_DURATION_SECONDS - wall-clock cap per turn
//   - AGENT_MAX_RESULT_ROWS - loaded into Config.MaxResultRows; the query
//     tools apply their own fixed row caps and do not read it
//   - AGENT_CONTEXT_TOKEN_BUDGET - token budget for conversation replay
//   - SIGNING_SECRET - loaded into Config.SigningSecret; the wired
//     auth.StubVerifier does not use it
//   - TOKEN_LIFETIME_SECONDS - bearer credential lifetime
//
// Every numeric variable falls back to a documented default when unset or
// unparsable; Load never fails on a missing or malformed variable.
package config
