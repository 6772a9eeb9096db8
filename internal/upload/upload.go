// Package upload defines the narrow boundary this runtime depends on for
// accepting an uploaded dataset file. Receiving the raw bytes, validating
// size/format, and storing the file on disk are external collaborator
// concerns (SPEC_FULL §1 Non-goals, §6); this runtime only needs the
// resulting tuple — session id, file path, filename, and profile — handed
// back once the collaborator's upload succeeds.
package upload

import (
	"context"

	"github.com/opencode-ai/opencode/pkg/types"
)

// Result is the tuple an upload collaborator hands to the core on success.
type Result struct {
	SessionID string
	FilePath  string
	Filename  string
	Profile   types.Profile
}

// Registrar accepts a completed upload and returns the session it is now
// bound to, creating the session if SessionID is new. The production
// implementation is session.Service; this package only declares the
// contract the collaborator calls against.
type Registrar interface {
	RegisterUpload(ctx context.Context, ownerUserID string, result Result) (*types.Session, error)
}
