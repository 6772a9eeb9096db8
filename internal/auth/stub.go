package auth

import (
	"context"
	"strings"
)

// StubVerifier is a test double for Verifier: it accepts any credential of
// the form "user:<id>" and rejects everything else. It exists only so the
// REST/WS layer and its tests have something concrete to run against;
// production deployments wire in the real collaborator implementation.
type StubVerifier struct{}

// Verify implements Verifier.
func (StubVerifier) Verify(_ context.Context, credential string) (Identity, error) {
	id, ok := strings.CutPrefix(credential, "user:")
	if !ok || id == "" {
		return Identity{}, &ErrInvalidCredential{Reason: "expected \"user:<id>\" bearer token"}
	}
	return Identity{UserID: id}, nil
}
