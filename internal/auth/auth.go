// Package auth defines the narrow boundary this runtime depends on for
// authenticating REST/WS callers. Issuing credentials, registering users,
// and storing passwords are external collaborator concerns (see SPEC_FULL
// §1 Non-goals); this runtime only needs to turn a bearer credential into
// an owning user identity.
package auth

import "context"

// Identity is the caller resolved from a bearer credential.
type Identity struct {
	UserID string
}

// Verifier turns a bearer credential into an Identity. The production
// implementation is supplied by the collaborator service; this package only
// declares the contract the HTTP/WS layer calls against.
type Verifier interface {
	Verify(ctx context.Context, credential string) (Identity, error)
}

// ErrInvalidCredential is returned by a Verifier when the credential is
// missing, malformed, or rejected.
type ErrInvalidCredential struct {
	Reason string
}

func (e *ErrInvalidCredential) Error() string {
	if e.Reason == "" {
		return "invalid credential"
	}
	return "invalid credential: " + e.Reason
}
