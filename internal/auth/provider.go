package auth

// PrincipalProvider resolves the current acting principal. Implementations
// are supplied by the host application (session manager, request context,
// fixed identity for tooling). Resolution must be cheap; the staging layer
// calls it once per operation.
type PrincipalProvider interface {
	// PrincipalID returns the stable identifier of the acting principal.
	// ok is false when no principal is authenticated.
	PrincipalID() (id string, ok bool)
}

// Static is a PrincipalProvider fixed to one identity. An empty ID reads as
// unauthenticated.
type Static struct {
	ID string
}

func (s Static) PrincipalID() (string, bool) {
	if s.ID == "" {
		return "", false
	}
	return s.ID, true
}

// Unauthenticated is a provider with no principal, for tests and default
// wiring before a session exists.
var Unauthenticated = Static{}
