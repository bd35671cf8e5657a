package auth

// Identity is the per-request authentication context. It has exactly
// two cases: anonymous (zero value) and authenticated. It is built
// once at the start of request processing and passed explicitly into
// every policy check; nothing ambient or global carries it.
//
// The zero value is the anonymous identity, so a missing or invalid
// token needs no special handling beyond not constructing an
// authenticated value.
type Identity struct {
	authenticated bool
	token         string
	userID        uint64
	roles         []string
}

// Anonymous returns the unauthenticated identity.
func Anonymous() Identity { return Identity{} }

// Authenticated builds an identity for a validated session token.
// The role slice is copied both here and in Roles(), so neither the
// caller nor a consumer can mutate an identity after construction.
func Authenticated(token string, userID uint64, roles []string) Identity {
	owned := make([]string, len(roles))
	copy(owned, roles)
	return Identity{
		authenticated: true,
		token:         token,
		userID:        userID,
		roles:         owned,
	}
}

// IsAuthenticated reports whether a validated token backs this identity.
func (id Identity) IsAuthenticated() bool { return id.authenticated }

// UserID returns the authenticated user id, or zero for anonymous.
func (id Identity) UserID() uint64 { return id.userID }

// Token returns the raw token value this identity was validated from.
func (id Identity) Token() string { return id.token }

// HasRole reports whether the identity is authenticated and carries
// the named role.
func (id Identity) HasRole(role string) bool {
	if !id.authenticated {
		return false
	}
	for _, r := range id.roles {
		if r == role {
			return true
		}
	}
	return false
}

// Roles returns a copy of the role set carried by the identity.
func (id Identity) Roles() []string {
	out := make([]string, len(id.roles))
	copy(out, id.roles)
	return out
}
