package domain

// SessionClaims is the identity embedded in a session token. The role is a
// hint captured at issuance and may be stale.
type SessionClaims struct {
	Subject  string
	Username string
	Role     string
}
