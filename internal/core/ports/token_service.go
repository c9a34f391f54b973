package ports

import "time"

// TokenService issues and verifies signed, time-bounded identity tokens.
type TokenService interface {
	Issue(identity string) (string, error)
	IssueUntil(identity string, expiresAt time.Time) (string, error)
	VerifyAndExtractIdentity(token string) (string, error)
	IsValidFor(token, identity, credentialVersion string) bool
	ExpirationOf(token string) (time.Time, error)
}

// PasswordHasher is an opaque one-way hash with verification.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Matches(hash, password string) bool
}
