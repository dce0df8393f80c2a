package models

import "time"

// Token is a pending age confirmation for one identity. Value is opaque to
// clients and used once.
type Token struct {
	Value     string    `json:"value"`
	Identity  string    `json:"identity"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether now is past the token's expiry. A token is still
// valid at exactly ExpiresAt.
func (t *Token) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Status answers a verification request. Token fields are set only while
// verification is pending.
type Status struct {
	Identity  string        `json:"identity"`
	Verified  bool          `json:"verified"`
	Token     string        `json:"token,omitempty"`
	ExpiresAt *time.Time    `json:"expires_at,omitempty"`
	ExpiresIn time.Duration `json:"-"`
	// Reused is true when an existing live token was returned.
	Reused bool `json:"reused,omitempty"`
}

// Confirmation is the result of a successful token confirmation.
type Confirmation struct {
	Identity   string    `json:"identity"`
	VerifiedAt time.Time `json:"verified_at"`
}
