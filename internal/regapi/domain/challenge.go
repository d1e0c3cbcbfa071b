package domain

import "time"

// Challenge is the pending email verification for one unverified user. There
// is at most one per user; a resend replaces the code in place.
type Challenge struct {
	ID        string
	UserID    string
	Email     string
	Secret    string // HOTP secret, base32
	Counter   uint64 // HOTP counter, bumped on every resend
	Attempts  int    // wrong codes submitted against the current counter
	ExpiresAt time.Time
	SentAt    time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the code is no longer accepted at now.
func (c Challenge) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Exhausted reports whether the attempt budget is spent.
func (c Challenge) Exhausted(maxAttempts int) bool {
	return maxAttempts > 0 && c.Attempts >= maxAttempts
}
