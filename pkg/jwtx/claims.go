package jwtx

import (
	"time"

	"github.com/aussiebroadwan/hireflow/pkg/idx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/lo"
)

// DefaultAccessTokenTTL is the lifetime of the token issued once an
// applicant's email is verified.
const DefaultAccessTokenTTL = 15 * time.Minute

// Claims are the access-token claims issued after verification.
type Claims struct {
	jwt.RegisteredClaims

	Email string `json:"email,omitempty"`

	// Role is "candidate" or "recruiter".
	Role string `json:"role,omitempty"`

	// AMR lists how the subject proved itself, e.g. ["pwd","otp"].
	AMR []string `json:"amr,omitempty"`
}

// AccessGrant describes the token to mint for a verified applicant.
type AccessGrant struct {
	Subject  string
	Email    string
	Role     string
	AMR      []string
	Issuer   string
	Audience []string

	// TTL falls back to DefaultAccessTokenTTL when zero.
	TTL time.Duration
}

// Claims stamps the grant at now. The jti is a ULID so tokens sort by
// issue time.
func (g AccessGrant) Claims(now time.Time) Claims {
	ttl := g.TTL
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.Issuer,
			Subject:   g.Subject,
			Audience:  jwt.ClaimStrings(g.Audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        idx.NewAt(now).String(),
		},
		Email: g.Email,
		Role:  g.Role,
		AMR:   g.AMR,
	}
}

// ValidateIssuer is a no-op when expected is empty.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected != "" && c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience passes when any expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) > 0 && !lo.Some([]string(c.Audience), expected) {
		return ErrAudience
	}
	return nil
}
