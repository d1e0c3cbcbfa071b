package jwtx

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrUnknownKID = errors.New("jwtx: unknown kid")
	ErrIssuer     = errors.New("jwtx: issuer mismatch")
	ErrAudience   = errors.New("jwtx: audience mismatch")
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// Ed25519Verifier validates tokens produced by a known set of Ed25519 signers.
type Ed25519Verifier struct {
	keys   map[string]ed25519.PublicKey
	issuer string
	aud    []string
	leeway time.Duration
}

// NewEd25519Verifier trusts the public halves of the given signers.
func NewEd25519Verifier(issuer string, aud []string, signers ...Signer) *Ed25519Verifier {
	v := &Ed25519Verifier{
		keys:   make(map[string]ed25519.PublicKey, len(signers)),
		issuer: issuer,
		aud:    aud,
		leeway: 30 * time.Second,
	}
	for _, s := range signers {
		if pub, ok := s.Public().(ed25519.PublicKey); ok {
			v.keys[s.KID()] = pub
		}
	}
	return v
}

func (v *Ed25519Verifier) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		pub, ok := v.keys[kid]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownKID, kid)
		}
		return pub, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("jwtx: parse or verify: %w", err)
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateAudience(v.aud); err != nil {
		return Claims{}, err
	}
	return claims, nil
}
