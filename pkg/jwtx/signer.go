package jwtx

import (
	"crypto"
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer issues compact JWS tokens under a key id.
type Signer interface {
	Alg() string
	KID() string
	Sign(Claims) (string, error)
	Public() crypto.PublicKey
}

var ErrKeyFormat = errors.New("jwtx: Ed25519 key must be a PKCS8 PEM block")

// Ed25519Signer signs with EdDSA. It is the only algorithm the registration
// API issues.
type Ed25519Signer struct {
	kid string
	key ed25519.PrivateKey
}

// NewEd25519Signer parses a PKCS8 "PRIVATE KEY" PEM block.
func NewEd25519Signer(kid string, pemKey []byte) (*Ed25519Signer, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil || block.Type != "PRIVATE KEY" {
		return nil, ErrKeyFormat
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse signing key: %w", err)
	}
	key, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrKeyFormat, parsed)
	}
	return NewEd25519SignerFromKey(kid, key), nil
}

// NewEd25519SignerFromKey wraps an in-memory key.
func NewEd25519SignerFromKey(kid string, key ed25519.PrivateKey) *Ed25519Signer {
	return &Ed25519Signer{kid: kid, key: key}
}

func (s *Ed25519Signer) Alg() string { return jwt.SigningMethodEdDSA.Alg() }

func (s *Ed25519Signer) KID() string { return s.kid }

func (s *Ed25519Signer) Public() crypto.PublicKey { return s.key.Public() }

func (s *Ed25519Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = s.kid
	signed, err := t.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign %s token: %w", claims.Subject, err)
	}
	return signed, nil
}
