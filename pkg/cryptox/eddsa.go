package cryptox

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// GenerateEd25519Key returns a fresh Ed25519 private key as a PKCS8 PEM block.
func GenerateEd25519Key() ([]byte, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("cryptox: generate Ed25519 key: %w", err)
	}

	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("cryptox: marshal PKCS8 key: %w", err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// LoadOrGenerateEd25519Key reads a PEM key from path. An empty path or a
// missing file produces an ephemeral key; nothing is written to disk.
func LoadOrGenerateEd25519Key(path string) (pemKey []byte, ephemeral bool, err error) {
	if path != "" {
		pemKey, err = os.ReadFile(path) // #nosec G304 -- operator supplied path
		if err == nil {
			return pemKey, false, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, false, fmt.Errorf("cryptox: read signing key: %w", err)
		}
	}

	pemKey, err = GenerateEd25519Key()
	return pemKey, true, err
}
