package service

import (
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

// CodeDigits is the length of an emailed verification code.
const CodeDigits = otp.Digits(4)

var codeOpts = hotp.ValidateOpts{
	Digits:    CodeDigits,
	Algorithm: otp.AlgorithmSHA1,
}

// Codes derives verification codes as HOTP over a per-challenge secret. The
// counter advances on every resend, so a resent code invalidates the last.
type Codes struct {
	Issuer string
}

// NewSecret returns a fresh base32 secret bound to email.
func (c Codes) NewSecret(email string) (string, error) {
	key, err := hotp.Generate(hotp.GenerateOpts{
		Issuer:      c.Issuer,
		AccountName: email,
		SecretSize:  20,
		Digits:      CodeDigits,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", err
	}
	return key.Secret(), nil
}

func (c Codes) Code(secret string, counter uint64) (string, error) {
	return hotp.GenerateCodeCustom(secret, counter, codeOpts)
}

func (c Codes) Valid(code, secret string, counter uint64) bool {
	ok, err := hotp.ValidateCustom(code, counter, secret, codeOpts)
	return ok && err == nil
}
