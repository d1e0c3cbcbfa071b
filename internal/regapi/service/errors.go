package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmailTaken            = errors.New("an account with this email already exists")
	ErrNoPendingRegistration = errors.New("no pending registration for this email")
	ErrAlreadyVerified       = errors.New("email already verified")
	ErrChallengeNotFound     = errors.New("invalid or expired code")
	ErrCodeExpired           = errors.New("code has expired")
	ErrTooManyAttempts       = errors.New("too many incorrect attempts")
)

// InvalidCodeError is a wrong code that still leaves attempts on the challenge.
type InvalidCodeError struct {
	Remaining int
}

func (e *InvalidCodeError) Error() string {
	if e.Remaining == 1 {
		return "invalid code, 1 attempt remaining"
	}
	return fmt.Sprintf("invalid code, %d attempts remaining", e.Remaining)
}

// CooldownError rejects a send inside the resend window.
type CooldownError struct {
	RetryAfter time.Duration
}

// Seconds rounds the wait up to whole seconds.
func (e *CooldownError) Seconds() int {
	s := int((e.RetryAfter + time.Second - 1) / time.Second)
	return max(s, 1)
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("please wait %d seconds before requesting another code", e.Seconds())
}
