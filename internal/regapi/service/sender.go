package service

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// CodeSender delivers a verification code to the applicant.
type CodeSender interface {
	SendCode(ctx context.Context, email, code string, expiresAt time.Time) error
}

// LogSender writes issued codes to the log. Reveal includes the code itself
// and must stay off outside development.
type LogSender struct {
	Logger *slog.Logger
	Reveal bool
}

func (s LogSender) SendCode(ctx context.Context, email, code string, expiresAt time.Time) error {
	attrs := []any{
		slog.String("email", email),
		slog.Time("expires_at", expiresAt),
	}
	if s.Reveal {
		attrs = append(attrs, slog.String("code", code))
	}
	s.Logger.InfoContext(ctx, "verification code issued", attrs...)
	return nil
}

// FanOut sends through every sender and joins their errors.
type FanOut []CodeSender

func (f FanOut) SendCode(ctx context.Context, email, code string, expiresAt time.Time) error {
	var errs []error
	for _, s := range f {
		if err := s.SendCode(ctx, email, code, expiresAt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
