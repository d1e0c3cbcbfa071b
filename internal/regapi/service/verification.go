package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/hireflow/internal/regapi/domain"
	"github.com/aussiebroadwan/hireflow/internal/regapi/metrics"
	"github.com/aussiebroadwan/hireflow/internal/regapi/store"
	"github.com/aussiebroadwan/hireflow/pkg/idx"
	"github.com/aussiebroadwan/hireflow/pkg/jwtx"
	"github.com/aussiebroadwan/hireflow/pkg/regsdk"
	"github.com/aussiebroadwan/hireflow/pkg/slogx"
	"github.com/aussiebroadwan/hireflow/pkg/validatex"
)

// VerifyOTP checks a submitted code. A wrong code spends one attempt; the
// last attempt burns the challenge and the applicant must request a resend.
// On success the user is marked verified and receives an access token.
func (s *RegistrationService) VerifyOTP(
	ctx context.Context,
	req regsdk.VerifyOTPRequest,
) (*regsdk.VerifyOTPResponse, error) {
	log := slogx.FromContext(ctx)

	req.Email = regsdk.NormalizeEmail(req.Email)
	if err := validatex.Default().Struct(req); err != nil {
		s.Metrics.Verification(metrics.OutcomeInvalid)
		return nil, err
	}

	user, err := s.pendingUser(ctx, req.Email)
	if errors.Is(err, ErrNoPendingRegistration) {
		// do not reveal whether the address is registered
		s.Metrics.Verification(metrics.OutcomeInvalid)
		return nil, ErrChallengeNotFound
	}
	if err != nil {
		return nil, err
	}

	challenge, err := s.Store.Challenges().GetChallengeByEmail(ctx, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		s.Metrics.Verification(metrics.OutcomeInvalid)
		return nil, ErrChallengeNotFound
	}
	if err != nil {
		log.ErrorContext(ctx, "failed to load challenge", slog.Any("error", err))
		return nil, err
	}

	now := s.now()
	switch {
	case challenge.Exhausted(s.maxAttempts()):
		s.Metrics.Verification(metrics.OutcomeBurned)
		return nil, ErrTooManyAttempts
	case challenge.Expired(now):
		s.Metrics.Verification(metrics.OutcomeExpired)
		return nil, ErrCodeExpired
	}

	if !s.Codes.Valid(req.OTP, challenge.Secret, challenge.Counter) {
		attempts, err := s.Store.Challenges().IncrementAttempts(ctx, challenge.ID)
		if err != nil {
			log.ErrorContext(ctx, "failed to record attempt", slog.Any("error", err))
			return nil, err
		}

		remaining := s.maxAttempts() - attempts
		log.WarnContext(ctx, "incorrect verification code",
			slog.String("challenge_id", challenge.ID),
			slog.Int("remaining", remaining),
		)
		if remaining <= 0 {
			s.Metrics.Verification(metrics.OutcomeBurned)
			return nil, ErrTooManyAttempts
		}
		s.Metrics.Verification(metrics.OutcomeInvalid)
		return nil, &InvalidCodeError{Remaining: remaining}
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().MarkVerified(ctx, user.ID, now); err != nil {
			return err
		}
		return tx.Challenges().DeleteChallenge(ctx, challenge.ID)
	})
	if err != nil {
		log.ErrorContext(ctx, "failed to mark user verified",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
		s.Metrics.Verification(metrics.OutcomeError)
		return nil, err
	}

	ttl := s.AccessTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultAccessTokenTTL
	}
	claims := jwtx.AccessGrant{
		Subject:  user.ID,
		Email:    user.Email,
		Role:     user.Role,
		AMR:      []string{"pwd", "otp"},
		Issuer:   s.Issuer,
		Audience: s.Audience,
		TTL:      ttl,
	}.Claims(now)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		log.ErrorContext(ctx, "failed to sign access token", slog.Any("error", err))
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	s.Metrics.Verification(metrics.OutcomeSuccess)
	log.InfoContext(ctx, "email verified", slog.String("user_id", user.ID))

	return &regsdk.VerifyOTPResponse{
		Message:     MessageVerified,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(ttl.Seconds()),
	}, nil
}

// ResendOTP issues a fresh code for a pending registration. The previous
// code stops working and the attempt budget resets.
func (s *RegistrationService) ResendOTP(
	ctx context.Context,
	req regsdk.ResendOTPRequest,
) (*regsdk.ResendOTPResponse, error) {
	log := slogx.FromContext(ctx)

	req.Email = regsdk.NormalizeEmail(req.Email)
	if err := validatex.Default().Struct(req); err != nil {
		s.Metrics.Resend(metrics.OutcomeInvalid)
		return nil, err
	}

	user, err := s.pendingUser(ctx, req.Email)
	if err != nil {
		s.Metrics.Resend(metrics.OutcomeInvalid)
		return nil, err
	}

	ok, retryAfter, err := s.Gate.Acquire(ctx, user.Email, s.cooldown())
	if err != nil {
		log.ErrorContext(ctx, "cooldown gate unavailable", slog.Any("error", err))
		return nil, err
	}
	if !ok {
		s.Metrics.Resend(metrics.OutcomeCooldown)
		return nil, &CooldownError{RetryAfter: retryAfter}
	}

	now := s.now()
	challenge, err := s.Store.Challenges().GetChallengeByEmail(ctx, user.Email)
	switch {
	case err == nil:
		challenge.Counter++
		challenge.Attempts = 0
	case errors.Is(err, store.ErrNotFound):
		// housekeeping already removed the lapsed challenge; start over
		secret, serr := s.Codes.NewSecret(user.Email)
		if serr != nil {
			s.releaseGate(ctx, user.Email)
			return nil, fmt.Errorf("generate otp secret: %w", serr)
		}
		challenge = domain.Challenge{
			ID:     idx.NewAt(now).String(),
			UserID: user.ID,
			Email:  user.Email,
			Secret: secret,
		}
	default:
		s.releaseGate(ctx, user.Email)
		log.ErrorContext(ctx, "failed to load challenge", slog.Any("error", err))
		return nil, err
	}
	challenge.ExpiresAt = now.Add(s.codeTTL())
	challenge.SentAt = now

	if err := s.Store.Challenges().UpsertChallenge(ctx, challenge); err != nil {
		s.releaseGate(ctx, user.Email)
		log.ErrorContext(ctx, "failed to store challenge", slog.Any("error", err))
		s.Metrics.Resend(metrics.OutcomeError)
		return nil, err
	}

	if err := s.sendCode(ctx, challenge); err != nil {
		s.Metrics.Resend(metrics.OutcomeError)
		return nil, err
	}

	s.Metrics.Resend(metrics.OutcomeSuccess)
	log.InfoContext(ctx, "verification code resent",
		slog.String("challenge_id", challenge.ID),
		slog.Uint64("counter", challenge.Counter),
	)

	return &regsdk.ResendOTPResponse{
		Message:   MessageResent,
		ExpiresAt: challenge.ExpiresAt,
	}, nil
}

func (s *RegistrationService) pendingUser(ctx context.Context, email string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.User{}, ErrNoPendingRegistration
	case err != nil:
		slogx.FromContext(ctx).ErrorContext(ctx, "failed to look up user", slog.Any("error", err))
		return domain.User{}, err
	case user.Verified():
		return domain.User{}, ErrAlreadyVerified
	}
	return user, nil
}
