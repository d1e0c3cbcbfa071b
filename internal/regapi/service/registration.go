package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/hireflow/internal/regapi/cooldown"
	"github.com/aussiebroadwan/hireflow/internal/regapi/domain"
	"github.com/aussiebroadwan/hireflow/internal/regapi/metrics"
	"github.com/aussiebroadwan/hireflow/internal/regapi/store"
	"github.com/aussiebroadwan/hireflow/pkg/clock"
	"github.com/aussiebroadwan/hireflow/pkg/cryptox"
	"github.com/aussiebroadwan/hireflow/pkg/idx"
	"github.com/aussiebroadwan/hireflow/pkg/jwtx"
	"github.com/aussiebroadwan/hireflow/pkg/regsdk"
	"github.com/aussiebroadwan/hireflow/pkg/slogx"
	"github.com/aussiebroadwan/hireflow/pkg/validatex"
)

const (
	DefaultCodeTTL     = 10 * time.Minute
	DefaultCooldown    = 60 * time.Second
	DefaultMaxAttempts = 5

	MessageRegisteredOTP    = "Registration successful. Please verify the OTP sent to your email."
	MessageRegisteredSignIn = "Registration successful. You can now sign in."
	MessageVerified         = "Email verified successfully."
	MessageResent           = "A new OTP has been sent to your email."
)

// RegistrationService owns the sign-up flow: registering an applicant,
// issuing and re-issuing the emailed code, and verifying it.
type RegistrationService struct {
	Store   store.Store
	Gate    cooldown.Gate
	Sender  CodeSender
	Signer  jwtx.Signer
	Hasher  cryptox.PasswordHasher
	Codes   Codes
	Clock   clock.Clock
	Metrics *metrics.Metrics

	Issuer    string
	Audience  []string
	AccessTTL time.Duration

	CodeTTL     time.Duration
	Cooldown    time.Duration
	MaxAttempts int

	// SkipOTP creates accounts already verified; Register then tells the
	// client to sign in instead of starting a challenge.
	SkipOTP bool
}

func (s *RegistrationService) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s *RegistrationService) codeTTL() time.Duration {
	if s.CodeTTL <= 0 {
		return DefaultCodeTTL
	}
	return s.CodeTTL
}

func (s *RegistrationService) cooldown() time.Duration {
	if s.Cooldown <= 0 {
		return DefaultCooldown
	}
	return s.Cooldown
}

func (s *RegistrationService) maxAttempts() int {
	if s.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return s.MaxAttempts
}

// Register validates the draft, stores the applicant as pending and sends
// the first code. Re-registering a still pending email replaces its details
// and restarts the challenge, subject to the resend cooldown.
func (s *RegistrationService) Register(
	ctx context.Context,
	req regsdk.RegisterRequest,
) (*regsdk.RegisterResponse, error) {
	log := slogx.FromContext(ctx)

	req = req.Normalized()
	if err := validatex.Default().Struct(req); err != nil {
		s.Metrics.Registration(metrics.OutcomeInvalid)
		return nil, err
	}

	existing, err := s.Store.Users().GetUserByEmail(ctx, req.Email)
	switch {
	case err == nil && existing.Verified():
		s.Metrics.Registration(metrics.OutcomeConflict)
		return nil, ErrEmailTaken
	case err != nil && !errors.Is(err, store.ErrNotFound):
		log.ErrorContext(ctx, "failed to look up user", slog.Any("error", err))
		return nil, err
	}
	pending := err == nil

	hash, err := s.Hasher.Hash(req.Password)
	if err != nil {
		log.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		return nil, err
	}

	now := s.now()
	user := domain.User{
		ID:                idx.NewAt(now).String(),
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		Mobile:            req.Mobile,
		Experience:        req.Experience,
		JobTitle:          req.JobTitle,
		PreferredLocation: req.PreferredLocation,
		JobType:           req.JobType,
		Role:              req.Role,
		PasswordHash:      hash,
		CreatedAt:         now,
	}
	if pending {
		user.ID = existing.ID
	}

	if s.SkipOTP {
		return s.registerVerified(ctx, user, pending)
	}

	ok, retryAfter, err := s.Gate.Acquire(ctx, user.Email, s.cooldown())
	if err != nil {
		log.ErrorContext(ctx, "cooldown gate unavailable", slog.Any("error", err))
		return nil, err
	}
	if !ok {
		s.Metrics.Registration(metrics.OutcomeCooldown)
		return nil, &CooldownError{RetryAfter: retryAfter}
	}

	secret, err := s.Codes.NewSecret(user.Email)
	if err != nil {
		s.releaseGate(ctx, user.Email)
		return nil, fmt.Errorf("generate otp secret: %w", err)
	}

	challenge := domain.Challenge{
		ID:        idx.NewAt(now).String(),
		UserID:    user.ID,
		Email:     user.Email,
		Secret:    secret,
		ExpiresAt: now.Add(s.codeTTL()),
		SentAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if pending {
			if err := tx.Users().ReplacePendingUser(ctx, user); err != nil {
				return err
			}
		} else if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		return tx.Challenges().UpsertChallenge(ctx, challenge)
	})
	if err != nil {
		s.releaseGate(ctx, user.Email)
		if errors.Is(err, store.ErrAlreadyExists) {
			// lost a race with a concurrent registration of the same email
			s.Metrics.Registration(metrics.OutcomeConflict)
			return nil, ErrEmailTaken
		}
		log.ErrorContext(ctx, "failed to store registration",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
		s.Metrics.Registration(metrics.OutcomeError)
		return nil, err
	}

	if err := s.sendCode(ctx, challenge); err != nil {
		s.Metrics.Registration(metrics.OutcomeError)
		return nil, err
	}

	s.Metrics.Registration(metrics.OutcomeSuccess)
	log.InfoContext(ctx, "applicant registered",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role),
		slog.Bool("re_registration", pending),
		slog.Time("expires_at", challenge.ExpiresAt),
	)

	required := true
	expiresAt := challenge.ExpiresAt
	return &regsdk.RegisterResponse{
		Message:     MessageRegisteredOTP,
		Email:       user.Email,
		OTPRequired: &required,
		ExpiresAt:   &expiresAt,
	}, nil
}

func (s *RegistrationService) registerVerified(
	ctx context.Context,
	user domain.User,
	pending bool,
) (*regsdk.RegisterResponse, error) {
	now := user.CreatedAt
	user.VerifiedAt = &now

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if pending {
			if err := tx.Users().ReplacePendingUser(ctx, user); err != nil {
				return err
			}
			return tx.Users().MarkVerified(ctx, user.ID, now)
		}
		return tx.Users().CreateUser(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			s.Metrics.Registration(metrics.OutcomeConflict)
			return nil, ErrEmailTaken
		}
		s.Metrics.Registration(metrics.OutcomeError)
		return nil, err
	}

	s.Metrics.Registration(metrics.OutcomeSuccess)
	slogx.FromContext(ctx).InfoContext(ctx, "applicant registered without verification",
		slog.String("user_id", user.ID),
	)

	required := false
	return &regsdk.RegisterResponse{
		Message:     MessageRegisteredSignIn,
		Email:       user.Email,
		OTPRequired: &required,
	}, nil
}

// sendCode derives the code for the challenge's current counter and hands
// it to the sender. A failed send frees the cooldown so the applicant can
// retry straight away.
func (s *RegistrationService) sendCode(ctx context.Context, c domain.Challenge) error {
	code, err := s.Codes.Code(c.Secret, c.Counter)
	if err == nil {
		err = s.Sender.SendCode(ctx, c.Email, code, c.ExpiresAt)
	}
	if err != nil {
		s.releaseGate(ctx, c.Email)
		slogx.FromContext(ctx).ErrorContext(ctx, "failed to send verification code",
			slog.String("challenge_id", c.ID),
			slog.Any("error", err),
		)
		return fmt.Errorf("send verification code: %w", err)
	}
	s.Metrics.CodeSent()
	return nil
}

func (s *RegistrationService) releaseGate(ctx context.Context, email string) {
	if err := s.Gate.Release(ctx, email); err != nil {
		slogx.FromContext(ctx).WarnContext(ctx, "failed to release cooldown", slog.Any("error", err))
	}
}
