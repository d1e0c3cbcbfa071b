package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/hireflow/internal/regapi/domain"
)

type challengesRepo struct {
	db dbtx
}

func (r *challengesRepo) GetChallengeByEmail(ctx context.Context, email string) (domain.Challenge, error) {
	var (
		c       domain.Challenge
		counter int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, email, secret, counter, attempts, expires_at, sent_at, created_at, updated_at
		FROM otp_challenges WHERE email = ?`, email,
	).Scan(
		&c.ID,
		&c.UserID,
		&c.Email,
		&c.Secret,
		&counter,
		&c.Attempts,
		&c.ExpiresAt,
		&c.SentAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return domain.Challenge{}, mapNotFound(err)
	}
	c.Counter = uint64(counter) // #nosec G115 -- stored from a uint64
	return c, nil
}

func (r *challengesRepo) UpsertChallenge(ctx context.Context, c domain.Challenge) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO otp_challenges
			(id, user_id, email, secret, counter, attempts, expires_at, sent_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			email      = excluded.email,
			secret     = excluded.secret,
			counter    = excluded.counter,
			attempts   = excluded.attempts,
			expires_at = excluded.expires_at,
			sent_at    = excluded.sent_at,
			updated_at = excluded.updated_at`,
		c.ID,
		c.UserID,
		c.Email,
		c.Secret,
		int64(c.Counter), // #nosec G115 -- resend counts stay tiny
		c.Attempts,
		c.ExpiresAt.UTC(),
		c.SentAt.UTC(),
		now,
		now,
	)
	return mapConstraint(err)
}

func (r *challengesRepo) IncrementAttempts(ctx context.Context, id string) (int, error) {
	var attempts int
	err := r.db.QueryRowContext(ctx, `
		UPDATE otp_challenges SET attempts = attempts + 1, updated_at = ?
		WHERE id = ?
		RETURNING attempts`,
		time.Now().UTC(), id,
	).Scan(&attempts)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return attempts, nil
}

func (r *challengesRepo) DeleteChallenge(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM otp_challenges WHERE id = ?`, id)
	return err
}

func (r *challengesRepo) DeleteExpiredChallenges(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM otp_challenges WHERE expires_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
