package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/hireflow/internal/regapi/domain"
	"github.com/aussiebroadwan/hireflow/internal/regapi/store"
)

const userColumns = `id, first_name, last_name, email, mobile, experience, job_title,
	preferred_location, job_type, role, password_hash, verified_at, created_at, updated_at`

type usersRepo struct {
	db dbtx
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u          domain.User
		verifiedAt sql.NullTime
	)
	err := row.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.Mobile,
		&u.Experience,
		&u.JobTitle,
		&u.PreferredLocation,
		&u.JobType,
		&u.Role,
		&u.PasswordHash,
		&verifiedAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.VerifiedAt = mapNullTimePtr(verifiedAt)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		u.FirstName,
		u.LastName,
		u.Email,
		u.Mobile,
		u.Experience,
		u.JobTitle,
		u.PreferredLocation,
		u.JobType,
		u.Role,
		u.PasswordHash,
		mapOptionalTime(u.VerifiedAt),
		u.CreatedAt.UTC(),
		u.CreatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *usersRepo) ReplacePendingUser(ctx context.Context, u domain.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			first_name = ?, last_name = ?, mobile = ?, experience = ?, job_title = ?,
			preferred_location = ?, job_type = ?, role = ?, password_hash = ?, updated_at = ?
		WHERE id = ? AND verified_at IS NULL`,
		u.FirstName,
		u.LastName,
		u.Mobile,
		u.Experience,
		u.JobTitle,
		u.PreferredLocation,
		u.JobType,
		u.Role,
		u.PasswordHash,
		time.Now().UTC(),
		u.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) MarkVerified(ctx context.Context, userID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET verified_at = ?, updated_at = ? WHERE id = ?`,
		at.UTC(), at.UTC(), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) DeleteStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM users
		WHERE verified_at IS NULL
		  AND created_at < ?
		  AND id NOT IN (SELECT user_id FROM otp_challenges)`,
		cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
