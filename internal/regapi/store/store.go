package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/hireflow/internal/regapi/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Drivers implement it and expose
// sub-repositories so a Tx can hand out the same repos bound to a transaction.
type Store interface {
	Users() Users
	Challenges() Challenges

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn inside a transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks up by the lowercased email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user. Returns ErrAlreadyExists on a duplicate email.
	CreateUser(ctx context.Context, u domain.User) error

	// ReplacePendingUser overwrites the profile of an unverified user,
	// keeping its id. Returns ErrNotFound when no unverified row matches.
	ReplacePendingUser(ctx context.Context, u domain.User) error

	// MarkVerified stamps verified_at and bumps updated_at.
	MarkVerified(ctx context.Context, userID string, at time.Time) error

	// DeleteStalePending removes unverified users without a challenge
	// created before cutoff.
	DeleteStalePending(ctx context.Context, cutoff time.Time) (int64, error)
}

type Challenges interface {
	GetChallengeByEmail(ctx context.Context, email string) (domain.Challenge, error)

	// UpsertChallenge creates or replaces the single challenge of a user.
	UpsertChallenge(ctx context.Context, c domain.Challenge) error

	// IncrementAttempts bumps the wrong-attempt counter and returns the new value.
	IncrementAttempts(ctx context.Context, id string) (int, error)

	DeleteChallenge(ctx context.Context, id string) error

	// DeleteExpiredChallenges removes challenges that expired before cutoff.
	DeleteExpiredChallenges(ctx context.Context, cutoff time.Time) (int64, error)
}
