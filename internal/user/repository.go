// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wemanage-app/backend/internal/core"
)

const userColumns = `
	id, email, name, password_hash, provider, provider_id, role,
	avatar_url, reset_token_hash, reset_token_expires, created_at, updated_at`

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByProvider(
		ctx context.Context,
		provider, providerID string,
	) (*User, error)
	LinkProvider(ctx context.Context, user *User) error
	UpdateRole(ctx context.Context, id int64, role Role) error
	SetResetToken(
		ctx context.Context,
		id int64,
		tokenHash string,
		expires time.Time,
	) error
	ClearResetToken(ctx context.Context, id int64) error
	GetByResetTokenHash(
		ctx context.Context,
		tokenHash string,
	) (*User, error)
	UpdatePasswordClearReset(
		ctx context.Context,
		id int64,
		passwordHash string,
	) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]User, error)
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (
			email, name, password_hash, provider, provider_id, role, avatar_url
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
		RETURNING id, created_at, updated_at`

	err := r.db.GetContext(ctx, user, query,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.Provider,
		user.ProviderID,
		user.Role,
		user.AvatarURL,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByProvider(
	ctx context.Context,
	provider, providerID string,
) (*User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE provider = $1 AND provider_id = $2`

	var user User
	err := r.db.GetContext(ctx, &user, query, provider, providerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by provider: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by provider: %w", err)
	}

	return &user, nil
}

// LinkProvider attaches federated-identity fields to an existing local
// account, writing the (possibly backfilled) name and avatar with them.
func (r *repository) LinkProvider(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET provider = $2, provider_id = $3, name = $4, avatar_url = $5,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &user.UpdatedAt, query,
		user.ID,
		user.Provider,
		user.ProviderID,
		user.Name,
		user.AvatarURL,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("link provider: %w", core.ErrNotFound)
	}
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("link provider: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("link provider: %w", err)
	}

	return nil
}

func (r *repository) UpdateRole(
	ctx context.Context,
	id int64,
	role Role,
) error {
	query := `
		UPDATE users
		SET role = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, role)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update role: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) SetResetToken(
	ctx context.Context,
	id int64,
	tokenHash string,
	expires time.Time,
) error {
	query := `
		UPDATE users
		SET reset_token_hash = $2, reset_token_expires = $3, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, tokenHash, expires)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("set reset token: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ClearResetToken(ctx context.Context, id int64) error {
	query := `
		UPDATE users
		SET reset_token_hash = NULL, reset_token_expires = NULL,
		    updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("clear reset token: %w", err)
	}

	return nil
}

// GetByResetTokenHash matches the stored hash and the expiry window in
// one query so a stale token and a wrong token are indistinguishable.
func (r *repository) GetByResetTokenHash(
	ctx context.Context,
	tokenHash string,
) (*User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE reset_token_hash = $1 AND reset_token_expires > NOW()`

	var user User
	err := r.db.GetContext(ctx, &user, query, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by reset token: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by reset token: %w", err)
	}

	return &user, nil
}

// UpdatePasswordClearReset writes the new hash and wipes the reset
// token fields in a single statement; the token must not survive a
// successful reset.
func (r *repository) UpdatePasswordClearReset(
	ctx context.Context,
	id int64,
	passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, reset_token_hash = NULL,
		    reset_token_expires = NULL, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete user: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	limit, offset int,
) ([]User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		ORDER BY name ASC
		LIMIT $1 OFFSET $2`

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}

	return count, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
