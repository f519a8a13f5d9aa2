// AngelaMos | 2026
// repository.go

package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/wemanage-app/backend/internal/core"
)

const projectColumns = `
	id, name, description, start_date, end_date, progress, created_by,
	created_at, updated_at`

type Repository interface {
	Create(ctx context.Context, project *Project, memberIDs []int64) error
	GetByID(ctx context.Context, id int64) (*Project, error)
	ListAll(ctx context.Context) ([]Project, error)
	ListForUser(ctx context.Context, userID int64) ([]Project, error)
	ListMembers(ctx context.Context, projectID int64) ([]Member, error)
	IsMember(ctx context.Context, projectID, userID int64) (bool, error)
	AddMember(ctx context.Context, projectID, userID int64) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Create inserts the project and its initial team in one transaction;
// a half-created project with no members would be invisible to
// everyone but an admin.
func (r *repository) Create(
	ctx context.Context,
	project *Project,
	memberIDs []int64,
) error {
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO projects (
				name, description, start_date, end_date, created_by
			) VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at`

		err := tx.GetContext(ctx, project, query,
			project.Name,
			project.Description,
			project.StartDate,
			project.EndDate,
			project.CreatedBy,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return fmt.Errorf("create project: %w", core.ErrDuplicateKey)
			}
			return fmt.Errorf("create project: %w", err)
		}

		memberQuery := `
			INSERT INTO project_members (project_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING`

		for _, userID := range memberIDs {
			if _, err := tx.ExecContext(ctx, memberQuery, project.ID, userID); err != nil {
				return fmt.Errorf("add project member: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	var project Project
	err := r.db.GetContext(ctx, &project, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get project: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	return &project, nil
}

func (r *repository) ListAll(ctx context.Context) ([]Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC`

	var projects []Project
	if err := r.db.SelectContext(ctx, &projects, query); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	return projects, nil
}

func (r *repository) ListForUser(
	ctx context.Context,
	userID int64,
) ([]Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE id IN (
			SELECT project_id FROM project_members WHERE user_id = $1
		)
		ORDER BY created_at DESC`

	var projects []Project
	if err := r.db.SelectContext(ctx, &projects, query, userID); err != nil {
		return nil, fmt.Errorf("list projects for user: %w", err)
	}

	return projects, nil
}

func (r *repository) ListMembers(
	ctx context.Context,
	projectID int64,
) ([]Member, error) {
	query := `
		SELECT pm.user_id, u.name, u.email, u.avatar_url
		FROM project_members pm
		JOIN users u ON u.id = pm.user_id
		WHERE pm.project_id = $1
		ORDER BY u.name ASC`

	var members []Member
	if err := r.db.SelectContext(ctx, &members, query, projectID); err != nil {
		return nil, fmt.Errorf("list project members: %w", err)
	}

	return members, nil
}

func (r *repository) IsMember(
	ctx context.Context,
	projectID, userID int64,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM project_members
			WHERE project_id = $1 AND user_id = $2
		)`

	var isMember bool
	err := r.db.GetContext(ctx, &isMember, query, projectID, userID)
	if err != nil {
		return false, fmt.Errorf("check project membership: %w", err)
	}

	return isMember, nil
}

func (r *repository) AddMember(
	ctx context.Context,
	projectID, userID int64,
) error {
	query := `
		INSERT INTO project_members (project_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, projectID, userID); err != nil {
		return fmt.Errorf("add project member: %w", err)
	}

	return nil
}

// Delete removes the project; members, tasks and comments go with it
// via ON DELETE CASCADE.
func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete project: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM projects`)
	if err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
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
