package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/pulsekit/smsdash/internal/apperrors"
	"github.com/pulsekit/smsdash/internal/model"
)

// ProfileChanges describes the fields a batch update may touch. Nil
// fields are left alone.
type ProfileChanges struct {
	Status     *model.AccountStatus
	Role       *model.Role
	ApprovedAt *time.Time
}

type ProfileRepositoryInterface interface {
	Create(ctx context.Context, p *model.UserProfile) error
	GetByID(ctx context.Context, userID string) (*model.UserProfile, error)
	GetByEmail(ctx context.Context, email string) (*model.UserProfile, error)
	ListPending(ctx context.Context) ([]model.UserProfile, error)
	BatchUpdate(ctx context.Context, userIDs []string, changes ProfileChanges) ([]model.UserProfile, error)
	UpdateStatus(ctx context.Context, userID string, status model.AccountStatus) (*model.UserProfile, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type ProfileRepository struct {
	DB *sql.DB
}

const profileColumns = "user_id, email, password_hash, role, status, created_at, approved_at, updated_at"

func (r *ProfileRepository) Create(ctx context.Context, p *model.UserProfile) error {
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	query := `
        INSERT INTO user_profiles (user_id, email, password_hash, role, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.DB.ExecContext(ctx, query,
		p.UserID, p.Email, p.PasswordHash, p.Role, p.Status, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if isUniqueViolation(err, &pqErr) {
			return apperrors.Validation("an account with this email already exists")
		}
		return apperrors.Upstream(err)
	}
	return nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, userID string) (*model.UserProfile, error) {
	return r.getOne(ctx, `SELECT `+profileColumns+` FROM user_profiles WHERE user_id=$1`, userID)
}

func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*model.UserProfile, error) {
	return r.getOne(ctx, `SELECT `+profileColumns+` FROM user_profiles WHERE email=$1`, email)
}

func (r *ProfileRepository) getOne(ctx context.Context, query string, arg interface{}) (*model.UserProfile, error) {
	var p model.UserProfile
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&p.UserID, &p.Email, &p.PasswordHash, &p.Role, &p.Status,
		&p.CreatedAt, &p.ApprovedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Upstream(err)
	}
	return &p, nil
}

func (r *ProfileRepository) ListPending(ctx context.Context) ([]model.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE status='pending' ORDER BY created_at ASC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}
	defer rows.Close()
	return scanProfiles(rows)
}

// BatchUpdate applies one UPDATE across all target rows, so the batch is
// atomic at the store boundary: callers never observe a partial result.
func (r *ProfileRepository) BatchUpdate(ctx context.Context, userIDs []string, changes ProfileChanges) ([]model.UserProfile, error) {
	sets := []string{"updated_at=now()"}
	args := []interface{}{pq.Array(userIDs)}
	argPos := 2

	if changes.Status != nil {
		sets = append(sets, fmt.Sprintf("status=$%d", argPos))
		args = append(args, *changes.Status)
		argPos++
	}
	if changes.Role != nil {
		sets = append(sets, fmt.Sprintf("role=$%d", argPos))
		args = append(args, *changes.Role)
		argPos++
	}
	if changes.ApprovedAt != nil {
		sets = append(sets, fmt.Sprintf("approved_at=$%d", argPos))
		args = append(args, *changes.ApprovedAt)
	}

	query := fmt.Sprintf(`
        UPDATE user_profiles
        SET %s
        WHERE user_id = ANY($1)
        RETURNING %s
    `, joinSets(sets), profileColumns)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}
	defer rows.Close()
	return scanProfiles(rows)
}

func (r *ProfileRepository) UpdateStatus(ctx context.Context, userID string, status model.AccountStatus) (*model.UserProfile, error) {
	query := `
        UPDATE user_profiles
        SET status=$1, updated_at=now()
        WHERE user_id=$2
        RETURNING ` + profileColumns
	var p model.UserProfile
	err := r.DB.QueryRowContext(ctx, query, status, userID).Scan(
		&p.UserID, &p.Email, &p.PasswordHash, &p.Role, &p.Status,
		&p.CreatedAt, &p.ApprovedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Upstream(err)
	}
	return &p, nil
}

func (r *ProfileRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM user_profiles GROUP BY status`)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, apperrors.Upstream(err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func scanProfiles(rows *sql.Rows) ([]model.UserProfile, error) {
	profiles := []model.UserProfile{}
	for rows.Next() {
		var p model.UserProfile
		if err := rows.Scan(
			&p.UserID, &p.Email, &p.PasswordHash, &p.Role, &p.Status,
			&p.CreatedAt, &p.ApprovedAt, &p.UpdatedAt,
		); err != nil {
			return nil, apperrors.Upstream(err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Upstream(err)
	}
	return profiles, nil
}

func joinSets(sets []string) string {
	out := sets[0]
	for _, s := range sets[1:] {
		out += ", " + s
	}
	return out
}

var _ ProfileRepositoryInterface = (*ProfileRepository)(nil)
