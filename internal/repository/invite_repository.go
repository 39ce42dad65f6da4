package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/pulsekit/smsdash/internal/apperrors"
	"github.com/pulsekit/smsdash/internal/model"
)

type InviteRepositoryInterface interface {
	Create(ctx context.Context, invite *model.InviteCode) error
	Consume(ctx context.Context, code, usedBy string, now time.Time) error
}

type InviteRepository struct {
	DB *sql.DB
}

func (r *InviteRepository) Create(ctx context.Context, invite *model.InviteCode) error {
	invite.CreatedAt = time.Now().UTC()
	query := `
        INSERT INTO invite_codes (code, used, expires_at, created_by, created_at)
        VALUES ($1, false, $2, $3, $4)
    `
	if _, err := r.DB.ExecContext(ctx, query, invite.Code, invite.ExpiresAt, invite.CreatedBy, invite.CreatedAt); err != nil {
		return apperrors.Upstream(err)
	}
	return nil
}

// Consume marks a code used in one conditional update. The used=false and
// expiry predicates make the code consumable at most once, even under
// concurrent signups.
func (r *InviteRepository) Consume(ctx context.Context, code, usedBy string, now time.Time) error {
	query := `
        UPDATE invite_codes
        SET used=true, used_by=$2, used_at=$3
        WHERE code=$1 AND used=false AND expires_at > $3
        RETURNING code
    `
	var consumed string
	err := r.DB.QueryRowContext(ctx, query, code, usedBy, now).Scan(&consumed)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperrors.Validation("invalid or expired invite code")
		}
		return apperrors.Upstream(err)
	}
	return nil
}

var _ InviteRepositoryInterface = (*InviteRepository)(nil)
