package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pulsekit/smsdash/internal/apperrors"
	"github.com/pulsekit/smsdash/internal/model"
)

// CampaignFilters narrows a campaign list. A nil Limit means unbounded.
type CampaignFilters struct {
	Status    string
	Search    string
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     *int
	Offset    *int
	OrderBy   string
	Ascending bool
}

// orderColumns is the whitelist for ORDER BY; anything else falls back to
// created_at so user input never reaches the SQL text.
var orderColumns = map[string]string{
	"created_at":   "created_at",
	"scheduled_at": "scheduled_at",
	"name":         "name",
	"status":       "status",
}

type CampaignRepositoryInterface interface {
	Create(ctx context.Context, c *model.Campaign) error
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
	ListByOwner(ctx context.Context, userID string, f CampaignFilters) ([]model.Campaign, error)
	UpdateStatus(ctx context.Context, id string, status model.CampaignStatus) error
	SetTotalRecipients(ctx context.Context, id string, total int) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = "id, user_id, name, message_body, status, scheduled_at, total_recipients, created_at, updated_at"

// Create inserts a campaign. Ownership comes from c.UserID, which the
// service sets from the session, never from the payload.
func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = model.CampaignDraft
	}
	c.CreatedAt = time.Now().UTC()
	query := `
        INSERT INTO campaigns (id, user_id, name, message_body, status, scheduled_at, total_recipients, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.DB.ExecContext(ctx, query,
		c.ID, c.UserID, c.Name, c.MessageBody, c.Status, c.ScheduledAt, c.TotalRecipients, c.CreatedAt,
	)
	if err != nil {
		return apperrors.Upstream(err)
	}
	return nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	query := fmt.Sprintf(`SELECT %s FROM campaigns WHERE id=$1`, campaignColumns)
	var c model.Campaign
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.UserID, &c.Name, &c.MessageBody, &c.Status,
		&c.ScheduledAt, &c.TotalRecipients, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("campaign not found")
		}
		return nil, apperrors.Upstream(err)
	}
	return &c, nil
}

// ListByOwner returns campaigns owned by userID. The owner predicate is
// baked into the query, so no filter combination can reach another
// user's records.
func (r *CampaignRepository) ListByOwner(ctx context.Context, userID string, f CampaignFilters) ([]model.Campaign, error) {
	query := fmt.Sprintf(`SELECT %s FROM campaigns WHERE user_id=$1`, campaignColumns)
	args := []interface{}{userID}
	argPos := 2

	if f.Status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, f.Status)
		argPos++
	}
	if f.Search != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR message_body ILIKE $%d)", argPos, argPos)
		args = append(args, "%"+escapeLike(f.Search)+"%")
		argPos++
	}
	if f.DateFrom != nil {
		query += fmt.Sprintf(" AND scheduled_at >= $%d", argPos)
		args = append(args, *f.DateFrom)
		argPos++
	}
	if f.DateTo != nil {
		query += fmt.Sprintf(" AND scheduled_at <= $%d", argPos)
		args = append(args, *f.DateTo)
		argPos++
	}

	column, ok := orderColumns[f.OrderBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if f.Ascending {
		direction = "ASC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", column, direction)

	if f.Limit != nil {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, *f.Limit)
		argPos++
	}
	if f.Offset != nil {
		query += fmt.Sprintf(" OFFSET $%d", argPos)
		args = append(args, *f.Offset)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}
	defer rows.Close()

	campaigns := []model.Campaign{}
	for rows.Next() {
		var c model.Campaign
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.Name, &c.MessageBody, &c.Status,
			&c.ScheduledAt, &c.TotalRecipients, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, apperrors.Upstream(err)
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Upstream(err)
	}
	return campaigns, nil
}

func (r *CampaignRepository) UpdateStatus(ctx context.Context, id string, status model.CampaignStatus) error {
	query := `UPDATE campaigns SET status=$1, updated_at=now() WHERE id=$2`
	if _, err := r.DB.ExecContext(ctx, query, status, id); err != nil {
		return apperrors.Upstream(err)
	}
	return nil
}

func (r *CampaignRepository) SetTotalRecipients(ctx context.Context, id string, total int) error {
	query := `UPDATE campaigns SET total_recipients=$1, updated_at=now() WHERE id=$2`
	if _, err := r.DB.ExecContext(ctx, query, total, id); err != nil {
		return apperrors.Upstream(err)
	}
	return nil
}

func (r *CampaignRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM campaigns GROUP BY status`)
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

// escapeLike neutralizes LIKE wildcards in user-supplied search text.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
