package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/pulsekit/smsdash/internal/apperrors"
	"github.com/pulsekit/smsdash/internal/model"
)

type MessageRepositoryInterface interface {
	CreateForCampaign(ctx context.Context, campaignID, customerID string) (*model.CampaignMessage, error)
	GetByID(ctx context.Context, id string) (*model.CampaignMessage, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]model.MessageWithRecipient, error)
	UpdateContent(ctx context.Context, id, content string) error
	UpdateStatus(ctx context.Context, id string, status model.MessageStatus, lastError string) error
	CountByStatus(ctx context.Context, campaignID string) (map[string]int, error)
	PendingCount(ctx context.Context, campaignID string) (int, error)
}

type MessageRepository struct {
	DB *sql.DB
}

const messageColumns = "id, campaign_id, customer_id, status, rendered_content, last_error, retry_count, created_at, updated_at"

// CreateForCampaign is idempotent per (campaign, customer): re-sending a
// campaign never duplicates a delivery.
func (r *MessageRepository) CreateForCampaign(ctx context.Context, campaignID, customerID string) (*model.CampaignMessage, error) {
	existing, err := r.getByCampaignAndCustomer(ctx, campaignID, customerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	msg := &model.CampaignMessage{
		ID:         uuid.NewString(),
		CampaignID: campaignID,
		CustomerID: customerID,
		Status:     model.MessagePending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	query := `
        INSERT INTO campaign_messages (id, campaign_id, customer_id, status, retry_count, created_at, updated_at)
        VALUES ($1, $2, $3, $4, 0, $5, $6)
        ON CONFLICT (campaign_id, customer_id) DO NOTHING
    `
	if _, err := r.DB.ExecContext(ctx, query, msg.ID, campaignID, customerID, msg.Status, now, now); err != nil {
		return nil, apperrors.Upstream(err)
	}
	return msg, nil
}

func (r *MessageRepository) getByCampaignAndCustomer(ctx context.Context, campaignID, customerID string) (*model.CampaignMessage, error) {
	query := `SELECT ` + messageColumns + ` FROM campaign_messages WHERE campaign_id=$1 AND customer_id=$2`
	var m model.CampaignMessage
	err := r.DB.QueryRowContext(ctx, query, campaignID, customerID).Scan(
		&m.ID, &m.CampaignID, &m.CustomerID, &m.Status,
		&m.RenderedContent, &m.LastError, &m.RetryCount, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apperrors.Upstream(err)
	}
	return &m, nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id string) (*model.CampaignMessage, error) {
	query := `SELECT ` + messageColumns + ` FROM campaign_messages WHERE id=$1`
	var m model.CampaignMessage
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.CampaignID, &m.CustomerID, &m.Status,
		&m.RenderedContent, &m.LastError, &m.RetryCount, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("message not found")
		}
		return nil, apperrors.Upstream(err)
	}
	return &m, nil
}

// ListByCampaign returns messages joined with their recipient, newest
// first. Owner checks happen in the service before this is called.
func (r *MessageRepository) ListByCampaign(ctx context.Context, campaignID string) ([]model.MessageWithRecipient, error) {
	query := `
        SELECT m.id, m.campaign_id, m.customer_id, m.status, m.rendered_content,
               m.last_error, m.retry_count, m.created_at, m.updated_at,
               c.id, c.user_id, c.phone, c.first_name, c.last_name, c.email, c.company, c.active, c.created_at
        FROM campaign_messages m
        JOIN customers c ON c.id = m.customer_id
        WHERE m.campaign_id = $1
        ORDER BY m.created_at DESC
    `
	rows, err := r.DB.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}
	defer rows.Close()

	messages := []model.MessageWithRecipient{}
	for rows.Next() {
		var m model.MessageWithRecipient
		if err := rows.Scan(
			&m.ID, &m.CampaignID, &m.CustomerID, &m.Status, &m.RenderedContent,
			&m.LastError, &m.RetryCount, &m.CreatedAt, &m.UpdatedAt,
			&m.Recipient.ID, &m.Recipient.UserID, &m.Recipient.Phone,
			&m.Recipient.FirstName, &m.Recipient.LastName, &m.Recipient.Email,
			&m.Recipient.Company, &m.Recipient.Active, &m.Recipient.CreatedAt,
		); err != nil {
			return nil, apperrors.Upstream(err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Upstream(err)
	}
	return messages, nil
}

func (r *MessageRepository) UpdateContent(ctx context.Context, id, content string) error {
	query := `UPDATE campaign_messages SET rendered_content=$1, updated_at=now() WHERE id=$2`
	if _, err := r.DB.ExecContext(ctx, query, content, id); err != nil {
		return apperrors.Upstream(err)
	}
	return nil
}

func (r *MessageRepository) UpdateStatus(ctx context.Context, id string, status model.MessageStatus, lastError string) error {
	query := `
        UPDATE campaign_messages
        SET status=$1, last_error=$2, retry_count=retry_count+1, updated_at=now()
        WHERE id=$3
    `
	if _, err := r.DB.ExecContext(ctx, query, status, lastError, id); err != nil {
		return apperrors.Upstream(err)
	}
	return nil
}

func (r *MessageRepository) CountByStatus(ctx context.Context, campaignID string) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM campaign_messages WHERE campaign_id=$1 GROUP BY status`
	rows, err := r.DB.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}
	defer rows.Close()

	stats := map[string]int{"pending": 0, "sent": 0, "failed": 0}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, apperrors.Upstream(err)
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

func (r *MessageRepository) PendingCount(ctx context.Context, campaignID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM campaign_messages WHERE campaign_id=$1 AND status='pending'`
	if err := r.DB.QueryRowContext(ctx, query, campaignID).Scan(&count); err != nil {
		return 0, apperrors.Upstream(err)
	}
	return count, nil
}

var _ MessageRepositoryInterface = (*MessageRepository)(nil)
