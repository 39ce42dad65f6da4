// Package dto owns the boundary between external payload field names and
// persisted records. Each payload type maps to exactly one model type, in
// both directions, with no field dropped, so a record round-trips through
// the API representation losslessly.
package dto

import (
	"time"

	"github.com/pulsekit/smsdash/internal/model"
)

// CampaignPayload is the wire shape of a campaign.
type CampaignPayload struct {
	ID              string     `json:"id,omitempty"`
	UserID          string     `json:"user_id,omitempty"`
	Name            string     `json:"name"`
	MessageBody     string     `json:"message_body"`
	Status          string     `json:"status,omitempty"`
	ScheduledAt     *time.Time `json:"scheduled_at,omitempty"`
	TotalRecipients int        `json:"total_recipients"`
	CreatedAt       time.Time  `json:"created_at,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// ToModel converts a payload to a persisted record. The owner is never
// taken from the payload; callers pass the authenticated user ID.
func (p CampaignPayload) ToModel(ownerID string) model.Campaign {
	return model.Campaign{
		ID:              p.ID,
		UserID:          ownerID,
		Name:            p.Name,
		MessageBody:     p.MessageBody,
		Status:          model.CampaignStatus(p.Status),
		ScheduledAt:     p.ScheduledAt,
		TotalRecipients: p.TotalRecipients,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func CampaignFromModel(c model.Campaign) CampaignPayload {
	return CampaignPayload{
		ID:              c.ID,
		UserID:          c.UserID,
		Name:            c.Name,
		MessageBody:     c.MessageBody,
		Status:          string(c.Status),
		ScheduledAt:     c.ScheduledAt,
		TotalRecipients: c.TotalRecipients,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// CustomerPayload is the wire shape of a contact.
type CustomerPayload struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Phone     string    `json:"phone"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email,omitempty"`
	Company   string    `json:"company,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

func (p CustomerPayload) ToModel(ownerID string) model.Customer {
	return model.Customer{
		ID:        p.ID,
		UserID:    ownerID,
		Phone:     p.Phone,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Company:   p.Company,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
	}
}

func CustomerFromModel(c model.Customer) CustomerPayload {
	return CustomerPayload{
		ID:        c.ID,
		UserID:    c.UserID,
		Phone:     c.Phone,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Company:   c.Company,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
	}
}

// ProfilePayload is the wire shape of a user profile. The password hash
// never crosses the boundary.
type ProfilePayload struct {
	UserID     string     `json:"user_id"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func ProfileFromModel(p model.UserProfile) ProfilePayload {
	return ProfilePayload{
		UserID:     p.UserID,
		Email:      p.Email,
		Role:       string(p.Role),
		Status:     string(p.Status),
		CreatedAt:  p.CreatedAt,
		ApprovedAt: p.ApprovedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func (p ProfilePayload) ToModel() model.UserProfile {
	return model.UserProfile{
		UserID:     p.UserID,
		Email:      p.Email,
		Role:       model.Role(p.Role),
		Status:     model.AccountStatus(p.Status),
		CreatedAt:  p.CreatedAt,
		ApprovedAt: p.ApprovedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// MessagePayload is the wire shape of one outbound SMS with its recipient.
type MessagePayload struct {
	ID              string           `json:"id"`
	CampaignID      string           `json:"campaign_id"`
	CustomerID      string           `json:"customer_id"`
	Status          string           `json:"status"`
	RenderedContent string           `json:"rendered_content"`
	LastError       string           `json:"last_error,omitempty"`
	RetryCount      int              `json:"retry_count"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	Recipient       *CustomerPayload `json:"recipient,omitempty"`
}

func MessageFromModel(m model.MessageWithRecipient) MessagePayload {
	recipient := CustomerFromModel(m.Recipient)
	return MessagePayload{
		ID:              m.ID,
		CampaignID:      m.CampaignID,
		CustomerID:      m.CustomerID,
		Status:          string(m.Status),
		RenderedContent: m.RenderedContent,
		LastError:       m.LastError,
		RetryCount:      m.RetryCount,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
		Recipient:       &recipient,
	}
}
