package model

import "time"

type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignScheduled CampaignStatus = "scheduled"
	CampaignSending   CampaignStatus = "sending"
	CampaignSent      CampaignStatus = "sent"
	CampaignFailed    CampaignStatus = "failed"
)

// Campaign is owned by exactly one profile; every read and write goes
// through an owner check.
type Campaign struct {
	ID              string         `db:"id" json:"id"`
	UserID          string         `db:"user_id" json:"user_id"`
	Name            string         `db:"name" json:"name"`
	MessageBody     string         `db:"message_body" json:"message_body"`
	Status          CampaignStatus `db:"status" json:"status"`
	ScheduledAt     *time.Time     `db:"scheduled_at" json:"scheduled_at,omitempty"`
	TotalRecipients int            `db:"total_recipients" json:"total_recipients"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       *time.Time     `db:"updated_at" json:"updated_at,omitempty"`
}

// Sendable reports whether the campaign can still enter the send pipeline.
func (c *Campaign) Sendable() bool {
	switch c.Status {
	case CampaignDraft, CampaignScheduled, CampaignSending:
		return true
	}
	return false
}
