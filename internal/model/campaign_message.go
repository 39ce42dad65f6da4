package model

import "time"

type MessageStatus string

const (
	MessagePending MessageStatus = "pending"
	MessageSent    MessageStatus = "sent"
	MessageFailed  MessageStatus = "failed"
)

// CampaignMessage is one outbound SMS instance. It is only reachable
// through its campaign, so the campaign's owner check covers it.
type CampaignMessage struct {
	ID              string        `db:"id" json:"id"`
	CampaignID      string        `db:"campaign_id" json:"campaign_id"`
	CustomerID      string        `db:"customer_id" json:"customer_id"`
	Status          MessageStatus `db:"status" json:"status"`
	RenderedContent string        `db:"rendered_content" json:"rendered_content"`
	LastError       string        `db:"last_error" json:"last_error,omitempty"`
	RetryCount      int           `db:"retry_count" json:"retry_count"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// MessageWithRecipient joins a message with its recipient for list views.
type MessageWithRecipient struct {
	CampaignMessage
	Recipient Customer `json:"recipient"`
}
