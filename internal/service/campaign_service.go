package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/pulsekit/smsdash/internal/apperrors"
	"github.com/pulsekit/smsdash/internal/model"
	"github.com/pulsekit/smsdash/internal/queue"
	"github.com/pulsekit/smsdash/internal/repository"
)

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	CustomerRepo repository.CustomerRepositoryInterface
	MessageRepo  repository.MessageRepositoryInterface
	Queue        queue.Queue
	Logger       *zap.Logger
}

// CreateInput carries the client-supplied campaign fields. Ownership is
// never part of the input.
type CreateInput struct {
	Name        string
	MessageBody string
	ScheduledAt *string // RFC3339
}

// Create validates and persists a draft campaign owned by userID.
func (s *CampaignService) Create(ctx context.Context, userID string, in CreateInput) (*model.Campaign, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperrors.Validation("name is required")
	}
	if strings.TrimSpace(in.MessageBody) == "" {
		return nil, apperrors.Validation("message_body is required")
	}

	c := &model.Campaign{
		UserID:      userID,
		Name:        in.Name,
		MessageBody: in.MessageBody,
		Status:      model.CampaignDraft,
	}
	if in.ScheduledAt != nil && *in.ScheduledAt != "" {
		t, err := parseTimestamp(*in.ScheduledAt)
		if err != nil {
			return nil, apperrors.Validation("scheduled_at must be an RFC3339 timestamp")
		}
		c.ScheduledAt = &t
		c.Status = model.CampaignScheduled
	}
	if err := s.CampaignRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns campaigns owned by userID, filtered.
func (s *CampaignService) List(ctx context.Context, userID string, f repository.CampaignFilters) ([]model.Campaign, error) {
	return s.CampaignRepo.ListByOwner(ctx, userID, f)
}

// getOwned loads a campaign and enforces ownership: NotFound when absent,
// Forbidden when it belongs to someone else. The order matters — absence
// is checked first so a non-owner probing random IDs learns nothing.
func (s *CampaignService) getOwned(ctx context.Context, userID, campaignID string) (*model.Campaign, error) {
	c, err := s.CampaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, apperrors.Forbidden("you do not have access to this campaign")
	}
	return c, nil
}

// CampaignDetails is a campaign with its delivery stats.
type CampaignDetails struct {
	Campaign model.Campaign
	Stats    map[string]int
}

func (s *CampaignService) Details(ctx context.Context, userID, campaignID string) (*CampaignDetails, error) {
	c, err := s.getOwned(ctx, userID, campaignID)
	if err != nil {
		return nil, err
	}
	stats, err := s.MessageRepo.CountByStatus(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, n := range stats {
		total += n
	}
	stats["total"] = total
	return &CampaignDetails{Campaign: *c, Stats: stats}, nil
}

// Messages returns the campaign's messages joined with recipients,
// newest first, after the ownership check.
func (s *CampaignService) Messages(ctx context.Context, userID, campaignID string) ([]model.MessageWithRecipient, error) {
	if _, err := s.getOwned(ctx, userID, campaignID); err != nil {
		return nil, err
	}
	return s.MessageRepo.ListByCampaign(ctx, campaignID)
}

// Preview renders the campaign body for one customer without persisting
// anything.
func (s *CampaignService) Preview(ctx context.Context, userID, campaignID, customerID string) (string, error) {
	c, err := s.getOwned(ctx, userID, campaignID)
	if err != nil {
		return "", err
	}
	customer, err := s.CustomerRepo.GetByID(ctx, customerID)
	if err != nil {
		return "", err
	}
	if customer.UserID != userID {
		return "", apperrors.Forbidden("you do not have access to this customer")
	}
	return RenderTemplate(c.MessageBody, CustomerVars(customer)), nil
}

// SendResult reports what the fan-out queued.
type SendResult struct {
	CampaignID     string   `json:"campaign_id"`
	MessagesQueued int      `json:"messages_queued"`
	Status         string   `json:"status"`
	MessageIDs     []string `json:"message_ids"`
}

// Send fans the campaign out to every active customer of the owner: one
// idempotent message row per recipient, rendered, then queued. The
// campaign moves to sending and its recipient count is stamped.
func (s *CampaignService) Send(ctx context.Context, userID, campaignID string) (*SendResult, error) {
	c, err := s.getOwned(ctx, userID, campaignID)
	if err != nil {
		return nil, err
	}
	if !c.Sendable() {
		return nil, apperrors.Validation("campaign cannot be sent in status: " + string(c.Status))
	}

	recipients, err := s.CustomerRepo.ListByOwner(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, apperrors.Validation("no active customers to send to")
	}

	result := &SendResult{
		CampaignID: campaignID,
		Status:     string(model.CampaignSending),
		MessageIDs: []string{},
	}

	for _, recipient := range recipients {
		msg, err := s.MessageRepo.CreateForCampaign(ctx, campaignID, recipient.ID)
		if err != nil {
			s.Logger.Warn("create outbound message",
				zap.String("campaign_id", campaignID),
				zap.String("customer_id", recipient.ID),
				zap.Error(err),
			)
			continue
		}

		if msg.RenderedContent == "" {
			rendered := RenderTemplate(c.MessageBody, CustomerVars(&recipient))
			if err := s.MessageRepo.UpdateContent(ctx, msg.ID, rendered); err != nil {
				s.Logger.Warn("store rendered content", zap.String("message_id", msg.ID), zap.Error(err))
				continue
			}
			msg.RenderedContent = rendered
		}

		if err := s.Queue.Publish(queue.DeliveryTopic, msg.ID); err != nil {
			s.Logger.Warn("enqueue delivery", zap.String("message_id", msg.ID), zap.Error(err))
			continue
		}

		result.MessageIDs = append(result.MessageIDs, msg.ID)
		result.MessagesQueued++
	}

	if err := s.CampaignRepo.SetTotalRecipients(ctx, campaignID, len(recipients)); err != nil {
		return result, err
	}
	if c.Status != model.CampaignSending {
		if err := s.CampaignRepo.UpdateStatus(ctx, campaignID, model.CampaignSending); err != nil {
			return result, err
		}
	}
	return result, nil
}
