package queue

import (
	"context"

	"go.uber.org/zap"

	"github.com/pulsekit/smsdash/internal/model"
	"github.com/pulsekit/smsdash/internal/repository"
	"github.com/pulsekit/smsdash/internal/sms"
)

// StartDeliverySubscriber wires the in-process delivery path: each queued
// message ID is loaded, sent through the gateway, and marked sent or
// failed. When the campaign has no pending messages left, its status
// flips to sent.
func StartDeliverySubscriber(
	q Queue,
	messages repository.MessageRepositoryInterface,
	customers repository.CustomerRepositoryInterface,
	campaigns repository.CampaignRepositoryInterface,
	gateway sms.Gateway,
	logger *zap.Logger,
) {
	err := q.Subscribe(DeliveryTopic, func(payload any) error {
		msgID, ok := payload.(string)
		if !ok {
			logger.Warn("delivery job with unexpected payload type")
			return nil
		}
		return DeliverMessage(context.Background(), msgID, messages, customers, campaigns, gateway, logger)
	})
	if err != nil {
		logger.Error("subscribe delivery topic", zap.Error(err))
	}
}

// DeliverMessage performs one delivery attempt. Shared by the in-process
// subscriber and the AMQP worker so both paths behave identically.
func DeliverMessage(
	ctx context.Context,
	msgID string,
	messages repository.MessageRepositoryInterface,
	customers repository.CustomerRepositoryInterface,
	campaigns repository.CampaignRepositoryInterface,
	gateway sms.Gateway,
	logger *zap.Logger,
) error {
	msg, err := messages.GetByID(ctx, msgID)
	if err != nil {
		logger.Warn("load delivery job", zap.String("message_id", msgID), zap.Error(err))
		return err
	}
	if msg.Status == model.MessageSent {
		return nil
	}

	recipient, err := customers.GetByID(ctx, msg.CustomerID)
	if err != nil {
		logger.Warn("load recipient", zap.String("message_id", msgID), zap.Error(err))
		return err
	}

	if err := gateway.Send(ctx, recipient.Phone, msg.RenderedContent); err != nil {
		logger.Warn("gateway send failed",
			zap.String("message_id", msgID),
			zap.Error(err),
		)
		if updateErr := messages.UpdateStatus(ctx, msgID, model.MessageFailed, err.Error()); updateErr != nil {
			logger.Error("mark message failed", zap.Error(updateErr))
		}
		finalizeCampaign(ctx, msg.CampaignID, messages, campaigns, logger)
		return err
	}

	if err := messages.UpdateStatus(ctx, msgID, model.MessageSent, ""); err != nil {
		logger.Error("mark message sent", zap.Error(err))
		return err
	}

	finalizeCampaign(ctx, msg.CampaignID, messages, campaigns, logger)
	return nil
}

// finalizeCampaign flips the campaign to a terminal status once no
// message is pending: sent if at least one delivery landed, failed
// otherwise. A failed message that a retry later delivers re-runs this
// and upgrades failed to sent.
func finalizeCampaign(
	ctx context.Context,
	campaignID string,
	messages repository.MessageRepositoryInterface,
	campaigns repository.CampaignRepositoryInterface,
	logger *zap.Logger,
) {
	pending, err := messages.PendingCount(ctx, campaignID)
	if err != nil || pending > 0 {
		return
	}
	counts, err := messages.CountByStatus(ctx, campaignID)
	if err != nil {
		logger.Error("count campaign messages", zap.Error(err))
		return
	}
	status := model.CampaignFailed
	if counts[string(model.MessageSent)] > 0 {
		status = model.CampaignSent
	}
	if err := campaigns.UpdateStatus(ctx, campaignID, status); err != nil {
		logger.Error("finalize campaign", zap.Error(err))
	}
}
