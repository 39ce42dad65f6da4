package main

import (
	"context"
	"encoding/json"

	"github.com/joho/godotenv"
	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/pulsekit/smsdash/internal/config"
	"github.com/pulsekit/smsdash/internal/db"
	"github.com/pulsekit/smsdash/internal/queue"
	"github.com/pulsekit/smsdash/internal/repository"
	"github.com/pulsekit/smsdash/internal/sms"
)

const maxRetries = 3

// The worker consumes the durable delivery queue and runs the same
// delivery routine the in-process subscriber uses.
func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, relying on OS environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if cfg.AMQPURL == "" {
		logger.Fatal("AMQP_URL is required for the worker")
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.DSN())
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer conn.Close()

	messageRepo := &repository.MessageRepository{DB: conn}
	customerRepo := &repository.CustomerRepository{DB: conn}
	campaignRepo := &repository.CampaignRepository{DB: conn}
	gateway := sms.NewMockGateway(0.1, cfg.SenderID, 1)

	amqpConn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		logger.Fatal("connect amqp", zap.Error(err))
	}
	defer amqpConn.Close()

	ch, err := amqpConn.Channel()
	if err != nil {
		logger.Fatal("open channel", zap.Error(err))
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(queue.DeliveryTopic, true, false, false, false, nil)
	if err != nil {
		logger.Fatal("declare queue", zap.Error(err))
	}

	deliveries, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		logger.Fatal("register consumer", zap.Error(err))
	}

	logger.Info("worker running, waiting for deliveries")
	for d := range deliveries {
		var envelope queue.Envelope
		if err := json.Unmarshal(d.Body, &envelope); err != nil {
			logger.Warn("invalid delivery job", zap.Error(err))
			d.Ack(false)
			continue
		}

		err := queue.DeliverMessage(ctx, envelope.MessageID, messageRepo, customerRepo, campaignRepo, gateway, logger)
		if err != nil {
			// A requeued delivery keeps its headers, so the retry count
			// only grows if the job is republished with it incremented.
			retries := retryCount(d)
			if retries < maxRetries {
				if pubErr := republish(ch, q.Name, d.Body, retries+1); pubErr != nil {
					logger.Error("requeue delivery", zap.Error(pubErr))
					d.Nack(false, true)
					continue
				}
			} else {
				logger.Error("delivery permanently failed",
					zap.String("message_id", envelope.MessageID),
					zap.Error(err),
				)
			}
		}
		d.Ack(false)
	}
}

func republish(ch *amqp.Channel, queueName string, body []byte, retries int) error {
	return ch.Publish("", queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Headers:      amqp.Table{"x-retry-count": int32(retries)},
		Body:         body,
	})
}

func retryCount(d amqp.Delivery) int {
	if v, ok := d.Headers["x-retry-count"]; ok {
		if n, ok := v.(int32); ok {
			return int(n)
		}
		if n, ok := v.(int); ok {
			return n
		}
	}
	return 0
}
