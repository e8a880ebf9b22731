package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/ddsc-labs/community-backend/pkg/enums"
	"github.com/ddsc-labs/community-backend/pkg/logger"
	"github.com/ddsc-labs/community-backend/pkg/outbox"
	"github.com/ddsc-labs/community-backend/pkg/outbox/idempotency"
	"github.com/ddsc-labs/community-backend/pkg/outbox/payloads"
	"github.com/ddsc-labs/community-backend/pkg/sendgrid"
)

const waitlistNotificationConsumer = "waitlist-notifications"

// Consumer watches domain events and emails promoted waitlist entries their
// registration invitation.
type Consumer struct {
	sender       sendgrid.Sender
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds a waitlist notification consumer.
func NewConsumer(sender sendgrid.Sender, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if sender == nil {
		return nil, fmt.Errorf("email sender required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		sender:       sender,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	if eventType != string(enums.EventWaitlistEntryPromoted) {
		c.logg.Info(logCtx, "skipping non-promotion event")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, waitlistNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	var payload payloads.WaitlistEntryPromotedEvent
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		c.logg.Error(logCtx, "failed to parse payload", err)
		_ = c.idempotency.Delete(ctx, waitlistNotificationConsumer, eventID)
		return processResult{nack: true}
	}

	logCtx = c.logg.WithFields(logCtx, map[string]any{
		"entry_id":   payload.EntryID.String(),
		"event_name": payload.EventName,
	})

	if err := c.sendInvitation(ctx, payload); err != nil {
		c.logg.Error(logCtx, "invitation email failed", err)
		_ = c.idempotency.Delete(ctx, waitlistNotificationConsumer, eventID)
		return processResult{nack: true}
	}

	c.logg.Info(logCtx, "invitation email sent")
	return processResult{ack: true}
}

func (c *Consumer) sendInvitation(ctx context.Context, payload payloads.WaitlistEntryPromotedEvent) error {
	if payload.Email == "" {
		return fmt.Errorf("entry email missing")
	}
	if payload.EventName == "" {
		return fmt.Errorf("event name missing")
	}
	return c.sender.Send(ctx, sendgrid.Message{
		To:      payload.Email,
		Subject: fmt.Sprintf("A spot opened up for %s", payload.EventName),
		PlainBody: fmt.Sprintf(
			"Good news! A spot opened up for %s and you are next in line.\n\nComplete your registration to claim it before it is offered to the next person on the waitlist.",
			payload.EventName,
		),
		HTMLBody: fmt.Sprintf(
			"<p>Good news! A spot opened up for <strong>%s</strong> and you are next in line.</p><p>Complete your registration to claim it before it is offered to the next person on the waitlist.</p>",
			payload.EventName,
		),
	})
}
