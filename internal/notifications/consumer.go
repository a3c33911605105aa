package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/tmoreno/bulkbridge-backend/pkg/db/models"
	"github.com/tmoreno/bulkbridge-backend/pkg/enums"
	"github.com/tmoreno/bulkbridge-backend/pkg/logger"
	"github.com/tmoreno/bulkbridge-backend/pkg/mailer"
	"github.com/tmoreno/bulkbridge-backend/pkg/outbox"
	"github.com/tmoreno/bulkbridge-backend/pkg/outbox/idempotency"
	"github.com/tmoreno/bulkbridge-backend/pkg/outbox/payloads"
	"github.com/tmoreno/bulkbridge-backend/pkg/outbox/registry"
)

const negotiationNotificationConsumer = "negotiation-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
	CreateBatch(ctx context.Context, notifications []models.Notification) error
	ShopContacts(ctx context.Context, shopIDs []uuid.UUID) ([]ShopContact, error)
}

// Consumer watches domain events and fans them out into in-app notifications
// and transactional mail for sellers that have a contact email on file.
type Consumer struct {
	repo         repository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	mail         *mailer.Client
	decoders     *registry.DecoderRegistry
	logg         *logger.Logger
}

// NewConsumer builds the negotiation notification consumer.
func NewConsumer(repo repository, subscription *pubsub.Subscriber, manager *idempotency.Manager, mail *mailer.Client, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if mail == nil {
		return nil, fmt.Errorf("mail client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		mail:         mail,
		decoders:     newPayloadDecoders(),
		logg:         logg,
	}, nil
}

// newPayloadDecoders registers the versioned payload decoders for every event
// this consumer handles. Events of other types are skipped and acked.
func newPayloadDecoders() *registry.DecoderRegistry {
	decoders := registry.NewDecoderRegistry()
	registry.RegisterDecoder[payloads.RequestCreatedEvent](decoders, enums.EventRequestCreated, 1)
	registry.RegisterDecoder[payloads.OfferSubmittedEvent](decoders, enums.EventOfferSubmitted, 1)
	registry.RegisterDecoder[payloads.OfferAcceptedEvent](decoders, enums.EventOfferAccepted, 1)
	registry.RegisterDecoder[payloads.RequestAdvancedEvent](decoders, enums.EventRequestAdvanced, 1)
	return decoders
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.process(ctx, msg) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// process handles one message and reports whether it should be acked. Only
// transient failures (idempotency store, DB, handler errors) nack; malformed
// or unhandled messages are acked so they do not redeliver forever.
func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) (ack bool) {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": string(eventType),
	})

	if !c.decoders.Registered(eventType, 1) {
		c.logg.Info(logCtx, "skipping unhandled event")
		return true
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return true
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return true
	}

	decoded, err := c.decoders.Decode(eventType, envelope.Version, envelope.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to decode payload", err)
		return true
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, negotiationNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return false
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return true
	}

	if err := c.dispatch(ctx, decoded, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, negotiationNotificationConsumer, eventID)
		return false
	}
	return true
}

func (c *Consumer) dispatch(ctx context.Context, decoded any, logCtx context.Context) error {
	switch payload := decoded.(type) {
	case *payloads.RequestCreatedEvent:
		return c.handleRequestCreated(ctx, payload, logCtx)
	case *payloads.OfferSubmittedEvent:
		return c.handleOfferSubmitted(ctx, payload, logCtx)
	case *payloads.OfferAcceptedEvent:
		return c.handleOfferAccepted(ctx, payload, logCtx)
	case *payloads.RequestAdvancedEvent:
		return c.handleRequestAdvanced(ctx, payload, logCtx)
	default:
		return fmt.Errorf("no handler for payload %T", decoded)
	}
}

func (c *Consumer) handleRequestCreated(ctx context.Context, payload *payloads.RequestCreatedEvent, logCtx context.Context) error {
	if payload.RequestID == uuid.Nil {
		return fmt.Errorf("request id missing")
	}

	contacts, err := c.repo.ShopContacts(ctx, payload.InvitedShopIDs)
	if err != nil {
		return fmt.Errorf("resolve invited shops: %w", err)
	}

	link := fmt.Sprintf("/requests/%s", payload.RequestID)
	subject := "New bulk order request"
	body := fmt.Sprintf("A buyer is requesting %d units in %s. Submit your quote before the request closes.",
		payload.Quantity, payload.ProductCategory)

	rows := make([]models.Notification, 0, len(contacts))
	for _, contact := range contacts {
		rows = append(rows, models.Notification{
			RecipientUserID: contact.OwnerUserID,
			Type:            enums.NotificationRFQInvitation,
			Title:           subject,
			Message:         body,
			Link:            stringPtr(link),
		})
	}
	if err := c.repo.CreateBatch(ctx, rows); err != nil {
		return err
	}

	c.sendShopMail(ctx, contacts, subject, body, logCtx)
	c.logg.Info(logCtx, "invited sellers notified of new request")
	return nil
}

func (c *Consumer) handleOfferSubmitted(ctx context.Context, payload *payloads.OfferSubmittedEvent, logCtx context.Context) error {
	if payload.BuyerUserID == uuid.Nil {
		return fmt.Errorf("buyer user id missing")
	}

	link := fmt.Sprintf("/requests/%s/offers", payload.RequestID)
	message := fmt.Sprintf("A seller quoted %s for %q with delivery in %d days.",
		payload.Price.StringFixed(2), payload.ProductName, payload.DeliveryDays)
	if payload.Terms != "" {
		message += " Terms: " + payload.Terms
	}
	notification := &models.Notification{
		RecipientUserID: payload.BuyerUserID,
		Type:            enums.NotificationOfferReceived,
		Title:           "New quote received",
		Message:         message,
		Link:            stringPtr(link),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "buyer notified of new quote")
	return nil
}

func (c *Consumer) handleOfferAccepted(ctx context.Context, payload *payloads.OfferAcceptedEvent, logCtx context.Context) error {
	if payload.ShopID == uuid.Nil {
		return fmt.Errorf("winning shop id missing")
	}

	shopIDs := append([]uuid.UUID{payload.ShopID}, payload.DeclinedShopIDs...)
	contacts, err := c.repo.ShopContacts(ctx, shopIDs)
	if err != nil {
		return fmt.Errorf("resolve shops: %w", err)
	}

	link := fmt.Sprintf("/requests/%s", payload.RequestID)
	winnerMessage := fmt.Sprintf("Your quote of %s for %d units of %q was accepted. Deliver by %s.",
		payload.Price.StringFixed(2), payload.Quantity, payload.ProductName,
		payload.Deadline.Format("Jan 2, 2006"))
	rows := make([]models.Notification, 0, len(contacts))
	var winner *ShopContact
	for i := range contacts {
		contact := contacts[i]
		if contact.ShopID == payload.ShopID {
			winner = &contacts[i]
			rows = append(rows, models.Notification{
				RecipientUserID: contact.OwnerUserID,
				Type:            enums.NotificationOfferAccepted,
				Title:           "Offer accepted",
				Message:         winnerMessage,
				Link:            stringPtr(link),
			})
			continue
		}
		rows = append(rows, models.Notification{
			RecipientUserID: contact.OwnerUserID,
			Type:            enums.NotificationOfferDeclined,
			Title:           "Offer declined",
			Message:         "The buyer accepted a different quote for this bulk order request.",
			Link:            stringPtr(link),
		})
	}
	if err := c.repo.CreateBatch(ctx, rows); err != nil {
		return err
	}

	if winner != nil {
		c.sendShopMail(ctx, []ShopContact{*winner}, "Your offer was accepted", winnerMessage, logCtx)
	}
	c.logg.Info(logCtx, "sellers notified of acceptance outcome")
	return nil
}

func (c *Consumer) handleRequestAdvanced(ctx context.Context, payload *payloads.RequestAdvancedEvent, logCtx context.Context) error {
	if payload.BuyerUserID == uuid.Nil {
		return fmt.Errorf("buyer user id missing")
	}

	link := fmt.Sprintf("/requests/%s", payload.RequestID)
	notification := &models.Notification{
		RecipientUserID: payload.BuyerUserID,
		Type:            enums.NotificationOrderUpdate,
		Title:           "Order update",
		Message:         fmt.Sprintf("Your bulk order is now %s.", payload.Status),
		Link:            stringPtr(link),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "buyer notified of fulfillment update")
	return nil
}

// sendShopMail delivers best-effort mail to shops that have an email on file.
// Mail failures are logged but never fail the event, the in-app notification
// rows are the source of truth.
func (c *Consumer) sendShopMail(ctx context.Context, contacts []ShopContact, subject, body string, logCtx context.Context) {
	if !c.mail.Enabled() {
		return
	}
	for _, contact := range contacts {
		if contact.Email == nil || *contact.Email == "" {
			continue
		}
		msg := mailer.Message{
			To:       *contact.Email,
			Subject:  subject,
			TextBody: body,
		}
		if err := c.mail.Send(ctx, msg); err != nil {
			c.logg.Error(c.logg.WithFields(logCtx, map[string]any{"shop_id": contact.ShopID.String()}), "mail send failed", err)
		}
	}
}

func stringPtr(value string) *string {
	return &value
}
