package fulfillment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/olafkfreund/tshop-sub002/internal/domain/fulfillment"
	"github.com/olafkfreund/tshop-sub002/internal/domain/shared"
)

const signaturePrefix = "sha256="

// EventDeduper remembers which webhook event IDs have already been consumed
type EventDeduper interface {
	// MarkConsumed records the event ID and reports whether this was the
	// first time it was seen
	MarkConsumed(ctx context.Context, provider fulfillment.ProviderCode, eventID string) (bool, error)
}

// WebhookService verifies, decodes and applies provider push notifications.
// All event-type vocabulary from both providers is translated to the
// lifecycle here and nowhere else.
type WebhookService struct {
	recordService *RecordService
	deduper       EventDeduper
	secrets       map[fulfillment.ProviderCode]string
	logger        *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(
	recordService *RecordService,
	deduper EventDeduper,
	secrets map[fulfillment.ProviderCode]string,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		recordService: recordService,
		deduper:       deduper,
		secrets:       secrets,
		logger:        logger.Named("webhook_service"),
	}
}

// VerifySignature checks the X-Provider-Signature header against an
// HMAC-SHA256 of the raw request body. The comparison is constant time.
func (s *WebhookService) VerifySignature(provider fulfillment.ProviderCode, body []byte, header string) error {
	secret, ok := s.secrets[provider]
	if !ok || secret == "" {
		return fulfillment.ErrProviderNotConfigured
	}

	if !strings.HasPrefix(header, signaturePrefix) {
		return fulfillment.ErrInvalidSignature
	}
	received, err := hex.DecodeString(strings.TrimPrefix(header, signaturePrefix))
	if err != nil {
		return fulfillment.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(received, mac.Sum(nil)) {
		return fulfillment.ErrInvalidSignature
	}
	return nil
}

// Process verifies the signature and applies the event. Unknown event types
// and events for orders this system never submitted are acknowledged as
// logged no-ops so providers stop retrying them.
func (s *WebhookService) Process(ctx context.Context, provider fulfillment.ProviderCode, body []byte, signature string) error {
	if err := s.VerifySignature(provider, body, signature); err != nil {
		s.logger.Warn("webhook signature rejected",
			zap.String("provider", provider.String()))
		return err
	}

	event, err := s.decode(provider, body)
	if err != nil {
		s.logger.Warn("webhook payload rejected",
			zap.String("provider", provider.String()),
			zap.Error(err))
		return err
	}

	target, known := mapEventType(provider, event.EventType)
	if !known {
		s.logger.Warn("unhandled webhook event type",
			zap.String("provider", provider.String()),
			zap.String("event_type", event.EventType),
			zap.String("event_id", event.ID))
		return nil
	}

	// Apply before marking the event consumed: a transient apply failure
	// must leave the event unconsumed so the provider's retry can land.
	changed, err := s.recordService.ApplyStatusByExternal(ctx, provider, event.ExternalOrderID, target, event.Tracking)
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == shared.ErrNotFound.Code {
			s.logger.Warn("webhook for unknown provider order",
				zap.String("provider", provider.String()),
				zap.String("external_order_id", event.ExternalOrderID))
			return nil
		}
		return err
	}

	first, err := s.deduper.MarkConsumed(ctx, provider, event.ID)
	if err != nil {
		// The state change already succeeded; a redelivery replays as a
		// no-op, so ack instead of forcing a retry.
		s.logger.Warn("webhook dedupe write failed",
			zap.String("provider", provider.String()),
			zap.String("event_id", event.ID),
			zap.Error(err))
		return nil
	}
	if !first {
		s.logger.Info("webhook event replayed, ignoring",
			zap.String("provider", provider.String()),
			zap.String("event_id", event.ID))
		return nil
	}
	if !changed {
		s.logger.Info("webhook event carried no new state",
			zap.String("provider", provider.String()),
			zap.String("external_order_id", event.ExternalOrderID),
			zap.String("event_type", event.EventType))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Event type mapping
// ---------------------------------------------------------------------------

// mapEventType is the single translation table from provider event
// vocabularies to the fulfillment lifecycle. Every event type either maps
// here or is reported as unhandled; there is no silent default.
func mapEventType(provider fulfillment.ProviderCode, eventType string) (fulfillment.Status, bool) {
	switch provider {
	case fulfillment.ProviderCodePrintful:
		switch eventType {
		case "order_created":
			return fulfillment.StatusProcessing, true
		case "package_shipped":
			return fulfillment.StatusShipped, true
		case "order_failed":
			return fulfillment.StatusFailed, true
		case "order_canceled":
			return fulfillment.StatusCancelled, true
		}
	case fulfillment.ProviderCodePrintify:
		switch eventType {
		case "order:sent-to-production":
			return fulfillment.StatusProcessing, true
		case "order:shipment:created":
			return fulfillment.StatusShipped, true
		case "order:shipment:delivered":
			return fulfillment.StatusDelivered, true
		case "order:canceled":
			return fulfillment.StatusCancelled, true
		}
	}
	return "", false
}

// ---------------------------------------------------------------------------
// Payload decoding
// ---------------------------------------------------------------------------

type printfulWebhookPayload struct {
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Order struct {
			ID int64 `json:"id"`
		} `json:"order"`
		Shipment struct {
			TrackingNumber string `json:"tracking_number"`
			TrackingURL    string `json:"tracking_url"`
		} `json:"shipment"`
	} `json:"data"`
}

type printifyWebhookPayload struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Resource struct {
		ID   string `json:"id"`
		Data struct {
			Shipment struct {
				Carrier        string `json:"carrier"`
				TrackingNumber string `json:"number"`
				TrackingURL    string `json:"url"`
			} `json:"shipment"`
		} `json:"data"`
	} `json:"resource"`
}

func (s *WebhookService) decode(provider fulfillment.ProviderCode, body []byte) (*fulfillment.WebhookEvent, error) {
	switch provider {
	case fulfillment.ProviderCodePrintful:
		var payload printfulWebhookPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fulfillment.ErrMalformedWebhook
		}
		if payload.Type == "" || payload.Data.Order.ID == 0 {
			return nil, fulfillment.ErrMalformedWebhook
		}
		event := &fulfillment.WebhookEvent{
			// Printful does not send an event ID; one delivery is one
			// (type, order, created) triple.
			ID:              fmt.Sprintf("%s:%d:%d", payload.Type, payload.Data.Order.ID, payload.Created),
			EventType:       payload.Type,
			ExternalOrderID: fmt.Sprintf("%d", payload.Data.Order.ID),
			Provider:        provider,
			CreatedAt:       time.Unix(payload.Created, 0),
		}
		if payload.Data.Shipment.TrackingNumber != "" {
			event.Tracking = &fulfillment.TrackingInfo{
				TrackingNumber: payload.Data.Shipment.TrackingNumber,
				TrackingURL:    payload.Data.Shipment.TrackingURL,
			}
		}
		return event, nil

	case fulfillment.ProviderCodePrintify:
		var payload printifyWebhookPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fulfillment.ErrMalformedWebhook
		}
		if payload.Type == "" || payload.Resource.ID == "" {
			return nil, fulfillment.ErrMalformedWebhook
		}
		event := &fulfillment.WebhookEvent{
			ID:              payload.ID,
			EventType:       payload.Type,
			ExternalOrderID: payload.Resource.ID,
			Provider:        provider,
			CreatedAt:       time.Now(),
		}
		if event.ID == "" {
			event.ID = fmt.Sprintf("%s:%s", payload.Type, payload.Resource.ID)
		}
		if payload.Resource.Data.Shipment.TrackingNumber != "" {
			event.Tracking = &fulfillment.TrackingInfo{
				TrackingNumber: payload.Resource.Data.Shipment.TrackingNumber,
				TrackingURL:    payload.Resource.Data.Shipment.TrackingURL,
			}
		}
		return event, nil
	}

	return nil, fulfillment.ErrProviderNotConfigured
}
