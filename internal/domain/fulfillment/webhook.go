package fulfillment

import "time"

// WebhookEvent is a provider push notification after signature verification
// and payload decoding. EventType carries the provider's own vocabulary;
// mapping to a lifecycle Status happens centrally in the webhook service.
type WebhookEvent struct {
	// ID is the provider-assigned event identifier, used for replay dedupe.
	// Providers that omit one get a synthetic ID derived from the payload.
	ID string

	// EventType is the provider's event name, e.g. "package_shipped" or
	// "order:shipment:created"
	EventType string

	// ExternalOrderID identifies the provider-side order the event concerns
	ExternalOrderID string

	Provider  ProviderCode
	Tracking  *TrackingInfo
	CreatedAt time.Time
}
