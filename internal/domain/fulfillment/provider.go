package fulfillment

import (
	"context"
	"errors"
	"time"

	"github.com/olafkfreund/tshop-sub002/internal/domain/commerce"
)

// ---------------------------------------------------------------------------
// Provider Errors
// ---------------------------------------------------------------------------

var (
	// Provider errors
	ErrProviderNotConfigured   = errors.New("fulfillment: provider not configured")
	ErrProviderUnavailable     = errors.New("fulfillment: provider temporarily unavailable")
	ErrProviderRequestFailed   = errors.New("fulfillment: provider request failed")
	ErrProviderInvalidResponse = errors.New("fulfillment: invalid provider response")
	ErrProviderAuthFailed      = errors.New("fulfillment: provider authentication failed")
	ErrProviderNotRegistered   = errors.New("fulfillment: provider not registered")

	// Quote errors
	ErrQuoteUnavailable = errors.New("fulfillment: provider cannot quote this order")
	ErrItemNotMappable  = errors.New("fulfillment: no provider catalog mapping for item")

	// Submission errors
	ErrSubmissionFailed      = errors.New("fulfillment: order submission failed")
	ErrConfirmationFailed    = errors.New("fulfillment: order confirmation failed")
	ErrExternalOrderAbsent   = errors.New("fulfillment: external order not found")
	ErrOrderAlreadySubmitted = errors.New("fulfillment: order already submitted for fulfillment")
	ErrRecordWriteFailed     = errors.New("fulfillment: submission accepted but could not be recorded, retry later")

	// Selection errors
	ErrNoEligibleProvider = errors.New("fulfillment: no provider can fulfill every item")
	ErrUnknownStrategy    = errors.New("fulfillment: unknown selection strategy")

	// Webhook errors
	ErrInvalidSignature = errors.New("fulfillment: invalid webhook signature")
	ErrMalformedWebhook = errors.New("fulfillment: malformed webhook payload")
)

// ---------------------------------------------------------------------------
// ProviderCode
// ---------------------------------------------------------------------------

// ProviderCode identifies a print-on-demand provider
type ProviderCode string

const (
	// ProviderCodePrintful represents the Printful fulfillment provider
	ProviderCodePrintful ProviderCode = "PRINTFUL"
	// ProviderCodePrintify represents the Printify fulfillment provider
	ProviderCodePrintify ProviderCode = "PRINTIFY"
)

// IsValid returns true if the provider code is valid
func (c ProviderCode) IsValid() bool {
	switch c {
	case ProviderCodePrintful, ProviderCodePrintify:
		return true
	default:
		return false
	}
}

// String returns the string representation of ProviderCode
func (c ProviderCode) String() string {
	return string(c)
}

// ---------------------------------------------------------------------------
// Provider Port Interface
// ---------------------------------------------------------------------------

// StatusReport is the provider's view of an external order, as returned by a
// status poll. Tracking fields are empty until the provider knows them.
type StatusReport struct {
	Status            Status
	TrackingNumber    string
	TrackingURL       string
	EstimatedDelivery *time.Time
}

// Provider defines the port interface for external print-on-demand providers.
// It is defined in the domain layer; concrete implementations (Printful,
// Printify) live in the infrastructure layer. Adding a provider means
// implementing this interface - no other component may branch on a provider
// name string.
type Provider interface {
	// Code returns the provider code this adapter handles
	Code() ProviderCode

	// Quote computes or estimates production cost and time for the order.
	// An item without a provider catalog mapping is reported as unavailable
	// in the quote rather than as an error. A nil quote with a nil error
	// means the provider declined to quote.
	Quote(ctx context.Context, order *commerce.Order, items []commerce.OrderItem) (*Quote, error)

	// Submit creates a draft order on the provider and returns its external ID
	Submit(ctx context.Context, order *commerce.Order, items []commerce.OrderItem) (string, error)

	// Confirm advances a draft order to production. Providers without a
	// two-phase submission implement this as a no-op.
	Confirm(ctx context.Context, externalOrderID string) error

	// GetStatus fetches the current lifecycle state of an external order
	GetStatus(ctx context.Context, externalOrderID string) (*StatusReport, error)
}

// Registry provides access to configured providers. Registration order is
// stable and doubles as the deterministic tie-break for quote selection.
type Registry interface {
	// Get returns the provider adapter for the given code
	Get(code ProviderCode) (Provider, error)

	// List returns all registered providers in registration order
	List() []Provider
}
