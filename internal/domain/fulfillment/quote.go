package fulfillment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteItem is a per-line-item cost estimate within a quote. An item the
// provider has no catalog mapping for is marked unavailable instead of
// failing the whole quote.
type QuoteItem struct {
	// OrderItemID references the commerce order item this estimate is for
	OrderItemID uuid.UUID
	// UnitCost is the provider's production cost per unit
	UnitCost decimal.Decimal
	// Available is false when the variant has no provider catalog mapping
	Available bool
}

// Quote is an ephemeral cost/time estimate for producing and shipping one
// order through one provider. Quotes are compared, never persisted.
type Quote struct {
	// Provider identifies which provider produced this quote
	Provider ProviderCode
	// TotalCost is production + shipping + tax
	TotalCost decimal.Decimal
	// ShippingCost is the shipping portion of the total
	ShippingCost decimal.Decimal
	// Tax is the tax portion of the total
	Tax decimal.Decimal
	// ProductionDays is the estimated production time in business days
	ProductionDays int
	// EstimatedDelivery is the projected delivery date, if the provider
	// reports one
	EstimatedDelivery *time.Time
	// Items holds the per-item estimates, one per order item
	Items []QuoteItem
}

// AllItemsAvailable returns true if every item in the quote has a provider
// catalog mapping. Only such quotes are eligible for selection: this design
// does not split one order across providers.
func (q *Quote) AllItemsAvailable() bool {
	for _, item := range q.Items {
		if !item.Available {
			return false
		}
	}
	return true
}
