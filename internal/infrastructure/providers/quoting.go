package providers

import (
	"github.com/shopspring/decimal"

	"github.com/olafkfreund/tshop-sub002/internal/domain/commerce"
	"github.com/olafkfreund/tshop-sub002/internal/domain/fulfillment"
)

// Quoter estimates per-item production costs for an adapter. Adapters that
// have a live pricing API wrap it in a Quoter; the others fall back to
// StaticQuoter. Swapping quoting behavior never touches adapter code.
type Quoter interface {
	// QuoteItems returns one estimate per order item plus the estimated
	// production time in business days
	QuoteItems(items []commerce.OrderItem) ([]fulfillment.QuoteItem, int)
}

// StaticQuoter estimates production cost as a fixed share of the retail
// price. Good enough for providers that expose no pricing API; the real
// cost is reconciled at invoicing.
type StaticQuoter struct {
	// CostRatio is the production cost as a share of the retail unit price
	CostRatio decimal.Decimal
	// ProductionDays is the flat production time estimate
	ProductionDays int
	// CanProduce reports whether a variant has a catalog mapping
	CanProduce func(variantID string) bool
}

var _ Quoter = (*StaticQuoter)(nil)

// QuoteItems estimates each item independently. Unmappable variants are
// reported as unavailable rather than dropped.
func (q *StaticQuoter) QuoteItems(items []commerce.OrderItem) ([]fulfillment.QuoteItem, int) {
	quoted := make([]fulfillment.QuoteItem, len(items))
	for i, item := range items {
		available := q.CanProduce == nil || q.CanProduce(item.VariantID)
		quoted[i] = fulfillment.QuoteItem{
			OrderItemID: item.ID,
			UnitCost:    item.UnitPrice.Mul(q.CostRatio).Round(2),
			Available:   available,
		}
	}
	return quoted, q.ProductionDays
}

// itemsSubtotal sums quantity-weighted unit costs for available items
func itemsSubtotal(items []commerce.OrderItem, quoted []fulfillment.QuoteItem) decimal.Decimal {
	total := decimal.Zero
	for i, item := range items {
		if !quoted[i].Available {
			continue
		}
		total = total.Add(quoted[i].UnitCost.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
