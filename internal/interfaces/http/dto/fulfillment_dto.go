package dto

import (
	"time"

	"github.com/olafkfreund/tshop-sub002/internal/domain/fulfillment"
)

// QuoteItemResponse is a per-line-item estimate within a provider quote
type QuoteItemResponse struct {
	OrderItemID string `json:"order_item_id"`
	UnitCost    string `json:"unit_cost"`
	Available   bool   `json:"available"`
}

// QuoteResponse is one provider's quote for an order
type QuoteResponse struct {
	Provider          string              `json:"provider"`
	TotalCost         string              `json:"total_cost"`
	ShippingCost      string              `json:"shipping_cost"`
	Tax               string              `json:"tax"`
	ProductionDays    int                 `json:"production_days"`
	EstimatedDelivery *time.Time          `json:"estimated_delivery,omitempty"`
	Items             []QuoteItemResponse `json:"items"`
}

// QuoteResultResponse is the per-provider outcome of the quote fan-out.
// Providers that failed to quote carry an error string instead of a quote.
type QuoteResultResponse struct {
	Provider string         `json:"provider"`
	Quote    *QuoteResponse `json:"quote,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// QuoteSummaryResponse aggregates quotes from all registered providers
type QuoteSummaryResponse struct {
	OrderID string                `json:"order_id"`
	Results []QuoteResultResponse `json:"results"`
}

// SubmitOrderRequest selects how the winning provider is chosen
type SubmitOrderRequest struct {
	Strategy string `json:"strategy" binding:"omitempty,oneof=cost speed quality"`
}

// SubmissionResponse reports the outcome of routing an order to a provider.
// A failed submission is still a 200 response with success=false.
type SubmissionResponse struct {
	Success           bool       `json:"success"`
	Provider          string     `json:"provider,omitempty"`
	ExternalOrderID   string     `json:"external_order_id,omitempty"`
	TotalCost         string     `json:"total_cost,omitempty"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
	Error             string     `json:"error,omitempty"`
}

// FulfillmentRecordResponse is the API view of a fulfillment record
type FulfillmentRecordResponse struct {
	ID                string     `json:"id"`
	OrderID           string     `json:"order_id"`
	Provider          string     `json:"provider"`
	ExternalOrderID   string     `json:"external_order_id"`
	Status            string     `json:"status"`
	TrackingNumber    string     `json:"tracking_number,omitempty"`
	TrackingURL       string     `json:"tracking_url,omitempty"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// SyncReportResponse summarizes a manually triggered status sweep
type SyncReportResponse struct {
	Checked  int    `json:"checked"`
	Updated  int    `json:"updated"`
	Failed   int    `json:"failed"`
	Duration string `json:"duration"`
}

// WebhookAckResponse acknowledges an ingested provider webhook
type WebhookAckResponse struct {
	Accepted bool `json:"accepted"`
}

// FromQuote converts a domain quote to its API representation
func FromQuote(q *fulfillment.Quote) *QuoteResponse {
	items := make([]QuoteItemResponse, 0, len(q.Items))
	for _, item := range q.Items {
		items = append(items, QuoteItemResponse{
			OrderItemID: item.OrderItemID.String(),
			UnitCost:    item.UnitCost.StringFixed(2),
			Available:   item.Available,
		})
	}
	return &QuoteResponse{
		Provider:          q.Provider.String(),
		TotalCost:         q.TotalCost.StringFixed(2),
		ShippingCost:      q.ShippingCost.StringFixed(2),
		Tax:               q.Tax.StringFixed(2),
		ProductionDays:    q.ProductionDays,
		EstimatedDelivery: q.EstimatedDelivery,
		Items:             items,
	}
}

// FromRecord converts a domain fulfillment record to its API representation
func FromRecord(r *fulfillment.Record) FulfillmentRecordResponse {
	return FulfillmentRecordResponse{
		ID:                r.ID.String(),
		OrderID:           r.OrderID.String(),
		Provider:          r.Provider.String(),
		ExternalOrderID:   r.ExternalOrderID,
		Status:            r.Status.String(),
		TrackingNumber:    r.TrackingNumber,
		TrackingURL:       r.TrackingURL,
		EstimatedDelivery: r.EstimatedDelivery,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}
