package fulfillment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/olafkfreund/tshop-sub002/internal/domain/fulfillment"
)

// QuoteResult is the per-provider outcome of a quote fan-out. Exactly one of
// Quote and Err is set.
type QuoteResult struct {
	Provider fulfillment.ProviderCode
	Quote    *fulfillment.Quote
	Err      error
}

// QuoteSummary is the aggregated fan-out response
type QuoteSummary struct {
	OrderID uuid.UUID
	Results []QuoteResult
}

// SubmissionResult reports the outcome of routing an order to a provider.
// Submission never returns an error to its caller; failures are carried here.
type SubmissionResult struct {
	Success           bool
	Provider          fulfillment.ProviderCode
	ExternalOrderID   string
	TotalCost         decimal.Decimal
	EstimatedDelivery *time.Time
	Error             string
}

// SyncReport summarizes one synchronizer sweep
type SyncReport struct {
	Checked  int
	Updated  int
	Failed   int
	Duration time.Duration
}
