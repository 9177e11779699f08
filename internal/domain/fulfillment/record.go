package fulfillment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Status
// ---------------------------------------------------------------------------

// Status represents the lifecycle state of a fulfillment record.
//
// The lifecycle is monotonic:
//
//	PENDING -> PROCESSING -> PRINTED (optional) -> SHIPPED -> DELIVERED
//
// Any non-terminal state may also move to CANCELLED or FAILED. DELIVERED,
// CANCELLED and FAILED are terminal and accept no further transition.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusPrinted    Status = "PRINTED"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
	StatusFailed     Status = "FAILED"
)

// IsValid returns true if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusPrinted, StatusShipped,
		StatusDelivered, StatusCancelled, StatusFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if the status accepts no further transition
func (s Status) IsTerminal() bool {
	switch s {
	case StatusDelivered, StatusCancelled, StatusFailed:
		return true
	default:
		return false
	}
}

// rank orders the forward lifecycle. Terminal aborts sit outside the
// progression and are handled by CanTransitionTo directly.
func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusProcessing:
		return 1
	case StatusPrinted:
		return 2
	case StatusShipped:
		return 3
	case StatusDelivered:
		return 4
	default:
		return -1
	}
}

// IsFurtherAlongThan reports whether s is strictly later in the forward
// lifecycle than other. Concurrent writers (poll sweep and webhook ingest)
// resolve conflicts with "most-advanced state wins", so an equal or earlier
// state never overwrites a later one.
func (s Status) IsFurtherAlongThan(other Status) bool {
	sr, or := s.rank(), other.rank()
	if sr < 0 || or < 0 {
		return false
	}
	return sr > or
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	if s.IsTerminal() {
		return false
	}
	if target == StatusCancelled || target == StatusFailed {
		return true
	}
	return target.IsFurtherAlongThan(s)
}

// ---------------------------------------------------------------------------
// FulfillmentRecord
// ---------------------------------------------------------------------------

// TrackingInfo carries shipment tracking details attached to a status change
type TrackingInfo struct {
	TrackingNumber    string
	TrackingURL       string
	EstimatedDelivery *time.Time
}

// Record is the durable per-order fulfillment state: which provider is
// producing the order and where it is in the lifecycle. Exactly one record
// exists per order; it is created on first submission, mutated only through
// the record store and never deleted.
type Record struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	Provider          ProviderCode
	ExternalOrderID   string
	Status            Status
	TrackingNumber    string
	TrackingURL       string
	EstimatedDelivery *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewRecord creates a fulfillment record for a freshly submitted order
func NewRecord(orderID uuid.UUID, provider ProviderCode, externalOrderID string) *Record {
	now := time.Now()
	return &Record{
		ID:              uuid.New(),
		OrderID:         orderID,
		Provider:        provider,
		ExternalOrderID: externalOrderID,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// ApplyStatus advances the record to target and attaches tracking info.
// It returns false without mutating when the transition is not permitted,
// which makes replayed webhooks and stale polls no-ops.
func (r *Record) ApplyStatus(target Status, tracking *TrackingInfo) bool {
	if r.Status == target {
		// Idempotent replay: refresh tracking details only, never regress.
		r.applyTracking(tracking)
		return false
	}
	if !r.Status.CanTransitionTo(target) {
		return false
	}
	r.Status = target
	r.applyTracking(tracking)
	r.UpdatedAt = time.Now()
	return true
}

// Reconcile folds an incoming write into r, the currently persisted row.
// The store re-reads the row under lock before writing, so a writer holding
// a stale snapshot cannot regress a row another writer already advanced:
// a status the row cannot transition to is dropped, an equal status only
// refreshes tracking, and a write re-pointing the record at a different
// provider order replaces the row wholesale. It reports whether the row
// changed and must be written back.
func (r *Record) Reconcile(incoming *Record) bool {
	if incoming.Provider != r.Provider || incoming.ExternalOrderID != r.ExternalOrderID {
		r.Provider = incoming.Provider
		r.ExternalOrderID = incoming.ExternalOrderID
		r.Status = incoming.Status
		r.TrackingNumber = incoming.TrackingNumber
		r.TrackingURL = incoming.TrackingURL
		r.EstimatedDelivery = incoming.EstimatedDelivery
		r.UpdatedAt = time.Now()
		return true
	}

	if r.Status == incoming.Status {
		return r.mergeTracking(incoming)
	}
	if !r.Status.CanTransitionTo(incoming.Status) {
		return false
	}
	r.Status = incoming.Status
	r.mergeTracking(incoming)
	r.UpdatedAt = time.Now()
	return true
}

// mergeTracking carries non-empty tracking fields from incoming onto r
func (r *Record) mergeTracking(incoming *Record) bool {
	changed := false
	if incoming.TrackingNumber != "" && incoming.TrackingNumber != r.TrackingNumber {
		r.TrackingNumber = incoming.TrackingNumber
		changed = true
	}
	if incoming.TrackingURL != "" && incoming.TrackingURL != r.TrackingURL {
		r.TrackingURL = incoming.TrackingURL
		changed = true
	}
	if incoming.EstimatedDelivery != nil {
		r.EstimatedDelivery = incoming.EstimatedDelivery
		changed = true
	}
	if changed {
		r.UpdatedAt = time.Now()
	}
	return changed
}

func (r *Record) applyTracking(tracking *TrackingInfo) {
	if tracking == nil {
		return
	}
	if tracking.TrackingNumber != "" {
		r.TrackingNumber = tracking.TrackingNumber
	}
	if tracking.TrackingURL != "" {
		r.TrackingURL = tracking.TrackingURL
	}
	if tracking.EstimatedDelivery != nil {
		r.EstimatedDelivery = tracking.EstimatedDelivery
	}
}

// ---------------------------------------------------------------------------
// Repository
// ---------------------------------------------------------------------------

// RecordRepository is the persistence port for fulfillment records. Upsert is
// the only mutation: concurrent writers keyed by order ID converge on one row.
type RecordRepository interface {
	// FindByOrderID returns the record for an order, or shared.ErrNotFound
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*Record, error)

	// FindByProviderOrder returns the record owning an external order ID
	FindByProviderOrder(ctx context.Context, provider ProviderCode, externalOrderID string) (*Record, error)

	// FindNonTerminal returns all records still in flight, ordered by
	// creation time, for the status synchronizer sweep
	FindNonTerminal(ctx context.Context) ([]Record, error)

	// Upsert atomically creates the record for its order ID or reconciles
	// the write into the existing row under the most-advanced-state-wins
	// rule. On return record mirrors the persisted row, so callers holding
	// a stale snapshot observe the state that actually won.
	Upsert(ctx context.Context, record *Record) error
}
