package fulfillment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/olafkfreund/tshop-sub002/internal/domain/commerce"
	"github.com/olafkfreund/tshop-sub002/internal/domain/fulfillment"
	"github.com/olafkfreund/tshop-sub002/internal/domain/shared"
)

// RecordService is the single write path for fulfillment records. Submission,
// the status synchronizer and webhook ingest all mutate records through it,
// so the advance-only lifecycle guard and order status promotion live in one
// place.
type RecordService struct {
	recordRepo fulfillment.RecordRepository
	orderRepo  commerce.OrderRepository
	logger     *zap.Logger
}

// NewRecordService creates a new RecordService
func NewRecordService(
	recordRepo fulfillment.RecordRepository,
	orderRepo commerce.OrderRepository,
	logger *zap.Logger,
) *RecordService {
	return &RecordService{
		recordRepo: recordRepo,
		orderRepo:  orderRepo,
		logger:     logger.Named("record_service"),
	}
}

// RecordSubmission upserts the record for a freshly submitted order. Orders
// with a live or delivered record reject the write; only a resubmission
// after failure re-points the existing record at the new provider order and
// restarts the lifecycle.
func (s *RecordService) RecordSubmission(
	ctx context.Context,
	orderID uuid.UUID,
	provider fulfillment.ProviderCode,
	externalOrderID string,
) (*fulfillment.Record, error) {
	record, err := s.recordRepo.FindByOrderID(ctx, orderID)
	switch {
	case err == nil:
		if record.Status != fulfillment.StatusFailed {
			return nil, fulfillment.ErrOrderAlreadySubmitted
		}
		record.Provider = provider
		record.ExternalOrderID = externalOrderID
		record.Status = fulfillment.StatusPending
		record.TrackingNumber = ""
		record.TrackingURL = ""
		record.EstimatedDelivery = nil
	case errors.Is(err, shared.ErrNotFound):
		record = fulfillment.NewRecord(orderID, provider, externalOrderID)
	default:
		return nil, err
	}

	if err := s.recordRepo.Upsert(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// GetByOrderID returns the fulfillment record for an order
func (s *RecordService) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*fulfillment.Record, error) {
	return s.recordRepo.FindByOrderID(ctx, orderID)
}

// ApplyStatus advances a record and persists it. Transitions the lifecycle
// rejects are dropped without error; replays still refresh tracking details.
// Reaching SHIPPED or DELIVERED promotes the parent order. The upsert
// reconciles against the persisted row, so record reflects the state that
// won even when this writer held a stale snapshot.
func (s *RecordService) ApplyStatus(
	ctx context.Context,
	record *fulfillment.Record,
	target fulfillment.Status,
	tracking *fulfillment.TrackingInfo,
) (bool, error) {
	before := record.Status
	record.ApplyStatus(target, tracking)

	if err := s.recordRepo.Upsert(ctx, record); err != nil {
		return false, err
	}
	if record.Status == before {
		return false, nil
	}

	s.logger.Info("fulfillment status advanced",
		zap.String("order_id", record.OrderID.String()),
		zap.String("provider", record.Provider.String()),
		zap.String("status", record.Status.String()))

	s.promoteOrder(ctx, record)
	return true, nil
}

// ApplyStatusByExternal resolves the record owning a provider order ID and
// advances it. Used by webhook ingest.
func (s *RecordService) ApplyStatusByExternal(
	ctx context.Context,
	provider fulfillment.ProviderCode,
	externalOrderID string,
	target fulfillment.Status,
	tracking *fulfillment.TrackingInfo,
) (bool, error) {
	record, err := s.recordRepo.FindByProviderOrder(ctx, provider, externalOrderID)
	if err != nil {
		return false, err
	}
	return s.ApplyStatus(ctx, record, target, tracking)
}

// promotionSequence is the forward order lifecycle. The order status only
// moves one step at a time, so a promotion walks every intermediate state.
var promotionSequence = []commerce.OrderStatus{
	commerce.OrderStatusPaid,
	commerce.OrderStatusProcessing,
	commerce.OrderStatusShipped,
	commerce.OrderStatusDelivered,
}

// promotionSteps returns the statuses an order must pass through to reach
// target, or nil when target is not ahead of from on the forward path
func promotionSteps(from, target commerce.OrderStatus) []commerce.OrderStatus {
	start, end := -1, -1
	for i, status := range promotionSequence {
		if status == from {
			start = i
		}
		if status == target {
			end = i
		}
	}
	if start < 0 || end <= start {
		return nil
	}
	return promotionSequence[start+1 : end+1]
}

// promoteOrder mirrors SHIPPED and DELIVERED onto the parent order, walking
// intermediate states the order lifecycle requires. A promotion the
// lifecycle forbids is logged and skipped; the record keeps its state
// either way.
func (s *RecordService) promoteOrder(ctx context.Context, record *fulfillment.Record) {
	var target commerce.OrderStatus
	switch record.Status {
	case fulfillment.StatusShipped:
		target = commerce.OrderStatusShipped
	case fulfillment.StatusDelivered:
		target = commerce.OrderStatusDelivered
	default:
		return
	}

	order, err := s.orderRepo.FindByID(ctx, record.OrderID)
	if err != nil {
		s.logger.Warn("order promotion skipped, order not found",
			zap.String("order_id", record.OrderID.String()),
			zap.Error(err))
		return
	}
	if order.Status == target {
		return
	}

	steps := promotionSteps(order.Status, target)
	if len(steps) == 0 {
		s.logger.Warn("order promotion skipped, transition not allowed",
			zap.String("order_id", order.ID.String()),
			zap.String("from", order.Status.String()),
			zap.String("to", target.String()))
		return
	}
	for _, step := range steps {
		if err := s.orderRepo.UpdateStatus(ctx, order.ID, step); err != nil {
			s.logger.Error("order promotion failed",
				zap.String("order_id", order.ID.String()),
				zap.String("to", step.String()),
				zap.Error(err))
			return
		}
	}

	s.logger.Info("order promoted",
		zap.String("order_id", order.ID.String()),
		zap.String("from", order.Status.String()),
		zap.String("to", target.String()))
}
