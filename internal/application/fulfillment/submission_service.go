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

// SubmissionService routes a paid order to a fulfillment provider: fan out
// quotes, select by strategy, submit and confirm, then write the record. The
// whole orchestration is error-contained; the caller always gets a
// SubmissionResult and failures arrive as Success=false with a message.
type SubmissionService struct {
	quoteService  *QuoteService
	recordService *RecordService
	registry      fulfillment.Registry
	orderRepo     commerce.OrderRepository
	selector      *Selector
	logger        *zap.Logger
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(
	quoteService *QuoteService,
	recordService *RecordService,
	registry fulfillment.Registry,
	orderRepo commerce.OrderRepository,
	selector *Selector,
	logger *zap.Logger,
) *SubmissionService {
	return &SubmissionService{
		quoteService:  quoteService,
		recordService: recordService,
		registry:      registry,
		orderRepo:     orderRepo,
		selector:      selector,
		logger:        logger.Named("submission_service"),
	}
}

// SubmitOrder quotes, selects and submits an order in one pass. An order
// whose record is anywhere but FAILED is rejected before any provider is
// contacted, so a repeated submission cannot place a second external order.
func (s *SubmissionService) SubmitOrder(ctx context.Context, orderID uuid.UUID, strategy Strategy) *SubmissionResult {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return s.failure(orderID, "", err)
	}

	if existing, err := s.recordService.GetByOrderID(ctx, orderID); err == nil {
		if existing.Status != fulfillment.StatusFailed {
			return s.failure(orderID, existing.Provider, fulfillment.ErrOrderAlreadySubmitted)
		}
	} else if !errors.Is(err, shared.ErrNotFound) {
		return s.failure(orderID, "", fulfillment.ErrSubmissionFailed)
	}

	results := s.quoteService.gather(ctx, order)

	quote, err := s.selector.Select(results, strategy)
	if err != nil {
		return s.failure(orderID, "", err)
	}

	provider, err := s.registry.Get(quote.Provider)
	if err != nil {
		return s.failure(orderID, quote.Provider, err)
	}

	return s.submitTo(ctx, order, provider, quote)
}

// submitTo performs the two-phase handoff. Confirm is a no-op for providers
// whose submission is single-phase.
func (s *SubmissionService) submitTo(
	ctx context.Context,
	order *commerce.Order,
	provider fulfillment.Provider,
	quote *fulfillment.Quote,
) *SubmissionResult {
	externalID, err := provider.Submit(ctx, order, order.Items)
	if err != nil {
		s.logger.Error("provider submission failed",
			zap.String("order_id", order.ID.String()),
			zap.String("provider", provider.Code().String()),
			zap.Error(err))
		return s.failure(order.ID, provider.Code(), fulfillment.ErrSubmissionFailed)
	}

	if err := provider.Confirm(ctx, externalID); err != nil {
		s.logger.Error("provider confirmation failed",
			zap.String("order_id", order.ID.String()),
			zap.String("provider", provider.Code().String()),
			zap.String("external_order_id", externalID),
			zap.Error(err))
		return s.failure(order.ID, provider.Code(), fulfillment.ErrConfirmationFailed)
	}

	record, err := s.recordService.RecordSubmission(ctx, order.ID, provider.Code(), externalID)
	if err != nil {
		s.logger.Error("fulfillment record write failed",
			zap.String("order_id", order.ID.String()),
			zap.String("external_order_id", externalID),
			zap.Error(err))
		return s.failure(order.ID, provider.Code(), fulfillment.ErrRecordWriteFailed)
	}

	if order.Status.CanTransitionTo(commerce.OrderStatusProcessing) {
		if err := s.orderRepo.UpdateStatus(ctx, order.ID, commerce.OrderStatusProcessing); err != nil {
			s.logger.Error("order status update failed",
				zap.String("order_id", order.ID.String()),
				zap.Error(err))
		}
	}

	s.logger.Info("order submitted for fulfillment",
		zap.String("order_id", order.ID.String()),
		zap.String("provider", record.Provider.String()),
		zap.String("external_order_id", record.ExternalOrderID))

	return &SubmissionResult{
		Success:           true,
		Provider:          record.Provider,
		ExternalOrderID:   record.ExternalOrderID,
		TotalCost:         quote.TotalCost,
		EstimatedDelivery: quote.EstimatedDelivery,
	}
}

func (s *SubmissionService) failure(orderID uuid.UUID, provider fulfillment.ProviderCode, err error) *SubmissionResult {
	s.logger.Warn("order submission did not complete",
		zap.String("order_id", orderID.String()),
		zap.Error(err))
	return &SubmissionResult{
		Success:  false,
		Provider: provider,
		Error:    err.Error(),
	}
}
