package fulfillment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/olafkfreund/tshop-sub002/internal/domain/commerce"
	"github.com/olafkfreund/tshop-sub002/internal/domain/fulfillment"
	"github.com/olafkfreund/tshop-sub002/internal/domain/shared"
)

// QuoteService fans a quote request out to every registered provider and
// collects whatever comes back. The aggregation itself never fails: a
// provider that errors or times out contributes a failed QuoteResult and the
// rest are returned as-is. Zero usable quotes is a valid outcome.
type QuoteService struct {
	registry  fulfillment.Registry
	orderRepo commerce.OrderRepository
	timeout   time.Duration
	logger    *zap.Logger
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(
	registry fulfillment.Registry,
	orderRepo commerce.OrderRepository,
	timeout time.Duration,
	logger *zap.Logger,
) *QuoteService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &QuoteService{
		registry:  registry,
		orderRepo: orderRepo,
		timeout:   timeout,
		logger:    logger.Named("quote_service"),
	}
}

// QuoteOrder loads the order and gathers quotes from all providers
func (s *QuoteService) QuoteOrder(ctx context.Context, orderID uuid.UUID) (*QuoteSummary, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(order.Items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order has no items to quote")
	}

	results := s.gather(ctx, order)
	return &QuoteSummary{OrderID: orderID, Results: results}, nil
}

// gather runs the fan-out. Results keep the registry's registration order so
// downstream tie-breaking is deterministic regardless of which provider
// answered first.
func (s *QuoteService) gather(ctx context.Context, order *commerce.Order) []QuoteResult {
	providers := s.registry.List()
	results := make([]QuoteResult, len(providers))

	var wg sync.WaitGroup
	for i, provider := range providers {
		wg.Add(1)
		go func(i int, provider fulfillment.Provider) {
			defer wg.Done()

			quoteCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			quote, err := provider.Quote(quoteCtx, order, order.Items)
			if err != nil {
				s.logger.Warn("provider quote failed",
					zap.String("provider", provider.Code().String()),
					zap.String("order_id", order.ID.String()),
					zap.Error(err))
				results[i] = QuoteResult{Provider: provider.Code(), Err: err}
				return
			}
			results[i] = QuoteResult{Provider: provider.Code(), Quote: quote}
		}(i, provider)
	}
	wg.Wait()

	return results
}
