package fulfillment

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/olafkfreund/tshop-sub002/internal/domain/fulfillment"
)

// SyncService polls providers for the current state of every in-flight
// fulfillment record. One record failing to sync never stops the sweep; the
// failure is counted, logged and the rest of the batch proceeds.
type SyncService struct {
	recordRepo    fulfillment.RecordRepository
	recordService *RecordService
	registry      fulfillment.Registry
	concurrency   int
	logger        *zap.Logger
}

// NewSyncService creates a new SyncService
func NewSyncService(
	recordRepo fulfillment.RecordRepository,
	recordService *RecordService,
	registry fulfillment.Registry,
	concurrency int,
	logger *zap.Logger,
) *SyncService {
	if concurrency <= 0 {
		concurrency = 5
	}
	return &SyncService{
		recordRepo:    recordRepo,
		recordService: recordService,
		registry:      registry,
		concurrency:   concurrency,
		logger:        logger.Named("sync_service"),
	}
}

// SyncPendingOrders sweeps all non-terminal records once
func (s *SyncService) SyncPendingOrders(ctx context.Context) (*SyncReport, error) {
	start := time.Now()

	records, err := s.recordRepo.FindNonTerminal(ctx)
	if err != nil {
		return nil, err
	}

	var updated, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range records {
		record := records[i]
		g.Go(func() error {
			changed, err := s.syncRecord(gctx, &record)
			if err != nil {
				failed.Add(1)
				s.logger.Warn("record sync failed",
					zap.String("order_id", record.OrderID.String()),
					zap.String("provider", record.Provider.String()),
					zap.Error(err))
				// Failures stay inside the sweep.
				return nil
			}
			if changed {
				updated.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &SyncReport{
		Checked:  len(records),
		Updated:  int(updated.Load()),
		Failed:   int(failed.Load()),
		Duration: time.Since(start),
	}

	s.logger.Info("status sweep completed",
		zap.Int("checked", report.Checked),
		zap.Int("updated", report.Updated),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", report.Duration))

	return report, nil
}

func (s *SyncService) syncRecord(ctx context.Context, record *fulfillment.Record) (bool, error) {
	provider, err := s.registry.Get(record.Provider)
	if err != nil {
		return false, err
	}

	report, err := provider.GetStatus(ctx, record.ExternalOrderID)
	if err != nil {
		return false, err
	}

	tracking := &fulfillment.TrackingInfo{
		TrackingNumber:    report.TrackingNumber,
		TrackingURL:       report.TrackingURL,
		EstimatedDelivery: report.EstimatedDelivery,
	}
	return s.recordService.ApplyStatus(ctx, record, report.Status, tracking)
}
