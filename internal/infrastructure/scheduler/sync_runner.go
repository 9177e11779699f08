package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	fulfillmentapp "github.com/olafkfreund/tshop-sub002/internal/application/fulfillment"
)

// SyncExecutor runs one status synchronization sweep over open fulfillment records.
// The application layer's SyncService satisfies this interface.
type SyncExecutor interface {
	SyncPendingOrders(ctx context.Context) (*fulfillmentapp.SyncReport, error)
}

// SyncRunnerConfig holds configuration for the periodic status sync runner
type SyncRunnerConfig struct {
	// Enabled determines if the runner is active
	Enabled bool

	// Interval is how often a sweep is started
	Interval time.Duration

	// SweepTimeout is the maximum time a single sweep can run
	SweepTimeout time.Duration
}

// DefaultSyncRunnerConfig returns default configuration
func DefaultSyncRunnerConfig() SyncRunnerConfig {
	return SyncRunnerConfig{
		Enabled:      true,
		Interval:     5 * time.Minute,
		SweepTimeout: 2 * time.Minute,
	}
}

// Validate validates the configuration
func (c *SyncRunnerConfig) Validate() error {
	if c.Interval <= 0 {
		return ErrInvalidConfig
	}
	if c.SweepTimeout <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// SyncRunner runs fulfillment status sweeps on a fixed interval
type SyncRunner struct {
	executor  SyncExecutor
	logger    *zap.Logger
	config    SyncRunnerConfig
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSyncRunner creates a new status sync runner
func NewSyncRunner(executor SyncExecutor, logger *zap.Logger, config SyncRunnerConfig) (*SyncRunner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &SyncRunner{
		executor: executor,
		logger:   logger,
		config:   config,
	}, nil
}

// Start starts the sync runner
func (r *SyncRunner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.isRunning {
		r.mu.Unlock()
		return nil
	}
	if !r.config.Enabled {
		r.mu.Unlock()
		r.logger.Info("Fulfillment sync runner is disabled")
		return nil
	}
	r.isRunning = true
	r.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go r.run(ctx)

	r.logger.Info("Fulfillment sync runner started",
		zap.Duration("interval", r.config.Interval),
		zap.Duration("sweep_timeout", r.config.SweepTimeout),
	)

	return nil
}

// Stop gracefully stops the runner
func (r *SyncRunner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.isRunning {
		r.mu.Unlock()
		return nil
	}
	r.isRunning = false
	r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}

	// Wait for the loop to finish with timeout
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("Fulfillment sync runner stopped gracefully")
		return nil
	case <-ctx.Done():
		r.logger.Warn("Fulfillment sync runner stop timed out")
		return ctx.Err()
	}
}

// TriggerImmediateSweep runs a sweep right away without waiting for the ticker
func (r *SyncRunner) TriggerImmediateSweep(ctx context.Context) error {
	r.mu.Lock()
	if !r.isRunning {
		r.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	r.wg.Add(1)
	r.mu.Unlock()

	r.logger.Info("Triggering immediate fulfillment status sweep")

	go func() {
		defer r.wg.Done()
		r.executeSweep(ctx)
	}()

	return nil
}

// IsRunning returns whether the runner is active
func (r *SyncRunner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isRunning
}

// run executes sweeps on the configured interval until the context is cancelled
func (r *SyncRunner) run(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("Fulfillment sync loop stopping")
			return
		case <-ticker.C:
			r.executeSweep(ctx)
		}
	}
}

// executeSweep runs a single bounded sweep
func (r *SyncRunner) executeSweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, r.config.SweepTimeout)
	defer cancel()

	startTime := time.Now()
	report, err := r.executor.SyncPendingOrders(sweepCtx)
	duration := time.Since(startTime)

	if err != nil {
		r.logger.Error("Fulfillment status sweep failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}

	r.logger.Info("Fulfillment status sweep completed",
		zap.Duration("duration", duration),
		zap.Int("checked", report.Checked),
		zap.Int("updated", report.Updated),
		zap.Int("failed", report.Failed),
	)
}
