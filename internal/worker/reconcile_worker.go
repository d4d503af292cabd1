package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/condo-care/backend/internal/domain"
	"github.com/condo-care/backend/internal/observability/metrics"
)

// ReconcileWorker periodically resyncs the denormalized like/dislike
// counters with the reaction rows. Counters can drift when a process
// dies between the reaction write and the counter write; the worker
// makes that drift temporary.
type ReconcileWorker struct {
	reconciler domain.CounterReconciler
	logger     *slog.Logger
	interval   time.Duration
}

// NewReconcileWorker creates a new reconcile worker
func NewReconcileWorker(reconciler domain.CounterReconciler, logger *slog.Logger, interval time.Duration) *ReconcileWorker {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &ReconcileWorker{
		reconciler: reconciler,
		logger:     logger,
		interval:   interval,
	}
}

// Start begins the reconcile loop and blocks until ctx is cancelled
func (w *ReconcileWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("reconcile worker started", slog.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("reconcile worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *ReconcileWorker) runOnce(ctx context.Context) {
	corrected, err := w.reconciler.ReconcileCounters()
	if err != nil {
		w.logger.Error("counter reconciliation failed", slog.String("error", err.Error()))
		metrics.ObserveReconcile("error", 0)
		return
	}

	metrics.ObserveReconcile("success", corrected)
	if corrected > 0 {
		w.logger.Warn("corrected drifted reaction counters", slog.Int64("reports", corrected))
	} else {
		w.logger.Debug("reaction counters consistent")
	}
}
