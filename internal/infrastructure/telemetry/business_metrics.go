// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the manufacturing backend.
// It tracks order intake, work order flow and drawing takeoff activity.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	orderCreatedTotal        *Counter
	orderEstimatedCostTotal  *Counter
	workOrderTransitionTotal *Counter
	drawingSaveConflictTotal *Counter

	// Gauge metrics (point-in-time values)
	openWorkOrderCount *Gauge
	overdueOrderCount  *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data provider for periodic collection
	productionProvider ProductionMetricsProvider
}

// ProductionMetricsProvider provides shop-floor data for periodic metrics
// collection. This interface allows the telemetry layer to query production
// state without depending on the production domain directly.
type ProductionMetricsProvider interface {
	// GetOpenWorkOrderCountByStatus returns the number of non-terminal work
	// orders per status for a company
	GetOpenWorkOrderCountByStatus(ctx context.Context, companyID uuid.UUID) (map[string]int64, error)

	// GetOverdueOrderCount returns the number of confirmed orders past their
	// required date for a company
	GetOverdueOrderCount(ctx context.Context, companyID uuid.UUID) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter              metric.Meter
	Logger             *zap.Logger
	CollectInterval    time.Duration // Default: 5 minutes
	ProductionProvider ProductionMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:              cfg.Meter,
		logger:             logger,
		stopChan:           make(chan struct{}),
		productionProvider: cfg.ProductionProvider,
	}

	// Instrument creation only fails on a bad name, so accumulate the first
	// error instead of threading err through every call.
	var err error
	counter := func(name, description, unit string) *Counter {
		if err != nil {
			return nil
		}
		var c *Counter
		c, err = NewCounter(cfg.Meter, name, description, unit)
		return c
	}
	gauge := func(name, description, unit string) *Gauge {
		if err != nil {
			return nil
		}
		var g *Gauge
		g, err = NewGauge(cfg.Meter, name, description, unit)
		return g
	}

	bm.orderCreatedTotal = counter("fabmate_order_created_total", "Total number of orders created", "{orders}")
	bm.orderEstimatedCostTotal = counter("fabmate_order_estimated_cost_total", "Total estimated order cost in cents", "{cents}")
	bm.workOrderTransitionTotal = counter("fabmate_work_order_transition_total", "Total number of work order status transitions", "{transitions}")
	bm.drawingSaveConflictTotal = counter("fabmate_drawing_save_conflict_total", "Total number of rejected drawing saves due to version conflicts", "{conflicts}")
	bm.openWorkOrderCount = gauge("fabmate_open_work_order_count", "Current number of non-terminal work orders", "{work_orders}")
	bm.overdueOrderCount = gauge("fabmate_overdue_order_count", "Number of confirmed orders past their required date", "{orders}")
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Order Metrics
// =============================================================================

// RecordOrderCreated records an order creation event.
// This should be called from the application layer when an order is created.
func (bm *BusinessMetrics) RecordOrderCreated(ctx context.Context, companyID uuid.UUID) {
	bm.orderCreatedTotal.Inc(ctx,
		AttrCompanyID.String(companyID.String()),
	)
}

// RecordOrderEstimatedCost records the estimated cost of a created order.
// Amount should be in the smallest currency unit (cents).
func (bm *BusinessMetrics) RecordOrderEstimatedCost(ctx context.Context, companyID uuid.UUID, amountCents int64) {
	bm.orderEstimatedCostTotal.Add(ctx, amountCents,
		AttrCompanyID.String(companyID.String()),
	)
}

// RecordOrderWithCost is a convenience method that records both order count and cost.
func (bm *BusinessMetrics) RecordOrderWithCost(ctx context.Context, companyID uuid.UUID, estimatedCost decimal.Decimal) {
	bm.RecordOrderCreated(ctx, companyID)

	// Convert to cents (multiply by 100)
	amountCents := estimatedCost.Mul(decimal.NewFromInt(100)).IntPart()
	bm.RecordOrderEstimatedCost(ctx, companyID, amountCents)
}

// =============================================================================
// Work Order Metrics
// =============================================================================

// RecordWorkOrderTransition records a work order status transition.
// This should be called when a work order is released, started, completed or cancelled.
func (bm *BusinessMetrics) RecordWorkOrderTransition(ctx context.Context, companyID uuid.UUID, workOrderType, fromStatus, toStatus string) {
	bm.workOrderTransitionTotal.Inc(ctx,
		AttrCompanyID.String(companyID.String()),
		AttrWorkOrderType.String(workOrderType),
		AttrTransitionFrom.String(fromStatus),
		AttrWorkOrderStatus.String(toStatus),
	)
}

// =============================================================================
// Takeoff Metrics
// =============================================================================

// RecordDrawingSaveConflict records a drawing autosave rejected by the
// version check. A sustained rate here points at clients fighting over the
// same drawing.
func (bm *BusinessMetrics) RecordDrawingSaveConflict(ctx context.Context, companyID, drawingID uuid.UUID) {
	bm.drawingSaveConflictTotal.Inc(ctx,
		AttrCompanyID.String(companyID.String()),
		AttrDrawingID.String(drawingID.String()),
	)
}

// =============================================================================
// Production Gauges
// =============================================================================

// RecordOpenWorkOrderCount records the current number of open work orders in
// a status. This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordOpenWorkOrderCount(ctx context.Context, companyID uuid.UUID, status string, count int64) {
	bm.openWorkOrderCount.Record(ctx, count,
		AttrCompanyID.String(companyID.String()),
		AttrWorkOrderStatus.String(status),
	)
}

// RecordOverdueOrderCount records the number of overdue orders.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordOverdueOrderCount(ctx context.Context, companyID uuid.UUID, count int64) {
	bm.overdueOrderCount.Record(ctx, count,
		AttrCompanyID.String(companyID.String()),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// CompanyProvider provides company IDs for periodic metrics collection.
type CompanyProvider interface {
	GetActiveCompanyIDs(ctx context.Context) ([]uuid.UUID, error)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects production metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, companyProvider CompanyProvider, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, companyProvider, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, companyProvider CompanyProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectProductionMetrics(ctx, companyProvider)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectProductionMetrics(ctx, companyProvider)
		}
	}
}

// collectProductionMetrics collects production gauge metrics for all companies.
func (bm *BusinessMetrics) collectProductionMetrics(ctx context.Context, companyProvider CompanyProvider) {
	if bm.productionProvider == nil {
		bm.logger.Debug("No production provider configured, skipping production metrics collection")
		return
	}

	companyIDs, err := companyProvider.GetActiveCompanyIDs(ctx)
	if err != nil {
		bm.logger.Error("Failed to get company IDs for metrics collection", zap.Error(err))
		return
	}

	for _, companyID := range companyIDs {
		bm.collectCompanyProductionMetrics(ctx, companyID)
	}
}

// collectCompanyProductionMetrics collects production metrics for a single company.
func (bm *BusinessMetrics) collectCompanyProductionMetrics(ctx context.Context, companyID uuid.UUID) {
	// Collect open work order counts by status
	openByStatus, err := bm.productionProvider.GetOpenWorkOrderCountByStatus(ctx, companyID)
	if err != nil {
		bm.logger.Warn("Failed to get open work order counts for company",
			zap.String("company_id", companyID.String()),
			zap.Error(err),
		)
	} else {
		for status, count := range openByStatus {
			bm.RecordOpenWorkOrderCount(ctx, companyID, status, count)
		}
	}

	// Collect overdue order count
	overdueCount, err := bm.productionProvider.GetOverdueOrderCount(ctx, companyID)
	if err != nil {
		bm.logger.Warn("Failed to get overdue order count for company",
			zap.String("company_id", companyID.String()),
			zap.Error(err),
		)
	} else {
		bm.RecordOverdueOrderCount(ctx, companyID, overdueCount)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// =============================================================================
// Attribute Key Constants
// =============================================================================

// Business metrics attribute keys not already defined in metrics.go
var (
	// AttrTransitionFrom labels the status a work order left during a transition
	AttrTransitionFrom = attribute.Key("transition_from")
)
