// Package telemetry provides OpenTelemetry integration for database metrics collection.
package telemetry

import (
	"cmp"
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBMetricsConfig controls query and connection pool instrumentation.
type DBMetricsConfig struct {
	Enabled bool
	// SlowQueryThreshold marks queries slower than this as slow (default 200ms).
	// Takeoff autosave writes and BOM rollup reads are the usual offenders.
	SlowQueryThreshold time.Duration
	// PoolStatsInterval is the sampling period for sql.DB pool stats (default 15s).
	PoolStatsInterval time.Duration
}

// DefaultDBMetricsConfig returns the production defaults.
func DefaultDBMetricsConfig() DBMetricsConfig {
	return DBMetricsConfig{
		Enabled:            true,
		SlowQueryThreshold: 200 * time.Millisecond,
		PoolStatsInterval:  15 * time.Second,
	}
}

// DBMetrics owns the database instruments: per-operation query counts and
// latencies, a slow-query counter keyed by table, and pool gauges.
type DBMetrics struct {
	poolConnections    *Gauge
	poolConnectionsMax *Gauge

	queryTotal     *Counter
	queryDuration  *Histogram
	slowQueryTotal *Counter

	config   DBMetricsConfig
	logger   *zap.Logger
	sqlDB    *sql.DB
	stopCh   chan struct{}
	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopOnce sync.Once
}

// NewDBMetrics builds the instruments on the given meter.
func NewDBMetrics(meter metric.Meter, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.SlowQueryThreshold = cmp.Or(cfg.SlowQueryThreshold, 200*time.Millisecond)
	cfg.PoolStatsInterval = cmp.Or(cfg.PoolStatsInterval, 15*time.Second)

	dm := &DBMetrics{
		config: cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	var err error
	if dm.poolConnections, err = NewGauge(meter, "db_pool_connections",
		"Number of connections in the pool by state", "{connection}"); err != nil {
		return nil, err
	}
	if dm.poolConnectionsMax, err = NewGauge(meter, "db_pool_connections_max",
		"Maximum number of connections in the pool", "{connection}"); err != nil {
		return nil, err
	}
	if dm.queryTotal, err = NewCounter(meter, "db_query_total",
		"Total number of database queries by operation type", "{query}"); err != nil {
		return nil, err
	}
	if dm.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency distribution in seconds",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if dm.slowQueryTotal, err = NewCounter(meter, "db_slow_query_total",
		"Total number of queries exceeding the slow-query threshold", "{query}"); err != nil {
		return nil, err
	}

	return dm, nil
}

// SetSQLDB attaches the sql.DB whose pool the collector will sample.
// Must be called before StartPoolStatsCollection.
func (dm *DBMetrics) SetSQLDB(sqlDB *sql.DB) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.sqlDB = sqlDB
}

// StartPoolStatsCollection samples pool stats on a ticker until Stop or
// context cancellation.
func (dm *DBMetrics) StartPoolStatsCollection(ctx context.Context) {
	dm.mu.RLock()
	sqlDB := dm.sqlDB
	dm.mu.RUnlock()

	if sqlDB == nil {
		dm.logger.Warn("Cannot start pool stats collection: sqlDB not set")
		return
	}

	dm.wg.Add(1)
	go func() {
		defer dm.wg.Done()

		ticker := time.NewTicker(dm.config.PoolStatsInterval)
		defer ticker.Stop()

		dm.samplePool(ctx)

		for {
			select {
			case <-ticker.C:
				dm.samplePool(ctx)
			case <-dm.stopCh:
				dm.logger.Debug("Stopping pool stats collection")
				return
			case <-ctx.Done():
				dm.logger.Debug("Pool stats collection context cancelled")
				return
			}
		}
	}()

	dm.logger.Info("Started database connection pool stats collection",
		zap.Duration("interval", dm.config.PoolStatsInterval),
	)
}

func (dm *DBMetrics) samplePool(ctx context.Context) {
	dm.mu.RLock()
	sqlDB := dm.sqlDB
	dm.mu.RUnlock()

	if sqlDB == nil {
		return
	}

	stats := sqlDB.Stats()

	dm.poolConnectionsMax.Record(ctx, int64(stats.MaxOpenConnections))

	// OpenConnections = Idle + InUse. WaitCount is cumulative rather than a
	// current state, so it is not recorded here.
	dm.poolConnections.Record(ctx, int64(stats.Idle), AttrDBState.String("idle"))
	dm.poolConnections.Record(ctx, int64(stats.InUse), AttrDBState.String("in_use"))
	dm.poolConnections.Record(ctx, int64(stats.OpenConnections), AttrDBState.String("open"))
}

// Stop ends pool sampling. Safe to call more than once.
func (dm *DBMetrics) Stop() {
	dm.stopOnce.Do(func() {
		close(dm.stopCh)
		dm.wg.Wait()
		dm.logger.Debug("Database metrics stopped")
	})
}

// RecordQuery records count and latency for one query, plus the slow-query
// counter when it exceeds the threshold.
func (dm *DBMetrics) RecordQuery(ctx context.Context, operation string, table string, duration time.Duration, err error) {
	operation = strings.ToUpper(operation)
	if operation == "" {
		operation = "UNKNOWN"
	}

	dm.queryTotal.Inc(ctx, AttrDBOperation.String(operation))
	dm.queryDuration.RecordDuration(ctx, duration, AttrDBOperation.String(operation))

	if duration > dm.config.SlowQueryThreshold {
		tableName := table
		if tableName == "" {
			tableName = "unknown"
		}
		dm.slowQueryTotal.Inc(ctx, AttrDBTable.String(tableName))
	}
}

// DBMetricsPlugin hooks DBMetrics into gorm's callback chain.
type DBMetricsPlugin struct {
	metrics *DBMetrics
	logger  *zap.Logger
}

func NewDBMetricsPlugin(metrics *DBMetrics, logger *zap.Logger) *DBMetricsPlugin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBMetricsPlugin{metrics: metrics, logger: logger}
}

// Name returns the plugin name.
func (p *DBMetricsPlugin) Name() string {
	return "db_metrics"
}

// Initialize registers before/after callbacks on every gorm operation kind.
func (p *DBMetricsPlugin) Initialize(db *gorm.DB) error {
	stamp := func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		db.Statement.Context = context.WithValue(ctx, dbQueryStartKey, time.Now())
	}

	type callbackHook struct {
		register func(name string, fn func(*gorm.DB)) error
		name     string
		fn       func(*gorm.DB)
	}

	hooks := []callbackHook{
		{db.Callback().Create().Before("gorm:create").Register, "db_metrics:before_create", stamp},
		{db.Callback().Query().Before("gorm:query").Register, "db_metrics:before_query", stamp},
		{db.Callback().Update().Before("gorm:update").Register, "db_metrics:before_update", stamp},
		{db.Callback().Delete().Before("gorm:delete").Register, "db_metrics:before_delete", stamp},
		{db.Callback().Row().Before("gorm:row").Register, "db_metrics:before_row", stamp},
		{db.Callback().Raw().Before("gorm:raw").Register, "db_metrics:before_raw", stamp},

		{db.Callback().Create().After("gorm:create").Register, "db_metrics:after_create", p.afterFixed("INSERT")},
		{db.Callback().Query().After("gorm:query").Register, "db_metrics:after_query", p.afterFixed("SELECT")},
		{db.Callback().Update().After("gorm:update").Register, "db_metrics:after_update", p.afterFixed("UPDATE")},
		{db.Callback().Delete().After("gorm:delete").Register, "db_metrics:after_delete", p.afterFixed("DELETE")},
		{db.Callback().Row().After("gorm:row").Register, "db_metrics:after_row", p.afterDetected},
		{db.Callback().Raw().After("gorm:raw").Register, "db_metrics:after_raw", p.afterDetected},
	}

	for _, h := range hooks {
		if err := h.register(h.name, h.fn); err != nil {
			return err
		}
	}

	p.logger.Info("Database metrics plugin initialized")
	return nil
}

// afterFixed records a completed operation of a statically known kind.
func (p *DBMetricsPlugin) afterFixed(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		p.record(db, operation)
	}
}

// afterDetected records Row/Raw statements, sniffing the verb from the SQL.
func (p *DBMetricsPlugin) afterDetected(db *gorm.DB) {
	p.record(db, sqlOperation(db.Statement.SQL.String()))
}

func (p *DBMetricsPlugin) record(db *gorm.DB, operation string) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}

	var duration time.Duration
	if startTime, ok := ctx.Value(dbQueryStartKey).(time.Time); ok {
		duration = time.Since(startTime)
	}

	p.metrics.RecordQuery(ctx, operation, db.Statement.Table, duration, db.Error)
}

// sqlOperation sniffs the leading SQL verb for Row/Raw statements.
func sqlOperation(sql string) string {
	sql = strings.TrimSpace(strings.ToUpper(sql))

	for _, verb := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(sql, verb) {
			return verb
		}
	}
	return "OTHER"
}

type dbMetricsContextKey string

const dbQueryStartKey dbMetricsContextKey = "db_query_start"

// RegisterDBMetrics wires up query metrics and pool sampling on a gorm DB.
// The returned DBMetrics must be stopped on shutdown; it is nil when metrics
// are disabled or no meter provider is available.
func RegisterDBMetrics(db *gorm.DB, meterProvider *MeterProvider, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if !cfg.Enabled {
		logger.Debug("Database metrics disabled, skipping registration")
		return nil, nil
	}

	if meterProvider == nil || !meterProvider.IsEnabled() {
		logger.Debug("MeterProvider not available, skipping database metrics")
		return nil, nil
	}

	metrics, err := NewDBMetrics(meterProvider.Meter("fabmate.db"), cfg, logger)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	metrics.SetSQLDB(sqlDB)

	if err := db.Use(NewDBMetricsPlugin(metrics, logger)); err != nil {
		return nil, err
	}

	logger.Info("Database metrics registered",
		zap.Duration("slow_query_threshold", cfg.SlowQueryThreshold),
		zap.Duration("pool_stats_interval", cfg.PoolStatsInterval),
	)

	return metrics, nil
}
