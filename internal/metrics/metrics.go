// Package metrics provides interfaces and implementations for collecting and managing
// performance metrics for the pool engine.
//
// The Metrics interface defines methods for initializing, updating, flushing, and
// shutting down metrics. It supports various metric types including gauges, counters,
// and histograms for monitoring performance and operational health in real time.
package metrics

import "context"

// Metrics defines the interface for collecting and managing engine metrics.
// Implementations can send metrics to various backends like Prometheus, DataDog, etc.
type Metrics interface {
	// Initialize prepares the metrics system for data collection.
	Initialize(ctx context.Context) error

	// Flush sends any buffered metrics data to ensure all metrics are reported.
	Flush(ctx context.Context) error

	// Shutdown gracefully shuts down the metrics system, performing cleanup.
	Shutdown(ctx context.Context) error

	// UpdateGauge sets a gauge metric to the specified value.
	// Gauges track values that can go up or down, like queue length.
	UpdateGauge(ctx context.Context, name string, value float64) error

	// IncrementCounter increments a counter metric by the specified value.
	// Counters track values that only increase, like total processed items.
	IncrementCounter(ctx context.Context, name string, value uint64) error

	// RecordHistogram records a value in a histogram metric.
	// Histograms track the distribution of values, like request latencies.
	RecordHistogram(ctx context.Context, name string, value float64) error
}

// NoopMetrics is a Metrics implementation that does nothing.
// Useful for testing or when metrics are disabled.
type NoopMetrics struct{}

// NewNoopMetrics creates a new NoopMetrics.
func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (n *NoopMetrics) Initialize(ctx context.Context) error                              { return nil }
func (n *NoopMetrics) Flush(ctx context.Context) error                                   { return nil }
func (n *NoopMetrics) Shutdown(ctx context.Context) error                                { return nil }
func (n *NoopMetrics) UpdateGauge(ctx context.Context, name string, value float64) error { return nil }
func (n *NoopMetrics) IncrementCounter(ctx context.Context, name string, value uint64) error {
	return nil
}
func (n *NoopMetrics) RecordHistogram(ctx context.Context, name string, value float64) error {
	return nil
}

// Metric names emitted by the pool engine.
const (
	MetricPoolInitialized  = "amm_pool_initialized_total"
	MetricDeposits         = "amm_deposit_total"
	MetricDepositLpMinted  = "amm_deposit_lp_minted"
	MetricWithdraws        = "amm_withdraw_total"
	MetricWithdrawLpBurned = "amm_withdraw_lp_burned"
	MetricSwapBaseIn       = "amm_swap_base_in_total"
	MetricSwapBaseOut      = "amm_swap_base_out_total"
	MetricSwapFee          = "amm_swap_fee"
	MetricMonitorSteps     = "amm_monitor_step_total"
	MetricAdminCancels     = "amm_admin_cancel_total"
	MetricMigrations       = "amm_migrate_total"
	MetricWithdrawPnl      = "amm_withdraw_pnl_total"
	MetricWithdrawPnlCoin  = "amm_withdraw_pnl_coin"
	MetricWithdrawPnlPc    = "amm_withdraw_pnl_pc"
	MetricWithdrawDest     = "amm_withdraw_dest_total"
	MetricWhitelistUpdates = "amm_whitelist_update_total"
)
