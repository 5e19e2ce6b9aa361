// Package metrics records per-operation service metrics.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OperationMetrics is implemented by every service metrics backend.
type OperationMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, d time.Duration)
	RecordFundsMoved(ctx context.Context, service, asset string, amount uint64)
}

// Prometheus backs OperationMetrics with a prometheus registry. One instance is shared by all
// services; the service name is a label.
type Prometheus struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	funds     *prometheus.CounterVec
}

// NewPrometheus creates and registers the collectors on reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	labels := []string{"service", "operation"}
	p := &Prometheus{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trivia_ledger",
			Name:      "operation_attempts_total",
			Help:      "Instructions attempted.",
		}, labels),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trivia_ledger",
			Name:      "operation_success_total",
			Help:      "Instructions that committed or returned a domain failure.",
		}, labels),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trivia_ledger",
			Name:      "operation_failures_total",
			Help:      "Instructions aborted by an infrastructure error or panic.",
		}, labels),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "trivia_ledger",
			Name:      "operation_duration_seconds",
			Help:      "Instruction latency.",
			Buckets:   prometheus.DefBuckets,
		}, labels),
		funds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trivia_ledger",
			Name:      "funds_moved_total",
			Help:      "Units moved between ledger holders.",
		}, []string{"service", "asset"}),
	}
	reg.MustRegister(p.attempts, p.successes, p.failures, p.duration, p.funds)
	return p
}

func (p *Prometheus) RecordOperationAttempt(_ context.Context, operation, service string) {
	p.attempts.WithLabelValues(service, operation).Inc()
}

func (p *Prometheus) RecordOperationSuccess(_ context.Context, operation, service string) {
	p.successes.WithLabelValues(service, operation).Inc()
}

func (p *Prometheus) RecordOperationFailure(_ context.Context, operation, service string) {
	p.failures.WithLabelValues(service, operation).Inc()
}

func (p *Prometheus) RecordOperationDuration(_ context.Context, operation, service string, d time.Duration) {
	p.duration.WithLabelValues(service, operation).Observe(d.Seconds())
}

func (p *Prometheus) RecordFundsMoved(_ context.Context, service, asset string, amount uint64) {
	p.funds.WithLabelValues(service, asset).Add(float64(amount))
}

// Noop discards everything.
type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) RecordOperationAttempt(context.Context, string, string)                 {}
func (Noop) RecordOperationSuccess(context.Context, string, string)                 {}
func (Noop) RecordOperationFailure(context.Context, string, string)                 {}
func (Noop) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (Noop) RecordFundsMoved(context.Context, string, string, uint64)               {}

var (
	_ OperationMetrics = (*Prometheus)(nil)
	_ OperationMetrics = Noop{}
)
