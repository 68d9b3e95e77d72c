package otel

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"
)

var (
	initMetricsOnce sync.Once
	initMetricsErr  error

	storeOps    metric.Int64Counter
	storeMisses metric.Int64Counter
	apiCalls    metric.Int64Counter
	apiLatency  metric.Float64Histogram
	polls       metric.Int64Counter
	sseEvents   metric.Int64Counter

	sseConnections atomic.Int64
)

// InitMetrics creates the instruments once. Call after InitMeterProvider; until then
// the Record functions are no-ops.
func InitMetrics(ctx context.Context) error {
	initMetricsOnce.Do(func() {
		m := Meter()
		counters := []struct {
			dst  *metric.Int64Counter
			name string
			desc string
		}{
			{&storeOps, "taskboard_store_operations_total", "State store operations dispatched"},
			{&storeMisses, "taskboard_store_misses_total", "State store operations whose target was not found"},
			{&apiCalls, "taskboard_api_calls_total", "Backend API calls"},
			{&polls, "taskboard_notification_polls_total", "Notification poll cycles"},
			{&sseEvents, "taskboard_sse_events_total", "SSE events published"},
		}
		var errs []error
		for _, c := range counters {
			inst, err := m.Int64Counter(c.name, metric.WithDescription(c.desc))
			if err != nil {
				errs = append(errs, err)
				continue
			}
			*c.dst = inst
		}
		h, err := m.Float64Histogram("taskboard_api_call_duration_seconds",
			metric.WithDescription("Backend API call latency in seconds"), metric.WithUnit("s"))
		if err != nil {
			errs = append(errs, err)
		} else {
			apiLatency = h
		}
		_, err = m.Int64ObservableGauge("taskboard_sse_connections",
			metric.WithDescription("Current SSE subscriber count"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				o.Observe(sseConnections.Load())
				return nil
			}))
		if err != nil {
			errs = append(errs, err)
		}
		initMetricsErr = errors.Join(errs...)
	})
	return initMetricsErr
}

// RecordStoreOp counts one store operation, and a miss when applied is false.
func RecordStoreOp(ctx context.Context, op string, applied bool) {
	if storeOps != nil {
		storeOps.Add(ctx, 1, metric.WithAttributes(AttrOp.String(op), AttrApplied.Bool(applied)))
	}
	if !applied && storeMisses != nil {
		storeMisses.Add(ctx, 1, metric.WithAttributes(AttrOp.String(op)))
	}
}

// RecordAPICall records a backend request. status is the HTTP status, or 0 on transport failure.
func RecordAPICall(ctx context.Context, method, endpoint string, status int, d time.Duration) {
	attrs := metric.WithAttributes(AttrMethod.String(method), AttrEndpoint.String(endpoint), AttrStatus.Int(status))
	if apiCalls != nil {
		apiCalls.Add(ctx, 1, attrs)
	}
	if apiLatency != nil {
		apiLatency.Record(ctx, d.Seconds(), attrs)
	}
}

// RecordPoll records one notification poll cycle.
func RecordPoll(ctx context.Context, result string) {
	if polls != nil {
		polls.Add(ctx, 1, metric.WithAttributes(AttrResult.String(result)))
	}
}

func RecordSSEEvent(ctx context.Context) {
	if sseEvents != nil {
		sseEvents.Add(ctx, 1)
	}
}

func AddSSEConnection() { sseConnections.Add(1) }

// RemoveSSEConnection decrements the connection count, flooring at zero.
func RemoveSSEConnection() {
	for {
		n := sseConnections.Load()
		if n <= 0 || sseConnections.CompareAndSwap(n, n-1) {
			return
		}
	}
}

// SSEConnections is the value the taskboard_sse_connections gauge reports.
func SSEConnections() int64 { return sseConnections.Load() }

// ProjectCountFunc reports the number of projects currently held in memory.
type ProjectCountFunc func() int64

// InitMetricsWithProjectCount creates the instruments and, when count is non-nil,
// a taskboard_projects gauge fed by it.
func InitMetricsWithProjectCount(ctx context.Context, count ProjectCountFunc) error {
	if err := InitMetrics(ctx); err != nil {
		return err
	}
	if count == nil {
		return nil
	}
	_, err := Meter().Int64ObservableGauge("taskboard_projects",
		metric.WithDescription("Projects held in the local store"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(count())
			return nil
		}))
	return err
}
