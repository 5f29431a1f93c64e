package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricOpsTotal    = "shiftreport.operations.total"
	metricOpsDuration = "shiftreport.operation.duration.seconds"
	metricErrorsTotal = "shiftreport.errors.total"

	attrOp     = "op"
	attrStatus = "status"

	// StatusOK marks a successful operation.
	StatusOK = "ok"
	// StatusError marks a failed operation.
	StatusError = "error"
)

// Operation names recorded by the commands.
const (
	OpCapture    = "capture"
	OpAnalyze    = "analyze"
	OpAttendance = "attendance"
	OpDetape     = "detape"
)

// Sheet reads take from sub-second to tens of seconds on a slow link.
var durationBucketBoundaries = []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// REDMetrics holds the rate, error, and duration instruments per operation.
type REDMetrics struct {
	opsTotal    metric.Int64Counter
	opsDuration metric.Float64Histogram
	errorsTotal metric.Int64Counter
}

// NewREDMetrics creates RED instruments from the given meter.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	opsTotal, err := mt.Int64Counter(metricOpsTotal,
		metric.WithDescription("Total number of operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricOpsTotal, err)
	}

	opsDuration, err := mt.Float64Histogram(metricOpsDuration,
		metric.WithDescription("Operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricOpsDuration, err)
	}

	errTotal, err := mt.Int64Counter(metricErrorsTotal,
		metric.WithDescription("Total number of failed operations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricErrorsTotal, err)
	}

	return &REDMetrics{
		opsTotal:    opsTotal,
		opsDuration: opsDuration,
		errorsTotal: errTotal,
	}, nil
}

// Record records one finished operation.
func (rm *REDMetrics) Record(ctx context.Context, op, status string, duration time.Duration) {
	if rm == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrStatus, status),
	)

	rm.opsTotal.Add(ctx, 1, attrs)
	rm.opsDuration.Record(ctx, duration.Seconds(), attrs)

	if status == StatusError {
		rm.errorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOp, op)))
	}
}

// Start begins timing op. The returned function records it with a status
// derived from the error it is given.
func (rm *REDMetrics) Start(ctx context.Context, op string) func(err error) {
	started := time.Now()

	return func(err error) {
		status := StatusOK
		if err != nil {
			status = StatusError
		}

		rm.Record(ctx, op, status, time.Since(started))
	}
}
