package delta

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/midanish/PTEO-Shift-Report/pkg/classify"
	"github.com/midanish/PTEO-Shift-Report/pkg/lot"
	"github.com/midanish/PTEO-Shift-Report/pkg/observability"
)

// Analyzer runs Analyze with tracing, metrics and logging around it.
type Analyzer struct {
	policy  classify.Policy
	tracer  trace.Tracer
	metrics *observability.REDMetrics
	logger  *slog.Logger
}

// NewAnalyzer creates an Analyzer. A nil metrics recorder is allowed.
func NewAnalyzer(policy classify.Policy, providers observability.Providers, metrics *observability.REDMetrics) *Analyzer {
	return &Analyzer{
		policy:  policy,
		tracer:  providers.Tracer,
		metrics: metrics,
		logger:  providers.Logger,
	}
}

// Analyze diffs the two snapshots. See the package-level Analyze.
func (a *Analyzer) Analyze(ctx context.Context, before, after *lot.Snapshot) (*Result, error) {
	ctx, span := a.tracer.Start(ctx, "shiftreport.analyze")
	defer span.End()

	done := a.metrics.Start(ctx, observability.OpAnalyze)

	result, err := Analyze(before, after, a.policy)

	done(err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.logger.ErrorContext(ctx, "shift analysis failed", slog.Any("error", err))

		return nil, err
	}

	span.SetAttributes(
		attribute.Int("lots.processed", len(result.ProcessedKeys)),
		attribute.Int("lots.in_progress", len(result.InProgressKeys)),
	)

	a.logger.InfoContext(ctx, "shift analysis complete",
		slog.Int("before_rows", before.Len()),
		slog.Int("after_rows", after.Len()),
		slog.Int("processed_lots", len(result.ProcessedKeys)),
		slog.Int("in_progress_lots", len(result.InProgressKeys)),
	)

	return result, nil
}
