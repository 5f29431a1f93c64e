package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const (
	metricShiftLots = "shiftreport.lots"
	metricShiftQty  = "shiftreport.qty"
	metricShiftRate = "shiftreport.processing.rate"

	attrBucket = "bucket"
)

// BucketFigure is the row count and quantity of one delta bucket.
type BucketFigure struct {
	Name string
	Rows int
	Qty  float64
}

// ShiftFigures are the end-of-shift numbers exported as gauges.
type ShiftFigures struct {
	LotsBefore     int
	ProcessingRate float64
	Buckets        []BucketFigure
}

// WriteShiftTextfile writes figures in Prometheus text format to path, for the
// node exporter textfile collector. Each call uses a private registry.
func WriteShiftTextfile(ctx context.Context, path string, figures ShiftFigures) error {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	recordErr := recordShiftFigures(ctx, mp.Meter(meterName), figures)

	writeErr := prometheus.WriteToTextfile(path, registry)
	if writeErr != nil {
		writeErr = fmt.Errorf("write textfile %s: %w", path, writeErr)
	}

	return errors.Join(recordErr, writeErr, mp.Shutdown(ctx))
}

func recordShiftFigures(ctx context.Context, mt metric.Meter, figures ShiftFigures) error {
	lots, err := mt.Int64Gauge(metricShiftLots,
		metric.WithDescription("Lot rows per shift bucket"),
		metric.WithUnit("{lot}"),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", metricShiftLots, err)
	}

	qty, err := mt.Float64Gauge(metricShiftQty,
		metric.WithDescription("Summed QTY per shift bucket"),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", metricShiftQty, err)
	}

	rate, err := mt.Float64Gauge(metricShiftRate,
		metric.WithDescription("Share of start-of-shift lots processed, in percent"),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", metricShiftRate, err)
	}

	lots.Record(ctx, int64(figures.LotsBefore), metric.WithAttributes(attribute.String(attrBucket, "before")))

	for _, b := range figures.Buckets {
		attrs := metric.WithAttributes(attribute.String(attrBucket, b.Name))
		lots.Record(ctx, int64(b.Rows), attrs)
		qty.Record(ctx, b.Qty, attrs)
	}

	rate.Record(ctx, figures.ProcessingRate)

	return nil
}
