package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	invoicesGenerated   metric.Int64Counter
	invoiceConflicts    metric.Int64Counter
	summariesComputed   metric.Int64Counter
	summaryCacheLookups metric.Int64Counter
	categoryDeleteDeny  metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "rentbook"
	}
	meter := provider.Meter(name)

	invoicesGenerated, err := meter.Int64Counter("rentbook_invoices_generated_total")
	if err != nil {
		return nil, err
	}
	invoiceConflicts, err := meter.Int64Counter("rentbook_invoice_conflicts_total")
	if err != nil {
		return nil, err
	}
	summariesComputed, err := meter.Int64Counter("rentbook_summaries_computed_total")
	if err != nil {
		return nil, err
	}
	summaryCacheLookups, err := meter.Int64Counter("rentbook_summary_cache_lookups_total")
	if err != nil {
		return nil, err
	}
	categoryDeleteDeny, err := meter.Int64Counter("rentbook_category_delete_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		invoicesGenerated:   invoicesGenerated,
		invoiceConflicts:    invoiceConflicts,
		summariesComputed:   summariesComputed,
		summaryCacheLookups: summaryCacheLookups,
		categoryDeleteDeny:  categoryDeleteDeny,
	}, nil
}

// NewNoop returns instruments bound to a no-op provider.
func NewNoop() *Metrics {
	m, _ := New(Config{}, noop.NewMeterProvider())
	return m
}

// RecordInvoiceGenerated counts invoices created by monthly generation.
func (m *Metrics) RecordInvoiceGenerated(ctx context.Context, source string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("source", strings.TrimSpace(source)))
	m.invoicesGenerated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordInvoiceConflict counts generation attempts rejected for an existing period.
func (m *Metrics) RecordInvoiceConflict(ctx context.Context) {
	if m == nil {
		return
	}
	m.invoiceConflicts.Add(ctx, 1)
}

// RecordSummaryComputed counts building summaries computed from storage.
func (m *Metrics) RecordSummaryComputed(ctx context.Context, scope string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("scope", strings.TrimSpace(scope)))
	m.summariesComputed.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSummaryCache counts summary cache lookups by outcome (hit, miss, error).
func (m *Metrics) RecordSummaryCache(ctx context.Context, backend, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("backend", strings.TrimSpace(backend)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.summaryCacheLookups.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCategoryDeleteDenied counts deletes refused because the category is referenced.
func (m *Metrics) RecordCategoryDeleteDenied(ctx context.Context, categoryType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("category_type", strings.TrimSpace(categoryType)))
	m.categoryDeleteDeny.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"source":        {},
	"scope":         {},
	"backend":       {},
	"outcome":       {},
	"category_type": {},
	"route":         {},
	"status_code":   {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
