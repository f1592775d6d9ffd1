package telemetry

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/detectors/aws/ecs"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/IliaW/lead-hunter/config"
	"github.com/google/uuid"
)

var meter metric.Meter

type MetricsProvider struct {
	IntakeMetrics *IntakeMetrics
	CrawlMetrics  *CrawlMetrics
	Close         func()
}

type IntakeMetrics struct {
	SubmittedCnt    func(count int64)
	RejectedCnt     func(count int64)
	PriorityCnt     func(count int64)
	FallbackCnt     func(count int64)
	NotifyFailedCnt func(count int64)
}

type CrawlMetrics struct {
	PageSuccessCnt  func(count int64)
	PageFailedCnt   func(count int64)
	ArchiveCnt      func(count int64)
	SearchFailedCnt func(count int64)
}

// NoopMetrics discards every measurement.
func NoopMetrics() *MetricsProvider {
	noop := func(int64) {}
	return &MetricsProvider{
		IntakeMetrics: &IntakeMetrics{
			SubmittedCnt:    noop,
			RejectedCnt:     noop,
			PriorityCnt:     noop,
			FallbackCnt:     noop,
			NotifyFailedCnt: noop,
		},
		CrawlMetrics: &CrawlMetrics{
			PageSuccessCnt:  noop,
			PageFailedCnt:   noop,
			ArchiveCnt:      noop,
			SearchFailedCnt: noop,
		},
		Close: func() {},
	}
}

func SetupMetrics(ctx context.Context, cfg *config.Config) *MetricsProvider {
	if cfg.TelemetrySettings == nil || !cfg.TelemetrySettings.Enabled {
		return NoopMetrics()
	}

	metricsProvider := new(MetricsProvider)
	r, err := newResource(cfg)
	if err != nil {
		slog.Error("failed to get resource.", slog.String("err", err.Error()))
		os.Exit(1)
	}
	exporter, err := newMetricExporter(ctx, cfg.TelemetrySettings)
	if err != nil {
		slog.Error("failed to get metric exporter.", slog.String("err", err.Error()))
		os.Exit(1)
	}
	meterProvider := newMeterProvider(exporter, *r)
	otel.SetMeterProvider(meterProvider)

	meter = otel.Meter(cfg.ServiceName)
	metricsProvider.Close = func() {
		err := meterProvider.Shutdown(ctx)
		if err != nil {
			slog.Error("failed to shutdown metrics provider.", slog.String("err", err.Error()))
		}
	}

	// Set up intake metrics
	metricsProvider.IntakeMetrics = &IntakeMetrics{
		SubmittedCnt: counter(ctx, "lead-hunter.intake.submitted",
			"The number of applications persisted"),
		RejectedCnt: counter(ctx, "lead-hunter.intake.rejected",
			"The number of submissions rejected by validation"),
		PriorityCnt: counter(ctx, "lead-hunter.intake.priority",
			"The number of applications classified as priority"),
		FallbackCnt: counter(ctx, "lead-hunter.intake.fallback",
			"The number of applications persisted by a fallback sink"),
		NotifyFailedCnt: counter(ctx, "lead-hunter.intake.notify.fail",
			"The number of priority alerts that could not be sent"),
	}

	// Set up crawl metrics
	metricsProvider.CrawlMetrics = &CrawlMetrics{
		PageSuccessCnt: counter(ctx, "lead-hunter.crawl.pages.success",
			"The number of pages fetched with status 200"),
		PageFailedCnt: counter(ctx, "lead-hunter.crawl.pages.fail",
			"The number of pages that returned an error status or could not be reached"),
		ArchiveCnt: counter(ctx, "lead-hunter.crawl.pages.archive",
			"The number of calls to the CommonCrawl API"),
		SearchFailedCnt: counter(ctx, "lead-hunter.crawl.search.fail",
			"The number of search queries the provider failed or throttled"),
	}

	return metricsProvider
}

func counter(ctx context.Context, name, description string) func(count int64) {
	c, err := meter.Int64Counter(name,
		metric.WithDescription(description),
		metric.WithUnit("{events}"))
	if err != nil {
		slog.Error("failed to create telemetry counter.", slog.String("name", name),
			slog.String("err", err.Error()))
		os.Exit(1)
	}
	c.Add(ctx, 0) // register the series

	return func(count int64) {
		c.Add(ctx, count)
	}
}

func newResource(cfg *config.Config) (*resource.Resource, error) {
	ecsResourceDetector := ecs.NewResourceDetector()
	ecsResource, err := ecsResourceDetector.Detect(context.Background())
	if err != nil {
		slog.Error("ecs detection failed", slog.String("err", err.Error()))
	}
	mergedResource, err := resource.Merge(ecsResource, resource.Default())
	if err != nil {
		slog.Error("failed to merge resources", slog.String("err", err.Error()))
	}
	keyValue, found := ecsResource.Set().Value("container.id")
	var serviceId string
	if found {
		serviceId = keyValue.AsString()
	} else {
		serviceId = uuid.New().String()
	}
	return resource.Merge(mergedResource,
		resource.NewWithAttributes(semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(cfg.Env),
			semconv.ServiceInstanceID(serviceId),
		))
}

func newMetricExporter(ctx context.Context, cfg *config.TelemetryConfig) (sdkmetric.Exporter, error) {
	return otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(cfg.CollectorUrl),
		otlpmetrichttp.WithInsecure())
}

func newMeterProvider(meterExporter sdkmetric.Exporter, resource resource.Resource) *sdkmetric.MeterProvider {
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(meterExporter)),
		sdkmetric.WithResource(&resource),
	)
	return meterProvider
}
