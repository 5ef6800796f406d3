package otelhelper

import (
	"context"

	"go.opentelemetry.io/otel"
	otlpmetrichttp "go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// InitMeter builds and installs the global meter provider, exporting over
// OTLP HTTP. The caller owns its shutdown.
func InitMeter(ctx context.Context, serviceName string) (*sdkmetric.MeterProvider, error) {
	r, err := newResource(serviceName)
	if err != nil {
		return nil, err
	}

	exporter, err := otlpmetrichttp.New(ctx)
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(r),
	)

	otel.SetMeterProvider(mp)

	return mp, nil
}
