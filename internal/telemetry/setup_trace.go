// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	mexporter "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/metric"
	telemetryexporter "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	"go.opentelemetry.io/contrib/detectors/gcp"
	"go.opentelemetry.io/contrib/propagators/autoprop"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"

	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
)

// SetupOpenTelemetry installs the global propagator, tracer provider and
// meter provider. With the "gcp" exporter spans and metrics go to Cloud
// Trace and Cloud Monitoring; with "none" the providers run without
// exporters so spans and counters still work in-process. The returned
// function flushes and stops both providers.
func SetupOpenTelemetry(ctx context.Context, config *cloud.Config) (shutdown func(context.Context) error, err error) {
	var shutdownFuncs []func(context.Context) error
	shutdown = func(ctx context.Context) error {
		var err error
		for _, fn := range shutdownFuncs {
			err = errors.Join(err, fn(ctx))
		}
		shutdownFuncs = nil
		return err
	}

	serviceName := config.Telemetry.ServiceName
	if serviceName == "" {
		serviceName = config.Application.Name
	}

	otel.SetTextMapPropagator(autoprop.NewTextMapPropagator())

	switch config.Telemetry.Exporter {
	case cloud.TelemetryExporterNone, "":
		res := resource.NewSchemaless(semconv.ServiceNameKey.String(serviceName))
		tp := sdktrace.NewTracerProvider(sdktrace.WithResource(res))
		mp := metric.NewMeterProvider(metric.WithResource(res))
		shutdownFuncs = append(shutdownFuncs, tp.Shutdown, mp.Shutdown)
		otel.SetTracerProvider(tp)
		otel.SetMeterProvider(mp)
		return shutdown, nil
	case cloud.TelemetryExporterGCP:
	default:
		return nil, fmt.Errorf("unknown telemetry exporter %q", config.Telemetry.Exporter)
	}

	res, err := resource.New(ctx,
		resource.WithDetectors(gcp.NewDetector()),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(semconv.ServiceNameKey.String(serviceName)),
	)
	if errors.Is(err, resource.ErrPartialResource) || errors.Is(err, resource.ErrSchemaURLConflict) {
		slog.Warn("partial resource detection", "error", err)
	} else if err != nil {
		return nil, fmt.Errorf("resource detection failed: %w", err)
	}

	traceExporter, err := telemetryexporter.New(telemetryexporter.WithProjectID(config.Application.GoogleProjectId))
	if err != nil {
		return nil, fmt.Errorf("unable to set up trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	shutdownFuncs = append(shutdownFuncs, tp.Shutdown)
	otel.SetTracerProvider(tp)

	mExporter, err := mexporter.New(mexporter.WithProjectID(config.Application.GoogleProjectId))
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("unable to set up metric exporter: %w", err)
	}
	mp := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(mExporter)),
		metric.WithResource(res),
	)
	shutdownFuncs = append(shutdownFuncs, mp.Shutdown)
	otel.SetMeterProvider(mp)

	return shutdown, nil
}
