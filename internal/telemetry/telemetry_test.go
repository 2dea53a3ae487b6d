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

package telemetry_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/jaycherian/gcp-go-video-manual/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		got, err := telemetry.ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := telemetry.ParseLevel("verbose")
	assert.Error(t, err)
}

func TestHandlerUsesCloudLoggingKeys(t *testing.T) {
	var buf bytes.Buffer
	handler, err := telemetry.NewHandler(&buf, cloud.Logging{Level: "info", Format: "json"}, "svc")
	require.NoError(t, err)

	logger := slog.New(handler)
	logger.Debug("hidden")
	logger.Warn("careful", "video_id", "abc")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "WARNING", record["severity"])
	assert.Equal(t, "careful", record["message"])
	assert.Equal(t, "abc", record["video_id"])
	assert.Contains(t, record, "timestamp")
}

func TestHandlerAddsTraceFromSpan(t *testing.T) {
	config := cloud.NewConfig()
	shutdown, err := telemetry.SetupOpenTelemetry(context.Background(), config)
	require.NoError(t, err)
	defer func() { _ = shutdown(context.Background()) }()

	var buf bytes.Buffer
	handler, err := telemetry.NewHandler(&buf, cloud.Logging{Format: "json", OTelBridge: true}, "svc")
	require.NoError(t, err)

	ctx, span := otel.Tracer("test").Start(context.Background(), "op")
	slog.New(handler).InfoContext(ctx, "inside span")
	span.End()

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, span.SpanContext().TraceID().String(), record["logging.googleapis.com/trace"])
}

func TestNewHandlerRejectsUnknownFormat(t *testing.T) {
	_, err := telemetry.NewHandler(&bytes.Buffer{}, cloud.Logging{Format: "xml"}, "svc")
	assert.Error(t, err)
}

func TestSetupLoggingWritesFile(t *testing.T) {
	previous := slog.Default()
	defer slog.SetDefault(previous)

	path := filepath.Join(t.TempDir(), "app.log")
	closer, err := telemetry.SetupLogging(cloud.Logging{Level: "info", Format: "text", File: path}, "svc")
	require.NoError(t, err)
	slog.Info("written")
	require.NoError(t, closer())
	assert.FileExists(t, path)
}

func TestSetupOpenTelemetryUnknownExporter(t *testing.T) {
	config := cloud.NewConfig()
	config.Telemetry.Exporter = "zipkin"
	_, err := telemetry.SetupOpenTelemetry(context.Background(), config)
	assert.Error(t, err)
}
