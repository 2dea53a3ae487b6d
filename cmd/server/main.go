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

// Command server runs the video manual API and, when Google Cloud is
// configured, the Pub/Sub listener that ingests videos dropped in the input
// bucket.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jaycherian/gcp-go-video-manual/internal/api"
	"github.com/jaycherian/gcp-go-video-manual/internal/telemetry"
)

func main() {
	config := GetConfig()

	closeLog, err := telemetry.SetupLogging(config.Logging, serviceName(config))
	if err != nil {
		log.Fatalf("failed to setup logging: %v", err)
	}
	defer func() { _ = closeLog() }()
	slog.Info("Logging initialized", "level", config.Logging.Level, "format", config.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTelemetry, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		os.Exit(1)
	}
	slog.Info("Tracing initialized", "exporter", config.Telemetry.Exporter)

	if err := InitState(ctx); err != nil {
		slog.Error("Failed to initialize state", "error", err)
		os.Exit(1)
	}
	defer state.cloud.Close()
	slog.Info("Initialized State")

	r := api.NewRouter(state.services, serviceName(config), config.Server.CORSOrigins)

	addr := net.JoinHostPort(config.Server.Host, strconv.Itoa(config.Server.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen", "addr", addr, "error", err)
			cancel()
		}
	}()
	slog.Info("Server ready", "addr", addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	slog.Info("Shutdown Server ...")

	timeout := time.Duration(config.Server.ShutdownTimeoutSec) * time.Second
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed", "error", err)
	}
	cancel()
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		slog.Error("Telemetry shutdown failed", "error", err)
	}

	slog.Info("Server exiting")
}
