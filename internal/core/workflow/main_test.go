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

package workflow_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/jaycherian/gcp-go-video-manual/internal/telemetry"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const tName = "video-manual/tests/workflow"

// TestMain installs in-process telemetry so command spans and counters are
// real, and routes slog through the OpenTelemetry logs bridge.
func TestMain(m *testing.M) {
	config := cloud.NewConfig()
	shutdown, err := telemetry.SetupOpenTelemetry(context.Background(), config)
	if err != nil {
		panic(err)
	}
	slog.SetDefault(otelslog.NewLogger(tName))

	code := m.Run()
	_ = shutdown(context.Background())
	os.Exit(code)
}
